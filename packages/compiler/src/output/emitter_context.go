package output

import (
	"fmt"
	"strings"
)

const indentWith = "  "

// EmittedLine is one line of generated source
type EmittedLine struct {
	Parts       []string
	PartsLength int
	Indent      int
}

// EmitterContext accumulates generated source line by line, keeping track
// of the indentation of each line.
type EmitterContext struct {
	lines  []*EmittedLine
	indent int
}

// NewEmitterContext creates an EmitterContext whose first line starts at indent
func NewEmitterContext(indent int) *EmitterContext {
	return &EmitterContext{
		lines:  []*EmittedLine{{Indent: indent}},
		indent: indent,
	}
}

func (ctx *EmitterContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// Print appends part to the current line and starts a new line when newLine is set
func (ctx *EmitterContext) Print(part string, newLine bool) {
	if part != "" {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)
		line.PartsLength += len(part)
	}
	if newLine {
		ctx.lines = append(ctx.lines, &EmittedLine{Indent: ctx.indent})
	}
}

// Println appends lastPart and ends the line
func (ctx *EmitterContext) Println(lastPart string) {
	ctx.Print(lastPart, true)
}

// Printlnf is Println with fmt style formatting of the appended part
func (ctx *EmitterContext) Printlnf(format string, args ...interface{}) {
	ctx.Println(fmt.Sprintf(format, args...))
}

func (ctx *EmitterContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// LineLength is the width of the current line including its indentation
func (ctx *EmitterContext) LineLength() int {
	line := ctx.currentLine()
	return line.Indent*len(indentWith) + line.PartsLength
}

func (ctx *EmitterContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

func (ctx *EmitterContext) DecIndent() {
	if ctx.indent > 0 {
		ctx.indent--
	}
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

func (ctx *EmitterContext) RemoveEmptyLastLine() {
	if ctx.LineIsEmpty() && len(ctx.lines) > 1 {
		ctx.lines = ctx.lines[:len(ctx.lines)-1]
	}
}

// ToSource joins the lines, dropping a trailing empty line
func (ctx *EmitterContext) ToSource() string {
	lines := ctx.lines
	if len(lines) > 0 && len(lines[len(lines)-1].Parts) == 0 {
		lines = lines[:len(lines)-1]
	}
	result := make([]string, len(lines))
	for i, line := range lines {
		if len(line.Parts) > 0 {
			result[i] = strings.Repeat(indentWith, line.Indent) + strings.Join(line.Parts, "")
		}
	}
	return strings.Join(result, "\n")
}
