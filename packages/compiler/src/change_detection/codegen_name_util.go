package change_detection

import (
	"fmt"
	"regexp"
)

const (
	// ContextAccessor is the local name of the component context (index 0)
	ContextAccessor = "context"

	stateAccessor  = "state"
	localsAccessor = "locals"
	fieldPrefix    = "this."
)

var nonWordRe = regexp.MustCompile(`\W`)

// SanitizeName strips every character that is not valid in an identifier
func SanitizeName(s string) string {
	return nonWordRe.ReplaceAllString(s, "")
}

// Names provides the identifiers used by the generated change detector
type Names interface {
	GetLocalName(idx int) string
	GetEventLocalName(eb *EventBinding, idx int) string
	GetDirectiveName(d *DirectiveIndex) string
	GetDetectorName(d *DirectiveIndex) string
	GetLocalsAccessorName() string
	GetStateName() string
}

// EventBinding is the record list evaluated when an element event fires
type EventBinding struct {
	EventName    string
	ElementIndex int
	Records      []*ProtoRecord
}

// CodegenNameUtil is the default Names implementation. Locals are named
// after the record name and position, fields are prefixed with `this.`.
type CodegenNameUtil struct {
	sanitizedNames      []string
	sanitizedEventNames map[*EventBinding][]string
}

var _ Names = (*CodegenNameUtil)(nil)

// NewCodegenNameUtil creates the names for records and the records of every event binding
func NewCodegenNameUtil(records []*ProtoRecord, eventBindings []*EventBinding) *CodegenNameUtil {
	sanitizedNames := make([]string, len(records)+1)
	sanitizedNames[0] = ContextAccessor
	for i, r := range records {
		sanitizedNames[i+1] = SanitizeName(fmt.Sprintf("%s%d", r.Name, i))
	}

	sanitizedEventNames := make(map[*EventBinding][]string, len(eventBindings))
	for ebIndex, eb := range eventBindings {
		names := []string{ContextAccessor}
		for i, r := range eb.Records {
			names = append(names, SanitizeName(fmt.Sprintf("%s%d_%d", r.Name, i, ebIndex)))
		}
		sanitizedEventNames[eb] = names
	}

	return &CodegenNameUtil{
		sanitizedNames:      sanitizedNames,
		sanitizedEventNames: sanitizedEventNames,
	}
}

func (n *CodegenNameUtil) GetLocalName(idx int) string {
	if idx < 0 || idx >= len(n.sanitizedNames) {
		panic(fmt.Errorf("no local for record index %d", idx))
	}
	return "l_" + n.sanitizedNames[idx]
}

func (n *CodegenNameUtil) GetEventLocalName(eb *EventBinding, idx int) string {
	names, ok := n.sanitizedEventNames[eb]
	if !ok || idx < 0 || idx >= len(names) {
		panic(fmt.Errorf("no local for event record index %d", idx))
	}
	return "l_" + names[idx]
}

func (n *CodegenNameUtil) GetDirectiveName(d *DirectiveIndex) string {
	return fieldPrefix + "directive_" + d.Name()
}

func (n *CodegenNameUtil) GetDetectorName(d *DirectiveIndex) string {
	return fieldPrefix + "detector_" + d.Name()
}

func (n *CodegenNameUtil) GetLocalsAccessorName() string {
	return fieldPrefix + localsAccessor
}

func (n *CodegenNameUtil) GetStateName() string {
	return fieldPrefix + stateAccessor
}

// GetLocalNames lists every local declared for the records, context first
func (n *CodegenNameUtil) GetLocalNames() []string {
	names := make([]string, len(n.sanitizedNames))
	for i := range n.sanitizedNames {
		names[i] = n.GetLocalName(i)
	}
	return names
}
