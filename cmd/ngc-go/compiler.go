package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cd "ngc-go/packages/compiler/src/change_detection"
	"ngc-go/packages/compiler/src/config"
)

const recordsSuffix = ".records.yaml"

// loadAndCoalesce reads a detector definition and replaces its records with
// the checked, coalesced records. It also returns the record count before
// coalescing.
func loadAndCoalesce(path string) (*cd.DetectorDefinition, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading records: %w", err)
	}
	def, err := cd.LoadDetectorDefinition(data)
	if err != nil {
		return nil, 0, fmt.Errorf("error parsing %s: %w", path, err)
	}
	before := len(def.Records)
	coalesced, err := cd.CoalesceChecked(def.Records)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	def.Records = coalesced
	return def, before, nil
}

func runCoalesce(path string, w io.Writer) error {
	def, _, err := loadAndCoalesce(path)
	if err != nil {
		return err
	}
	out, err := cd.MarshalRecords(def.Records)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func runCodegen(path string, cfg *config.ChangeDetectorGenConfig, w io.Writer) error {
	def, _, err := loadAndCoalesce(path)
	if err != nil {
		return err
	}
	src, err := NewCodeGenerator(cfg).GenerateDetector(def, typeNameOf(path))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, src+"\n")
	return err
}

// CompileProject compiles every record file found under rootPath into one
// detector source per file
func CompileProject(rootPath string, outputPath string, cfg *config.ChangeDetectorGenConfig) error {
	fmt.Printf("🔨 Compiling change detectors at: %s\n", rootPath)
	fmt.Println("")

	// Find all record files
	files, err := findRecordFiles(rootPath)
	if err != nil {
		return fmt.Errorf("error finding record files: %v", err)
	}

	if len(files) == 0 {
		fmt.Println("⚠️  No record files found")
		return nil
	}

	fmt.Printf("📦 Found %d record file(s)\n", len(files))
	fmt.Println("")

	outputDir, err := prepareOutputDir(rootPath, outputPath)
	if err != nil {
		return err
	}

	// Compile each detector, reporting failures without stopping
	stats := compileFiles(files, outputDir, cfg)

	fmt.Println("")
	fmt.Printf("✅ Compilation complete: %d/%d change detectors compiled, %d records coalesced to %d\n",
		stats.compiled, len(files), stats.recordsIn, stats.recordsOut)

	if stats.compiled < len(files) {
		return fmt.Errorf("some change detectors failed to compile")
	}

	return nil
}

// prepareOutputDir resolves outputPath against rootPath, defaulting to
// dist/ngc-go, and creates it.
func prepareOutputDir(rootPath, outputPath string) (string, error) {
	outputDir := filepath.Join(rootPath, "dist", "ngc-go")
	switch {
	case outputPath == "":
	case filepath.IsAbs(outputPath):
		outputDir = outputPath
	default:
		outputDir = filepath.Join(rootPath, outputPath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %v", err)
	}

	fmt.Printf("📁 Output directory: %s\n", outputDir)
	fmt.Println("")
	return outputDir, nil
}

type compileStats struct {
	compiled   int
	recordsIn  int
	recordsOut int
}

func compileFiles(files []string, outputDir string, cfg *config.ChangeDetectorGenConfig) compileStats {
	var stats compileStats
	for i, file := range files {
		fmt.Printf("[%d/%d] Compiling %s...\n", i+1, len(files), file)

		before, after, err := compileFile(file, outputDir, cfg)
		if err != nil {
			fmt.Printf("   ❌ Error: %v\n", err)
			continue
		}

		stats.compiled++
		stats.recordsIn += before
		stats.recordsOut += after
		fmt.Printf("   ✅ %d records coalesced to %d\n", before, after)
	}
	return stats
}

func findRecordFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// Skip node_modules and dist directories
			if info.Name() == "node_modules" || info.Name() == "dist" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, recordsSuffix) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// compileFile writes the detector of one record file and returns the record
// counts before and after coalescing
func compileFile(path, outputDir string, cfg *config.ChangeDetectorGenConfig) (int, int, error) {
	def, before, err := loadAndCoalesce(path)
	if err != nil {
		return 0, 0, err
	}

	typeName := typeNameOf(path)
	src, err := NewCodeGenerator(cfg).GenerateDetector(def, typeName)
	if err != nil {
		return 0, 0, err
	}

	outFile := filepath.Join(outputDir, typeName+".js")
	if err := os.WriteFile(outFile, []byte(src+"\n"), 0644); err != nil {
		return 0, 0, fmt.Errorf("error writing %s: %w", outFile, err)
	}
	return before, len(def.Records), nil
}

// typeNameOf derives the detector class name from a record file name,
// e.g. "todo_list.records.yaml" becomes "TodoList_ChangeDetector".
func typeNameOf(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, recordsSuffix)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	upper := true
	for _, r := range base {
		if r == '_' || r == '-' || r == '.' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	name := cd.SanitizeName(b.String())
	if name == "" {
		name = "Component"
	}
	return name + "_ChangeDetector"
}
