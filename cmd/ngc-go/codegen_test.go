package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	cd "ngc-go/packages/compiler/src/change_detection"
	"ngc-go/packages/compiler/src/config"
)

const ternaryRecords = `records:
  - {mode: PropertyRead, name: a, context: 0}
  - {mode: SkipRecordsIfNot, name: cond, context: 1, fixedArgs: [4]}
  - {mode: PropertyRead, name: a, context: 0}
  - {mode: SkipRecords, name: cond, context: 0, fixedArgs: [6]}
  - {mode: PropertyRead, name: a, context: 0}
  - {mode: PropertyRead, name: b, context: 5, lastInBinding: true}
`

func writeRecords(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCodeGenerator(t *testing.T) {
	t.Run("should open a block for a conditional skip", func(t *testing.T) {
		records, err := cd.LoadRecords([]byte(ternaryRecords))
		if err != nil {
			t.Fatal(err)
		}
		src, err := NewCodeGenerator(nil).Generate(cd.Coalesce(records), "Ternary_ChangeDetector")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		want := strings.Join([]string{
			"Ternary_ChangeDetector.prototype.detectChangesInRecordsInternal = function(throwOnChange) {",
			"  var l_context = this.context;",
			"  var l_a0, l_cond1, l_b2;",
			"  var changes = null;",
			"  l_a0 = l_context.a;",
			"  if (!l_a0) {",
			"    l_b2 = l_a0.b;",
			"  }",
			"};",
		}, "\n")
		if diff := cmp.Diff(want, src); diff != "" {
			t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should generate an else branch for an unconditional skip", func(t *testing.T) {
		records := []*cd.ProtoRecord{
			{Mode: cd.RecordTypePropertyRead, Name: "cond", Args: []int{}, SelfIndex: 1},
			{Mode: cd.RecordTypeSkipRecordsIfNot, Name: "skip", Args: []int{}, FixedArgs: []interface{}{4}, ContextIndex: 1, SelfIndex: 2},
			{Mode: cd.RecordTypePropertyRead, Name: "a", Args: []int{}, SelfIndex: 3, LastInBinding: true},
			{Mode: cd.RecordTypeSkipRecords, Name: "sk", Args: []int{}, FixedArgs: []interface{}{5}, SelfIndex: 4},
			{Mode: cd.RecordTypePropertyRead, Name: "b", Args: []int{}, SelfIndex: 5, LastInBinding: true},
		}
		cfg := config.NewChangeDetectorGenConfig(config.WithLogBindingUpdate(true))
		src, err := NewCodeGenerator(cfg).Generate(records, "T")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		want := strings.Join([]string{
			"T.prototype.detectChangesInRecordsInternal = function(throwOnChange) {",
			"  var l_context = this.context;",
			"  var l_cond0, l_skip1, l_a2, l_sk3, l_b4;",
			"  var changes = null;",
			"  l_cond0 = l_context.cond;",
			"  if (l_cond0) {",
			"    l_a2 = l_context.a;",
			"    this.logBindingUpdate(l_a2);",
			"  } else {",
			"    l_b4 = l_context.b;",
			"    this.logBindingUpdate(l_b4);",
			"  }",
			"};",
		}, "\n")
		if diff := cmp.Diff(want, src); diff != "" {
			t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should call lifecycle hooks", func(t *testing.T) {
		records := []*cd.ProtoRecord{
			{Mode: cd.RecordTypeDirectiveLifecycle, Name: "DoCheck", Args: []int{}, ContextIndex: -1,
				DirectiveIndex: &cd.DirectiveIndex{ElementIndex: 0, DirectiveIndex: 0}, SelfIndex: 1},
		}
		src, err := NewCodeGenerator(nil).Generate(records, "T")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !strings.Contains(src, "  if (!throwOnChange) this.directive_0_0.ngDoCheck();\n") {
			t.Errorf("expected a DoCheck call in:\n%s", src)
		}
	})

	t.Run("should reject an unconditional skip outside of a block", func(t *testing.T) {
		records := []*cd.ProtoRecord{
			{Mode: cd.RecordTypeSkipRecords, Name: "sk", Args: []int{}, FixedArgs: []interface{}{1}, SelfIndex: 1},
		}
		if _, err := NewCodeGenerator(nil).Generate(records, "T"); err == nil {
			t.Error("expected an error")
		}
	})
}

const directiveRecords = `records:
  - {mode: DirectiveLifecycle, name: DoCheck, context: -1, directive: [0, 0], lastInDirective: true}
directives:
  - directive: [0, 0]
    callDoCheck: true
    callAfterContentChecked: true
    callAfterViewInit: true
    callOnDestroy: true
    outputs: [[changed, change]]
  - directive: [1, 0]
    changeDetection: OnPush
bindingTargets:
  - {mode: elementProperty, elementIndex: 0, name: title, debug: "[title]=a"}
  - ~
`

func TestGenerateDetector(t *testing.T) {
	def, err := cd.LoadDetectorDefinition([]byte(directiveRecords))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("should generate the directive methods and tables", func(t *testing.T) {
		cfg := config.NewChangeDetectorGenConfig(config.WithGenDebugInfo(true))
		src, err := NewCodeGenerator(cfg).GenerateDetector(def, "T")
		if err != nil {
			t.Fatalf("GenerateDetector() error = %v", err)
		}
		want := strings.Join([]string{
			`T.gen_propertyBindingTargets = [ChangeDetectionUtil.bindingTarget("elementProperty", 0, "title", "", "[title]=a"), null];`,
			"T.gen_directiveIndices = [ChangeDetectionUtil.directiveIndex(0, 0), ChangeDetectionUtil.directiveIndex(1, 0)];",
			"T.prototype.detectChangesInRecordsInternal = function(throwOnChange) {",
			"  var l_context = this.context;",
			"  var l_DoCheck0;",
			"  var changes = null;",
			"  if (!throwOnChange) this.directive_0_0.ngDoCheck();",
			"};",
			"T.prototype.afterContentLifecycleCallbacksInternal = function() {",
			"  this.directive_0_0.ngAfterContentChecked();",
			"};",
			"T.prototype.afterViewLifecycleCallbacksInternal = function() {",
			"  if(this.state === ChangeDetectorState.NeverChecked) this.directive_0_0.ngAfterViewInit();",
			"};",
			"T.prototype.hydrateDirectives = function(directives) {",
			"  this.outputSubscriptions = new Array(1);",
			"  this.directive_0_0 = this.getDirectiveFor(directives, 0);",
			"  this.outputSubscriptions[0] = this.directive_0_0.changed.subscribe({next: " +
				"(function(event) { return this.handleEvent('change', 0, event); }).bind(this)});",
			"  this.directive_1_0 = this.getDirectiveFor(directives, 1);",
			"  this.detector_1_0 = this.getDetectorFor(directives, 1);",
			"};",
			"T.prototype.dehydrateDirectives = function(destroyPipes) {",
			"  this.directive_0_0.ngOnDestroy();",
			"};",
		}, "\n")
		if diff := cmp.Diff(want, src); diff != "" {
			t.Errorf("GenerateDetector() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should leave out debug info by default", func(t *testing.T) {
		src, err := NewCodeGenerator(nil).GenerateDetector(def, "T")
		if err != nil {
			t.Fatalf("GenerateDetector() error = %v", err)
		}
		if !strings.Contains(src, `bindingTarget("elementProperty", 0, "title", "", null)`) {
			t.Errorf("expected a binding target without debug info in:\n%s", src)
		}
	})
}

func TestRunCoalesce(t *testing.T) {
	path := writeRecords(t, t.TempDir(), "ternary.records.yaml", ternaryRecords)

	var out bytes.Buffer
	if err := runCoalesce(path, &out); err != nil {
		t.Fatalf("runCoalesce() error = %v", err)
	}
	got, err := cd.LoadRecords(out.Bytes())
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(got) != 3 || got[1].Mode != cd.RecordTypeSkipRecordsIf {
		t.Errorf("unexpected coalesced records:\n%s", out.String())
	}
}

func TestRunCodegen(t *testing.T) {
	dir := t.TempDir()
	path := writeRecords(t, dir, "user_card.records.yaml", ternaryRecords)

	var out bytes.Buffer
	if err := runCodegen(path, config.NewChangeDetectorGenConfig(), &out); err != nil {
		t.Fatalf("runCodegen() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "UserCard_ChangeDetector.prototype.detectChangesInRecordsInternal") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	bad := writeRecords(t, dir, "bad.records.yaml", "records:\n  - {mode: PropertyRead, name: a, context: 3}\n")
	if err := runCodegen(bad, nil, &out); err == nil {
		t.Error("expected an error for malformed records")
	}
}

func TestRunCodegenDirectiveCondition(t *testing.T) {
	path := writeRecords(t, t.TempDir(), "guard.records.yaml", `records:
  - {mode: SkipRecordsIf, name: cond, context: -1, directive: [0, 0], fixedArgs: [2]}
  - {mode: PropertyRead, name: a, context: 0, lastInBinding: true}
`)

	var out bytes.Buffer
	if err := runCodegen(path, nil, &out); err != nil {
		t.Fatalf("runCodegen() error = %v", err)
	}
	want := strings.Join([]string{
		"Guard_ChangeDetector.prototype.detectChangesInRecordsInternal = function(throwOnChange) {",
		"  var l_context = this.context;",
		"  var l_cond0, l_a1;",
		"  var changes = null;",
		"  if (!this.directive_0_0) {",
		"    l_a1 = l_context.a;",
		"  }",
		"};",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("runCodegen() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileProject(t *testing.T) {
	dir := t.TempDir()
	writeRecords(t, dir, "todo_list.records.yaml", ternaryRecords)

	if err := CompileProject(dir, "out", config.NewChangeDetectorGenConfig()); err != nil {
		t.Fatalf("CompileProject() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", "TodoList_ChangeDetector.js"))
	if err != nil {
		t.Fatalf("expected a generated detector: %v", err)
	}
	if !strings.Contains(string(data), "if (!l_a0) {") {
		t.Errorf("unexpected generated source:\n%s", data)
	}
}

func TestTypeNameOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"todo_list.records.yaml", "TodoList_ChangeDetector"},
		{"dir/user-card.records.yaml", "UserCard_ChangeDetector"},
		{"app.yaml", "App_ChangeDetector"},
		{"___.records.yaml", "Component_ChangeDetector"},
	}
	for _, tt := range tests {
		if got := typeNameOf(tt.path); got != tt.want {
			t.Errorf("typeNameOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
