package main

import (
	"fmt"
	"strings"

	cd "ngc-go/packages/compiler/src/change_detection"
	"ngc-go/packages/compiler/src/config"
	"ngc-go/packages/compiler/src/output"
)

// CodeGenerator generates the JavaScript methods of a change detector from
// coalesced proto records
type CodeGenerator struct {
	config *config.ChangeDetectorGenConfig
	ctx    *output.EmitterContext
	names  *cd.CodegenNameUtil
	logic  *cd.CodegenLogicUtil
	// endOfBlockIdxs holds, for every open skip block, the position of its last record
	endOfBlockIdxs []int
}

// NewCodeGenerator creates a new code generator
func NewCodeGenerator(cfg *config.ChangeDetectorGenConfig) *CodeGenerator {
	if cfg == nil {
		cfg = config.NewChangeDetectorGenConfig()
	}
	return &CodeGenerator{config: cfg}
}

// Generate generates the detectChangesInRecordsInternal method of typeName
func (cg *CodeGenerator) Generate(records []*cd.ProtoRecord, typeName string) (string, error) {
	return cg.GenerateDetector(&cd.DetectorDefinition{Records: records}, typeName)
}

// GenerateDetector generates the static tables and the methods of typeName.
// The directive methods are only generated when the view hosts directives.
func (cg *CodeGenerator) GenerateDetector(def *cd.DetectorDefinition, typeName string) (string, error) {
	cg.ctx = output.NewEmitterContext(0)
	cg.names = cd.NewCodegenNameUtil(def.Records, nil)
	cg.logic = cd.NewCodegenLogicUtil(cg.names, cg.config.UtilName, cg.config.ChangeDetectorStateName)
	cg.endOfBlockIdxs = nil

	if len(def.BindingTargets) > 0 {
		cg.ctx.Printlnf("%s.gen_propertyBindingTargets = %s;", typeName,
			cg.logic.GenPropertyBindingTargets(def.BindingTargets, cg.config.GenDebugInfo))
	}
	if len(def.Directives) > 0 {
		cg.ctx.Printlnf("%s.gen_directiveIndices = %s;", typeName, cg.logic.GenDirectiveIndices(def.Directives))
	}

	if err := cg.generateDetectChanges(def.Records, typeName); err != nil {
		return "", err
	}

	if len(def.Directives) > 0 {
		cg.generateMethod(typeName, "afterContentLifecycleCallbacksInternal", "",
			cg.logic.GenContentLifecycleCallbacks(def.Directives))
		cg.generateMethod(typeName, "afterViewLifecycleCallbacksInternal", "",
			cg.logic.GenViewLifecycleCallbacks(def.Directives))
		hydrate := append(splitStatements(cg.logic.GenHydrateDirectives(def.Directives)),
			splitStatements(cg.logic.GenHydrateDetectors(def.Directives))...)
		cg.generateMethod(typeName, "hydrateDirectives", "directives", hydrate)
		cg.generateMethod(typeName, "dehydrateDirectives", "destroyPipes",
			splitStatements(cg.logic.GenDirectivesOnDestroy(def.Directives)))
	}

	return cg.ctx.ToSource(), nil
}

func (cg *CodeGenerator) generateDetectChanges(records []*cd.ProtoRecord, typeName string) error {
	cg.ctx.Printlnf("%s.prototype.detectChangesInRecordsInternal = function(throwOnChange) {", typeName)
	cg.ctx.IncIndent()

	locals := cg.names.GetLocalNames()
	cg.ctx.Printlnf("var %s = this.%s;", locals[0], cd.ContextAccessor)
	if len(locals) > 1 {
		cg.ctx.Printlnf("var %s;", strings.Join(locals[1:], ", "))
	}
	cg.ctx.Println("var changes = null;")

	for protoIndex, r := range records {
		if err := cg.generateRecord(protoIndex, r); err != nil {
			return fmt.Errorf("record %d: %w", r.SelfIndex, err)
		}
		cg.generateEndOfSkipBlocks(protoIndex)
	}
	for range cg.endOfBlockIdxs {
		cg.ctx.DecIndent()
		cg.ctx.Println("}")
	}

	cg.ctx.DecIndent()
	cg.ctx.Println("};")
	return nil
}

func (cg *CodeGenerator) generateMethod(typeName, name, params string, body []string) {
	cg.ctx.Printlnf("%s.prototype.%s = function(%s) {", typeName, name, params)
	cg.ctx.IncIndent()
	for _, stmt := range body {
		cg.ctx.Println(stmt)
	}
	cg.ctx.DecIndent()
	cg.ctx.Println("};")
}

func splitStatements(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (cg *CodeGenerator) generateRecord(protoIndex int, r *cd.ProtoRecord) error {
	switch {
	case r.IsConditionalSkipRecord():
		return cg.generateConditionalSkip(r)
	case r.IsUnconditionalSkipRecord():
		return cg.generateUnconditionalSkip(protoIndex, r)
	case r.IsLifeCycleRecord():
		stmt, err := cg.logic.GenDirectiveLifecycle(r)
		if err != nil {
			return err
		}
		cg.ctx.Println(stmt)
		return nil
	}

	stmt, err := cg.logic.GenPropertyBindingEvalValue(r)
	if err != nil {
		return err
	}
	cg.ctx.Println(stmt)
	if cg.config.LogBindingUpdate && r.LastInBinding {
		cg.ctx.Printlnf("this.logBindingUpdate(%s);", cg.names.GetLocalName(r.SelfIndex))
	}
	return nil
}

// generateConditionalSkip opens a block evaluated only when the skip is not taken
func (cg *CodeGenerator) generateConditionalSkip(r *cd.ProtoRecord) error {
	condition, err := cg.logic.GenSkipCondition(r)
	if err != nil {
		return err
	}
	maybeNegate := ""
	if r.Mode == cd.RecordTypeSkipRecordsIf {
		maybeNegate = "!"
	}
	cg.endOfBlockIdxs = append(cg.endOfBlockIdxs, r.SkipTarget()-1)
	cg.ctx.Printlnf("if (%s%s) {", maybeNegate, condition)
	cg.ctx.IncIndent()
	return nil
}

// generateUnconditionalSkip turns the block ending right here into the
// first branch of an if/else.
func (cg *CodeGenerator) generateUnconditionalSkip(protoIndex int, r *cd.ProtoRecord) error {
	last := len(cg.endOfBlockIdxs) - 1
	if last < 0 || cg.endOfBlockIdxs[last] != protoIndex {
		return fmt.Errorf("unconditional skip outside of a conditional block")
	}
	cg.endOfBlockIdxs[last] = r.SkipTarget() - 1
	cg.ctx.DecIndent()
	cg.ctx.Println("} else {")
	cg.ctx.IncIndent()
	return nil
}

func (cg *CodeGenerator) generateEndOfSkipBlocks(protoIndex int) {
	for len(cg.endOfBlockIdxs) > 0 && cg.endOfBlockIdxs[len(cg.endOfBlockIdxs)-1] == protoIndex {
		cg.endOfBlockIdxs = cg.endOfBlockIdxs[:len(cg.endOfBlockIdxs)-1]
		cg.ctx.DecIndent()
		cg.ctx.Println("}")
	}
}
