package change_detection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownOperation is returned when a record mode has no evaluation statement
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrUnknownLifecycle is returned for a lifecycle record naming no known hook
	ErrUnknownLifecycle = errors.New("unknown lifecycle event")
)

// ChangeDetectionStrategy of a directive's own change detector
type ChangeDetectionStrategy int

const (
	// ChangeDetectionStrategyDefault - Checked on every change detection run
	ChangeDetectionStrategyDefault ChangeDetectionStrategy = iota
	// ChangeDetectionStrategyOnPush - Checked only when an input changes
	ChangeDetectionStrategyOnPush
)

// ParseChangeDetectionStrategy reads "Default" or "OnPush". An empty string is Default.
func ParseChangeDetectionStrategy(s string) (ChangeDetectionStrategy, error) {
	switch s {
	case "", "Default":
		return ChangeDetectionStrategyDefault, nil
	case "OnPush":
		return ChangeDetectionStrategyOnPush, nil
	}
	return 0, fmt.Errorf("unknown change detection strategy %q", s)
}

// DirectiveRecord describes a directive instance hosted by the component view
type DirectiveRecord struct {
	DirectiveIndex          *DirectiveIndex
	CallAfterContentInit    bool
	CallAfterContentChecked bool
	CallAfterViewInit       bool
	CallAfterViewChecked    bool
	CallOnChanges           bool
	CallDoCheck             bool
	CallOnInit              bool
	CallOnDestroy           bool
	ChangeDetection         ChangeDetectionStrategy
	// Outputs pairs a directive property with the element event it emits
	Outputs [][2]string
}

func (d *DirectiveRecord) IsDefaultChangeDetection() bool {
	return d.ChangeDetection == ChangeDetectionStrategyDefault
}

// BindingTarget is the element property, attribute, class or style a binding writes to
type BindingTarget struct {
	Mode         string
	ElementIndex int
	Name         string
	Unit         string
	Debug        string
}

// CodegenLogicUtil generates the statements of a change detector class
type CodegenLogicUtil struct {
	names                   Names
	utilName                string
	changeDetectorStateName string
}

// NewCodegenLogicUtil creates a CodegenLogicUtil. utilName is the name of
// the runtime helper object and changeDetectorStateName the name of the
// detector state enum.
func NewCodegenLogicUtil(names Names, utilName, changeDetectorStateName string) *CodegenLogicUtil {
	return &CodegenLogicUtil{
		names:                   names,
		utilName:                utilName,
		changeDetectorStateName: changeDetectorStateName,
	}
}

// GenPropertyBindingEvalValue generates a statement which updates the local
// variable representing protoRec with the current value of the record.
func (u *CodegenLogicUtil) GenPropertyBindingEvalValue(protoRec *ProtoRecord) (string, error) {
	return u.genEvalValue(protoRec, u.names.GetLocalName, u.names.GetLocalsAccessorName())
}

// GenEventBindingEvalValue is GenPropertyBindingEvalValue for the records of an event binding
func (u *CodegenLogicUtil) GenEventBindingEvalValue(eventRecord *EventBinding, protoRec *ProtoRecord) (string, error) {
	getLocalName := func(idx int) string {
		return u.names.GetEventLocalName(eventRecord, idx)
	}
	return u.genEvalValue(protoRec, getLocalName, "locals")
}

func (u *CodegenLogicUtil) genEvalValue(protoRec *ProtoRecord, getLocalName func(int) string, localsAccessor string) (string, error) {
	context, err := u.genContext(protoRec, getLocalName)
	if err != nil {
		return "", err
	}

	args := make([]string, len(protoRec.Args))
	for i, arg := range protoRec.Args {
		args[i] = getLocalName(arg)
	}
	argString := strings.Join(args, ", ")

	var rhs string
	switch protoRec.Mode {
	case RecordTypeSelf:
		rhs = context
	case RecordTypeConst:
		rhs = Codify(protoRec.FuncOrValue)
	case RecordTypePropertyRead:
		rhs = fmt.Sprintf("%s.%s", context, protoRec.Name)
	case RecordTypeSafeProperty:
		read := fmt.Sprintf("%s.%s", context, protoRec.Name)
		rhs = fmt.Sprintf("%s.isValueBlank(%s) ? null : %s", u.utilName, context, read)
	case RecordTypePropertyWrite:
		if len(args) < 1 {
			return "", fmt.Errorf("%s record %d has no value argument", protoRec.Mode, protoRec.SelfIndex)
		}
		rhs = fmt.Sprintf("%s.%s = %s", context, protoRec.Name, args[0])
	case RecordTypeLocal:
		rhs = fmt.Sprintf("%s.get(%s)", localsAccessor, RawString(protoRec.Name))
	case RecordTypeInvokeMethod:
		rhs = fmt.Sprintf("%s.%s(%s)", context, protoRec.Name, argString)
	case RecordTypeSafeMethodInvoke:
		invoke := fmt.Sprintf("%s.%s(%s)", context, protoRec.Name, argString)
		rhs = fmt.Sprintf("%s.isValueBlank(%s) ? null : %s", u.utilName, context, invoke)
	case RecordTypeInvokeClosure:
		rhs = fmt.Sprintf("%s(%s)", context, argString)
	case RecordTypePrimitiveOp, RecordTypeCollectionLiteral:
		rhs = fmt.Sprintf("%s.%s(%s)", u.utilName, protoRec.Name, argString)
	case RecordTypeInterpolate:
		interpolation, err := u.genInterpolation(protoRec, args)
		if err != nil {
			return "", err
		}
		rhs = interpolation
	case RecordTypeKeyedRead:
		if len(args) < 1 {
			return "", fmt.Errorf("%s record %d has no key argument", protoRec.Mode, protoRec.SelfIndex)
		}
		rhs = fmt.Sprintf("%s[%s]", context, args[0])
	case RecordTypeKeyedWrite:
		if len(args) < 2 {
			return "", fmt.Errorf("%s record %d needs a key and a value argument", protoRec.Mode, protoRec.SelfIndex)
		}
		rhs = fmt.Sprintf("%s[%s] = %s", context, args[0], args[1])
	case RecordTypeChain:
		if len(args) == 0 {
			return "", fmt.Errorf("%s record %d has no arguments", protoRec.Mode, protoRec.SelfIndex)
		}
		rhs = args[len(args)-1]
	default:
		return "", fmt.Errorf("%w %s", ErrUnknownOperation, protoRec.Mode)
	}
	return fmt.Sprintf("%s = %s;", getLocalName(protoRec.SelfIndex), rhs), nil
}

// GenSkipCondition returns the expression a conditional skip record tests
func (u *CodegenLogicUtil) GenSkipCondition(protoRec *ProtoRecord) (string, error) {
	if !protoRec.IsConditionalSkipRecord() {
		return "", fmt.Errorf("%w %s as a skip condition", ErrUnknownOperation, protoRec.Mode)
	}
	return u.genContext(protoRec, u.names.GetLocalName)
}

// genContext resolves the context of protoRec: the directive instance for
// -1, the local of an earlier record otherwise.
func (u *CodegenLogicUtil) genContext(protoRec *ProtoRecord, getLocalName func(int) string) (string, error) {
	if protoRec.ContextIndex != -1 {
		return getLocalName(protoRec.ContextIndex), nil
	}
	if !protoRec.HasDirectiveIndex() {
		return "", fmt.Errorf("%s record %d reads a directive without a directive index", protoRec.Mode, protoRec.SelfIndex)
	}
	return u.names.GetDirectiveName(protoRec.DirectiveIndex), nil
}

// genInterpolation interleaves the static parts held in FixedArgs with the
// stringified arguments.
func (u *CodegenLogicUtil) genInterpolation(protoRec *ProtoRecord, args []string) (string, error) {
	if len(protoRec.FixedArgs) != len(args)+1 {
		return "", fmt.Errorf("interpolation record %d has %d static parts for %d values",
			protoRec.SelfIndex, len(protoRec.FixedArgs), len(args))
	}
	iVals := make([]string, 0, 2*len(args)+1)
	for i, arg := range args {
		iVals = append(iVals, Codify(protoRec.FixedArgs[i]))
		iVals = append(iVals, fmt.Sprintf("%s.s(%s)", u.utilName, arg))
	}
	iVals = append(iVals, Codify(protoRec.FixedArgs[len(args)]))
	return CombineGeneratedStrings(iVals), nil
}

// GenDirectiveLifecycle generates the call of the hook named by a
// DirectiveLifecycle record.
func (u *CodegenLogicUtil) GenDirectiveLifecycle(r *ProtoRecord) (string, error) {
	if r.Mode != RecordTypeDirectiveLifecycle {
		return "", fmt.Errorf("%w %s in lifecycle dispatch", ErrUnknownOperation, r.Mode)
	}
	if !r.HasDirectiveIndex() {
		return "", fmt.Errorf("lifecycle record %d has no directive index", r.SelfIndex)
	}
	dir := u.names.GetDirectiveName(r.DirectiveIndex)
	switch r.Name {
	case "DoCheck":
		return fmt.Sprintf("if (!throwOnChange) %s.ngDoCheck();", dir), nil
	case "OnInit":
		return fmt.Sprintf("if (!throwOnChange && %s === %s.NeverChecked) %s.ngOnInit();",
			u.names.GetStateName(), u.changeDetectorStateName, dir), nil
	case "OnChanges":
		return fmt.Sprintf("if (!throwOnChange && changes) %s.ngOnChanges(changes);", dir), nil
	}
	return "", fmt.Errorf("%w '%s'", ErrUnknownLifecycle, r.Name)
}

func (u *CodegenLogicUtil) GenPropertyBindingTargets(propertyBindingTargets []*BindingTarget, genDebugInfo bool) string {
	bs := make([]string, len(propertyBindingTargets))
	for i, b := range propertyBindingTargets {
		if b == nil {
			bs[i] = "null"
			continue
		}
		debug := "null"
		if genDebugInfo {
			debug = Codify(b.Debug)
		}
		bs[i] = fmt.Sprintf("%s.bindingTarget(%s, %d, %s, %s, %s)",
			u.utilName, Codify(b.Mode), b.ElementIndex, Codify(b.Name), Codify(b.Unit), debug)
	}
	return "[" + strings.Join(bs, ", ") + "]"
}

func (u *CodegenLogicUtil) GenDirectiveIndices(directiveRecords []*DirectiveRecord) string {
	bs := make([]string, len(directiveRecords))
	for i, b := range directiveRecords {
		bs[i] = fmt.Sprintf("%s.directiveIndex(%d, %d)",
			u.utilName, b.DirectiveIndex.ElementIndex, b.DirectiveIndex.DirectiveIndex)
	}
	return "[" + strings.Join(bs, ", ") + "]"
}

// GenHydrateDirectives reads every directive instance and subscribes to its outputs
func (u *CodegenLogicUtil) GenHydrateDirectives(directiveRecords []*DirectiveRecord) string {
	var res []string
	outputCount := 0
	for i, r := range directiveRecords {
		dirVarName := u.names.GetDirectiveName(r.DirectiveIndex)
		res = append(res, fmt.Sprintf("%s = %s;", dirVarName, genReadDirective(i)))
		for _, output := range r.Outputs {
			eventHandlerExpr := genEventHandler(r.DirectiveIndex.ElementIndex, output[1])
			res = append(res, fmt.Sprintf("this.outputSubscriptions[%d] = %s.%s.subscribe({next: %s});",
				outputCount, dirVarName, output[0], eventHandlerExpr))
			outputCount++
		}
	}
	if outputCount > 0 {
		res = append([]string{fmt.Sprintf("this.outputSubscriptions = new Array(%d);", outputCount)}, res...)
	}
	return strings.Join(res, "\n")
}

func (u *CodegenLogicUtil) GenDirectivesOnDestroy(directiveRecords []*DirectiveRecord) string {
	var res []string
	for _, r := range directiveRecords {
		if r.CallOnDestroy {
			res = append(res, fmt.Sprintf("%s.ngOnDestroy();", u.names.GetDirectiveName(r.DirectiveIndex)))
		}
	}
	return strings.Join(res, "\n")
}

func genEventHandler(boundElementIndex int, eventName string) string {
	return fmt.Sprintf("(function(event) { return this.handleEvent('%s', %d, event); }).bind(this)",
		eventName, boundElementIndex)
}

func genReadDirective(index int) string {
	return fmt.Sprintf("this.getDirectiveFor(directives, %d)", index)
}

// GenHydrateDetectors reads the change detector of every directive not using the default strategy
func (u *CodegenLogicUtil) GenHydrateDetectors(directiveRecords []*DirectiveRecord) string {
	var res []string
	for i, r := range directiveRecords {
		if !r.IsDefaultChangeDetection() {
			res = append(res, fmt.Sprintf("%s = this.getDetectorFor(directives, %d);",
				u.names.GetDetectorName(r.DirectiveIndex), i))
		}
	}
	return strings.Join(res, "\n")
}

// GenContentLifecycleCallbacks calls the content hooks. Directives are
// visited last to first so children are notified before their parents.
func (u *CodegenLogicUtil) GenContentLifecycleCallbacks(directiveRecords []*DirectiveRecord) []string {
	res := []string{}
	for i := len(directiveRecords) - 1; i >= 0; i-- {
		dir := directiveRecords[i]
		name := u.names.GetDirectiveName(dir.DirectiveIndex)
		if dir.CallAfterContentInit {
			res = append(res, fmt.Sprintf("if(%s === %s.NeverChecked) %s.ngAfterContentInit();",
				u.names.GetStateName(), u.changeDetectorStateName, name))
		}
		if dir.CallAfterContentChecked {
			res = append(res, fmt.Sprintf("%s.ngAfterContentChecked();", name))
		}
	}
	return res
}

// GenViewLifecycleCallbacks calls the view hooks, last directive first
func (u *CodegenLogicUtil) GenViewLifecycleCallbacks(directiveRecords []*DirectiveRecord) []string {
	res := []string{}
	for i := len(directiveRecords) - 1; i >= 0; i-- {
		dir := directiveRecords[i]
		name := u.names.GetDirectiveName(dir.DirectiveIndex)
		if dir.CallAfterViewInit {
			res = append(res, fmt.Sprintf("if(%s === %s.NeverChecked) %s.ngAfterViewInit();",
				u.names.GetStateName(), u.changeDetectorStateName, name))
		}
		if dir.CallAfterViewChecked {
			res = append(res, fmt.Sprintf("%s.ngAfterViewChecked();", name))
		}
	}
	return res
}
