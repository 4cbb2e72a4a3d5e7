package change_detection

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// RecordType is the operation performed by a ProtoRecord
type RecordType int

const (
	// RecordTypeSelf - Passes through the value of the context record
	RecordTypeSelf RecordType = iota
	// RecordTypeConst - A literal value held in FuncOrValue
	RecordTypeConst
	// RecordTypePrimitiveOp - A call to a helper of the change detection util (operators, conditionals)
	RecordTypePrimitiveOp
	// RecordTypePropertyRead - Reads a property of the context
	RecordTypePropertyRead
	// RecordTypePropertyWrite - Writes a property of the context (event bindings only)
	RecordTypePropertyWrite
	// RecordTypeLocal - Reads a template local
	RecordTypeLocal
	// RecordTypeInvokeMethod - Calls a method of the context
	RecordTypeInvokeMethod
	// RecordTypeInvokeClosure - Calls the context as a function
	RecordTypeInvokeClosure
	// RecordTypeKeyedRead - Reads `context[key]`
	RecordTypeKeyedRead
	// RecordTypeKeyedWrite - Writes `context[key]` (event bindings only)
	RecordTypeKeyedWrite
	// RecordTypeInterpolate - String interpolation, the static parts live in FixedArgs
	RecordTypeInterpolate
	// RecordTypeSafeProperty - `context?.name`
	RecordTypeSafeProperty
	// RecordTypeCollectionLiteral - Array or map literal built by a pure util function
	RecordTypeCollectionLiteral
	// RecordTypeSafeMethodInvoke - `context?.name(args)`
	RecordTypeSafeMethodInvoke
	// RecordTypeDirectiveLifecycle - Calls a lifecycle hook of a directive
	RecordTypeDirectiveLifecycle
	// RecordTypeChain - `a; b; c` in event bindings, evaluates to the last arg
	RecordTypeChain
	// RecordTypeSkipRecordsIf - Skips forward when the context value is truthy
	RecordTypeSkipRecordsIf
	// RecordTypeSkipRecordsIfNot - Skips forward when the context value is falsy
	RecordTypeSkipRecordsIfNot
	// RecordTypeSkipRecords - Skips forward unconditionally
	RecordTypeSkipRecords
)

var recordTypeNames = map[RecordType]string{
	RecordTypeSelf:               "Self",
	RecordTypeConst:              "Const",
	RecordTypePrimitiveOp:        "PrimitiveOp",
	RecordTypePropertyRead:       "PropertyRead",
	RecordTypePropertyWrite:      "PropertyWrite",
	RecordTypeLocal:              "Local",
	RecordTypeInvokeMethod:       "InvokeMethod",
	RecordTypeInvokeClosure:      "InvokeClosure",
	RecordTypeKeyedRead:          "KeyedRead",
	RecordTypeKeyedWrite:         "KeyedWrite",
	RecordTypeInterpolate:        "Interpolate",
	RecordTypeSafeProperty:       "SafeProperty",
	RecordTypeCollectionLiteral:  "CollectionLiteral",
	RecordTypeSafeMethodInvoke:   "SafeMethodInvoke",
	RecordTypeDirectiveLifecycle: "DirectiveLifecycle",
	RecordTypeChain:              "Chain",
	RecordTypeSkipRecordsIf:      "SkipRecordsIf",
	RecordTypeSkipRecordsIfNot:   "SkipRecordsIfNot",
	RecordTypeSkipRecords:        "SkipRecords",
}

func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}
	return "RecordType(" + strconv.Itoa(int(t)) + ")"
}

// ParseRecordType returns the RecordType named s
func ParseRecordType(s string) (RecordType, error) {
	for t, name := range recordTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown record type %q", s)
}

// DirectiveIndex identifies a directive instance on a host element
type DirectiveIndex struct {
	ElementIndex   int
	DirectiveIndex int
}

// Name is the suffix used for the generated directive and detector fields
func (d *DirectiveIndex) Name() string {
	return fmt.Sprintf("%d_%d", d.ElementIndex, d.DirectiveIndex)
}

// ProtoRecord is one node of the change detection expression IR.
//
// Records live in an ordered list and reference each other by SelfIndex,
// which is the 1-based position of the record in that list. Index 0 is the
// component context and a ContextIndex of -1 means the directive instance
// identified by DirectiveIndex.
type ProtoRecord struct {
	Mode        RecordType
	Name        string
	FuncOrValue interface{}
	Args        []int
	// FixedArgs holds record local constants. For skip records FixedArgs[0]
	// is the 0-based position of the first record after the skipped span.
	FixedArgs      []interface{}
	ContextIndex   int
	DirectiveIndex *DirectiveIndex
	SelfIndex      int
	// BindingRecord is opaque to the coalescer and carried through as is
	BindingRecord          interface{}
	LastInBinding          bool
	LastInDirective        bool
	ArgumentToPureFunction bool
	ReferencedBySelf       bool
	PropertyBindingIndex   int
}

// IsPureFunction reports whether the record is computed by a side effect free util call
func (r *ProtoRecord) IsPureFunction() bool {
	return r.Mode == RecordTypeInterpolate || r.Mode == RecordTypeCollectionLiteral
}

// IsUsedByOtherRecord reports whether another record reads the value of r
func (r *ProtoRecord) IsUsedByOtherRecord() bool {
	return !r.LastInBinding || r.ReferencedBySelf
}

// ShouldBeChecked reports whether a change of the value has to be detected
func (r *ProtoRecord) ShouldBeChecked() bool {
	return r.ArgumentToPureFunction || r.LastInBinding || r.IsPureFunction()
}

func (r *ProtoRecord) IsLifeCycleRecord() bool {
	return r.Mode == RecordTypeDirectiveLifecycle
}

func (r *ProtoRecord) IsSkipRecord() bool {
	return r.Mode == RecordTypeSkipRecords || r.IsConditionalSkipRecord()
}

func (r *ProtoRecord) IsConditionalSkipRecord() bool {
	return r.Mode == RecordTypeSkipRecordsIf || r.Mode == RecordTypeSkipRecordsIfNot
}

func (r *ProtoRecord) IsUnconditionalSkipRecord() bool {
	return r.Mode == RecordTypeSkipRecords
}

// HasDirectiveIndex reports whether the record is scoped to a directive instance
func (r *ProtoRecord) HasDirectiveIndex() bool {
	return r.DirectiveIndex != nil
}

// SkipTarget returns the position a skip record jumps to.
// It panics when r is not a skip record or carries no target.
func (r *ProtoRecord) SkipTarget() int {
	if !r.IsSkipRecord() || len(r.FixedArgs) == 0 {
		panic(fmt.Errorf("%s record %d has no skip target", r.Mode, r.SelfIndex))
	}
	target, ok := asSkipTarget(r.FixedArgs[0])
	if !ok {
		panic(fmt.Errorf("%s record %d has a non integer skip target %v", r.Mode, r.SelfIndex, r.FixedArgs[0]))
	}
	return target
}

// asSkipTarget accepts the integer forms a target takes after decoding.
// Floats must be integral.
func asSkipTarget(v interface{}) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

func (r *ProtoRecord) setSkipTarget(target int) {
	r.FixedArgs[0] = target
}

func (r *ProtoRecord) String() string {
	return fmt.Sprintf("%s(%d name=%q ctx=%d args=%v fixed=%v)", r.Mode, r.SelfIndex, r.Name, r.ContextIndex, r.Args, r.FixedArgs)
}

// sameDirectiveIndex compares the directive identity of two records.
// Records without a directive only match records without a directive.
func sameDirectiveIndex(a, b *ProtoRecord) bool {
	if !a.HasDirectiveIndex() || !b.HasDirectiveIndex() {
		return !a.HasDirectiveIndex() && !b.HasDirectiveIndex()
	}
	return a.DirectiveIndex.ElementIndex == b.DirectiveIndex.ElementIndex &&
		a.DirectiveIndex.DirectiveIndex == b.DirectiveIndex.DirectiveIndex
}

// looseIdentical is identity for reference values and equality for
// primitives, with NaN equal to itself.
func looseIdentical(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
