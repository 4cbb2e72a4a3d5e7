// Package change_detection turns the proto records of a component view into
// the source of its change detector.
//
// A ProtoRecord is one step of evaluating the bindings of a view: reading a
// property, calling a method or a pure helper, interpolating text, calling a
// directive lifecycle hook, or skipping a run of records for `?:`, `&&`, `||`
// and safe navigation. Records reference each other by their 1-based
// SelfIndex. Index 0 is the component context and -1 the directive named by
// the record.
//
// Main entry points:
//
//   - Coalesce: remove duplicate computations and collapse short circuit skips
//   - CoalesceChecked: Coalesce with validation of its input and output
//   - LoadRecords / MarshalRecords: YAML form of a record list
//   - CodegenNameUtil / CodegenLogicUtil: statements of the generated detector
package change_detection
