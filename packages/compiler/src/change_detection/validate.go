package change_detection

import (
	"errors"
	"fmt"
)

// ErrMalformedRecords is wrapped by every error reported by ValidateRecords
var ErrMalformedRecords = errors.New("malformed proto records")

// RecordError describes the first record breaking the record list contract
type RecordError struct {
	// Position is the 0-based position of the record in its list
	Position int
	Record   *ProtoRecord
	Reason   string
}

func (e *RecordError) Error() string {
	if e.Record == nil {
		return fmt.Sprintf("record at position %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("record at position %d (%s): %s", e.Position, e.Record.Mode, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecords
}

// ValidateRecords checks that records form a well formed list:
// SelfIndex values are sequential starting at 1, arguments and contexts
// only reference earlier records, and skip targets point forward within
// the list.
func ValidateRecords(records []*ProtoRecord) error {
	for i, r := range records {
		fail := func(format string, args ...interface{}) error {
			return &RecordError{Position: i, Record: r, Reason: fmt.Sprintf(format, args...)}
		}

		if r == nil {
			return &RecordError{Position: i, Reason: "nil record"}
		}
		if _, ok := recordTypeNames[r.Mode]; !ok {
			return fail("unknown mode %d", int(r.Mode))
		}
		if r.SelfIndex != i+1 {
			return fail("self index is %d, expected %d", r.SelfIndex, i+1)
		}
		for _, arg := range r.Args {
			if arg < 0 || arg >= r.SelfIndex {
				return fail("argument %d does not reference an earlier record", arg)
			}
		}
		if r.ContextIndex < -1 || r.ContextIndex >= r.SelfIndex {
			return fail("context %d does not reference an earlier record", r.ContextIndex)
		}
		if r.ContextIndex == -1 && !r.HasDirectiveIndex() {
			return fail("directive context without a directive index")
		}
		if r.IsSkipRecord() {
			if err := validateSkipTarget(r, i, len(records)); err != "" {
				return fail("%s", err)
			}
		}
	}
	return nil
}

func validateSkipTarget(r *ProtoRecord, position, length int) string {
	if len(r.FixedArgs) == 0 {
		return "skip record without target"
	}
	target, ok := asSkipTarget(r.FixedArgs[0])
	if !ok {
		return fmt.Sprintf("skip target %v is not an integer", r.FixedArgs[0])
	}
	if target <= position || target > length {
		return fmt.Sprintf("skip target %d is outside (%d, %d]", target, position, length)
	}
	return ""
}

// CoalesceChecked validates records, coalesces them and validates the
// result. An error on the result means the coalescer itself is broken.
func CoalesceChecked(records []*ProtoRecord) ([]*ProtoRecord, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, fmt.Errorf("coalesce input: %w", err)
	}
	out := Coalesce(records)
	if err := ValidateRecords(out); err != nil {
		return nil, fmt.Errorf("coalesce output: %w", err)
	}
	return out, nil
}
