package change_detection

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// recordListDoc is the YAML form of a record list:
//
//	records:
//	  - mode: PropertyRead
//	    name: a
//	    lastInBinding: true
//	  - mode: SkipRecordsIf
//	    context: 1
//	    fixedArgs: [4]
//
// A detector definition adds the directives hosted by the view and the
// targets of its property bindings:
//
//	directives:
//	  - directive: [0, 0]
//	    callDoCheck: true
//	    changeDetection: OnPush
//	    outputs: [[changed, change]]
//	bindingTargets:
//	  - {mode: elementProperty, elementIndex: 0, name: title}
//	  - ~
type recordListDoc struct {
	Records        []recordDoc         `yaml:"records"`
	Directives     []directiveDoc      `yaml:"directives,omitempty"`
	BindingTargets []*bindingTargetDoc `yaml:"bindingTargets,omitempty"`
}

type recordDoc struct {
	Mode                   RecordType    `yaml:"mode"`
	Name                   string        `yaml:"name,omitempty"`
	Value                  interface{}   `yaml:"value,omitempty"`
	Args                   []int         `yaml:"args,flow,omitempty"`
	FixedArgs              []interface{} `yaml:"fixedArgs,flow,omitempty"`
	Context                int           `yaml:"context"`
	Directive              []int         `yaml:"directive,flow,omitempty"`
	Self                   int           `yaml:"self,omitempty"`
	LastInBinding          bool          `yaml:"lastInBinding,omitempty"`
	LastInDirective        bool          `yaml:"lastInDirective,omitempty"`
	ArgumentToPureFunction bool          `yaml:"argumentToPureFunction,omitempty"`
	ReferencedBySelf       bool          `yaml:"referencedBySelf,omitempty"`
	PropertyBindingIndex   int           `yaml:"propertyBindingIndex,omitempty"`
}

type directiveDoc struct {
	Directive               []int      `yaml:"directive,flow"`
	CallAfterContentInit    bool       `yaml:"callAfterContentInit"`
	CallAfterContentChecked bool       `yaml:"callAfterContentChecked"`
	CallAfterViewInit       bool       `yaml:"callAfterViewInit"`
	CallAfterViewChecked    bool       `yaml:"callAfterViewChecked"`
	CallOnChanges           bool       `yaml:"callOnChanges"`
	CallDoCheck             bool       `yaml:"callDoCheck"`
	CallOnInit              bool       `yaml:"callOnInit"`
	CallOnDestroy           bool       `yaml:"callOnDestroy"`
	ChangeDetection         string     `yaml:"changeDetection"`
	Outputs                 [][]string `yaml:"outputs,flow"`
}

type bindingTargetDoc struct {
	Mode         string `yaml:"mode"`
	ElementIndex int    `yaml:"elementIndex"`
	Name         string `yaml:"name"`
	Unit         string `yaml:"unit"`
	Debug        string `yaml:"debug"`
}

// DetectorDefinition is everything needed to generate one change detector
type DetectorDefinition struct {
	Records        []*ProtoRecord
	Directives     []*DirectiveRecord
	BindingTargets []*BindingTarget
}

func (t RecordType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *RecordType) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseRecordType(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed
	return nil
}

// LoadRecords decodes a YAML record list. A record without `self` gets its
// 1-based position in the list.
func LoadRecords(data []byte) ([]*ProtoRecord, error) {
	def, err := LoadDetectorDefinition(data)
	if err != nil {
		return nil, err
	}
	return def.Records, nil
}

// LoadDetectorDefinition decodes the records, directives and binding
// targets of a detector.
func LoadDetectorDefinition(data []byte) (*DetectorDefinition, error) {
	var doc recordListDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	records, err := decodeRecords(doc.Records)
	if err != nil {
		return nil, err
	}
	directives, err := decodeDirectives(doc.Directives)
	if err != nil {
		return nil, err
	}
	return &DetectorDefinition{
		Records:        records,
		Directives:     directives,
		BindingTargets: decodeBindingTargets(doc.BindingTargets),
	}, nil
}

func decodeDirectiveIndex(pair []int) (*DirectiveIndex, error) {
	if len(pair) != 2 {
		return nil, fmt.Errorf("directive must be [elementIndex, directiveIndex], got %v", pair)
	}
	return &DirectiveIndex{ElementIndex: pair[0], DirectiveIndex: pair[1]}, nil
}

func decodeRecords(docs []recordDoc) ([]*ProtoRecord, error) {
	records := make([]*ProtoRecord, len(docs))
	for i, d := range docs {
		r := &ProtoRecord{
			Mode:                   d.Mode,
			Name:                   d.Name,
			FuncOrValue:            d.Value,
			Args:                   d.Args,
			FixedArgs:              d.FixedArgs,
			ContextIndex:           d.Context,
			SelfIndex:              d.Self,
			LastInBinding:          d.LastInBinding,
			LastInDirective:        d.LastInDirective,
			ArgumentToPureFunction: d.ArgumentToPureFunction,
			ReferencedBySelf:       d.ReferencedBySelf,
			PropertyBindingIndex:   d.PropertyBindingIndex,
		}
		if r.Args == nil {
			r.Args = []int{}
		}
		if r.SelfIndex == 0 {
			r.SelfIndex = i + 1
		}
		if d.Directive != nil {
			dir, err := decodeDirectiveIndex(d.Directive)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			r.DirectiveIndex = dir
		}
		records[i] = r
	}
	return records, nil
}

func decodeDirectives(docs []directiveDoc) ([]*DirectiveRecord, error) {
	directives := make([]*DirectiveRecord, len(docs))
	for i, d := range docs {
		dir, err := decodeDirectiveIndex(d.Directive)
		if err != nil {
			return nil, fmt.Errorf("directive %d: %w", i, err)
		}
		strategy, err := ParseChangeDetectionStrategy(d.ChangeDetection)
		if err != nil {
			return nil, fmt.Errorf("directive %d: %w", i, err)
		}
		outputs := make([][2]string, len(d.Outputs))
		for j, output := range d.Outputs {
			if len(output) != 2 {
				return nil, fmt.Errorf("directive %d: output must be [property, event], got %v", i, output)
			}
			outputs[j] = [2]string{output[0], output[1]}
		}
		directives[i] = &DirectiveRecord{
			DirectiveIndex:          dir,
			CallAfterContentInit:    d.CallAfterContentInit,
			CallAfterContentChecked: d.CallAfterContentChecked,
			CallAfterViewInit:       d.CallAfterViewInit,
			CallAfterViewChecked:    d.CallAfterViewChecked,
			CallOnChanges:           d.CallOnChanges,
			CallDoCheck:             d.CallDoCheck,
			CallOnInit:              d.CallOnInit,
			CallOnDestroy:           d.CallOnDestroy,
			ChangeDetection:         strategy,
			Outputs:                 outputs,
		}
	}
	return directives, nil
}

// decodeBindingTargets keeps null entries as nil targets
func decodeBindingTargets(docs []*bindingTargetDoc) []*BindingTarget {
	targets := make([]*BindingTarget, len(docs))
	for i, d := range docs {
		if d == nil {
			continue
		}
		targets[i] = &BindingTarget{
			Mode:         d.Mode,
			ElementIndex: d.ElementIndex,
			Name:         d.Name,
			Unit:         d.Unit,
			Debug:        d.Debug,
		}
	}
	return targets
}

// MarshalRecords encodes records in the form read by LoadRecords
func MarshalRecords(records []*ProtoRecord) ([]byte, error) {
	doc := recordListDoc{Records: make([]recordDoc, len(records))}
	for i, r := range records {
		d := recordDoc{
			Mode:                   r.Mode,
			Name:                   r.Name,
			Value:                  r.FuncOrValue,
			Args:                   r.Args,
			FixedArgs:              r.FixedArgs,
			Context:                r.ContextIndex,
			Self:                   r.SelfIndex,
			LastInBinding:          r.LastInBinding,
			LastInDirective:        r.LastInDirective,
			ArgumentToPureFunction: r.ArgumentToPureFunction,
			ReferencedBySelf:       r.ReferencedBySelf,
			PropertyBindingIndex:   r.PropertyBindingIndex,
		}
		if r.DirectiveIndex != nil {
			d.Directive = []int{r.DirectiveIndex.ElementIndex, r.DirectiveIndex.DirectiveIndex}
		}
		doc.Records[i] = d
	}
	return yaml.Marshal(&doc)
}
