package schema

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ProcessorMetadata is the typed view of the well-known metadata keys.
// Unknown keys are kept in Extra.
type ProcessorMetadata struct {
	Position []float64      `json:"position,omitempty" mapstructure:"position"`
	Selected bool           `json:"selected,omitempty" mapstructure:"selected"`
	Tags     []string       `json:"tags,omitempty" mapstructure:"tags"`
	Value    any            `json:"value,omitempty" mapstructure:"value"`
	Extra    map[string]any `json:"-" mapstructure:",remain"`
}

// DecodeMetadata decodes free-form metadata into ProcessorMetadata.
// Numeric strings and integers are accepted for positions.
func DecodeMetadata(md map[string]any) (ProcessorMetadata, error) {
	var out ProcessorMetadata
	if len(md) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(md); err != nil {
		return out, fmt.Errorf("decode metadata: %w", err)
	}
	return out, nil
}

// Field checks the type of one metadata value.
type Field interface {
	// Name returns the human-readable name of the type (e.g., "text", "number").
	Name() string
	// Check reports whether a value conforms to this type.
	Check(value any) error
}

type textField struct{}

func (textField) Name() string { return "text" }

func (textField) Check(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected text")
	}
	return nil
}

type numberField struct{}

func (numberField) Name() string { return "number" }

func (numberField) Check(value any) error {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return nil
	default:
		return fmt.Errorf("expected number")
	}
}

type flagField struct{}

func (flagField) Name() string { return "flag" }

func (flagField) Check(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected flag")
	}
	return nil
}

type listField struct {
	elem Field
	size int
}

func (f listField) Name() string {
	if f.size > 0 {
		return fmt.Sprintf("[%d]%s", f.size, f.elem.Name())
	}
	return "[]" + f.elem.Name()
}

func (f listField) Check(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected list")
	}
	if f.size > 0 && rv.Len() != f.size {
		return fmt.Errorf("expected %d elements, got %d", f.size, rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := f.elem.Check(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Text matches strings.
func Text() Field { return textField{} }

// Number matches any Go numeric type.
func Number() Field { return numberField{} }

// Flag matches booleans.
func Flag() Field { return flagField{} }

// List matches slices whose elements all match elem. A positive size
// also fixes the length.
func List(elem Field, size int) Field { return listField{elem: elem, size: size} }

// Rules maps metadata keys to their expected type.
type Rules map[string]Field

// WellKnown returns the rules for the keys ProcessorMetadata understands.
// value is free-form and has no rule.
func WellKnown() Rules {
	return Rules{
		"position": List(Number(), 2),
		"selected": Flag(),
		"tags":     List(Text(), 0),
	}
}

// CheckMetadata type-checks every present key that has a rule. Missing
// keys and keys without rules are accepted. All failures are reported.
func CheckMetadata(processor string, rules Rules, md map[string]any) error {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value, ok := md[key]
		if !ok {
			continue
		}
		if err := rules[key].Check(value); err != nil {
			errs = append(errs, &FieldError{Processor: processor, Key: key, Reason: err.Error(), Value: value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// CheckDefinition runs CheckMetadata with the well-known rules on every
// processor of def.
func CheckDefinition(def *domain.NetworkDefinition) error {
	var errs []error
	for _, p := range def.Processors {
		if err := CheckMetadata(p.ID, WellKnown(), p.Metadata); err != nil {
			errs = append(errs, Errors(err)...)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
