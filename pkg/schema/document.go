package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// DocumentSchema is the JSON Schema every definition document follows.
//
//go:embed definition.schema.json
var DocumentSchema []byte

// ErrInvalidDocument marks a document that does not match DocumentSchema.
var ErrInvalidDocument = errors.New("invalid definition document")

// DocumentError is one schema violation.
type DocumentError struct {
	Field       string
	Description string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

var documentSchema = gojsonschema.NewBytesLoader(DocumentSchema)

// ValidateDocument checks raw document bytes against DocumentSchema before
// they are decoded into a definition. Every violation is returned in one
// *AggregateError.
func ValidateDocument(data []byte, format Format) error {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse yaml document: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse json document: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}

	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, &DocumentError{Field: desc.Field(), Description: desc.Description()})
	}
	return &AggregateError{Errors: errs}
}
