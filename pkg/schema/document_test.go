package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/portflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument_Valid(t *testing.T) {
	assert.NoError(t, schema.ValidateDocument([]byte(demoYAML), schema.FormatYAML))

	doc := `{"name":"j","processors":[{"id":"a","outports":[{"id":"out","max_connections":0}]}]}`
	assert.NoError(t, schema.ValidateDocument([]byte(doc), schema.FormatJSON))
}

func TestValidateDocument_ReportsEveryViolation(t *testing.T) {
	doc := `name: broken
processors:
  - id: ""
    inports:
      - id: in
        max_connections: -1
connections:
  - from: nowhere
    to: a/in
extra: true
`
	err := schema.ValidateDocument([]byte(doc), schema.FormatYAML)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalidDocument)

	var fields []string
	for _, e := range schema.Errors(err) {
		var docErr *schema.DocumentError
		require.True(t, errors.As(e, &docErr))
		fields = append(fields, docErr.Field)
	}
	assert.Contains(t, fields, "processors.0.id")
	assert.Contains(t, fields, "processors.0.inports.0.max_connections")
	assert.Contains(t, fields, "connections.0.from")
	assert.Len(t, fields, 4)
}

func TestValidateDocument_BadInput(t *testing.T) {
	assert.Error(t, schema.ValidateDocument([]byte("{"), schema.FormatJSON))
	assert.ErrorIs(t, schema.ValidateDocument(nil, "toml"), schema.ErrUnsupportedFormat)
}
