package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/portflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a definition document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Parse decodes a definition document. Unknown fields are rejected so that
// typos in port or connection keys surface early.
func Parse(data []byte, format Format) (*domain.NetworkDefinition, error) {
	var def domain.NetworkDefinition
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse yaml definition: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse json definition: %w", err)
		}
		normalizeNumbers(&def)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	return &def, nil
}

// Marshal encodes a definition document.
func Marshal(def *domain.NetworkDefinition, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("encode yaml definition: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json definition: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// LoadFile reads a definition from disk, picking the format by extension.
func LoadFile(path string) (*domain.NetworkDefinition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// normalizeNumbers turns json.Number metadata values into int or float64,
// matching what the YAML decoder produces.
func normalizeNumbers(def *domain.NetworkDefinition) {
	for i := range def.Processors {
		for k, v := range def.Processors[i].Metadata {
			def.Processors[i].Metadata[k] = NormalizeValue(v)
		}
	}
}

// NormalizeValue turns json.Number values, nested in slices and maps too,
// into int or float64.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n)
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		for i := range val {
			val[i] = NormalizeValue(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = NormalizeValue(val[k])
		}
		return val
	default:
		return v
	}
}
