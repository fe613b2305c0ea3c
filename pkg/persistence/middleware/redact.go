package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
)

// Mask replaces redacted metadata values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.DefinitionStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks processor metadata
// whose keys match one of the patterns before saving. Loading is
// unaffected, so masked values stay masked.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, name string, def *domain.NetworkDefinition) error {
	// The caller keeps its unmasked copy.
	cloned := cloneDefinition(def)
	for _, p := range cloned.Processors {
		maskMap(p.Metadata, m.patterns)
	}
	return m.next.Save(ctx, name, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, name string) (*domain.NetworkDefinition, error) {
	return m.next.Load(ctx, name)
}

func (m *redactMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

// cloneDefinition also copies nested metadata maps, which Clone shares.
func cloneDefinition(def *domain.NetworkDefinition) *domain.NetworkDefinition {
	out := def.Clone()
	for i, p := range def.Processors {
		out.Processors[i].Metadata = deepCopyMap(p.Metadata)
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}
