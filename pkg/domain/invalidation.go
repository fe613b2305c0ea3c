package domain

import (
	"fmt"
	"strings"
)

// InvalidationLevel is the ordered severity of "this output may be stale".
// Only the ordering is a contract; merges always keep the most severe level.
type InvalidationLevel int

const (
	// Valid means the node's outputs reflect its current inputs.
	Valid InvalidationLevel = iota
	// InvalidOutput means the outputs must be recomputed.
	InvalidOutput
	// InvalidResources means internal resources must be rebuilt before recomputing.
	InvalidResources
)

var levelNames = map[InvalidationLevel]string{
	Valid:            "valid",
	InvalidOutput:    "invalid_output",
	InvalidResources: "invalid_resources",
}

// Combine merges two levels, keeping the most severe one.
func Combine(a, b InvalidationLevel) InvalidationLevel {
	if a > b {
		return a
	}
	return b
}

// IsValid reports whether the level is Valid.
func (l InvalidationLevel) IsValid() bool {
	return l == Valid
}

func (l InvalidationLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l InvalidationLevel) MarshalText() ([]byte, error) {
	name, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInvalidationLevel, int(l))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *InvalidationLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseInvalidationLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseInvalidationLevel converts a level name ("valid", "invalid_output",
// "invalid_resources") into its value. Matching is case-insensitive.
func ParseInvalidationLevel(s string) (InvalidationLevel, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == needle {
			return level, nil
		}
	}
	return Valid, fmt.Errorf("%w: %q", ErrUnknownInvalidationLevel, s)
}
