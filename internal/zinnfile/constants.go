package zinnfile

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ConstantPair is one constants entry in document order.
type ConstantPair struct {
	Name  string
	Value string
}

// OrderedConstants preserves the declaration order of the Zinnfile's
// `constants` mapping. A plain map loses order, but §6 requires each
// constant to be rendered against every constant declared before it —
// order is semantically load-bearing, so this mirrors the ordered-map
// visitor from the original Rust implementation's constants.rs instead
// of decoding into map[string]string.
type OrderedConstants []ConstantPair

// UnmarshalYAML implements yaml.BytesUnmarshaler by walking the mapping
// node's entries in source order.
func (c *OrderedConstants) UnmarshalYAML(b []byte) error {
	var slice yaml.MapSlice
	if err := yaml.Unmarshal(b, &slice); err != nil {
		return fmt.Errorf("decoding constants: %w", err)
	}

	pairs := make(OrderedConstants, 0, len(slice))
	for _, item := range slice {
		key, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("constants: non-string key %v", item.Key)
		}
		value, err := stringify(item.Value)
		if err != nil {
			return fmt.Errorf("constants[%s]: %w", key, err)
		}
		pairs = append(pairs, ConstantPair{Name: key, Value: value})
	}

	*c = pairs
	return nil
}

func stringify(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}
