package hujsonutil

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// Value wraps hujson.Value to provide convenience helpers.
type Value struct {
	*hujson.Value
}

// NewValue wraps a hujson.Value.
func NewValue(v *hujson.Value) *Value {
	return &Value{Value: v}
}

// Parse parses JSONC (comments and trailing commas allowed).
func Parse(data []byte) (*Value, error) {
	ast, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	return NewValue(&ast), nil
}

// InsertToArray inserts value at the end of the array located at path.
// The path uses JSON Pointer syntax. If the array does not exist, it is created.
// Returns an error if the path points to a non-array value.
func (v *Value) InsertToArray(path string, val any) error {
	if v.Value == nil {
		return fmt.Errorf("nil Value")
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	elem, err := hujson.Parse(b)
	if err != nil {
		return err
	}

	existing := v.Find(path)
	if existing != nil {
		if _, ok := existing.Value.(*hujson.Array); !ok {
			return fmt.Errorf("path %s is not an array", path)
		}
		patch := fmt.Sprintf(`[{"op":"add","path":"%s/-","value":%s}]`, path, elem.Pack())
		return v.Patch([]byte(patch))
	}

	patch := fmt.Sprintf(`[`+
		`{"op":"add","path":"%s","value":[]},`+
		`{"op":"add","path":"%s/-","value":%s}`+
		`]`, path, path, elem.Pack())
	return v.Patch([]byte(patch))
}

// HasElement reports whether the array at path holds an object whose string
// field equals want. A missing array holds nothing.
func (v *Value) HasElement(path, field, want string) (bool, error) {
	if v.Value == nil {
		return false, fmt.Errorf("nil Value")
	}
	found := v.Find(path)
	if found == nil {
		return false, nil
	}
	if _, ok := found.Value.(*hujson.Array); !ok {
		return false, fmt.Errorf("path %s is not an array", path)
	}

	std := found.Clone()
	std.Standardize()
	var elems []any
	if err := json.Unmarshal(std.Pack(), &elems); err != nil {
		return false, fmt.Errorf("path %s: %w", path, err)
	}
	for _, e := range elems {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := obj[field].(string); ok && s == want {
			return true, nil
		}
	}
	return false, nil
}

// InsertUnique appends val to the array at path unless an element with the
// same field value is already there. It reports whether val was inserted.
func (v *Value) InsertUnique(path, field string, val any) (bool, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return false, err
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return false, fmt.Errorf("value for %s is not an object: %w", path, err)
	}
	key, _ := obj[field].(string)
	if key == "" {
		return false, fmt.Errorf("value for %s has no %q", path, field)
	}

	exists, err := v.HasElement(path, field, key)
	if err != nil || exists {
		return false, err
	}
	if err := v.InsertToArray(path, val); err != nil {
		return false, err
	}
	return true, nil
}
