package jira

import (
	"fmt"
	"sort"
)

// FieldValue is the legacy RPC encoding for a single field update: a field
// id plus its values as strings. The legacy transport accepts a list of
// these where the REST transport accepts a plain fields object.
type FieldValue struct {
	ID     string   `json:"id"`
	Values []string `json:"values"`
}

// toFieldValues converts a REST-style fields object into the legacy
// field-value list. Nested name/id objects collapse to their name, slices
// fan out into multiple values, and everything else is stringified. Fields
// are emitted in sorted order so the projection is deterministic.
func toFieldValues(fields any) []FieldValue {
	m, ok := fields.(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]FieldValue, 0, len(m))
	for _, k := range keys {
		out = append(out, FieldValue{ID: k, Values: fieldValueStrings(m[k])})
	}
	return out
}

func fieldValueStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fieldValueStrings(item)...)
		}
		return out
	case map[string]any:
		// REST encodes refs as {"name": ...} or {"id": ...}; the legacy
		// side wants the bare value.
		if name, ok := val["name"]; ok {
			return []string{fmt.Sprint(name)}
		}
		if id, ok := val["id"]; ok {
			return []string{fmt.Sprint(id)}
		}
		return []string{fmt.Sprint(val)}
	case map[string]string:
		if name, ok := val["name"]; ok {
			return []string{name}
		}
		if id, ok := val["id"]; ok {
			return []string{id}
		}
		return []string{fmt.Sprint(val)}
	default:
		return []string{fmt.Sprint(val)}
	}
}
