package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFieldValues(t *testing.T) {
	fields := map[string]any{
		"summary":   "new summary",
		"priority":  map[string]any{"name": "High"},
		"issuetype": map[string]any{"id": "3"},
		"labels":    []any{"infra", "urgent"},
		"votes":     float64(4),
	}

	got := toFieldValues(fields)

	// Deterministic output: sorted by field id.
	want := []FieldValue{
		{ID: "issuetype", Values: []string{"3"}},
		{ID: "labels", Values: []string{"infra", "urgent"}},
		{ID: "priority", Values: []string{"High"}},
		{ID: "summary", Values: []string{"new summary"}},
		{ID: "votes", Values: []string{"4"}},
	}
	assert.Equal(t, want, got)
}

func TestToFieldValuesNonMap(t *testing.T) {
	assert.Nil(t, toFieldValues("not a map"))
	assert.Nil(t, toFieldValues(nil))
}

func TestFieldValueStrings(t *testing.T) {
	assert.Nil(t, fieldValueStrings(nil))
	assert.Equal(t, []string{"a", "b"}, fieldValueStrings([]string{"a", "b"}))
	assert.Equal(t, []string{"Fixed"}, fieldValueStrings(map[string]string{"name": "Fixed"}))
	assert.Equal(t, []string{"7"}, fieldValueStrings(map[string]any{"id": float64(7)}))
	assert.Equal(t, []string{"x", "y"}, fieldValueStrings([]any{map[string]any{"name": "x"}, "y"}))
	assert.Equal(t, []string{"true"}, fieldValueStrings(true))
}
