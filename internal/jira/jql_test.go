package jira

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJQLFilter(t *testing.T) {
	since := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter JQLFilter
		want   string
	}{
		{
			name:   "empty",
			filter: JQLFilter{},
			want:   "ORDER BY updated DESC",
		},
		{
			name:   "project only",
			filter: JQLFilter{Project: "PROJ"},
			want:   `project = "PROJ" ORDER BY updated DESC`,
		},
		{
			name:   "open state",
			filter: JQLFilter{Project: "PROJ", State: "open"},
			want:   `project = "PROJ" AND statusCategory != Done ORDER BY updated DESC`,
		},
		{
			name:   "closed state",
			filter: JQLFilter{State: "closed"},
			want:   `statusCategory = Done ORDER BY updated DESC`,
		},
		{
			name:   "since",
			filter: JQLFilter{Since: &since},
			want:   `updated >= "2026-01-15 09:30" ORDER BY updated DESC`,
		},
		{
			name:   "everything",
			filter: JQLFilter{Project: "PROJ", State: "open", Since: &since, Assignee: "alice"},
			want:   `project = "PROJ" AND statusCategory != Done AND updated >= "2026-01-15 09:30" AND assignee = "alice" ORDER BY updated DESC`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.JQL())
		})
	}
}
