package jira

import (
	"fmt"
	"strings"
	"time"
)

// JQLFilter assembles a JQL query from the common CLI filter knobs.
type JQLFilter struct {
	Project string
	// State is "open", "closed", or "" for all.
	State string
	// Since restricts to issues updated at or after the given time.
	Since *time.Time
	// Assignee filters by assignee username.
	Assignee string
}

// JQL renders the filter as a query string ordered by most recently
// updated. An empty filter yields "ORDER BY updated DESC".
func (f JQLFilter) JQL() string {
	var clauses []string

	if f.Project != "" {
		clauses = append(clauses, fmt.Sprintf("project = %q", f.Project))
	}
	switch f.State {
	case "open":
		clauses = append(clauses, "statusCategory != Done")
	case "closed":
		clauses = append(clauses, "statusCategory = Done")
	}
	if f.Since != nil {
		clauses = append(clauses, fmt.Sprintf("updated >= %q", f.Since.Format("2006-01-02 15:04")))
	}
	if f.Assignee != "" {
		clauses = append(clauses, fmt.Sprintf("assignee = %q", f.Assignee))
	}

	jql := strings.Join(clauses, " AND ")
	if jql != "" {
		jql += " "
	}
	return jql + "ORDER BY updated DESC"
}
