// Package jira implements a dual-transport client for a remote JIRA-style
// issue tracking service.
//
// Every logical operation (issues, comments, worklogs, transitions,
// metadata) is routed through a single dispatcher that presents one call
// surface over two incompatible protocols: the legacy token-authenticated
// RPC transport and the resource-oriented REST transport. The package also
// maintains lazily populated reference caches for low-cardinality server
// metadata and a cookie-authenticated web fallback for capabilities absent
// from both structured APIs.
package jira

import "encoding/json"

// Mode selects which transport the client dispatches operations to.
// The two protocols are mutually exclusive: a client runs in exactly one
// mode for its entire lifetime.
type Mode string

const (
	// ModeREST addresses entities by path and encodes mutations as JSON.
	ModeREST Mode = "rest"
	// ModeLegacy invokes named remote procedures with positional
	// arguments, prefixed by an opaque session token.
	ModeLegacy Mode = "legacy"
)

// Session is the authenticated context required for any non-login
// operation. At most one session is live per client.
type Session struct {
	Mode Mode
	// Credential is the REST Authorization header value or the legacy
	// RPC token, depending on Mode. Opaque to callers.
	Credential string
	// Principal is the username the session was established for.
	Principal string
	// WebSessionEstablished records whether the best-effort browser
	// cookie session succeeded. Only the web fallback needs it.
	WebSessionEstablished bool
}

// Record is a single normalized result: field name to value, with nested
// arrays and objects preserved as decoded JSON.
type Record = map[string]any

// Result is the normalized outcome of a dispatched operation. Regardless
// of transport, the shape for a given operation name is identical: either
// one record or a flat sequence of records, per the operation's
// cardinality.
type Result struct {
	record  Record
	records []Record
	many    bool
}

// Record returns the single record of a unary result, or nil for
// sequence-shaped or empty results.
func (r Result) Record() Record {
	if r.many {
		return nil
	}
	return r.record
}

// Records returns the sequence of a list-shaped result. For unary results
// it returns a one-element slice, so callers iterating do not need to
// check cardinality.
func (r Result) Records() []Record {
	if r.many {
		return r.records
	}
	if r.record == nil {
		return nil
	}
	return []Record{r.record}
}

// IsSequence reports whether the operation's cardinality is a sequence.
func (r Result) IsSequence() bool { return r.many }

// Decode re-marshals the result into a typed destination. It is how the
// typed convenience wrappers convert normalized records into structs.
func (r Result) Decode(dst any) error {
	var src any
	if r.many {
		src = r.records
	} else {
		src = r.record
	}
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Issue is a JIRA issue as returned by the normalized get/search
// operations. The compound key (project key + number) identifies it; the
// client never mutates issue identity.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of an issue.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"` // ADF document or plain string
	Status      *NamedRef       `json:"status"`
	Priority    *NamedRef       `json:"priority"`
	IssueType   *NamedRef       `json:"issuetype"`
	Resolution  *NamedRef       `json:"resolution"`
	Project     *ProjectRef     `json:"project"`
	Assignee    *User           `json:"assignee"`
	Reporter    *User           `json:"reporter"`
	Labels      []string        `json:"labels"`
	Created     string          `json:"created"`
	Updated     string          `json:"updated"`
}

// NamedRef is the id+name pair JIRA uses for statuses, priorities, issue
// types, and resolutions. IDs are compared and stored as strings even when
// the service reports them numerically.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectRef identifies the project an issue belongs to.
type ProjectRef struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User is a JIRA user reference.
type User struct {
	Name         string `json:"name"`
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Comment is a single issue comment.
type Comment struct {
	ID      string          `json:"id"`
	Author  *User           `json:"author"`
	Body    json.RawMessage `json:"body"`
	Created string          `json:"created"`
	Updated string          `json:"updated"`
}

// Worklog is a single work log entry on an issue. Only the legacy
// transport exposes worklog listing.
type Worklog struct {
	ID               string `json:"id"`
	Author           *User  `json:"author"`
	Comment          string `json:"comment"`
	Started          string `json:"started"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// Transition is an available workflow action for an issue.
type Transition struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	To   *NamedRef `json:"to"`
}
