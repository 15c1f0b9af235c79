package jira

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RefKind names one cached reference entity kind.
type RefKind string

const (
	RefStatus      RefKind = "status"
	RefPriority    RefKind = "priority"
	RefIssueType   RefKind = "issuetype"
	RefSubtaskType RefKind = "subtasktype"
	RefResolution  RefKind = "resolution"
	RefProject     RefKind = "project"
	RefFilter      RefKind = "filter"
)

// refListingOps maps each cacheable kind to the dispatcher operation that
// lists it.
var refListingOps = map[RefKind]string{
	RefStatus:      OpGetStatuses,
	RefPriority:    OpGetPriorities,
	RefIssueType:   OpGetIssueTypes,
	RefSubtaskType: OpGetSubTaskIssueTypes,
	RefResolution:  OpGetResolutions,
	RefProject:     OpGetProjects,
	RefFilter:      OpGetFavouriteFilters,
}

// refCache memoizes id-to-name lookup tables for low-cardinality,
// rarely-changing server metadata. Each kind is populated lazily by
// exactly one dispatcher call, shared among concurrent first readers, and
// never invalidated within the process lifetime. The staleness is a
// deliberate tradeoff: this data changes on the order of admin actions,
// not issue activity.
type refCache struct {
	mu     sync.RWMutex
	kinds  map[RefKind]map[string]string
	users  map[string]string // username -> full name, memoized per lookup
	flight singleflight.Group
}

func (rc *refCache) init() {
	rc.kinds = make(map[RefKind]map[string]string)
	rc.users = make(map[string]string)
}

func (rc *refCache) get(kind RefKind) (map[string]string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	m, ok := rc.kinds[kind]
	return m, ok
}

func (rc *refCache) put(kind RefKind, m map[string]string) {
	rc.mu.Lock()
	rc.kinds[kind] = m
	rc.mu.Unlock()
}

// Ref returns the id-to-name mapping for a reference kind, fetching it on
// first access. Concurrent first readers of the same kind share a single
// outstanding fetch. IDs are normalized to strings even when the service
// reports them numerically.
func (c *Client) Ref(ctx context.Context, kind RefKind) (map[string]string, error) {
	if m, ok := c.refs.get(kind); ok {
		return m, nil
	}

	op, ok := refListingOps[kind]
	if !ok {
		return nil, fmt.Errorf("jira: unknown reference kind %q", kind)
	}

	v, err, _ := c.refs.flight.Do(string(kind), func() (any, error) {
		if m, ok := c.refs.get(kind); ok {
			return m, nil
		}
		res, err := c.Call(ctx, op)
		if err != nil {
			return nil, err
		}
		m := buildRefMapping(kind, res.Records())
		c.refs.put(kind, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// RefName resolves a single id within a kind, returning the id itself when
// the mapping has no entry.
func (c *Client) RefName(ctx context.Context, kind RefKind, id string) (string, error) {
	m, err := c.Ref(ctx, kind)
	if err != nil {
		return "", err
	}
	if name, ok := m[id]; ok {
		return name, nil
	}
	return id, nil
}

// UserFullName resolves a username to a display name, memoizing per
// username for the process lifetime.
func (c *Client) UserFullName(ctx context.Context, username string) (string, error) {
	c.refs.mu.RLock()
	name, ok := c.refs.users[username]
	c.refs.mu.RUnlock()
	if ok {
		return name, nil
	}

	v, err, _ := c.refs.flight.Do("user:"+username, func() (any, error) {
		res, err := c.Call(ctx, OpGetUser, username)
		if err != nil {
			return nil, err
		}
		rec := res.Record()
		full, _ := rec["displayName"].(string)
		if full == "" {
			full, _ = rec["fullname"].(string)
		}
		c.refs.mu.Lock()
		c.refs.users[username] = full
		c.refs.mu.Unlock()
		return full, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// IssueKeyPattern builds a regexp matching issue keys of the known
// projects, derived from the cached project list.
func (c *Client) IssueKeyPattern(ctx context.Context) (*regexp.Regexp, error) {
	projects, err := c.Ref(ctx, RefProject)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(projects))
	for key := range projects {
		keys = append(keys, regexp.QuoteMeta(key))
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("jira: no projects available to build issue key pattern")
	}
	sort.Strings(keys)

	return regexp.Compile(`\b(` + strings.Join(keys, "|") + `)-[0-9]+\b`)
}

// buildRefMapping extracts the stable-identifier-to-name mapping from a
// listing result. Projects key by project key rather than numeric id,
// since that is how issues reference them; subtask types keep only
// entries flagged as subtasks.
func buildRefMapping(kind RefKind, records []Record) map[string]string {
	m := make(map[string]string, len(records))
	for _, rec := range records {
		if kind == RefSubtaskType && !isSubtask(rec) {
			continue
		}

		name, _ := rec["name"].(string)
		if name == "" {
			continue
		}

		var id string
		if kind == RefProject {
			id, _ = rec["key"].(string)
		}
		if id == "" {
			id = stringID(rec["id"])
		}
		if id == "" {
			continue
		}
		m[id] = name
	}
	return m
}

func isSubtask(rec Record) bool {
	switch v := rec["subtask"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// stringID normalizes an identifier to string form. JSON numbers decode as
// float64; integral values must not pick up a ".0" suffix.
func stringID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprint(id)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
