package jira

import (
	"fmt"
	"regexp"
	"strconv"
)

// restMapping describes how an operation's positional arguments project
// onto a REST request.
type restMapping struct {
	Method string
	// Path is the endpoint template. Positional placeholders {0}, {1},
	// ... are substituted with the corresponding argument, path-escaped.
	Path string
	// Query maps query parameter names to argument indexes.
	Query map[string]int
	// Body builds the JSON request body from the arguments. Nil means
	// the request carries no body.
	Body func(args []any) any
	// NoContent marks side-effect-only operations: the response body is
	// not decoded and a non-2xx status is the sole failure signal.
	NoContent bool
	// ListKey names the container field to unwrap when the REST response
	// wraps the sequence in an object (e.g. "issues" for search).
	ListKey string
}

// descriptor maps one logical operation onto the two transports. The set
// of operations is fixed at build time; there is no server-side discovery.
type descriptor struct {
	Name string
	// Legacy is the RPC method name, or "" when the legacy transport
	// does not expose the operation.
	Legacy string
	// LegacyArgs optionally re-projects arguments for the legacy call,
	// e.g. converting a fields object into the RPC field-value list.
	LegacyArgs func(args []any) []any
	// REST is nil when the structured transport does not expose the
	// operation. getWorklogs deliberately has no REST mapping; the
	// dispatcher surfaces UnsupportedOperationError rather than
	// guessing an endpoint.
	REST *restMapping
	// Seq marks sequence cardinality: the normalized result is a flat
	// slice of records in both modes.
	Seq bool
	// MinArgs is the number of positional arguments the operation
	// requires (extra trailing arguments are allowed where noted).
	MinArgs int
}

// Operation names accepted by Client.Call. Both transports use the same
// names; the legacy RPC methods are named identically except where a
// LegacyArgs projection is involved.
const (
	OpGetStatuses          = "getStatuses"
	OpGetPriorities        = "getPriorities"
	OpGetIssueTypes        = "getIssueTypes"
	OpGetSubTaskIssueTypes = "getSubTaskIssueTypes"
	OpGetResolutions       = "getResolutions"
	OpGetProjects          = "getProjects"
	OpGetFavouriteFilters  = "getFavouriteFilters"
	OpGetUser              = "getUser"
	OpGetIssue             = "getIssue"
	OpCreateIssue          = "createIssue"
	OpUpdateIssue          = "updateIssue"
	OpGetComments          = "getComments"
	OpAddComment           = "addComment"
	OpEditComment          = "editComment"
	OpSearch               = "getIssuesFromJqlSearch"
	OpGetTransitions       = "getAvailableActions"
	OpDoTransition         = "progressWorkflowAction"
	OpAddWorklog           = "addWorklog"
	OpGetWorklogs          = "getWorklogs"
)

var operations = map[string]*descriptor{
	OpGetStatuses: {
		Name:   OpGetStatuses,
		Legacy: "getStatuses",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/status"},
		Seq:    true,
	},
	OpGetPriorities: {
		Name:   OpGetPriorities,
		Legacy: "getPriorities",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/priority"},
		Seq:    true,
	},
	OpGetIssueTypes: {
		Name:   OpGetIssueTypes,
		Legacy: "getIssueTypes",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/issuetype"},
		Seq:    true,
	},
	OpGetSubTaskIssueTypes: {
		Name:   OpGetSubTaskIssueTypes,
		Legacy: "getSubTaskIssueTypes",
		// The REST API has no separate subtask listing; the full type
		// list is fetched and filtered on the subtask flag downstream.
		REST: &restMapping{Method: "GET", Path: "/rest/api/2/issuetype"},
		Seq:  true,
	},
	OpGetResolutions: {
		Name:   OpGetResolutions,
		Legacy: "getResolutions",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/resolution"},
		Seq:    true,
	},
	OpGetProjects: {
		Name:   OpGetProjects,
		Legacy: "getProjectsNoSchemes",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/project"},
		Seq:    true,
	},
	OpGetFavouriteFilters: {
		Name:   OpGetFavouriteFilters,
		Legacy: "getFavouriteFilters",
		REST:   &restMapping{Method: "GET", Path: "/rest/api/2/filter/favourite"},
		Seq:    true,
	},
	OpGetUser: {
		Name:    OpGetUser,
		Legacy:  "getUser",
		REST:    &restMapping{Method: "GET", Path: "/rest/api/2/user", Query: map[string]int{"username": 0}},
		MinArgs: 1,
	},
	OpGetIssue: {
		Name:    OpGetIssue,
		Legacy:  "getIssue",
		REST:    &restMapping{Method: "GET", Path: "/rest/api/2/issue/{0}"},
		MinArgs: 1,
	},
	OpCreateIssue: {
		Name:   OpCreateIssue,
		Legacy: "createIssue",
		REST: &restMapping{
			Method: "POST",
			Path:   "/rest/api/2/issue",
			Body:   func(args []any) any { return map[string]any{"fields": args[0]} },
		},
		MinArgs: 1,
	},
	OpUpdateIssue: {
		Name:       OpUpdateIssue,
		Legacy:     "updateIssue",
		LegacyArgs: func(args []any) []any { return []any{args[0], toFieldValues(args[1])} },
		REST: &restMapping{
			Method:    "PUT",
			Path:      "/rest/api/2/issue/{0}",
			Body:      func(args []any) any { return map[string]any{"fields": args[1]} },
			NoContent: true,
		},
		MinArgs: 2,
	},
	OpGetComments: {
		Name:    OpGetComments,
		Legacy:  "getComments",
		REST:    &restMapping{Method: "GET", Path: "/rest/api/2/issue/{0}/comment", ListKey: "comments"},
		Seq:     true,
		MinArgs: 1,
	},
	OpAddComment: {
		Name:   OpAddComment,
		Legacy: "addComment",
		REST: &restMapping{
			Method: "POST",
			Path:   "/rest/api/2/issue/{0}/comment",
			Body:   func(args []any) any { return map[string]any{"body": args[1]} },
		},
		MinArgs: 2,
	},
	OpEditComment: {
		Name:   OpEditComment,
		Legacy: "editComment",
		REST: &restMapping{
			Method: "PUT",
			Path:   "/rest/api/2/issue/{0}/comment/{1}",
			Body:   func(args []any) any { return map[string]any{"body": args[2]} },
		},
		MinArgs: 3,
	},
	OpSearch: {
		Name:   OpSearch,
		Legacy: "getIssuesFromJqlSearch",
		REST: &restMapping{
			Method:  "POST",
			Path:    "/rest/api/2/search",
			Body:    func(args []any) any { return map[string]any{"jql": args[0], "maxResults": args[1]} },
			ListKey: "issues",
		},
		Seq:     true,
		MinArgs: 2,
	},
	OpGetTransitions: {
		Name:    OpGetTransitions,
		Legacy:  "getAvailableActions",
		REST:    &restMapping{Method: "GET", Path: "/rest/api/2/issue/{0}/transitions", ListKey: "transitions"},
		Seq:     true,
		MinArgs: 1,
	},
	OpDoTransition: {
		Name:       OpDoTransition,
		Legacy:     "progressWorkflowAction",
		LegacyArgs: transitionLegacyArgs,
		REST: &restMapping{
			Method:    "POST",
			Path:      "/rest/api/2/issue/{0}/transitions",
			Body:      transitionBody,
			NoContent: true,
		},
		MinArgs: 2,
	},
	OpAddWorklog: {
		Name:   OpAddWorklog,
		Legacy: "addWorklogAndAutoAdjustRemainingEstimate",
		REST: &restMapping{
			Method: "POST",
			Path:   "/rest/api/2/issue/{0}/worklog",
			Body:   func(args []any) any { return args[1] },
		},
		MinArgs: 2,
	},
	OpGetWorklogs: {
		Name:    OpGetWorklogs,
		Legacy:  "getWorklogs",
		Seq:     true,
		MinArgs: 1,
	},
}

// transitionBody projects (key, transitionID, [fields]) onto the REST
// transition payload.
func transitionBody(args []any) any {
	body := map[string]any{
		"transition": map[string]any{"id": fmt.Sprint(args[1])},
	}
	if len(args) > 2 && args[2] != nil {
		body["fields"] = args[2]
	}
	return body
}

// transitionLegacyArgs projects the same arguments onto the legacy call,
// which wants the fields as a field-value list.
func transitionLegacyArgs(args []any) []any {
	out := []any{args[0], fmt.Sprint(args[1])}
	if len(args) > 2 && args[2] != nil {
		out = append(out, toFieldValues(args[2]))
	} else {
		out = append(out, []any{})
	}
	return out
}

// lookupOp returns the descriptor for an operation name.
func lookupOp(name string) (*descriptor, bool) {
	d, ok := operations[name]
	return d, ok
}

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// validateOperations checks the registry for internal consistency: every
// descriptor has at least one transport mapping and all placeholder and
// query indexes are covered by MinArgs. Run once at init; a violation is
// a programming error in the table, not a runtime condition.
func validateOperations() error {
	for name, d := range operations {
		if name != d.Name {
			return fmt.Errorf("operation %q registered under key %q", d.Name, name)
		}
		if d.Legacy == "" && d.REST == nil {
			return fmt.Errorf("operation %q has no transport mapping", name)
		}
		if d.REST == nil {
			continue
		}
		for _, m := range placeholderPattern.FindAllStringSubmatch(d.REST.Path, -1) {
			idx, err := strconv.Atoi(m[1])
			if err != nil || idx >= d.MinArgs {
				return fmt.Errorf("operation %q: path placeholder %s exceeds arity %d", name, m[0], d.MinArgs)
			}
		}
		for param, idx := range d.REST.Query {
			if idx >= d.MinArgs {
				return fmt.Errorf("operation %q: query param %q index %d exceeds arity %d", name, param, idx, d.MinArgs)
			}
		}
	}
	return nil
}

func init() {
	if err := validateOperations(); err != nil {
		panic(err)
	}
}
