package jira

import (
	"context"
	"fmt"
)

// Typed convenience wrappers over Call. Each converts the normalized
// result into the corresponding struct; all routing, session handling and
// retry behavior is the dispatcher's.

// GetIssue fetches a single issue by key, e.g. "PROJ-123".
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	res, err := c.Call(ctx, OpGetIssue, key)
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := res.Decode(&issue); err != nil {
		return nil, fmt.Errorf("jira: decode issue %s: %w", key, err)
	}
	return &issue, nil
}

// CreateIssue creates an issue from a fields object. fields should include
// at least "project", "summary" and "issuetype". The created issue is
// fetched back so the caller sees the server-assigned key and defaults.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (*Issue, error) {
	res, err := c.Call(ctx, OpCreateIssue, fields)
	if err != nil {
		return nil, err
	}

	key, _ := res.Record()["key"].(string)
	if key == "" {
		return nil, fmt.Errorf("jira: create issue: response carries no key")
	}
	return c.GetIssue(ctx, key)
}

// UpdateIssue applies a field projection to an existing issue. Identity
// fields (key, project) are never modified.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	_, err := c.Call(ctx, OpUpdateIssue, key, fields)
	return err
}

// SearchIssues runs a JQL query and returns at most maxResults issues as a
// flat slice, independent of transport wrapping.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	res, err := c.Call(ctx, OpSearch, jql, maxResults)
	if err != nil {
		return nil, err
	}
	var issues []Issue
	if err := res.Decode(&issues); err != nil {
		return nil, fmt.Errorf("jira: decode search result: %w", err)
	}
	return issues, nil
}

// GetComments lists the comments on an issue.
func (c *Client) GetComments(ctx context.Context, key string) ([]Comment, error) {
	res, err := c.Call(ctx, OpGetComments, key)
	if err != nil {
		return nil, err
	}
	var comments []Comment
	if err := res.Decode(&comments); err != nil {
		return nil, fmt.Errorf("jira: decode comments for %s: %w", key, err)
	}
	return comments, nil
}

// AddComment adds a comment to an issue and returns it as created.
func (c *Client) AddComment(ctx context.Context, key, body string) (*Comment, error) {
	res, err := c.Call(ctx, OpAddComment, key, body)
	if err != nil {
		return nil, err
	}
	var comment Comment
	if err := res.Decode(&comment); err != nil {
		return nil, fmt.Errorf("jira: decode comment on %s: %w", key, err)
	}
	return &comment, nil
}

// EditComment replaces the body of an existing comment.
func (c *Client) EditComment(ctx context.Context, key, commentID, body string) (*Comment, error) {
	res, err := c.Call(ctx, OpEditComment, key, commentID, body)
	if err != nil {
		return nil, err
	}
	var comment Comment
	if err := res.Decode(&comment); err != nil {
		return nil, fmt.Errorf("jira: decode comment %s on %s: %w", commentID, key, err)
	}
	return &comment, nil
}

// GetTransitions lists the workflow actions currently available on an
// issue.
func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	res, err := c.Call(ctx, OpGetTransitions, key)
	if err != nil {
		return nil, err
	}
	var transitions []Transition
	if err := res.Decode(&transitions); err != nil {
		return nil, fmt.Errorf("jira: decode transitions for %s: %w", key, err)
	}
	return transitions, nil
}

// DoTransition executes a workflow action on an issue, optionally setting
// fields in the same step. fields may be nil.
func (c *Client) DoTransition(ctx context.Context, key, transitionID string, fields map[string]any) error {
	_, err := c.Call(ctx, OpDoTransition, key, transitionID, fields)
	return err
}

// AddWorklog records work on an issue. worklog follows the service's
// worklog shape, e.g. {"timeSpent": "3h", "started": ..., "comment": ...}.
func (c *Client) AddWorklog(ctx context.Context, key string, worklog map[string]any) error {
	_, err := c.Call(ctx, OpAddWorklog, key, worklog)
	return err
}

// GetWorklogs lists the work logged on an issue. Only the legacy transport
// exposes this listing; in REST mode the dispatcher reports
// UnsupportedOperationError rather than guessing an endpoint.
func (c *Client) GetWorklogs(ctx context.Context, key string) ([]Worklog, error) {
	res, err := c.Call(ctx, OpGetWorklogs, key)
	if err != nil {
		return nil, err
	}
	var worklogs []Worklog
	if err := res.Decode(&worklogs); err != nil {
		return nil, fmt.Errorf("jira: decode worklogs for %s: %w", key, err)
	}
	return worklogs, nil
}

// AssignIssue sets the assignee of an issue. An empty username unassigns.
func (c *Client) AssignIssue(ctx context.Context, key, username string) error {
	var assignee any
	if username != "" {
		assignee = map[string]any{"name": username}
	}
	return c.UpdateIssue(ctx, key, map[string]any{"assignee": assignee})
}

// GetUser fetches a user record by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	res, err := c.Call(ctx, OpGetUser, username)
	if err != nil {
		return nil, err
	}
	var user User
	if err := res.Decode(&user); err != nil {
		return nil, fmt.Errorf("jira: decode user %s: %w", username, err)
	}
	return &user, nil
}
