package jira

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gira-cli/gira/internal/debug"
)

// Web UI paths used by the fallback executor. These are form endpoints,
// not API resources; only the HTTP status is interpreted.
const (
	webLoginPath = "/secure/Dashboard.jspa"
	webLinkPath  = "/secure/LinkExistingIssue.jspa"
)

// webSession issues cookie-authenticated, browser-style form POSTs for
// operations that neither structured API exposes. Success is inferred
// purely from transport-level acceptance: the response body is never
// parsed, so callers must treat every web-fallback action as best-effort
// and unconfirmed.
type webSession struct {
	base string
	http *http.Client // carries the cookie jar
}

// login establishes the browser cookie session by POSTing credentials to
// the dashboard login form. Called after every primary login; failure is
// reported but never invalidates the primary session.
func (w *webSession) login(ctx context.Context, username, secret string) error {
	form := url.Values{
		"os_username": {username},
		"os_password": {secret},
	}
	return w.postForm(ctx, webLoginPath, form)
}

// postForm POSTs form fields to a web UI path under the service base URL.
// Any status above 299 is a WebSessionError with no guarantee about the
// remote state.
func (w *webSession) postForm(ctx context.Context, path string, form url.Values) error {
	debug.Logf("web: POST %s", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Op: "postForm " + path, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.http.Do(req)
	if err != nil {
		return &TransportError{Op: "postForm " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode > 299 {
		return &WebSessionError{Path: path, Status: resp.StatusCode}
	}
	return nil
}

// PostForm exposes the web-fallback executor for callers that need other
// form endpoints. The session must have been established with a
// successful web login; use Session().WebSessionEstablished to check.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) error {
	return c.web.postForm(ctx, path, form)
}

// LinkIssues links two issues through the web UI, the one capability
// absent from both structured APIs. linkType is the link description
// (e.g. "blocks"), fromKey the source issue key, and toID the numeric id
// of the target issue.
//
// This is an unconfirmed operation: a nil return means only that the
// service accepted the POST, not that the link exists.
func (c *Client) LinkIssues(ctx context.Context, linkType, fromKey, toID string) error {
	form := url.Values{
		"linkDesc": {linkType},
		"linkKey":  {fromKey},
		"id":       {toID},
	}
	return c.web.postForm(ctx, webLinkPath, form)
}
