package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gira-cli/gira/internal/debug"
)

// restAdapter invokes operations over the structured REST transport. It
// builds each request from the operation's path template, query projection
// and JSON body, attaches the stored auth header, and decodes the JSON
// response unless the operation is side-effect-only.
type restAdapter struct {
	base string
	http *http.Client
}

// maxResponseSize bounds response reads from the remote.
const maxResponseSize = 50 * 1024 * 1024

// invoke performs one REST call for the given operation descriptor.
func (a *restAdapter) invoke(ctx context.Context, credential string, d *descriptor, args []any) (json.RawMessage, error) {
	m := d.REST

	var bodyReader io.Reader
	if m.Body != nil {
		data, err := json.Marshal(m.Body(args))
		if err != nil {
			return nil, fmt.Errorf("jira: %s: marshal request body: %w", d.Name, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	reqURL := a.buildURL(m, args)
	debug.Logf("rest: %s %s %s", d.Name, m.Method, reqURL)

	req, err := http.NewRequestWithContext(ctx, m.Method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("jira: %s: build request: %w", d.Name, err)
	}

	req.Header.Set("Authorization", credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: d.Name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: d.Name, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{
			Op:      d.Name,
			Status:  resp.StatusCode,
			Message: summarizeBody(respBody),
		}
	}

	// Side-effect-only: status is the sole success signal.
	if m.NoContent || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	return respBody, nil
}

// buildURL substitutes positional placeholders into the path template and
// appends the query projection.
func (a *restAdapter) buildURL(m *restMapping, args []any) string {
	path := placeholderPattern.ReplaceAllStringFunc(m.Path, func(ph string) string {
		var idx int
		fmt.Sscanf(ph, "{%d}", &idx)
		return url.PathEscape(fmt.Sprint(args[idx]))
	})

	u := a.base + path
	if len(m.Query) > 0 {
		values := url.Values{}
		for param, idx := range m.Query {
			values.Set(param, fmt.Sprint(args[idx]))
		}
		u += "?" + values.Encode()
	}
	return u
}

// summarizeBody trims a response body to a diagnosable message without
// dumping raw transport internals into the error.
func summarizeBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
