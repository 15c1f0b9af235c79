package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gira-cli/gira/internal/debug"
)

// DefaultLegacyPath is the endpoint the legacy RPC transport listens on,
// relative to the service base URL. Overridable via Config.LegacyPath.
const DefaultLegacyPath = "/rpc/gira-service/2"

// rpcRequest is the legacy transport's wire envelope: a method name and
// its positional arguments. For authenticated calls the session token is
// the first argument.
type rpcRequest struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// rpcResponse is the legacy transport's reply envelope. Fault carries a
// protocol-level fault code; auth.expired is the one the dispatcher
// recovers from.
type rpcResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Fault   string          `json:"fault,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// rpcAdapter invokes operations over the legacy RPC transport.
type rpcAdapter struct {
	endpoint string
	http     *http.Client
}

// invoke calls a named remote procedure with the session token prepended
// to the positional arguments, per the legacy protocol's convention.
func (a *rpcAdapter) invoke(ctx context.Context, token, method string, args []any) (json.RawMessage, error) {
	withToken := make([]any, 0, len(args)+1)
	withToken = append(withToken, token)
	withToken = append(withToken, args...)
	return a.call(ctx, method, withToken)
}

// login performs the legacy authentication call. It is the only RPC issued
// without a token; the returned opaque token becomes the session
// credential.
func (a *rpcAdapter) login(ctx context.Context, username, secret string) (string, error) {
	data, err := a.call(ctx, "login", []any{username, secret})
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Fault == FaultAuthDenied {
			return "", &AuthError{Mode: ModeLegacy}
		}
		return "", err
	}

	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("jira: login: decode token: %w", err)
	}
	return token, nil
}

// call sends one RPC envelope and interprets the reply. Protocol faults
// become RemoteError; anything that prevents a reply is a TransportError.
func (a *rpcAdapter) call(ctx context.Context, method string, args []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Args: args})
	if err != nil {
		return nil, fmt.Errorf("jira: %s: marshal rpc request: %w", method, err)
	}

	debug.Logf("rpc: %s (%d args)", method, len(args))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("jira: %s: build rpc request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("read rpc response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Op: method, Status: resp.StatusCode, Message: summarizeBody(respBody)}
	}

	var reply rpcResponse
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, fmt.Errorf("jira: %s: decode rpc response: %w", method, err)
	}

	if !reply.Success {
		return nil, &RemoteError{Op: method, Fault: reply.Fault, Message: reply.Error}
	}

	return reply.Data, nil
}
