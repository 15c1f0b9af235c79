package jira

import (
	"errors"
	"fmt"
)

// Fault codes reported by the legacy RPC transport.
const (
	// FaultAuthExpired signals that the session token is no longer valid.
	// The dispatcher recovers from this exactly once per call by
	// re-authenticating and retrying.
	FaultAuthExpired = "auth.expired"

	// FaultAuthDenied signals rejected credentials at login time.
	FaultAuthDenied = "auth.denied"
)

// AuthError indicates that the service rejected the supplied credentials
// during login. The username and secret are never included.
type AuthError struct {
	Mode Mode
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("jira: login rejected (%s mode)", e.Mode)
}

// TransportError indicates a network-level failure: the request never
// produced a response from the service (timeout, DNS, connection refused).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("jira: %s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError indicates that the service responded with a business or
// protocol-level fault. Exactly one of Status (REST) or Fault (legacy RPC)
// is set, depending on which transport produced it.
type RemoteError struct {
	Op      string
	Status  int    // HTTP status, REST mode
	Fault   string // fault code, legacy mode
	Message string
}

func (e *RemoteError) Error() string {
	if e.Fault != "" {
		return fmt.Sprintf("jira: %s: remote fault %s: %s", e.Op, e.Fault, e.Message)
	}
	return fmt.Sprintf("jira: %s: remote error (status %d): %s", e.Op, e.Status, e.Message)
}

// AuthExpired reports whether this fault means the session token expired,
// which is the only condition the dispatcher recovers from automatically.
func (e *RemoteError) AuthExpired() bool {
	return e.Fault == FaultAuthExpired
}

// WebSessionError indicates that a web-fallback form POST (or the
// best-effort cookie login that backs it) returned a failing HTTP status.
// The remote state is unconfirmed: the action may or may not have taken
// effect.
type WebSessionError struct {
	Path   string
	Status int
}

func (e *WebSessionError) Error() string {
	return fmt.Sprintf("jira: web session request to %s failed (status %d)", e.Path, e.Status)
}

// UnsupportedOperationError indicates that an operation has no mapping for
// the active transport mode. The two protocols are never mixed within one
// call, so a missing mapping fails loudly instead of falling back.
type UnsupportedOperationError struct {
	Op   string
	Mode Mode
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("jira: operation %q is not supported in %s mode", e.Op, e.Mode)
}

// ErrNoSession is returned by methods that require an established session
// when no credential source is configured to create one.
var ErrNoSession = errors.New("jira: no active session and no credential source configured")
