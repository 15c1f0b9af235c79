// Package gira provides a minimal public API for embedding the gira client
// in other Go programs.
//
// Most programs should use the gira CLI. This package exports only the
// essential types and functions for programmatic access to an issue tracker
// over either transport.
package gira

import (
	"github.com/gira-cli/gira/internal/jira"
)

// Core types for working with the client
type (
	Client     = jira.Client
	Config     = jira.Config
	Session    = jira.Session
	Mode       = jira.Mode
	Result     = jira.Result
	Record     = jira.Record
	Issue      = jira.Issue
	Comment    = jira.Comment
	Transition = jira.Transition
	Worklog    = jira.Worklog
	User       = jira.User
	JQLFilter  = jira.JQLFilter
)

// Transport modes
const (
	ModeREST   = jira.ModeREST
	ModeLegacy = jira.ModeLegacy
)

// Error types callers may inspect with errors.As
type (
	AuthError                 = jira.AuthError
	TransportError            = jira.TransportError
	RemoteError               = jira.RemoteError
	WebSessionError           = jira.WebSessionError
	UnsupportedOperationError = jira.UnsupportedOperationError
)

// New builds a client for the tracker at cfg.BaseURL.
// No network traffic happens until the first call.
func New(cfg Config) (*Client, error) {
	return jira.New(cfg)
}
