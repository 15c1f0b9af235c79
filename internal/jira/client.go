package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/gira-cli/gira/internal/debug"
)

const userAgent = "gira-client/1.0"

// DefaultTimeout is applied to the underlying HTTP client when the caller
// does not supply one. The core imposes no per-operation timeout beyond
// this transport-level bound.
const DefaultTimeout = 30 * time.Second

// CredentialSource supplies a username and secret when the client needs to
// establish a session and none exists. Implementations may prompt
// interactively or read an external secret store. The host parameter is
// the configured credential-lookup host, which may differ from the
// service host.
type CredentialSource interface {
	Credentials(ctx context.Context, host string) (username, secret string, err error)
}

// Config holds the immutable settings for one client instance.
type Config struct {
	// BaseURL is the root of the remote service, e.g.
	// "https://tracker.example.com". Required.
	BaseURL string

	// Mode selects the transport. Defaults to ModeREST.
	Mode Mode

	// LegacyPath overrides the legacy RPC endpoint path. Defaults to
	// DefaultLegacyPath. Ignored in REST mode.
	LegacyPath string

	// CredentialHost, when set, is passed to the CredentialSource in
	// place of the service host. It is used only for credential lookup,
	// never for request routing.
	CredentialHost string

	// Credentials is consulted by EnsureSession when no session exists.
	// Optional: clients that always call Login explicitly may omit it.
	Credentials CredentialSource

	// HTTPClient overrides the default HTTP client (useful in tests).
	HTTPClient *http.Client
}

// Client is the single entry point for all operations against the remote
// service. It owns the process-visible mutable state (session, reference
// caches) and is safe for concurrent use. Construct with New, establish a
// session with Login or lazily via EnsureSession, then Call.
type Client struct {
	cfg  Config
	rest *restAdapter
	rpc  *rpcAdapter
	web  *webSession

	mu      sync.Mutex
	session *Session
	// Last explicit login credentials, kept in memory only, so the
	// legacy re-login path works without a CredentialSource.
	lastUser   string
	lastSecret string

	loginFlight singleflight.Group
	refs        refCache

	calls metric.Int64Counter
}

// New creates a client for the service at cfg.BaseURL. It performs no
// network traffic; the first session is established by Login or on demand.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("jira: base URL is required")
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.Mode == "" {
		cfg.Mode = ModeREST
	}
	if cfg.Mode != ModeREST && cfg.Mode != ModeLegacy {
		return nil, fmt.Errorf("jira: unknown transport mode %q", cfg.Mode)
	}
	if cfg.LegacyPath == "" {
		cfg.LegacyPath = DefaultLegacyPath
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("jira: cookie jar: %w", err)
	}
	webClient := &http.Client{
		Timeout:   httpClient.Timeout,
		Transport: httpClient.Transport,
		Jar:       jar,
	}

	counter, err := otel.Meter("github.com/gira-cli/gira").Int64Counter(
		"gira.client.calls",
		metric.WithDescription("Dispatched operation calls by name and mode"),
	)
	if err != nil {
		return nil, fmt.Errorf("jira: telemetry: %w", err)
	}

	c := &Client{
		cfg:   cfg,
		rest:  &restAdapter{base: cfg.BaseURL, http: httpClient},
		rpc:   &rpcAdapter{endpoint: cfg.BaseURL + cfg.LegacyPath, http: httpClient},
		web:   &webSession{base: cfg.BaseURL, http: webClient},
		calls: counter,
	}
	c.refs.init()
	return c, nil
}

// Mode returns the client's active transport mode.
func (c *Client) Mode() Mode { return c.cfg.Mode }

// Session returns the current session, or nil when none is established.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Login authenticates as username and commits a session. In REST mode the
// credential is a stateless basic-auth header built without a round trip;
// in legacy mode a synchronous login RPC returns the opaque token
// (AuthError on rejection).
//
// After the primary session commits, a browser-style cookie session is
// established best-effort for the web fallback. Its failure is returned as
// a *WebSessionError but the primary session stays committed; callers that
// never use the web fallback may ignore it.
func (c *Client) Login(ctx context.Context, username, secret string) (*Session, error) {
	var credential string

	switch c.cfg.Mode {
	case ModeREST:
		credential = "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+secret))
	case ModeLegacy:
		token, err := c.rpc.login(ctx, username, secret)
		if err != nil {
			return nil, err
		}
		credential = token
	}

	session := &Session{
		Mode:       c.cfg.Mode,
		Credential: credential,
		Principal:  username,
	}

	webErr := c.web.login(ctx, username, secret)
	session.WebSessionEstablished = webErr == nil
	if webErr != nil {
		debug.Logf("web session not established: %v", webErr)
	}

	// Commit only after the primary path succeeded; a cancelled or
	// failed login leaves the previous state untouched.
	c.mu.Lock()
	c.session = session
	c.lastUser, c.lastSecret = username, secret
	c.mu.Unlock()

	return session, webErr
}

// EnsureSession returns the current session, establishing one through the
// configured CredentialSource if needed. Concurrent callers with no prior
// session collapse into a single in-flight login.
func (c *Client) EnsureSession(ctx context.Context) (*Session, error) {
	if s := c.Session(); s != nil {
		return s, nil
	}

	v, err, _ := c.loginFlight.Do("login", func() (any, error) {
		// Re-check: a login may have committed while we queued.
		if s := c.Session(); s != nil {
			return s, nil
		}
		username, secret, err := c.resolveCredentials(ctx)
		if err != nil {
			return nil, err
		}

		session, err := c.Login(ctx, username, secret)
		var webErr *WebSessionError
		if errors.As(err, &webErr) {
			// Web cookie session is best-effort; the primary
			// session is committed and usable.
			return session, nil
		}
		if err != nil {
			return nil, err
		}
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// resolveCredentials picks the credential source for a lazy or repeated
// login: the configured CredentialSource first, then the credentials from
// the last explicit Login (needed for the legacy re-login path).
func (c *Client) resolveCredentials(ctx context.Context) (string, string, error) {
	if c.cfg.Credentials != nil {
		host := c.cfg.CredentialHost
		if host == "" {
			host = c.cfg.BaseURL
		}
		username, secret, err := c.cfg.Credentials.Credentials(ctx, host)
		if err != nil {
			return "", "", fmt.Errorf("jira: resolve credentials: %w", err)
		}
		return username, secret, nil
	}

	c.mu.Lock()
	username, secret := c.lastUser, c.lastSecret
	c.mu.Unlock()
	if username == "" {
		return "", "", ErrNoSession
	}
	return username, secret, nil
}

// Invalidate clears the session credential. Reference caches survive: the
// cached metadata is not credential-scoped.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Close releases client resources. It does not log out of the remote
// service; sessions expire server-side.
func (c *Client) Close() error {
	c.Invalidate()
	return nil
}

// Call dispatches one logical operation by name with positional arguments
// and returns the normalized result. The shape of the result for a given
// operation is identical across both transport modes.
//
// In legacy mode, an auth-expired fault triggers exactly one
// invalidate/re-login/retry cycle; a second fault propagates as a fatal
// RemoteError. No other error is retried.
func (c *Client) Call(ctx context.Context, op string, args ...any) (Result, error) {
	d, ok := lookupOp(op)
	if !ok {
		return Result{}, &UnsupportedOperationError{Op: op, Mode: c.cfg.Mode}
	}
	if len(args) < d.MinArgs {
		return Result{}, fmt.Errorf("jira: %s: want at least %d args, got %d", op, d.MinArgs, len(args))
	}

	c.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("mode", string(c.cfg.Mode)),
	))

	var raw json.RawMessage
	var err error

	switch c.cfg.Mode {
	case ModeLegacy:
		raw, err = c.callLegacy(ctx, d, args)
	default:
		raw, err = c.callREST(ctx, d, args)
	}
	if err != nil {
		return Result{}, err
	}

	return normalize(d, raw)
}

func (c *Client) callREST(ctx context.Context, d *descriptor, args []any) (json.RawMessage, error) {
	if d.REST == nil {
		return nil, &UnsupportedOperationError{Op: d.Name, Mode: ModeREST}
	}

	session, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	// The REST credential is stateless; there is no expiry to recover
	// from, so the call is issued exactly once.
	return c.rest.invoke(ctx, session.Credential, d, args)
}

func (c *Client) callLegacy(ctx context.Context, d *descriptor, args []any) (json.RawMessage, error) {
	if d.Legacy == "" {
		return nil, &UnsupportedOperationError{Op: d.Name, Mode: ModeLegacy}
	}

	rpcArgs := args
	if d.LegacyArgs != nil {
		rpcArgs = d.LegacyArgs(args)
	}

	session, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.rpc.invoke(ctx, session.Credential, d.Legacy, rpcArgs)
	var remote *RemoteError
	if !errors.As(err, &remote) || !remote.AuthExpired() {
		return raw, err
	}

	// Token expired: re-login once and retry exactly once. A second
	// failure of any kind propagates unchanged.
	debug.Logf("legacy: %s: token expired, re-authenticating", d.Name)
	c.Invalidate()
	session, err = c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}
	return c.rpc.invoke(ctx, session.Credential, d.Legacy, rpcArgs)
}

// normalize unwraps transport-specific container shapes so both modes
// present the same result shape per operation.
func normalize(d *descriptor, raw json.RawMessage) (Result, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Result{many: d.Seq}, nil
	}

	if !d.Seq {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Result{}, fmt.Errorf("jira: %s: decode result: %w", d.Name, err)
		}
		return Result{record: rec}, nil
	}

	// Sequence cardinality: accept a bare array (legacy transport and
	// unwrapped REST listings) or a wrapper object holding the array
	// under the operation's list key.
	var seq []Record
	if err := json.Unmarshal(raw, &seq); err == nil {
		return Result{records: seq, many: true}, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return Result{}, fmt.Errorf("jira: %s: decode result: %w", d.Name, err)
	}
	if d.REST != nil && d.REST.ListKey != "" {
		if inner, ok := wrapper[d.REST.ListKey]; ok {
			if err := json.Unmarshal(inner, &seq); err != nil {
				return Result{}, fmt.Errorf("jira: %s: decode %s: %w", d.Name, d.REST.ListKey, err)
			}
			return Result{records: seq, many: true}, nil
		}
	}
	return Result{}, fmt.Errorf("jira: %s: response has no recognizable sequence", d.Name)
}
