package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// testCredentials is a CredentialSource returning fixed values and counting
// how often it is consulted.
type testCredentials struct {
	username string
	secret   string
	calls    atomic.Int64
}

func (tc *testCredentials) Credentials(ctx context.Context, host string) (string, string, error) {
	tc.calls.Add(1)
	return tc.username, tc.secret, nil
}

// rpcTestServer simulates the legacy RPC endpoint. Each incoming envelope is
// dispatched to handle; login envelopes are counted and answered with
// sequential tokens unless denyLogin is set.
type rpcTestServer struct {
	t          *testing.T
	logins     atomic.Int64
	denyLogin  bool
	lastMethod string
	lastArgs   []any
	mu         sync.Mutex
	handle     func(method string, args []any) rpcResponse
}

func (s *rpcTestServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The best-effort web login shares the test server.
	if strings.HasPrefix(r.URL.Path, "/secure/") {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.URL.Path != DefaultLegacyPath {
		s.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.t.Errorf("decode rpc request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.lastMethod = req.Method
	s.lastArgs = req.Args
	s.mu.Unlock()

	var reply rpcResponse
	if req.Method == "login" {
		n := s.logins.Add(1)
		if s.denyLogin {
			reply = rpcResponse{Success: false, Fault: FaultAuthDenied, Error: "bad credentials"}
		} else {
			token, _ := json.Marshal(tokenFor(n))
			reply = rpcResponse{Success: true, Data: token}
		}
	} else {
		reply = s.handle(req.Method, req.Args)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

func tokenFor(n int64) string {
	return fmt.Sprintf("tok-%d", n)
}

func successData(t *testing.T, v any) rpcResponse {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal test data: %v", err)
	}
	return rpcResponse{Success: true, Data: data}
}

func newLegacyClient(t *testing.T, rpc *rpcTestServer, creds CredentialSource) *Client {
	t.Helper()
	srv := httptest.NewServer(rpc)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Mode: ModeLegacy, Credentials: creds})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func newRESTClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Mode: ModeREST})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func okWebHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/secure/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := New(Config{BaseURL: "http://example.com", Mode: "soap"}); err == nil {
		t.Error("expected error for unknown mode")
	}

	client, err := New(Config{BaseURL: "http://example.com/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Mode() != ModeREST {
		t.Errorf("default mode = %q, want %q", client.Mode(), ModeREST)
	}
}

func TestLoginRESTBasicCredential(t *testing.T) {
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API request during login: %s %s", r.Method, r.URL.Path)
	}))

	session, err := client.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	if session.Credential != want {
		t.Errorf("credential = %q, want %q", session.Credential, want)
	}
	if session.Principal != "alice" {
		t.Errorf("principal = %q, want alice", session.Principal)
	}
	if !session.WebSessionEstablished {
		t.Error("web session should be established")
	}
	if client.Session() != session {
		t.Error("session not committed")
	}
}

func TestLoginWebFailureKeepsPrimarySession(t *testing.T) {
	client := newRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	session, err := client.Login(context.Background(), "alice", "s3cret")

	var webErr *WebSessionError
	if !errors.As(err, &webErr) {
		t.Fatalf("err = %v, want *WebSessionError", err)
	}
	if session == nil || session.WebSessionEstablished {
		t.Fatal("primary session should be committed without web session")
	}
	if client.Session() == nil {
		t.Error("session not committed after web failure")
	}
	if strings.Contains(webErr.Error(), "s3cret") {
		t.Error("error message leaks the secret")
	}
}

func TestLoginLegacyToken(t *testing.T) {
	rpc := &rpcTestServer{t: t}
	client := newLegacyClient(t, rpc, nil)

	session, err := client.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Credential != "tok-1" {
		t.Errorf("credential = %q, want tok-1", session.Credential)
	}

	rpc.mu.Lock()
	args := rpc.lastArgs
	rpc.mu.Unlock()
	if len(args) != 2 || args[0] != "alice" || args[1] != "s3cret" {
		t.Errorf("login args = %v, want [alice s3cret]", args)
	}
}

func TestLoginLegacyDenied(t *testing.T) {
	rpc := &rpcTestServer{t: t, denyLogin: true}
	client := newLegacyClient(t, rpc, nil)

	_, err := client.Login(context.Background(), "alice", "wrong")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if authErr.Mode != ModeLegacy {
		t.Errorf("mode = %q, want legacy", authErr.Mode)
	}
	if strings.Contains(err.Error(), "wrong") || strings.Contains(err.Error(), "alice") {
		t.Error("error message leaks credentials")
	}
	if client.Session() != nil {
		t.Error("failed login must not commit a session")
	}
}

func TestCallRESTGetIssue(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))

	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rest/api/2/issue/PROJ-1" {
			t.Errorf("got %s %s, want GET /rest/api/2/issue/PROJ-1", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		_, _ = w.Write([]byte(`{"id":"10001","key":"PROJ-1","fields":{"summary":"a bug"}}`))
	}))

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	res, err := client.Call(context.Background(), OpGetIssue, "PROJ-1")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.IsSequence() {
		t.Error("getIssue should be unary")
	}
	if got := res.Record()["key"]; got != "PROJ-1" {
		t.Errorf("key = %v, want PROJ-1", got)
	}
}

func TestCallRESTSearchBodyAndUnwrap(t *testing.T) {
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/2/search" {
			t.Errorf("got %s %s, want POST /rest/api/2/search", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["jql"] != `project = "PROJ"` {
			t.Errorf("jql = %v", body["jql"])
		}
		if body["maxResults"] != float64(5) {
			t.Errorf("maxResults = %v, want 5", body["maxResults"])
		}
		_, _ = w.Write([]byte(`{"total":2,"issues":[{"key":"PROJ-1"},{"key":"PROJ-2"}]}`))
	}))

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	res, err := client.Call(context.Background(), OpSearch, `project = "PROJ"`, 5)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !res.IsSequence() {
		t.Fatal("search should be a sequence")
	}
	records := res.Records()
	if len(records) != 2 || records[0]["key"] != "PROJ-1" || records[1]["key"] != "PROJ-2" {
		t.Errorf("records = %v", records)
	}
}

// Both transports must present the same shape for the same operation: the
// legacy side returns a bare array where REST wraps it in an object.
func TestSequenceShapeParityAcrossModes(t *testing.T) {
	comments := []map[string]any{
		{"id": "100", "body": "first"},
		{"id": "101", "body": "second"},
	}

	rpc := &rpcTestServer{t: t}
	rpc.handle = func(method string, args []any) rpcResponse {
		if method != "getComments" {
			t.Errorf("method = %q, want getComments", method)
		}
		return successData(t, comments)
	}
	legacy := newLegacyClient(t, rpc, nil)
	if _, err := legacy.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("legacy Login: %v", err)
	}

	rest := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"comments": comments})
	}))
	if _, err := rest.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("rest Login: %v", err)
	}

	fromLegacy, err := legacy.Call(context.Background(), OpGetComments, "PROJ-1")
	if err != nil {
		t.Fatalf("legacy Call: %v", err)
	}
	fromREST, err := rest.Call(context.Background(), OpGetComments, "PROJ-1")
	if err != nil {
		t.Fatalf("rest Call: %v", err)
	}

	if !fromLegacy.IsSequence() || !fromREST.IsSequence() {
		t.Fatal("both modes should yield sequences")
	}
	a, b := fromLegacy.Records(), fromREST.Records()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i]["id"] != b[i]["id"] || a[i]["body"] != b[i]["body"] {
			t.Errorf("record %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCallUpdateIssueNoContent(t *testing.T) {
	var gotBody map[string]any
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/rest/api/2/issue/PROJ-1" {
			t.Errorf("got %s %s, want PUT /rest/api/2/issue/PROJ-1", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	fields := map[string]any{"summary": "updated"}
	res, err := client.Call(context.Background(), OpUpdateIssue, "PROJ-1", fields)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Record() != nil || len(res.Records()) != 0 {
		t.Error("no-content result should be empty")
	}

	wrapped, ok := gotBody["fields"].(map[string]any)
	if !ok || wrapped["summary"] != "updated" {
		t.Errorf("body = %v, want fields wrapper", gotBody)
	}
}

func TestUnsupportedOperations(t *testing.T) {
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// getWorklogs has no REST mapping.
	_, err := client.Call(context.Background(), OpGetWorklogs, "PROJ-1")
	var unsup *UnsupportedOperationError
	if !errors.As(err, &unsup) {
		t.Fatalf("err = %v, want *UnsupportedOperationError", err)
	}
	if unsup.Op != OpGetWorklogs || unsup.Mode != ModeREST {
		t.Errorf("got %+v", unsup)
	}

	// Unknown names fail before any transport work.
	_, err = client.Call(context.Background(), "deleteEverything")
	if !errors.As(err, &unsup) {
		t.Fatalf("err = %v, want *UnsupportedOperationError", err)
	}
}

func TestCallArityCheck(t *testing.T) {
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := client.Call(context.Background(), OpGetIssue); err == nil {
		t.Error("expected arity error for getIssue with no args")
	}
}

func TestEnsureSessionNoCredentials(t *testing.T) {
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := client.EnsureSession(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestEnsureSessionSingleLogin(t *testing.T) {
	rpc := &rpcTestServer{t: t}
	creds := &testCredentials{username: "alice", secret: "s3cret"}
	client := newLegacyClient(t, rpc, creds)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.EnsureSession(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}
	if got := rpc.logins.Load(); got != 1 {
		t.Errorf("login RPCs = %d, want exactly 1", got)
	}
	if got := creds.calls.Load(); got != 1 {
		t.Errorf("credential lookups = %d, want exactly 1", got)
	}
}

func TestLegacyAuthExpiredRetriesOnce(t *testing.T) {
	var invokes atomic.Int64
	rpc := &rpcTestServer{t: t}
	rpc.handle = func(method string, args []any) rpcResponse {
		invokes.Add(1)
		if method != "getIssue" {
			t.Errorf("method = %q, want getIssue", method)
		}
		// First token is expired; the re-login issues tok-2.
		if args[0] == "tok-1" {
			return rpcResponse{Success: false, Fault: FaultAuthExpired, Error: "token expired"}
		}
		if args[0] != "tok-2" {
			t.Errorf("token = %v, want tok-2", args[0])
		}
		return successData(t, map[string]any{"key": "PROJ-1"})
	}
	client := newLegacyClient(t, rpc, nil)

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	res, err := client.Call(context.Background(), OpGetIssue, "PROJ-1")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := res.Record()["key"]; got != "PROJ-1" {
		t.Errorf("key = %v, want PROJ-1", got)
	}
	if got := invokes.Load(); got != 2 {
		t.Errorf("invokes = %d, want 2 (original + one retry)", got)
	}
	if got := rpc.logins.Load(); got != 2 {
		t.Errorf("logins = %d, want 2 (explicit + re-login)", got)
	}
}

func TestLegacyAuthExpiredSecondFaultIsFatal(t *testing.T) {
	var invokes atomic.Int64
	rpc := &rpcTestServer{t: t}
	rpc.handle = func(method string, args []any) rpcResponse {
		invokes.Add(1)
		return rpcResponse{Success: false, Fault: FaultAuthExpired, Error: "token expired"}
	}
	client := newLegacyClient(t, rpc, nil)

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err := client.Call(context.Background(), OpGetIssue, "PROJ-1")
	var remote *RemoteError
	if !errors.As(err, &remote) || !remote.AuthExpired() {
		t.Fatalf("err = %v, want auth-expired RemoteError", err)
	}
	if got := invokes.Load(); got != 2 {
		t.Errorf("invokes = %d, want exactly 2", got)
	}
}

func TestRESTNeverRetries(t *testing.T) {
	var requests atomic.Int64
	client := newRESTClient(t, okWebHandler(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessages":["expired"]}`))
	}))
	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err := client.Call(context.Background(), OpGetIssue, "PROJ-1")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if remote.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", remote.Status)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want exactly 1", got)
	}
}

func TestInvalidateThenEnsureSessionReLogsIn(t *testing.T) {
	rpc := &rpcTestServer{t: t}
	client := newLegacyClient(t, rpc, nil)

	if _, err := client.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	client.Invalidate()
	if client.Session() != nil {
		t.Fatal("session should be cleared")
	}

	// No CredentialSource configured; the last explicit credentials carry
	// the re-login.
	session, err := client.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if session.Credential != "tok-2" {
		t.Errorf("credential = %q, want tok-2", session.Credential)
	}
}

func TestNormalize(t *testing.T) {
	unary := operations[OpGetIssue]
	seq := operations[OpGetComments]

	res, err := normalize(unary, nil)
	if err != nil || res.Record() != nil {
		t.Errorf("empty unary: res=%v err=%v", res, err)
	}

	res, err = normalize(seq, json.RawMessage("null"))
	if err != nil || !res.IsSequence() || len(res.Records()) != 0 {
		t.Errorf("null sequence: res=%v err=%v", res, err)
	}

	res, err = normalize(seq, json.RawMessage(`{"unexpected":true}`))
	if err == nil {
		t.Error("wrapper without list key should fail")
	}

	res, err = normalize(unary, json.RawMessage(`{"key":"PROJ-9"}`))
	if err != nil {
		t.Fatalf("unary: %v", err)
	}
	if got := res.Records(); len(got) != 1 || got[0]["key"] != "PROJ-9" {
		t.Errorf("unary Records() = %v, want one-element slice", got)
	}
}
