package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/auth"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeVerifier struct {
	allowed map[string]bool // "user/password/service"
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context, userID, password, service string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[userID+"/"+password+"/"+service], nil
}

type fakeSubmitter struct {
	issuerID string
	payload  models.Payload
	err      error
}

func (f *fakeSubmitter) Submit(ctx context.Context, issuerID string, payload models.Payload) (*models.Request, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.issuerID = issuerID
	f.payload = payload
	return &models.Request{ID: "req-1", Status: models.StatusNew, Type: payload.RequestType()}, nil
}

func newTestServer(v Verifier, sub Submitter) *httptest.Server {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewServer(v, sub, testSecret, time.Hour, logger)
	return httptest.NewServer(s.Routes())
}

func authGet(t *testing.T, ts *httptest.Server, user, password, service string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/auth?service="+service, nil)
	require.NoError(t, err)
	req.SetBasicAuth(user, password)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuth_Allowed(t *testing.T) {
	v := &fakeVerifier{allowed: map[string]bool{"alice/pw/svc": true}}
	ts := newTestServer(v, &fakeSubmitter{})
	defer ts.Close()

	resp := authGet(t, ts, "alice", "pw", "svc")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_Denied(t *testing.T) {
	v := &fakeVerifier{allowed: map[string]bool{}}
	ts := newTestServer(v, &fakeSubmitter{})
	defer ts.Close()

	resp := authGet(t, ts, "alice", "wrong", "svc")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
}

func TestAuth_NoCredentials(t *testing.T) {
	ts := newTestServer(&fakeVerifier{}, &fakeSubmitter{})
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/auth?service=svc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_MissingService(t *testing.T) {
	ts := newTestServer(&fakeVerifier{}, &fakeSubmitter{})
	defer ts.Close()

	resp := authGet(t, ts, "alice", "pw", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_InfrastructureFault(t *testing.T) {
	v := &fakeVerifier{err: errors.New("db down")}
	ts := newTestServer(v, &fakeSubmitter{})
	defer ts.Close()

	resp := authGet(t, ts, "alice", "pw", "svc")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func login(t *testing.T, ts *httptest.Server, user, password string) *http.Response {
	t.Helper()
	body := strings.NewReader(`{"user_id":"` + user + `","password":"` + password + `"}`)
	resp, err := ts.Client().Post(ts.URL+"/login", "application/json", body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestLogin_IssuesUsableToken(t *testing.T) {
	v := &fakeVerifier{allowed: map[string]bool{"admin/pw/admin": true}}
	ts := newTestServer(v, &fakeSubmitter{})
	defer ts.Close()

	resp := login(t, ts, "admin", "pw")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lr loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lr))
	require.NotEmpty(t, lr.AccessToken)

	userID, err := auth.GetUserIDFromToken(lr.AccessToken, testSecret)
	require.NoError(t, err)
	require.Equal(t, "admin", userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	v := &fakeVerifier{allowed: map[string]bool{"admin/pw/admin": true}}
	ts := newTestServer(v, &fakeSubmitter{})
	defer ts.Close()

	resp := login(t, ts, "admin", "wrong")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func submit(t *testing.T, ts *httptest.Server, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/requests", strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSubmit_CreatesRequest(t *testing.T) {
	sub := &fakeSubmitter{}
	ts := newTestServer(&fakeVerifier{}, sub)
	defer ts.Close()

	token, err := auth.GenerateToken("admin", testSecret, time.Hour)
	require.NoError(t, err)

	resp := submit(t, ts, token,
		`{"type":"create_user","payload":{"username":"alice","email":"alice@example.com","pubkey":"c3NoLWVkMjU1MTkgQUFBQQ=="}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sr submitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	require.Equal(t, "req-1", sr.ID)
	require.Equal(t, models.StatusNew, sr.Status)

	require.Equal(t, "admin", sub.issuerID)
	p, ok := sub.payload.(models.CreateUserPayload)
	require.True(t, ok)
	require.Equal(t, "alice", p.Username)
	require.Equal(t, []byte("ssh-ed25519 AAAA"), p.PubKey)
}

func TestSubmit_RequiresToken(t *testing.T) {
	ts := newTestServer(&fakeVerifier{}, &fakeSubmitter{})
	defer ts.Close()

	resp := submit(t, ts, "", `{"type":"renew_password","payload":{"user_id":"u1"}}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = submit(t, ts, "not-a-token", `{"type":"renew_password","payload":{"user_id":"u1"}}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmit_UnknownType(t *testing.T) {
	ts := newTestServer(&fakeVerifier{}, &fakeSubmitter{})
	defer ts.Close()

	token, err := auth.GenerateToken("admin", testSecret, time.Hour)
	require.NoError(t, err)

	resp := submit(t, ts, token, `{"type":"delete_everything","payload":{}}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_ExpiredToken(t *testing.T) {
	ts := newTestServer(&fakeVerifier{}, &fakeSubmitter{})
	defer ts.Close()

	token, err := auth.GenerateToken("admin", testSecret, -time.Minute)
	require.NoError(t, err)

	resp := submit(t, ts, token, `{"type":"renew_password","payload":{"user_id":"u1"}}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
