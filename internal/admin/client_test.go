package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newAPIStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID   string `json:"user_id"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.UserID != "admin" || body.Password != "pw" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	mux.HandleFunc("POST /requests", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var body struct {
			Type    models.RequestType `json:"type"`
			Payload json.RawMessage    `json:"payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, models.TypeRenewPassword, body.Type)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "req-1", "status": "new"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginAndSubmit(t *testing.T) {
	srv := newAPIStub(t)
	c := NewClient(srv.URL)

	require.NoError(t, c.Login(context.Background(), "admin", []byte("pw")))

	id, err := c.Submit(context.Background(), models.RenewPasswordPayload{UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, "req-1", id)
}

func TestClient_LoginRejected(t *testing.T) {
	srv := newAPIStub(t)
	c := NewClient(srv.URL)

	err := c.Login(context.Background(), "admin", []byte("wrong"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "login failed")
}

func TestClient_SubmitRequiresLogin(t *testing.T) {
	srv := newAPIStub(t)
	c := NewClient(srv.URL)

	_, err := c.Submit(context.Background(), models.RenewPasswordPayload{UserID: "u1"})
	require.Error(t, err)
}
