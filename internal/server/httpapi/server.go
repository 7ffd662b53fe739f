// Package httpapi exposes the credential-verification endpoint and the
// administrative request API over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/auth"
	"github.com/dmitrijs2005/minauth/internal/server/models"
)

// AdminService is the service name operators must be allowed for to use the
// administrative API.
const AdminService = "admin"

// Verifier checks a credential against one service. Denial is (false, nil);
// an error means the verdict could not be produced.
type Verifier interface {
	Verify(ctx context.Context, userID, password, service string) (bool, error)
}

// Submitter accepts a new account-change request.
type Submitter interface {
	Submit(ctx context.Context, issuerID string, payload models.Payload) (*models.Request, error)
}

type Server struct {
	verifier      Verifier
	submitter     Submitter
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewServer(v Verifier, s Submitter, jwtSecret []byte, tokenValidity time.Duration, logger logging.Logger) *Server {
	return &Server{
		verifier:      v,
		submitter:     s,
		jwtSecret:     jwtSecret,
		tokenValidity: tokenValidity,
		logger:        logger.With("module", "httpapi"),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth", s.handleAuth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /requests", s.requireToken(s.handleSubmit))
	return mux
}

// handleAuth answers the verification question for one user/password/service
// triple. 200 means allowed; 401 covers both a bad password and a rule
// denial, so callers cannot probe which one it was; 502 means the verdict
// could not be produced.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	userID, password, ok := r.BasicAuth()
	if !ok {
		s.deny(w)
		return
	}

	service := r.URL.Query().Get("service")
	if service == "" {
		http.Error(w, "missing service parameter", http.StatusBadRequest)
		return
	}

	allowed, err := s.verifier.Verify(r.Context(), userID, password, service)
	if err != nil {
		s.logger.Error(r.Context(), "verification failed", "user_id", userID, "service", service, "error", err)
		http.Error(w, "verification unavailable", http.StatusBadGateway)
		return
	}

	if !allowed {
		s.deny(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) deny(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="minauth"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// handleLogin verifies an operator credential against the admin service and
// issues a session token for the request API.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed, err := s.verifier.Verify(r.Context(), req.UserID, req.Password, AdminService)
	if err != nil {
		s.logger.Error(r.Context(), "operator verification failed", "user_id", req.UserID, "error", err)
		http.Error(w, "verification unavailable", http.StatusBadGateway)
		return
	}
	if !allowed {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(req.UserID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(r.Context(), "token generation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

// requireToken authenticates the bearer token and passes the operator id to
// the wrapped handler via the request context.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "

		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(header[len(prefix):], s.jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(withOperator(r.Context(), userID)))
	}
}

type submitRequest struct {
	Type    models.RequestType `json:"type"`
	Payload json.RawMessage    `json:"payload"`
}

type submitResponse struct {
	ID     string               `json:"id"`
	Status models.RequestStatus `json:"status"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	payload, err := decodePayload(req.Type, req.Payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issuerID := operatorFrom(r.Context())
	created, err := s.submitter.Submit(r.Context(), issuerID, payload)
	if err != nil {
		s.logger.Error(r.Context(), "request submission failed", "issuer_id", issuerID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info(r.Context(), "request submitted",
		"request_id", created.ID, "type", created.Type, "issuer_id", issuerID)
	s.writeJSON(w, http.StatusCreated, submitResponse{ID: created.ID, Status: created.Status})
}

func decodePayload(typ models.RequestType, raw json.RawMessage) (models.Payload, error) {
	var (
		payload models.Payload
		err     error
	)

	switch typ {
	case models.TypeCreateUser:
		p := models.CreateUserPayload{}
		err = json.Unmarshal(raw, &p)
		payload = p
	case models.TypeChangePubkey:
		p := models.ChangePubkeyPayload{}
		err = json.Unmarshal(raw, &p)
		payload = p
	case models.TypeRenewPassword:
		p := models.RenewPasswordPayload{}
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown request type %q", typ)
	}

	if err != nil {
		return nil, errors.New("invalid payload")
	}

	return payload, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "response encoding failed", "error", err)
	}
}
