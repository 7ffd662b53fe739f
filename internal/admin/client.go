package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/minauth/internal/server/models"
)

// Client talks to the server's administrative HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// Login verifies the operator credential and stores the issued session token
// for subsequent calls.
func (c *Client) Login(ctx context.Context, userID string, password []byte) error {
	body, err := json.Marshal(map[string]string{
		"user_id":  userID,
		"password": string(password),
	})
	if err != nil {
		return err
	}

	resp, err := c.post(ctx, "/login", body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", responseError(resp))
	}

	var lr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	c.token = lr.AccessToken
	return nil
}

// Submit sends a new account-change request and returns its id.
func (c *Client) Submit(ctx context.Context, payload models.Payload) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("not logged in")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(map[string]json.RawMessage{
		"type":    json.RawMessage(`"` + string(payload.RequestType()) + `"`),
		"payload": raw,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, "/requests", body, c.token)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("submit failed: %s", responseError(resp))
	}

	var sr struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}

	return sr.ID, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

func responseError(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(b))
}
