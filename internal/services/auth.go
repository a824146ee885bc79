// Authentication client for the inspection service's login and signup routes
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/teimsafety/ppectl/internal/shared"
)

// AuthService talks to the service's credential routes. Both answer a JSON
// document carrying a human-readable message.
type AuthService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthService creates a new authentication client.
func NewAuthService(baseURL string, client *http.Client) *AuthService {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

type authRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string `json:"message"`
}

// Login checks the operator's credentials and returns the service message.
// Rejected credentials fail with [shared.ErrAuthFailed].
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	return a.post(ctx, "/api/login", authRequest{Email: email, Password: password}, shared.ErrAuthFailed)
}

// Signup registers a new operator account and returns the service message.
func (a *AuthService) Signup(ctx context.Context, name, email, password string) (string, error) {
	return a.post(ctx, "/api/signup", authRequest{Name: name, Email: email, Password: password}, shared.ErrInvalidInput)
}

func (a *AuthService) post(ctx context.Context, path string, payload authRequest, rejection error) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	var parsed authResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		parsed.Message = fmt.Sprintf("Server responded with status %d.", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", rejection, parsed.Message)
	}

	return parsed.Message, nil
}
