package peakapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
)

// Client talks to the peak catalog REST backend. The bearer token is passed
// per call so one Client serves every session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// StatusError is returned when the backend answers with an unexpected status.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap maps well-known statuses onto domain sentinels.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrPeakNotFound
	}
	return nil
}

// authResponse covers every shape the authentication endpoints return.
type authResponse struct {
	Success           bool   `json:"success"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	TempToken         string `json:"tempToken"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Token             string `json:"token"`
	ID                string `json:"_id"`
}

func (r authResponse) session() *domain.Session {
	if !r.Success || r.Token == "" {
		return nil
	}
	return &domain.Session{ID: r.ID, Name: r.Name, Email: r.Email, Token: r.Token}
}

// Signup creates an account. It reports success only for 201 Created.
func (c *Client) Signup(ctx context.Context, user domain.User) bool {
	status, err := c.do(ctx, "signup", http.MethodPost, "/api/users", "", user, nil)
	if err != nil {
		c.logger.Warn("signup failed", "error", err)
		return false
	}
	return status == http.StatusCreated
}

// Authenticate logs in with email and password. The result holds a session,
// a second-factor challenge, or is nil when the credentials were rejected.
func (c *Client) Authenticate(ctx context.Context, email, password string) *domain.LoginResult {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, "authenticate", http.MethodPost, "/api/users/authenticate", "", body, &resp); err != nil {
		c.logger.Warn("authenticate failed", "error", err)
		return nil
	}

	if resp.TwoFactorRequired {
		return &domain.LoginResult{Challenge: &domain.TwoFactorChallenge{
			TwoFactorRequired: true,
			TempToken:         resp.TempToken,
			Name:              resp.Name,
			Email:             resp.Email,
			ID:                resp.ID,
		}}
	}
	if s := resp.session(); s != nil {
		return &domain.LoginResult{Session: s}
	}
	return nil
}

// VerifyTwoFactorLogin exchanges a challenge token and authenticator code for a session.
func (c *Client) VerifyTwoFactorLogin(ctx context.Context, tempToken, code string) *domain.Session {
	body := map[string]string{"tempToken": tempToken, "code": code}
	return c.secondFactor(ctx, "verify_2fa_login", "/api/2fa/verify-login", body)
}

// RecoveryTwoFactorLogin exchanges a challenge token and recovery code for a session.
func (c *Client) RecoveryTwoFactorLogin(ctx context.Context, tempToken, recoveryCode string) *domain.Session {
	body := map[string]string{"tempToken": tempToken, "recoveryCode": recoveryCode}
	return c.secondFactor(ctx, "recovery_2fa_login", "/api/2fa/recovery-login", body)
}

func (c *Client) secondFactor(ctx context.Context, op, path string, body any) *domain.Session {
	var resp authResponse
	if _, err := c.do(ctx, op, http.MethodPost, path, "", body, &resp); err != nil {
		c.logger.Warn("second factor login failed", "operation", op, "error", err)
		return nil
	}
	return resp.session()
}

// SetupTwoFactor starts second-factor enrolment for the session's user.
func (c *Client) SetupTwoFactor(ctx context.Context, token string) *domain.TwoFactorSetup {
	var resp domain.TwoFactorSetup
	if _, err := c.do(ctx, "setup_2fa", http.MethodPost, "/api/2fa/setup", token, nil, &resp); err != nil {
		c.logger.Warn("2fa setup failed", "error", err)
		return nil
	}
	return &resp
}

// VerifyTwoFactorSetup confirms enrolment with a code from the authenticator app.
func (c *Client) VerifyTwoFactorSetup(ctx context.Context, token, code string) *domain.TwoFactorActivation {
	var resp domain.TwoFactorActivation
	body := map[string]string{"code": code}
	if _, err := c.do(ctx, "verify_2fa_setup", http.MethodPost, "/api/2fa/verify-setup", token, body, &resp); err != nil {
		c.logger.Warn("2fa verify setup failed", "error", err)
		return nil
	}
	return &resp
}

// ListUserPeaks returns the user's peaks, optionally narrowed server-side to
// categoryIDs. Multiple ids are sent as repeated categoryIds parameters.
func (c *Client) ListUserPeaks(ctx context.Context, token, userID string, categoryIDs []string) ([]domain.Peak, error) {
	path := "/api/users/" + url.PathEscape(userID) + "/peaks"
	if len(categoryIDs) > 0 {
		path += "?" + url.Values{"categoryIds": categoryIDs}.Encode()
	}

	var peaks []domain.Peak
	if _, err := c.do(ctx, "list_peaks", http.MethodGet, path, token, nil, &peaks); err != nil {
		return nil, err
	}
	if peaks == nil {
		peaks = []domain.Peak{}
	}
	return peaks, nil
}

// GetPeak fetches one peak by id.
func (c *Client) GetPeak(ctx context.Context, token, id string) (domain.Peak, error) {
	var p domain.Peak
	if _, err := c.do(ctx, "get_peak", http.MethodGet, "/api/peaks/"+url.PathEscape(id), token, nil, &p); err != nil {
		return domain.Peak{}, err
	}
	return p, nil
}

// CreatePeak stores a new peak and returns the backend's copy.
func (c *Client) CreatePeak(ctx context.Context, token string, payload domain.PeakPayload) (domain.Peak, error) {
	var p domain.Peak
	if _, err := c.do(ctx, "create_peak", http.MethodPost, "/api/peaks", token, payload, &p); err != nil {
		return domain.Peak{}, err
	}
	return p, nil
}

// UpdatePeak replaces a peak's fields and returns the backend's copy.
func (c *Client) UpdatePeak(ctx context.Context, token, id string, payload domain.PeakPayload) (domain.Peak, error) {
	var p domain.Peak
	if _, err := c.do(ctx, "update_peak", http.MethodPut, "/api/peaks/"+url.PathEscape(id), token, payload, &p); err != nil {
		return domain.Peak{}, err
	}
	return p, nil
}

// DeletePeak removes a peak.
func (c *Client) DeletePeak(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, "delete_peak", http.MethodDelete, "/api/peaks/"+url.PathEscape(id), token, nil, nil)
	return err
}

// ListCategories returns every category known to the backend.
func (c *Client) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	var cats []domain.Category
	if _, err := c.do(ctx, "list_categories", http.MethodGet, "/api/categories", token, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (int, error) {
	start := time.Now()
	status, err := c.send(ctx, op, method, path, token, in, out)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if c.metrics != nil {
		c.metrics.BackendRequests.WithLabelValues(op, outcome).Inc()
		c.metrics.BackendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	c.logger.Debug("backend request", "operation", op, "status", status, "duration", time.Since(start))
	return status, err
}

func (c *Client) send(ctx context.Context, op, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return resp.StatusCode, nil
}
