package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/phish-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const maxErrorBody = 4096

var _ core.Gateway = (*Client)(nil)

// Client is an implementation of the Gateway interface over the backend's REST API
type Client struct {
	baseURL *url.URL
	// plain serves the endpoints that work without a session
	plain  *http.Client
	authed *http.Client
	logger *zap.Logger
}

type listResponse struct {
	Emails []core.MessageSummary `json:"emails"`
	Count  int                   `json:"count"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Analysis *core.AnalysisResult `json:"analysis"`
}

type authURLResponse struct {
	URL string `json:"url"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewClient creates a new backend client. Requests to protected endpoints carry the
// bearer token from tokens; timeout bounds every request.
func NewClient(baseURL string, tokens oauth2.TokenSource, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	// The token source is asked on every request so a new login takes effect at once
	authed := &http.Client{
		Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
		Timeout:   timeout,
	}

	return &Client{
		baseURL: u,
		plain:   &http.Client{Timeout: timeout},
		authed:  authed,
		logger:  logger,
	}, nil
}

// ListMessages fetches up to maxResults analyzed messages
func (c *Client) ListMessages(ctx context.Context, maxResults int) ([]core.MessageSummary, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(maxResults))

	var resp listResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/emails", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Emails == nil {
		return []core.MessageSummary{}, nil
	}
	return resp.Emails, nil
}

// GetMessage fetches the full message and its analysis
func (c *Client) GetMessage(ctx context.Context, id string) (*core.MessageDetail, error) {
	var detail core.MessageDetail
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/emails/"+url.PathEscape(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// AnalyzeText submits raw text for classification
func (c *Client) AnalyzeText(ctx context.Context, text string) (*core.AnalysisResult, error) {
	var resp analyzeResponse
	if err := c.do(ctx, c.authed, http.MethodPost, "/api/analyze", nil, analyzeRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	if resp.Analysis == nil {
		return nil, fmt.Errorf("%w: analyze response has no analysis", core.ErrRequestFailed)
	}
	return resp.Analysis, nil
}

// AuthURL returns the Google authorization URL the login flow redirects to
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var resp authURLResponse
	if err := c.do(ctx, c.plain, http.MethodGet, "/auth/google/login", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("%w: login response has no url", core.ErrRequestFailed)
	}
	return resp.URL, nil
}

// Health checks that the backend is up
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, c.plain, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("%w: backend status %q", core.ErrRequestFailed, resp.Status)
	}
	return nil
}

// do performs one request. Every failure, including a body that does not decode, is
// reported as core.ErrRequestFailed.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out interface{}) error {
	u, err := url.Parse(c.baseURL.String() + path)
	if err != nil {
		return fmt.Errorf("%w: invalid request path: %w", core.ErrRequestFailed, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request: %w", core.ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", core.ErrRequestFailed, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", core.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: status %d: %s",
			core.ErrRequestFailed, method, path, resp.StatusCode, errorDetail(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: malformed response: %w", core.ErrRequestFailed, method, path, err)
	}
	return nil
}

// errorDetail pulls FastAPI's {"detail": ...} message out of an error body
func errorDetail(body []byte) string {
	var e struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != nil {
		return fmt.Sprint(e.Detail)
	}
	return strings.TrimSpace(string(body))
}
