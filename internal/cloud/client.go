// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud adapts OpenAI-compatible HTTP backends to the provider contract.
package cloud

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// Configuration constants for OpenAI-compatible APIs.
const (
	// DefaultTimeout is the default timeout for non-streaming API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps non-streaming response bodies.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// defaultRequestsPerMinute paces outbound requests per client.
	defaultRequestsPerMinute = 60
)

var (
	// Shared HTTP client with connection pooling for all non-streaming requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient has no timeout; streaming lifetime travels on the
	// request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// Error variables for common cloud API errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// APIError represents an error response from an OpenAI-compatible API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cloud API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("cloud API error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the request body for the chat/completions endpoint.
type ChatRequest struct {
	Model          string             `json:"model"`
	Messages       []provider.Message `json:"messages"`
	Stream         bool               `json:"stream"`
	Temperature    float64            `json:"temperature,omitempty"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat    `json:"response_format,omitempty"`
	StreamOptions  *StreamOptions     `json:"stream_options,omitempty"`
}

// ResponseFormat requests structured output from the model.
type ResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

// StreamOptions tunes streaming behavior.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"` // final chunk carries usage
}

// apiErrorResponse is the error envelope returned on non-2xx responses.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// modelsResponse is the response from the /models endpoint.
type modelsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ContextLength int    `json:"context_length"`
		Pricing       *struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a thread-safe wire client for one OpenAI-compatible endpoint.
// Authentication headers, URL shape, and catalog behavior come from the
// owning adapter.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	limiter    *rate.Limiter
	userAgent  string

	// extraHeaders are set on every request (OpenRouter attribution,
	// Azure api-key auth).
	extraHeaders map[string]string

	// bearerAuth controls whether the key travels as a Bearer token.
	// Azure sends it in the api-key header instead.
	bearerAuth bool
}

// NewClient creates a wire client for the given endpoint.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerMinute)/60, 5),
		userAgent:  "drillrun/0.1.0",
		bearerAuth: true,
	}
}

// WithHeader sets an extra header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	if c.extraHeaders == nil {
		c.extraHeaders = make(map[string]string)
	}
	c.extraHeaders[key] = value
	return c
}

// WithBearerAuth toggles Bearer token authentication.
func (c *Client) WithBearerAuth(enabled bool) *Client {
	c.bearerAuth = enabled
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit replaces the default request pacing.
func (c *Client) WithRateLimit(requestsPerMinute int) *Client {
	if requestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 5)
	}
	return c
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// KeyFingerprint returns a SHA-256 fingerprint of the API key for logging.
// The key itself never appears in diagnostics.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	if c.bearerAuth && c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}
}

// logRequest logs an API request without headers or body.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("cloud: %s %s (key=%s)", req.Method, req.URL.Path, c.KeyFingerprint())
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// ModelEntry is one row from a backend's /models endpoint.
type ModelEntry struct {
	ID            string
	Name          string
	ContextLength int
	// Per-token USD prices as reported by OpenRouter, already scaled
	// to per-1K for descriptor use.
	PromptPricePerK     float64
	CompletionPricePerK float64
}

// FetchModels retrieves the live model catalog from the /models endpoint.
func (c *Client) FetchModels(ctx context.Context) ([]ModelEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	c.logRequest(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}

	entries := make([]ModelEntry, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		entry := ModelEntry{
			ID:            m.ID,
			Name:          m.Name,
			ContextLength: m.ContextLength,
		}
		if m.Pricing != nil {
			entry.PromptPricePerK = perTokenToPerK(m.Pricing.Prompt)
			entry.CompletionPricePerK = perTokenToPerK(m.Pricing.Completion)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// perTokenToPerK converts a per-token USD price string to a per-1K float.
func perTokenToPerK(price string) float64 {
	var perToken float64
	if _, err := fmt.Sscanf(strings.TrimSpace(price), "%g", &perToken); err != nil {
		return 0
	}
	return perToken * 1000
}

// Ping probes reachability of the given URL within the availability window.
func (c *Client) Ping(ctx context.Context, url string) error {
	probeCtx, cancel := context.WithTimeout(ctx, provider.AvailabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthFailed
	}
	if resp.StatusCode >= 500 {
		return &APIError{Message: "endpoint unhealthy", Status: resp.StatusCode}
	}
	return nil
}

// =============================================================================
// ERROR HANDLING
// =============================================================================

// readResponse reads the response body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		wireErr := &APIError{
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}

		switch statusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, wireErr.Message)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %s", ErrInsufficientCredits, wireErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, wireErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, wireErr.Message)
		default:
			return wireErr
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			Message: string(body),
			Status:  statusCode,
		}
	}
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
