// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the matchup answer service.
//
// The service answers a question with a rule engine, a RAG pipeline or both
// and returns the answer together with the documents it cited.
package api

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

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/util"
)

const (
	// DefaultBaseURL is where the answer service listens in development.
	DefaultBaseURL = "http://localhost:8000"

	// ChatPath is the ask-question endpoint.
	ChatPath = "/chat"

	// HealthPath is the liveness endpoint.
	HealthPath = "/health"

	// SearchPath is the similar-document search endpoint.
	SearchPath = "/search"

	// DefaultSearchLimit is the number of documents the service returns by default.
	DefaultSearchLimit = 5

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024

	// healthTimeout bounds the health check only. Ask has no deadline.
	healthTimeout = 5 * time.Second

	maxErrorBody = 512
)

var (
	// ErrEmptyQuestion is returned when Ask is called with a blank question.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("answer service error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("answer service error (HTTP %d)", e.Status)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
	UseRAG   bool   `json:"use_rag"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer    string           `json:"answer"`
	Source    string           `json:"source"`
	Sources   []model.Citation `json:"sources,omitempty"`
	DebugInfo json.RawMessage  `json:"debug_info,omitempty"`
}

// Message maps the response onto an assistant message.
func (r *ChatResponse) Message() model.Message {
	msg := model.NewAssistantMessage(r.Answer, model.Source(r.Source), r.Sources)
	if !msg.Source.Known() {
		log.Debug().Str("source", r.Source).Msg("api: unknown answer source, shown as system")
	}
	if len(r.DebugInfo) > 0 && string(r.DebugInfo) != "null" {
		msg.DebugInfo = append(json.RawMessage(nil), r.DebugInfo...)
	}
	return msg
}

// HealthStatus is the body returned by GET /health.
type HealthStatus struct {
	Status            string `json:"status"`
	EngineInitialized bool   `json:"engine_initialized"`
}

// Healthy reports whether the service is up with its engine loaded.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy" && h.EngineInitialized
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one retrieved document with its vector-store metadata.
type SearchResult struct {
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Citation reads the season/pitcher/batter metadata of the document.
// Unreadable metadata yields a zero citation.
func (r SearchResult) Citation() model.Citation {
	var c model.Citation
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &c)
	}
	return c
}

// errorResponse is the FastAPI error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Settlement turns the outcome of one Ask into the single assistant message
// the conversation is settled with. Any error becomes the apology message.
func Settlement(resp *ChatResponse, err error) model.Message {
	if err != nil || resp == nil {
		return model.NewErrorMessage()
	}
	return resp.Message()
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the answer service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
// The underlying http.Client has no timeout; Ask makes one attempt and waits.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithHTTPClient replaces the HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask sends one question and decodes the answer. There is no retry.
func (c *Client) Ask(ctx context.Context, question string) (*ChatResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	body, err := json.Marshal(ChatRequest{
		Question: norm.NFC.String(question),
		UseRAG:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out ChatResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search asks for the k documents most similar to query. The service takes
// both as query parameters. k <= 0 uses DefaultSearchLimit.
func (c *Client) Search(ctx context.Context, query string, k int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuestion
	}
	if k <= 0 {
		k = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("query", norm.NFC.String(query))
	params.Set("k", strconv.Itoa(k))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Accept", "application/json")

	var out SearchResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health with a short deadline.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build health request")
	}
	req.Header.Set("Accept", "application/json")

	var out HealthStatus
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes req once and decodes a 2xx JSON body into out.
// Bodies are never logged.
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("api: request failed")
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api: response")

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}
	if len(data) > MaxResponseSize {
		return ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Detail != "" {
		apiErr.Detail = er.Detail
		return apiErr
	}

	apiErr.Detail = util.TruncateRunes(strings.TrimSpace(string(body)), maxErrorBody)
	return apiErr
}
