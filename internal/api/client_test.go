// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/kbochat-tui/internal/model"
)

// =============================================================================
// ASK TESTS
// =============================================================================

func TestClient_Ask_Success(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "x",
			"source": "rag",
			"sources": [{"season": 2024, "pitcher": "A", "batter": "B", "content_preview": "c"}],
			"debug_info": {"route": "rag"}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	resp, err := client.Ask(context.Background(), "2024년 김광현 vs 최정 매치업 알려줘")
	require.NoError(t, err)

	assert.Equal(t, "2024년 김광현 vs 최정 매치업 알려줘", got.Question)
	assert.True(t, got.UseRAG)

	msg := resp.Message()
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "x", msg.Content)
	assert.Equal(t, model.SourceRAG, msg.Source)
	assert.False(t, msg.IsError)
	require.Len(t, msg.Sources, 1)
	assert.Equal(t, model.Citation{Season: 2024, Pitcher: "A", Batter: "B", ContentPreview: "c"}, msg.Sources[0])
	assert.JSONEq(t, `{"route": "rag"}`, string(msg.DebugInfo))
}

func TestClient_Ask_MissingSourcesIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "rule answer", "source": "rule", "debug_info": null}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Ask(context.Background(), "q")
	require.NoError(t, err)

	msg := resp.Message()
	assert.False(t, msg.HasSources())
	assert.Nil(t, msg.DebugInfo)
}

func TestClient_Ask_CitationQuirksKeepAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"answer": "x",
			"source": "rag",
			"sources": [
				{"season": "2024", "pitcher": "A", "batter": "B", "content_preview": "c"},
				{"season": null, "pitcher": null, "batter": "D", "content_preview": "e"}
			]
		}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Ask(context.Background(), "q")
	require.NoError(t, err)

	msg := Settlement(resp, err)
	assert.False(t, msg.IsError)
	assert.Equal(t, "x", msg.Content)
	require.Len(t, msg.Sources, 2)
	assert.Equal(t, model.Citation{Season: 2024, Pitcher: "A", Batter: "B", ContentPreview: "c"}, msg.Sources[0])
	assert.Equal(t, model.Citation{Batter: "D", ContentPreview: "e"}, msg.Sources[1])
}

func TestClient_Ask_NormalizesHangul(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"answer": "ok", "source": "rule"}`))
	}))
	defer server.Close()

	// "최정" typed as conjoining jamo (NFD).
	decomposed := "\u110e\u116c\u110c\u1165\u11bc"
	_, err := NewClient(server.URL).Ask(context.Background(), decomposed)
	require.NoError(t, err)

	assert.Equal(t, "최정", got.Question)
}

func TestClient_Ask_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "fastapi detail",
			status: http.StatusInternalServerError,
			body:   `{"detail": "엔진이 초기화되지 않았습니다."}`,
			checkFn: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
				assert.Equal(t, "엔진이 초기화되지 않았습니다.", apiErr.Detail)
			},
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			checkFn: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "bad gateway", apiErr.Detail)
				assert.Contains(t, apiErr.Error(), "HTTP 502")
			},
		},
		{
			name:   "undecodable success body",
			status: http.StatusOK,
			body:   "<html>",
			checkFn: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode response body")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			resp, err := NewClient(server.URL).Ask(context.Background(), "q")
			require.Error(t, err)
			assert.Nil(t, resp)
			tc.checkFn(t, err)
		})
	}
}

func TestClient_Ask_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Ask_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	resp, err := NewClient(url).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestClient_Ask_EmptyQuestion(t *testing.T) {
	_, err := NewClient("").Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestClient_Ask_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "`))
		w.Write([]byte(strings.Repeat("a", MaxResponseSize)))
		w.Write([]byte(`"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Ask(context.Background(), "q")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://example.test:9000", NewClient(" http://example.test:9000/ ").BaseURL())
}

// =============================================================================
// SETTLEMENT TESTS
// =============================================================================

func TestSettlement(t *testing.T) {
	ok := Settlement(&ChatResponse{Answer: "x", Source: "hybrid"}, nil)
	assert.Equal(t, "x", ok.Content)
	assert.Equal(t, model.SourceHybrid, ok.Source)
	assert.False(t, ok.IsError)

	failed := Settlement(nil, &APIError{Status: 500})
	assert.True(t, failed.IsError)
	assert.Equal(t, model.SourceError, failed.Source)
	assert.Equal(t, model.ApologyText, failed.Content)
	assert.Equal(t, model.RoleAssistant, failed.Role)

	assert.True(t, Settlement(nil, nil).IsError)
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SearchPath, r.URL.Path)
		assert.Equal(t, "김광현", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("k"))
		w.Write([]byte(`{
			"query": "김광현",
			"count": 2,
			"results": [
				{"content": "김광현 vs 최정 2024", "metadata": {"season": "2024", "pitcher": "김광현", "batter": "최정", "pa": 12}},
				{"content": "no metadata"}
			]
		}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Search(context.Background(), "김광현", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, model.Citation{Season: 2024, Pitcher: "김광현", Batter: "최정"}, resp.Results[0].Citation())
	assert.Equal(t, model.Citation{}, resp.Results[1].Citation())
}

func TestClient_Search_DefaultLimitAndErrors(t *testing.T) {
	var k atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k.Store(r.URL.Query().Get("k"))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "검색 중 오류가 발생했습니다"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Search(context.Background(), "q", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "5", k.Load())

	_, err = NewClient(server.URL).Search(context.Background(), " ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, HealthPath, r.URL.Path)
		w.Write([]byte(`{"status": "healthy", "engine_initialized": true}`))
	}))
	defer server.Close()

	status, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy())

	var nilStatus *HealthStatus
	assert.False(t, nilStatus.Healthy())
	assert.False(t, (&HealthStatus{Status: "healthy"}).Healthy())
}
