package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoundTrip(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": "You get **20 days** of PTO.",
			"agent": "hr-agent",
			"sources": [
				{"kb": "kb1-hr", "title": "Employee Handbook", "url": "https://example.test/handbook"},
				{"kb": "kb1-hr", "filepath": "policies/pto.md"}
			]
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL + "/")
	resp, err := client.Chat(context.Background(), ChatRequest{Message: "What is the PTO policy at Zava?", SessionID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, ChatRequest{Message: "What is the PTO policy at Zava?", SessionID: "s-1"}, got)
	assert.Equal(t, "hr-agent", resp.Agent)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, SourceRef{KnowledgeBaseID: "kb1-hr", Title: "Employee Handbook", URL: "https://example.test/handbook"}, resp.Sources[0])
	assert.Equal(t, "policies/pto.md", resp.Sources[1].Filepath)
}

func TestChatAcceptsLegacyStringSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Echo: hi","agent":"orchestrator","sources":["handbook.pdf"]}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "handbook.pdf", resp.Sources[0].Title)
	assert.Empty(t, resp.Sources[0].KnowledgeBaseID)
}

func TestChatWithoutAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":""}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Empty(t, resp.Agent)
	assert.Empty(t, resp.Sources)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Chat(context.Background(), ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatMalformedResponses(t *testing.T) {
	for name, body := range map[string]string{
		"not json":        `<html>oops</html>`,
		"missing message": `{"agent":"hr-agent"}`,
		"bad sources":     `{"message":"x","sources":[42]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "hi"})
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestChatStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream   exploded\n", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "hi"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "upstream exploded", statusErr.Body)
}

func TestChatStatusErrorKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("é", maxErrorBodySize+50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, body, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Chat(context.Background(), ChatRequest{Message: "hi"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, utf8.ValidString(statusErr.Body))
	assert.Equal(t, maxErrorBodySize, utf8.RuneCountInString(statusErr.Body))
	assert.True(t, strings.HasSuffix(statusErr.Body, "é..."))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "a b", compact(" a\n\tb ", 10))
	assert.Equal(t, "日本...", compact("日本語のテキスト", 5))
}

func TestChatHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL).Chat(ctx, ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","version":"0.1.0"}`))
	}))
	defer srv.Close()

	health, err := New(srv.URL, WithTimeout(time.Second)).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthResponse{Status: "healthy", Version: "0.1.0"}, health)
}
