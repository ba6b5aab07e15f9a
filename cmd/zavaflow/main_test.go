package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAskPrintsRoutedAnswer(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"You get 20 days per year.","agent":"hr-agent","sources":[{"kb":"kb1-hr","title":"PTO Policy","url":"https://intranet/pto"}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "ask", "--backend-url", srv.URL, "What", "is", "the", "PTO", "policy?")
	require.NoError(t, err)
	assert.Equal(t, "What is the PTO policy?", got["message"])
	assert.NotEmpty(t, got["session_id"])

	assert.Contains(t, out, "ROUTE")
	assert.Contains(t, out, "Routed to hr-agent")
	assert.Contains(t, out, "hr-agent")
	assert.Contains(t, out, "20 days")
	assert.Contains(t, out, "PTO Policy (kb1-hr)")
	assert.Contains(t, out, "https://intranet/pto")
}

func TestAskWithoutTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Brand colors are teal and navy."}`))
	}))
	defer srv.Close()

	out, err := execute(t, "ask", "--backend-url", srv.URL, "--trace=false", "colors?")
	require.NoError(t, err)
	assert.NotContains(t, out, "ROUTE")
	assert.NotContains(t, out, "Sources:")
	assert.Contains(t, out, "teal")
}

func TestAskReportsBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := execute(t, "ask", "--backend-url", srv.URL, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	_, err := execute(t, "ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	_, err := execute(t, "catalog", "--backend-url", "ftp://nowhere")
	require.Error(t, err)
}

func TestCatalogListsEverything(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)
	for _, want := range []string{"orchestrator", "none (routing only)", "kb1-hr", "kb2-marketing", "kb3-products", "F1", "F3"} {
		assert.True(t, strings.Contains(out, want), "missing %q in catalog output", want)
	}
}
