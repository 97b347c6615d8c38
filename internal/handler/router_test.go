package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/ai"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	interviewService "github.com/zhouzirui/z-interview/internal/service/interview"
)

type constCompleter string

func (c constCompleter) Complete(context.Context, ai.CompletionRequest) (string, error) {
	return string(c), nil
}

func TestRouterWithoutManager(t *testing.T) {
	router := NewRouter(persona.NewMemoryStore(persona.Seed()), nil, archive.NewMemoryStore())

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, health.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &body))
	require.Equal(t, false, body["ai"])

	run := httptest.NewRecorder()
	router.ServeHTTP(run, httptest.NewRequest(http.MethodPost, "/api/interviews", strings.NewReader(`{"questions":["Q1"]}`)))
	require.Equal(t, http.StatusServiceUnavailable, run.Code)

	list := httptest.NewRecorder()
	router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/interviews", nil))
	require.Equal(t, http.StatusOK, list.Code)
}

func TestRouterRoutesStreamBeforeSessionID(t *testing.T) {
	personas := persona.NewMemoryStore(persona.Seed())
	manager, err := interviewService.NewManager(personas, constCompleter("sure"), ai.Settings{})
	require.NoError(t, err)
	router := NewRouter(personas, manager, archive.NewMemoryStore())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/interviews/stream?question=Q1&participant=tom", nil))
	require.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Body.String(), "event: done")

	personasResp := httptest.NewRecorder()
	router.ServeHTTP(personasResp, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	require.Equal(t, http.StatusOK, personasResp.Code)
}
