package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusNotFound, "session not found")

	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "session not found", body.Error)
}

func TestRespondJSONKeepsMarkup(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondJSON(resp, http.StatusOK, map[string]string{"q": "<b>&</b>"})
	require.JSONEq(t, `{"q":"<b>&</b>"}`, resp.Body.String())
	require.Contains(t, resp.Body.String(), "<b>&</b>")
}

func TestSendSSEEvent(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)
	require.NoError(t, SendSSEEvent(resp, resp, "response", map[string]int{"step": 1}))

	require.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	require.Equal(t, "event: response\ndata: {\"step\":1}\n\n", resp.Body.String())
	require.True(t, resp.Flushed)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("client gone")
}

func TestSendSSEEventReportsWriteFailure(t *testing.T) {
	w := brokenWriter{httptest.NewRecorder()}
	require.Error(t, SendSSEEvent(w, w, "question", map[string]string{}))
}

func TestSendSSEEventRejectsUnencodable(t *testing.T) {
	resp := httptest.NewRecorder()
	require.Error(t, SendSSEEvent(resp, resp, "bad", make(chan int)))
	require.Empty(t, resp.Body.String())
}
