package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "Test error", errors.New("boom"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Error)
}

func TestErrorResponse_NilError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "Not found", nil)

	assert.NotContains(t, w.Body.String(), `"error"`)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusBadGateway, map[string]string{"error": "API returned error with status 500"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"API returned error with status 500"}`, w.Body.String())
}

func TestText(t *testing.T) {
	w := httptest.NewRecorder()

	Text(w, http.StatusBadRequest, "Invalid card details.")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Invalid card details.", w.Body.String())
}

func BenchmarkErrorResponse(b *testing.B) {
	err := errors.New("boom")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		Error(w, http.StatusBadRequest, "Benchmark test", err)
	}
}
