package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_EchoesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-Id", "req-123")

	require.NoError(t, WriteError(rec, http.StatusNotFound, "PART_NOT_FOUND", "part not found", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "PART_NOT_FOUND", envelope.Code)
	assert.Equal(t, "part not found", envelope.Message)
	assert.Equal(t, "req-123", envelope.Meta["requestId"])
}

func TestWriteError_KeepsCallerMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-Id", "req-456")

	err := WriteError(rec, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", map[string]string{"Name": "required"})
	require.NoError(t, err)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "required", envelope.Meta["Name"])
	assert.Equal(t, "req-456", envelope.Meta["requestId"])
}

func TestWriteError_NoRequestIDOmitsMeta(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, http.StatusConflict, "ROLLBACK_CONSUMED", "gone", nil))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, hasMeta := raw["meta"]
	assert.False(t, hasMeta)
}
