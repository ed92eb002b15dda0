package api

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/http/response"
)

func marshalMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "book-1"})
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, float64(response.Version), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "book-1"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", &APIError{
		Code:    "ALREADY_EXISTS",
		Message: "username taken",
		Details: map[string]string{"username": "alice"},
	})
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.NotContains(t, out, "data")

	body, ok := out["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_EXISTS", body["code"])
	assert.Equal(t, "username taken", body["message"])
	assert.Equal(t, map[string]any{"username": "alice"}, body["details"])
}

func TestEnvelopeTransformer_LeavesEnvelopesAlone(t *testing.T) {
	env := response.Ok("x")
	result, err := EnvelopeTransformer(nil, "200", env)
	require.NoError(t, err)
	assert.Equal(t, env, result)
}

func TestStatusToCode(t *testing.T) {
	assert.Equal(t, "VALIDATION", statusToCode(400))
	assert.Equal(t, "VALIDATION", statusToCode(422))
	assert.Equal(t, "UNAUTHORIZED", statusToCode(401))
	assert.Equal(t, "FORBIDDEN", statusToCode(403))
	assert.Equal(t, "NOT_FOUND", statusToCode(404))
	assert.Equal(t, "ALREADY_EXISTS", statusToCode(409))
	assert.Equal(t, "TOO_MANY_REQUESTS", statusToCode(429))
	assert.Equal(t, "INTERNAL", statusToCode(500))
}
