package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandgate/internal/types"
)

func TestJSON_WritesStatusAndBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)

	JSON(rr, req, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rr.Body.String())
}

func TestJSON_MarshalFailureFallsBackTo500(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)

	// Channels cannot be marshalled.
	JSON(rr, req, http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
}

func TestError_AppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		code       types.ErrorCode
		wantStatus int
	}{
		{types.ErrCodeValidationMissingField, http.StatusBadRequest},
		{types.ErrCodeWebhookSignatureInvalid, http.StatusBadRequest},
		{types.ErrCodeFeatureNotAllowed, http.StatusForbidden},
		{types.ErrCodeNotFoundUser, http.StatusNotFound},
		{types.ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{types.ErrCodeUpstreamStripe, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)

		Error(rr, req, types.NewAppError(tt.code, "boom", nil))

		assert.Equal(t, tt.wantStatus, rr.Code, "code %s", tt.code)

		var resp APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, string(tt.code), resp.Error.Code)
	}
}

func TestError_WrappedAppErrorUnwrapped(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)

	inner := types.NewAppError(types.ErrCodeFeatureNotAllowed, "not allowed", nil)
	Error(rr, req, fmt.Errorf("handler: %w", inner))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestError_UnknownErrorIs500WithoutLeakingDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)

	Error(rr, req, errors.New("pq: connection refused on 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
}

func TestError_IncludesRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req_abc123"))

	Error(rr, req, types.NewAppError(types.ErrCodeValidationMissingField, "missing", nil))

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "req_abc123", resp.Error.RequestID)
}

func TestDecodeJSON_Valid(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name":"alice"}`))

	require.NoError(t, DecodeJSON(rr, req, &dst))
	assert.Equal(t, "alice", dst.Name)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{invalid}`},
		{"empty body", ``},
		{"type mismatch", `{"name":42}`},
		{"multiple values", `{"name":"a"}{"name":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name"`
			}
			rr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/test", strings.NewReader(tt.body))

			err := DecodeJSON(rr, req, &dst)
			require.Error(t, err)

			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
		})
	}
}

func TestDecodeJSON_OversizedBody(t *testing.T) {
	var dst struct {
		Blob string `json:"blob"`
	}
	big := `{"blob":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(big))

	err := DecodeJSON(rr, req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1MB")
}
