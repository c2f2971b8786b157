package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zlnvch/notekeep/service"
)

func TestSendError_Mapping(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := &Handler{Logger: zap.New(core)}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"Invalid Input", &service.Error{Kind: service.ErrInvalidInput, Message: "bad"}, http.StatusBadRequest, `{"error":"bad"}`},
		{"Unauthorized", &service.Error{Kind: service.ErrUnauthorized, Message: "unauthorized"}, http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"Not Found", &service.Error{Kind: service.ErrNotFound, Message: "not found"}, http.StatusNotFound, `{"error":"not found"}`},
		{"Conflict", &service.Error{Kind: service.ErrConflict, Message: "taken"}, http.StatusConflict, `{"error":"taken"}`},
		{"Internal", fmt.Errorf("get note failed: %w", errors.New("dynamodb: throttled")), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.sendError(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}

	// Only the internal failure is logged, with its cause
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Contains(t, entry.ContextMap()["error"], "throttled")
}

func TestParseFilter(t *testing.T) {
	q := url.Values{}
	q.Set("query", "milk")
	q.Set("label", "home")
	q.Set("pinned", "true")
	q.Set("archived", "1")

	filter := parseFilter(q)
	assert.Equal(t, "milk", filter.Query)
	assert.Equal(t, "home", filter.Label)
	require.NotNil(t, filter.Pinned)
	assert.True(t, *filter.Pinned)
	assert.Nil(t, filter.Archived)

	filter = parseFilter(url.Values{"pinned": {"false"}})
	require.NotNil(t, filter.Pinned)
	assert.False(t, *filter.Pinned)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, parseInt("5"))
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, 0, parseInt("five"))
	assert.Equal(t, -1, parseInt("-1"))
}
