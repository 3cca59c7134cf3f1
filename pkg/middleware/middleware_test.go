package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/radio/pkg/logger"
	"github.com/shashiranjanraj/radio/pkg/middleware"
	"github.com/shashiranjanraj/radio/pkg/reqid"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := logger.L
	logger.L = logger.New(&buf, "local", "debug")
	t.Cleanup(func() { logger.L = prev })
	return &buf
}

func TestRecovery_PanicBecomesBare500(t *testing.T) {
	logs := captureLogs(t)

	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x.js", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "boom")
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	captureLogs(t)

	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogger_AccessLineCarriesRequestID(t *testing.T) {
	logs := captureLogs(t)

	var inner string
	h := reqid.Middleware()(middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.WithCtx(r.Context()).Info("inside")
		inner = reqid.FromCtx(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/songs/a.mp3", nil)
	req.Header.Set(reqid.Header, "rid-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := logs.String()
	assert.Equal(t, "rid-123", inner)
	assert.Equal(t, 2, strings.Count(out, "request_id=rid-123"))
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=3")
	assert.Contains(t, out, "path=/songs/a.mp3")
}

func TestLogger_WriterUnwraps(t *testing.T) {
	captureLogs(t)

	rec := httptest.NewRecorder()
	h := middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, http.NewResponseController(w).Flush())
	}))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, rec.Flushed)
}
