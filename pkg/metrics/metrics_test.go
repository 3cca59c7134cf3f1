package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/radio/pkg/metrics"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/*", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "data")
	})

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/*", "200"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs/a.mp3", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs/b.mp3", nil))

	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/*", "200"))
	assert.Equal(t, before+2, after)
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(metrics.ResolveTotal.WithLabelValues("not_found"))
	metrics.RecordResolve("not_found")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ResolveTotal.WithLabelValues("not_found")))

	bytesBefore := testutil.ToFloat64(metrics.StreamedBytes.WithLabelValues("file"))
	metrics.RecordStream("file", 10)
	metrics.RecordStream("file", 0)
	assert.Equal(t, bytesBefore+10, testutil.ToFloat64(metrics.StreamedBytes.WithLabelValues("file")))

	abortsBefore := testutil.ToFloat64(metrics.StreamsAborted)
	metrics.RecordAbort()
	assert.Equal(t, abortsBefore+1, testutil.ToFloat64(metrics.StreamsAborted))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	metrics.RecordResolve("found")

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "radio_resource_resolve_total"))
}
