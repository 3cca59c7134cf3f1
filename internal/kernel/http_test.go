package kernel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/radio/config"
	"github.com/shashiranjanraj/radio/internal/kernel"
	"github.com/shashiranjanraj/radio/pkg/reqid"
	"github.com/shashiranjanraj/radio/pkg/storage"
	"github.com/shashiranjanraj/radio/pkg/testkit"
)

type countingLogger struct {
	mu sync.Mutex
	n  int
}

func (l *countingLogger) Error(string, ...any) {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
}

func newKernel(t *testing.T, mutate func(*config.Config)) (http.Handler, *countingLogger) {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"home/index.html":       "<h1>home</h1>",
		"controller/index.html": "<h1>controller</h1>",
		"css/site.css":          "body{}",
		"audio/fx/click.wav":    "RIFF",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := config.Defaults()
	cfg.Dir.Public = root
	if mutate != nil {
		mutate(&cfg)
	}

	disks, err := storage.Connect(context.Background(), cfg)
	require.NoError(t, err)

	log := &countingLogger{}
	return kernel.NewHTTPKernel(cfg, disks, log).Handler(), log
}

func get(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestKernel_Routing(t *testing.T) {
	h, log := newKernel(t, nil)

	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		body        string
		contentType string
	}{
		{"root redirects", http.MethodGet, "/", http.StatusFound, "", ""},
		{"home page", http.MethodGet, "/home", http.StatusOK, "<h1>home</h1>", ""},
		{"controller page", http.MethodGet, "/controller", http.StatusOK, "<h1>controller</h1>", ""},
		{"css file", http.MethodGet, "/css/site.css", http.StatusOK, "body{}", "text/css"},
		{"audio file", http.MethodGet, "/audio/fx/click.wav", http.StatusOK, "RIFF", "audio/wav"},
		{"missing file", http.MethodGet, "/index.png", http.StatusNotFound, "", ""},
		{"traversal", http.MethodGet, "/../../etc/passwd", http.StatusNotFound, "", ""},
		{"post", http.MethodPost, "/unknown", http.StatusNotFound, "", ""},
		{"post metrics", http.MethodPost, "/metrics", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.method, tt.path)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
			assert.NotEmpty(t, rec.Header().Get(reqid.Header))
		})
	}

	assert.Zero(t, log.n, "no operator-visible failures expected")
}

func TestKernel_RedirectTarget(t *testing.T) {
	h, _ := newKernel(t, func(c *config.Config) { c.Location.Home = "/start" })

	rec := get(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/start", rec.Header().Get("Location"))
}

func TestKernel_Metrics(t *testing.T) {
	h, _ := newKernel(t, nil)

	get(h, http.MethodGet, "/home")
	rec := get(h, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "radio_http_requests_total")
}

func TestKernel_MetricsDisabledFallsThrough(t *testing.T) {
	h, _ := newKernel(t, func(c *config.Config) { c.Metrics.Enabled = false })

	rec := get(h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code, "served as a missing file")
}

func TestKernel_RouteListings(t *testing.T) {
	cfg := config.Defaults()
	cfg.Dir.Public = t.TempDir()
	disks, err := storage.Connect(context.Background(), cfg)
	require.NoError(t, err)

	k := kernel.NewHTTPKernel(cfg, disks, nil)
	assert.Len(t, k.Routes(), 2)
	assert.Len(t, k.Rules(), 5)
}

func TestKernel_Scenarios(t *testing.T) {
	cfg := config.Defaults()
	cfg.Dir.Public = "testdata/public"

	disks, err := storage.Connect(context.Background(), cfg)
	require.NoError(t, err)

	log := &countingLogger{}
	testkit.RunFile(t, kernel.NewHTTPKernel(cfg, disks, log).Handler(), "testdata/scenarios.json")
	assert.Zero(t, log.n)
}
