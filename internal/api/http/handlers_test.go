package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
)

func setupTestRouter(store *logstore.Store, metrics *monitoring.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewHandlers(store, metrics, nil)
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/logs", h.GetLogs)
	router.HEAD("/logs", h.GetLogs)
	router.GET("/logs/stats", h.GetLogStats)
	return router
}

func perform(router *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	router := setupTestRouter(logstore.New(), nil)

	w := perform(router, "GET", "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, serviceName, body["service"])
}

func TestHealth(t *testing.T) {
	store := logstore.New()
	sub := store.Subscribe()
	defer sub.Close()
	router := setupTestRouter(store, nil)

	w := perform(router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string `json:"status"`
		Store  struct {
			State       string `json:"state"`
			Subscribers int    `json:"subscribers"`
		} `json:"store"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "empty", body.Store.State)
	assert.Equal(t, 1, body.Store.Subscribers)
}

func TestGetLogs(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*logstore.Store)
		want  string
	}{
		{
			name:  "empty store",
			setup: func(*logstore.Store) {},
			want:  "",
		},
		{
			name: "lines joined by newline",
			setup: func(s *logstore.Store) {
				s.Append("foo")
				s.Append("bar")
			},
			want: "foo\nbar",
		},
		{
			name: "after clear",
			setup: func(s *logstore.Store) {
				s.Append("foo")
				s.Reset()
				s.Append("baz")
			},
			want: "baz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := logstore.New()
			tt.setup(store)
			router := setupTestRouter(store, nil)

			w := perform(router, "GET", "/logs", nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		})
	}
}

func TestGetLogsHeaders(t *testing.T) {
	store := logstore.New()
	store.Append("foo")
	store.Reset()
	store.Append("bar")
	router := setupTestRouter(store, nil)

	w := perform(router, "HEAD", "/logs", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Log-Cycle"))
	assert.Equal(t, "3", w.Header().Get("X-Log-Version"))
	assert.Empty(t, w.Body.String())
}

func TestGetLogsGzip(t *testing.T) {
	store := logstore.New()
	for i := 0; i < 200; i++ {
		store.Append("bash(1234): do_sys_open(\"/etc/ld.so.cache\") = 3")
	}
	router := setupTestRouter(store, nil)

	w := perform(router, "GET", "/logs", map[string]string{"Accept-Encoding": "gzip"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, store.Content(), string(body))
}

func TestGetLogStats(t *testing.T) {
	store := logstore.New()
	metrics := monitoring.NewMetrics()
	store.WithMetrics(metrics)
	store.Append("foo")
	store.Append("bar")
	router := setupTestRouter(store, metrics)

	w := perform(router, "GET", "/logs/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Store   logstore.Stats `json:"store"`
		Ingress struct {
			Appends int64 `json:"appends"`
		} `json:"ingress"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "accumulating", body.Store.State)
	assert.Equal(t, 2, body.Store.Lines)
	assert.Equal(t, 7, body.Store.Bytes)
	assert.Equal(t, int64(2), body.Ingress.Appends)
}

func TestGetLogStatsWithoutMetrics(t *testing.T) {
	router := setupTestRouter(logstore.New(), nil)

	w := perform(router, "GET", "/logs/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "ingress")
}
