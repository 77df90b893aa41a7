package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompressedRouter(payload string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewCompression(DefaultCompressionConfig()).Handler())
	router.GET("/data", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, payload)
	})
	return router
}

func TestCompressesLargeJSON(t *testing.T) {
	payload := `{"data":"` + strings.Repeat("x", 4096) + `"}`
	router := newCompressedRouter(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))
}

func TestSkipsSmallResponses(t *testing.T) {
	router := newCompressedRouter(`{"ok":true}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}

func TestSkipsClientsWithoutGzip(t *testing.T) {
	payload := strings.Repeat("y", 4096)
	router := newCompressedRouter(payload)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data", nil))

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, w.Body.String())
}

func TestStatsTrackRequests(t *testing.T) {
	cm := NewCompression(DefaultCompressionConfig())
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(cm.Handler())
	router.GET("/data", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, strings.Repeat("z", 2048))
	})

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/data", nil))

	stats := cm.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["compressed_requests"])
}
