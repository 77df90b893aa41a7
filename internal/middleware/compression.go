// Package middleware holds HTTP middleware shared across routes. Analysis
// responses are large JSON documents, so gzip pays for itself quickly.
package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize      int      // minimum response size to compress (bytes)
	Level        int      // gzip compression level (1-9)
	ContentTypes []string // content types worth compressing
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
		},
	}
}

// Compression provides gzip compression with pooled writers
type Compression struct {
	config CompressionConfig
	pool   sync.Pool

	mu                 sync.Mutex
	totalRequests      int64
	compressedRequests int64
}

func NewCompression(config CompressionConfig) *Compression {
	if config.MinSize <= 0 {
		config.MinSize = 1024
	}
	level := config.Level
	if level < gzip.HuffmanOnly || level > gzip.BestCompression || level == 0 {
		level = gzip.DefaultCompression
	}

	return &Compression{
		config: config,
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler returns the gin middleware
func (cm *Compression) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			cm.record(false)
			return
		}

		writer := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			middleware:     cm,
		}
		c.Writer = writer
		c.Next()
		writer.close()

		cm.record(writer.compressed)
	}
}

func (cm *Compression) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

func (cm *Compression) record(compressed bool) {
	cm.mu.Lock()
	cm.totalRequests++
	if compressed {
		cm.compressedRequests++
	}
	cm.mu.Unlock()
}

// GetStats returns compression statistics
func (cm *Compression) GetStats() map[string]interface{} {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return map[string]interface{}{
		"total_requests":      cm.totalRequests,
		"compressed_requests": cm.compressedRequests,
		"min_size_bytes":      cm.config.MinSize,
	}
}

// gzipResponseWriter buffers the decision to compress until the first write
// so small responses pass through untouched
type gzipResponseWriter struct {
	gin.ResponseWriter
	middleware *Compression
	gz         *gzip.Writer
	decided    bool
	compressed bool
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if len(data) >= w.middleware.config.MinSize &&
			w.middleware.shouldCompress(w.Header().Get("Content-Type")) {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")
			w.gz = w.middleware.pool.Get().(*gzip.Writer)
			w.gz.Reset(w.ResponseWriter)
			w.compressed = true
		}
	}

	if w.gz != nil {
		return w.gz.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) close() {
	if w.gz != nil {
		w.gz.Close()
		w.middleware.pool.Put(w.gz)
		w.gz = nil
	}
}
