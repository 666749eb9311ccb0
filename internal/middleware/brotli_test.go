package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func newBrotliRouter(body string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli(), NoStore())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, body) })
	return r
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	body := strings.Repeat("answered ", 500)
	r := newBrotliRouter(body)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("Content-Encoding = %q, want br", got)
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(plain) != body {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(plain), len(body))
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestBrotliSkips(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
	}{
		{"small body", "ok", map[string]string{"Accept-Encoding": "br"}},
		{"client without br", strings.Repeat("x", 4096), map[string]string{"Accept-Encoding": "gzip"}},
		{"websocket upgrade", strings.Repeat("x", 4096), map[string]string{"Accept-Encoding": "br", "Upgrade": "websocket"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBrotliRouter(tt.body)
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Content-Encoding"); got != "" {
				t.Fatalf("Content-Encoding = %q, want none", got)
			}
			if w.Body.String() != tt.body {
				t.Errorf("body altered")
			}
		})
	}
}
