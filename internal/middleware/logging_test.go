//go:build unit

package middleware

import (
	"bytes"
	"category-api/internal/config"
	"category-api/internal/logger"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/navlist", nil))

	out := buf.String()
	for _, want := range []string{`"path":"/api/navlist"`, `"status":418`, `"method":"GET"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got: %s", want, out)
		}
	}
}
