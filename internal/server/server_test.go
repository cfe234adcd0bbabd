package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hocordovaesquen/blushnominas/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()

	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestServer_RoutesAndStaticPage(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/status", "/api/v1/status", "/api/settings"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s status=%d body=%s", path, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "BLUSH") {
		t.Fatalf("index status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("asset status=%d", w.Code)
	}
}

func TestServer_CreatesDataLayout(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"blush.db", "exports", "inbox"} {
		if _, err := os.Stat(filepath.Join(s.DataDir(), name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestServer_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Commission.Mode = "tiered"

	if _, err := NewServer(cfg); err == nil {
		t.Fatalf("expected config validation error")
	}
}

func TestServer_BadRulesFile(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rules, []byte("product: [not, a, map]\n"), 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Data.DataDir = dir
	cfg.Commission.RulesPath = rules

	if _, err := NewServer(cfg); err == nil {
		t.Fatalf("expected rules error")
	}
}
