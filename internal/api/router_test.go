package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/filecache/internal/cache"
	testutil "github.com/charlesng35/filecache/internal/database/testutil"
	"github.com/charlesng35/filecache/internal/monitoring"
	"github.com/charlesng35/filecache/internal/monitoring/checks"
)

func newTestRouter(t *testing.T) (*gin.Engine, *monitoring.Module, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db := testutil.MustOpenTestDB(t)
	folder := filepath.Join(dir, "files")
	engine, err := cache.New(db, "cache", folder)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("notes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, err := engine.Add(context.Background(), "notes", src, "notes.txt", cache.Copy); err != nil {
		t.Fatalf("add: %v", err)
	}

	mon := monitoring.NewModule(monitoring.Options{})
	mon.Health().RegisterReadiness(checks.Database(db, 0), checks.Folder(folder))

	router, err := NewRouter(Options{Cache: engine, Folder: engine.Folder(), Monitoring: mon})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router, mon, folder
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		if rec := get(router, path); rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}

	rec := get(router, "/health/ready")
	if !strings.Contains(rec.Body.String(), `"component":"cache_folder"`) {
		t.Fatalf("expected folder probe in readiness report, got %s", rec.Body.String())
	}
}

func TestRouter_ReadinessFailsWhenFolderMissing(t *testing.T) {
	router, _, folder := newTestRouter(t)

	if err := os.RemoveAll(folder); err != nil {
		t.Fatalf("remove folder: %v", err)
	}

	if rec := get(router, "/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for /health/ready, got %d", rec.Code)
	}
	if rec := get(router, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for /health, got %d", rec.Code)
	}
	if rec := get(router, "/health/live"); rec.Code != http.StatusOK {
		t.Fatalf("expected liveness to stay up, got %d", rec.Code)
	}
}

func TestRouter_EntriesEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := get(router, "/api/entries")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"file_name":"notes.txt"`) {
		t.Fatalf("unexpected /api/entries response %d: %s", rec.Code, rec.Body.String())
	}

	if rec := get(router, "/api/entries/notes"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for known key, got %d", rec.Code)
	}
	if rec := get(router, "/api/entries/unknown"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown key, got %d", rec.Code)
	}
	if rec := get(router, "/api/summary"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /api/summary, got %d", rec.Code)
	}
	if rec := get(router, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	if rec := get(router, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", rec.Code)
	}

	rec := get(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, metric := range []string{"filecache_admin_request_latency_seconds", "filecache_adds_total"} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %s in metrics output", metric)
		}
	}
}

func TestNewRouterRequiresCollaborators(t *testing.T) {
	if _, err := NewRouter(Options{Monitoring: monitoring.NewModule(monitoring.Options{})}); err == nil {
		t.Fatal("expected error without cache")
	}
}
