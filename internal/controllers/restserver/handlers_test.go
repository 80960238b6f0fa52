package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/metrics"
	"github.com/brugmelding/brugwacht/pkg/config"
)

func testController(t *testing.T, snapshotPath string) *Controller {
	t.Helper()
	var wg sync.WaitGroup

	ctrl, err := NewController(context.Background(), &wg, config.RESTServerData{},
		nil, snapshotPath, metrics.New(), log.GetSugaredLogger())
	if err != nil {
		t.Fatal(err)
	}
	return ctrl
}

func TestGetHistoryRequiresBridgeID(t *testing.T) {
	ctrl := testController(t, "")

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without id, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] == "" {
		t.Error("expected a JSON error body")
	}
}

func TestGetHistoryWithoutStore(t *testing.T) {
	ctrl := testController(t, "")

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?id=NLVLB002100463", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a history store, got %d", rec.Code)
	}
}

func TestGetSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bruggen_status.json")
	if err := os.WriteFile(path, []byte(`[{"id":"NLVLB002100463"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	ctrl := testController(t, path)

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "NLVLB002100463") {
		t.Errorf("snapshot content not served: %s", rec.Body.String())
	}
}

func TestGetSnapshotBeforeFirstRun(t *testing.T) {
	ctrl := testController(t, filepath.Join(t.TempDir(), "bestaat_niet.json"))

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before the first snapshot, got %d", rec.Code)
	}
}

func TestGetHealth(t *testing.T) {
	ctrl := testController(t, "")

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health status %v", body["status"])
	}
	if body["history"] != false {
		t.Errorf("expected history=false without a store, got %v", body["history"])
	}
	if body["version"] == "" {
		t.Error("expected a version in the health response")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ctrl := testController(t, "")

	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "brugwacht") {
		t.Errorf("expected brugwacht metrics in exposition, got:\n%s", rec.Body.String())
	}
}

func TestDefaultListenAddress(t *testing.T) {
	ctrl := testController(t, "")
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("expected default listen address 0.0.0.0:8080, got %s", ctrl.Server.Addr)
	}
}

func TestQueryInt(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"limit=25", 25},
		{"limit=0", 10},
		{"limit=-3", 10},
		{"limit=veel", 10},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/history?"+tc.query, nil)
		if got := queryInt(req, "limit", 10); got != tc.want {
			t.Errorf("queryInt(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}
