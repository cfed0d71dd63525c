package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ephemera/internal/cms/cmstest"
	"github.com/ephemera/internal/handler"
	"github.com/ephemera/internal/imageurl"
	"github.com/ephemera/internal/metrics"
	"github.com/ephemera/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func setupTestRouter(t *testing.T, imageDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	views, err := view.New(view.Config{Images: imageurl.New(imageurl.Config{ProjectID: "p", Dataset: "d"})})
	if err != nil {
		t.Fatalf("failed to build views: %v", err)
	}
	return SetupRouter(handler.NewAPI(cmstest.New(), views, 0), views, imageDir)
}

func TestRequestIDIsGeneratedOrPropagated(t *testing.T) {
	r := setupTestRouter(t, "")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if len(rr.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("expected a generated uuid, got %q", rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "edge-1234")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) != "edge-1234" {
		t.Fatalf("expected request id to be propagated, got %q", rr.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) == "<script>" {
		t.Fatal("invalid request ids should be replaced")
	}
}

func TestMetricsCountRequests(t *testing.T) {
	r := setupTestRouter(t, "")
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/healthz", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/healthz", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to grow by one, got %v -> %v", before, after)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rr.Code)
	}
}

func TestServesEmbeddedStatic(t *testing.T) {
	r := setupTestRouter(t, "")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "--paper") {
		t.Fatalf("expected stylesheet, got %d", rr.Code)
	}
}

func TestSetupRouterServesLocalImages(t *testing.T) {
	imageDir := t.TempDir()
	fileName := filepath.Join("p", "d", "abc-1x1.png")
	fileContent := []byte("not really a png")
	if err := os.MkdirAll(filepath.Join(imageDir, "p", "d"), 0o755); err != nil {
		t.Fatalf("failed to create image dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(imageDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := setupTestRouter(t, imageDir)

	req := httptest.NewRequest(http.MethodGet, "/images/p/d/abc-1x1.png?w=320&fit=max", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}
