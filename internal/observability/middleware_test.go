package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func telemetryRouter(logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTelemetry("netssd-test", logger))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func TestRequestTelemetryTagsNodeAndRoute(t *testing.T) {
	var buf strings.Builder
	r := telemetryRouter(zerolog.New(&buf))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	out := buf.String()
	for _, want := range []string{`"node":"netssd-test"`, `"path":"/health"`, `"status":200`, "admin_request"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %s: %s", want, out)
		}
	}
}

func TestRequestTelemetryElevatesServerErrors(t *testing.T) {
	var buf strings.Builder
	r := telemetryRouter(zerolog.New(&buf))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if out := buf.String(); !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("5xx should log at error level: %s", out)
	}
}
