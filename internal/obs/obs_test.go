package obs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	l := Logger()
	orig := l.Writer()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	t.Cleanup(func() { l.SetOutput(orig) })
	return &buf
}

func TestErrorWritesJSONLine(t *testing.T) {
	buf := captureLog(t)
	Error("store failed", errors.New("boom"), map[string]any{"request_id": "r-1"})

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["level"] != "error" || entry["error"] != "boom" || entry["request_id"] != "r-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["ts"] == nil {
		t.Fatal("expected ts")
	}
}

func TestRequestLoggerEmitsStructuredEntry(t *testing.T) {
	buf := captureLog(t)
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusTeapot, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "method", "path", "status", "duration_ms"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing %s in %v", key, entry)
		}
	}
	if entry["status"].(float64) != http.StatusTeapot {
		t.Fatalf("unexpected status: %v", entry["status"])
	}
}

func TestInstrumentPassesThrough(t *testing.T) {
	Init()
	Init()
	e := echo.New()
	e.Use(Instrument())
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/items/:id",status="204"}`) {
		t.Fatalf("metrics missing route template label:\n%s", rec.Body.String())
	}
}
