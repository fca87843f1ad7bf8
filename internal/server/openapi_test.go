package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleOpenAPI(t *testing.T) {
	rec := httptest.NewRecorder()
	handleOpenAPI()(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding document: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Errorf("openapi = %q, want 3.x", doc.OpenAPI)
	}

	ops := []struct{ path, method string }{
		{"/healthz", "get"},
		{"/api/experiences", "get"},
		{"/api/{slug}/join", "post"},
		{"/api/{slug}/state", "get"},
		{"/api/{slug}/events", "post"},
		{"/api/{slug}/stream", "get"},
		{"/api/{slug}/ws", "get"},
		{"/api/{slug}/theme", "get"},
		{"/api/{slug}/theme", "put"},
		{"/metrics", "get"},
	}
	for _, op := range ops {
		if _, ok := doc.Paths[op.path][op.method]; !ok {
			t.Errorf("missing %s %s", strings.ToUpper(op.method), op.path)
		}
	}
}

func TestHandleSwaggerUI(t *testing.T) {
	rec := httptest.NewRecorder()
	handleSwaggerUI().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Errorf("content-type = %q, want text/html", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, "/openapi.json") {
		t.Error("page does not reference /openapi.json")
	}
}
