package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/reveal/internal/session"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthCheck is one entry of the /healthz response, keyed by dependency.
type HealthCheck struct {
	Status string `json:"status" enum:"ok,error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Reveal API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Drives birthday reveal sessions: scenes, lyrics, memories and the gift challenge.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]HealthCheck{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]HealthCheck{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/experiences
	listExp, _ := r.NewOperationContext(http.MethodGet, "/api/experiences")
	listExp.SetSummary("List experiences")
	listExp.SetDescription("Returns every loaded experience.")
	listExp.AddRespStructure([]ExperienceSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listExp)

	// POST /api/{slug}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/{slug}/join")
	postJoin.SetSummary("Join an experience")
	postJoin.SetDescription("Checks the passphrase when the experience has one and returns a viewer token.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postJoin)

	// GET /api/{slug}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/{slug}/state")
	getState.SetSummary("Get session state")
	getState.SetDescription("Returns the live session state. Requires Bearer token.")
	getState.AddRespStructure(session.State{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// POST /api/{slug}/events
	postEvent, _ := r.NewOperationContext(http.MethodPost, "/api/{slug}/events")
	postEvent.SetSummary("Dispatch event")
	postEvent.SetDescription("Applies a user or media event and returns the resulting state. Requires Bearer token.")
	postEvent.AddReqStructure(session.Event{})
	postEvent.AddRespStructure(session.State{}, openapi.WithHTTPStatus(http.StatusOK))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postEvent)

	// GET /api/{slug}/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/{slug}/stream")
	getStream.SetSummary("SSE signal stream")
	getStream.SetDescription("Server-Sent Events stream of session signals. Pass token as query parameter.")
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// GET /api/{slug}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/{slug}/ws")
	getWS.SetSummary("WebSocket session")
	getWS.SetDescription("Upgrades to a WebSocket that accepts events and pushes signals. Pass token as query parameter.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getWS)

	// GET /api/{slug}/theme
	getTheme, _ := r.NewOperationContext(http.MethodGet, "/api/{slug}/theme")
	getTheme.SetSummary("Get theme")
	getTheme.SetDescription("Returns the viewer's palette. Requires Bearer token.")
	getTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTheme.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getTheme)

	// PUT /api/{slug}/theme
	putTheme, _ := r.NewOperationContext(http.MethodPut, "/api/{slug}/theme")
	putTheme.SetSummary("Set theme")
	putTheme.SetDescription("Saves the viewer's palette. Requires Bearer token.")
	putTheme.AddReqStructure(ThemeRequest{})
	putTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putTheme.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putTheme.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(putTheme)

	// GET /metrics
	getMetrics, _ := r.NewOperationContext(http.MethodGet, "/metrics")
	getMetrics.SetSummary("Prometheus metrics")
	getMetrics.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getMetrics)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.Handler {
	return v5emb.New("Reveal API", "/openapi.json", "/docs")
}
