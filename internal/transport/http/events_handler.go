package http

import (
	"log/slog"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"

	"finanalytics/internal/infrastructure"
	"finanalytics/internal/websocket"
)

// EventsHandler upgrades subscribers onto the analysis run event stream
type EventsHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates the handler. Browser connections are accepted
// only from allowedOrigins; "*" allows any origin.
func NewEventsHandler(hub *websocket.Hub, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: infrastructure.WithComponent(logger, "events_handler"),
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and those from an allowed origin
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles GET /api/v1/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := websocket.ServeWS(h.hub, conn, infrastructure.GetTraceID(r.Context()), h.logger)
	h.logger.DebugContext(r.Context(), "Event stream subscriber connected", slog.String("client_id", client.ID()))
}
