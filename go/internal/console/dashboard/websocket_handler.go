package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/statesync"
)

// StatsProvider reports synchronizer counters for /info.
type StatsProvider interface {
	Stats() statesync.Stats
}

// WebSocketHandler serves the dashboard socket and its status endpoints.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	stats             StatsProvider
}

func NewWebSocketHandler(cm *ConnectionManager, stats StatsProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		stats:             stats,
	}
}

// HandleConsoleConnection upgrades a dashboard client.
func (h *WebSocketHandler) HandleConsoleConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		// Upgrade has already written the HTTP error response.
		log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleInfo returns synchronizer and connection statistics.
func (h *WebSocketHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info := struct {
		Service     string          `json:"service"`
		Sync        statesync.Stats `json:"sync"`
		Connections int             `json:"connections"`
	}{
		Service:     "starship-console",
		Sync:        h.stats.Stats(),
		Connections: h.connectionManager.GetConnectionStats()["total_connections"].(int),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		log.Error().Err(err).Msg("failed to write info response")
	}
}

func (h *WebSocketHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}

// RegisterRoutes registers the dashboard routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/console", h.HandleConsoleConnection)
	mux.HandleFunc("/info", h.HandleInfo)
	mux.HandleFunc("/health", h.HandleHealth)
}
