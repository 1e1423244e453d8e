package http

import (
	"log/slog"
	"net/http"

	gws "github.com/gorilla/websocket"

	"erpinsight/internal/websocket"
)

// WSHandler upgrades GET /ws connections and attaches them to the hub
// for run progress events.
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gws.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(hub *websocket.Hub, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub:    hub,
		logger: logger,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the same origin as the
			// bundled UI; cross-origin policy is enforced upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own response; log only.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			"error", err, "remote", r.RemoteAddr)
		return
	}
	websocket.ServeWS(h.hub, conn, h.logger)
}
