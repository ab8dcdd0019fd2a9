package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests on the live attendance endpoint into hub
// connections.
type Handler struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin browser clients are expected; origin policy is
			// enforced by the CORS layer on the REST surface.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve godoc
// @Summary Live attendance channel
// @Description Upgrades to a websocket. Clients send authenticate, joinEvent, and leaveEvent messages and receive eventUpdated broadcasts with the current attendee count.
// @Tags live
// @Router /ws [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "err", err)
		return
	}
	client := newClient(h.hub, conn, uuid.NewString())
	h.hub.register(client)
	h.logger.Info("websocket connected", "conn_id", client.id, "remote_addr", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}
