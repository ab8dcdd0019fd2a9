package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

// Hub owns the set of live connections and routes attendance traffic between
// them. It is the realtime counterpart of the join/leave HTTP endpoints and
// shares their service so both paths enforce the same membership rules.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	sessions   *SessionRegistry
	attendance domain.AttendanceService
	verifier   domain.TokenVerifier
	logger     *slog.Logger
	opTimeout  time.Duration
}

func NewHub(sessions *SessionRegistry, attendance domain.AttendanceService, verifier domain.TokenVerifier, logger *slog.Logger, opTimeout time.Duration) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		sessions:   sessions,
		attendance: attendance,
		verifier:   verifier,
		logger:     logger,
		opTimeout:  opTimeout,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.sessions.Unbind(c.id)
}

// EventUpdated fans an attendee-count change out to every open connection.
// Only the channel write path triggers it; the HTTP join/leave endpoints
// deliberately do not. Every connection receives the update,
// authenticated or not.
func (h *Hub) EventUpdated(eventID string, attendeeCount int) {
	msg := serverMessage{
		Type: msgEventUpdated,
		Data: eventUpdatedPayload{EventID: eventID, AttendeeCount: attendeeCount},
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(msg)
	}
}

func (h *Hub) handleMessage(c *Client, msg clientMessage) {
	switch msg.Type {
	case msgAuthenticate:
		h.authenticate(c, msg.Token)
	case msgJoinEvent:
		h.changeAttendance(c, msg.EventID, h.attendance.Join)
	case msgLeaveEvent:
		h.changeAttendance(c, msg.EventID, h.attendance.Leave)
	default:
		h.logger.Debug("unknown message type", "type", msg.Type, "conn_id", c.id)
	}
}

// authenticate binds the connection to the token's user. A bad token is
// logged and otherwise ignored; the client gets no reply either way.
func (h *Hub) authenticate(c *Client, token string) {
	userID, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Warn("websocket authentication failed", "conn_id", c.id, "err", err)
		return
	}
	h.sessions.Bind(c.id, userID)
	h.logger.Info("websocket authenticated", "conn_id", c.id, "user_id", userID)
}

func (h *Hub) changeAttendance(c *Client, eventID string, op func(ctx context.Context, eventID, userID string) (int, error)) {
	userID, ok := h.sessions.Lookup(c.id)
	if !ok {
		c.enqueue(errorMessage("not authenticated"))
		return
	}
	if eventID == "" {
		c.enqueue(errorMessage("missing eventId"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opTimeout)
	defer cancel()
	count, err := op(ctx, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.enqueue(errorMessage("event not found"))
		case errors.Is(err, domain.ErrAlreadyJoined):
			c.enqueue(errorMessage(domain.ErrAlreadyJoined.Error()))
		case errors.Is(err, domain.ErrNotJoined):
			c.enqueue(errorMessage(domain.ErrNotJoined.Error()))
		default:
			h.logger.Error("attendance change failed", "conn_id", c.id, "event_id", eventID, "err", err)
			c.enqueue(errorMessage("could not update attendance"))
		}
		return
	}
	h.EventUpdated(eventID, count)
}
