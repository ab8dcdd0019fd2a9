package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

type fakeAttendance struct {
	count    int
	joinErr  error
	leaveErr error
	calls    int
}

func (f *fakeAttendance) Join(ctx context.Context, eventID, userID string) (int, error) {
	f.calls++
	if f.joinErr != nil {
		return 0, f.joinErr
	}
	return f.count, nil
}

func (f *fakeAttendance) Leave(ctx context.Context, eventID, userID string) (int, error) {
	f.calls++
	if f.leaveErr != nil {
		return 0, f.leaveErr
	}
	return f.count, nil
}

type fakeVerifier struct {
	userID string
	err    error
}

func (f *fakeVerifier) Verify(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func newTestHub(attendance domain.AttendanceService, verifier domain.TokenVerifier) *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(NewSessionRegistry(), attendance, verifier, logger, 5*time.Second)
}

func testClient(hub *Hub, id string) *Client {
	c := &Client{hub: hub, id: id, send: make(chan serverMessage, sendBuffer)}
	hub.register(c)
	return c
}

func drain(c *Client) []serverMessage {
	var msgs []serverMessage
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestHub_EventUpdated_broadcastsToEveryone(t *testing.T) {
	hub := newTestHub(&fakeAttendance{}, &fakeVerifier{})
	c1 := testClient(hub, "conn-1")
	c2 := testClient(hub, "conn-2")

	hub.EventUpdated("ev-1", 7)

	for _, c := range []*Client{c1, c2} {
		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, msgEventUpdated, msgs[0].Type)
		payload, ok := msgs[0].Data.(eventUpdatedPayload)
		require.True(t, ok)
		assert.Equal(t, "ev-1", payload.EventID)
		assert.Equal(t, 7, payload.AttendeeCount)
	}
}

func TestHub_authenticate(t *testing.T) {
	t.Run("valid token binds the connection", func(t *testing.T) {
		hub := newTestHub(&fakeAttendance{}, &fakeVerifier{userID: "user-1"})
		c := testClient(hub, "conn-1")

		hub.handleMessage(c, clientMessage{Type: msgAuthenticate, Token: "good"})

		userID, ok := hub.sessions.Lookup("conn-1")
		require.True(t, ok)
		assert.Equal(t, "user-1", userID)
		assert.Empty(t, drain(c), "no reply on success")
	})

	t.Run("invalid token is silently dropped", func(t *testing.T) {
		hub := newTestHub(&fakeAttendance{}, &fakeVerifier{err: errors.New("bad signature")})
		c := testClient(hub, "conn-1")

		hub.handleMessage(c, clientMessage{Type: msgAuthenticate, Token: "bad"})

		_, ok := hub.sessions.Lookup("conn-1")
		assert.False(t, ok)
		assert.Empty(t, drain(c), "no error unicast for a bad token")
	})
}

func TestHub_joinEvent(t *testing.T) {
	t.Run("unauthenticated gets a unicast error and no mutation", func(t *testing.T) {
		attendance := &fakeAttendance{}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		other := testClient(hub, "conn-2")

		hub.handleMessage(c, clientMessage{Type: msgJoinEvent, EventID: "ev-1"})

		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, msgError, msgs[0].Type)
		assert.Equal(t, errorPayload{Message: "not authenticated"}, msgs[0].Data)
		assert.Zero(t, attendance.calls)
		assert.Empty(t, drain(other), "errors are never broadcast")
	})

	t.Run("success broadcasts the new count", func(t *testing.T) {
		attendance := &fakeAttendance{count: 3}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		other := testClient(hub, "conn-2")
		hub.sessions.Bind("conn-1", "user-1")

		hub.handleMessage(c, clientMessage{Type: msgJoinEvent, EventID: "ev-1"})

		for _, cl := range []*Client{c, other} {
			msgs := drain(cl)
			require.Len(t, msgs, 1)
			assert.Equal(t, msgEventUpdated, msgs[0].Type)
			assert.Equal(t, eventUpdatedPayload{EventID: "ev-1", AttendeeCount: 3}, msgs[0].Data)
		}
	})

	t.Run("already joined gets a unicast error, no broadcast", func(t *testing.T) {
		attendance := &fakeAttendance{joinErr: domain.ErrAlreadyJoined}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		other := testClient(hub, "conn-2")
		hub.sessions.Bind("conn-1", "user-1")

		hub.handleMessage(c, clientMessage{Type: msgJoinEvent, EventID: "ev-1"})

		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, msgError, msgs[0].Type)
		assert.Empty(t, drain(other))
	})

	t.Run("missing event gets a unicast error", func(t *testing.T) {
		attendance := &fakeAttendance{joinErr: domain.ErrNotFound}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		hub.sessions.Bind("conn-1", "user-1")

		hub.handleMessage(c, clientMessage{Type: msgJoinEvent, EventID: "ev-gone"})

		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, errorPayload{Message: "event not found"}, msgs[0].Data)
	})
}

func TestHub_leaveEvent(t *testing.T) {
	t.Run("success broadcasts the new count", func(t *testing.T) {
		attendance := &fakeAttendance{count: 1}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		hub.sessions.Bind("conn-1", "user-1")

		hub.handleMessage(c, clientMessage{Type: msgLeaveEvent, EventID: "ev-1"})

		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, eventUpdatedPayload{EventID: "ev-1", AttendeeCount: 1}, msgs[0].Data)
	})

	t.Run("not joined gets a unicast error", func(t *testing.T) {
		attendance := &fakeAttendance{leaveErr: domain.ErrNotJoined}
		hub := newTestHub(attendance, &fakeVerifier{})
		c := testClient(hub, "conn-1")
		hub.sessions.Bind("conn-1", "user-1")

		hub.handleMessage(c, clientMessage{Type: msgLeaveEvent, EventID: "ev-1"})

		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, msgError, msgs[0].Type)
	})
}

func TestHub_unregister(t *testing.T) {
	hub := newTestHub(&fakeAttendance{}, &fakeVerifier{})
	c := testClient(hub, "conn-1")
	hub.sessions.Bind("conn-1", "user-1")

	hub.unregister(c)

	_, ok := hub.sessions.Lookup("conn-1")
	assert.False(t, ok, "binding dropped on disconnect")
	_, open := <-c.send
	assert.False(t, open, "send channel closed")

	// Unregistering twice is safe.
	hub.unregister(c)
}
