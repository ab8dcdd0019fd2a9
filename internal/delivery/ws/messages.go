package ws

// Client-to-server message types.
const (
	msgAuthenticate = "authenticate"
	msgJoinEvent    = "joinEvent"
	msgLeaveEvent   = "leaveEvent"
)

// Server-to-client message types.
const (
	msgEventUpdated = "eventUpdated"
	msgError        = "error"
)

// clientMessage is the envelope for every inbound message. Token is set on
// authenticate, EventID on joinEvent and leaveEvent.
type clientMessage struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	EventID string `json:"eventId,omitempty"`
}

type serverMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// eventUpdatedPayload is broadcast to every connection when an event's
// attendee set changes.
type eventUpdatedPayload struct {
	EventID       string `json:"eventId"`
	AttendeeCount int    `json:"attendeeCount"`
}

// errorPayload is sent to the connection that caused a failure, never
// broadcast.
type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(message string) serverMessage {
	return serverMessage{Type: msgError, Data: errorPayload{Message: message}}
}
