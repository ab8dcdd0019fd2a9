package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for event and attendance operations.
var (
	ErrNotFound      = errors.New("event not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyJoined = errors.New("already joined this event")
	ErrNotJoined     = errors.New("not joined this event")
)

// Event represents a gathering owned by one user, with a mutable attendee set.
// Attendees holds user IDs and has set semantics: a user ID appears at most once.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Attendees   []string  `json:"attendees"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(ownerID, name, description, category, location string, date time.Time, image string, tags []string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Category:    category,
		Location:    location,
		Date:        date,
		Image:       image,
		Tags:        tags,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventSummary is the list-view projection of an event. The attendee set is
// collapsed to a count so list responses never carry attendee identities.
// swagger:model EventSummary
type EventSummary struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	Date          time.Time `json:"date"`
	AttendeeCount int       `json:"attendees"`
	Image         string    `json:"image,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Summary returns the list-view projection of the event.
func (e *Event) Summary() *EventSummary {
	return &EventSummary{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		Name:          e.Name,
		Description:   e.Description,
		Category:      e.Category,
		Location:      e.Location,
		Date:          e.Date,
		AttendeeCount: len(e.Attendees),
		Image:         e.Image,
		Tags:          e.Tags,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// EventDetail is the detail-view projection of an event: the event itself
// plus its owner and attendee identities resolved to users. Owner is nil
// when the owning user no longer exists.
type EventDetail struct {
	Event     *Event
	Owner     *User
	Attendees []*User
}

// Timeframe values understood by EventFilter. Any non-empty value other than
// "past" selects upcoming events (date > now).
const TimeframePast = "past"

// EventFilter holds the optional list filters. Filters combine with AND
// semantics; Search matches name, description, or location case-insensitively.
type EventFilter struct {
	Category  string
	Timeframe string
	Search    string
}

// EventUpdate carries the fields of an update request. Nil pointers mean
// "field not present in the request"; present fields overwrite, including
// overwrites to the zero value.
type EventUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Location    *string
	Date        *time.Time
	Image       *string
	Tags        *[]string
}

// EventRepository defines the interface for event storage.
//
// AddAttendee and RemoveAttendee are the atomic conditional set mutations both
// write paths (HTTP and live channel) funnel through: AddAttendee appends the
// user only if absent and returns ErrAlreadyJoined otherwise; RemoveAttendee
// removes the user only if present and returns ErrNotJoined otherwise. Both
// return ErrNotFound for a missing event and the resulting attendee count on
// success.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
	AddAttendee(ctx context.Context, eventID, userID string) (int, error)
	RemoveAttendee(ctx context.Context, eventID, userID string) (int, error)
}

// EventService defines the event CRUD operations exposed over HTTP.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]*EventSummary, error)
	// GetEvent returns the event with its owner and attendee identities
	// resolved to users. Owner is nil when the owning user no longer exists.
	GetEvent(ctx context.Context, id string) (*EventDetail, error)
	UpdateEvent(ctx context.Context, id, requesterID string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id, requesterID string) error
}

// AttendanceService is the shared attendance mutation path. Both the HTTP
// join/leave endpoints and the live channel use it, so the duplicate-attendance
// rules hold regardless of entry path. Join and Leave return the resulting
// attendee count.
type AttendanceService interface {
	Join(ctx context.Context, eventID, userID string) (int, error)
	Leave(ctx context.Context, eventID, userID string) (int, error)
}
