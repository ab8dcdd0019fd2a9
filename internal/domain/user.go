package domain

import (
	"context"
	"time"
)

// User is the read model for identity resolution. Registration and login are
// handled by the external credential service; this process only reads users to
// resolve attendee identities on event detail views.
// swagger:model User
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRepository defines read-only access to the user collection.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// ListByIDs returns the users for the given IDs. Missing IDs are skipped,
	// not errors: an attendee whose account was deleted simply drops out of
	// the resolved list.
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// TokenIssuer issues bearer tokens for a user. Used in tests and tooling; in
// production tokens come from the external credential service.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
