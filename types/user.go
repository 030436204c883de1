package types

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity in the system.
// All meals belong to exactly one user; the owning reference never changes.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Name is the user's display name, supplied at registration.
	Name string `json:"name" db:"name"`

	// Email is the user's contact address. Unique across the system.
	Email string `json:"email" db:"email"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
