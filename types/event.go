package types

import (
	"time"

	"github.com/google/uuid"
)

// Meal event kinds published to the event stream.
const (
	MealEventCreated = "meal.created"
	MealEventUpdated = "meal.updated"
	MealEventDeleted = "meal.deleted"
)

// MealEvent is the payload published after a successful ledger mutation.
type MealEvent struct {
	// Event is one of the MealEvent* kinds.
	Event string `json:"event"`

	// MealID identifies the affected meal.
	MealID uuid.UUID `json:"meal_id"`

	// UserID identifies the owner of the affected meal.
	UserID uuid.UUID `json:"user_id"`

	// OccurredAt is the time the mutation was applied.
	OccurredAt time.Time `json:"occurred_at"`
}
