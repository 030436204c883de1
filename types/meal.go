package types

import (
	"time"

	"github.com/google/uuid"
)

// Meal represents one recorded eating event owned by a user.
type Meal struct {
	// ID is the unique identifier of the meal.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID is the identifier of the owning user. Immutable after creation;
	// every read and mutation is scoped to it.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Name is the human-readable name of the meal.
	Name string `json:"name" db:"name"`

	// Description is a free-text description of the meal.
	Description string `json:"description" db:"description"`

	// IsOnDiet classifies whether the meal conforms to the user's diet.
	IsOnDiet bool `json:"is_on_diet" db:"is_on_diet"`

	// MealDate is the caller-supplied time the meal occurred. It is
	// independent of insertion order; metrics are computed in MealDate
	// order, not creation order.
	MealDate time.Time `json:"meal_date" db:"meal_date"`

	// PhotoKey is the object storage key of an attached photo, if any.
	PhotoKey string `json:"photo_key,omitempty" db:"photo_key"`

	// CreatedAt is the timestamp at which the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the record.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
