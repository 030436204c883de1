package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/daily-diet/apiserver/internal/store"
	"github.com/daily-diet/apiserver/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealServiceOwnershipIsolation(t *testing.T) {
	repo := newFakeMealRepository()
	service := NewMealService(repo, nil, nil, "")
	ownerA := uuid.New()
	ownerB := uuid.New()

	meal, err := service.Create(context.Background(), types.Meal{
		UserID:      ownerA,
		Name:        "Lunch",
		Description: "Salad",
		IsOnDiet:    true,
		MealDate:    time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), meal.ID, ownerB)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = service.Update(context.Background(), types.Meal{
		ID:          meal.ID,
		UserID:      ownerB,
		Name:        "Hijacked",
		Description: "Hijacked",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = service.Delete(context.Background(), meal.ID, ownerB)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The owner still sees the meal untouched.
	got, err := service.Get(context.Background(), meal.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Name)
}

func TestMealServiceDeleteAbsentIsNotFound(t *testing.T) {
	repo := newFakeMealRepository()
	service := NewMealService(repo, nil, nil, "")

	err := service.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMealServicePublishesEvents(t *testing.T) {
	repo := newFakeMealRepository()
	publisher := &fakePublisher{}
	service := NewMealService(repo, nil, publisher, "meal-events")
	owner := uuid.New()

	meal, err := service.Create(context.Background(), types.Meal{
		UserID:      owner,
		Name:        "Breakfast",
		Description: "Oats",
		IsOnDiet:    true,
		MealDate:    time.Now().UTC(),
	})
	require.NoError(t, err)

	meal.Name = "Late breakfast"
	_, err = service.Update(context.Background(), meal)
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), meal.ID, owner))

	require.Len(t, publisher.payloads, 3)
	assert.Equal(t, []string{"meal-events", "meal-events", "meal-events"}, publisher.channels)

	kinds := make([]string, 0, 3)
	for _, payload := range publisher.payloads {
		var event types.MealEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, meal.ID, event.MealID)
		assert.Equal(t, owner, event.UserID)
		kinds = append(kinds, event.Event)
	}
	assert.Equal(t, []string{types.MealEventCreated, types.MealEventUpdated, types.MealEventDeleted}, kinds)
}

func TestMealServiceNoEventOnFailedMutation(t *testing.T) {
	repo := newFakeMealRepository()
	publisher := &fakePublisher{}
	service := NewMealService(repo, nil, publisher, "meal-events")

	err := service.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, publisher.payloads)
}

func TestMealServicePhotosDisabled(t *testing.T) {
	repo := newFakeMealRepository()
	service := NewMealService(repo, nil, nil, "")

	err := service.AttachPhoto(context.Background(), uuid.New(), uuid.New(), "photo.jpg", nil, 0, "image/jpeg")
	assert.ErrorIs(t, err, ErrPhotosDisabled)

	_, err = service.OpenPhoto(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrPhotosDisabled)
}
