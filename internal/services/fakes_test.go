package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daily-diet/apiserver/internal/store"
	"github.com/daily-diet/apiserver/types"
	"github.com/google/uuid"
)

// fakeMealRepository is an in-memory MealRepository for service tests.
type fakeMealRepository struct {
	mu    sync.Mutex
	meals map[uuid.UUID]types.Meal
	seq   int
	order map[uuid.UUID]int
}

func newFakeMealRepository() *fakeMealRepository {
	return &fakeMealRepository{
		meals: make(map[uuid.UUID]types.Meal),
		order: make(map[uuid.UUID]int),
	}
}

func (f *fakeMealRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meals := f.ownedLocked(ownerID)
	sort.Slice(meals, func(i, j int) bool {
		return f.order[meals[i].ID] < f.order[meals[j].ID]
	})
	return meals, nil
}

func (f *fakeMealRepository) ListByOwnerByMealDate(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meals := f.ownedLocked(ownerID)
	sort.Slice(meals, func(i, j int) bool {
		if meals[i].MealDate.Equal(meals[j].MealDate) {
			return f.order[meals[i].ID] < f.order[meals[j].ID]
		}
		return meals[i].MealDate.Before(meals[j].MealDate)
	})
	return meals, nil
}

func (f *fakeMealRepository) ownedLocked(ownerID uuid.UUID) []types.Meal {
	meals := make([]types.Meal, 0)
	for _, meal := range f.meals {
		if meal.UserID == ownerID {
			meals = append(meals, meal)
		}
	}
	return meals
}

func (f *fakeMealRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (types.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meal, ok := f.meals[id]
	if !ok || meal.UserID != ownerID {
		return types.Meal{}, store.ErrNotFound
	}
	return meal, nil
}

func (f *fakeMealRepository) Create(ctx context.Context, meal types.Meal) (types.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now
	f.meals[meal.ID] = meal
	f.seq++
	f.order[meal.ID] = f.seq
	return meal, nil
}

func (f *fakeMealRepository) Update(ctx context.Context, meal types.Meal) (types.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.meals[meal.ID]
	if !ok || existing.UserID != meal.UserID {
		return types.Meal{}, store.ErrNotFound
	}
	meal.CreatedAt = existing.CreatedAt
	meal.PhotoKey = existing.PhotoKey
	meal.UpdatedAt = time.Now().UTC()
	f.meals[meal.ID] = meal
	return meal, nil
}

func (f *fakeMealRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	meal, ok := f.meals[id]
	if !ok || meal.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(f.meals, id)
	return nil
}

func (f *fakeMealRepository) SetPhotoKey(ctx context.Context, id, ownerID uuid.UUID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	meal, ok := f.meals[id]
	if !ok || meal.UserID != ownerID {
		return store.ErrNotFound
	}
	meal.PhotoKey = key
	f.meals[id] = meal
	return nil
}

// fakePublisher records published messages.
type fakePublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, data)
	return "msg", nil
}
