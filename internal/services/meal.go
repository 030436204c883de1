package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/daily-diet/apiserver/internal/storage"
	"github.com/daily-diet/apiserver/types"
	"github.com/google/uuid"
)

// MealRepository defines persistence operations for meals. Every call is
// scoped to the owning user.
type MealRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error)
	ListByOwnerByMealDate(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (types.Meal, error)
	Create(ctx context.Context, meal types.Meal) (types.Meal, error)
	Update(ctx context.Context, meal types.Meal) (types.Meal, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	SetPhotoKey(ctx context.Context, id, ownerID uuid.UUID, key string) error
}

// EventPublisher publishes meal events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// MealService encapsulates meal ledger use-cases. The ledger is the
// system of record; photos and events hang off successful mutations and
// are disabled when their backends are not configured.
type MealService struct {
	repo         MealRepository
	photos       *storage.Storage
	events       EventPublisher
	eventChannel string
}

func NewMealService(repo MealRepository, photos *storage.Storage, events EventPublisher, eventChannel string) *MealService {
	return &MealService{
		repo:         repo,
		photos:       photos,
		events:       events,
		eventChannel: eventChannel,
	}
}

func (s *MealService) List(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *MealService) Get(ctx context.Context, id, ownerID uuid.UUID) (types.Meal, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *MealService) Create(ctx context.Context, meal types.Meal) (types.Meal, error) {
	created, err := s.repo.Create(ctx, meal)
	if err != nil {
		return types.Meal{}, err
	}
	s.publishEvent(ctx, types.MealEventCreated, created.ID, created.UserID)
	return created, nil
}

func (s *MealService) Update(ctx context.Context, meal types.Meal) (types.Meal, error) {
	updated, err := s.repo.Update(ctx, meal)
	if err != nil {
		return types.Meal{}, err
	}
	s.publishEvent(ctx, types.MealEventUpdated, updated.ID, updated.UserID)
	return updated, nil
}

func (s *MealService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	var photoKey string
	if s.photos != nil {
		if meal, err := s.repo.Get(ctx, id, ownerID); err == nil {
			photoKey = meal.PhotoKey
		}
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	// Best-effort cleanup: an orphaned object must not fail the delete.
	if photoKey != "" {
		if err := s.photos.Delete(ctx, photoKey); err != nil {
			log.Printf("delete meal photo %s: %v", photoKey, err)
		}
	}

	s.publishEvent(ctx, types.MealEventDeleted, id, ownerID)
	return nil
}

// AttachPhoto stores the photo bytes under a meal-scoped key and records
// the key on the meal. Ownership is verified before the upload so a
// foreign meal never receives an object.
func (s *MealService) AttachPhoto(ctx context.Context, id, ownerID uuid.UUID, filename string, r io.Reader, size int64, contentType string) error {
	if s.photos == nil {
		return ErrPhotosDisabled
	}

	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return err
	}

	key := fmt.Sprintf("meals/%s/%s", id, path.Base(filename))
	if err := s.photos.Put(ctx, key, r, size, contentType); err != nil {
		return err
	}
	return s.repo.SetPhotoKey(ctx, id, ownerID, key)
}

// OpenPhoto opens a reader for the photo attached to the meal, if any.
func (s *MealService) OpenPhoto(ctx context.Context, id, ownerID uuid.UUID) (io.ReadCloser, error) {
	if s.photos == nil {
		return nil, ErrPhotosDisabled
	}

	meal, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if meal.PhotoKey == "" {
		return nil, ErrNoPhoto
	}
	return s.photos.Get(ctx, meal.PhotoKey)
}

// publishEvent is fire-and-forget: a broker failure must not fail the
// request whose mutation already committed.
func (s *MealService) publishEvent(ctx context.Context, event string, mealID, userID uuid.UUID) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(types.MealEvent{
		Event:      event,
		MealID:     mealID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("marshal meal event: %v", err)
		return
	}

	if _, err := s.events.Publish(ctx, s.eventChannel, payload, map[string]string{"event": event}); err != nil {
		log.Printf("publish meal event %s: %v", event, err)
	}
}
