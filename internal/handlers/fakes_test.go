package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/daily-diet/apiserver/internal/services"
	"github.com/daily-diet/apiserver/internal/store"
	"github.com/daily-diet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const testSessionSecret = "test-session-secret"

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]types.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[uuid.UUID]types.User)}
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

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

// testEnv wires the handlers against in-memory repositories the way the
// server package wires them against postgres.
type testEnv struct {
	router    *chi.Mux
	userRepo  *fakeUserRepository
	mealRepo  *fakeMealRepository
	userSvc   *services.UserService
	mealSvc   *services.MealService
	metricSvc *services.MetricsService
}

func newTestEnv() *testEnv {
	userRepo := newFakeUserRepository()
	mealRepo := newFakeMealRepository()

	userService := services.NewUserService(userRepo)
	mealService := services.NewMealService(mealRepo, nil, nil, "")
	metricsService := services.NewMetricsService(mealRepo)

	gate := RequireSession(testSessionSecret, userService)
	userHandler := NewUserHandler(userService, testSessionSecret, time.Hour)

	router := chi.NewRouter()
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userHandler)
	})
	router.With(gate).Get("/me", userHandler.Me)
	router.Route("/meals", func(r chi.Router) {
		MealRouter(r, mealService, metricsService, gate)
	})

	return &testEnv{
		router:    router,
		userRepo:  userRepo,
		mealRepo:  mealRepo,
		userSvc:   userService,
		mealSvc:   mealService,
		metricSvc: metricsService,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
