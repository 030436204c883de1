package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daily-diet/apiserver/internal/services"
	"github.com/daily-diet/apiserver/internal/store"
	"github.com/daily-diet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxPhotoMemory = 8 << 20
	maxPhotoBytes  = 10 << 20
	formFieldPhoto = "photo"
)

// MealHandler provides HTTP handlers for the meal ledger and metrics.
type MealHandler struct {
	mealService    *services.MealService
	metricsService *services.MetricsService
}

// NewMealHandler constructs a handler with the provided services.
func NewMealHandler(mealService *services.MealService, metricsService *services.MetricsService) *MealHandler {
	return &MealHandler{
		mealService:    mealService,
		metricsService: metricsService,
	}
}

// MealRouter registers meal routes on the given router. Every route sits
// behind the access gate; handlers read the owner from request context.
func MealRouter(
	r chi.Router,
	mealService *services.MealService,
	metricsService *services.MetricsService,
	gate func(http.Handler) http.Handler,
) {
	handler := NewMealHandler(mealService, metricsService)

	r.Use(gate)
	r.Get("/", handler.ListMeals)
	r.Post("/", handler.CreateMeal)
	r.Get("/metrics", handler.GetMetrics)
	r.Route("/{mealID}", func(r chi.Router) {
		r.Get("/", handler.GetMeal)
		r.Patch("/", handler.UpdateMeal)
		r.Delete("/", handler.DeleteMeal)
		r.Post("/photo", handler.UploadPhoto)
		r.Get("/photo", handler.GetPhoto)
	})
}

func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	meals, err := h.mealService.List(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list meals")
		return
	}

	writeJSON(w, http.StatusOK, MealListResponse{Meals: meals})
}

func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMealID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meal, err := h.mealService.Get(r.Context(), id, owner)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "meal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch meal")
		return
	}

	writeJSON(w, http.StatusOK, MealResponse{Meal: meal})
}

func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := parseMealRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = h.mealService.Create(r.Context(), types.Meal{
		UserID:      owner,
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    req.IsOnDiet,
		MealDate:    req.MealDate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create meal")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMealID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parseMealRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = h.mealService.Update(r.Context(), types.Meal{
		ID:          id,
		UserID:      owner,
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    req.IsOnDiet,
		MealDate:    req.MealDate,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "meal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update meal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMealID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mealService.Delete(r.Context(), id, owner); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "meal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete meal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MealHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	metrics, err := h.metricsService.Metrics(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}

	writeJSON(w, http.StatusOK, MetricsResponse{Metrics: metrics})
}

func (h *MealHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMealID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxPhotoMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldPhoto]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one photo file is required")
		return
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read photo")
		return
	}
	data, err := readFileLimited(file, maxPhotoBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	err = h.mealService.AttachPhoto(r.Context(), id, owner, fileHeader.Filename, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusBadRequest, "meal not found")
		case errors.Is(err, services.ErrPhotosDisabled):
			writeError(w, http.StatusNotImplemented, "photo storage is not configured")
		default:
			writeError(w, http.StatusInternalServerError, "failed to store photo")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MealHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMealID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	photo, err := h.mealService.OpenPhoto(r.Context(), id, owner)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrNoPhoto):
			writeError(w, http.StatusBadRequest, "meal not found")
		case errors.Is(err, services.ErrPhotosDisabled):
			writeError(w, http.StatusNotImplemented, "photo storage is not configured")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch photo")
		}
		return
	}
	defer photo.Close()

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, photo)
}

// MealUpsertRequest is the parsed create/update payload. All fields are
// required; the on-diet flag accepts a JSON bool or a 0/1 number at the
// boundary and is normalized to bool before it reaches the ledger.
type MealUpsertRequest struct {
	Name        string
	Description string
	IsOnDiet    bool
	MealDate    time.Time
}

// MealListResponse is the list response payload.
type MealListResponse struct {
	Meals []types.Meal `json:"meals"`
}

// MealResponse is the single-meal response payload.
type MealResponse struct {
	Meal types.Meal `json:"meal"`
}

// MetricsResponse is the metrics response payload.
type MetricsResponse struct {
	Metrics types.MealMetrics `json:"metrics"`
}

type mealRequestBody struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsOnDiet    *BoolFlag `json:"is_on_diet"`
	MealDate    string    `json:"meal_date"`
}

func parseMealRequest(r *http.Request) (MealUpsertRequest, error) {
	var body mealRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return MealUpsertRequest{}, errors.New("invalid request")
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		return MealUpsertRequest{}, errors.New("name is required")
	}

	description := strings.TrimSpace(body.Description)
	if description == "" {
		return MealUpsertRequest{}, errors.New("description is required")
	}

	if body.IsOnDiet == nil {
		return MealUpsertRequest{}, errors.New("is_on_diet is required")
	}

	if strings.TrimSpace(body.MealDate) == "" {
		return MealUpsertRequest{}, errors.New("meal_date is required")
	}
	mealDate, err := time.Parse(time.RFC3339, strings.TrimSpace(body.MealDate))
	if err != nil {
		return MealUpsertRequest{}, errors.New("invalid meal date")
	}

	return MealUpsertRequest{
		Name:        name,
		Description: description,
		IsOnDiet:    bool(*body.IsOnDiet),
		MealDate:    mealDate.UTC(),
	}, nil
}

func parseMealID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "mealID")
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("invalid meal id")
	}
	return id, nil
}

// BoolFlag unmarshals a strict boolean-equivalent: JSON true/false or the
// 0/1 number encoding. Anything else is rejected.
type BoolFlag bool

func (f *BoolFlag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value: %s", data)
	}
	return nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
