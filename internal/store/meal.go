package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/daily-diet/apiserver/types"
	"github.com/google/uuid"
)

// MealRepository handles persistence for meals. Every operation is scoped
// to an owning user; a meal owned by someone else is indistinguishable
// from one that does not exist.
type MealRepository struct {
	db *sql.DB
}

func NewMealRepository(db *sql.DB) *MealRepository {
	return &MealRepository{db: db}
}

const mealColumns = `id, user_id, name, description, is_on_diet, meal_date, COALESCE(photo_key, ''), created_at, updated_at`

func scanMeal(row interface{ Scan(dest ...any) error }) (types.Meal, error) {
	var meal types.Meal
	err := row.Scan(
		&meal.ID,
		&meal.UserID,
		&meal.Name,
		&meal.Description,
		&meal.IsOnDiet,
		&meal.MealDate,
		&meal.PhotoKey,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	return meal, err
}

// ListByOwner returns every meal owned by ownerID in insertion order.
func (r *MealRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error) {
	const query = `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE user_id = $1
		ORDER BY created_at`
	return r.list(ctx, query, ownerID)
}

// ListByOwnerByMealDate returns every meal owned by ownerID ordered
// ascending by meal date, with creation time breaking ties. This is the
// ordering the metrics computation depends on.
func (r *MealRepository) ListByOwnerByMealDate(ctx context.Context, ownerID uuid.UUID) ([]types.Meal, error) {
	const query = `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE user_id = $1
		ORDER BY meal_date, created_at`
	return r.list(ctx, query, ownerID)
}

func (r *MealRepository) list(ctx context.Context, query string, ownerID uuid.UUID) ([]types.Meal, error) {
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]types.Meal, 0)
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

// Get returns the meal with the given id iff it is owned by ownerID.
func (r *MealRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (types.Meal, error) {
	const query = `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE id = $1 AND user_id = $2`
	meal, err := scanMeal(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Meal{}, ErrNotFound
		}
		return types.Meal{}, err
	}
	return meal, nil
}

func (r *MealRepository) Create(ctx context.Context, meal types.Meal) (types.Meal, error) {
	now := time.Now().UTC()
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	meal.CreatedAt = now
	meal.UpdatedAt = now

	const query = `
		INSERT INTO meals (id, user_id, name, description, is_on_diet, meal_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Description,
		meal.IsOnDiet,
		meal.MealDate,
		meal.CreatedAt,
		meal.UpdatedAt,
	); err != nil {
		return types.Meal{}, err
	}
	return meal, nil
}

// Update applies the full field set in a single conditional statement
// scoped to (id, owner). Zero rows affected means the meal is gone or
// foreign, and surfaces as ErrNotFound rather than silent success.
func (r *MealRepository) Update(ctx context.Context, meal types.Meal) (types.Meal, error) {
	meal.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE meals
		SET name = $1,
			description = $2,
			is_on_diet = $3,
			meal_date = $4,
			updated_at = $5
		WHERE id = $6 AND user_id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		meal.Name,
		meal.Description,
		meal.IsOnDiet,
		meal.MealDate,
		meal.UpdatedAt,
		meal.ID,
		meal.UserID,
	)
	if err != nil {
		return types.Meal{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Meal{}, err
	}
	if affected == 0 {
		return types.Meal{}, ErrNotFound
	}
	return meal, nil
}

func (r *MealRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const query = `DELETE FROM meals WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPhotoKey records the object storage key of an attached photo,
// conditionally on ownership like every other mutation.
func (r *MealRepository) SetPhotoKey(ctx context.Context, id, ownerID uuid.UUID, key string) error {
	const query = `
		UPDATE meals
		SET photo_key = $1,
			updated_at = $2
		WHERE id = $3 AND user_id = $4`
	result, err := r.db.ExecContext(ctx, query, key, time.Now().UTC(), id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
