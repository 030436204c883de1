package services

import (
	"context"

	"github.com/daily-diet/apiserver/types"
	"github.com/google/uuid"
)

// MetricsService computes diet adherence metrics over a user's meal
// history. It holds no state of its own; every call re-reads the store.
type MetricsService struct {
	repo MealRepository
}

func NewMetricsService(repo MealRepository) *MetricsService {
	return &MetricsService{repo: repo}
}

// Metrics fetches the user's meals ordered by meal date and folds them
// into the aggregate.
func (s *MetricsService) Metrics(ctx context.Context, ownerID uuid.UUID) (types.MealMetrics, error) {
	meals, err := s.repo.ListByOwnerByMealDate(ctx, ownerID)
	if err != nil {
		return types.MealMetrics{}, err
	}
	return ComputeMealMetrics(meals), nil
}

// ComputeMealMetrics folds an ordered meal history into totals and the
// best on-diet streak. The input must already be sorted ascending by
// meal date. A run that reaches the end of the history still counts.
func ComputeMealMetrics(meals []types.Meal) types.MealMetrics {
	metrics := types.MealMetrics{Total: len(meals)}

	streak := 0
	for _, meal := range meals {
		if !meal.IsOnDiet {
			streak = 0
			continue
		}
		metrics.MealsOnDiet++
		streak++
		if streak > metrics.BestOnDietStreak {
			metrics.BestOnDietStreak = streak
		}
	}

	metrics.MealsOffDiet = metrics.Total - metrics.MealsOnDiet
	return metrics
}
