package types

// MealMetrics aggregates a user's diet adherence over their meal history.
type MealMetrics struct {
	// Total is the number of meals the user has recorded.
	Total int `json:"total"`

	// MealsOnDiet is the number of meals flagged as on-diet.
	MealsOnDiet int `json:"meals_on_diet"`

	// MealsOffDiet is the number of meals flagged as off-diet.
	MealsOffDiet int `json:"meals_off_diet"`

	// BestOnDietStreak is the length of the longest run of consecutive
	// on-diet meals, taken in meal date order.
	BestOnDietStreak int `json:"best_on_diet_streak"`
}
