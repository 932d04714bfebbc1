package dietplan

import (
	"sort"
	"strings"
)

// FoodItem is one dish or ingredient served in a meal
type FoodItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the item
func (f FoodItem) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrItemNameRequired
	}
	return nil
}

// Meal is a named meal of the day (Breakfast, Lunch, ...)
type Meal struct {
	Name  string     `json:"name"`
	Items []FoodItem `json:"items"`
}

// Validate validates the meal and its items
func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMealNameRequired
	}
	if len(m.Items) == 0 {
		return ErrMealWithoutItems
	}
	for _, item := range m.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Day is one numbered day of a plan
type Day struct {
	Day   int    `json:"day"`
	Meals []Meal `json:"meals"`
}

// Validate validates the day and its meals
func (d Day) Validate() error {
	if d.Day < 1 {
		return ErrInvalidDayNumber
	}
	if len(d.Meals) == 0 {
		return ErrDayWithoutMeals
	}
	for _, meal := range d.Meals {
		if err := meal.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDays checks a list of days the same way a plan does
func ValidateDays(days []Day) error {
	_, err := validateDays(days)
	return err
}

// validateDays checks each day and the uniqueness of day numbers, and returns
// the days ordered by number.
func validateDays(days []Day) ([]Day, error) {
	if len(days) == 0 {
		return nil, ErrNoDays
	}

	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.Day]; dup {
			return nil, ErrDuplicateDay
		}
		seen[d.Day] = struct{}{}
	}

	ordered := make([]Day, len(days))
	copy(ordered, days)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Day < ordered[j].Day })
	return ordered, nil
}
