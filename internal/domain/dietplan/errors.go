package dietplan

import "errors"

// Domain errors for diet plan operations

var (
	// Entity validation errors
	ErrTitleRequired    = errors.New("diet plan title is required")
	ErrTitleTooLong     = errors.New("diet plan title must not exceed 200 characters")
	ErrNoDays           = errors.New("diet plan must have at least one day")
	ErrInvalidDayNumber = errors.New("day numbers start at 1")
	ErrDuplicateDay     = errors.New("each day number may appear only once")
	ErrDayWithoutMeals  = errors.New("every day needs at least one meal")
	ErrMealNameRequired = errors.New("meal name is required")
	ErrMealWithoutItems = errors.New("every meal needs at least one item")
	ErrItemNameRequired = errors.New("food item name is required")
	ErrPatientRequired  = errors.New("diet plan must belong to a patient")

	// State and ownership errors
	ErrNotOwner         = errors.New("only the practitioner who created the plan can change it")
	ErrNoLinkedAccount  = errors.New("patient has no portal account to send the plan to")
	ErrNotSent          = errors.New("diet plan has not been sent yet")
	ErrDietPlanNotFound = errors.New("diet plan not found")
)
