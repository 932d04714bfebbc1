package patient

import "errors"

var (
	ErrNameTooShort         = errors.New("name must be at least 2 characters")
	ErrInvalidAge           = errors.New("age must be at least 1")
	ErrInvalidWaterIntake   = errors.New("water intake cannot be negative")
	ErrInvalidBowelMovement = errors.New("bowel movement must be normal, constipated or loose")
	ErrInvalidPrakriti      = errors.New("unknown prakriti")
	ErrInvalidDosha         = errors.New("dosha must be vata, pitta or kapha")
	ErrInvalidStatus        = errors.New("status must be Active, Inactive or Follow-up")

	ErrPatientNotFound = errors.New("patient not found")
)
