package rating

import "errors"

var (
	ErrDuplicatePlayer = errors.New("a player cannot appear twice in the same match")
	ErrTiedMatch       = errors.New("tied matches cannot be recorded")
	ErrInvalidPoints   = errors.New("points must be between 0 and 30")
	ErrPlayerNotFound  = errors.New("player not found")
)

// IsValidation reports whether err is a rejection of the submitted match itself.
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicatePlayer) ||
		errors.Is(err, ErrTiedMatch) ||
		errors.Is(err, ErrInvalidPoints)
}
