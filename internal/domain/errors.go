package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound = errors.New("Player not found")
	ErrInvalidAPIKey  = errors.New("Invalid API key")
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingFields  = errors.New("username and score are required")
	ErrInternalError  = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound)
}
