package api

import "errors"

// Sentinel errors shared by services and mapped to status codes by handlers.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
)

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`                           // Indicates if the operation was successful.
	Message string `json:"message,omitempty" example:"Operation successful"` // Optional success message.
	Error   string `json:"error,omitempty" example:"Resource not found"`     // Optional error message.
}

// Jaipur, used whenever the caller does not send a location. The browse
// modes default to a point further east.
const (
	DefaultLat       = 26.9124
	DefaultLon       = 75.7873
	DefaultBrowseLon = 75.9231
)
