package domain

import "errors"

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleAlreadyHeld    = errors.New("user already holds the role")
	ErrNotAPromotion      = errors.New("user already holds a higher role")
	ErrRoleChanged        = errors.New("user role changed concurrently")

	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")

	ErrTaskNotFound      = errors.New("task not found")
	ErrSnippetNotFound   = errors.New("snippet not found")
	ErrLanguageNotFound  = errors.New("language not found")
	ErrLanguageExists    = errors.New("language already exists")
	ErrNoPendingRequests = errors.New("no pending requests")

	// ErrStoreUnavailable marks failures to reach a backing store. It must never
	// be reported as an authentication failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError carries a message that can be shown to the caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
