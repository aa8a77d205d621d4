package fetch

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrBodyTooLarge indicates a response body exceeded the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")
)
