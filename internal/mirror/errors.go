package mirror

import (
	"errors"
	"fmt"
)

// ErrNotSignedIn indicates a remote operation was attempted without a user.
var ErrNotSignedIn = errors.New("no signed-in user for mirror operation")

// ErrRateLimited indicates the mirror rate limit was exceeded.
var ErrRateLimited = errors.New("mirror rate limit exceeded")

// ServerError represents a 5xx error from the mirror service.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("mirror server error: HTTP %d", e.StatusCode)
}
