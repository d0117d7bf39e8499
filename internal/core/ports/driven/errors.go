package driven

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError is a terminal per-entity failure from the forge API, carrying
// the backend's status code and response payload.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote error: status %d", e.Status)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.Status, e.Body)
}

// IsGone reports whether err indicates a repository that is deleted,
// private, or otherwise permanently inaccessible. Such failures are
// recorded per-entity and never retried.
func IsGone(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	}
	return false
}
