package domain

import "errors"

// Sentinel errors for Resource Client operations.
var (
	// ErrNetwork indicates the request never reached the API or no response came back.
	ErrNetwork = errors.New("api unreachable")

	// ErrServer indicates a 5xx status or a malformed response body.
	// HTTP Status: 502 Bad Gateway
	ErrServer = errors.New("api server error")

	// ErrValidation indicates the API rejected the submitted values (4xx).
	// HTTP Status: 422 Unprocessable Entity
	ErrValidation = errors.New("rejected by api")

	// ErrNotFound indicates the record vanished before update or delete.
	// HTTP Status: 404 Not Found
	ErrNotFound = errors.New("record not found")
)

// Kind returns the taxonomy sentinel err wraps, or nil when it wraps none.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrServer, ErrNetwork} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
