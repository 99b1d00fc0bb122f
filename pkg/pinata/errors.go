package pinata

import (
	"errors"
	"fmt"
)

var ErrCredentialsMissing = errors.New("pinata API keys not configured")

// UploadError is a non-2xx response from Pinata.
type UploadError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("pinata %s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}
