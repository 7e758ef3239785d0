package session

import (
	"fmt"
)

const (
	ReasonNotLaunched = "not launched"
	ReasonRejected    = "rejected by directory"
)

// AuthRejectedError means that the player must not be admitted to the server
type AuthRejectedError struct {
	Reason string
}

func (e *AuthRejectedError) Error() string {
	return "authentication rejected: " + e.Reason
}

// DirectoryUnavailableError wraps a communication failure with the identity directory.
// The player must be treated as unverified
type DirectoryUnavailableError struct {
	Err error
}

func (e *DirectoryUnavailableError) Error() string {
	return fmt.Sprintf("identity directory is unavailable: %v", e.Err)
}

func (e *DirectoryUnavailableError) Unwrap() error {
	return e.Err
}
