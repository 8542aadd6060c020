package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the directory reports no match for a query or identifier
	ErrNotFound = errors.New("not found")
	// ErrTransport is returned when the call itself fails or returns a non-success status
	ErrTransport = errors.New("transport error")
)

// TransportMessage is the user-facing message for transport failures
const TransportMessage = "Unable to reach the movie directory. Please try again."

// DirectoryError carries the failure kind and the message to surface to the user
type DirectoryError struct {
	Kind    error
	Message string
	Err     error
}

func (e *DirectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Is matches the failure kind so callers can use errors.Is(err, ErrNotFound)
func (e *DirectoryError) Is(target error) bool {
	return target == e.Kind
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

func notFound(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return &DirectoryError{Kind: ErrNotFound, Message: message}
}

func transport(err error) error {
	return &DirectoryError{Kind: ErrTransport, Message: TransportMessage, Err: err}
}

// UserMessage returns the message to display for a directory failure
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var dirErr *DirectoryError
	if errors.As(err, &dirErr) {
		return dirErr.Message
	}
	return TransportMessage
}
