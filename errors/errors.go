package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrInvalidName       = fmt.Errorf("invalid room name")
	ErrNameTooLong       = fmt.Errorf("%w: name too long", ErrInvalidName)
	ErrAlreadyExists     = fmt.Errorf("room already exists")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
	ErrUnknownRoom       = fmt.Errorf("unknown room")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrInvalidToken      = fmt.Errorf("invalid or expired token")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrUnknownEvent      = fmt.Errorf("unknown event")
	ErrUnknownBackend    = fmt.Errorf("unknown history backend")
)

// Reason turns a room error into the sentence shown to the requesting client.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, ErrNameTooLong):
		return "Room name is too long"
	case goerrors.Is(err, ErrInvalidName):
		return "Room name cannot be empty"
	case goerrors.Is(err, ErrAlreadyExists):
		return "Room already exists"
	case goerrors.Is(err, ErrResourceExhausted):
		return "Room limit reached"
	default:
		return "Room could not be created"
	}
}
