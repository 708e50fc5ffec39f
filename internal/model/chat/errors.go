package chat

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrConversationNotFound = fmt.Errorf("conversation %w", ErrNotFound)
	ErrInvalidRole          = errors.New("invalid message role")
)

// StorageError reports a failed persistence operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ResponderError reports a failed reply generation. The user message written
// before the responder ran is kept.
type ResponderError struct {
	Provider string
	Err      error
}

func (e *ResponderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("responder: %v", e.Err)
	}
	return fmt.Sprintf("responder %s: %v", e.Provider, e.Err)
}

func (e *ResponderError) Unwrap() error {
	return e.Err
}

// IsResponderError reports whether err carries a *ResponderError.
func IsResponderError(err error) bool {
	var re *ResponderError
	return errors.As(err, &re)
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
