package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a status code or
// an error event without inspecting storage-engine text.
type Kind string

const (
	KindInvalidInput              Kind = "INVALID_INPUT"
	KindSelfRequest               Kind = "SELF_REQUEST"
	KindConversationAlreadyExists Kind = "CONVERSATION_ALREADY_EXISTS"
	KindCooldownActive            Kind = "COOLDOWN_ACTIVE"
	KindRequestAlreadyExists      Kind = "REQUEST_ALREADY_EXISTS"
	KindNotFound                  Kind = "NOT_FOUND"
	KindForbidden                 Kind = "FORBIDDEN"
	KindAlreadyResponded          Kind = "ALREADY_RESPONDED"
	KindUnauthenticated           Kind = "UNAUTHENTICATED"
	KindStorageConflict           Kind = "STORAGE_CONFLICT"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, never shown to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// report as StorageConflict at transaction boundaries and should be
// mapped to a 500 elsewhere.
func KindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
