package dao

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store, the lifecycle engine and rescue. Callers
// detect them with errors.Is; the typed errors below carry the details.
var (
	// ErrValidation is returned when an identifier or field is malformed.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a referenced entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntry is returned when an insertion collides with an
	// existing key.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidStateTransition is returned for an illegal lifecycle edge.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAlreadySet is returned when a one-shot field is written twice.
	ErrAlreadySet = errors.New("already set")

	// ErrReservationConflict is returned when a host runtime is already
	// reserved by a different context.
	ErrReservationConflict = errors.New("reservation conflict")

	// ErrRescueCorruption is returned when a persisted record cannot be parsed.
	ErrRescueCorruption = errors.New("rescue corruption")

	// ErrRescueNotEmpty is returned when a new store is pointed at a rescue
	// directory that already holds entries.
	ErrRescueNotEmpty = errors.New("rescue directory not empty")

	ErrContextNotEmpty = errors.New("context not empty")
	ErrContextClosed   = errors.New("context closed")
	ErrRestartLimit    = errors.New("restart limit reached")

	// ErrPersistence is returned when the durable write of an accepted
	// mutation fails; the in-memory change is rolled back.
	ErrPersistence = errors.New("persistence failure")
)

// Error describes a failure concerning a single entry.
type Error struct {
	Kind   error
	Entity string
	Key    string
	Msg    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	text := e.Kind.Error()
	if e.Entity != "" {
		text = fmt.Sprintf("%s %s: %s", e.Entity, e.Key, text)
	}
	if e.Msg != "" {
		text += ": " + e.Msg
	}
	return text
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError creates an entry error.
func NewError(kind error, entity, key string, format string, args ...interface{}) *Error {
	ret := &Error{Kind: kind, Entity: entity, Key: key}
	if format != "" {
		ret.Msg = fmt.Sprintf(format, args...)
	}
	return ret
}

// NotFound is a shortcut for NewError(ErrNotFound, ...).
func NotFound(entity, key string) error {
	return NewError(ErrNotFound, entity, key, "")
}

// Duplicate is a shortcut for NewError(ErrDuplicateEntry, ...).
func Duplicate(entity, key string) error {
	return NewError(ErrDuplicateEntry, entity, key, "")
}

// Invalid is a shortcut for NewError(ErrValidation, ...) naming the field.
func Invalid(entity, key, field string, value interface{}) error {
	return NewError(ErrValidation, entity, key, "invalid %s: %q", field, fmt.Sprint(value))
}

// TransitionError reports an illegal lifecycle edge.
type TransitionError struct {
	Entity string
	Key    string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s -> %s", e.Entity, e.Key, ErrInvalidStateTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

// CorruptionError reports a rescue record that could not be recovered.
type CorruptionError struct {
	Path  string
	Field string
	Err   error
}

func (e *CorruptionError) Error() string {
	text := fmt.Sprintf("%s: %s", ErrRescueCorruption, e.Path)
	if e.Field != "" {
		text += ": missing " + e.Field
	}
	if e.Err != nil {
		text += ": " + e.Err.Error()
	}
	return text
}

// Unwrap exposes both the corruption kind and the underlying cause.
func (e *CorruptionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRescueCorruption}
	}
	return []error{ErrRescueCorruption, e.Err}
}
