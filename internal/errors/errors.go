package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitflow/internal/logger"
)

// ValidationError is returned when user input is rejected before any state changes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when an operation targets an id that no longer exists.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// SyncFailure is returned when the sync adapter rejected or could not complete a write.
// The local optimistic change has already been reverted when a caller sees it.
type SyncFailure struct {
	Op  string
	Err error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("sync failed during %s: %v", e.Op, e.Err)
}

func (e *SyncFailure) Unwrap() error {
	return e.Err
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Sync wraps err as a SyncFailure for the named operation.
func Sync(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SyncFailure{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsSyncFailure reports whether err is or wraps a SyncFailure.
func IsSyncFailure(err error) bool {
	var target *SyncFailure
	return stderrors.As(err, &target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// Fatal logs an error, closes the log file and exits the program with exit
// code 1. Deferred calls in the caller do not run.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		_ = logger.Close()
		fmt.Fprintf(stderr, "%s\n", Format(err))
		exit(1)
	}
}
