// Package errors defines the sentinel errors shared across the indexing
// pipeline and a typed AppError that carries corpus row/column context.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingColumn    = errors.New("missing required column")
	ErrSnapshotCorrupt  = errors.New("snapshot corrupt")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrNoSuggestion     = errors.New("no suggestion")
	ErrInternal         = errors.New("internal error")
)

// Exit codes returned by the CLI for each error class.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalidData = 2
	ExitPersistence = 3
)

// AppError wraps a sentinel with a human-readable message. Row is 1-based
// and counts the header line; zero means the error is not tied to a row.
type AppError struct {
	Err     error
	Message string
	Row     int
	Column  string
}

func (e *AppError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: %s (row %d, column %q)", e.Err.Error(), e.Message, e.Row, e.Column)
	case e.Column != "":
		return fmt.Sprintf("%s: %s (column %q)", e.Err.Error(), e.Message, e.Column)
	case e.Row > 0:
		return fmt.Sprintf("%s: %s (row %d)", e.Err.Error(), e.Message, e.Row)
	default:
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// AtRow attaches corpus position context to the error and returns it.
func (e *AppError) AtRow(row int, column string) *AppError {
	e.Row = row
	e.Column = column
	return e
}

// ExitCode maps an error to the process exit code used by cmd/indexer.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMissingColumn):
		return ExitInvalidData
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrSnapshotCorrupt):
		return ExitPersistence
	default:
		return ExitFailure
	}
}
