package importer

import "errors"

var (
	// ErrConfig marks a missing or unreachable storage collaborator. It is
	// raised before any row is read.
	ErrConfig = errors.New("storage is not configured or unavailable")

	// ErrEmptyInput is returned for a document without a header line.
	ErrEmptyInput = errors.New("csv input is empty")

	// ErrInvalidHeader is returned when the header has empty or duplicate names.
	ErrInvalidHeader = errors.New("invalid csv header")

	// ErrUnknownKind is returned when no schema is registered for the kind.
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrPersistence marks a failed atomic commit.
	ErrPersistence = errors.New("commit failed")
)

// ErrorKind classifies a row-level failure.
type ErrorKind string

const (
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindTransform  ErrorKind = "transform"
)
