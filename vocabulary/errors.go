package vocabulary

import "errors"

// Loading errors.
var (
	// ErrUnknownKind is returned when an entry's type is not acronym or jargon.
	ErrUnknownKind = errors.New("unknown term type")

	// ErrNoFiles is returned when patterns match no vocabulary files.
	ErrNoFiles = errors.New("no vocabulary files matched")
)
