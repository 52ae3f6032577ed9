package glossary

import "errors"

// Compilation errors.
var (
	// ErrMalformedEntry is returned when an entry has neither a key nor text.
	ErrMalformedEntry = errors.New("glossary: entry has neither key nor text")

	// ErrBadFingerprint is returned when a fingerprint cannot be decoded.
	ErrBadFingerprint = errors.New("glossary: fingerprint must be 32 hex-encoded bytes")
)
