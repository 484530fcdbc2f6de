package monitor

import "errors"

// Protocol failure kinds. Every entry point fails fast: when one of
// these is returned, no state was written.
var (
	// ErrNotFound is returned when the referenced record or alert was
	// never stored (id 0 is never assigned and always reports this).
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRequest is returned when a callback token matches no
	// registered request in that callback's namespace.
	ErrInvalidRequest = errors.New("unknown request token")

	// ErrAlreadyHandled is returned when a verified result was already
	// applied for the record; the first result is retained.
	ErrAlreadyHandled = errors.New("result already handled")

	// ErrInvalidProof is returned when the callback proof does not
	// verify under the oracle's key.
	ErrInvalidProof = errors.New("invalid oracle proof")

	// ErrUnauthorized is returned when the request policy denies the
	// caller.
	ErrUnauthorized = errors.New("caller not authorized")
)
