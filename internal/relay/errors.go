package relay

import "errors"

var (
	// ErrMalformedEvent marks webhook payloads missing the content block,
	// group id, or transactions list. Rejected before admission so a bad
	// payload never poisons the dedup guard.
	ErrMalformedEvent = errors.New("malformed webhook event")

	// ErrAmbiguousSplitType is returned for splits whose type is neither
	// withdrawal nor deposit. Direction inversion is undefined for
	// transfers, so the split is skipped rather than guessed at.
	ErrAmbiguousSplitType = errors.New("split type has no defined inverse")
)
