package store

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist (or is not
	// visible to the requesting owner).
	ErrNotFound = errors.New("not found")

	// ErrOwnershipViolation indicates a referenced entity exists but
	// belongs to a different owner.
	ErrOwnershipViolation = errors.New("ownership violation")

	// ErrLogAlreadyDistilled indicates the log already has an episode.
	ErrLogAlreadyDistilled = errors.New("log already has an episode")

	// ErrInvalidInput indicates a validation failure on user input.
	ErrInvalidInput = errors.New("invalid input")
)
