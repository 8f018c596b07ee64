package generate

import "errors"

var (
	// ErrInputTooShort indicates the resolved biography text is below the
	// minimum length for a model call.
	ErrInputTooShort = errors.New("biography text too short")

	// ErrInvalidInputKind indicates an unrecognized inputKind value.
	ErrInvalidInputKind = errors.New("invalid input kind")
)
