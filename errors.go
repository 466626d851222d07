package framebridge

import "github.com/pkg/errors"

var (
	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("framebridge: invalid document")

	// ErrUnsupportedFeature is returned in CompatibilityEnforce mode when a
	// document uses something the render tree cannot play.
	ErrUnsupportedFeature = errors.New("framebridge: unsupported document feature")

	// ErrKindMismatch is returned when a value cannot be decoded as the kind
	// its property expects.
	ErrKindMismatch = errors.New("framebridge: value kind mismatch")
)
