package chunker

import "errors"

var (
	// ErrInvalidConfiguration is returned when the chunk size or overlap
	// fall outside the allowed envelope (size > 0, 0 <= overlap < size).
	ErrInvalidConfiguration = errors.New("invalid chunk configuration")

	// ErrMissingMetadata is returned when a chunk cannot be tagged because
	// its source document lacks a required identity field.
	ErrMissingMetadata = errors.New("missing required metadata")

	// ErrReconstructionMismatch is returned when stitching the produced
	// chunks back together does not reproduce the input text.
	ErrReconstructionMismatch = errors.New("chunk reconstruction mismatch")
)
