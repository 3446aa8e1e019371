package uf2

import (
	"errors"
	"fmt"
)

// Static errors for block decoding.
var (
	// ErrBadMagic is returned when a block's start or end magic words are wrong.
	ErrBadMagic = errors.New("bad magic number")
	// ErrTruncatedBlock is returned when fewer than BlockSize bytes remain.
	ErrTruncatedBlock = errors.New("truncated block")
	// ErrPayloadTooLarge is returned when a header declares more than MaxPayloadSize bytes.
	ErrPayloadTooLarge = errors.New("payload size exceeds data area")
)

// SourceNotFoundError indicates that the input image could not be located.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// InvalidInputError indicates an empty or unparseable image, a malformed
// family ID literal, or an otherwise unusable job.
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "invalid input"
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", reason, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// IsInvalidInput returns true if err is or wraps an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsSourceNotFound returns true if err is or wraps a SourceNotFoundError.
func IsSourceNotFound(err error) bool {
	var target *SourceNotFoundError
	return errors.As(err, &target)
}
