// Package limits provides centralized size limits for the compositor.
// This ensures consistent validation across the session, builder and graph.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxInputs is the largest number of videos one session composes.
	MaxInputs = 64

	// MaxDimension bounds the width and height of inputs and of the canvas.
	MaxDimension = 16384

	// MaxDescriptionSize is the default upper bound for a generated graph
	// description, in bytes. A 64-input layout needs well under half of it.
	MaxDescriptionSize = 16384

	// MaxFrameBytes is the absolute maximum size of a single frame buffer.
	// This prevents a malformed geometry from exhausting memory (256MB limit).
	MaxFrameBytes = 256 * 1024 * 1024
)

var (
	// ErrNoInputs indicates an empty input list.
	ErrNoInputs = errors.New("no inputs")

	// ErrTooManyInputs indicates more inputs than MaxInputs.
	ErrTooManyInputs = errors.New("too many inputs")

	// ErrDimensionOutOfRange indicates a width or height outside [1, MaxDimension].
	ErrDimensionOutOfRange = errors.New("dimension out of range")

	// ErrFrameTooLarge indicates a frame buffer larger than MaxFrameBytes.
	ErrFrameTooLarge = errors.New("frame too large")
)

// ValidateInputCount checks that n is within [1, MaxInputs].
func ValidateInputCount(n int) error {
	if n <= 0 {
		return ErrNoInputs
	}
	if n > MaxInputs {
		return fmt.Errorf("%w: %d exceeds limit %d", ErrTooManyInputs, n, MaxInputs)
	}
	return nil
}

// ValidateDimensions checks that width and height are within [1, MaxDimension].
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d (limit %d)", ErrDimensionOutOfRange, width, height, MaxDimension)
	}
	return nil
}

// ValidateFrameBytes checks a frame buffer size against MaxFrameBytes.
func ValidateFrameBytes(size int) error {
	if size > MaxFrameBytes {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrFrameTooLarge, size, MaxFrameBytes)
	}
	return nil
}
