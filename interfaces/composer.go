package interfaces

import (
	"errors"
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// FrameComposer composes one frame per input into a single canvas frame.
// This abstraction allows switching between the filter graph session and the
// simulated implementation.
type FrameComposer interface {
	// Compose takes one packed frame per input and returns the packed canvas frame
	Compose(frames [][]byte) ([]byte, error)

	// Canvas returns the output frame dimensions
	Canvas() (width, height int)

	// PixelFormat returns the output pixel format
	PixelFormat() rawvideo.PixelFormat

	// InputCount returns the number of frames Compose expects
	InputCount() int

	// Close releases the composer; further calls fail
	Close() error
}

// Configuration validation errors.
var (
	// ErrInvalidMaxInputs indicates an input limit outside [1, limits.MaxInputs].
	ErrInvalidMaxInputs = errors.New("max inputs out of range")
	// ErrInvalidDescriptionSize indicates a description limit outside [1, limits.MaxDescriptionSize].
	ErrInvalidDescriptionSize = errors.New("max description size out of range")
)

// ComposerConfig holds configuration for composer implementations
type ComposerConfig struct {
	// UseSimulation selects the simulated composer instead of the filter graph
	UseSimulation bool

	// MaxInputs caps the number of inputs a composer accepts
	MaxInputs int

	// MaxDescriptionSize caps the graph description length in bytes
	MaxDescriptionSize int

	// LogLevel is the logrus level name applied by the factory, empty to keep the current level
	LogLevel string
}

// Validate checks that every limit is within the library bounds.
func (c *ComposerConfig) Validate() error {
	if c.MaxInputs < 1 || c.MaxInputs > limits.MaxInputs {
		return fmt.Errorf("%w: %d", ErrInvalidMaxInputs, c.MaxInputs)
	}
	if c.MaxDescriptionSize < 1 || c.MaxDescriptionSize > limits.MaxDescriptionSize {
		return fmt.Errorf("%w: %d", ErrInvalidDescriptionSize, c.MaxDescriptionSize)
	}
	return nil
}
