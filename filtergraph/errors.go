package filtergraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction.
var (
	// ErrAllocation indicates the graph container or a frame buffer could not be created.
	ErrAllocation = errors.New("cannot allocate filter graph")

	// ErrParse indicates a malformed graph description.
	ErrParse = errors.New("cannot parse graph")

	// ErrConfig indicates that format negotiation or link validation failed.
	ErrConfig = errors.New("cannot configure graph")

	// ErrEndpointMismatch indicates the graph does not expose the expected
	// number of sources and exactly one sink.
	ErrEndpointMismatch = errors.New("graph endpoints do not match inputs")
)

// Sentinel errors for frame exchange.
var (
	// ErrAgain indicates the graph needs more input before it can output a frame.
	ErrAgain = errors.New("resource temporarily unavailable")

	// ErrFrameRejected indicates a frame that does not match its source.
	ErrFrameRejected = errors.New("frame rejected by source")

	// ErrNotConfigured indicates frames were exchanged before Config succeeded.
	ErrNotConfigured = errors.New("graph is not configured")

	// ErrFreed indicates use of a graph after Free.
	ErrFreed = errors.New("graph has been freed")
)

// ParseError describes a malformed graph description.
type ParseError struct {
	Offset int    // byte offset into the description
	Detail string // what was wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", ErrParse, e.Offset, e.Detail)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

func parseErrorf(offset int, format string, args ...interface{}) error {
	return &ParseError{Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
