package compositor

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by when it happened and what the caller should do
// about it.
type Kind int

const (
	// KindConfiguration errors come from invalid caller input at NewSession.
	// No session is created.
	KindConfiguration Kind = iota + 1
	// KindConstruction errors come from building the filter graph. Every
	// partially acquired resource has been released.
	KindConstruction
	// KindCall errors fail a single Compose call. The session stays usable.
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConstruction:
		return "construction"
	case KindCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reason sentinels. Their text is the reason code reported to hosts.
var (
	ErrUnsupportedPixelFormat = errors.New("unsupported_pixel_format")
	ErrCountMismatch          = errors.New("descriptor_count_mismatch")
	ErrInvalidGeometry        = errors.New("invalid_geometry")

	ErrDescriptionTooLong = errors.New("error_description_too_long")
	ErrAllocation         = errors.New("error_allocating_graph")
	ErrParse              = errors.New("error_parsing_graph")
	ErrConfig             = errors.New("error_configuring_graph")
	ErrEndpointMismatch   = errors.New("error_endpoint_mismatch")

	ErrFrameCount    = errors.New("error_frame_count")
	ErrFeed          = errors.New("error_feeding_filtergraph")
	ErrPull          = errors.New("error_pulling_from_filtergraph")
	ErrCopy          = errors.New("copy_to_payload")
	ErrSessionClosed = errors.New("session_closed")
)

// Error is returned by every compositor operation that fails.
//
// errors.Is matches both the Reason sentinel and sentinels of the
// underlying cause, for example:
//
//	if errors.Is(err, compositor.ErrFeed) { ... }
//	if errors.Is(err, filtergraph.ErrFrameRejected) { ... }
type Error struct {
	Op     string // operation that failed, e.g. "Compose"
	Kind   Kind
	Reason error // one of the reason sentinels
	Index  int   // zero-based input index, or -1
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Reason)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (input %d)", e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the reason and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

func newError(op string, kind Kind, reason error, index int, cause error) *Error {
	return &Error{Op: op, Kind: kind, Reason: reason, Index: index, Err: cause}
}

// ReasonOf returns the reason code of err ("error_frame_count", ...), or ""
// when err is not an *Error.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Reason != nil {
		return e.Reason.Error()
	}
	return ""
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsConstructionError reports whether err prevented a session from being
// created, meaning the caller must fix its input or build a new session
// rather than resubmit frames.
func IsConstructionError(err error) bool {
	k := KindOf(err)
	return k == KindConfiguration || k == KindConstruction
}
