package compositor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vcompositor/filtergraph"
	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// VideoSpec is the caller-supplied description of one input stream.
type VideoSpec struct {
	Width       int
	Height      int
	PixelFormat string // "I420", "I422" or "I444"

	// Optional frame rate; both zero means 1/1.
	FramerateNum int
	FramerateDen int
}

func (v VideoSpec) descriptor() (rawvideo.VideoDescriptor, error) {
	d, err := rawvideo.NewVideoDescriptor(v.Width, v.Height, v.PixelFormat)
	if err != nil {
		return d, err
	}
	if v.FramerateNum != 0 || v.FramerateDen != 0 {
		return d.WithFramerate(v.FramerateNum, v.FramerateDen)
	}
	return d, nil
}

type sessionConfig struct {
	maxInputs          int
	maxDescriptionSize int
	timeProvider       TimeProvider
	graphOptions       []filtergraph.Option
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithMaxInputs lowers the number of inputs a session accepts. Values
// outside [1, limits.MaxInputs] are ignored.
func WithMaxInputs(n int) Option {
	return func(c *sessionConfig) {
		if n >= 1 && n <= limits.MaxInputs {
			c.maxInputs = n
		}
	}
}

// WithMaxDescriptionSize sets the largest graph description, in bytes, the
// session will build.
func WithMaxDescriptionSize(n int) Option {
	return func(c *sessionConfig) {
		c.maxDescriptionSize = n
	}
}

// WithTimeProvider sets the clock used for Stats.
func WithTimeProvider(tp TimeProvider) Option {
	return func(c *sessionConfig) {
		if tp != nil {
			c.timeProvider = tp
		}
	}
}

// WithGraphOptions passes options to the filter graph.
func WithGraphOptions(opts ...filtergraph.Option) Option {
	return func(c *sessionConfig) {
		c.graphOptions = append(c.graphOptions, opts...)
	}
}

// Session composes one frame per input into a single canvas frame.
//
// A Session is bound to the geometry it was created with. It is not safe for
// concurrent use; independent sessions share nothing and may run in
// parallel.
type Session struct {
	id          string
	videos      []rawvideo.VideoDescriptor
	placements  []Placement
	description string
	inputCount  int

	graph   *filtergraph.Graph
	sources []*filtergraph.BufferSource
	sink    *filtergraph.BufferSink

	inputs []rawvideo.Frame
	pulled rawvideo.Frame

	width, height int
	format        rawvideo.PixelFormat
	outSize       int

	stats        *statsRecorder
	timeProvider TimeProvider
	closed       bool
}

// NewSession validates the inputs, builds the graph description and the
// filter graph, and returns a ready session.
//
// placements must have one entry per video. Input 1 is the bottom layer and
// later inputs are drawn over earlier ones. The canvas is the smallest
// rectangle containing every placed input, in the pixel format of input 1.
//
// With subsampled chroma (I420, I422) the position of input 1 is rounded
// down to the chroma grid, so an odd x or y moves it up or left by one
// sample and leaves the last canvas column or row black. Later inputs keep
// their exact luma position and place chroma at x>>1 (and y>>1 for I420).
// Crop origins must lie on the chroma grid.
func NewSession(videos []VideoSpec, placements []Placement, opts ...Option) (*Session, error) {
	const op = "NewSession"
	cfg := sessionConfig{
		maxInputs:          limits.MaxInputs,
		maxDescriptionSize: limits.MaxDescriptionSize,
		timeProvider:       DefaultTimeProvider{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"inputs":   len(videos),
	})

	fail := func(err *Error) (*Session, error) {
		logger.WithFields(logrus.Fields{
			"reason": err.Reason.Error(),
			"kind":   err.Kind.String(),
			"error":  err.Error(),
		}).Error("Failed to create composition session")
		return nil, err
	}

	if len(videos) != len(placements) {
		return fail(newError(op, KindConfiguration, ErrCountMismatch, -1,
			fmt.Errorf("%d videos but %d placements", len(videos), len(placements))))
	}
	if err := limits.ValidateInputCount(len(videos)); err != nil {
		return fail(newError(op, KindConfiguration, ErrCountMismatch, -1, err))
	}
	if len(videos) > cfg.maxInputs {
		return fail(newError(op, KindConfiguration, ErrCountMismatch, -1,
			fmt.Errorf("%w: %d exceeds configured limit %d", limits.ErrTooManyInputs, len(videos), cfg.maxInputs)))
	}

	descriptors := make([]rawvideo.VideoDescriptor, len(videos))
	for i, v := range videos {
		d, err := v.descriptor()
		if err != nil {
			reason := ErrInvalidGeometry
			if errors.Is(err, rawvideo.ErrUnsupportedPixelFormat) {
				reason = ErrUnsupportedPixelFormat
			}
			return fail(newError(op, KindConfiguration, reason, i, err))
		}
		if err := validateGeometry(d, placements[i]); err != nil {
			return fail(newError(op, KindConfiguration, ErrInvalidGeometry, i, err))
		}
		descriptors[i] = d
	}

	width, height := CanvasBounds(descriptors, placements)
	if err := limits.ValidateDimensions(width, height); err != nil {
		return fail(newError(op, KindConfiguration, ErrInvalidGeometry, -1, fmt.Errorf("canvas: %w", err)))
	}

	description, n := BuildDescription(descriptors, placements, cfg.maxDescriptionSize)
	if n > cfg.maxDescriptionSize {
		return fail(newError(op, KindConstruction, ErrDescriptionTooLong, -1,
			fmt.Errorf("description needs %d bytes, limit is %d", n, cfg.maxDescriptionSize)))
	}

	graph, err := filtergraph.Build(description, len(descriptors), cfg.graphOptions...)
	if err != nil {
		return fail(newError(op, KindConstruction, graphReason(err), -1, err))
	}

	props := graph.Sink().Props()
	s := &Session{
		id:           uuid.New().String(),
		videos:       descriptors,
		placements:   append([]Placement(nil), placements...),
		description:  description,
		inputCount:   len(descriptors),
		graph:        graph,
		sources:      graph.Sources(),
		sink:         graph.Sink(),
		inputs:       make([]rawvideo.Frame, len(descriptors)),
		width:        props.Width,
		height:       props.Height,
		format:       props.Format,
		outSize:      rawvideo.ImageSize(props.Format, props.Width, props.Height),
		stats:        newStatsRecorder(),
		timeProvider: cfg.timeProvider,
	}

	logger.WithFields(logrus.Fields{
		"session_id":   s.id,
		"canvas":       fmt.Sprintf("%dx%d", s.width, s.height),
		"pixel_format": s.format.String(),
	}).Info("Created composition session")
	return s, nil
}

func graphReason(err error) error {
	switch {
	case errors.Is(err, filtergraph.ErrAllocation):
		return ErrAllocation
	case errors.Is(err, filtergraph.ErrParse):
		return ErrParse
	case errors.Is(err, filtergraph.ErrEndpointMismatch):
		return ErrEndpointMismatch
	default:
		return ErrConfig
	}
}

// Compose composes one frame per input and returns the packed canvas frame.
//
// frames[i] must be a tightly packed frame of input i. Pixel data is not
// copied on the way in. Every error fails only this call: queued input is
// discarded and the session stays usable.
func (s *Session) Compose(frames [][]byte) ([]byte, error) {
	if s.closed {
		return nil, newError("Compose", KindCall, ErrSessionClosed, -1, nil)
	}
	start := s.timeProvider.Now()
	if err := s.feedAndPull("Compose", frames); err != nil {
		return nil, s.fail(err)
	}

	out := make([]byte, s.outSize)
	if _, err := s.pulled.CopyToBuffer(out); err != nil {
		return nil, s.fail(newError("Compose", KindCall, ErrCopy, -1, err))
	}
	s.finish(start, out)
	return out, nil
}

// ComposeInto is Compose writing into dst, which must hold at least
// FrameSize bytes. It returns the number of bytes written.
func (s *Session) ComposeInto(dst []byte, frames [][]byte) (int, error) {
	if s.closed {
		return 0, newError("ComposeInto", KindCall, ErrSessionClosed, -1, nil)
	}
	if len(dst) < s.outSize {
		return 0, s.fail(newError("ComposeInto", KindCall, ErrCopy, -1,
			fmt.Errorf("%w: destination has %d bytes, need %d", rawvideo.ErrBufferSize, len(dst), s.outSize)))
	}
	start := s.timeProvider.Now()
	if err := s.feedAndPull("ComposeInto", frames); err != nil {
		return 0, s.fail(err)
	}

	n, err := s.pulled.CopyToBuffer(dst)
	if err != nil {
		return 0, s.fail(newError("ComposeInto", KindCall, ErrCopy, -1, err))
	}
	s.finish(start, dst[:n])
	return n, nil
}

// feedAndPull binds every buffer to its reusable frame, pushes the frames
// into the graph and pulls the composed frame into s.pulled.
func (s *Session) feedAndPull(op string, frames [][]byte) *Error {
	if len(frames) != s.inputCount {
		return newError(op, KindCall, ErrFrameCount, -1,
			fmt.Errorf("got %d frames, want %d", len(frames), s.inputCount))
	}

	for i, buf := range frames {
		d := s.videos[i]
		if size := d.FrameSize(); len(buf) != size {
			return newError(op, KindCall, ErrFeed, i,
				fmt.Errorf("%w: got %d bytes, want %d for %s", rawvideo.ErrBufferSize, len(buf), size, d))
		}
		if err := s.inputs[i].FillArrays(buf, d.PixelFormat, d.Width, d.Height); err != nil {
			return newError(op, KindCall, ErrFeed, i, err)
		}
		if err := s.sources[i].AddFrame(&s.inputs[i], filtergraph.FlagKeepRef); err != nil {
			return newError(op, KindCall, ErrFeed, i, err)
		}
	}

	if err := s.sink.GetFrame(&s.pulled); err != nil {
		return newError(op, KindCall, ErrPull, -1, err)
	}
	return nil
}

// release drops every frame reference the session holds between calls.
func (s *Session) release() {
	for _, src := range s.sources {
		src.Flush()
	}
	for i := range s.inputs {
		s.inputs[i].Unref()
	}
	s.pulled.Unref()
}

func (s *Session) fail(err *Error) error {
	s.release()
	s.stats.recordFailure(err.Reason.Error())
	logrus.WithFields(logrus.Fields{
		"function":   err.Op,
		"session_id": s.id,
		"reason":     err.Reason.Error(),
		"input":      err.Index,
		"error":      err.Error(),
	}).Warn("Composition failed")
	return err
}

func (s *Session) finish(start time.Time, out []byte) {
	s.release()
	elapsed := s.timeProvider.Since(start)
	s.stats.recordSuccess(start, elapsed)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithFields(logrus.Fields{
			"function":   "Compose",
			"session_id": s.id,
			"bytes":      len(out),
			"digest":     rawvideo.Digest(out),
			"duration":   elapsed,
		}).Debug("Composed frame")
	}
}

// Close releases the frame handles, then the filter graph, then the
// descriptors. Closing twice returns ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		return newError("Close", KindCall, ErrSessionClosed, -1, nil)
	}
	s.release()
	s.inputs = nil

	s.graph.Free()
	s.graph, s.sources, s.sink = nil, nil, nil
	s.videos = nil
	s.closed = true

	stats := s.stats.snapshot()
	logrus.WithFields(logrus.Fields{
		"function":   "Close",
		"session_id": s.id,
		"composed":   stats.Composed,
		"failed":     stats.Failed,
	}).Info("Closed composition session")
	return nil
}

// ID returns the identifier used in the session's log entries.
func (s *Session) ID() string { return s.id }

// Canvas returns the output frame dimensions.
func (s *Session) Canvas() (width, height int) { return s.width, s.height }

// PixelFormat returns the output pixel format.
func (s *Session) PixelFormat() rawvideo.PixelFormat { return s.format }

// InputCount returns the number of frames Compose expects.
func (s *Session) InputCount() int { return s.inputCount }

// FrameSize returns the size in bytes of one composed frame.
func (s *Session) FrameSize() int { return s.outSize }

// Description returns the graph description the session was built from.
func (s *Session) Description() string { return s.description }

// Placements returns a copy of the input placements.
func (s *Session) Placements() []Placement {
	return append([]Placement(nil), s.placements...)
}

// Stats returns a snapshot of the session's Compose statistics.
func (s *Session) Stats() Stats { return s.stats.snapshot() }
