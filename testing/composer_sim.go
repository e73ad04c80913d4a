package testing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vcompositor/compositor"
	"github.com/opd-ai/vcompositor/interfaces"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// ErrUnsupportedPlacement is the cause returned for layouts the simulation
// cannot draw: display sizes, and crops or positions off the chroma grid.
var ErrUnsupportedPlacement = errors.New("placement not supported by simulation")

// SimulatedComposer draws inputs straight onto a canvas without a filter
// graph. It covers layouts made of positions and aligned crops, keeps a log
// of every call, and serves as a reference for the graph-backed session.
type SimulatedComposer struct {
	videos     []rawvideo.VideoDescriptor
	placements []compositor.Placement
	config     *interfaces.ComposerConfig

	width, height int
	format        rawvideo.PixelFormat

	mu         sync.RWMutex
	composeLog []ComposeRecord
	closed     bool
}

// ComposeRecord represents one Compose call for testing verification
type ComposeRecord struct {
	Frames    int
	Bytes     int
	Digest    string
	Timestamp int64
	Success   bool
	Error     error
}

// NewSimulatedComposer validates the layout the way compositor.NewSession
// does and returns a simulated composer for it.
func NewSimulatedComposer(videos []compositor.VideoSpec, placements []compositor.Placement, config *interfaces.ComposerConfig) (*SimulatedComposer, error) {
	const op = "NewSimulatedComposer"
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")

	if config == nil {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindConfiguration, Reason: compositor.ErrCountMismatch,
			Index: -1, Err: errors.New("config is required")}
	}
	if len(videos) != len(placements) || len(videos) == 0 || len(videos) > config.MaxInputs {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindConfiguration, Reason: compositor.ErrCountMismatch,
			Index: -1, Err: fmt.Errorf("%d videos, %d placements, limit %d", len(videos), len(placements), config.MaxInputs)}
	}

	descriptors := make([]rawvideo.VideoDescriptor, len(videos))
	for i, v := range videos {
		d, err := rawvideo.NewVideoDescriptor(v.Width, v.Height, v.PixelFormat)
		if err != nil {
			reason := compositor.ErrInvalidGeometry
			if errors.Is(err, rawvideo.ErrUnsupportedPixelFormat) {
				reason = compositor.ErrUnsupportedPixelFormat
			}
			return nil, &compositor.Error{Op: op, Kind: compositor.KindConfiguration, Reason: reason, Index: i, Err: err}
		}
		if i > 0 && d.PixelFormat != descriptors[0].PixelFormat {
			return nil, &compositor.Error{Op: op, Kind: compositor.KindConfiguration, Reason: compositor.ErrUnsupportedPixelFormat,
				Index: i, Err: fmt.Errorf("%w: mixed formats %s and %s", ErrUnsupportedPlacement, descriptors[0].PixelFormat, d.PixelFormat)}
		}
		if err := checkPlacement(d, placements[i]); err != nil {
			return nil, &compositor.Error{Op: op, Kind: compositor.KindConfiguration, Reason: compositor.ErrInvalidGeometry, Index: i, Err: err}
		}
		descriptors[i] = d
	}

	width, height := compositor.CanvasBounds(descriptors, placements)
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedComposer",
		"inputs":   len(descriptors),
		"canvas":   fmt.Sprintf("%dx%d", width, height),
	}).Info("Creating simulated composer for testing")

	return &SimulatedComposer{
		videos:     descriptors,
		placements: append([]compositor.Placement(nil), placements...),
		config:     config,
		width:      width,
		height:     height,
		format:     descriptors[0].PixelFormat,
		composeLog: make([]ComposeRecord, 0),
	}, nil
}

func checkPlacement(d rawvideo.VideoDescriptor, p compositor.Placement) error {
	hs, vs := d.PixelFormat.ChromaShift()
	aligned := func(x, y int) bool { return x&(1<<hs-1) == 0 && y&(1<<vs-1) == 0 }

	switch {
	case p.X < 0 || p.Y < 0:
		return fmt.Errorf("negative position %d,%d", p.X, p.Y)
	case p.Size != nil:
		return fmt.Errorf("%w: display size", ErrUnsupportedPlacement)
	case !aligned(p.X, p.Y):
		return fmt.Errorf("%w: position %d,%d", ErrUnsupportedPlacement, p.X, p.Y)
	}
	if c := p.Crop; c != nil {
		if !aligned(c.X, c.Y) {
			return fmt.Errorf("%w: crop origin %d,%d", ErrUnsupportedPlacement, c.X, c.Y)
		}
		if c.X < 0 || c.Y < 0 || c.Width <= 0 || c.Height <= 0 || c.X+c.Width > d.Width || c.Y+c.Height > d.Height {
			return fmt.Errorf("crop %dx%d+%d+%d outside %dx%d input", c.Width, c.Height, c.X, c.Y, d.Width, d.Height)
		}
	}
	return nil
}

// Compose implements interfaces.FrameComposer.Compose with a direct copy
// of every input onto a black canvas.
func (s *SimulatedComposer) Compose(frames [][]byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.compose(frames)
	record := ComposeRecord{
		Frames:    len(frames),
		Bytes:     len(out),
		Timestamp: time.Now().UnixNano(),
		Success:   err == nil,
		Error:     err,
	}
	if err == nil {
		record.Digest = rawvideo.Digest(out)
	}
	s.composeLog = append(s.composeLog, record)

	logrus.WithFields(logrus.Fields{
		"function":      "SimulatedComposer.Compose",
		"frames":        len(frames),
		"success":       err == nil,
		"total_records": len(s.composeLog),
	}).Debug("Simulated composition")
	return out, err
}

func (s *SimulatedComposer) compose(frames [][]byte) ([]byte, error) {
	const op = "Compose"
	if s.closed {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrSessionClosed, Index: -1}
	}
	if len(frames) != len(s.videos) {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrFrameCount, Index: -1,
			Err: fmt.Errorf("got %d frames, want %d", len(frames), len(s.videos))}
	}

	canvas, err := rawvideo.NewFrame(s.format, s.width, s.height)
	if err != nil {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrCopy, Index: -1, Err: err}
	}
	canvas.Fill(rawvideo.Black.Y, rawvideo.Black.U, rawvideo.Black.V)

	for i, buf := range frames {
		d := s.videos[i]
		var in rawvideo.Frame
		if len(buf) != d.FrameSize() {
			return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrFeed, Index: i,
				Err: fmt.Errorf("%w: got %d bytes, want %d", rawvideo.ErrBufferSize, len(buf), d.FrameSize())}
		}
		if err := in.FillArrays(buf, d.PixelFormat, d.Width, d.Height); err != nil {
			return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrFeed, Index: i, Err: err}
		}
		p := s.placements[i]
		if c := p.Crop; c != nil {
			if err := in.Window(&in, c.X, c.Y, c.Width, c.Height); err != nil {
				return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrFeed, Index: i, Err: err}
			}
		}
		paste(canvas, &in, p.X, p.Y)
	}

	out := make([]byte, rawvideo.ImageSize(s.format, s.width, s.height))
	if _, err := canvas.CopyToBuffer(out); err != nil {
		return nil, &compositor.Error{Op: op, Kind: compositor.KindCall, Reason: compositor.ErrCopy, Index: -1, Err: err}
	}
	return out, nil
}

// paste copies src onto dst at (x, y), clipped to dst.
func paste(dst, src *rawvideo.Frame, x, y int) {
	hs, vs := dst.Format.ChromaShift()
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		px, py := x, y
		if i > 0 {
			px, py = x>>hs, y>>vs
		}
		sw, sh := src.Format.PlaneSize(i, src.Width, src.Height)
		dw, dh := dst.Format.PlaneSize(i, dst.Width, dst.Height)
		n := min(sw, dw-px)
		for row := 0; row < sh && py+row < dh; row++ {
			if n > 0 {
				copy(dst.Row(i, py+row)[px:px+n], src.Row(i, row)[:n])
			}
		}
	}
}

// Canvas implements interfaces.FrameComposer.Canvas
func (s *SimulatedComposer) Canvas() (width, height int) { return s.width, s.height }

// PixelFormat implements interfaces.FrameComposer.PixelFormat
func (s *SimulatedComposer) PixelFormat() rawvideo.PixelFormat { return s.format }

// InputCount implements interfaces.FrameComposer.InputCount
func (s *SimulatedComposer) InputCount() int { return len(s.videos) }

// Close implements interfaces.FrameComposer.Close
func (s *SimulatedComposer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &compositor.Error{Op: "Close", Kind: compositor.KindCall, Reason: compositor.ErrSessionClosed, Index: -1}
	}
	s.closed = true
	logrus.WithFields(logrus.Fields{
		"function": "SimulatedComposer.Close",
		"records":  len(s.composeLog),
	}).Info("Closed simulated composer")
	return nil
}

// IsSimulation returns true for simulation implementation
func (s *SimulatedComposer) IsSimulation() bool { return true }

// Config returns the configuration the composer was created with.
func (s *SimulatedComposer) Config() interfaces.ComposerConfig { return *s.config }

// GetComposeLog returns a copy of the compose log for testing verification
func (s *SimulatedComposer) GetComposeLog() []ComposeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := make([]ComposeRecord, len(s.composeLog))
	copy(log, s.composeLog)
	return log
}

// ClearComposeLog clears the compose log
func (s *SimulatedComposer) ClearComposeLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composeLog = s.composeLog[:0]
}
