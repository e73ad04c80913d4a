package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// Flag modifies how AddFrame takes a frame.
type Flag int

const (
	// FlagKeepRef leaves the frame with the caller. The source keeps a
	// read-only reference, so the caller's buffer must stay untouched until
	// the frame has been pulled through the graph.
	FlagKeepRef Flag = 1 << iota
)

// BufferSource is the "buffer" filter: an input endpoint that queues frames
// pushed by the caller.
//
// Options: video_size (WxH) or width and height, pix_fmt, time_base.
type BufferSource struct {
	graph *Graph
	ctx   *filterContext
	props LinkProps
	queue []rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "buffer",
		shorthand: []string{"video_size", "pix_fmt", "time_base"},
		options:   []string{"width", "height"},
		aliases:   map[string]string{"s": "video_size", "w": "width", "h": "height", "format": "pix_fmt"},
		create:    newBufferSource,
	})
}

func newBufferSource(opts options) (filter, error) {
	s := &BufferSource{props: LinkProps{TimeBase: Rational{Num: 1, Den: 1}}}

	w, h, ok, err := opts.size("video_size")
	if err != nil {
		return nil, err
	}
	if !ok {
		if w, err = opts.int("width", 0); err != nil {
			return nil, err
		}
		if h, err = opts.int("height", 0); err != nil {
			return nil, err
		}
	}
	if err := limits.ValidateDimensions(w, h); err != nil {
		return nil, err
	}

	format, ok, err := opts.pixelFormat("pix_fmt")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("option pix_fmt is required")
	}

	if tb, ok, err := opts.rational("time_base"); err != nil {
		return nil, err
	} else if ok {
		s.props.TimeBase = tb
	}

	s.props.Width, s.props.Height, s.props.Format = w, h, format
	return s, nil
}

func (s *BufferSource) numInputs() int  { return 0 }
func (s *BufferSource) numOutputs() int { return 1 }

func (s *BufferSource) configure([]LinkProps) (LinkProps, error) {
	return s.props, nil
}

func (s *BufferSource) process(_ []rawvideo.Frame, out *rawvideo.Frame) error {
	if len(s.queue) == 0 {
		return fmt.Errorf("%w: %s has no queued frame", ErrAgain, s.ctx.name)
	}
	*out = s.queue[0]
	n := copy(s.queue, s.queue[1:])
	s.queue[n] = rawvideo.Frame{}
	s.queue = s.queue[:n]
	return nil
}

// Name returns the instance name of the source.
func (s *BufferSource) Name() string {
	return s.ctx.name
}

// Props returns the properties frames pushed into this source must have.
func (s *BufferSource) Props() LinkProps {
	return s.props
}

// Queued returns the number of frames waiting to be pulled.
func (s *BufferSource) Queued() int {
	return len(s.queue)
}

// AddFrame queues f for the next pull.
//
// Without FlagKeepRef the frame is moved into the source and f is reset.
// Frames whose geometry or format differ from the source are rejected.
func (s *BufferSource) AddFrame(f *rawvideo.Frame, flags Flag) error {
	if s.graph.freed {
		return ErrFreed
	}
	if !s.graph.configured {
		return ErrNotConfigured
	}
	if f.Width != s.props.Width || f.Height != s.props.Height || f.Format != s.props.Format {
		return fmt.Errorf("%w: %s expects %dx%d %s, got %dx%d %s", ErrFrameRejected, s.ctx.name,
			s.props.Width, s.props.Height, s.props.Format, f.Width, f.Height, f.Format)
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFrameRejected, s.ctx.name, err)
	}

	var queued rawvideo.Frame
	queued.Ref(f)
	if flags&FlagKeepRef != 0 {
		queued.SetReadOnly()
	} else {
		f.Unref()
	}
	s.queue = append(s.queue, queued)
	return nil
}

// Flush drops every queued frame.
func (s *BufferSource) Flush() {
	for i := range s.queue {
		s.queue[i].Unref()
	}
	s.queue = s.queue[:0]
}
