package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// BufferSink is the "buffersink" filter: the output endpoint of a graph.
//
// The optional pix_fmts option restricts the formats the sink accepts.
type BufferSink struct {
	graph   *Graph
	ctx     *filterContext
	formats []rawvideo.PixelFormat
	props   LinkProps
}

func init() {
	register(&filterInfo{
		name:      "buffersink",
		shorthand: []string{"pix_fmts"},
		create:    newBufferSink,
	})
}

func newBufferSink(opts options) (filter, error) {
	formats, err := opts.pixelFormats("pix_fmts")
	if err != nil {
		return nil, err
	}
	return &BufferSink{formats: formats}, nil
}

func (s *BufferSink) numInputs() int  { return 1 }
func (s *BufferSink) numOutputs() int { return 0 }

func (s *BufferSink) configure(in []LinkProps) (LinkProps, error) {
	if len(s.formats) > 0 && !containsFormat(s.formats, in[0].Format) {
		return LinkProps{}, fmt.Errorf("format %s not accepted by sink", in[0].Format)
	}
	s.props = in[0]
	return in[0], nil
}

func (s *BufferSink) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	out.Ref(&in[0])
	return nil
}

// Props returns the negotiated properties of the frames the sink produces.
func (s *BufferSink) Props() LinkProps {
	return s.props
}

// GetFrame pulls one composed frame through the graph into dst.
//
// dst references buffers owned by the graph and stays valid until the next
// GetFrame call. ErrAgain means some source had no queued frame.
func (s *BufferSink) GetFrame(dst *rawvideo.Frame) error {
	if s.graph.freed {
		return ErrFreed
	}
	if !s.graph.configured {
		return ErrNotConfigured
	}
	dst.Unref()
	return s.ctx.pull(dst)
}

func containsFormat(formats []rawvideo.PixelFormat, p rawvideo.PixelFormat) bool {
	for _, f := range formats {
		if f == p {
			return true
		}
	}
	return false
}
