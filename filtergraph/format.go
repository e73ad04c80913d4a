package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// formatFilter converts frames to one of the listed pixel formats.
//
// When the input format is listed, frames pass through untouched. Otherwise
// the input is converted to the first listed format by resampling its
// chroma planes.
type formatFilter struct {
	formats []rawvideo.PixelFormat
	buf     *rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "format",
		shorthand: []string{"pix_fmts"},
		create:    newFormatFilter,
	})
}

func newFormatFilter(opts options) (filter, error) {
	formats, err := opts.pixelFormats("pix_fmts")
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("option pix_fmts is required")
	}
	return &formatFilter{formats: formats}, nil
}

func (f *formatFilter) numInputs() int  { return 1 }
func (f *formatFilter) numOutputs() int { return 1 }

func (f *formatFilter) configure(in []LinkProps) (LinkProps, error) {
	f.buf = nil
	if containsFormat(f.formats, in[0].Format) {
		return in[0], nil
	}

	out := in[0]
	out.Format = f.formats[0]
	buf, err := rawvideo.NewFrame(out.Format, out.Width, out.Height)
	if err != nil {
		return LinkProps{}, err
	}
	f.buf = buf
	return out, nil
}

func (f *formatFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	if f.buf == nil {
		out.Ref(&in[0])
		return nil
	}
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		scalePlane(&in[0], f.buf, i)
	}
	out.Ref(f.buf)
	return nil
}
