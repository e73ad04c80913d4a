package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// scaleFilter resizes frames with bilinear interpolation.
//
// Options w and h give the output size. 0 keeps the input dimension and -1
// derives it from the other dimension, preserving the aspect ratio.
type scaleFilter struct {
	w, h int
	buf  *rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "scale",
		shorthand: []string{"w", "h"},
		aliases:   map[string]string{"width": "w", "height": "h"},
		create:    newScaleFilter,
	})
}

func newScaleFilter(opts options) (filter, error) {
	s := &scaleFilter{}
	var err error
	if s.w, err = opts.int("w", 0); err != nil {
		return nil, err
	}
	if s.h, err = opts.int("h", 0); err != nil {
		return nil, err
	}
	if s.w < -1 || s.h < -1 || s.w == -1 && s.h == -1 {
		return nil, fmt.Errorf("invalid size %d:%d", s.w, s.h)
	}
	return s, nil
}

func (s *scaleFilter) numInputs() int  { return 1 }
func (s *scaleFilter) numOutputs() int { return 1 }

func (s *scaleFilter) configure(in []LinkProps) (LinkProps, error) {
	out := in[0]
	switch {
	case s.w > 0:
		out.Width = s.w
	case s.w == -1 && s.h > 0:
		out.Width = max(1, (in[0].Width*s.h+in[0].Height/2)/in[0].Height)
	}
	switch {
	case s.h > 0:
		out.Height = s.h
	case s.h == -1:
		out.Height = max(1, (in[0].Height*out.Width+in[0].Width/2)/in[0].Width)
	}
	if err := limits.ValidateDimensions(out.Width, out.Height); err != nil {
		return LinkProps{}, err
	}

	s.buf = nil
	if out.Width != in[0].Width || out.Height != in[0].Height {
		buf, err := rawvideo.NewFrame(out.Format, out.Width, out.Height)
		if err != nil {
			return LinkProps{}, err
		}
		s.buf = buf
	}
	return out, nil
}

func (s *scaleFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	if s.buf == nil {
		out.Ref(&in[0])
		return nil
	}
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		scalePlane(&in[0], s.buf, i)
	}
	out.Ref(s.buf)
	return nil
}

// scalePlane resamples plane i of src into plane i of dst using bilinear
// interpolation. The frames may differ in size and in chroma subsampling.
func scalePlane(src, dst *rawvideo.Frame, i int) {
	srcW, srcH := src.Format.PlaneSize(i, src.Width, src.Height)
	dstW, dstH := dst.Format.PlaneSize(i, dst.Width, dst.Height)

	if srcW == dstW && srcH == dstH {
		for y := 0; y < dstH; y++ {
			copy(dst.Row(i, y), src.Row(i, y))
		}
		return
	}

	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)

	for y := 0; y < dstH; y++ {
		srcY := float64(y) * yRatio
		y1 := int(srcY)
		y2 := min(y1+1, srcH-1)
		fy := srcY - float64(y1)

		top, bottom := src.Row(i, y1), src.Row(i, y2)
		line := dst.Row(i, y)
		for x := range line {
			srcX := float64(x) * xRatio
			x1 := int(srcX)
			x2 := min(x1+1, srcW-1)
			fx := srcX - float64(x1)

			t := float64(top[x1])*(1-fx) + float64(top[x2])*fx
			b := float64(bottom[x1])*(1-fx) + float64(bottom[x2])*fx
			line[x] = byte(t*(1-fy) + b*fy + 0.5)
		}
	}
}
