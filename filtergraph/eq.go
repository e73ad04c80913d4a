package filtergraph

import (
	"github.com/opd-ai/vcompositor/rawvideo"
)

// eqFilter adjusts brightness, contrast and saturation.
//
// Brightness is in [-1, 1] where 1 adds the full luma range, contrast in
// [0, 3] scales luma around mid gray and saturation in [0, 3] scales chroma
// around the neutral value. Saturation 0 yields a grayscale image.
type eqFilter struct {
	contrast, brightness, saturation float64

	luma, chroma [256]byte
	buf          *rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "eq",
		shorthand: []string{"contrast", "brightness", "saturation"},
		create:    newEqFilter,
	})
}

func newEqFilter(opts options) (filter, error) {
	e := &eqFilter{}
	var err error
	if e.contrast, err = opts.float("contrast", 1, 0, 3); err != nil {
		return nil, err
	}
	if e.brightness, err = opts.float("brightness", 0, -1, 1); err != nil {
		return nil, err
	}
	if e.saturation, err = opts.float("saturation", 1, 0, 3); err != nil {
		return nil, err
	}

	const midpoint = 128.0
	for v := 0; v < 256; v++ {
		y := midpoint + (float64(v)-midpoint)*e.contrast + e.brightness*255
		e.luma[v] = clampPixel(y)
		c := midpoint + (float64(v)-midpoint)*e.saturation
		e.chroma[v] = clampPixel(c)
	}
	return e, nil
}

func clampPixel(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

func (e *eqFilter) numInputs() int  { return 1 }
func (e *eqFilter) numOutputs() int { return 1 }

func (e *eqFilter) configure(in []LinkProps) (LinkProps, error) {
	buf, err := rawvideo.NewFrame(in[0].Format, in[0].Width, in[0].Height)
	if err != nil {
		return LinkProps{}, err
	}
	e.buf = buf
	return in[0], nil
}

func (e *eqFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	src := &in[0]
	if src.IsWritable() {
		out.Ref(src)
	} else {
		out.Ref(e.buf)
	}

	for i := 0; i < rawvideo.MaxPlanes; i++ {
		lut := &e.chroma
		if i == 0 {
			lut = &e.luma
		}
		_, h := src.Format.PlaneSize(i, src.Width, src.Height)
		for y := 0; y < h; y++ {
			from, to := src.Row(i, y), out.Row(i, y)
			for x, v := range from {
				to[x] = lut[v]
			}
		}
	}
	return nil
}
