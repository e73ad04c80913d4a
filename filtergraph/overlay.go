package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// overlayFilter draws its second input opaquely over its first.
//
// The overlay's top-left luma sample lands at (x, y) of the main frame;
// chroma planes use the coordinates shifted by the subsampling factors. The
// parts of the overlay that fall outside the main frame are clipped.
type overlayFilter struct {
	x, y int
	buf  *rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "overlay",
		shorthand: []string{"x", "y"},
		create:    newOverlayFilter,
	})
}

func newOverlayFilter(opts options) (filter, error) {
	o := &overlayFilter{}
	var err error
	if o.x, err = opts.int("x", 0); err != nil {
		return nil, err
	}
	if o.y, err = opts.int("y", 0); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *overlayFilter) numInputs() int  { return 2 }
func (o *overlayFilter) numOutputs() int { return 1 }

func (o *overlayFilter) configure(in []LinkProps) (LinkProps, error) {
	main, over := in[0], in[1]
	if main.Format != over.Format {
		return LinkProps{}, fmt.Errorf("overlay format %s does not match main format %s",
			over.Format, main.Format)
	}
	buf, err := rawvideo.NewFrame(main.Format, main.Width, main.Height)
	if err != nil {
		return LinkProps{}, err
	}
	o.buf = buf
	return main, nil
}

func (o *overlayFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	main := &in[0]
	if main.IsWritable() {
		out.Ref(main)
	} else {
		if err := o.buf.CopyFrom(main); err != nil {
			return err
		}
		out.Ref(o.buf)
	}
	blend(out, &in[1], o.x, o.y)
	return nil
}

// blend copies src into dst with its top-left luma sample at (x, y).
func blend(dst, src *rawvideo.Frame, x, y int) {
	hs, vs := dst.Format.ChromaShift()
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		ox, oy := x, y
		if i > 0 {
			ox, oy = x>>hs, y>>vs
		}
		dstW, dstH := dst.Format.PlaneSize(i, dst.Width, dst.Height)
		srcW, srcH := src.Format.PlaneSize(i, src.Width, src.Height)

		x0, x1 := max(ox, 0), min(ox+srcW, dstW)
		y0, y1 := max(oy, 0), min(oy+srcH, dstH)
		if x0 >= x1 || y0 >= y1 {
			continue
		}
		for row := y0; row < y1; row++ {
			copy(dst.Row(i, row)[x0:x1], src.Row(i, row-oy)[x0-ox:x1-ox])
		}
	}
}
