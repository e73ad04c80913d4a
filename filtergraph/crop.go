package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// cropFilter selects a rectangle of its input without copying pixels.
//
// Options w and h default to the input size; x and y default to centering
// the rectangle and are rounded down to the chroma grid.
type cropFilter struct {
	w, h, x, y int
	outW, outH int
}

func init() {
	register(&filterInfo{
		name:      "crop",
		shorthand: []string{"w", "h", "x", "y"},
		aliases:   map[string]string{"out_w": "w", "out_h": "h"},
		create:    newCropFilter,
	})
}

func newCropFilter(opts options) (filter, error) {
	c := &cropFilter{}
	var err error
	if c.w, err = opts.int("w", 0); err != nil {
		return nil, err
	}
	if c.h, err = opts.int("h", 0); err != nil {
		return nil, err
	}
	if c.x, err = opts.int("x", -1); err != nil {
		return nil, err
	}
	if c.y, err = opts.int("y", -1); err != nil {
		return nil, err
	}
	if c.w < 0 || c.h < 0 || c.x < -1 || c.y < -1 {
		return nil, fmt.Errorf("invalid rectangle %d:%d:%d:%d", c.w, c.h, c.x, c.y)
	}
	return c, nil
}

func (c *cropFilter) numInputs() int  { return 1 }
func (c *cropFilter) numOutputs() int { return 1 }

func (c *cropFilter) configure(in []LinkProps) (LinkProps, error) {
	out := in[0]
	if c.w > 0 {
		out.Width = c.w
	}
	if c.h > 0 {
		out.Height = c.h
	}
	if c.x < 0 {
		c.x = (in[0].Width - out.Width) / 2
	}
	if c.y < 0 {
		c.y = (in[0].Height - out.Height) / 2
	}
	hs, vs := out.Format.ChromaShift()
	c.x &^= 1<<hs - 1
	c.y &^= 1<<vs - 1

	if c.x < 0 || c.y < 0 || c.x+out.Width > in[0].Width || c.y+out.Height > in[0].Height {
		return LinkProps{}, fmt.Errorf("crop area %dx%d at %d,%d is outside the input %dx%d",
			out.Width, out.Height, c.x, c.y, in[0].Width, in[0].Height)
	}
	c.outW, c.outH = out.Width, out.Height
	return out, nil
}

func (c *cropFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	return in[0].Window(out, c.x, c.y, c.outW, c.outH)
}
