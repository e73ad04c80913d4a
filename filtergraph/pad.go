package filtergraph

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// padFilter places its input on a larger canvas filled with a solid color.
//
// Options: width and height of the canvas (0 keeps the input size), x and y
// of the input's top-left corner, and color (default black). x and y are
// rounded down to the chroma grid.
type padFilter struct {
	width, height int
	x, y          int
	color         rawvideo.Color

	buf *rawvideo.Frame
}

func init() {
	register(&filterInfo{
		name:      "pad",
		shorthand: []string{"width", "height", "x", "y", "color"},
		aliases:   map[string]string{"w": "width", "h": "height"},
		create:    newPadFilter,
	})
}

func newPadFilter(opts options) (filter, error) {
	p := &padFilter{color: rawvideo.Black}
	var err error
	for _, o := range []struct {
		key string
		dst *int
	}{{"width", &p.width}, {"height", &p.height}, {"x", &p.x}, {"y", &p.y}} {
		if *o.dst, err = opts.int(o.key, 0); err != nil {
			return nil, err
		}
		if *o.dst < 0 {
			return nil, fmt.Errorf("option %s: negative value %d", o.key, *o.dst)
		}
	}
	if s, ok := opts["color"]; ok {
		if p.color, err = rawvideo.ParseColor(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *padFilter) numInputs() int  { return 1 }
func (p *padFilter) numOutputs() int { return 1 }

func (p *padFilter) configure(in []LinkProps) (LinkProps, error) {
	out := in[0]
	if p.width > 0 {
		out.Width = p.width
	}
	if p.height > 0 {
		out.Height = p.height
	}
	hs, vs := out.Format.ChromaShift()
	p.x &^= 1<<hs - 1
	p.y &^= 1<<vs - 1

	if err := limits.ValidateDimensions(out.Width, out.Height); err != nil {
		return LinkProps{}, err
	}
	if p.x+in[0].Width > out.Width || p.y+in[0].Height > out.Height {
		return LinkProps{}, fmt.Errorf("input %dx%d at %d,%d is not within the padded area %dx%d",
			in[0].Width, in[0].Height, p.x, p.y, out.Width, out.Height)
	}

	buf, err := rawvideo.NewFrame(out.Format, out.Width, out.Height)
	if err != nil {
		return LinkProps{}, err
	}
	p.buf = buf
	return out, nil
}

func (p *padFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	src := &in[0]
	hs, vs := src.Format.ChromaShift()
	values := [rawvideo.MaxPlanes]byte{p.color.Y, p.color.U, p.color.V}

	for i := 0; i < rawvideo.MaxPlanes; i++ {
		px, py := p.x, p.y
		if i > 0 {
			px, py = p.x>>hs, p.y>>vs
		}
		srcW, srcH := src.Format.PlaneSize(i, src.Width, src.Height)
		_, dstH := p.buf.Format.PlaneSize(i, p.buf.Width, p.buf.Height)

		for y := 0; y < dstH; y++ {
			line := p.buf.Row(i, y)
			if y < py || y >= py+srcH {
				fillBytes(line, values[i])
				continue
			}
			fillBytes(line[:px], values[i])
			copy(line[px:px+srcW], src.Row(i, y-py))
			fillBytes(line[px+srcW:], values[i])
		}
	}
	out.Ref(p.buf)
	return nil
}

func fillBytes(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
