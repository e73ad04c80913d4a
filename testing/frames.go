package testing

import (
	"fmt"

	"github.com/opd-ai/vcompositor/compositor"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// SolidFrame returns a tightly packed frame of a single color.
func SolidFrame(format rawvideo.PixelFormat, width, height int, c rawvideo.Color) ([]byte, error) {
	f, err := rawvideo.NewFrame(format, width, height)
	if err != nil {
		return nil, err
	}
	f.Fill(c.Y, c.U, c.V)
	buf := make([]byte, rawvideo.ImageSize(format, width, height))
	if _, err := f.CopyToBuffer(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// FillRegion paints the luma rectangle r of a packed frame, and the chroma
// samples covering it, with color c.
func FillRegion(buf []byte, format rawvideo.PixelFormat, width, height int, r compositor.Rect, c rawvideo.Color) error {
	f, err := view(buf, format, width, height)
	if err != nil {
		return err
	}
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 || r.X+r.Width > width || r.Y+r.Height > height {
		return fmt.Errorf("%w: region %dx%d+%d+%d outside %dx%d frame",
			rawvideo.ErrInvalidDimensions, r.Width, r.Height, r.X, r.Y, width, height)
	}

	values := [rawvideo.MaxPlanes]byte{c.Y, c.U, c.V}
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		x0, y0, x1, y1 := planeRect(format, i, r)
		for y := y0; y < y1; y++ {
			row := f.Row(i, y)
			for x := x0; x < x1; x++ {
				row[x] = values[i]
			}
		}
	}
	return nil
}

// CheckRegion returns an error naming the first sample of the luma
// rectangle r, or of its chroma counterpart, that differs from color c.
// Chroma samples only partly covered by r are skipped.
func CheckRegion(buf []byte, format rawvideo.PixelFormat, width, height int, r compositor.Rect, c rawvideo.Color) error {
	f, err := view(buf, format, width, height)
	if err != nil {
		return err
	}

	hs, vs := format.ChromaShift()
	values := [rawvideo.MaxPlanes]byte{c.Y, c.U, c.V}
	for i := 0; i < rawvideo.MaxPlanes; i++ {
		x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
		if i > 0 {
			x0, y0 = ceilShift(x0, hs), ceilShift(y0, vs)
			x1, y1 = x1>>hs, y1>>vs
		}
		for y := y0; y < y1; y++ {
			row := f.Row(i, y)
			for x := x0; x < x1; x++ {
				if row[x] != values[i] {
					return fmt.Errorf("plane %d sample %d,%d is %d, want %d", i, x, y, row[x], values[i])
				}
			}
		}
	}
	return nil
}

// PlaneAt returns sample (x, y) of plane i of a packed frame, in that
// plane's own coordinates.
func PlaneAt(buf []byte, format rawvideo.PixelFormat, width, height, plane, x, y int) (byte, error) {
	f, err := view(buf, format, width, height)
	if err != nil {
		return 0, err
	}
	if plane < 0 || plane >= rawvideo.MaxPlanes {
		return 0, fmt.Errorf("%w: plane %d", rawvideo.ErrInvalidDimensions, plane)
	}
	pw, ph := format.PlaneSize(plane, width, height)
	if x < 0 || y < 0 || x >= pw || y >= ph {
		return 0, fmt.Errorf("%w: sample %d,%d outside %dx%d plane %d",
			rawvideo.ErrInvalidDimensions, x, y, pw, ph, plane)
	}
	return f.Row(plane, y)[x], nil
}

func view(buf []byte, format rawvideo.PixelFormat, width, height int) (*rawvideo.Frame, error) {
	var f rawvideo.Frame
	if err := f.FillArrays(buf, format, width, height); err != nil {
		return nil, err
	}
	return &f, nil
}

// planeRect maps a luma rectangle to the samples of plane i touching it.
func planeRect(format rawvideo.PixelFormat, i int, r compositor.Rect) (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = r.X, r.Y, r.X+r.Width, r.Y+r.Height
	if i == 0 {
		return
	}
	hs, vs := format.ChromaShift()
	return x0 >> hs, y0 >> vs, ceilShift(x1, hs), ceilShift(y1, vs)
}

func ceilShift(v int, s uint) int {
	return (v + 1<<s - 1) >> s
}
