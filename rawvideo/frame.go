package rawvideo

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
)

// Frame is a planar YUV image.
//
// Planes either point into a caller buffer (FillArrays, read-only) or into
// memory the frame allocated itself (NewFrame, writable). Rows of plane i
// start every Linesize[i] bytes; only the first PlaneSize(i) bytes of a row
// are image data.
type Frame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Data     [MaxPlanes][]byte
	Linesize [MaxPlanes]int

	readOnly bool
}

// ImageSize returns the byte size of a tightly packed image (alignment 1),
// or -1 when the format or dimensions are invalid.
func ImageSize(format PixelFormat, width, height int) int {
	if !format.Valid() || width <= 0 || height <= 0 {
		return -1
	}
	size := 0
	for i := 0; i < MaxPlanes; i++ {
		w, h := format.PlaneSize(i, width, height)
		size += w * h
	}
	return size
}

// NewFrame allocates a writable, tightly packed frame.
func NewFrame(format PixelFormat, width, height int) (*Frame, error) {
	f := &Frame{}
	if err := f.Alloc(format, width, height); err != nil {
		return nil, err
	}
	return f, nil
}

// Alloc replaces the planes of f with freshly allocated memory.
func (f *Frame) Alloc(format PixelFormat, width, height int) error {
	size, err := checkedSize(format, width, height)
	if err != nil {
		return err
	}
	if err := limits.ValidateFrameBytes(size); err != nil {
		return err
	}
	f.bind(make([]byte, size), format, width, height)
	f.readOnly = false
	return nil
}

// FillArrays points the planes of f into buf without copying pixel data.
// The resulting frame is read-only: buf still belongs to the caller.
func (f *Frame) FillArrays(buf []byte, format PixelFormat, width, height int) error {
	size, err := checkedSize(format, width, height)
	if err != nil {
		return err
	}
	if len(buf) < size {
		return fmt.Errorf("%w: got %d bytes, need %d for %dx%d %s",
			ErrBufferSize, len(buf), size, width, height, format)
	}
	f.bind(buf, format, width, height)
	f.readOnly = true
	return nil
}

func checkedSize(format PixelFormat, width, height int) (int, error) {
	if !format.Valid() {
		return 0, fmt.Errorf("%w: code %d", ErrUnsupportedPixelFormat, int(format))
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return ImageSize(format, width, height), nil
}

func (f *Frame) bind(buf []byte, format PixelFormat, width, height int) {
	f.Width = width
	f.Height = height
	f.Format = format
	offset := 0
	for i := 0; i < MaxPlanes; i++ {
		w, h := format.PlaneSize(i, width, height)
		end := offset + w*h
		f.Data[i] = buf[offset:end:end]
		f.Linesize[i] = w
		offset = end
	}
}

// Ref makes f share the planes of src. It copies the slice headers and
// keeps no reference count: src stays valid after f.Unref, and nothing
// stops src's owner from reusing the planes while f still points at them.
// Callers that queue shared frames must drop them before the owner writes
// again, as compositor.Session does by flushing its sources after every
// call.
func (f *Frame) Ref(src *Frame) {
	*f = *src
}

// Unref drops f's view of the planes without touching other frames that
// share them. The Frame value can be reused afterwards.
func (f *Frame) Unref() {
	*f = Frame{}
}

// Empty reports whether f carries no image.
func (f *Frame) Empty() bool {
	return f.Data[0] == nil
}

// IsWritable reports whether the planes of f may be modified in place.
func (f *Frame) IsWritable() bool {
	return !f.Empty() && !f.readOnly
}

// SetReadOnly marks the frame planes as shared.
func (f *Frame) SetReadOnly() {
	f.readOnly = true
}

// Validate checks that every plane is large enough for the frame geometry.
func (f *Frame) Validate() error {
	if _, err := checkedSize(f.Format, f.Width, f.Height); err != nil {
		return err
	}
	for i := 0; i < MaxPlanes; i++ {
		w, h := f.Format.PlaneSize(i, f.Width, f.Height)
		if f.Linesize[i] < w {
			return fmt.Errorf("%w: plane %d linesize %d < width %d", ErrBufferSize, i, f.Linesize[i], w)
		}
		if need := (h-1)*f.Linesize[i] + w; len(f.Data[i]) < need {
			return fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrBufferSize, i, len(f.Data[i]), need)
		}
	}
	return nil
}

// Row returns the image bytes of row y of plane i.
func (f *Frame) Row(i, y int) []byte {
	w, _ := f.Format.PlaneSize(i, f.Width, f.Height)
	start := y * f.Linesize[i]
	return f.Data[i][start : start+w]
}

// CopyToBuffer packs the planes of f into dst with alignment 1 and returns
// the number of bytes written.
func (f *Frame) CopyToBuffer(dst []byte) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	size := ImageSize(f.Format, f.Width, f.Height)
	if len(dst) < size {
		return 0, fmt.Errorf("%w: destination has %d bytes, need %d", ErrBufferSize, len(dst), size)
	}

	offset := 0
	for i := 0; i < MaxPlanes; i++ {
		_, h := f.Format.PlaneSize(i, f.Width, f.Height)
		for y := 0; y < h; y++ {
			offset += copy(dst[offset:], f.Row(i, y))
		}
	}
	return offset, nil
}

// CopyFrom copies the pixels of src into f. Both frames must share geometry.
func (f *Frame) CopyFrom(src *Frame) error {
	if src.Width != f.Width || src.Height != f.Height || src.Format != f.Format {
		return fmt.Errorf("%w: cannot copy %dx%d %s into %dx%d %s", ErrBufferSize,
			src.Width, src.Height, src.Format, f.Width, f.Height, f.Format)
	}
	for i := 0; i < MaxPlanes; i++ {
		_, h := f.Format.PlaneSize(i, f.Width, f.Height)
		for y := 0; y < h; y++ {
			copy(f.Row(i, y), src.Row(i, y))
		}
	}
	return nil
}

// Fill sets every pixel of f to the given Y, U and V values.
func (f *Frame) Fill(y, u, v byte) {
	values := [MaxPlanes]byte{y, u, v}
	for i := 0; i < MaxPlanes; i++ {
		_, h := f.Format.PlaneSize(i, f.Width, f.Height)
		for row := 0; row < h; row++ {
			line := f.Row(i, row)
			for x := range line {
				line[x] = values[i]
			}
		}
	}
}

// Window points dst at the width x height region of f whose top-left luma
// sample is (x, y). No pixels are copied. x and y must be multiples of the
// chroma subsampling factors.
func (f *Frame) Window(dst *Frame, x, y, width, height int) error {
	hs, vs := f.Format.ChromaShift()
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > f.Width || y+height > f.Height {
		return fmt.Errorf("%w: window %dx%d+%d+%d outside %dx%d",
			ErrInvalidDimensions, width, height, x, y, f.Width, f.Height)
	}
	if x&(1<<hs-1) != 0 || y&(1<<vs-1) != 0 {
		return fmt.Errorf("%w: window origin %d,%d not aligned to %s chroma",
			ErrInvalidDimensions, x, y, f.Format)
	}

	out := Frame{Width: width, Height: height, Format: f.Format, readOnly: f.readOnly}
	for i := 0; i < MaxPlanes; i++ {
		px, py := x, y
		if i > 0 {
			px, py = x>>hs, y>>vs
		}
		out.Data[i] = f.Data[i][py*f.Linesize[i]+px:]
		out.Linesize[i] = f.Linesize[i]
	}
	*dst = out
	return nil
}
