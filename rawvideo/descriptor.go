package rawvideo

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
)

// VideoDescriptor is the immutable geometry and pixel format of one input.
type VideoDescriptor struct {
	Width        int
	Height       int
	PixelFormat  PixelFormat
	FramerateNum int // 0 means the default of 1/1
	FramerateDen int
}

// NewVideoDescriptor validates a caller-supplied geometry and format name.
// The frame rate defaults to 1/1.
func NewVideoDescriptor(width, height int, pixelFormat string) (VideoDescriptor, error) {
	format := GetPixelFormat(pixelFormat)
	if format == PixelFormatNone {
		return VideoDescriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, pixelFormat)
	}

	d := VideoDescriptor{
		Width:        width,
		Height:       height,
		PixelFormat:  format,
		FramerateNum: 1,
		FramerateDen: 1,
	}
	if err := d.Validate(); err != nil {
		return VideoDescriptor{}, err
	}
	return d, nil
}

// WithFramerate returns a copy of d with the given frame rate.
func (d VideoDescriptor) WithFramerate(num, den int) (VideoDescriptor, error) {
	if num <= 0 || den <= 0 {
		return d, fmt.Errorf("%w: %d/%d", ErrInvalidFramerate, num, den)
	}
	d.FramerateNum = num
	d.FramerateDen = den
	return d, nil
}

// Validate checks dimensions, format and frame rate.
func (d VideoDescriptor) Validate() error {
	if !d.PixelFormat.Valid() {
		return fmt.Errorf("%w: code %d", ErrUnsupportedPixelFormat, int(d.PixelFormat))
	}
	if err := limits.ValidateDimensions(d.Width, d.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	if d.FramerateNum < 0 || d.FramerateDen < 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidFramerate, d.FramerateNum, d.FramerateDen)
	}
	return nil
}

// Framerate returns the frame rate, substituting 1/1 for unset terms.
func (d VideoDescriptor) Framerate() (num, den int) {
	num, den = d.FramerateNum, d.FramerateDen
	if num <= 0 || den <= 0 {
		return 1, 1
	}
	return num, den
}

// TimeBase returns the time base of the stream, the inverse of its frame rate.
func (d VideoDescriptor) TimeBase() (num, den int) {
	fn, fd := d.Framerate()
	return fd, fn
}

// FrameSize returns the byte size of one tightly packed frame.
func (d VideoDescriptor) FrameSize() int {
	return ImageSize(d.PixelFormat, d.Width, d.Height)
}

// Matches reports whether f has the geometry and format of d.
func (d VideoDescriptor) Matches(f *Frame) bool {
	return f != nil && f.Width == d.Width && f.Height == d.Height && f.Format == d.PixelFormat
}

func (d VideoDescriptor) String() string {
	num, den := d.Framerate()
	return fmt.Sprintf("%dx%d %s @%d/%d", d.Width, d.Height, d.PixelFormat, num, den)
}
