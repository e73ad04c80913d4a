package rawvideo

import (
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// Image returns an image.YCbCr view of f sharing its planes.
func (f *Frame) Image() (*image.YCbCr, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var ratio image.YCbCrSubsampleRatio
	switch f.Format {
	case PixelFormatYUV420P:
		ratio = image.YCbCrSubsampleRatio420
	case PixelFormatYUV422P:
		ratio = image.YCbCrSubsampleRatio422
	case PixelFormatYUV444P:
		ratio = image.YCbCrSubsampleRatio444
	default:
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedPixelFormat, int(f.Format))
	}
	if f.Linesize[1] != f.Linesize[2] {
		return nil, fmt.Errorf("%w: chroma linesizes differ (%d, %d)", ErrBufferSize, f.Linesize[1], f.Linesize[2])
	}

	return &image.YCbCr{
		Y:              f.Data[0],
		Cb:             f.Data[1],
		Cr:             f.Data[2],
		YStride:        f.Linesize[0],
		CStride:        f.Linesize[1],
		SubsampleRatio: ratio,
		Rect:           image.Rect(0, 0, f.Width, f.Height),
	}, nil
}

// WritePNG encodes f as an RGBA PNG, for snapshots of composed output.
func WritePNG(w io.Writer, f *Frame) error {
	src, err := f.Image()
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	dst := image.NewRGBA(src.Rect)
	xdraw.Draw(dst, dst.Rect, src, image.Point{}, xdraw.Src)
	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("png encoding failed: %w", err)
	}
	return nil
}
