package rawvideo

import "errors"

// Sentinel errors for raw video operations.
var (
	// ErrUnsupportedPixelFormat indicates a pixel format outside the supported set.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

	// ErrInvalidDimensions indicates a non-positive or oversized width or height.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrInvalidFramerate indicates a non-positive frame rate term.
	ErrInvalidFramerate = errors.New("invalid frame rate")

	// ErrBufferSize indicates a buffer that does not match the image layout.
	ErrBufferSize = errors.New("buffer size does not match image layout")
)
