package rawvideo

import (
	"fmt"
	"strconv"
)

// PixelFormat identifies a planar YUV layout.
//
// The numeric values follow the FFmpeg pixel format enumeration so that
// graph descriptions can carry them as plain integers (pix_fmt=0).
type PixelFormat int

const (
	// PixelFormatNone marks an unsupported or unknown format.
	PixelFormatNone PixelFormat = -1
	// PixelFormatYUV420P is planar YUV 4:2:0 (I420).
	PixelFormatYUV420P PixelFormat = 0
	// PixelFormatYUV422P is planar YUV 4:2:2 (I422).
	PixelFormatYUV422P PixelFormat = 4
	// PixelFormatYUV444P is planar YUV 4:4:4 (I444).
	PixelFormatYUV444P PixelFormat = 5
)

// MaxPlanes is the number of planes of every supported format.
const MaxPlanes = 3

// GetPixelFormat maps a caller-facing format name to its format code.
//
// The vocabulary is closed and case-sensitive: "I420", "I422" and "I444".
// Every other name yields PixelFormatNone.
func GetPixelFormat(name string) PixelFormat {
	switch name {
	case "I420":
		return PixelFormatYUV420P
	case "I422":
		return PixelFormatYUV422P
	case "I444":
		return PixelFormatYUV444P
	default:
		return PixelFormatNone
	}
}

// ParsePixelFormat accepts the spellings used inside graph descriptions:
// numeric codes ("0"), FFmpeg names ("yuv420p") and caller names ("I420").
func ParsePixelFormat(s string) (PixelFormat, error) {
	if code, err := strconv.Atoi(s); err == nil {
		p := PixelFormat(code)
		if !p.Valid() {
			return PixelFormatNone, fmt.Errorf("%w: code %d", ErrUnsupportedPixelFormat, code)
		}
		return p, nil
	}

	switch s {
	case "yuv420p":
		return PixelFormatYUV420P, nil
	case "yuv422p":
		return PixelFormatYUV422P, nil
	case "yuv444p":
		return PixelFormatYUV444P, nil
	}

	if p := GetPixelFormat(s); p != PixelFormatNone {
		return p, nil
	}
	return PixelFormatNone, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, s)
}

// Valid reports whether p is one of the supported planar formats.
func (p PixelFormat) Valid() bool {
	switch p {
	case PixelFormatYUV420P, PixelFormatYUV422P, PixelFormatYUV444P:
		return true
	default:
		return false
	}
}

// String returns the FFmpeg name of the format.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatYUV420P:
		return "yuv420p"
	case PixelFormatYUV422P:
		return "yuv422p"
	case PixelFormatYUV444P:
		return "yuv444p"
	default:
		return "none"
	}
}

// Name returns the caller-facing short code ("I420"), or "" when unsupported.
func (p PixelFormat) Name() string {
	switch p {
	case PixelFormatYUV420P:
		return "I420"
	case PixelFormatYUV422P:
		return "I422"
	case PixelFormatYUV444P:
		return "I444"
	default:
		return ""
	}
}

// ChromaShift returns the log2 horizontal and vertical chroma subsampling.
func (p PixelFormat) ChromaShift() (h, v uint) {
	switch p {
	case PixelFormatYUV420P:
		return 1, 1
	case PixelFormatYUV422P:
		return 1, 0
	default:
		return 0, 0
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	if !p.Valid() {
		return 0
	}
	return MaxPlanes
}

// PlaneSize returns the dimensions of plane i of a width x height image.
// Chroma dimensions are rounded up, so odd sizes keep their last column/row.
func (p PixelFormat) PlaneSize(i, width, height int) (w, h int) {
	if i == 0 {
		return width, height
	}
	hs, vs := p.ChromaShift()
	return ceilShift(width, hs), ceilShift(height, vs)
}

func ceilShift(v int, s uint) int {
	return (v + (1 << s) - 1) >> s
}
