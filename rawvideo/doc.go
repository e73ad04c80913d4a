// Package rawvideo describes decoded planar YUV video.
//
// It provides the pixel format vocabulary, per-input video descriptors and
// the Frame type that the filter graph and compositor exchange.
//
// # Pixel Formats
//
// Callers name formats with the short codes "I420", "I422" and "I444":
//
//	format := rawvideo.GetPixelFormat("I420") // PixelFormatYUV420P
//	if format == rawvideo.PixelFormatNone {
//	    // reject the stream
//	}
//
// Unknown names never fall back to a valid format.
//
// # Frames
//
// A Frame either borrows a caller buffer or owns its memory:
//
//	var in rawvideo.Frame
//	err := in.FillArrays(payload, rawvideo.PixelFormatYUV420P, 640, 360) // no copy
//
//	out, err := rawvideo.NewFrame(rawvideo.PixelFormatYUV420P, 640, 720)
//	n, err := out.CopyToBuffer(dst) // packed Y, U, V planes
//
// Packed buffers use alignment 1: the Y plane followed by U and V, with
// chroma dimensions rounded up for odd sizes.
//
// # Snapshots
//
// WritePNG converts a frame to RGBA and encodes it, which is useful when
// inspecting composed output.
package rawvideo
