package compositor

import (
	"fmt"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// descBuffer accumulates a description up to limit bytes while counting the
// length the complete text would have. Each piece is formatted into scratch
// and only the part that still fits is copied to out.
type descBuffer struct {
	out     []byte
	scratch []byte
	limit   int
	total   int
}

func (b *descBuffer) printf(format string, args ...interface{}) {
	b.scratch = fmt.Appendf(b.scratch[:0], format, args...)
	b.total += len(b.scratch)
	if room := b.limit - len(b.out); room > 0 {
		b.out = append(b.out, b.scratch[:min(room, len(b.scratch))]...)
	}
}

// WriteDescription writes the graph description for videos placed by
// placements into dst. At most len(dst) bytes are written; the return value
// is the length of the full description, so the output was truncated when
// it exceeds len(dst).
func WriteDescription(dst []byte, videos []rawvideo.VideoDescriptor, placements []Placement) int {
	b := &descBuffer{out: make([]byte, 0, len(dst)), limit: len(dst)}
	writeDescription(b, videos, placements)
	copy(dst, b.out)
	return b.total
}

// BuildDescription returns the graph description, capped at maxSize bytes,
// and the length of the full description.
func BuildDescription(videos []rawvideo.VideoDescriptor, placements []Placement, maxSize int) (string, int) {
	b := &descBuffer{limit: max(maxSize, 0)}
	writeDescription(b, videos, placements)
	return string(b.out), b.total
}

// writeDescription emits one buffer source per input, an optional
// preprocessing chain per input, the canvas pad of input 1, the overlay
// chain of inputs 2..n and the sink:
//
//	buffer=video_size=640x360:pix_fmt=0:time_base=1/1[in_1];
//	buffer=video_size=640x360:pix_fmt=0:time_base=1/1[in_2];
//	[in_1]pad=640:720:0:0[mid_1];
//	[mid_1][in_2] overlay=x=0:y=360[out];
//	[out] buffersink
func writeDescription(b *descBuffer, videos []rawvideo.VideoDescriptor, placements []Placement) {
	n := min(len(videos), len(placements))
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		v := videos[i]
		num, den := v.TimeBase()
		b.printf("buffer=video_size=%dx%d:pix_fmt=%d:time_base=%d/%d[in_%d];\n",
			v.Width, v.Height, int(v.PixelFormat), num, den, i+1)
	}

	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = fmt.Sprintf("in_%d", i+1)
		if writePreprocessing(b, i, videos[i], placements[i], videos[0].PixelFormat) {
			labels[i] = fmt.Sprintf("pre_%d", i+1)
		}
	}

	width, height := CanvasBounds(videos[:n], placements[:n])
	first := placements[0]
	b.printf("[%s]pad=%d:%d:%d:%d", labels[0], width, height, first.X, first.Y)

	for i := 1; i < n; i++ {
		p := placements[i]
		b.printf("[mid_%d];\n[mid_%d][%s] overlay=x=%d:y=%d", i, i, labels[i], p.X, p.Y)
	}
	b.printf("[out];\n[out] buffersink")
}

// writePreprocessing emits "[in_i]crop=..,scale=..,format=..[pre_i];" for
// inputs that are cropped, resized or in a different format than the
// canvas. It reports whether a chain was written.
func writePreprocessing(b *descBuffer, i int, v rawvideo.VideoDescriptor, p Placement, canvasFormat rawvideo.PixelFormat) bool {
	var steps []string
	w, h := v.Width, v.Height
	if c := p.Crop; c != nil {
		steps = append(steps, fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y))
		w, h = c.Width, c.Height
	}
	if s := p.Size; s != nil && (s.Width != w || s.Height != h) {
		steps = append(steps, fmt.Sprintf("scale=%d:%d", s.Width, s.Height))
	}
	if v.PixelFormat != canvasFormat {
		steps = append(steps, "format=pix_fmts="+canvasFormat.String())
	}
	if len(steps) == 0 {
		return false
	}

	b.printf("[in_%d]", i+1)
	for j, step := range steps {
		if j > 0 {
			b.printf(",")
		}
		b.printf("%s", step)
	}
	b.printf("[pre_%d];\n", i+1)
	return true
}
