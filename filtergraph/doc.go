// Package filtergraph implements a pull-based video filter graph driven by a
// textual description.
//
// # Description Language
//
// A description is a list of chains separated by ';'. Filters inside a chain
// are separated by ',' and feed each other in order. Link labels in square
// brackets connect chains:
//
//	buffer=video_size=640x360:pix_fmt=0:time_base=1/1[in_1];
//	buffer=video_size=640x360:pix_fmt=0:time_base=1/1[in_2];
//	[in_1]pad=640:720:0:0[mid_1];
//	[mid_1][in_2] overlay=x=0:y=360[out];
//	[out] buffersink
//
// Filter arguments are key=value pairs or positional values separated by
// ':'. A backslash escapes the next character and single quotes protect
// separators.
//
// # Building a Graph
//
//	g, err := filtergraph.Build(desc, 2)
//	if err != nil {
//	    return err
//	}
//	defer g.Free()
//
//	for i, src := range g.Sources() {
//	    src.AddFrame(&frames[i], filtergraph.FlagKeepRef)
//	}
//	var out rawvideo.Frame
//	err = g.Sink().GetFrame(&out)
//
// Build runs Alloc, Parse and Config and checks that the graph has the
// requested number of buffer sources and exactly one buffersink.
//
// # Filters
//
//   - buffer: input endpoint (video_size, pix_fmt, time_base)
//   - buffersink: output endpoint (pix_fmts)
//   - null: passes frames through
//   - pad: places the input on a larger canvas (width, height, x, y, color)
//   - overlay: draws the second input over the first (x, y)
//   - crop: selects a rectangle without copying (w, h, x, y)
//   - scale: bilinear resize (w, h)
//   - format: pixel format conversion (pix_fmts)
//   - eq: brightness, contrast and saturation
//
// Filters reuse their output buffers, so a frame returned by GetFrame is
// only valid until the next GetFrame call.
package filtergraph
