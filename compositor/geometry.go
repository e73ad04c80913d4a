package compositor

import (
	"fmt"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// Position is the canvas offset of an input's top-left corner.
type Position struct {
	X, Y int
}

// Rect is a region of an input frame, in luma samples.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Size is a display size.
type Size struct {
	Width, Height int
}

// Placement describes where and how one input is drawn on the canvas.
//
// Crop selects a region of the input before it is drawn and Size scales the
// (cropped) input to a display size. Both are optional.
type Placement struct {
	Position
	Crop *Rect
	Size *Size
}

// At returns a Placement that draws the whole input at (x, y).
func At(x, y int) Placement {
	return Placement{Position: Position{X: x, Y: y}}
}

// Placements converts plain positions to placements.
func Placements(positions ...Position) []Placement {
	out := make([]Placement, len(positions))
	for i, p := range positions {
		out[i].Position = p
	}
	return out
}

// EffectiveSize returns the size of video as drawn with placement p.
func (p Placement) EffectiveSize(video rawvideo.VideoDescriptor) (width, height int) {
	switch {
	case p.Size != nil:
		return p.Size.Width, p.Size.Height
	case p.Crop != nil:
		return p.Crop.Width, p.Crop.Height
	default:
		return video.Width, video.Height
	}
}

// CanvasBounds returns the smallest canvas containing every placed input:
// the maximum of x + width and of y + height over all inputs.
func CanvasBounds(videos []rawvideo.VideoDescriptor, placements []Placement) (width, height int) {
	for i := range videos {
		if i >= len(placements) {
			break
		}
		w, h := placements[i].EffectiveSize(videos[i])
		width = max(width, placements[i].X+w)
		height = max(height, placements[i].Y+h)
	}
	return width, height
}

// validateGeometry checks one placement against its input.
func validateGeometry(video rawvideo.VideoDescriptor, p Placement) error {
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("negative position %d,%d", p.X, p.Y)
	}
	if c := p.Crop; c != nil {
		if c.X < 0 || c.Y < 0 || c.Width <= 0 || c.Height <= 0 ||
			c.X+c.Width > video.Width || c.Y+c.Height > video.Height {
			return fmt.Errorf("crop %dx%d+%d+%d outside %dx%d input",
				c.Width, c.Height, c.X, c.Y, video.Width, video.Height)
		}
		hs, vs := video.PixelFormat.ChromaShift()
		if c.X&(1<<hs-1) != 0 || c.Y&(1<<vs-1) != 0 {
			return fmt.Errorf("crop origin %d,%d not aligned to %s chroma", c.X, c.Y, video.PixelFormat)
		}
	}
	if s := p.Size; s != nil {
		if err := limits.ValidateDimensions(s.Width, s.Height); err != nil {
			return fmt.Errorf("display size: %w", err)
		}
	}
	return nil
}
