package rawvideo

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a limited-range BT.601 YUV triple.
type Color struct {
	Y, U, V byte
}

// Black is the fill used for uncovered canvas areas.
var Black = Color{Y: 16, U: 128, V: 128}

var namedColors = map[string][3]int{
	"black": {0, 0, 0},
	"white": {255, 255, 255},
	"gray":  {128, 128, 128},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
	"blue":  {0, 0, 255},
}

// RGBToYUV converts full-range RGB to limited-range BT.601 YUV.
func RGBToYUV(r, g, b uint8) Color {
	fr, fg, fb := float64(r), float64(g), float64(b)
	y := 16 + (65.481*fr+128.553*fg+24.966*fb)/255
	u := 128 + (-37.797*fr-74.203*fg+112.0*fb)/255
	v := 128 + (112.0*fr-93.786*fg-18.214*fb)/255
	return Color{Y: clampByte(y), U: clampByte(u), V: clampByte(v)}
}

// ParseColor accepts a color name ("black", "white", "gray", "red",
// "green", "blue") or a hex triple ("0xRRGGBB" or "#RRGGBB").
func ParseColor(s string) (Color, error) {
	if rgb, ok := namedColors[strings.ToLower(s)]; ok {
		return RGBToYUV(uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])), nil
	}

	var hex string
	switch {
	case strings.HasPrefix(s, "0x"):
		hex = s[2:]
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return RGBToYUV(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
