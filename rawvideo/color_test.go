package rawvideo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBToYUV(t *testing.T) {
	assert.Equal(t, Black, RGBToYUV(0, 0, 0))
	assert.Equal(t, Color{Y: 235, U: 128, V: 128}, RGBToYUV(255, 255, 255))

	red := RGBToYUV(255, 0, 0)
	assert.Equal(t, byte(81), red.Y)
	assert.Equal(t, byte(240), red.V)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"black", Black},
		{"WHITE", Color{Y: 235, U: 128, V: 128}},
		{"0xFFFFFF", Color{Y: 235, U: 128, V: 128}},
		{"#000000", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}

	for _, bad := range []string{"", "purple", "FFFFFF", "0xFFF", "#GGGGGG"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
