package testing

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/vcompositor/compositor"
	"github.com/opd-ai/vcompositor/interfaces"
	"github.com/opd-ai/vcompositor/rawvideo"
)

var _ interfaces.FrameComposer = (*SimulatedComposer)(nil)

func newTestConfig() *interfaces.ComposerConfig {
	return &interfaces.ComposerConfig{
		UseSimulation:      true,
		MaxInputs:          8,
		MaxDescriptionSize: 4096,
	}
}

// patterned returns a packed frame whose samples vary by position.
func patterned(format rawvideo.PixelFormat, w, h int, seed byte) []byte {
	buf := make([]byte, rawvideo.ImageSize(format, w, h))
	for i := range buf {
		buf[i] = seed + byte(i*7)
	}
	return buf
}

func TestSimulatedComposerQuadrants(t *testing.T) {
	videos := []compositor.VideoSpec{
		{Width: 32, Height: 16, PixelFormat: "I420"},
		{Width: 32, Height: 16, PixelFormat: "I420"},
		{Width: 32, Height: 16, PixelFormat: "I420"},
	}
	placements := []compositor.Placement{compositor.At(0, 0), compositor.At(32, 0), compositor.At(0, 16)}
	sim, err := NewSimulatedComposer(videos, placements, newTestConfig())
	require.NoError(t, err)

	w, h := sim.Canvas()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, 3, sim.InputCount())
	assert.Equal(t, rawvideo.PixelFormatYUV420P, sim.PixelFormat())
	assert.True(t, sim.IsSimulation())

	colors := []rawvideo.Color{
		rawvideo.RGBToYUV(255, 0, 0),
		rawvideo.RGBToYUV(0, 255, 0),
		rawvideo.RGBToYUV(0, 0, 255),
	}
	frames := make([][]byte, len(colors))
	for i, c := range colors {
		frames[i], err = SolidFrame(rawvideo.PixelFormatYUV420P, 32, 16, c)
		require.NoError(t, err)
	}

	out, err := sim.Compose(frames)
	require.NoError(t, err)
	format := sim.PixelFormat()
	assert.NoError(t, CheckRegion(out, format, w, h, compositor.Rect{X: 0, Y: 0, Width: 32, Height: 16}, colors[0]))
	assert.NoError(t, CheckRegion(out, format, w, h, compositor.Rect{X: 32, Y: 0, Width: 32, Height: 16}, colors[1]))
	assert.NoError(t, CheckRegion(out, format, w, h, compositor.Rect{X: 0, Y: 16, Width: 32, Height: 16}, colors[2]))
	assert.NoError(t, CheckRegion(out, format, w, h, compositor.Rect{X: 32, Y: 16, Width: 32, Height: 16}, rawvideo.Black))

	log := sim.GetComposeLog()
	require.Len(t, log, 1)
	assert.True(t, log[0].Success)
	assert.Equal(t, 3, log[0].Frames)
	assert.Equal(t, len(out), log[0].Bytes)
	assert.Equal(t, rawvideo.Digest(out), log[0].Digest)
}

func TestSimulatedComposerMatchesSession(t *testing.T) {
	tests := []struct {
		name       string
		videos     []compositor.VideoSpec
		placements []compositor.Placement
	}{
		{
			name: "overlapping I420",
			videos: []compositor.VideoSpec{
				{Width: 40, Height: 30, PixelFormat: "I420"},
				{Width: 17, Height: 11, PixelFormat: "I420"},
				{Width: 24, Height: 24, PixelFormat: "I420"},
			},
			placements: []compositor.Placement{compositor.At(0, 0), compositor.At(30, 24), compositor.At(10, 6)},
		},
		{
			name: "offset first input I422",
			videos: []compositor.VideoSpec{
				{Width: 20, Height: 20, PixelFormat: "I422"},
				{Width: 9, Height: 31, PixelFormat: "I422"},
			},
			placements: []compositor.Placement{compositor.At(4, 3), compositor.At(22, 0)},
		},
		{
			name: "cropped I444",
			videos: []compositor.VideoSpec{
				{Width: 16, Height: 16, PixelFormat: "I444"},
				{Width: 16, Height: 16, PixelFormat: "I444"},
			},
			placements: []compositor.Placement{
				compositor.At(0, 0),
				{Position: compositor.Position{X: 5, Y: 7}, Crop: &compositor.Rect{X: 3, Y: 1, Width: 9, Height: 6}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := NewSimulatedComposer(tt.videos, tt.placements, newTestConfig())
			require.NoError(t, err)
			session, err := compositor.NewSession(tt.videos, tt.placements)
			require.NoError(t, err)
			defer session.Close()

			sw, sh := sim.Canvas()
			gw, gh := session.Canvas()
			require.Equal(t, gw, sw)
			require.Equal(t, gh, sh)

			frames := make([][]byte, len(tt.videos))
			for i, v := range tt.videos {
				frames[i] = patterned(rawvideo.GetPixelFormat(v.PixelFormat), v.Width, v.Height, byte(40*i))
			}
			want, err := session.Compose(frames)
			require.NoError(t, err)
			got, err := sim.Compose(frames)
			require.NoError(t, err)
			assert.Equal(t, rawvideo.Digest(want), rawvideo.Digest(got))
		})
	}
}

func TestNewSimulatedComposerErrors(t *testing.T) {
	i420 := compositor.VideoSpec{Width: 16, Height: 16, PixelFormat: "I420"}
	tests := []struct {
		name       string
		videos     []compositor.VideoSpec
		placements []compositor.Placement
		config     *interfaces.ComposerConfig
		reason     error
	}{
		{"nil config", []compositor.VideoSpec{i420}, []compositor.Placement{compositor.At(0, 0)}, nil, compositor.ErrCountMismatch},
		{"count mismatch", []compositor.VideoSpec{i420, i420}, []compositor.Placement{compositor.At(0, 0)}, newTestConfig(), compositor.ErrCountMismatch},
		{"over limit", []compositor.VideoSpec{i420, i420}, []compositor.Placement{compositor.At(0, 0), compositor.At(0, 0)},
			&interfaces.ComposerConfig{MaxInputs: 1, MaxDescriptionSize: 4096}, compositor.ErrCountMismatch},
		{"unknown format", []compositor.VideoSpec{{Width: 16, Height: 16, PixelFormat: "RGB24"}}, []compositor.Placement{compositor.At(0, 0)},
			newTestConfig(), compositor.ErrUnsupportedPixelFormat},
		{"mixed formats", []compositor.VideoSpec{i420, {Width: 16, Height: 16, PixelFormat: "I444"}},
			[]compositor.Placement{compositor.At(0, 0), compositor.At(0, 0)}, newTestConfig(), compositor.ErrUnsupportedPixelFormat},
		{"display size", []compositor.VideoSpec{i420}, []compositor.Placement{{Size: &compositor.Size{Width: 8, Height: 8}}},
			newTestConfig(), compositor.ErrInvalidGeometry},
		{"odd position", []compositor.VideoSpec{i420}, []compositor.Placement{compositor.At(3, 0)}, newTestConfig(), compositor.ErrInvalidGeometry},
		{"negative position", []compositor.VideoSpec{i420}, []compositor.Placement{compositor.At(0, -2)}, newTestConfig(), compositor.ErrInvalidGeometry},
		{"crop outside", []compositor.VideoSpec{i420}, []compositor.Placement{{Crop: &compositor.Rect{X: 8, Width: 10, Height: 4}}},
			newTestConfig(), compositor.ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := NewSimulatedComposer(tt.videos, tt.placements, tt.config)
			assert.Nil(t, sim)
			assert.ErrorIs(t, err, tt.reason)
			assert.True(t, compositor.IsConstructionError(err))
		})
	}
}

func TestSimulatedComposerCallErrors(t *testing.T) {
	videos := []compositor.VideoSpec{{Width: 8, Height: 8, PixelFormat: "I420"}, {Width: 8, Height: 8, PixelFormat: "I420"}}
	sim, err := NewSimulatedComposer(videos, []compositor.Placement{compositor.At(0, 0), compositor.At(8, 0)}, newTestConfig())
	require.NoError(t, err)
	frame, err := SolidFrame(rawvideo.PixelFormatYUV420P, 8, 8, rawvideo.Black)
	require.NoError(t, err)

	_, err = sim.Compose([][]byte{frame})
	assert.ErrorIs(t, err, compositor.ErrFrameCount)

	_, err = sim.Compose([][]byte{frame, frame[1:]})
	assert.ErrorIs(t, err, compositor.ErrFeed)
	var cerr *compositor.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, cerr.Index)

	_, err = sim.Compose([][]byte{frame, frame})
	require.NoError(t, err)

	log := sim.GetComposeLog()
	require.Len(t, log, 3)
	assert.False(t, log[0].Success)
	assert.False(t, log[1].Success)
	assert.True(t, log[2].Success)

	sim.ClearComposeLog()
	assert.Empty(t, sim.GetComposeLog())

	require.NoError(t, sim.Close())
	assert.ErrorIs(t, sim.Close(), compositor.ErrSessionClosed)
	_, err = sim.Compose([][]byte{frame, frame})
	assert.ErrorIs(t, err, compositor.ErrSessionClosed)
}

func TestSimulatedComposerConcurrentLogAccess(t *testing.T) {
	videos := []compositor.VideoSpec{{Width: 8, Height: 8, PixelFormat: "I444"}}
	sim, err := NewSimulatedComposer(videos, []compositor.Placement{compositor.At(0, 0)}, newTestConfig())
	require.NoError(t, err)
	frame := patterned(rawvideo.PixelFormatYUV444P, 8, 8, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = sim.Compose([][]byte{frame})
		}()
		go func() {
			defer wg.Done()
			_ = sim.GetComposeLog()
		}()
	}
	wg.Wait()

	assert.Len(t, sim.GetComposeLog(), 8)
	assert.Equal(t, 8, sim.Config().MaxInputs)
}
