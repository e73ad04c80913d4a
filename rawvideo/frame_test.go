package rawvideo

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPackedBuffer returns a packed frame buffer whose bytes count upward.
func createPackedBuffer(format PixelFormat, width, height int) []byte {
	buf := make([]byte, ImageSize(format, width, height))
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return buf
}

func TestNewVideoDescriptor(t *testing.T) {
	d, err := NewVideoDescriptor(640, 360, "I420")
	require.NoError(t, err)
	assert.Equal(t, PixelFormatYUV420P, d.PixelFormat)
	num, den := d.Framerate()
	assert.Equal(t, 1, num)
	assert.Equal(t, 1, den)
	assert.Equal(t, 640*360*3/2, d.FrameSize())

	_, err = NewVideoDescriptor(640, 360, "RGB")
	assert.ErrorIs(t, err, ErrUnsupportedPixelFormat)

	_, err = NewVideoDescriptor(0, 360, "I420")
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestVideoDescriptorTimeBase(t *testing.T) {
	d, err := NewVideoDescriptor(320, 180, "I444")
	require.NoError(t, err)

	d, err = d.WithFramerate(30000, 1001)
	require.NoError(t, err)
	num, den := d.TimeBase()
	assert.Equal(t, 1001, num)
	assert.Equal(t, 30000, den)

	_, err = d.WithFramerate(0, 1)
	assert.ErrorIs(t, err, ErrInvalidFramerate)

	// A zero-valued frame rate falls back to 1/1.
	d.FramerateNum, d.FramerateDen = 0, 0
	num, den = d.TimeBase()
	assert.Equal(t, 1, num)
	assert.Equal(t, 1, den)
}

func TestFillArraysRoundTrip(t *testing.T) {
	for _, format := range []PixelFormat{PixelFormatYUV420P, PixelFormatYUV422P, PixelFormatYUV444P} {
		t.Run(format.String(), func(t *testing.T) {
			buf := createPackedBuffer(format, 33, 17)

			var f Frame
			require.NoError(t, f.FillArrays(buf, format, 33, 17))
			assert.False(t, f.IsWritable())

			out := make([]byte, len(buf))
			n, err := f.CopyToBuffer(out)
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, buf, out)
		})
	}
}

func TestFillArraysDoesNotCopy(t *testing.T) {
	buf := createPackedBuffer(PixelFormatYUV420P, 4, 4)
	var f Frame
	require.NoError(t, f.FillArrays(buf, PixelFormatYUV420P, 4, 4))

	buf[0] = 200
	assert.Equal(t, byte(200), f.Data[0][0])
}

func TestFillArraysErrors(t *testing.T) {
	var f Frame
	err := f.FillArrays(make([]byte, 10), PixelFormatYUV420P, 4, 4)
	assert.ErrorIs(t, err, ErrBufferSize)

	err = f.FillArrays(make([]byte, 100), PixelFormatNone, 4, 4)
	assert.ErrorIs(t, err, ErrUnsupportedPixelFormat)

	err = f.FillArrays(make([]byte, 100), PixelFormatYUV420P, 0, 4)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestCopyToBufferTooSmall(t *testing.T) {
	f, err := NewFrame(PixelFormatYUV420P, 8, 8)
	require.NoError(t, err)
	_, err = f.CopyToBuffer(make([]byte, 10))
	assert.ErrorIs(t, err, ErrBufferSize)
}

func TestRefAndUnref(t *testing.T) {
	f, err := NewFrame(PixelFormatYUV444P, 2, 2)
	require.NoError(t, err)
	assert.True(t, f.IsWritable())

	var ref Frame
	ref.Ref(f)
	ref.Data[0][0] = 9
	assert.Equal(t, byte(9), f.Data[0][0])

	ref.Unref()
	assert.True(t, ref.Empty())
	assert.False(t, ref.IsWritable())

	// No counting: the source keeps its planes after every ref is dropped.
	assert.False(t, f.Empty())
	assert.NoError(t, f.Validate())
	assert.Equal(t, byte(9), f.Data[0][0])
}

func TestWindow(t *testing.T) {
	src, err := NewFrame(PixelFormatYUV420P, 8, 8)
	require.NoError(t, err)
	src.Fill(10, 20, 30)
	src.Data[0][2*8+4] = 99

	var w Frame
	require.NoError(t, src.Window(&w, 4, 2, 4, 4))
	assert.Equal(t, 4, w.Width)
	assert.Equal(t, byte(99), w.Data[0][0])
	assert.Equal(t, 8, w.Linesize[0])
	require.NoError(t, w.Validate())

	packed := make([]byte, ImageSize(PixelFormatYUV420P, 4, 4))
	_, err = w.CopyToBuffer(packed)
	require.NoError(t, err)
	assert.Equal(t, byte(99), packed[0])
	assert.Equal(t, byte(20), packed[16])

	assert.ErrorIs(t, src.Window(&w, 1, 0, 4, 4), ErrInvalidDimensions)
	assert.ErrorIs(t, src.Window(&w, 6, 0, 4, 4), ErrInvalidDimensions)
}

func TestCopyFrom(t *testing.T) {
	a, err := NewFrame(PixelFormatYUV422P, 6, 4)
	require.NoError(t, err)
	b, err := NewFrame(PixelFormatYUV422P, 6, 4)
	require.NoError(t, err)
	a.Fill(1, 2, 3)

	require.NoError(t, b.CopyFrom(a))
	assert.Equal(t, a.Digest(), b.Digest())

	c, err := NewFrame(PixelFormatYUV420P, 6, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, c.CopyFrom(a), ErrBufferSize)
}

func TestDigest(t *testing.T) {
	buf := createPackedBuffer(PixelFormatYUV420P, 8, 8)
	var f Frame
	require.NoError(t, f.FillArrays(buf, PixelFormatYUV420P, 8, 8))

	assert.Equal(t, Digest(buf), f.Digest())
	assert.Len(t, Digest(buf), 64)

	other := append([]byte(nil), buf...)
	other[5]++
	assert.NotEqual(t, Digest(buf), Digest(other))
}

func TestWritePNG(t *testing.T) {
	f, err := NewFrame(PixelFormatYUV420P, 16, 8)
	require.NoError(t, err)
	f.Fill(255, 128, 128)

	var out bytes.Buffer
	require.NoError(t, WritePNG(&out, f))

	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Greater(t, r>>8, uint32(250))
	assert.Greater(t, g>>8, uint32(250))
	assert.Greater(t, b>>8, uint32(250))
}
