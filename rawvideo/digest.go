package rawvideo

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a hex BLAKE2b-256 fingerprint of a packed frame buffer.
// It is used to correlate composed frames in logs and tests.
func Digest(buf []byte) string {
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Digest fingerprints the image data of f, ignoring row padding, so two
// frames with equal pixels hash equally regardless of their linesizes.
func (f *Frame) Digest() string {
	h, _ := blake2b.New256(nil)
	for i := 0; i < MaxPlanes; i++ {
		_, rows := f.Format.PlaneSize(i, f.Width, f.Height)
		for y := 0; y < rows; y++ {
			h.Write(f.Row(i, y))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
