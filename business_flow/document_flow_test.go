package businessflow

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderThumbnail(t *testing.T) {
	t.Run("ScalesDownLongestEdge", func(t *testing.T) {
		thumb, err := renderThumbnail(encodeTestPNG(t, 512, 256))
		require.NoError(t, err)

		decoded, format, err := image.Decode(bytes.NewReader(thumb))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, previewMaxEdge, decoded.Bounds().Dx())
		assert.Equal(t, previewMaxEdge/2, decoded.Bounds().Dy())
	})

	t.Run("KeepsSmallImages", func(t *testing.T) {
		thumb, err := renderThumbnail(encodeTestPNG(t, 100, 80))
		require.NoError(t, err)

		decoded, _, err := image.Decode(bytes.NewReader(thumb))
		require.NoError(t, err)
		assert.Equal(t, 100, decoded.Bounds().Dx())
		assert.Equal(t, 80, decoded.Bounds().Dy())
	})

	t.Run("RejectsNonImageBytes", func(t *testing.T) {
		_, err := renderThumbnail([]byte("not an image"))
		assert.Error(t, err)
	})
}
