package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 128})
			}
		}
	}
	return img
}

func opaque(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		ext    string
		src    *image.NRGBA
		encode func(io.Writer, image.Image) error
		exact  bool
	}{
		{".tga", checker(8, 4), tga.Encode, true},
		{".png", checker(8, 4), png.Encode, true},
		{".bmp", opaque(8, 4), bmp.Encode, true},
		{".jpg", opaque(8, 4), func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) }, false},
		{".JPEG", opaque(8, 4), func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, tt.src))
			path := filepath.Join(t.TempDir(), "T_Check"+tt.ext)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

			img, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
			if tt.exact {
				assert.Equal(t, tt.src.Pix, img.Pix)
				return
			}
			got := img.NRGBAAt(3, 2)
			assert.InDelta(t, 200, int(got.R), 12)
			assert.InDelta(t, 40, int(got.G), 12)
			assert.Equal(t, uint8(255), got.A)
		})
	}
}

func TestDecodeUsesExtensionNotContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(2, 2)))

	img, err := Decode(buf.Bytes(), "png")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))

	_, err = Decode(buf.Bytes(), ".tga")
	assert.Error(t, err)

	_, err = Decode(buf.Bytes(), ".dds")
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.tga"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.bmp")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestIsTexture(t *testing.T) {
	assert.True(t, IsTexture("a/b/T_Rock.TGA"))
	assert.True(t, IsTexture("x.jpeg"))
	assert.False(t, IsTexture("SM_Rock.umesh"))
	assert.False(t, IsTexture("noext"))
}

func TestFit(t *testing.T) {
	src := checker(64, 16)
	assert.Same(t, src, Fit(src, 0))
	assert.Same(t, src, Fit(src, 64))

	small := Fit(src, 32)
	assert.Equal(t, 32, small.Bounds().Dx())
	assert.Equal(t, 8, small.Bounds().Dy())

	tall := Fit(checker(4, 40), 10)
	assert.Equal(t, 1, tall.Bounds().Dx())
	assert.Equal(t, 10, tall.Bounds().Dy())
}

func TestToNRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 2, 4, 4))
	gray.SetGray(2, 2, color.Gray{Y: 200})
	n := ToNRGBA(gray)
	assert.Equal(t, image.Rect(0, 0, 2, 2), n.Bounds())
	assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 255}, n.NRGBAAt(0, 0))
}
