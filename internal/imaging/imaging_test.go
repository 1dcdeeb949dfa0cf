package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBound(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"landscape over cap", 3000, 2000, 1600, 1600, 1067},
		{"portrait over cap", 2000, 3000, 200, 133, 200},
		{"square over cap", 400, 400, 200, 200, 200},
		{"within cap", 800, 600, 1600, 800, 600},
		{"exactly at cap", 1600, 900, 1600, 1600, 900},
		{"thin strip keeps one pixel", 5000, 2, 200, 200, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Bound(tt.w, tt.h, tt.max)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, _, err := Decode([]byte("%PDF-1.4 not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDecodePNG(t *testing.T) {
	img, format, err := Decode(encodePNG(t, solid(30, 20, color.Black)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestRenditionsPreserveAspectRatio(t *testing.T) {
	src := solid(3000, 2000, color.RGBA{R: 200, G: 120, B: 40, A: 255})

	thumb, display, err := Renditions(src)
	require.NoError(t, err)

	assert.Equal(t, domain.RenditionDisplay, display.Kind)
	assert.Equal(t, 1600, display.Width)
	assert.Equal(t, 1067, display.Height)
	assert.InDelta(t, 1.5, float64(display.Width)/float64(display.Height), 0.01)

	assert.Equal(t, domain.RenditionThumb, thumb.Kind)
	assert.LessOrEqual(t, max(thumb.Width, thumb.Height), ThumbMaxEdge)
	assert.InDelta(t, 1.5, float64(thumb.Width)/float64(thumb.Height), 0.01)

	for _, r := range []domain.Rendition{thumb, display} {
		assert.Equal(t, "image/jpeg", r.MimeType)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(r.Data))
		require.NoError(t, err)
		assert.Equal(t, r.Width, cfg.Width)
		assert.Equal(t, r.Height, cfg.Height)
	}
}

func TestRenditionSizeMatchesRenditions(t *testing.T) {
	thumb, display, err := Renditions(solid(2400, 900, color.Black))
	require.NoError(t, err)

	w, h := RenditionSize(domain.RenditionDisplay, 2400, 900)
	assert.Equal(t, display.Width, w)
	assert.Equal(t, display.Height, h)

	w, h = RenditionSize(domain.RenditionThumb, 2400, 900)
	assert.Equal(t, thumb.Width, w)
	assert.Equal(t, thumb.Height, h)
}

func TestSmallImageIsReencodedUnscaled(t *testing.T) {
	src := solid(120, 80, color.White)

	thumb, display, err := Renditions(src)
	require.NoError(t, err)
	assert.Equal(t, 120, thumb.Width)
	assert.Equal(t, 80, thumb.Height)
	assert.Equal(t, 120, display.Width)
	assert.Equal(t, 80, display.Height)

	_, err = jpeg.Decode(bytes.NewReader(display.Data))
	assert.NoError(t, err)
}

func TestScaleFlattensTransparencyOntoWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	out := Scale(src, 200)
	r, g, b, a := out.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(solid(2, 2, color.White), "original")
	assert.Error(t, err)
}
