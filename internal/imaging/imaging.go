// Package imaging decodes uploads and derives the fixed-size JPEG renditions
// stored for every asset.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

const (
	ThumbMaxEdge   = 200
	DisplayMaxEdge = 1600
	Quality        = 82

	// maxPixels guards against decompression bombs: a small file that
	// declares enormous dimensions.
	maxPixels = 80_000_000
)

const outputMIME = "image/jpeg"

// Decode returns the image and its format name. Data that is not a supported
// image yields a *domain.ValidationError.
func Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.Invalid("unsupported or corrupt image: %v", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", domain.Invalid("image has no pixels")
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, "", domain.Invalid("image is %dx%d, too many pixels", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.Invalid("failed to decode %s: %v", format, err)
	}
	return img, format, nil
}

// Bound returns the size of a w×h image fitted within maxEdge on its longer
// side. Images already within the bound are returned unchanged.
func Bound(w, h, maxEdge int) (int, int) {
	longer := max(w, h)
	if longer <= maxEdge {
		return w, h
	}
	scale := float64(maxEdge) / float64(longer)
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return nw, nh
}

// RenditionSize returns the pixel size of a rendition derived from a w×h
// original, matching what Renditions produces.
func RenditionSize(kind domain.RenditionKind, w, h int) (int, int) {
	dw, dh := Bound(w, h, DisplayMaxEdge)
	if kind == domain.RenditionThumb {
		return Bound(dw, dh, ThumbMaxEdge)
	}
	return dw, dh
}

// Scale fits img within maxEdge and flattens any transparency onto white,
// since the output format has no alpha channel.
func Scale(img image.Image, maxEdge int) *image.RGBA {
	src := img.Bounds()
	w, h := Bound(src.Dx(), src.Dy(), maxEdge)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Render scales and re-encodes img as a rendition of the given kind.
func Render(img image.Image, kind domain.RenditionKind) (domain.Rendition, error) {
	edge, err := maxEdge(kind)
	if err != nil {
		return domain.Rendition{}, err
	}
	scaled := Scale(img, edge)
	data, err := Encode(scaled)
	if err != nil {
		return domain.Rendition{}, err
	}
	b := scaled.Bounds()
	return domain.Rendition{
		Kind:     kind,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: outputMIME,
		Data:     data,
	}, nil
}

// Renditions derives the display copy from the original and the thumbnail
// from the display copy, which keeps thumbnailing cheap for large uploads.
func Renditions(img image.Image) (thumb, display domain.Rendition, err error) {
	scaled := Scale(img, DisplayMaxEdge)
	data, err := Encode(scaled)
	if err != nil {
		return thumb, display, err
	}
	b := scaled.Bounds()
	display = domain.Rendition{
		Kind:     domain.RenditionDisplay,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: outputMIME,
		Data:     data,
	}

	thumb, err = Render(scaled, domain.RenditionThumb)
	if err != nil {
		return domain.Rendition{}, domain.Rendition{}, err
	}
	return thumb, display, nil
}

func maxEdge(kind domain.RenditionKind) (int, error) {
	switch kind {
	case domain.RenditionThumb:
		return ThumbMaxEdge, nil
	case domain.RenditionDisplay:
		return DisplayMaxEdge, nil
	default:
		return 0, errors.New("unknown rendition kind: " + string(kind))
	}
}
