package builder

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register decoders
	_ "image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/xterra/fieldreport/ir/semantic"
)

// FilterDCT marks image data that is a baseline JPEG stream copied as-is.
const FilterDCT = "DCTDecode"

// ImageFromBytes decodes encoded image data into a *semantic.Image. JPEG data
// in a gray or RGB color model within maxPixels is passed through unchanged;
// everything else is decoded, downscaled to at most maxPixels pixels (when
// maxPixels > 0) and re-encoded as raw RGB with an optional soft mask.
func ImageFromBytes(data []byte, maxPixels int) (*semantic.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has empty bounds %dx%d", cfg.Width, cfg.Height)
	}
	withinLimit := maxPixels <= 0 || cfg.Width*cfg.Height <= maxPixels
	if format == "jpeg" && withinLimit {
		if cs, ok := jpegColorSpace(cfg.ColorModel); ok {
			return &semantic.Image{
				Width:            cfg.Width,
				Height:           cfg.Height,
				ColorSpace:       cs,
				BitsPerComponent: 8,
				Data:             data,
				Filter:           FilterDCT,
			}, nil
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", format, err)
	}
	return FromImage(Downscale(img, maxPixels)), nil
}

func jpegColorSpace(m color.Model) (string, bool) {
	switch m {
	case color.GrayModel:
		return "DeviceGray", true
	case color.YCbCrModel, color.RGBAModel:
		return "DeviceRGB", true
	}
	return "", false
}

// Downscale returns src resized so its pixel count does not exceed maxPixels,
// preserving the aspect ratio. src is returned unchanged when it already fits
// or maxPixels is not positive.
func Downscale(src image.Image, maxPixels int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxPixels <= 0 || w*h <= maxPixels {
		return src
	}
	scale := math.Sqrt(float64(maxPixels) / float64(w*h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// FromImage converts a Go image.Image to *semantic.Image as 8-bit DeviceRGB,
// attaching a DeviceGray soft mask when any pixel is not fully opaque.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false

	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Data:             alpha,
		}
	}
	return img
}
