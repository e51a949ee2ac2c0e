package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/xterra/fieldreport/builder"
	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/report"
)

// Size is the natural size of an image in pixels.
type Size struct {
	Width, Height int
}

// ImageSource resolves image references. Probe only reports natural
// dimensions; Load returns the embeddable image. Implementations must be
// safe for concurrent Probe calls.
type ImageSource interface {
	Probe(ctx context.Context, ref report.ImageRef) (Size, error)
	Load(ctx context.Context, ref report.ImageRef) (*semantic.Image, error)
}

// FileImages reads images from disk (paths relative to Root) or from data:
// URIs. JPEG, PNG, GIF, BMP, TIFF and WebP are understood.
type FileImages struct {
	Root      string
	MaxPixels int
}

func (f FileImages) Probe(ctx context.Context, ref report.ImageRef) (Size, error) {
	data, err := f.read(ctx, ref)
	if err != nil {
		return Size{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("probe %s: %w", describeRef(ref), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Size{}, fmt.Errorf("probe %s: empty image %dx%d", describeRef(ref), cfg.Width, cfg.Height)
	}
	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}

func (f FileImages) Load(ctx context.Context, ref report.ImageRef) (*semantic.Image, error) {
	data, err := f.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := builder.ImageFromBytes(data, f.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", describeRef(ref), err)
	}
	return img, nil
}

func (f FileImages) read(ctx context.Context, ref report.ImageRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, errNoImage
	}
	if ref.IsDataURI() {
		return decodeDataURI(string(ref))
	}
	path := string(ref)
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// decodeDataURI accepts data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}

func describeRef(ref report.ImageRef) string {
	if ref.IsDataURI() {
		return "data URI"
	}
	return string(ref)
}
