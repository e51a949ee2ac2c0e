package render

import (
	"compress/flate"
	"fmt"
	"os"

	"github.com/xterra/fieldreport/config"
	"github.com/xterra/fieldreport/layout"
)

// ConfigOptions translates a loaded configuration into engine options.
// imageRoot is the directory relative image references are read from,
// usually the directory of the content file. Font files are read here so a
// bad path fails before any export starts.
func ConfigOptions(cfg *config.Config, imageRoot string) ([]Option, error) {
	g := cfg.Geometry
	opts := []Option{
		WithGeometry(layout.Geometry{
			PageWidth:      g.PageWidth,
			PageHeight:     g.PageHeight,
			OuterMargin:    g.OuterMargin,
			ContentPadding: g.ContentPadding,
			BottomMargin:   g.BottomMargin,
		}),
		WithImageSource(FileImages{Root: imageRoot, MaxPixels: cfg.Images.MaxPixels}),
		WithAssets(DirAssets{Dir: cfg.Assets.Dir}),
		WithLogo(cfg.Assets.Logo),
		WithProbeConcurrency(cfg.Images.ProbeConcurrency),
		WithPhotoWidth(cfg.Images.TargetWidth),
		WithDeterministic(cfg.Output.Deterministic),
		WithInfo(cfg.Output.Author, cfg.Output.Producer),
	}
	if cfg.Output.Compress {
		opts = append(opts, WithCompression(flate.BestCompression))
	} else {
		opts = append(opts, WithCompression(0))
	}

	if cfg.Fonts.Regular != "" {
		regular, err := os.ReadFile(cfg.Fonts.Regular)
		if err != nil {
			return nil, fmt.Errorf("read regular font: %w", err)
		}
		bold, err := os.ReadFile(cfg.Fonts.Bold)
		if err != nil {
			return nil, fmt.Errorf("read bold font: %w", err)
		}
		opts = append(opts, WithFonts(regular, bold))
	}
	return opts, nil
}
