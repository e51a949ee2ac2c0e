// Package config handles fieldreport configuration loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Fonts    FontsConfig    `yaml:"fonts"`
	Images   ImagesConfig   `yaml:"images"`
	Output   OutputConfig   `yaml:"output"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// GeometryConfig holds page geometry in millimetres.
type GeometryConfig struct {
	PageWidth      float64 `yaml:"page_width"`
	PageHeight     float64 `yaml:"page_height"`
	OuterMargin    float64 `yaml:"outer_margin"`
	ContentPadding float64 `yaml:"content_padding"`
	BottomMargin   float64 `yaml:"bottom_margin"`
}

// FontsConfig names TrueType files for the body and bold faces. Empty paths
// select the built-in Times-Roman and Times-Bold.
type FontsConfig struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// ImagesConfig holds photo handling settings.
type ImagesConfig struct {
	ProbeConcurrency int     `yaml:"probe_concurrency"`
	MaxPixels        int     `yaml:"max_pixels"`
	TargetWidth      float64 `yaml:"target_width"` // mm
}

// OutputConfig holds serialization and document info settings.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	Compress      bool   `yaml:"compress"`
	Deterministic bool   `yaml:"deterministic"`
	Author        string `yaml:"author"`
	Producer      string `yaml:"producer"`
}

// AssetsConfig locates the logo and other named assets.
type AssetsConfig struct {
	Dir  string `yaml:"dir"`
	Logo string `yaml:"logo"`
}

// Default returns the default configuration: a US Letter page with the
// standard report margins.
func Default() *Config {
	return &Config{
		Geometry: GeometryConfig{
			PageWidth:      215.9,
			PageHeight:     279.4,
			OuterMargin:    10,
			ContentPadding: 5,
			BottomMargin:   22,
		},
		Images: ImagesConfig{
			ProbeConcurrency: 4,
			MaxPixels:        4_000_000,
			TargetWidth:      110,
		},
		Output: OutputConfig{
			Dir:      ".",
			Compress: true,
			Producer: "fieldreport",
		},
		Assets: AssetsConfig{
			Dir:  "assets",
			Logo: "logo.png",
		},
	}
}

// Load loads configuration from a file on top of the defaults. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the defaults if path is
// empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first setting that cannot produce a usable page.
func (c *Config) Validate() error {
	g := c.Geometry
	switch {
	case g.PageWidth <= 0 || g.PageHeight <= 0:
		return fmt.Errorf("config: page size must be positive, got %gx%g", g.PageWidth, g.PageHeight)
	case g.OuterMargin < 0 || g.ContentPadding < 0 || g.BottomMargin < 0:
		return fmt.Errorf("config: margins must not be negative")
	case 2*(g.OuterMargin+g.ContentPadding) >= g.PageWidth:
		return fmt.Errorf("config: margins leave no content width")
	case g.BottomMargin >= g.PageHeight/2:
		return fmt.Errorf("config: bottom margin %g too large for page height %g", g.BottomMargin, g.PageHeight)
	}
	if (c.Fonts.Regular == "") != (c.Fonts.Bold == "") {
		return fmt.Errorf("config: fonts.regular and fonts.bold must be set together")
	}
	if c.Images.ProbeConcurrency < 1 {
		return fmt.Errorf("config: images.probe_concurrency must be at least 1")
	}
	if c.Images.MaxPixels < 0 {
		return fmt.Errorf("config: images.max_pixels must not be negative")
	}
	if c.Images.TargetWidth <= 0 || c.Images.TargetWidth >= g.PageWidth-2*(g.OuterMargin+g.ContentPadding) {
		return fmt.Errorf("config: images.target_width %g does not fit the content width", c.Images.TargetWidth)
	}
	return nil
}
