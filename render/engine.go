// Package render lays report content out on fixed-size pages and produces
// the finished PDF artifact.
package render

import (
	"compress/flate"
	"context"
	"time"

	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/observability"
	"github.com/xterra/fieldreport/report"
)

// DefaultLogo is the asset name looked up for the header logo.
const DefaultLogo = "logo.png"

// Engine exports reports. It holds configuration only; every export builds
// and discards its own document, cursor and photo groups, so one Engine may
// serve concurrent exports.
type Engine struct {
	geo   layout.Geometry
	theme layout.Theme

	logger observability.Logger
	tracer observability.Tracer
	images ImageSource
	assets AssetResolver
	logo   string

	probeLimit    int
	photoWidth    float64
	compression   int
	deterministic bool
	regularFont   []byte
	boldFont      []byte
	author        string
	producer      string
	clock         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeometry replaces the Letter page geometry.
func WithGeometry(g layout.Geometry) Option {
	return func(e *Engine) {
		e.geo = g
	}
}

// WithTheme replaces the default teal theme.
func WithTheme(t layout.Theme) Option {
	return func(e *Engine) {
		e.theme = t
	}
}

// WithLogger sets the logger used for export and degradation events.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer wrapped around export phases.
func WithTracer(t observability.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithImageSource sets where photo, map and logo images come from.
func WithImageSource(src ImageSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.images = src
		}
	}
}

// WithAssets sets the resolver for the logo asset.
func WithAssets(a AssetResolver) Option {
	return func(e *Engine) {
		if a != nil {
			e.assets = a
		}
	}
}

// WithLogo sets the asset name of the header logo.
func WithLogo(name string) Option {
	return func(e *Engine) {
		e.logo = name
	}
}

// WithProbeConcurrency bounds the number of image probes in flight.
func WithProbeConcurrency(n int) Option {
	return func(e *Engine) {
		e.probeLimit = n
	}
}

// WithPhotoWidth sets the printed width of site photos in millimetres.
func WithPhotoWidth(mm float64) Option {
	return func(e *Engine) {
		e.photoWidth = mm
	}
}

// WithCompression sets the flate level for streams; 0 disables compression.
func WithCompression(level int) Option {
	return func(e *Engine) {
		e.compression = level
	}
}

// WithDeterministic drops time-dependent output so equal content yields
// equal bytes.
func WithDeterministic(on bool) Option {
	return func(e *Engine) {
		e.deterministic = on
	}
}

// WithFonts embeds TrueType programs for the regular and bold faces in
// place of Times-Roman and Times-Bold. A nil slice keeps the standard face.
func WithFonts(regular, bold []byte) Option {
	return func(e *Engine) {
		e.regularFont = regular
		e.boldFont = bold
	}
}

// WithInfo sets the author and producer written to the document info.
func WithInfo(author, producer string) Option {
	return func(e *Engine) {
		e.author = author
		e.producer = producer
	}
}

// WithClock sets the time source for the creation date and timings.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// New creates an engine with optional configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		geo:         layout.Letter(),
		theme:       layout.DefaultTheme(),
		logger:      observability.NopLogger{},
		tracer:      observability.NopTracer(),
		images:      FileImages{MaxPixels: 4_000_000},
		assets:      noAssets{},
		logo:        DefaultLogo,
		probeLimit:  4,
		photoWidth:  DefaultPhotoWidth,
		compression: flate.DefaultCompression,
		producer:    "fieldreport",
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render lays content out and returns the finished artifact. Content that
// breaks the input contract is rejected with a *report.ContractError before
// any layout starts. Missing or undecodable images degrade to placeholders
// and are logged; they never fail the export. ctx is honored until drawing
// begins.
func (e *Engine) Render(ctx context.Context, c *report.Content) (*Artifact, error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanRender)
	defer span.Finish()

	a := newAssembler(e, c)
	art, err := a.run(ctx)
	if err != nil {
		span.SetError(err)
		a.log.Error("report export failed", observability.Error("error", err))
		return nil, err
	}
	span.SetTag(observability.TagPageCount, art.Pages)
	return art, nil
}

// Export renders content and hands the artifact to sink.
func (e *Engine) Export(ctx context.Context, c *report.Content, sink Sink) (*Artifact, error) {
	art, err := e.Render(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := sink.Save(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}
