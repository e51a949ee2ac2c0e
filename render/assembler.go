package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xterra/fieldreport/builder"
	"github.com/xterra/fieldreport/fonts"
	"github.com/xterra/fieldreport/ir/raw"
	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/observability"
	"github.com/xterra/fieldreport/report"
	"github.com/xterra/fieldreport/writer"
)

// sectionSpacing separates consecutive blocks on a page.
const sectionSpacing = 4.0

// assembler is the state of one export. It is never reused.
type assembler struct {
	e   *Engine
	c   *report.Content
	log observability.Logger

	b      builder.PDFBuilder
	m      *layout.Measurer
	doc    *layout.Document
	queue  *layout.Queue
	cur    *layout.Cursor
	header *HeaderRenderer
}

func newAssembler(e *Engine, c *report.Content) *assembler {
	id := uuid.NewString()
	return &assembler{
		e:     e,
		c:     c,
		log:   e.logger.With(observability.String("export_id", id)),
		b:     builder.NewBuilder(),
		queue: &layout.Queue{},
	}
}

func (a *assembler) run(ctx context.Context) (*Artifact, error) {
	start := a.e.clock()
	if err := a.c.Validate(); err != nil {
		return nil, err
	}
	if err := a.registerFonts(); err != nil {
		return nil, err
	}

	sites := a.c.SitePhotos()
	sizes, err := a.probe(ctx, sites)
	if err != nil {
		return nil, err
	}

	// Drawing runs to completion once started.
	ctx = context.WithoutCancel(ctx)
	lctx, span := a.e.tracer.StartSpan(ctx, observability.SpanLayout)
	a.layout(lctx, sites, sizes)
	span.SetTag(observability.TagPageCount, a.doc.PageCount())
	if err := a.cur.Err(); err != nil {
		span.SetError(err)
		span.Finish()
		return nil, fmt.Errorf("layout: %w", err)
	}
	span.Finish()
	if err := a.cur.StampFooters(); err != nil {
		return nil, fmt.Errorf("stamp footers: %w", err)
	}

	a.b.SetInfo(a.info())
	doc, err := a.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	data, err := a.write(ctx, doc)
	if err != nil {
		return nil, err
	}

	art := &Artifact{Name: report.SuggestedFilename(a.c), Data: data, Pages: len(doc.Pages)}
	a.log.Info("report exported",
		observability.String("file", art.Name),
		observability.Int("pages", art.Pages),
		observability.Int("photos", len(a.c.Photos)),
		observability.Int("bytes", len(data)),
		observability.Duration("elapsed", a.e.clock().Sub(start)),
	)
	return art, nil
}

// registerFonts binds the regular and bold faces to the builder and the
// measurer under the theme's resource names.
func (a *assembler) registerFonts() error {
	faces := map[string]fonts.Metrics{}
	for _, f := range []struct {
		name     string
		standard string
		data     []byte
	}{
		{a.e.theme.Regular, fonts.TimesRoman, a.e.regularFont},
		{a.e.theme.Bold, fonts.TimesBold, a.e.boldFont},
	} {
		var face fonts.Face = fonts.Standard(f.standard)
		if len(f.data) > 0 {
			tt, err := fonts.LoadTrueType(f.name, f.data)
			if err != nil {
				return fmt.Errorf("font %s: %w", f.name, err)
			}
			face = tt
		}
		a.b.RegisterFont(f.name, face)
		faces[f.name] = face
	}
	a.m = layout.NewMeasurer(faces)
	return nil
}

// probe reads the natural size of every site photo before layout starts.
func (a *assembler) probe(ctx context.Context, sites []int) ([]probeResult, error) {
	ctx, span := a.e.tracer.StartSpan(ctx, observability.SpanProbeImages)
	defer span.Finish()
	span.SetTag(observability.TagPhotoCount, len(sites))

	refs := make([]report.ImageRef, len(sites))
	for i, idx := range sites {
		refs[i] = a.c.Photos[idx].Image
	}
	sizes, err := probeAll(ctx, a.e.images, refs, a.e.probeLimit)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("probe images: %w", err)
	}
	for i, r := range sizes {
		if !r.OK() {
			a.log.Warn("photo image unavailable, drawing placeholder",
				observability.String("photo", a.c.Photos[sites[i]].Label),
				observability.Error("error", r.Err),
			)
		}
	}
	return sizes, nil
}

func (a *assembler) layout(ctx context.Context, sites []int, sizes []probeResult) {
	geo, theme := a.e.geo, a.e.theme
	a.doc = layout.NewDocument(a.b, geo, a.m)
	a.doc.AddPage()
	a.header = NewHeaderRenderer(theme, geo, a.m, a.c.Title, a.loadLogo(ctx))
	y := a.header.Render(a.doc, geo.OuterMargin, a.c.Fields, HeaderOptions{DrawTopLine: true, DrawBottomLine: true})
	a.cur = layout.NewCursor(a.doc, a.queue, theme, a.header.Running(), y)
	a.doc.SetFont(theme.Body())
	a.doc.SetTextColor(theme.Text)

	sections := NewSectionRenderer(a.cur, theme)
	for _, s := range a.c.Sections {
		sections.Render(s.Title, s.PlainBody(), SectionOptions{
			SpaceBefore:  sectionSpacing,
			Box:          s.Box,
			ForceNewPage: s.ForceNewPage,
		})
	}

	a.checklist()
	a.photos(ctx, sites, sizes)
	a.maps(ctx)
	a.cur.Finish()
}

func (a *assembler) checklist() {
	items := a.c.Checklist
	if len(items) == 0 {
		return
	}
	cr := NewChecklistRenderer(a.e.theme, a.e.geo, a.m, a.c.ChecklistTitle)
	cur, body := a.cur, a.e.theme.Body()
	cur.Advance(sectionSpacing)

	total := cr.Measure(items)
	if !cur.Fits(total) && !cur.AtPageTop() {
		cur.BreakPage(body)
	}
	if cur.Fits(total) {
		cur.Y = cr.Render(a.doc, cur.Y, items)
		return
	}
	// Taller than a page: split between rows and repeat the caption.
	cur.Y = cr.Caption(a.doc, cur.Y)
	for _, it := range items {
		if !cur.Fits(cr.RowHeight(it)) {
			cur.BreakPage(body)
			cur.Y = cr.Caption(a.doc, cur.Y)
		}
		cur.Y = cr.Row(a.doc, cur.Y, it)
	}
}

// photos draws every site photo group on a page of its own.
func (a *assembler) photos(ctx context.Context, sites []int, sizes []probeResult) {
	if len(sites) == 0 {
		return
	}
	pl := NewPhotoLayout(a.e.theme, a.e.geo, a.m, a.e.photoWidth)
	available := a.cur.FreshSpace()
	pos := make(map[int]int, len(sites))
	for i, idx := range sites {
		pos[idx] = i
	}

	for _, g := range pl.Plan(a.c.Photos, sites, sizes, available) {
		a.cur.BreakPage(a.e.theme.Body())
		placed := make([]placedEntry, len(g.Entries))
		for i, idx := range g.Entries {
			entry := a.c.Photos[idx]
			size := sizes[pos[idx]]
			placed[i] = placedEntry{Entry: entry, ImageHeight: pl.imageHeight(size, available)}
			if size.OK() {
				placed[i].Image = a.loadImage(ctx, entry)
			}
		}
		pl.Draw(a.cur, g, placed, available)
	}
}

func (a *assembler) maps(ctx context.Context) {
	mr := NewMapRenderer(a.e.theme, a.e.geo, a.m)
	for _, idx := range a.c.Maps() {
		entry := a.c.Photos[idx]
		var img *semantic.Image
		if entry.Image == "" {
			a.log.Warn("map image unavailable, drawing placeholder",
				observability.String("photo", entry.Label),
				observability.Error("error", errNoImage),
			)
		} else {
			img = a.loadImage(ctx, entry)
		}
		mr.Render(a.cur, entry, img)
	}
}

func (a *assembler) loadImage(ctx context.Context, entry report.PhotoEntry) *semantic.Image {
	img, err := a.e.images.Load(ctx, entry.Image)
	if err != nil {
		a.log.Warn("image could not be embedded, drawing placeholder",
			observability.String("photo", entry.Label),
			observability.Error("error", err),
		)
		return nil
	}
	return img
}

// loadLogo returns nil when the asset is missing so the header draws its
// text fallback.
func (a *assembler) loadLogo(ctx context.Context) *semantic.Image {
	path, err := a.e.assets.Resolve(ctx, a.e.logo)
	if err == nil {
		var img *semantic.Image
		if img, err = a.e.images.Load(ctx, report.ImageRef(path)); err == nil {
			return img
		}
	}
	a.log.Warn("logo unavailable, using text fallback",
		observability.String("asset", a.e.logo),
		observability.Error("error", err),
	)
	return nil
}

func (a *assembler) info() *semantic.DocumentInfo {
	info := &semantic.DocumentInfo{
		Title:    a.c.Title,
		Author:   a.e.author,
		Creator:  "fieldreport",
		Producer: a.e.producer,
	}
	if project, ok := a.c.Field("Project Name"); ok {
		info.Subject = report.PlainText(project)
	}
	return info
}

func (a *assembler) write(ctx context.Context, doc *semantic.Document) ([]byte, error) {
	ctx, span := a.e.tracer.StartSpan(ctx, observability.SpanWrite)
	defer span.Finish()

	stats := &writeStats{}
	w := (&writer.WriterBuilder{}).WithInterceptor(stats).Build()
	cfg := writer.Config{
		Version:       writer.PDF17,
		Compression:   a.e.compression,
		Deterministic: a.e.deterministic,
	}
	if !a.e.deterministic {
		cfg.CreationDate = a.e.clock()
	}
	var buf bytes.Buffer
	if err := w.Write(ctx, doc, &buf, cfg); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	span.SetTag(observability.TagObjectCount, stats.objects)
	span.SetTag(observability.TagBytes, buf.Len())
	return buf.Bytes(), nil
}

// writeStats counts the indirect objects the writer emits.
type writeStats struct {
	objects int
}

func (s *writeStats) BeforeWrite(context.Context, raw.Object) error { return nil }

func (s *writeStats) AfterWrite(context.Context, raw.Object, int64) error {
	s.objects++
	return nil
}
