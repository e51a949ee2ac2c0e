// Package builder provides a fluent API for drawing pages in PDF user space
// (points, origin at the bottom-left) and assembling a semantic.Document.
package builder

import (
	"fmt"

	"github.com/xterra/fieldreport/contentstream"
	"github.com/xterra/fieldreport/fonts"
	"github.com/xterra/fieldreport/ir/semantic"
)

// PDFBuilder provides a fluent API for PDF construction.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	Page(index int) PageBuilder
	PageCount() int
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	RegisterFont(name string, face fonts.Face) PDFBuilder
	RegisterTrueTypeFont(name string, data []byte) PDFBuilder
	MeasureText(text string, fontSize float64, fontName string) float64
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for page construction.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder
	DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder
	Index() int
	Finish() PDFBuilder
}

// TextOptions configures text drawing. The zero Color draws black.
type TextOptions struct {
	Font     string
	FontSize float64
	Color    Color
}

// PathOptions configures path drawing.
type PathOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	LineJoin    contentstream.LineJoin
	DashPattern []float64
	Fill        bool
	Stroke      bool
}

// RectOptions configures rectangle drawing (defaults to stroke if neither fill nor stroke is set).
type RectOptions = PathOptions

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	DashPattern []float64
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Interpolate bool
}

// Color represents an RGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

// RGB builds a Color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// PaperSize is a page size in points.
type PaperSize struct {
	Width, Height float64
}

var (
	Letter = PaperSize{Width: 612, Height: 792}
	A4     = PaperSize{Width: 595.28, Height: 841.89}
)

type builderImpl struct {
	pages        []*semantic.Page
	builders     []*pageBuilderImpl
	info         *semantic.DocumentInfo
	fonts        map[string]fonts.Face
	defaultFont  string
	xobjectCount int
	xobjectNames map[*semantic.Image]string
	fontRes      map[string]*semantic.Font
	fontErr      error
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

const defaultFontResource = "F1"

// NewBuilder constructs a PDFBuilder.
func NewBuilder() PDFBuilder { return &builderImpl{} }

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{
		Index:    len(b.pages),
		MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h},
	}
	pb := &pageBuilderImpl{parent: b, page: p}
	b.pages = append(b.pages, p)
	b.builders = append(b.builders, pb)
	return pb
}

// Page returns the builder for an already allocated page, or nil when index
// is out of range.
func (b *builderImpl) Page(index int) PageBuilder {
	if index < 0 || index >= len(b.builders) {
		return nil
	}
	return b.builders[index]
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) RegisterFont(name string, face fonts.Face) PDFBuilder {
	if face == nil {
		return b
	}
	if b.fonts == nil {
		b.fonts = make(map[string]fonts.Face)
	}
	b.fonts[name] = face
	if b.defaultFont == "" {
		b.defaultFont = name
	}
	return b
}

func (b *builderImpl) RegisterTrueTypeFont(name string, data []byte) PDFBuilder {
	face, err := fonts.LoadTrueType(name, data)
	if err != nil {
		b.fontErr = fmt.Errorf("register font %q: %w", name, err)
		return b
	}
	return b.RegisterFont(name, face)
}

// MeasureText returns the advance width of text in points.
func (b *builderImpl) MeasureText(text string, fontSize float64, fontName string) float64 {
	face, _ := b.faceForName(fontName)
	if fontSize <= 0 {
		fontSize = 12
	}
	return face.Advance(text) / 1000 * fontSize
}

func (b *builderImpl) Build() (*semantic.Document, error) {
	if b.fontErr != nil {
		return nil, b.fontErr
	}
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info}, nil
}

func (p *pageBuilderImpl) Index() int { return p.page.Index }

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	if text == "" {
		return p
	}
	face, fontName := p.parent.faceForName(opts.Font)
	res := p.ensureResources()
	if _, ok := res.Fonts[fontName]; !ok {
		res.Fonts[fontName] = p.parent.fontResource(fontName, face)
	}
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}

	ops := p.ensureContentOps()
	*ops = append(*ops,
		semantic.Operation{Operator: "BT"},
		semantic.Operation{
			Operator: "Tf",
			Operands: []semantic.Operand{semantic.NameOperand{Value: fontName}, semantic.NumberOperand{Value: size}},
		},
		semantic.Operation{Operator: "rg", Operands: colorOperands(opts.Color)},
		semantic.Operation{
			Operator: "Td",
			Operands: []semantic.Operand{semantic.NumberOperand{Value: x}, semantic.NumberOperand{Value: y}},
		},
		semantic.Operation{
			Operator: "Tj",
			Operands: []semantic.Operand{semantic.StringOperand{Value: fonts.EncodeWinAnsi(text)}},
		},
		semantic.Operation{Operator: "ET"},
	)
	return p
}

func (p *pageBuilderImpl) DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder {
	if path == nil {
		return p
	}
	if !opts.Stroke && !opts.Fill {
		opts.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPathState(ops, opts)
	p.appendPathOps(ops, path)
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(opts.Fill, opts.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder {
	if r <= 0 {
		return p
	}
	return p.DrawPath(contentstream.Circle(cx, cy, r), opts)
}

func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder {
	if img == nil {
		return p
	}
	res := p.ensureResources()
	name := p.parent.imageName(img)
	if _, exists := res.XObjects[name]; !exists {
		if opts.Interpolate {
			img.Interpolate = true
		}
		res.XObjects[name] = img
	}
	w := width
	if w == 0 {
		w = float64(img.Width)
	}
	h := height
	if h == 0 {
		h = float64(img.Height)
	}

	ops := p.ensureContentOps()
	*ops = append(*ops,
		semantic.Operation{Operator: "q"},
		semantic.Operation{
			Operator: "cm",
			Operands: []semantic.Operand{
				semantic.NumberOperand{Value: w},
				semantic.NumberOperand{Value: 0},
				semantic.NumberOperand{Value: 0},
				semantic.NumberOperand{Value: h},
				semantic.NumberOperand{Value: x},
				semantic.NumberOperand{Value: y},
			},
		},
		semantic.Operation{Operator: "Do", Operands: []semantic.Operand{semantic.NameOperand{Value: name}}},
		semantic.Operation{Operator: "Q"},
	)
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	po := opts
	if !po.Stroke && !po.Fill {
		po.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{
		Operator: "re",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
			semantic.NumberOperand{Value: width},
			semantic.NumberOperand{Value: height},
		},
	})
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(po.Fill, po.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPathState(ops, PathOptions{
		StrokeColor: opts.StrokeColor,
		LineWidth:   opts.LineWidth,
		LineCap:     opts.LineCap,
		DashPattern: opts.DashPattern,
		Stroke:      true,
	})
	*ops = append(*ops,
		semantic.Operation{
			Operator: "m",
			Operands: []semantic.Operand{semantic.NumberOperand{Value: x1}, semantic.NumberOperand{Value: y1}},
		},
		semantic.Operation{
			Operator: "l",
			Operands: []semantic.Operand{semantic.NumberOperand{Value: x2}, semantic.NumberOperand{Value: y2}},
		},
		semantic.Operation{Operator: "S"},
		semantic.Operation{Operator: "Q"},
	)
	return p
}

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (b *builderImpl) faceForName(name string) (fonts.Face, string) {
	if name == "" {
		name = b.defaultFont
		if name == "" {
			name = defaultFontResource
		}
	}
	if f, ok := b.fonts[name]; ok {
		return f, name
	}
	face := fonts.Standard(fonts.TimesRoman)
	b.RegisterFont(name, face)
	return face, name
}

// fontResource returns one *semantic.Font per registered name so the writer
// emits each font object once.
func (b *builderImpl) fontResource(name string, face fonts.Face) *semantic.Font {
	if f, ok := b.fontRes[name]; ok {
		return f
	}
	if b.fontRes == nil {
		b.fontRes = make(map[string]*semantic.Font)
	}
	f := face.Font()
	b.fontRes[name] = f
	return f
}

func (b *builderImpl) imageName(img *semantic.Image) string {
	if b.xobjectNames == nil {
		b.xobjectNames = make(map[*semantic.Image]string)
	}
	if name, ok := b.xobjectNames[img]; ok {
		return name
	}
	b.xobjectCount++
	name := fmt.Sprintf("Im%d", b.xobjectCount)
	b.xobjectNames[img] = name
	return name
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.Fonts == nil {
		p.page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]*semantic.Image)
	}
	return p.page.Resources
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func (p *pageBuilderImpl) applyPathState(ops *[]semantic.Operation, opts PathOptions) {
	if opts.Fill {
		*ops = append(*ops, semantic.Operation{Operator: "rg", Operands: colorOperands(opts.FillColor)})
	}
	if !opts.Stroke {
		return
	}
	*ops = append(*ops, semantic.Operation{Operator: "RG", Operands: colorOperands(opts.StrokeColor)})
	if opts.LineWidth > 0 {
		*ops = append(*ops, semantic.Operation{Operator: "w", Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.LineWidth}}})
	}
	if opts.LineCap != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "J", Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineCap)}}})
	}
	if opts.LineJoin != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "j", Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineJoin)}}})
	}
	if len(opts.DashPattern) > 0 {
		vals := make([]semantic.Operand, 0, len(opts.DashPattern))
		for _, v := range opts.DashPattern {
			vals = append(vals, semantic.NumberOperand{Value: v})
		}
		*ops = append(*ops, semantic.Operation{
			Operator: "d",
			Operands: []semantic.Operand{semantic.ArrayOperand{Values: vals}, semantic.NumberOperand{Value: 0}},
		})
	}
}

func (p *pageBuilderImpl) appendPathOps(ops *[]semantic.Operation, path *contentstream.Path) {
	for _, sp := range path.Subpaths {
		for _, point := range sp.Points {
			switch point.Type {
			case contentstream.PathMoveTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "m",
					Operands: []semantic.Operand{semantic.NumberOperand{Value: point.X}, semantic.NumberOperand{Value: point.Y}},
				})
			case contentstream.PathLineTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "l",
					Operands: []semantic.Operand{semantic.NumberOperand{Value: point.X}, semantic.NumberOperand{Value: point.Y}},
				})
			case contentstream.PathCurveTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "c",
					Operands: []semantic.Operand{
						semantic.NumberOperand{Value: point.Control1X},
						semantic.NumberOperand{Value: point.Control1Y},
						semantic.NumberOperand{Value: point.Control2X},
						semantic.NumberOperand{Value: point.Control2Y},
						semantic.NumberOperand{Value: point.X},
						semantic.NumberOperand{Value: point.Y},
					},
				})
			}
		}
		if sp.Closed {
			*ops = append(*ops, semantic.Operation{Operator: "h"})
		}
	}
}

func colorOperands(c Color) []semantic.Operand {
	return []semantic.Operand{
		semantic.NumberOperand{Value: c.R},
		semantic.NumberOperand{Value: c.G},
		semantic.NumberOperand{Value: c.B},
	}
}

func paintOperator(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "B"
	case fill:
		return "f"
	default:
		return "S"
	}
}
