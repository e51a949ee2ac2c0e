// Package layout is the page machinery of a report export: millimetre
// geometry measured from the top of the page, text measurement and wrapping,
// the page cursor with its break protocol, and the deferred draw queue.
package layout

import (
	"fmt"

	"github.com/xterra/fieldreport/builder"
	"github.com/xterra/fieldreport/ir/semantic"
)

// baselineRatio places the baseline below the top of a text line, as a
// fraction of the font size.
const baselineRatio = 0.8

// Document is a drawing surface in millimetres over a builder.PDFBuilder.
// Like a pen plotter it keeps a current page, font and text color; text
// calls use whatever is current.
type Document struct {
	b       builder.PDFBuilder
	geo     Geometry
	measure *Measurer
	page    builder.PageBuilder
	index   int // 1-based, 0 before the first page
	font    Font
	color   builder.Color
}

// NewDocument wraps b. No page exists until AddPage.
func NewDocument(b builder.PDFBuilder, geo Geometry, m *Measurer) *Document {
	return &Document{b: b, geo: geo, measure: m, font: Font{Face: FaceRegular, Size: 11}}
}

func (d *Document) Geometry() Geometry          { return d.geo }
func (d *Document) Measurer() *Measurer         { return d.measure }
func (d *Document) Builder() builder.PDFBuilder { return d.b }

// AddPage appends a page, makes it current and returns its 1-based number.
func (d *Document) AddPage() int {
	d.page = d.b.NewPage(d.geo.PageWidth*mmToPt, d.geo.PageHeight*mmToPt)
	d.index = d.b.PageCount()
	return d.index
}

// SetPage makes an existing page current.
func (d *Document) SetPage(n int) error {
	pb := d.b.Page(n - 1)
	if pb == nil {
		return fmt.Errorf("page %d out of range 1-%d", n, d.b.PageCount())
	}
	d.page = pb
	d.index = n
	return nil
}

// Page returns the current 1-based page number.
func (d *Document) Page() int { return d.index }

func (d *Document) PageCount() int { return d.b.PageCount() }

func (d *Document) SetFont(f Font) { d.font = f }
func (d *Document) Font() Font     { return d.font }

func (d *Document) SetTextColor(c builder.Color) { d.color = c }
func (d *Document) TextColor() builder.Color     { return d.color }

const mmToPt = 72 / 25.4

func (d *Document) x(mm float64) float64 { return mm * mmToPt }
func (d *Document) y(mm float64) float64 { return (d.geo.PageHeight - mm) * mmToPt }

// Text draws s with its line top at y.
func (d *Document) Text(s string, x, y float64) {
	if d.page == nil || s == "" {
		return
	}
	baseline := y + d.font.Size*PtToMM*baselineRatio
	d.page.DrawText(s, d.x(x), d.y(baseline), builder.TextOptions{
		Font:     d.font.Face,
		FontSize: d.font.Size,
		Color:    d.color,
	})
}

// TextRight draws s so that it ends at right.
func (d *Document) TextRight(s string, right, y float64) {
	d.Text(s, right-d.measure.Width(s, d.font), y)
}

// TextCenter draws s centered on cx.
func (d *Document) TextCenter(s string, cx, y float64) {
	d.Text(s, cx-d.measure.Width(s, d.font)/2, y)
}

// Lines draws wrapped lines from y downward and returns the Y below them.
func (d *Document) Lines(gl GlyphLines, x, y float64) float64 {
	for i, line := range gl.Lines {
		d.Text(line, x, y+float64(i)*gl.LineHeight)
	}
	return y + gl.Height
}

// LinesCentered draws each wrapped line centered on cx.
func (d *Document) LinesCentered(gl GlyphLines, cx, y float64) float64 {
	for i, line := range gl.Lines {
		d.TextCenter(line, cx, y+float64(i)*gl.LineHeight)
	}
	return y + gl.Height
}

// Line strokes a straight rule; width is in millimetres.
func (d *Document) Line(x1, y1, x2, y2 float64, c builder.Color, width float64) {
	if d.page == nil {
		return
	}
	d.page.DrawLine(d.x(x1), d.y(y1), d.x(x2), d.y(y2), builder.LineOptions{StrokeColor: c, LineWidth: width * mmToPt})
}

// Rect strokes a rectangle whose top left corner is (x, y).
func (d *Document) Rect(x, y, w, h float64, c builder.Color, width float64) {
	if d.page == nil {
		return
	}
	d.page.DrawRectangle(d.x(x), d.y(y+h), w*mmToPt, h*mmToPt, builder.RectOptions{Stroke: true, StrokeColor: c, LineWidth: width * mmToPt})
}

// Circle draws a circle outline, filled with the same color when filled.
func (d *Document) Circle(cx, cy, r float64, filled bool, c builder.Color, width float64) {
	if d.page == nil {
		return
	}
	d.page.DrawCircle(d.x(cx), d.y(cy), r*mmToPt, builder.PathOptions{
		Stroke:      true,
		StrokeColor: c,
		LineWidth:   width * mmToPt,
		Fill:        filled,
		FillColor:   c,
	})
}

// Image places img with its top left corner at (x, y), scaled to w by h.
func (d *Document) Image(img *semantic.Image, x, y, w, h float64) {
	if d.page == nil || img == nil {
		return
	}
	d.page.DrawImage(img, d.x(x), d.y(y+h), w*mmToPt, h*mmToPt, builder.ImageOptions{Interpolate: true})
}

// FitBox scales natural dimensions to fit inside maxW by maxH, keeping the
// aspect ratio.
func FitBox(naturalW, naturalH, maxW, maxH float64) (w, h float64) {
	if naturalW <= 0 || naturalH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	scale := maxW / naturalW
	if s := maxH / naturalH; s < scale {
		scale = s
	}
	return naturalW * scale, naturalH * scale
}
