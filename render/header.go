package render

import (
	"math"
	"strings"

	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

// LogoFallback is drawn in place of the logo when the asset cannot be loaded.
const LogoFallback = "X-TERRA"

const (
	logoBoxW    = 45.0
	logoBoxH    = 18.0
	titleTop    = 4.0 // below startY
	ruleGap     = 3.0
	headerGap   = 4.0 // below the top rule when no fields follow
	columnGap   = 6.0
	labelGap    = 1.5
	fieldRowGap = 1.5
	minValueW   = 25.0
)

// HeaderOptions selects the rules drawn around the header block.
type HeaderOptions struct {
	DrawTopLine    bool
	DrawBottomLine bool
}

// HeaderRenderer draws the logo, the centered title and the label:value
// info block.
type HeaderRenderer struct {
	theme layout.Theme
	geo   layout.Geometry
	m     *layout.Measurer
	title string
	logo  *semantic.Image
}

// NewHeaderRenderer returns a renderer for title. A nil logo draws the text
// fallback.
func NewHeaderRenderer(theme layout.Theme, geo layout.Geometry, m *layout.Measurer, title string, logo *semantic.Image) *HeaderRenderer {
	return &HeaderRenderer{theme: theme, geo: geo, m: m, title: title, logo: logo}
}

type fieldPlan struct {
	label      string
	value      layout.GlyphLines
	x, y       float64 // label position
	valueX     float64
	valueBelow bool
}

type headerPlan struct {
	logoX, logoY, logoW, logoH float64
	title                      layout.GlyphLines
	titleY                     float64
	topRule                    float64 // 0 when not drawn
	fields                     []fieldPlan
	bottomRule                 float64 // 0 when not drawn
	end                        float64
}

// Measure returns the Y below the header block without drawing anything.
func (h *HeaderRenderer) Measure(startY float64, fields []report.HeaderField, opts HeaderOptions) float64 {
	return h.plan(startY, fields, opts).end
}

// Render draws the header block and returns the Y below it.
func (h *HeaderRenderer) Render(d *layout.Document, startY float64, fields []report.HeaderField, opts HeaderOptions) float64 {
	p := h.plan(startY, fields, opts)
	left, right := h.geo.ContentLeft(), h.geo.ContentRight()

	if h.logo != nil && p.logoW > 0 {
		d.Image(h.logo, p.logoX, p.logoY, p.logoW, p.logoH)
	} else {
		d.SetFont(h.theme.Title())
		d.SetTextColor(h.theme.Accent)
		d.Text(LogoFallback, left, startY+titleTop)
	}

	d.SetFont(h.theme.Title())
	d.SetTextColor(h.theme.Text)
	d.LinesCentered(p.title, h.geo.PageWidth/2, p.titleY)

	if p.topRule > 0 {
		d.Line(left, p.topRule, right, p.topRule, h.theme.Accent, h.theme.RuleWidth)
	}
	labelFont := h.theme.CaptionBold()
	valueFont := h.theme.Caption()
	for _, f := range p.fields {
		d.SetFont(labelFont)
		d.Text(f.label, f.x, f.y)
		d.SetFont(valueFont)
		vy := f.y
		if f.valueBelow {
			vy += layout.LineHeight(labelFont.Size)
		}
		d.Lines(f.value, f.valueX, vy)
	}
	if p.bottomRule > 0 {
		d.Line(left, p.bottomRule, right, p.bottomRule, h.theme.Accent, h.theme.RuleWidth)
	}
	return p.end
}

func (h *HeaderRenderer) plan(startY float64, fields []report.HeaderField, opts HeaderOptions) headerPlan {
	var p headerPlan
	left := h.geo.ContentLeft()

	p.logoX, p.logoY = left, startY
	if h.logo != nil {
		p.logoW, p.logoH = layout.FitBox(float64(h.logo.Width), float64(h.logo.Height), logoBoxW, logoBoxH)
	}

	titleWidth := h.geo.ContentWidth() - 2*(logoBoxW+4)
	p.title = h.m.Measure(h.title, h.theme.Title(), titleWidth)
	p.titleY = startY + titleTop
	y := math.Max(startY+logoBoxH, p.titleY+p.title.Height) + ruleGap

	if opts.DrawTopLine {
		p.topRule = y
	}
	if len(fields) == 0 {
		p.end = y + headerGap
		if opts.DrawBottomLine {
			p.bottomRule = y + headerGap
			p.end = p.bottomRule + headerGap
		}
		return p
	}
	y += headerGap

	p.fields, y = h.planFields(y, fields)

	if opts.DrawBottomLine {
		p.bottomRule = y + 2
		p.end = p.bottomRule + 5
	} else {
		p.end = y + ruleGap
	}
	return p
}

// planFields lays the info block out in columns. Fields with Column 0
// alternate across the columns in order; full-width fields stack beneath the
// tallest column.
func (h *HeaderRenderer) planFields(top float64, fields []report.HeaderField) ([]fieldPlan, float64) {
	cols := 2
	for _, f := range fields {
		if f.Column == 3 && !f.FullWidth {
			cols = 3
		}
	}
	left := h.geo.ContentLeft()
	colW := (h.geo.ContentWidth() - float64(cols-1)*columnGap) / float64(cols)
	heights := make([]float64, cols)

	var plans []fieldPlan
	var full []report.HeaderField
	auto := 0
	for _, f := range fields {
		if f.FullWidth {
			full = append(full, f)
			continue
		}
		col := f.Column - 1
		if f.Column == 0 {
			col = auto % cols
			auto++
		}
		x := left + float64(col)*(colW+columnGap)
		fp, height := h.planField(f, x, top+heights[col], colW)
		plans = append(plans, fp)
		heights[col] += height
	}

	y := top
	for _, ht := range heights {
		y = math.Max(y, top+ht)
	}
	for _, f := range full {
		fp, height := h.planField(f, left, y, h.geo.ContentWidth())
		plans = append(plans, fp)
		y += height
	}
	return plans, y
}

func (h *HeaderRenderer) planField(f report.HeaderField, x, y, width float64) (fieldPlan, float64) {
	labelFont, valueFont := h.theme.CaptionBold(), h.theme.Caption()
	label := strings.TrimSpace(f.Label)
	if !strings.HasSuffix(label, ":") {
		label += ":"
	}
	labelW := h.m.Width(label, labelFont)
	value := report.PlainText(f.Value)

	fp := fieldPlan{label: label, x: x, y: y, valueX: x + labelW + labelGap}
	valueW := width - labelW - labelGap
	if valueW < minValueW {
		fp.valueBelow = true
		fp.valueX = x
		valueW = width
	}
	fp.value = h.m.Measure(value, valueFont, valueW)

	lh := layout.LineHeight(labelFont.Size)
	height := math.Max(lh, fp.value.Height)
	if fp.valueBelow {
		height = lh + fp.value.Height
	}
	return fp, height + fieldRowGap
}

// Running returns the header drawn at the top of every continuation page:
// logo, title and the top rule, no fields.
func (h *HeaderRenderer) Running() layout.RunningHeader {
	return runningHeader{h: h}
}

type runningHeader struct{ h *HeaderRenderer }

func (r runningHeader) Draw(d *layout.Document) float64 {
	return r.h.Render(d, r.h.geo.OuterMargin, nil, HeaderOptions{DrawTopLine: true})
}

func (r runningHeader) End() float64 {
	return r.h.Measure(r.h.geo.OuterMargin, nil, HeaderOptions{DrawTopLine: true})
}
