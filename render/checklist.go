package render

import (
	"math"

	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

const (
	// ChoicePitch is the horizontal distance between two choice columns.
	ChoicePitch  = 14.0
	choiceRadius = 1.6
	choiceStroke = 0.3
	rowGap       = 2.0
	captionGap   = 1.5
)

// ChecklistRenderer draws fixed-choice rows: a wrapped label on the left and
// one circle per choice on the right, filled for the selected value.
type ChecklistRenderer struct {
	theme layout.Theme
	geo   layout.Geometry
	m     *layout.Measurer
	title string
}

func NewChecklistRenderer(theme layout.Theme, geo layout.Geometry, m *layout.Measurer, title string) *ChecklistRenderer {
	return &ChecklistRenderer{theme: theme, geo: geo, m: m, title: title}
}

// choiceX returns the centre of the column for choice i, counted from the
// left; the last column sits half a pitch inside the content edge.
func (c *ChecklistRenderer) choiceX(i int) float64 {
	n := len(report.ChecklistChoices)
	return c.geo.ContentRight() - ChoicePitch/2 - float64(n-1-i)*ChoicePitch
}

func (c *ChecklistRenderer) labelWidth() float64 {
	return c.geo.ContentWidth() - float64(len(report.ChecklistChoices))*ChoicePitch - 4
}

// CaptionHeight is the height of the optional title plus the choice header
// row.
func (c *ChecklistRenderer) CaptionHeight() float64 {
	h := layout.LineHeight(c.theme.CaptionSize) + captionGap
	if c.title != "" {
		h += c.m.Measure(c.title, c.theme.SectionTitle(), c.geo.ContentWidth()).Height + captionGap
	}
	return h
}

// RowHeight is the height one item occupies, gap included.
func (c *ChecklistRenderer) RowHeight(item report.ChecklistItem) float64 {
	gl := c.m.Measure(item.Label, c.theme.Body(), c.labelWidth())
	return math.Max(gl.Height, 2*choiceRadius) + rowGap
}

// Measure returns the height of the whole block: caption and every row.
func (c *ChecklistRenderer) Measure(items []report.ChecklistItem) float64 {
	h := c.CaptionHeight()
	for _, it := range items {
		h += c.RowHeight(it)
	}
	return h
}

// Caption draws the title and the choice header row at y and returns the Y
// below them.
func (c *ChecklistRenderer) Caption(d *layout.Document, y float64) float64 {
	left := c.geo.ContentLeft()
	d.SetTextColor(c.theme.Text)
	if c.title != "" {
		gl := c.m.Measure(c.title, c.theme.SectionTitle(), c.geo.ContentWidth())
		d.SetFont(c.theme.SectionTitle())
		y = d.Lines(gl, left, y) + captionGap
	}
	d.SetFont(c.theme.CaptionBold())
	for i, choice := range report.ChecklistChoices {
		d.TextCenter(string(choice), c.choiceX(i), y)
	}
	return y + layout.LineHeight(c.theme.CaptionSize) + captionGap
}

// Row draws one item at y and returns the Y below it.
func (c *ChecklistRenderer) Row(d *layout.Document, y float64, item report.ChecklistItem) float64 {
	font := c.theme.Body()
	gl := c.m.Measure(item.Label, font, c.labelWidth())
	d.SetFont(font)
	d.SetTextColor(c.theme.Text)
	d.Lines(gl, c.geo.ContentLeft(), y)

	cy := y + layout.LineHeight(font.Size)/2
	for i, choice := range report.ChecklistChoices {
		d.Circle(c.choiceX(i), cy, choiceRadius, item.Value == choice, c.theme.Text, choiceStroke)
	}
	return y + c.RowHeight(item)
}

// Render draws the caption and every row without page breaks. Callers
// check the block against the cursor first.
func (c *ChecklistRenderer) Render(d *layout.Document, y float64, items []report.ChecklistItem) float64 {
	y = c.Caption(d, y)
	for _, it := range items {
		y = c.Row(d, y, it)
	}
	return y
}
