package layout

import "github.com/xterra/fieldreport/builder"

// PtToMM converts typographic points to millimetres.
const PtToMM = 25.4 / 72

// Geometry is the fixed page contract in millimetres, measured from the top
// left corner of the page.
type Geometry struct {
	PageWidth      float64
	PageHeight     float64
	OuterMargin    float64
	ContentPadding float64
	BottomMargin   float64
}

// Letter returns the standard report page: US Letter, 10 mm outer margin,
// content inset a further 5 mm, 22 mm kept clear at the bottom.
func Letter() Geometry {
	return Geometry{
		PageWidth:      215.9,
		PageHeight:     279.4,
		OuterMargin:    10,
		ContentPadding: 5,
		BottomMargin:   22,
	}
}

func (g Geometry) ContentLeft() float64  { return g.OuterMargin + g.ContentPadding }
func (g Geometry) ContentRight() float64 { return g.PageWidth - g.ContentLeft() }
func (g Geometry) ContentWidth() float64 { return g.ContentRight() - g.ContentLeft() }

// MaxY is the lowest Y any content may reach.
func (g Geometry) MaxY() float64 { return g.PageHeight - g.BottomMargin }

// BorderY is where the bottom rule sits: 3 mm above the bottom outer margin.
func (g Geometry) BorderY() float64 { return g.PageHeight - g.OuterMargin - 3 }

// FooterY is the top of the footer text line, just below the bottom rule.
func (g Geometry) FooterY() float64 { return g.BorderY() + 1 }

// Theme carries the colors, rule weight and type sizes of a report.
type Theme struct {
	Accent           builder.Color
	Text             builder.Color
	RuleWidth        float64 // mm
	TitleSize        float64 // pt
	SectionTitleSize float64
	BodySize         float64
	CaptionSize      float64
	FooterSize       float64
	Regular          string // font resource names
	Bold             string
}

// DefaultTheme is teal rules with a Times serif scale.
func DefaultTheme() Theme {
	return Theme{
		Accent:           builder.RGB(0, 125, 140),
		RuleWidth:        0.5,
		TitleSize:        16,
		SectionTitleSize: 13,
		BodySize:         11,
		CaptionSize:      10,
		FooterSize:       9,
		Regular:          FaceRegular,
		Bold:             FaceBold,
	}
}

// Font resource names the renderer registers with the builder.
const (
	FaceRegular = "F1"
	FaceBold    = "F2"
)

func (t Theme) Body() Font         { return Font{Face: t.Regular, Size: t.BodySize} }
func (t Theme) BodyBold() Font     { return Font{Face: t.Bold, Size: t.BodySize} }
func (t Theme) Title() Font        { return Font{Face: t.Bold, Size: t.TitleSize} }
func (t Theme) SectionTitle() Font { return Font{Face: t.Bold, Size: t.SectionTitleSize} }
func (t Theme) Caption() Font      { return Font{Face: t.Regular, Size: t.CaptionSize} }
func (t Theme) CaptionBold() Font  { return Font{Face: t.Bold, Size: t.CaptionSize} }
func (t Theme) Footer() Font       { return Font{Face: t.Regular, Size: t.FooterSize} }
