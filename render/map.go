package render

import (
	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

const (
	// mapCaptionAllowance is reserved below the map on top of the
	// caption's own height.
	mapCaptionAllowance = 10.0
	mapCaptionGap       = 4.0
)

// MapRenderer draws one map per page: the image aspect-fit into the space
// left above its caption, centered, with the caption beneath it. A caption
// never takes more than half of the page below the header.
type MapRenderer struct {
	theme layout.Theme
	geo   layout.Geometry
	m     *layout.Measurer
}

func NewMapRenderer(theme layout.Theme, geo layout.Geometry, m *layout.Measurer) *MapRenderer {
	return &MapRenderer{theme: theme, geo: geo, m: m}
}

// Render opens a new page for e. A nil img draws an outlined empty area in
// place of the map. It returns the Y below the caption.
func (r *MapRenderer) Render(cur *layout.Cursor, e report.PhotoEntry, img *semantic.Image) float64 {
	cur.BreakPage(r.theme.Body())
	d := cur.Document()
	left, width := r.geo.ContentLeft(), r.geo.ContentWidth()

	room := cur.MaxY - cur.Y - mapCaptionAllowance
	caption := fitCaption(r.theme, r.m, planCaption(r.theme, r.m, e, width, false), room/2)
	areaH := room - caption.height
	if areaH < 0 {
		areaH = 0
	}

	var w, h float64
	if img != nil {
		w, h = layout.FitBox(float64(img.Width), float64(img.Height), width, areaH)
	}
	if w > 0 && h > 0 {
		d.Image(img, left+(width-w)/2, cur.Y, w, h)
	} else {
		h = areaH
		d.Rect(left, cur.Y, width, h, r.theme.Text, choiceStroke)
	}
	cur.Advance(h + mapCaptionGap)
	drawCaption(d, r.theme, caption, left, cur.Y)
	cur.Advance(caption.height)
	return cur.Y
}
