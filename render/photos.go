package render

import (
	"math"
	"strings"

	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

const (
	// TightGap is the fixed gap between a photo entry and the separator
	// line on a shared page.
	TightGap = 4.0
	// DefaultPhotoWidth is the printed width of a site photo.
	DefaultPhotoWidth = 110.0

	fallbackPad = 2.0
	photoColGap = 6.0
	captionLead = 0.8
	minCaptionW = 40.0

	ellipsis = "…"
)

// BinPhotos groups entries greedily in log order, at most two per page. A
// pair is formed iff both entries and twice the tight gap fit in the
// available height; otherwise the first entry is left alone and the second
// opens the next group. The result depends only on its arguments.
func BinPhotos(heights []float64, available, tightGap float64) [][]int {
	var groups [][]int
	for i := 0; i < len(heights); {
		if i+1 < len(heights) && heights[i]+heights[i+1]+2*tightGap <= available {
			groups = append(groups, []int{i, i + 1})
			i += 2
			continue
		}
		groups = append(groups, []int{i})
		i++
	}
	return groups
}

// PhotoGroup is one page of the photo log: indices into Content.Photos and
// the precomputed height of each entry.
type PhotoGroup struct {
	Entries []int
	Heights []float64
}

// captionLine is a bold "Label:" followed by a wrapped value.
type captionLine struct {
	label  string
	value  layout.GlyphLines
	valueX float64 // offset from the block's left edge
	height float64
}

// captionBlock is the text describing one photo or map entry.
type captionBlock struct {
	title  layout.GlyphLines
	lines  []captionLine
	height float64
	width  float64
}

// planCaption lays out the sequence label, the direction (site photos only),
// the date, the location and the description of e within width. The
// description line is always present so "N/A" or an empty description still
// reads as a labelled field.
func planCaption(theme layout.Theme, m *layout.Measurer, e report.PhotoEntry, width float64, direction bool) captionBlock {
	bold, regular := theme.BodyBold(), theme.Body()
	b := captionBlock{title: m.Measure(e.Label, bold, width), width: width}
	b.height = b.title.Height + captionLead

	add := func(label, value string) {
		label += ":"
		offset := m.Width(label, bold) + labelGap
		gl := m.Measure(report.PlainText(value), regular, width-offset)
		h := math.Max(layout.LineHeight(regular.Size), gl.Height)
		b.lines = append(b.lines, captionLine{label: label, value: gl, valueX: offset, height: h})
		b.height += h + captionLead
	}
	if direction && strings.TrimSpace(e.Direction) != "" {
		add("Direction", e.Direction)
	}
	add("Date", e.Date)
	add("Location", e.Location)
	add("Description", e.Description)
	return b
}

// fitCaption trims b to at most limit millimetres. The last field gives up
// lines first, then whole fields are dropped from the end, then title lines.
// The last line kept ends in an ellipsis.
func fitCaption(theme layout.Theme, m *layout.Measurer, b captionBlock, limit float64) captionBlock {
	if b.height <= limit {
		return b
	}
	lines := append([]captionLine(nil), b.lines...)
	height := b.height
	for len(lines) > 0 && height > limit {
		i := len(lines) - 1
		l := lines[i]
		if n := len(l.value.Lines); n > 1 {
			keep := n - int(math.Ceil((height-limit)/l.value.LineHeight))
			if keep >= 1 {
				l.value.Lines = append([]string(nil), l.value.Lines[:keep]...)
				l.value.Height = float64(keep) * l.value.LineHeight
				height -= l.height - l.value.Height
				l.height = l.value.Height
				lines[i] = l
				break
			}
		}
		height -= l.height + captionLead
		lines = lines[:i]
	}

	title := b.title
	if len(lines) == 0 && height > limit {
		keep := 0
		if title.LineHeight > 0 {
			keep = int(math.Floor((limit - captionLead) / title.LineHeight))
		}
		keep = max(0, min(keep, len(title.Lines)))
		title.Lines = append([]string(nil), title.Lines[:keep]...)
		title.Height = float64(keep) * title.LineHeight
		height = title.Height + captionLead
		if keep == 0 {
			height = 0
		}
	}

	switch {
	case len(lines) > 0 && len(lines[len(lines)-1].value.Lines) > 0:
		l := &lines[len(lines)-1]
		k := len(l.value.Lines) - 1
		l.value.Lines = append([]string(nil), l.value.Lines...)
		l.value.Lines[k] = ellipsize(m, theme.Body(), l.value.Lines[k], b.width-l.valueX)
	case len(lines) == 0 && len(title.Lines) > 0:
		k := len(title.Lines) - 1
		title.Lines = append([]string(nil), title.Lines...)
		title.Lines[k] = ellipsize(m, theme.BodyBold(), title.Lines[k], b.width)
	}
	return captionBlock{title: title, lines: lines, height: height, width: b.width}
}

// ellipsize shortens s until s plus an ellipsis fits width.
func ellipsize(m *layout.Measurer, f layout.Font, s string, width float64) string {
	r := []rune(strings.TrimRight(s, " "))
	for len(r) > 0 && m.Width(string(r)+ellipsis, f) > width {
		r = r[:len(r)-1]
	}
	return strings.TrimRight(string(r), " ") + ellipsis
}

func drawCaption(d *layout.Document, theme layout.Theme, b captionBlock, x, y float64) {
	if len(b.title.Lines) == 0 && len(b.lines) == 0 {
		return
	}
	d.SetTextColor(theme.Text)
	d.SetFont(theme.BodyBold())
	y = d.Lines(b.title, x, y) + captionLead
	for _, l := range b.lines {
		d.SetFont(theme.BodyBold())
		d.Text(l.label, x, y)
		d.SetFont(theme.Body())
		d.Lines(l.value, x+l.valueX, y)
		y += l.height + captionLead
	}
}

// PhotoLayout sizes and draws site photo entries: the caption on the left,
// the image at a fixed width on the right.
type PhotoLayout struct {
	theme layout.Theme
	geo   layout.Geometry
	m     *layout.Measurer
	width float64
}

// NewPhotoLayout returns a layout printing images width millimetres wide.
func NewPhotoLayout(theme layout.Theme, geo layout.Geometry, m *layout.Measurer, width float64) *PhotoLayout {
	if width <= 0 {
		width = DefaultPhotoWidth
	}
	if limit := geo.ContentWidth() - minCaptionW - photoColGap; width > limit {
		width = limit
	}
	return &PhotoLayout{theme: theme, geo: geo, m: m, width: width}
}

func (p *PhotoLayout) textWidth() float64 { return p.geo.ContentWidth() - p.width - photoColGap }

// imageHeight is the printed height of an image of natural size s, capped
// at available. A failed probe contributes zero.
func (p *PhotoLayout) imageHeight(s probeResult, available float64) float64 {
	if !s.OK() {
		return 0
	}
	h := float64(s.Size.Height) * p.width / float64(s.Size.Width)
	return math.Min(h, available)
}

// caption plans the text column of e, cut to fit available.
func (p *PhotoLayout) caption(e report.PhotoEntry, available float64) captionBlock {
	b := planCaption(p.theme, p.m, e, p.textWidth(), !e.IsMap)
	return fitCaption(p.theme, p.m, b, available)
}

// EntryHeight is the larger of the caption height and the image height.
// Neither exceeds available.
func (p *PhotoLayout) EntryHeight(e report.PhotoEntry, s probeResult, available float64) float64 {
	return math.Max(p.caption(e, available).height, p.imageHeight(s, available))
}

// Plan precomputes every entry height and bins the entries into pages.
// indices select the entries of photos to lay out; sizes is parallel to
// indices.
func (p *PhotoLayout) Plan(photos []report.PhotoEntry, indices []int, sizes []probeResult, available float64) []PhotoGroup {
	heights := make([]float64, len(indices))
	for i, idx := range indices {
		heights[i] = p.EntryHeight(photos[idx], sizes[i], available)
	}
	var groups []PhotoGroup
	for _, bin := range BinPhotos(heights, available, TightGap) {
		g := PhotoGroup{}
		for _, i := range bin {
			g.Entries = append(g.Entries, indices[i])
			g.Heights = append(g.Heights, heights[i])
		}
		groups = append(groups, g)
	}
	return groups
}

// placedEntry is one entry of a group ready to draw. A nil Image draws an
// outlined empty region of ImageHeight.
type placedEntry struct {
	Entry       report.PhotoEntry
	Image       *semantic.Image
	ImageHeight float64
}

// Draw lays a group out from the cursor position. A pair is balanced over
// the available height with a separator line midway between the entries.
func (p *PhotoLayout) Draw(cur *layout.Cursor, g PhotoGroup, entries []placedEntry, available float64) {
	d := cur.Document()
	y := cur.Y
	p.drawEntry(d, entries[0], y, available)
	if len(entries) == 1 {
		cur.Advance(g.Heights[0])
		return
	}

	rem := available - (g.Heights[0] + g.Heights[1]) - 2*TightGap
	pad := rem / 2
	if rem < 0 {
		pad = fallbackPad
	}
	sepY := y + g.Heights[0] + TightGap + pad
	left, right := p.geo.ContentLeft(), p.geo.ContentRight()
	accent, width := p.theme.Accent, p.theme.RuleWidth
	cur.Queue().Defer(cur.Page(), func(d *layout.Document) {
		d.Line(left, sepY, right, sepY, accent, width)
	})

	y2 := sepY + pad + TightGap
	p.drawEntry(d, entries[1], y2, available)
	cur.Y = y2 + g.Heights[1]
	cur.Flush()
}

func (p *PhotoLayout) drawEntry(d *layout.Document, e placedEntry, y, available float64) {
	left := p.geo.ContentLeft()
	caption := p.caption(e.Entry, available)
	drawCaption(d, p.theme, caption, left, y)

	x := p.geo.ContentRight() - p.width
	if e.Image == nil {
		h := e.ImageHeight
		if h <= 0 {
			h = caption.height
		}
		d.Rect(x, y, p.width, h, p.theme.Text, choiceStroke)
		return
	}
	d.Image(e.Image, x, y, p.width, e.ImageHeight)
}
