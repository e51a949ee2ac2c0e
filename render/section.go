package render

import (
	"strings"

	"github.com/xterra/fieldreport/layout"
)

const (
	// IndentUnit is the horizontal offset per indent level (two leading spaces).
	IndentUnit = 5.0
	// BulletOffset separates a bullet glyph from its text.
	BulletOffset = 3.5
	// Bullet is drawn for lines starting with "-".
	Bullet = "•"

	blankLineGap = 2.0
	titleGap     = 1.5
	boxPad       = 2.0
)

// SectionOptions controls one section.
type SectionOptions struct {
	SpaceBefore  float64
	Box          bool
	ForceNewPage bool
}

// SectionRenderer flows titled free-text sections through the cursor.
type SectionRenderer struct {
	cur   *layout.Cursor
	theme layout.Theme
}

func NewSectionRenderer(cur *layout.Cursor, theme layout.Theme) *SectionRenderer {
	return &SectionRenderer{cur: cur, theme: theme}
}

// bodyLine is one source line of a section body after indent and bullet
// detection.
type bodyLine struct {
	text   string
	level  int
	bullet bool
	blank  bool
}

// parseBodyLine reads the indent level (one per two leading spaces) and a
// leading "-" bullet marker from line.
func parseBodyLine(line string) bodyLine {
	line = strings.TrimRight(line, " \t\r")
	if strings.TrimSpace(line) == "" {
		return bodyLine{blank: true}
	}
	rest := strings.TrimLeft(line, " ")
	bl := bodyLine{level: (len(line) - len(rest)) / 2, text: rest}
	if strings.HasPrefix(rest, "-") {
		bl.bullet = true
		bl.text = strings.TrimSpace(rest[1:])
	}
	return bl
}

// boxSegment is the part of a boxed section that lies on one page.
type boxSegment struct {
	page        int
	top, bottom float64
	open        bool
}

// Render draws title and body and returns the Y below the section. A body
// that is empty or only whitespace draws nothing and consumes no space.
func (s *SectionRenderer) Render(title, body string, opts SectionOptions) float64 {
	cur := s.cur
	if strings.TrimSpace(body) == "" {
		return cur.Y
	}
	d := cur.Document()
	geo := d.Geometry()
	m := d.Measurer()
	bodyFont := s.theme.Body()
	titleFont := s.theme.SectionTitle()
	lh := layout.LineHeight(bodyFont.Size)

	if opts.ForceNewPage {
		cur.BreakPage(bodyFont)
	} else {
		cur.Advance(opts.SpaceBefore)
	}

	left, right := geo.ContentLeft(), geo.ContentRight()
	if opts.Box {
		left += boxPad
		right -= boxPad
	}

	titleLines := m.Measure(title, titleFont, right-left)
	if cur.Remaining() < titleLines.Height+lh {
		cur.BreakPage(bodyFont)
	}

	var seg boxSegment
	openSeg := func() {
		if opts.Box {
			seg = boxSegment{page: cur.Page(), top: cur.Y, bottom: cur.Y, open: true}
		}
	}
	closeSeg := func() {
		if !seg.open {
			return
		}
		seg.open = false
		x, w := geo.ContentLeft(), geo.ContentWidth()
		top, h := seg.top-boxPad/2, seg.bottom-seg.top+boxPad
		accent, width := s.theme.Accent, s.theme.RuleWidth
		cur.Queue().Defer(seg.page, func(d *layout.Document) {
			d.Rect(x, top, w, h, accent, width)
		})
	}
	breakPage := func() {
		closeSeg()
		cur.BreakPage(bodyFont)
		openSeg()
	}

	openSeg()
	d.SetFont(titleFont)
	d.SetTextColor(s.theme.Text)
	d.Lines(titleLines, left, cur.Y)
	cur.Advance(titleLines.Height + titleGap)
	seg.bottom = cur.Y

	d.SetFont(bodyFont)
	for _, raw := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		line := parseBodyLine(raw)
		if line.blank {
			cur.Advance(blankLineGap)
			continue
		}
		x := left + float64(line.level)*IndentUnit
		textX := x
		if line.bullet {
			textX += BulletOffset
		}
		gl := m.Measure(line.text, bodyFont, right-textX)
		if len(gl.Lines) == 0 {
			gl = layout.GlyphLines{Lines: []string{""}, Height: lh, LineHeight: lh}
		}

		if !cur.Fits(gl.Height) && gl.Height <= cur.FreshSpace() {
			breakPage()
		}
		for i, text := range gl.Lines {
			// Paragraphs taller than a fresh page continue line by line.
			if !cur.Fits(gl.LineHeight) {
				breakPage()
			}
			if i == 0 && line.bullet {
				d.Text(Bullet, x, cur.Y)
			}
			d.Text(text, textX, cur.Y)
			cur.Advance(gl.LineHeight)
		}
		seg.bottom = cur.Y
	}

	closeSeg()
	cur.Flush()
	return cur.Y
}
