package fonts

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	gofont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/xterra/fieldreport/ir/semantic"
)

// TrueTypeFont is an embedded TrueType face exposed as a simple
// WinAnsiEncoding font.
type TrueTypeFont struct {
	font *semantic.Font
	face *gofont.Face
	upem float64
}

// LoadTrueType parses a TrueType/OpenType font, extracts the metrics the PDF
// needs and returns a face whose widths and measurement agree glyph for glyph.
// The full font program is embedded (no subsetting).
func LoadTrueType(name string, data []byte) (*TrueTypeFont, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load face: %w", err)
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}
	if baseName == "" {
		baseName = "CustomTT"
	}

	metrics, _ := font.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	descriptor := &semantic.FontDescriptor{
		FontName:    baseName,
		Flags:       32, // nonsymbolic
		ItalicAngle: italicAngle(font),
		Ascent:      scaleFixed(metrics.Ascent, unitsPerEm),
		Descent:     -scaleFixed(metrics.Descent, unitsPerEm),
		CapHeight:   scaleFixed(metrics.CapHeight, unitsPerEm),
		StemV:       80,
		FontBBox: [4]float64{
			scaleFixed(bounds.Min.X, unitsPerEm),
			-scaleFixed(bounds.Max.Y, unitsPerEm),
			scaleFixed(bounds.Max.X, unitsPerEm),
			-scaleFixed(bounds.Min.Y, unitsPerEm),
		},
		FontFile: data,
	}
	if descriptor.CapHeight == 0 {
		descriptor.CapHeight = descriptor.Ascent
	}

	return &TrueTypeFont{
		font: &semantic.Font{
			Subtype:    "TrueType",
			BaseFont:   baseName,
			Encoding:   "WinAnsiEncoding",
			FirstChar:  firstCode,
			Widths:     winAnsiWidths(font, buf, unitsPerEm, ppem),
			Descriptor: descriptor,
		},
		face: face,
		upem: float64(face.Upem()),
	}, nil
}

// Font returns the embedded TrueType resource.
func (t *TrueTypeFont) Font() *semantic.Font { return t.font }

// Advance sums nominal glyph advances. Text passes through WinAnsi first so
// unmappable runes measure like the replacement glyph that gets drawn.
func (t *TrueTypeFont) Advance(text string) float64 {
	if t.upem == 0 {
		return 0
	}
	var sum float64
	for _, r := range text {
		gid, ok := t.face.NominalGlyph(WinAnsiRune(WinAnsiCode(r)))
		if !ok {
			sum += defaultGlyf
			continue
		}
		sum += float64(t.face.HorizontalAdvance(gid)) * 1000 / t.upem
	}
	return sum
}

func winAnsiWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) []int {
	widths := make([]int, 0, lastCode-firstCode+1)
	for code := firstCode; code <= lastCode; code++ {
		w := 0
		if gi, err := font.GlyphIndex(buf, WinAnsiRune(byte(code))); err == nil && gi != 0 {
			if adv, err := font.GlyphAdvance(buf, gi, ppem, xfont.HintingNone); err == nil {
				w = int(math.Round(scaleFixed(adv, unitsPerEm)))
			}
		}
		widths = append(widths, w)
	}
	return widths
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}
