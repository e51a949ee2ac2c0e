// Package fonts supplies the faces the report engine draws with: metrics for
// text measurement and the semantic.Font resources the writer embeds.
package fonts

import "github.com/xterra/fieldreport/ir/semantic"

// Metrics reports advance widths for a face.
type Metrics interface {
	// Advance returns the advance width of text in 1/1000 em.
	Advance(text string) float64
}

// Face couples the PDF font resource with the metrics used to measure it.
type Face interface {
	Metrics
	Font() *semantic.Font
}

// Standard serif faces available in every conforming PDF reader.
const (
	TimesRoman = "Times-Roman"
	TimesBold  = "Times-Bold"
)

const (
	firstCode   = 32
	lastCode    = 255
	defaultGlyf = 500
)

// StandardFont is one of the PDF standard 14 fonts with its AFM widths.
type StandardFont struct {
	name   string
	widths map[byte]int
}

// Standard returns the standard font named base. Unknown names fall back to
// Times-Roman.
func Standard(base string) *StandardFont {
	switch base {
	case TimesBold:
		return &StandardFont{name: TimesBold, widths: timesBoldWidths}
	default:
		return &StandardFont{name: TimesRoman, widths: timesRomanWidths}
	}
}

// Name returns the PostScript name.
func (f *StandardFont) Name() string { return f.name }

// Advance sums the AFM widths of text after WinAnsi mapping.
func (f *StandardFont) Advance(text string) float64 {
	var sum int
	for _, r := range text {
		sum += f.width(WinAnsiCode(r))
	}
	return float64(sum)
}

func (f *StandardFont) width(code byte) int {
	if w, ok := f.widths[code]; ok {
		return w
	}
	return defaultGlyf
}

// Font returns the non-embedded Type1 resource.
func (f *StandardFont) Font() *semantic.Font {
	return &semantic.Font{
		Subtype:  "Type1",
		BaseFont: f.name,
		Encoding: "WinAnsiEncoding",
	}
}

func asciiWidths(printable string, widths []int, extra map[byte]int) map[byte]int {
	m := make(map[byte]int, len(widths)+len(extra))
	for i := 0; i < len(printable) && i < len(widths); i++ {
		m[printable[i]] = widths[i]
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

const printableASCII = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

var timesRomanWidths = asciiWidths(printableASCII, []int{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}, map[byte]int{
	0x80: 500, 0x85: 1000, 0x91: 333, 0x92: 333, 0x93: 444, 0x94: 444, 0x95: 350,
	0x96: 500, 0x97: 1000, 0xA0: 250, 0xA7: 500, 0xA9: 760, 0xAE: 760, 0xB0: 400,
	0xB1: 564, 0xB7: 250, 0xBC: 750, 0xBD: 750, 0xBE: 750, 0xC9: 611, 0xD7: 564,
	0xE0: 444, 0xE1: 444, 0xE4: 444, 0xE7: 444, 0xE8: 444, 0xE9: 444, 0xF1: 500,
	0xF3: 500, 0xF6: 500, 0xFA: 500, 0xFC: 500,
})

var timesBoldWidths = asciiWidths(printableASCII, []int{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	930, 722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778,
	611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667, 333, 278, 333, 581, 500,
	333, 500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
	556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}, map[byte]int{
	0x80: 500, 0x85: 1000, 0x91: 333, 0x92: 333, 0x93: 500, 0x94: 500, 0x95: 350,
	0x96: 500, 0x97: 1000, 0xA0: 250, 0xA7: 500, 0xA9: 747, 0xAE: 747, 0xB0: 400,
	0xB1: 570, 0xB7: 250, 0xBC: 750, 0xBD: 750, 0xBE: 750, 0xC9: 667, 0xD7: 570,
	0xE0: 500, 0xE1: 500, 0xE4: 500, 0xE7: 444, 0xE8: 444, 0xE9: 444, 0xF1: 556,
	0xF3: 500, 0xF6: 500, 0xFA: 556, 0xFC: 556,
})
