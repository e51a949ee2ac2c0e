package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/xterra/fieldreport/fonts"
)

// Font selects a registered face and a size in points.
type Font struct {
	Face string
	Size float64
}

// GlyphLines is wrapped text with its total height in millimetres.
type GlyphLines struct {
	Lines      []string
	Height     float64
	LineHeight float64
}

// LineHeight is the baseline-to-baseline distance in millimetres for a
// font size in points.
func LineHeight(size float64) float64 { return size * PtToMM * 1.15 }

// Measurer wraps and measures text. It holds no per-call state and is safe
// for concurrent use once constructed.
type Measurer struct {
	faces    map[string]fonts.Metrics
	fallback fonts.Metrics
}

// NewMeasurer builds a measurer over named faces. Unknown face names measure
// as Times-Roman.
func NewMeasurer(faces map[string]fonts.Metrics) *Measurer {
	m := &Measurer{faces: make(map[string]fonts.Metrics, len(faces)), fallback: fonts.Standard(fonts.TimesRoman)}
	for k, v := range faces {
		m.faces[k] = v
	}
	return m
}

func (m *Measurer) metrics(face string) fonts.Metrics {
	if f, ok := m.faces[face]; ok {
		return f
	}
	return m.fallback
}

// Width returns the advance width of text in millimetres.
func (m *Measurer) Width(text string, f Font) float64 {
	return m.metrics(f.Face).Advance(text) / 1000 * f.Size * PtToMM
}

// Measure wraps text greedily on spaces so no line is wider than maxWidth
// (millimetres). Newlines force a break, words wider than maxWidth are split
// between characters, and runs of spaces collapse. A maxWidth of zero or
// less disables wrapping. Empty text yields no lines.
func (m *Measurer) Measure(text string, f Font, maxWidth float64) GlyphLines {
	lh := LineHeight(f.Size)
	if text == "" {
		return GlyphLines{LineHeight: lh}
	}
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines = append(lines, m.wrap(para, f, maxWidth)...)
	}
	return GlyphLines{Lines: lines, Height: float64(len(lines)) * lh, LineHeight: lh}
}

func (m *Measurer) wrap(para string, f Font, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if m.Width(candidate, f) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		if m.Width(word, f) <= maxWidth {
			line = word
			continue
		}
		pieces := m.splitWord(word, f, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitWord breaks a word that cannot fit on one line into pieces of at
// least one character each.
func (m *Measurer) splitWord(word string, f Font, maxWidth float64) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		if i > start && m.Width(word[start:i+size], f) > maxWidth {
			pieces = append(pieces, word[start:i])
			start = i
		}
		i += size
	}
	return append(pieces, word[start:])
}
