package fonts

import "golang.org/x/text/encoding/charmap"

// Replacement is the byte shown for runes WinAnsiEncoding cannot represent.
const Replacement = '?'

// EncodeWinAnsi converts text to the single-byte WinAnsiEncoding used by the
// simple fonts this package produces. Unmappable runes become Replacement.
func EncodeWinAnsi(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		out = append(out, WinAnsiCode(r))
	}
	return out
}

// WinAnsiCode returns the WinAnsiEncoding code for r.
func WinAnsiCode(r rune) byte {
	switch r {
	case '\t':
		return ' '
	}
	if b, ok := charmap.Windows1252.EncodeRune(r); ok && b >= 0x20 {
		return b
	}
	return Replacement
}

// WinAnsiRune is the inverse of WinAnsiCode for printable codes.
func WinAnsiRune(code byte) rune {
	return charmap.Windows1252.DecodeByte(code)
}
