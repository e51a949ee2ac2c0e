package report

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	spaceRun = regexp.MustCompile(`[ \t\r\f]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips markup left by the rich-text editor (highlight spans,
// comment anchors, paragraphs) and returns the visible text. Block elements
// and <br> become line breaks; comment bubbles and scripts are dropped.
// Leading indentation of each line is preserved.
func PlainText(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	z := html.NewTokenizer(strings.NewReader(markup))
	var out bytes.Buffer
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return markup
			}
			return tidy(out.String())
		case html.TextToken:
			if skip == 0 {
				out.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			hidden := tok.DataAtom == atom.Script || tok.DataAtom == atom.Style || isCommentBubble(tok)
			switch {
			case hidden || skip > 0:
				if tt == html.StartTagToken && (hidden || tok.DataAtom == atom.Aside) {
					skip++
				}
			case tok.DataAtom == atom.Br:
				out.WriteByte('\n')
			case tok.DataAtom == atom.Li:
				breakLine(&out)
				out.WriteString("- ")
			case isBlock(tok.DataAtom):
				breakLine(&out)
			}
		case html.EndTagToken:
			tok := z.Token()
			switch {
			case skip > 0 && (tok.DataAtom == atom.Script || tok.DataAtom == atom.Style || tok.DataAtom == atom.Aside):
				skip--
			case skip == 0 && isBlock(tok.DataAtom):
				breakLine(&out)
			}
		}
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Ul, atom.Ol, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Tr:
		return true
	}
	return false
}

// isCommentBubble matches the editor's out-of-line comment containers.
func isCommentBubble(tok html.Token) bool {
	if tok.DataAtom != atom.Aside {
		return false
	}
	for _, a := range tok.Attr {
		if a.Key == "class" && strings.Contains(a.Val, "comment") {
			return true
		}
	}
	return false
}

func breakLine(out *bytes.Buffer) {
	if out.Len() > 0 && out.Bytes()[out.Len()-1] != '\n' {
		out.WriteByte('\n')
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		lines[i] = line[:indent] + strings.TrimRight(spaceRun.ReplaceAllString(line[indent:], " "), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}
