package report

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownToBody converts Markdown into section body text: blocks separated
// by blank lines, list items as "- " bullets (ordered items keep their
// number) with two spaces of indent per nesting level, inline formatting
// dropped.
func MarkdownToBody(source string) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	w := &bodyWriter{src: src}
	w.blocks(doc, 0)
	return strings.TrimRight(strings.Join(w.lines, "\n"), "\n ")
}

type bodyWriter struct {
	src   []byte
	lines []string
}

func (w *bodyWriter) gap() {
	if n := len(w.lines); n > 0 && w.lines[n-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *bodyWriter) emit(indent int, prefix, content string) {
	pad := strings.Repeat("  ", indent)
	for i, line := range strings.Split(content, "\n") {
		if i == 0 {
			w.lines = append(w.lines, pad+prefix+line)
			continue
		}
		w.lines = append(w.lines, pad+line)
	}
}

func (w *bodyWriter) blocks(parent ast.Node, indent int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			w.emit(indent, "", w.inline(b))
			w.gap()
		case *ast.TextBlock:
			w.emit(indent, "", w.inline(b))
		case *ast.List:
			w.list(b, indent)
			if indent == 0 {
				w.gap()
			}
		case *ast.Blockquote:
			w.blocks(b, indent+1)
		case *ast.FencedCodeBlock:
			w.code(b, indent)
		case *ast.CodeBlock:
			w.code(b, indent)
		case *ast.ThematicBreak:
			w.gap()
		}
	}
}

func (w *bodyWriter) list(l *ast.List, indent int) {
	number := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		prefix := "- "
		if l.IsOrdered() {
			prefix = strconv.Itoa(number) + ". "
			number++
		}
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch cb := c.(type) {
			case *ast.List:
				w.list(cb, indent+1)
			case *ast.TextBlock, *ast.Paragraph:
				if first {
					w.emit(indent, prefix, w.inline(cb))
				} else {
					w.emit(indent+1, "", w.inline(cb))
				}
			default:
				w.blocks(c, indent+1)
			}
			first = false
		}
		if first {
			w.emit(indent, strings.TrimRight(prefix, " "), "")
		}
	}
}

func (w *bodyWriter) code(n ast.Node, indent int) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.emit(indent, "", strings.TrimRight(string(seg.Value(w.src)), "\r\n"))
	}
	w.gap()
}

// inline flattens inline children to plain text. Soft breaks become spaces,
// hard breaks become newlines.
func (w *bodyWriter) inline(n ast.Node) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(w.src))
				switch {
				case t.HardLineBreak():
					sb.WriteByte('\n')
				case t.SoftLineBreak():
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			case *ast.AutoLink:
				sb.Write(t.Label(w.src))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
