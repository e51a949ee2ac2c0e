package layout

import "fmt"

// RunningHeader redraws the page header on a fresh page and returns the Y
// where content may start. End reports that Y without drawing.
type RunningHeader interface {
	Draw(d *Document) float64
	End() float64
}

// fitSlack absorbs float noise when a height exactly fills the page.
const fitSlack = 1e-6

// Cursor tracks the write position of one export and owns the page-break
// protocol. Y grows downward from the page top.
type Cursor struct {
	Y    float64
	MaxY float64

	doc    *Document
	queue  *Queue
	theme  Theme
	header RunningHeader
	closed []int
	done   bool
	err    error
}

// NewCursor starts on the document's current page at startY.
func NewCursor(doc *Document, queue *Queue, theme Theme, header RunningHeader, startY float64) *Cursor {
	return &Cursor{
		Y:      startY,
		MaxY:   doc.Geometry().MaxY(),
		doc:    doc,
		queue:  queue,
		theme:  theme,
		header: header,
	}
}

func (c *Cursor) Document() *Document { return c.doc }
func (c *Cursor) Queue() *Queue       { return c.queue }
func (c *Cursor) Page() int           { return c.doc.Page() }

// Fits reports whether an element of height h can be drawn at Y.
func (c *Cursor) Fits(h float64) bool { return c.Y+h <= c.MaxY+fitSlack }

func (c *Cursor) Advance(h float64) { c.Y += h }

// Remaining is the vertical space left on the current page.
func (c *Cursor) Remaining() float64 { return c.MaxY - c.Y }

// FreshSpace is the vertical space a new page offers below the running
// header.
func (c *Cursor) FreshSpace() float64 { return c.MaxY - c.header.End() }

// AtPageTop reports whether nothing has been drawn below the running header
// of the current page.
func (c *Cursor) AtPageTop() bool { return c.Y <= c.header.End()+fitSlack }

// BreakPage closes the current page and opens the next one: deferred
// commands are flushed against the closing page, the bottom rule and footer
// placeholder are recorded, the running header is redrawn and font is made
// current so styles from before the break do not carry over.
func (c *Cursor) BreakPage(font Font) float64 {
	c.closePage()
	c.doc.AddPage()
	c.Y = c.header.Draw(c.doc)
	c.doc.SetFont(font)
	c.doc.SetTextColor(c.theme.Text)
	return c.Y
}

// Finish closes the last page. Further calls are no-ops.
func (c *Cursor) Finish() {
	if c.done {
		return
	}
	c.closePage()
	c.done = true
}

// Flush runs the deferred commands now. A failure is kept and reported by
// Err.
func (c *Cursor) Flush() {
	if err := c.queue.Flush(c.doc); err != nil && c.err == nil {
		c.err = err
	}
}

// Err returns the first deferred command that could not be drawn.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) closePage() {
	c.Flush()
	g := c.doc.Geometry()
	c.doc.Line(g.OuterMargin, g.BorderY(), g.PageWidth-g.OuterMargin, g.BorderY(), c.theme.Accent, c.theme.RuleWidth)
	c.closed = append(c.closed, c.doc.Page())
}

// ClosedPages lists the pages awaiting a footer, in closing order.
func (c *Cursor) ClosedPages() []int { return append([]int(nil), c.closed...) }

// StampFooters writes "Page i of N" at the bottom right of every closed page
// once the page count is final. It fails if the cursor is still open or a
// page was never closed.
func (c *Cursor) StampFooters() error {
	if !c.done {
		return fmt.Errorf("footers stamped before the last page was closed")
	}
	n := c.doc.PageCount()
	if len(c.closed) != n {
		return fmt.Errorf("%d pages closed, document has %d", len(c.closed), n)
	}
	g := c.doc.Geometry()
	c.doc.SetFont(c.theme.Footer())
	c.doc.SetTextColor(c.theme.Text)
	for i, page := range c.closed {
		if page != i+1 {
			return fmt.Errorf("page %d closed out of order at position %d", page, i+1)
		}
		if err := c.doc.SetPage(page); err != nil {
			return err
		}
		c.doc.TextRight(fmt.Sprintf("Page %d of %d", page, n), g.ContentRight(), g.FooterY())
	}
	return nil
}
