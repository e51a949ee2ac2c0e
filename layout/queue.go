package layout

import (
	"errors"
	"fmt"
)

// Command is a draw call whose coordinates are only final once the content
// around it has been laid out, such as a box around a section segment or the
// separator between two photos.
type Command struct {
	Page int
	Draw func(d *Document)
}

// Queue holds deferred commands until the owner flushes it at a page break
// or when a section ends.
type Queue struct {
	cmds []Command
}

// Defer queues fn to run against page.
func (q *Queue) Defer(page int, fn func(d *Document)) {
	q.cmds = append(q.cmds, Command{Page: page, Draw: fn})
}

func (q *Queue) Len() int { return len(q.cmds) }

// Flush runs every queued command in order against its own page, then
// restores the current page, font and text color. A command whose page does
// not exist is skipped and reported in the returned error; the rest still
// run.
func (q *Queue) Flush(d *Document) error {
	if len(q.cmds) == 0 {
		return nil
	}
	cmds := q.cmds
	q.cmds = nil
	page, font, color := d.Page(), d.Font(), d.TextColor()
	var errs []error
	for _, c := range cmds {
		if c.Page != d.Page() {
			if err := d.SetPage(c.Page); err != nil {
				errs = append(errs, fmt.Errorf("deferred command: %w", err))
				continue
			}
		}
		c.Draw(d)
	}
	if d.Page() != page {
		_ = d.SetPage(page)
	}
	d.SetFont(font)
	d.SetTextColor(color)
	return errors.Join(errs...)
}
