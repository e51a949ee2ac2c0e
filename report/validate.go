package report

import (
	"fmt"
	"strings"
)

// Validate checks the structural fields the renderer cannot do without. It
// returns a *ContractError listing every violation, or nil.
func (c *Content) Validate() error {
	if c == nil {
		return &ContractError{Violations: []string{"content is nil"}}
	}
	var v []string
	if strings.TrimSpace(c.Title) == "" {
		v = append(v, "title is required")
	}
	for i, f := range c.Fields {
		if strings.TrimSpace(f.Label) == "" {
			v = append(v, fmt.Sprintf("field %d: label is required", i+1))
		}
		if f.Column < 0 || f.Column > 3 {
			v = append(v, fmt.Sprintf("field %q: column %d out of range 0-3", f.Label, f.Column))
		}
	}
	for i, s := range c.Sections {
		if strings.TrimSpace(s.Title) == "" {
			v = append(v, fmt.Sprintf("section %d: title is required", i+1))
		}
		switch s.Format {
		case FormatText, FormatMarkdown, FormatHTML:
		default:
			v = append(v, fmt.Sprintf("section %q: unknown format %q", s.Title, s.Format))
		}
	}
	for i, item := range c.Checklist {
		if strings.TrimSpace(item.Label) == "" {
			v = append(v, fmt.Sprintf("checklist row %d: label is required", i+1))
		}
		if !item.Value.Valid() {
			v = append(v, fmt.Sprintf("checklist row %d: invalid value %q", i+1, item.Value))
		}
	}
	for i, p := range c.Photos {
		if strings.TrimSpace(p.Label) == "" {
			v = append(v, fmt.Sprintf("photo %d: label is required", i+1))
		}
	}
	if len(v) == 0 {
		return nil
	}
	return &ContractError{Violations: v}
}
