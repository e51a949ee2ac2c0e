// Package report defines the structured content of a field report and the
// ways it enters the renderer: YAML/JSON files, Markdown section bodies and
// editor text carrying highlight markup.
package report

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content is everything a report export draws. The renderer only reads it.
type Content struct {
	Title          string          `yaml:"title" json:"title"`
	Fields         []HeaderField   `yaml:"fields" json:"fields"`
	Sections       []TextSection   `yaml:"sections" json:"sections"`
	ChecklistTitle string          `yaml:"checklist_title" json:"checklist_title"`
	Checklist      []ChecklistItem `yaml:"checklist" json:"checklist"`
	Photos         []PhotoEntry    `yaml:"photos" json:"photos"`
}

// HeaderField is one label:value pair of the first-page info block.
// Column 0 lets the renderer alternate between the left and right column.
type HeaderField struct {
	Label     string `yaml:"label" json:"label"`
	Value     string `yaml:"value" json:"value"`
	Column    int    `yaml:"column" json:"column"`
	FullWidth bool   `yaml:"full_width" json:"full_width"`
}

// Format selects how a section body is interpreted.
type Format string

const (
	FormatText     Format = ""
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// TextSection is a titled block of free text. Body lines use two leading
// spaces per indent level and a leading "-" for bullets.
type TextSection struct {
	Title        string `yaml:"title" json:"title"`
	Body         string `yaml:"body" json:"body"`
	Box          bool   `yaml:"box" json:"box"`
	ForceNewPage bool   `yaml:"force_new_page" json:"force_new_page"`
	Format       Format `yaml:"format" json:"format"`
}

// PlainBody returns the body in the indented bullet form the section renderer
// draws, converting Markdown or stripping editor markup as Format requires.
func (s TextSection) PlainBody() string {
	switch s.Format {
	case FormatMarkdown:
		return MarkdownToBody(s.Body)
	case FormatHTML:
		return PlainText(s.Body)
	default:
		return s.Body
	}
}

// ChecklistValue is the selected choice of a checklist row.
type ChecklistValue string

const (
	ChecklistUnset ChecklistValue = ""
	ChecklistYes   ChecklistValue = "Yes"
	ChecklistNo    ChecklistValue = "No"
	ChecklistNA    ChecklistValue = "N/A"
)

// ChecklistChoices lists the drawable choices in column order.
var ChecklistChoices = []ChecklistValue{ChecklistYes, ChecklistNo, ChecklistNA}

// ParseChecklistValue accepts the canonical spellings case-insensitively,
// plus "NA" and "n-a".
func ParseChecklistValue(s string) (ChecklistValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ChecklistUnset, nil
	case "yes", "y", "true":
		return ChecklistYes, nil
	case "no", "n", "false":
		return ChecklistNo, nil
	case "n/a", "na", "n-a":
		return ChecklistNA, nil
	}
	return ChecklistUnset, fmt.Errorf("invalid checklist value %q", s)
}

// Valid reports whether v is unset or one of ChecklistChoices.
func (v ChecklistValue) Valid() bool {
	switch v {
	case ChecklistUnset, ChecklistYes, ChecklistNo, ChecklistNA:
		return true
	}
	return false
}

func (v *ChecklistValue) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseChecklistValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// ChecklistItem is one fixed-choice row.
type ChecklistItem struct {
	Label string         `yaml:"label" json:"label"`
	Value ChecklistValue `yaml:"value" json:"value"`
}

// ImageRef points at image data: a file path or a data: URI. Empty means
// no image.
type ImageRef string

// IsDataURI reports whether the reference embeds its bytes inline.
func (r ImageRef) IsDataURI() bool { return strings.HasPrefix(string(r), "data:") }

// PhotoEntry is one captioned unit of the photographic log. Map entries get
// a page of their own.
type PhotoEntry struct {
	Label       string   `yaml:"label" json:"label"`
	Date        string   `yaml:"date" json:"date"`
	Location    string   `yaml:"location" json:"location"`
	Description string   `yaml:"description" json:"description"`
	Direction   string   `yaml:"direction" json:"direction"`
	Image       ImageRef `yaml:"image" json:"image"`
	IsMap       bool     `yaml:"map" json:"map"`
}

// Field returns the value of the first header field whose label matches
// label case-insensitively, ignoring a trailing colon.
func (c *Content) Field(label string) (string, bool) {
	want := normalizeLabel(label)
	for _, f := range c.Fields {
		if normalizeLabel(f.Label) == want {
			return f.Value, true
		}
	}
	return "", false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

// SitePhotos returns the indices of non-map entries in log order.
func (c *Content) SitePhotos() []int {
	var out []int
	for i, p := range c.Photos {
		if !p.IsMap {
			out = append(out, i)
		}
	}
	return out
}

// Maps returns the indices of map entries in log order.
func (c *Content) Maps() []int {
	var out []int
	for i, p := range c.Photos {
		if p.IsMap {
			out = append(out, i)
		}
	}
	return out
}
