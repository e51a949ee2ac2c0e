package report

import (
	"regexp"
	"strings"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// SuggestedFilename builds "<file number>_<project>_<date>.pdf" from the
// header fields, dropping parts that are missing. Characters outside
// [A-Za-z0-9-] collapse to a single underscore. Content without any of the
// three fields gets "report.pdf".
func SuggestedFilename(c *Content) string {
	var parts []string
	for _, labels := range [][]string{
		{"File Number", "File No", "File #"},
		{"Project Name", "Project"},
		{"Date", "Report Date"},
	} {
		for _, l := range labels {
			if v, ok := c.Field(l); ok {
				if s := sanitizeNamePart(v); s != "" {
					parts = append(parts, s)
				}
				break
			}
		}
	}
	if len(parts) == 0 {
		return "report.pdf"
	}
	return strings.Join(parts, "_") + ".pdf"
}

func sanitizeNamePart(s string) string {
	return strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
}
