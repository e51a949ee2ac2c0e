package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ContractError lists the structural problems that stop an export before any
// layout happens.
type ContractError struct {
	Violations []string
}

func (e *ContractError) Error() string {
	if len(e.Violations) == 1 {
		return "report content: " + e.Violations[0]
	}
	return fmt.Sprintf("report content: %d problems: %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

// ParseError describes content that could not be decoded.
type ParseError struct {
	Source string // file name, empty for in-memory data
	Line   int    // 1-based, 0 when unknown
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse report")
	if e.Source != "" {
		b.WriteString(" " + e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

var lineRE = regexp.MustCompile(`line (\d+)`)

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Source: source, Reason: err.Error(), Err: err}
	if m := lineRE.FindStringSubmatch(pe.Reason); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	pe.Reason = strings.TrimPrefix(pe.Reason, "yaml: ")
	return pe
}
