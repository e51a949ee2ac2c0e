package report

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Result is the outcome of decoding report content: exactly one of Content
// and Err is set.
type Result struct {
	Content *Content
	Err     *ParseError
}

// Ok reports whether decoding succeeded.
func (r Result) Ok() bool { return r.Err == nil && r.Content != nil }

// Parse decodes YAML content. JSON is accepted as the YAML subset it is.
// Unknown keys are rejected so typos do not silently drop fields.
func Parse(data []byte) Result {
	return parse("", data)
}

// ParseFile reads and decodes a content file.
func ParseFile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: &ParseError{Source: path, Reason: "read failed", Err: err}}
	}
	return parse(path, data)
}

func parse(source string, data []byte) Result {
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{Err: &ParseError{Source: source, Reason: "content is empty"}}
	}
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{Err: &ParseError{Source: source, Reason: "content is empty"}}
		}
		return Result{Err: newParseError(source, err)}
	}
	return Result{Content: &c}
}
