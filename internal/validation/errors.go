package validation

import (
	"fmt"
	"regexp"
	"strconv"
)

// ParseError reports a document that is not well-formed YAML or JSON.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return "parse error: " + e.Message
}

// ValidationError reports the first semantic violation found in a chart
// document. Path is a field path such as "models[2].total"; it is empty for
// violations of the document as a whole. Err, when set, is the underlying
// cause and is reachable through errors.As.
type ValidationError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + " " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// newParseError converts a yaml.v3 error into a ParseError, lifting the line
// number out of its message when present.
func newParseError(err error) *ParseError {
	msg := err.Error()
	pe := &ParseError{Message: msg}
	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			pe.Line = n
		}
	}
	return pe
}
