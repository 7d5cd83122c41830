package errors

import (
	"fmt"
	"regexp"
)

// Position is a 1-based line and 0-based column reported by the component
// compiler.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Diagnostic is an error or warning as reported by the component compiler.
type Diagnostic struct {
	Message string    `json:"message"`
	Start   *Position `json:"start,omitempty"`
	End     *Position `json:"end,omitempty"`
}

// MessageLocation is the source location attached to a bundler message.
type MessageLocation struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Length   int    `json:"length"`
	LineText string `json:"lineText"`
}

// CompileError is a compiler diagnostic in the shape the bundler's error
// channel expects. The text is never rewritten.
type CompileError struct {
	Text     string           `json:"text"`
	Location *MessageLocation `json:"location,omitempty"`
}

// Error implements the error interface.
func (c *CompileError) Error() string {
	if c.Location == nil {
		return c.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", c.Location.File, c.Location.Line, c.Location.Column, c.Text)
}

// AsError returns the diagnostic as a coded E401 error carrying the location.
func (c *CompileError) AsError() *Error {
	e := New("E401").Wrap(c)
	if c.Location != nil {
		e.Path = c.Location.File
		e.WithLocation(c.Location.File, c.Location.Line, c.Location.Column)
	}
	return e
}

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// FromDiagnostic converts a compiler diagnostic for filename into a bundler
// message. A location is only attached when both start and end are known.
func FromDiagnostic(source, filename string, d Diagnostic) *CompileError {
	ce := &CompileError{Text: d.Message}
	if d.Start == nil || d.End == nil {
		return ce
	}

	var lineText string
	lines := lineBreak.Split(source, -1)
	if d.Start.Line >= 1 && d.Start.Line <= len(lines) {
		lineText = lines[d.Start.Line-1]
	}

	lineEnd := len(lineText)
	if d.Start.Line == d.End.Line {
		lineEnd = d.End.Column
	}
	length := lineEnd - d.Start.Column
	if length < 0 {
		length = 0
	}

	ce.Location = &MessageLocation{
		File:     filename,
		Line:     d.Start.Line,
		Column:   d.Start.Column,
		Length:   length,
		LineText: lineText,
	}
	return ce
}
