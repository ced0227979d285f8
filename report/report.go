// Package report renders diagnostics for consumers outside the
// editor: command-line output with source excerpts, and structured
// JSON for scripts and CI.
//
// The analysis package produces diagnostics with byte spans; this
// package owns their presentation, so the same findings can be shown
// as terminal text or machine-readable output without the analysis
// layer knowing either format.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/output"
)

// Formatter renders diagnostics in one output format.
type Formatter interface {
	// Format renders a single diagnostic.
	Format(d analysis.Diagnostic) string

	// FormatAll renders a batch.
	FormatAll(diags []analysis.Diagnostic) string
}

// TextFormatter renders diagnostics for a terminal, each finding
// followed by an excerpt of the offending source line with a caret
// under the span.
type TextFormatter struct {
	sources map[string][]byte
	styles  *output.Styles
}

// TextOption configures a TextFormatter.
type TextOption func(*TextFormatter)

// WithSource registers a document's text so its diagnostics can show
// source excerpts.
func WithSource(uri string, text []byte) TextOption {
	return func(tf *TextFormatter) {
		tf.sources[uri] = text
	}
}

// WithStyles enables terminal styling.
func WithStyles(styles *output.Styles) TextOption {
	return func(tf *TextFormatter) {
		tf.styles = styles
	}
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts ...TextOption) *TextFormatter {
	tf := &TextFormatter{sources: make(map[string][]byte)}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format renders one diagnostic:
//
//	main.beancount:12:3: error: transaction does not balance: residual -1.45 USD [unbalanced]
//
//	   Expenses:Food    8.55 USD
//	   ^
func (tf *TextFormatter) Format(d analysis.Diagnostic) string {
	var buf bytes.Buffer

	text, haveSource := tf.sources[d.URI]
	severity := d.Severity.String()

	location := displayPath(d.URI)
	if haveSource {
		line, col := lineColumn(text, d.Span.Start)
		location = fmt.Sprintf("%s:%d:%d", location, line, col)
	}

	if tf.styles != nil {
		buf.WriteString(tf.styles.FilePath(location))
		buf.WriteString(": ")
		buf.WriteString(tf.styles.Severity(severity, severity))
	} else {
		buf.WriteString(location)
		buf.WriteString(": ")
		buf.WriteString(severity)
	}
	buf.WriteString(": ")
	buf.WriteString(d.Message)

	code := fmt.Sprintf("[%s]", d.Code)
	if tf.styles != nil {
		code = tf.styles.Dim(code)
	}
	buf.WriteString(" ")
	buf.WriteString(code)
	buf.WriteByte('\n')

	if haveSource {
		tf.writeExcerpt(&buf, text, d.Span.Start)
	}
	return buf.String()
}

// FormatAll renders a batch, findings separated by blank lines.
func (tf *TextFormatter) FormatAll(diags []analysis.Diagnostic) string {
	var buf bytes.Buffer
	for i, d := range diags {
		buf.WriteString(tf.Format(d))
		if i < len(diags)-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// writeExcerpt shows the line the diagnostic starts on with a caret
// under the start column.
func (tf *TextFormatter) writeExcerpt(buf *bytes.Buffer, text []byte, offset int) {
	if offset > len(text) {
		offset = len(text)
	}
	lineStart := offset
	for lineStart > 0 && text[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := offset
	for lineEnd < len(text) && text[lineEnd] != '\n' {
		lineEnd++
	}
	line := string(text[lineStart:lineEnd])

	buf.WriteString("\n   ")
	buf.WriteString(line)
	buf.WriteString("\n   ")
	for i := lineStart; i < offset; i++ {
		if text[i] == '\t' {
			buf.WriteByte('\t')
		} else {
			buf.WriteByte(' ')
		}
	}
	buf.WriteString("^\n")
}

// lineColumn converts a byte offset to 1-based line and column.
func lineColumn(text []byte, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func displayPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// JSONFormatter renders diagnostics as structured JSON.
type JSONFormatter struct {
	sources map[string][]byte
}

// NewJSONFormatter creates a JSON formatter. Sources, when provided,
// let it include line and column positions.
func NewJSONFormatter(sources map[string][]byte) *JSONFormatter {
	return &JSONFormatter{sources: sources}
}

// DiagnosticJSON is the wire shape of one finding.
type DiagnosticJSON struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Format renders a single diagnostic as one JSON object.
func (jf *JSONFormatter) Format(d analysis.Diagnostic) string {
	data, _ := json.Marshal(jf.toJSON(d))
	return string(data)
}

// FormatAll renders a batch as an indented JSON array.
func (jf *JSONFormatter) FormatAll(diags []analysis.Diagnostic) string {
	data, _ := json.MarshalIndent(jf.ToSlice(diags), "", "  ")
	return string(data)
}

// ToSlice converts a batch for embedding in a larger response.
func (jf *JSONFormatter) ToSlice(diags []analysis.Diagnostic) []DiagnosticJSON {
	out := make([]DiagnosticJSON, 0, len(diags))
	for _, d := range diags {
		out = append(out, jf.toJSON(d))
	}
	return out
}

func (jf *JSONFormatter) toJSON(d analysis.Diagnostic) DiagnosticJSON {
	dj := DiagnosticJSON{
		File:     displayPath(d.URI),
		Severity: d.Severity.String(),
		Code:     d.Code,
		Message:  d.Message,
	}
	if text, ok := jf.sources[d.URI]; ok {
		dj.Line, dj.Column = lineColumn(text, d.Span.Start)
	}
	return dj
}
