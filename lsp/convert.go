package lsp

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/ast"
)

// lineTable maps between byte offsets and protocol positions. The
// protocol counts characters in UTF-16 code units, so both directions
// decode the line's runes.
type lineTable struct {
	text   []byte
	starts []int
}

func newLineTable(text []byte) *lineTable {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineTable{text: text, starts: starts}
}

func (t *lineTable) lineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(t.starts) {
		return len(t.text)
	}
	return t.starts[line]
}

func (t *lineTable) lineEnd(line int) int {
	if line+1 < len(t.starts) {
		return t.starts[line+1]
	}
	return len(t.text)
}

// offset converts a protocol position to a byte offset, clamping
// positions past the end of the line or document.
func (t *lineTable) offset(pos protocol.Position) int {
	i := t.lineStart(int(pos.Line))
	end := t.lineEnd(int(pos.Line))
	units := int(pos.Character)
	for i < end && units > 0 {
		r, size := utf8.DecodeRune(t.text[i:])
		if r == '\n' {
			break
		}
		units -= utf16.RuneLen(r)
		i += size
	}
	return i
}

// position converts a byte offset back to a protocol position.
func (t *lineTable) position(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.text) {
		offset = len(t.text)
	}
	line := sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i] > offset
	}) - 1

	units := 0
	for i := t.starts[line]; i < offset; {
		r, size := utf8.DecodeRune(t.text[i:])
		units += utf16.RuneLen(r)
		i += size
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(units),
	}
}

func (t *lineTable) rangeOf(span ast.Span) protocol.Range {
	return protocol.Range{Start: t.position(span.Start), End: t.position(span.End)}
}

// applyChange applies one decoded content change so the offsets of the
// next change in the batch resolve against the updated text.
func applyChange(text []byte, c analysis.TextChange) []byte {
	out := make([]byte, 0, len(text)-(c.End-c.Start)+len(c.Text))
	out = append(out, text[:c.Start]...)
	out = append(out, c.Text...)
	return append(out, text[c.End:]...)
}

const diagnosticSource = "beanls"

func toProtocolDiagnostics(table *lineTable, diags []analysis.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(diags))
	for i, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		source := diagnosticSource
		out[i] = protocol.Diagnostic{
			Range:    table.rangeOf(d.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   &source,
			Message:  d.Message,
		}
	}
	return out
}

func toProtocolSeverity(s analysis.Severity) protocol.DiagnosticSeverity {
	switch s {
	case analysis.SeverityError:
		return protocol.DiagnosticSeverityError
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case analysis.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func toProtocolCompletionKind(k analysis.CompletionKind) protocol.CompletionItemKind {
	switch k {
	case analysis.CompleteAccount:
		return protocol.CompletionItemKindField
	case analysis.CompleteCommodity:
		return protocol.CompletionItemKindUnit
	case analysis.CompleteTag:
		return protocol.CompletionItemKindKeyword
	case analysis.CompleteLink:
		return protocol.CompletionItemKindReference
	case analysis.CompletePayee:
		return protocol.CompletionItemKindText
	default:
		return protocol.CompletionItemKindValue
	}
}
