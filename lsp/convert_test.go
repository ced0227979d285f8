package lsp

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/ast"
)

func pos(line, character int) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}

func TestLineTableOffset(t *testing.T) {
	text := []byte("2024-01-02 * \"Café\"\n  Assets:Cash  -1.00 USD\n")
	table := newLineTable(text)

	tests := []struct {
		name string
		pos  protocol.Position
		want int
	}{
		{"document start", pos(0, 0), 0},
		{"mid first line", pos(0, 11), 11},
		{"after two-byte rune", pos(0, 18), 19}, // é is one UTF-16 unit, two bytes
		{"second line start", pos(1, 0), 21},
		{"second line indent", pos(1, 2), 23},
		{"clamped past line end", pos(0, 99), 20},
		{"clamped past last line", pos(9, 0), len(text)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.offset(tt.pos))
		})
	}
}

func TestLineTablePosition(t *testing.T) {
	text := []byte("2024-01-02 * \"Café\"\n  Assets:Cash  -1.00 USD\n")
	table := newLineTable(text)

	tests := []struct {
		name   string
		offset int
		want   protocol.Position
	}{
		{"document start", 0, pos(0, 0)},
		{"mid first line", 11, pos(0, 11)},
		{"after two-byte rune", 19, pos(0, 18)},
		{"second line start", 21, pos(1, 0)},
		{"document end", len(text), pos(2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.position(tt.offset))
		})
	}
}

func TestLineTableRoundTrip(t *testing.T) {
	text := []byte("one\ntwo \U0001f4b0 three\nfour\n")
	table := newLineTable(text)

	// Every rune boundary survives offset -> position -> offset.
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i]&0xc0 == 0x80 {
			continue // inside a rune
		}
		assert.Equal(t, i, table.offset(table.position(i)))
	}
}

func TestLineTableRangeOf(t *testing.T) {
	text := []byte("2024-01-01 open Assets:Cash\n2024-03-01 close Assets:Cash\n")
	table := newLineTable(text)

	r := table.rangeOf(ast.Span{Start: 28, End: 56})
	assert.Equal(t, pos(1, 0), r.Start)
	assert.Equal(t, pos(1, 28), r.End)
}

func TestApplyChange(t *testing.T) {
	text := []byte("abc def")

	got := applyChange(text, analysis.TextChange{Start: 4, End: 7, Text: "xyzzy"})
	assert.Equal(t, "abc xyzzy", string(got))

	got = applyChange(text, analysis.TextChange{Start: 0, End: 0, Text: "> "})
	assert.Equal(t, "> abc def", string(got))

	got = applyChange(text, analysis.TextChange{Start: 0, End: 7, Text: ""})
	assert.Equal(t, "", string(got))
}

func TestDiagnosticConversion(t *testing.T) {
	text := []byte("2024-01-01 open Assets:Cash\n2024-02-01 open Assets:Cash\n")
	table := newLineTable(text)

	diags := toProtocolDiagnostics(table, []analysis.Diagnostic{{
		Span:     ast.Span{Start: 28, End: 56},
		Severity: analysis.SeverityWarning,
		Code:     "duplicate-open",
		Message:  "account Assets:Cash opened twice",
	}})

	assert.Equal(t, 1, len(diags))
	assert.Equal(t, pos(1, 0), diags[0].Range.Start)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, "beanls", *diags[0].Source)
	assert.Equal(t, "account Assets:Cash opened twice", diags[0].Message)
}
