package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/ast"
)

const source = `2024-01-01 open Assets:Cash

2024-01-02 * "Coffee"
  Assets:Cash     -3.50 USD
  Expenses:Food    3.50 USD
`

func sampleDiagnostic() analysis.Diagnostic {
	start := strings.Index(source, "Expenses:Food")
	return analysis.Diagnostic{
		URI:      "file:///ledger/main.beancount",
		Span:     ast.Span{Start: start, End: start + len("Expenses:Food    3.50 USD")},
		Severity: analysis.SeverityWarning,
		Code:     analysis.CodeUndeclaredAccount,
		Message:  "account Expenses:Food is not opened",
	}
}

func TestTextFormatterWithSource(t *testing.T) {
	tf := NewTextFormatter(WithSource("file:///ledger/main.beancount", []byte(source)))
	got := tf.Format(sampleDiagnostic())

	assert.Contains(t, got, "/ledger/main.beancount:5:3: warning: account Expenses:Food is not opened [undeclared-account]")
	assert.Contains(t, got, "   Expenses:Food    3.50 USD")

	// The caret sits under the start of the span.
	lines := strings.Split(got, "\n")
	caret := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "^" {
			caret = i
		}
	}
	assert.NotEqual(t, -1, caret)
	assert.Equal(t, strings.Index(lines[caret-1], "Expenses"), strings.Index(lines[caret], "^"))
}

func TestTextFormatterWithoutSource(t *testing.T) {
	tf := NewTextFormatter()
	got := tf.Format(sampleDiagnostic())

	// No line:column and no excerpt without the document text.
	assert.Contains(t, got, "/ledger/main.beancount: warning: account Expenses:Food is not opened")
	assert.NotZero(t, !strings.Contains(got, "^"))
}

func TestTextFormatterFormatAll(t *testing.T) {
	tf := NewTextFormatter()
	d := sampleDiagnostic()

	got := tf.FormatAll([]analysis.Diagnostic{d, d})
	assert.Equal(t, 2, strings.Count(got, "undeclared-account"))
}

func TestJSONFormatter(t *testing.T) {
	jf := NewJSONFormatter(map[string][]byte{
		"file:///ledger/main.beancount": []byte(source),
	})

	var got []DiagnosticJSON
	assert.NoError(t, json.Unmarshal([]byte(jf.FormatAll([]analysis.Diagnostic{sampleDiagnostic()})), &got))

	assert.Equal(t, []DiagnosticJSON{{
		File:     "/ledger/main.beancount",
		Line:     5,
		Column:   3,
		Severity: "warning",
		Code:     "undeclared-account",
		Message:  "account Expenses:Food is not opened",
	}}, got)
}

func TestJSONFormatterWithoutSource(t *testing.T) {
	jf := NewJSONFormatter(nil)

	var got DiagnosticJSON
	assert.NoError(t, json.Unmarshal([]byte(jf.Format(sampleDiagnostic())), &got))
	assert.Equal(t, 0, got.Line)
	assert.Equal(t, "warning", got.Severity)
}
