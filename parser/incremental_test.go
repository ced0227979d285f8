package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/beanls/beanls/ast"
)

const incrementalBase = `option "operating_currency" "USD"

2024-01-01 open Assets:Bank:Checking USD
2024-01-01 open Expenses:Groceries

; weekly shopping
2024-01-06 * "Migros" "Groceries"
  Assets:Bank:Checking  -45.60 USD
  Expenses:Groceries     45.60 USD

2024-01-10 balance Assets:Bank:Checking 954.40 USD

2024-02-01 close Expenses:Groceries
`

// replace builds the edited text and the corresponding Edit from a
// search-and-replace on the base document.
func replace(t *testing.T, base, old, new string) (string, Edit) {
	t.Helper()

	start := strings.Index(base, old)
	assert.NotEqual(t, -1, start, "old text not found")

	edited := base[:start] + new + base[start+len(old):]
	return edited, Edit{Start: start, OldEnd: start + len(old), NewEnd: start + len(new)}
}

// fingerprint reduces a tree to a comparable shape: kind, span, line,
// and posting spans per entry.
func fingerprint(tree *ast.SyntaxTree) []string {
	out := make([]string, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		span := e.SourceSpan()
		line := 0
		switch v := e.(type) {
		case *ast.Transaction:
			line = v.Pos.Line
			s := fmt.Sprintf("%s %d-%d line=%d", e.Kind(), span.Start, span.End, line)
			for _, p := range v.Postings {
				s += fmt.Sprintf(" posting=%d-%d", p.Span.Start, p.Span.End)
			}
			out = append(out, s)
			continue
		case *ast.Error:
			out = append(out, fmt.Sprintf("%s %d-%d msg=%s", e.Kind(), span.Start, span.End, v.Message))
			continue
		}
		out = append(out, fmt.Sprintf("%s %d-%d", e.Kind(), span.Start, span.End))
	}
	return out
}

func TestIncrementalMatchesFullParse(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{
			name: "edit inside narration",
			old:  `"Groceries"`,
			new:  `"Weekly groceries"`,
		},
		{
			name: "edit posting amount",
			old:  "-45.60 USD",
			new:  "-47.05 USD",
		},
		{
			name: "insert new entry between entries",
			old:  "\n2024-01-10 balance",
			new:  "\n2024-01-08 * \"Coffee\"\n  Assets:Bank:Checking  -3.50 USD\n  Expenses:Groceries  3.50 USD\n\n2024-01-10 balance",
		},
		{
			name: "delete an entry",
			old:  "2024-01-01 open Expenses:Groceries\n",
			new:  "",
		},
		{
			name: "join entries by deleting blank line",
			old:  "45.60 USD\n\n2024-01-10",
			new:  "45.60 USD\n2024-01-10",
		},
		{
			name: "split transaction by inserting blank line",
			old:  "-45.60 USD\n  Expenses",
			new:  "-45.60 USD\n\n  Expenses",
		},
		{
			name: "introduce a syntax error",
			old:  "2024-02-01 close",
			new:  "2024-02-01 clos",
		},
		{
			name: "fix the document start",
			old:  `option "operating_currency" "USD"`,
			new:  `option "title" "Personal ledger"`,
		},
		{
			name: "append at end of file",
			old:  "2024-02-01 close Expenses:Groceries\n",
			new:  "2024-02-01 close Expenses:Groceries\n2024-02-02 open Assets:Savings\n",
		},
		{
			name: "type a partial date",
			old:  "\n2024-02-01 close",
			new:  "\n2024-0\n2024-02-01 close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldText := []byte(incrementalBase)
			prev := Parse(oldText, "test")

			edited, edit := replace(t, incrementalBase, tt.old, tt.new)
			newText := []byte(edited)

			got := Incremental(prev, oldText, newText, edit, "test")
			want := Parse(newText, "test")

			assert.Equal(t, fingerprint(want), fingerprint(got))
		})
	}
}

func TestIncrementalWithoutPreviousTree(t *testing.T) {
	newText := []byte("2024-01-01 open Assets:Cash\n")
	got := Incremental(nil, nil, newText, Edit{Start: 0, OldEnd: 0, NewEnd: len(newText)}, "test")

	assert.Equal(t, 1, len(got.Entries))
	assert.Equal(t, ast.KindOpen, got.Entries[0].Kind())
}

func TestIncrementalReusesPrefixEntries(t *testing.T) {
	oldText := []byte(incrementalBase)
	prev := Parse(oldText, "test")

	edited, edit := replace(t, incrementalBase, "954.40", "960.00")
	got := Incremental(prev, oldText, []byte(edited), edit, "test")

	// Entries before the edited region must be the same objects, not
	// re-parsed copies.
	assert.Equal(t, len(prev.Entries), len(got.Entries))
	for i := 0; i < 4; i++ {
		if prev.Entries[i] != got.Entries[i] {
			t.Fatalf("entry %d was re-parsed instead of reused", i)
		}
	}
}

func TestIncrementalShiftsSuffixEntries(t *testing.T) {
	oldText := []byte(incrementalBase)
	prev := Parse(oldText, "test")

	insert := "2024-01-02 open Assets:Savings\n"
	edited, edit := replace(t, incrementalBase, "\n; weekly", "\n"+insert+"; weekly")
	got := Incremental(prev, oldText, []byte(edited), edit, "test")

	want := Parse([]byte(edited), "test")
	assert.Equal(t, fingerprint(want), fingerprint(got))

	// The final entry moved down by the inserted line.
	last := got.Entries[len(got.Entries)-1].(*ast.Close)
	prevLast := prev.Entries[len(prev.Entries)-1].(*ast.Close)
	assert.Equal(t, prevLast.Pos.Line+1, last.Pos.Line)
	assert.Equal(t, prevLast.Span.Start+len(insert), last.Span.Start)
}
