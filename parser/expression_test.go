package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/beanls/beanls/ast"
)

func TestParseAmountExpressions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		value  string
	}{
		{
			name:   "division",
			source: "2024-08-09 balance Assets:Cash 40.00 / 2 USD\n",
			value:  "20",
		},
		{
			name:   "multiplication binds tighter than addition",
			source: "2024-08-09 balance Assets:Cash 2 + 3 * 4 USD\n",
			value:  "14",
		},
		{
			name:   "parentheses override precedence",
			source: "2024-08-09 balance Assets:Cash (2 + 3) * 4 USD\n",
			value:  "20",
		},
		{
			name:   "nested parentheses",
			source: "2024-08-09 balance Assets:Cash ((40.00 / 2) + 5) USD\n",
			value:  "25",
		},
		{
			name:   "unary minus before a group",
			source: "2024-08-09 balance Assets:Cash - (2 + 3) USD\n",
			value:  "-5",
		},
		{
			name:   "non-terminating division",
			source: "2024-08-09 balance Assets:Cash 40.00 / 3 USD\n",
			value:  "13.3333333333333333",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := ParseString(tt.source, "test")

			assert.Equal(t, 1, len(tree.Entries))
			balance, ok := tree.Entries[0].(*ast.Balance)
			assert.True(t, ok)
			assert.Equal(t, tt.value, balance.Amount.Value)
			assert.Equal(t, "USD", balance.Amount.Currency)
		})
	}
}

func TestParsePostingWithExpressionAmount(t *testing.T) {
	source := `2024-01-02 * "split"
  Assets:Cash  40.00 / 2 USD
  Expenses:Food  -20.00 USD
`
	tree := ParseString(source, "test")

	assert.Equal(t, 1, len(tree.Entries))
	txn, ok := tree.Entries[0].(*ast.Transaction)
	assert.True(t, ok)
	assert.Equal(t, 2, len(txn.Postings))
	assert.Equal(t, "20", txn.Postings[0].Amount.Value)
	assert.Equal(t, "USD", txn.Postings[0].Amount.Currency)

	// The plain number keeps its source formatting.
	assert.Equal(t, "-20.00", txn.Postings[1].Amount.Value)
}

func TestParseSimpleNegativeKeepsFormatting(t *testing.T) {
	tree := ParseString("2024-08-09 balance Assets:Cash -50.00 USD\n", "test")

	balance := tree.Entries[0].(*ast.Balance)
	assert.Equal(t, "-50.00", balance.Amount.Value)
}

func TestParseExpressionDivisionByZero(t *testing.T) {
	tree := ParseString("2024-08-09 balance Assets:Cash 40.00 / 0 USD\n", "test")

	entry, ok := tree.Entries[0].(*ast.Error)
	assert.True(t, ok)
	assert.Contains(t, entry.Message, "division by zero")
}

func TestParseExpressionInCost(t *testing.T) {
	source := `2024-01-02 * "lot"
  Assets:Brokerage  10 HOOL {1037.46 / 2 USD}
  Assets:Cash  -5187.30 USD
`
	tree := ParseString(source, "test")

	txn, ok := tree.Entries[0].(*ast.Transaction)
	assert.True(t, ok)
	assert.Equal(t, "518.73", txn.Postings[0].Cost.Amount.Value)
}
