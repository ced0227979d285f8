package analysis

import (
	"fmt"
	"strings"

	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/index"
	"github.com/mattn/go-runewidth"
)

// symbolAt finds the indexable name under the cursor and classifies
// it. The classification is lexical: accounts carry colons, tags and
// links their sigil, commodities are short uppercase identifiers.
func symbolAt(text []byte, offset int) (index.SymbolKind, string, bool) {
	if offset >= len(text) {
		return 0, "", false
	}

	start, end := offset, offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	if start == end {
		return 0, "", false
	}
	word := string(text[start:end])

	if start > 0 {
		switch text[start-1] {
		case '#':
			return index.Tag, word, true
		case '^':
			return index.Link, word, true
		case '"':
			return index.Payee, word, true
		}
	}

	if strings.Contains(word, ":") {
		return index.Account, word, true
	}
	if len(word) >= 2 && allUpper(word) && (word[0] < '0' || word[0] > '9') {
		return index.Commodity, word, true
	}
	return 0, "", false
}

// hoverSymbol renders hover text for an indexed symbol.
func hoverSymbol(ix *index.Index, kind index.SymbolKind, name string) (string, bool) {
	symbol := ix.Lookup(kind, name)
	if symbol == nil {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n", symbol.Name, kind)

	if kind == index.Account {
		for _, open := range ix.Accounts().Opens(ast.Account(name)) {
			fmt.Fprintf(&b, "opened %s\n", open.Date)
		}
		for _, close := range ix.Accounts().Closes(ast.Account(name)) {
			fmt.Fprintf(&b, "closed %s\n", close.Date)
		}
	}

	switch n := len(symbol.References); n {
	case 0:
		b.WriteString("no references")
	case 1:
		b.WriteString("1 reference")
	default:
		fmt.Fprintf(&b, "%d references", n)
	}
	return b.String(), true
}

// hoverTransaction renders a transaction's postings as an aligned
// table. Column widths use display width, not byte length, so account
// names with wide runes stay aligned.
func hoverTransaction(txn *ast.Transaction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", txn.Date, txn.Flag)
	if txn.Payee != "" {
		fmt.Fprintf(&b, " %q", txn.Payee)
	}
	if txn.Narration != "" {
		fmt.Fprintf(&b, " %q", txn.Narration)
	}
	b.WriteByte('\n')

	accountWidth, amountWidth := 0, 0
	for _, posting := range txn.Postings {
		if w := runewidth.StringWidth(string(posting.Account)); w > accountWidth {
			accountWidth = w
		}
		if posting.Amount != nil {
			if w := runewidth.StringWidth(posting.Amount.Value); w > amountWidth {
				amountWidth = w
			}
		}
	}

	for _, posting := range txn.Postings {
		account := runewidth.FillRight(string(posting.Account), accountWidth)
		if posting.Amount == nil {
			fmt.Fprintf(&b, "  %s\n", strings.TrimRight(account, " "))
			continue
		}
		amount := runewidth.FillLeft(posting.Amount.Value, amountWidth)
		fmt.Fprintf(&b, "  %s  %s %s\n", account, amount, posting.Amount.Currency)
	}

	return strings.TrimRight(b.String(), "\n")
}
