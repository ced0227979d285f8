package analysis

import (
	"fmt"
	"strings"

	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/index"
)

// Analyze derives the full diagnostic set for one document from its
// tree and the current index. It is a pure function: no hidden state,
// so the session can re-run it for any document whenever the index
// changes underneath it.
//
// Each check guards its own preconditions; one check failing to apply
// never suppresses another.
func Analyze(uri string, tree *ast.SyntaxTree, ix *index.Index) []Diagnostic {
	if tree == nil {
		return nil
	}

	e := &engine{uri: uri, index: ix}

	for _, entry := range tree.Entries {
		switch v := entry.(type) {
		case *ast.Error:
			e.report(v.Span, SeverityError, CodeSyntax, v.Message)
		case *ast.Transaction:
			e.transaction(v)
		case *ast.Open:
			e.duplicateOpen(v)
		case *ast.Balance:
			e.accountRef(v.Account, v.Span, v.Date)
			if v.Amount != nil {
				e.unknownCommodity(v.Amount.Currency, v.Span)
			}
		case *ast.Price:
			e.unknownCommodity(v.Commodity, v.Span)
			if v.Amount != nil {
				e.unknownCommodity(v.Amount.Currency, v.Span)
			}
		case *ast.Pad:
			e.accountRef(v.Account, v.Span, v.Date)
			e.accountRef(v.AccountPad, v.Span, v.Date)
		case *ast.Note:
			e.accountRef(v.Account, v.Span, v.Date)
		case *ast.Document:
			e.accountRef(v.Account, v.Span, v.Date)
		}
	}

	sortDiagnostics(e.diags)
	return e.diags
}

type engine struct {
	uri   string
	index *index.Index
	diags []Diagnostic
}

func (e *engine) report(span ast.Span, severity Severity, code, message string) {
	e.diags = append(e.diags, Diagnostic{
		URI:      e.uri,
		Span:     span,
		Severity: severity,
		Code:     code,
		Message:  message,
	})
}

// transaction runs the per-posting account checks and the balance
// check.
func (e *engine) transaction(txn *ast.Transaction) {
	for _, posting := range txn.Postings {
		e.accountRef(posting.Account, posting.Span, txn.Date)
	}
	e.balance(txn)
}

// accountRef checks one account reference: undeclared and closed.
func (e *engine) accountRef(account ast.Account, span ast.Span, date *ast.Date) {
	if account == "" || e.index == nil {
		return
	}

	symbol := e.index.Lookup(index.Account, string(account))
	if symbol == nil || len(symbol.Declarations) == 0 {
		e.report(span, SeverityWarning, CodeUndeclaredAccount,
			fmt.Sprintf("account %s is not opened anywhere in the workspace", account))
		return
	}

	if closeEvent, closed := e.index.Accounts().ClosedAt(account, date); closed {
		e.report(span, SeverityError, CodeClosedAccount,
			fmt.Sprintf("account %s was closed on %s", account, closeEvent.Date))
	}
}

// duplicateOpen flags every open that is not the first for its account
// across the whole workspace, ordered by (date, uri, offset). Within a
// single document this is exactly "the second one by source order".
func (e *engine) duplicateOpen(open *ast.Open) {
	if e.index == nil {
		return
	}

	opens := e.index.Accounts().Opens(open.Account)
	if len(opens) < 2 {
		return
	}

	first := opens[0]
	if first.URI == e.uri && first.Span == open.Span {
		return
	}

	e.report(open.Span, SeverityError, CodeDuplicateOpen,
		fmt.Sprintf("account %s is already opened (first opened %s)", open.Account, first.Date))
}

// unknownCommodity reports commodities referenced by price or balance
// directives that are never declared and never used by any posting.
// Declarations are optional in the format, so this is informational.
func (e *engine) unknownCommodity(name string, span ast.Span) {
	if name == "" || e.index == nil {
		return
	}

	symbol := e.index.Lookup(index.Commodity, name)
	if symbol != nil && len(symbol.Declarations) > 0 {
		return
	}
	if e.index.CommodityUsedInPostings(name) {
		return
	}

	e.report(span, SeverityInfo, CodeUnknownCommodity,
		fmt.Sprintf("commodity %s is never declared or used in a posting", name))
}

// balance checks that the transaction's postings net to zero per
// currency. At most one posting may elide its amount; its value is
// inferred as the balancing leg, which allows at most one residual
// currency to remain.
func (e *engine) balance(txn *ast.Transaction) {
	var (
		weights []weight
		elided  int
	)

	for _, posting := range txn.Postings {
		w, ok := postingWeight(posting)
		if !ok {
			// Unweighable posting: the check does not apply.
			return
		}
		if w == nil {
			if posting.Amount == nil {
				elided++
			}
			continue
		}
		weights = append(weights, *w)
	}

	if elided > 1 {
		e.report(txn.Span, SeverityError, CodeAmbiguousBalance,
			"ambiguous balance: more than one posting without an amount")
		return
	}

	leftover := residuals(weights)
	if len(leftover) == 0 {
		return
	}
	if elided == 1 && len(leftover) == 1 {
		// The single elided posting absorbs the single residual.
		return
	}

	parts := make([]string, len(leftover))
	for i, r := range leftover {
		parts[i] = fmt.Sprintf("%s %s", r.Amount, r.Currency)
	}
	e.report(txn.Span, SeverityError, CodeUnbalanced,
		fmt.Sprintf("transaction does not balance: residual %s", strings.Join(parts, ", ")))
}
