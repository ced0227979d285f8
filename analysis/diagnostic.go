package analysis

import (
	"sort"

	"github.com/beanls/beanls/ast"
)

// Severity of a diagnostic, ordered from most to least severe.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

var severityNames = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityHint:    "hint",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// Diagnostic codes. Stable identifiers clients can filter on.
const (
	CodeSyntax            = "syntax"
	CodeUndeclaredAccount = "undeclared-account"
	CodeClosedAccount     = "closed-account"
	CodeUnbalanced        = "unbalanced"
	CodeAmbiguousBalance  = "ambiguous-balance"
	CodeDuplicateOpen     = "duplicate-open"
	CodeUnknownCommodity  = "unknown-commodity"
	CodeBeanCheck         = "bean-check"
)

// Diagnostic is one finding attached to a span of a document. The set
// for a document is always recomputed and replaced whole, never
// patched, so no stale entries survive a re-parse.
type Diagnostic struct {
	URI      string
	Span     ast.Span
	Severity Severity
	Code     string
	Message  string
}

// sortDiagnostics orders findings by span start, then severity, then
// code, for deterministic output.
func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		return a.Code < b.Code
	})
}
