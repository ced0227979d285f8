// Package index maintains the workspace-wide symbol index: accounts,
// commodities, tags, links, and payees aggregated across every known
// document, with their declaration and reference sites.
//
// The index is not safe for concurrent use; the analysis session
// serializes mutations and snapshots results for readers.
package index

import (
	"sort"
	"strings"

	"github.com/beanls/beanls/ast"
)

// SymbolKind classifies an indexed name.
type SymbolKind uint8

const (
	Account SymbolKind = iota
	Commodity
	Tag
	Link
	Payee
)

var symbolKindNames = map[SymbolKind]string{
	Account:   "account",
	Commodity: "commodity",
	Tag:       "tag",
	Link:      "link",
	Payee:     "payee",
}

func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// SymbolKey identifies one symbol in the index.
type SymbolKey struct {
	Kind SymbolKind
	Name string
}

// Site is one occurrence of a symbol in a document.
type Site struct {
	URI  string
	Span ast.Span
}

// Symbol aggregates every occurrence of one name across documents.
// A symbol is not tied to a single document: "Assets:Cash" opened in
// one file and posted to in another is one symbol with sites in both.
type Symbol struct {
	Name         string
	Kind         SymbolKind
	Declarations []Site
	References   []Site
}

// empty reports whether the symbol has no sites left and should be
// pruned from the index.
func (s *Symbol) empty() bool {
	return len(s.Declarations) == 0 && len(s.References) == 0
}

// sortSymbolsForCompletion orders candidates for a completion prefix:
// exact-case prefix matches first, then case-insensitive matches, ties
// broken by name.
func sortSymbolsForCompletion(symbols []*Symbol, prefix string) {
	sort.Slice(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		aExact := strings.HasPrefix(a.Name, prefix)
		bExact := strings.HasPrefix(b.Name, prefix)
		if aExact != bExact {
			return aExact
		}
		return a.Name < b.Name
	})
}
