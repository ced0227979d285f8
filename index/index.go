package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beanls/beanls/ast"
)

// ErrInconsistent reports an internal invariant violation, such as
// removing contributions for a document that never contributed any.
// The session reacts by rebuilding the affected document's analysis
// from scratch.
var ErrInconsistent = errors.New("index: inconsistent state")

// Index is the workspace-wide symbol index. It supports incremental
// update: each document's contributions can be replaced or removed
// independently, tracked through a reverse index from uri to the
// symbol keys the document touched.
type Index struct {
	symbols           map[SymbolKey]*Symbol
	byURI             map[string]map[SymbolKey]struct{}
	accounts          *AccountTree
	postingCurrencies *commodityUses
}

// New creates an empty index.
func New() *Index {
	return &Index{
		symbols:           make(map[SymbolKey]*Symbol),
		byURI:             make(map[string]map[SymbolKey]struct{}),
		accounts:          newAccountTree(),
		postingCurrencies: newCommodityUses(),
	}
}

// UpdateDocument replaces the document's contributions with those of
// the new tree. Two-phase: remove everything previously attributed to
// uri, then walk the tree and add declaration and reference sites.
//
// It returns the keys of every symbol affected by either phase, so the
// caller can re-analyze other open documents that share them.
func (ix *Index) UpdateDocument(uri string, tree *ast.SyntaxTree) []SymbolKey {
	affected := make(map[SymbolKey]struct{})

	ix.removeContributions(uri, affected)

	if tree != nil {
		c := &collector{index: ix, uri: uri, affected: affected}
		c.walk(tree)
	}

	keys := make([]SymbolKey, 0, len(affected))
	for key := range affected {
		keys = append(keys, key)
	}
	return keys
}

// RemoveDocument removes every contribution attributed to uri, as when
// the document is closed. Removing a document the index has never seen
// returns ErrInconsistent.
func (ix *Index) RemoveDocument(uri string) ([]SymbolKey, error) {
	if _, ok := ix.byURI[uri]; !ok {
		return nil, fmt.Errorf("%w: no contributions recorded for %s", ErrInconsistent, uri)
	}

	affected := make(map[SymbolKey]struct{})
	ix.removeContributions(uri, affected)

	keys := make([]SymbolKey, 0, len(affected))
	for key := range affected {
		keys = append(keys, key)
	}
	return keys, nil
}

func (ix *Index) removeContributions(uri string, affected map[SymbolKey]struct{}) {
	keys, ok := ix.byURI[uri]
	if !ok {
		return
	}

	for key := range keys {
		symbol, ok := ix.symbols[key]
		if !ok {
			continue
		}
		symbol.Declarations = filterSites(symbol.Declarations, uri)
		symbol.References = filterSites(symbol.References, uri)
		if symbol.empty() {
			delete(ix.symbols, key)
		}
		affected[key] = struct{}{}
	}

	delete(ix.byURI, uri)
	ix.accounts.removeDocument(uri)
	ix.postingCurrencies.removeDocument(uri)
}

func filterSites(sites []Site, uri string) []Site {
	kept := sites[:0]
	for _, site := range sites {
		if site.URI != uri {
			kept = append(kept, site)
		}
	}
	return kept
}

// Lookup returns the symbol for an exact name, or nil.
func (ix *Index) Lookup(kind SymbolKind, name string) *Symbol {
	return ix.symbols[SymbolKey{Kind: kind, Name: name}]
}

// LookupPrefix returns every symbol of the kind whose name matches the
// prefix case-insensitively, ordered with exact-case prefix matches
// first, then case-insensitive ones, ties broken by name.
func (ix *Index) LookupPrefix(kind SymbolKind, prefix string) []*Symbol {
	lower := strings.ToLower(prefix)

	var matches []*Symbol
	for key, symbol := range ix.symbols {
		if key.Kind != kind {
			continue
		}
		if strings.HasPrefix(strings.ToLower(key.Name), lower) {
			matches = append(matches, symbol)
		}
	}

	sortSymbolsForCompletion(matches, prefix)
	return matches
}

// Definition returns all declaration sites for the name. An empty
// result is valid: the caller reports "no definition".
func (ix *Index) Definition(kind SymbolKind, name string) []Site {
	symbol := ix.Lookup(kind, name)
	if symbol == nil {
		return nil
	}
	sites := make([]Site, len(symbol.Declarations))
	copy(sites, symbol.Declarations)
	return sites
}

// Accounts exposes the account trie for hierarchy queries.
func (ix *Index) Accounts() *AccountTree {
	return ix.accounts
}

// DocumentTouches reports whether the document contributes to any of
// the given symbols. The session uses it to find which other open
// documents need re-analysis after an edit.
func (ix *Index) DocumentTouches(uri string, keys []SymbolKey) bool {
	contributed, ok := ix.byURI[uri]
	if !ok {
		return false
	}
	for _, key := range keys {
		if _, ok := contributed[key]; ok {
			return true
		}
	}
	return false
}

// addDeclaration and addReference create the symbol on first sight.

func (ix *Index) addDeclaration(uri string, kind SymbolKind, name string, span ast.Span) SymbolKey {
	key := SymbolKey{Kind: kind, Name: name}
	symbol := ix.ensure(key)
	symbol.Declarations = append(symbol.Declarations, Site{URI: uri, Span: span})
	ix.recordContribution(uri, key)
	return key
}

func (ix *Index) addReference(uri string, kind SymbolKind, name string, span ast.Span) SymbolKey {
	key := SymbolKey{Kind: kind, Name: name}
	symbol := ix.ensure(key)
	symbol.References = append(symbol.References, Site{URI: uri, Span: span})
	ix.recordContribution(uri, key)
	return key
}

func (ix *Index) ensure(key SymbolKey) *Symbol {
	symbol, ok := ix.symbols[key]
	if !ok {
		symbol = &Symbol{Name: key.Name, Kind: key.Kind}
		ix.symbols[key] = symbol
	}
	return symbol
}

func (ix *Index) recordContribution(uri string, key SymbolKey) {
	keys, ok := ix.byURI[uri]
	if !ok {
		keys = make(map[SymbolKey]struct{})
		ix.byURI[uri] = keys
	}
	keys[key] = struct{}{}
}

// collector walks a syntax tree and feeds the index.
type collector struct {
	index    *Index
	uri      string
	affected map[SymbolKey]struct{}
}

func (c *collector) walk(tree *ast.SyntaxTree) {
	for _, entry := range tree.Entries {
		switch e := entry.(type) {
		case *ast.Open:
			c.declare(Account, string(e.Account), e.Span)
			c.index.accounts.recordOpen(e.Account, c.uri, e.Span, e.Date)
			for _, currency := range e.ConstraintCurrencies {
				c.refer(Commodity, currency, e.Span)
			}

		case *ast.Close:
			c.refer(Account, string(e.Account), e.Span)
			c.index.accounts.recordClose(e.Account, c.uri, e.Span, e.Date)

		case *ast.Commodity:
			c.declare(Commodity, e.Currency, e.Span)

		case *ast.Balance:
			c.refer(Account, string(e.Account), e.Span)
			c.touchAccount(e.Account)
			if e.Amount != nil && e.Amount.Currency != "" {
				c.refer(Commodity, e.Amount.Currency, e.Span)
			}

		case *ast.Pad:
			c.refer(Account, string(e.Account), e.Span)
			c.refer(Account, string(e.AccountPad), e.Span)
			c.touchAccount(e.Account)
			c.touchAccount(e.AccountPad)

		case *ast.Note:
			c.refer(Account, string(e.Account), e.Span)
			c.touchAccount(e.Account)

		case *ast.Document:
			c.refer(Account, string(e.Account), e.Span)
			c.touchAccount(e.Account)

		case *ast.Price:
			c.refer(Commodity, e.Commodity, e.Span)
			if e.Amount != nil && e.Amount.Currency != "" {
				c.refer(Commodity, e.Amount.Currency, e.Span)
			}

		case *ast.Transaction:
			c.transaction(e)
		}
	}
}

func (c *collector) transaction(txn *ast.Transaction) {
	if txn.Payee != "" {
		c.refer(Payee, txn.Payee, txn.Span)
	}
	for _, tag := range txn.Tags {
		c.refer(Tag, string(tag), txn.Span)
	}
	for _, link := range txn.Links {
		c.refer(Link, string(link), txn.Span)
	}

	for _, posting := range txn.Postings {
		c.refer(Account, string(posting.Account), posting.Span)
		c.touchAccount(posting.Account)

		if posting.Amount != nil && posting.Amount.Currency != "" {
			c.refer(Commodity, posting.Amount.Currency, posting.Span)
			c.index.postingCurrencies.add(posting.Amount.Currency, c.uri)
		}
		if posting.Cost != nil && posting.Cost.Amount != nil && posting.Cost.Amount.Currency != "" {
			c.refer(Commodity, posting.Cost.Amount.Currency, posting.Span)
			c.index.postingCurrencies.add(posting.Cost.Amount.Currency, c.uri)
		}
		if posting.Price != nil && posting.Price.Currency != "" {
			c.refer(Commodity, posting.Price.Currency, posting.Span)
			c.index.postingCurrencies.add(posting.Price.Currency, c.uri)
		}
	}
}

func (c *collector) declare(kind SymbolKind, name string, span ast.Span) {
	if name == "" {
		return
	}
	key := c.index.addDeclaration(c.uri, kind, name, span)
	c.affected[key] = struct{}{}
}

func (c *collector) refer(kind SymbolKind, name string, span ast.Span) {
	if name == "" {
		return
	}
	key := c.index.addReference(c.uri, kind, name, span)
	c.affected[key] = struct{}{}
}

// touchAccount keeps the trie aware of accounts that are referenced
// but never opened, so completion still offers them.
func (c *collector) touchAccount(account ast.Account) {
	if account != "" {
		c.index.accounts.touch(account, c.uri)
	}
}
