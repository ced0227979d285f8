package index

import (
	"sort"

	"github.com/beanls/beanls/ast"
)

// AccountEvent is one open or close directive for an account.
type AccountEvent struct {
	URI  string
	Span ast.Span
	Date *ast.Date
}

// AccountTree is a trie over colon-separated account segments. Every
// prefix of a known account is addressable even when never declared
// directly: indexing "Assets:Bank:Checking" makes "Assets" and
// "Assets:Bank" real nodes, so segment completion works at any depth.
type AccountTree struct {
	root *accountNode
}

type accountNode struct {
	children map[string]*accountNode

	// Per-uri contribution counts, so removing a document's entries
	// can prune nodes that no remaining document mentions.
	contributions map[string]int

	opens  []AccountEvent
	closes []AccountEvent
}

func newAccountTree() *AccountTree {
	return &AccountTree{root: newAccountNode()}
}

func newAccountNode() *accountNode {
	return &accountNode{
		children:      make(map[string]*accountNode),
		contributions: make(map[string]int),
	}
}

// touch inserts the account path, counting a contribution from uri on
// every node along the path.
func (t *AccountTree) touch(account ast.Account, uri string) *accountNode {
	node := t.root
	for _, segment := range account.Segments() {
		child, ok := node.children[segment]
		if !ok {
			child = newAccountNode()
			node.children[segment] = child
		}
		child.contributions[uri]++
		node = child
	}
	return node
}

func (t *AccountTree) recordOpen(account ast.Account, uri string, span ast.Span, date *ast.Date) {
	node := t.touch(account, uri)
	node.opens = append(node.opens, AccountEvent{URI: uri, Span: span, Date: date})
}

func (t *AccountTree) recordClose(account ast.Account, uri string, span ast.Span, date *ast.Date) {
	node := t.touch(account, uri)
	node.closes = append(node.closes, AccountEvent{URI: uri, Span: span, Date: date})
}

// removeDocument strips every contribution from uri and prunes nodes
// that no longer have any.
func (t *AccountTree) removeDocument(uri string) {
	t.root.removeDocument(uri)
}

func (n *accountNode) removeDocument(uri string) {
	for segment, child := range n.children {
		child.removeDocument(uri)
		delete(child.contributions, uri)
		if len(child.contributions) == 0 && len(child.children) == 0 {
			delete(n.children, segment)
		}
	}
	n.opens = filterEvents(n.opens, uri)
	n.closes = filterEvents(n.closes, uri)
}

func filterEvents(events []AccountEvent, uri string) []AccountEvent {
	kept := events[:0]
	for _, ev := range events {
		if ev.URI != uri {
			kept = append(kept, ev)
		}
	}
	return kept
}

// lookup returns the node for the account path, or nil.
func (t *AccountTree) lookup(account ast.Account) *accountNode {
	node := t.root
	for _, segment := range account.Segments() {
		child, ok := node.children[segment]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// ChildrenOf returns the immediate child segments under the given
// account prefix, sorted. An empty prefix lists the root categories in
// use. Only one level is returned: "Assets:" offers "Cash" and "Bank",
// not "Bank:Checking".
func (t *AccountTree) ChildrenOf(prefix ast.Account) []string {
	node := t.root
	if prefix != "" {
		node = t.lookup(prefix)
		if node == nil {
			return nil
		}
	}

	segments := make([]string, 0, len(node.children))
	for segment := range node.children {
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	return segments
}

// Opens returns the open events recorded for the account, ordered by
// (date, uri, offset). This ordering decides which open is "first"
// when the same account is opened in several documents.
func (t *AccountTree) Opens(account ast.Account) []AccountEvent {
	node := t.lookup(account)
	if node == nil {
		return nil
	}
	events := make([]AccountEvent, len(node.opens))
	copy(events, node.opens)
	sortEvents(events)
	return events
}

// Closes returns the close events recorded for the account, ordered by
// (date, uri, offset).
func (t *AccountTree) Closes(account ast.Account) []AccountEvent {
	node := t.lookup(account)
	if node == nil {
		return nil
	}
	events := make([]AccountEvent, len(node.closes))
	copy(events, node.closes)
	sortEvents(events)
	return events
}

func sortEvents(events []AccountEvent) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !datesEqual(a.Date, b.Date) {
			return dateBefore(a.Date, b.Date)
		}
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		return a.Span.Start < b.Span.Start
	})
}

// ClosedAt reports whether the account is closed as of the given date:
// there is a close event strictly before date and no reopening open
// event on or after the close. Returns the governing close event.
func (t *AccountTree) ClosedAt(account ast.Account, date *ast.Date) (AccountEvent, bool) {
	node := t.lookup(account)
	if node == nil || len(node.closes) == 0 || date == nil {
		return AccountEvent{}, false
	}

	closes := t.Closes(account)
	lastClose := closes[len(closes)-1]
	if lastClose.Date == nil || !lastClose.Date.Before(date.Time) {
		return AccountEvent{}, false
	}

	// Reopened after the close.
	for _, open := range node.opens {
		if open.Date != nil && !open.Date.Before(lastClose.Date.Time) {
			return AccountEvent{}, false
		}
	}

	return lastClose, true
}

func datesEqual(a, b *ast.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b.Time)
}

func dateBefore(a, b *ast.Date) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(b.Time)
}
