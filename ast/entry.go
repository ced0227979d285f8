// Package ast declares the types used to represent syntax trees for
// ledger documents.
//
// A document parses into an ordered sequence of Entry nodes: dated
// directives (transactions, open, balance, ...), top-level keywords
// (option, include, plugin), standalone comments, and error nodes that
// stand in for unparseable input. Entries are ordered by their source
// span and never overlap, which is what makes incremental re-parsing
// of an edited region possible: entries outside the region are copied
// into the new tree with their offsets shifted.
package ast

import (
	"golang.org/x/exp/slices"
)

// EntryKind identifies the syntactic kind of an entry. The set is
// closed; consumers dispatch on it with a type switch over the
// concrete entry types.
type EntryKind uint8

const (
	KindTransaction EntryKind = iota
	KindOpen
	KindClose
	KindCommodity
	KindBalance
	KindPad
	KindNote
	KindDocument
	KindPrice
	KindEvent
	KindCustom
	KindOption
	KindInclude
	KindPlugin
	KindComment
	KindError
)

var kindNames = map[EntryKind]string{
	KindTransaction: "transaction",
	KindOpen:        "open",
	KindClose:       "close",
	KindCommodity:   "commodity",
	KindBalance:     "balance",
	KindPad:         "pad",
	KindNote:        "note",
	KindDocument:    "document",
	KindPrice:       "price",
	KindEvent:       "event",
	KindCustom:      "custom",
	KindOption:      "option",
	KindInclude:     "include",
	KindPlugin:      "plugin",
	KindComment:     "comment",
	KindError:       "error",
}

func (k EntryKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Entry is the interface implemented by all ledger entry types.
//
// Shifted returns a copy of the entry with every contained span moved
// by the given byte and line deltas. The incremental parser uses it to
// reuse entries that lie entirely outside an edited region; entries
// are copied rather than aliased so that an older tree snapshot stays
// valid for concurrent readers.
type Entry interface {
	Kind() EntryKind
	SourceSpan() Span
	Shifted(bytes, lines int) Entry
}

// node is the embeddable base for all entry types, carrying the start
// position and the full source span.
type node struct {
	Pos  Position
	Span Span
}

func (n *node) SourceSpan() Span { return n.Span }

func (n node) shifted(bytes, lines int) node {
	n.Pos.Offset += bytes
	n.Pos.Line += lines
	n.Span = n.Span.shifted(bytes)
	return n
}

// Entries is the ordered sequence of entries in one document.
type Entries []Entry

// SortBySpan orders entries by span start. Parsed trees are produced
// in this order already; this is for manually assembled trees.
func SortBySpan(entries Entries) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.SourceSpan().Start - b.SourceSpan().Start
	})
}
