package ast

import "sort"

// SyntaxTree is the parsed form of one ledger document: an ordered,
// non-overlapping sequence of entries covering the interesting parts
// of the source. Trees are immutable after parsing; the incremental
// parser builds a new tree and copies reused entries, so older
// snapshots stay safe for concurrent readers.
type SyntaxTree struct {
	Entries Entries
}

// EntryAt returns the entry whose span contains the byte offset.
func (t *SyntaxTree) EntryAt(offset int) (Entry, bool) {
	if t == nil {
		return nil, false
	}
	// Entries are ordered by span start; find the last entry starting
	// at or before offset.
	i := sort.Search(len(t.Entries), func(i int) bool {
		return t.Entries[i].SourceSpan().Start > offset
	})
	if i == 0 {
		return nil, false
	}
	e := t.Entries[i-1]
	if !e.SourceSpan().Contains(offset) {
		return nil, false
	}
	return e, true
}

// Errors returns all error entries in the tree, in source order.
func (t *SyntaxTree) Errors() []*Error {
	if t == nil {
		return nil
	}
	var errs []*Error
	for _, e := range t.Entries {
		if err, ok := e.(*Error); ok {
			errs = append(errs, err)
		}
	}
	return errs
}
