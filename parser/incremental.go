package parser

import (
	"bytes"

	"github.com/beanls/beanls/ast"
)

// Edit describes one contiguous text change as byte offsets: the range
// [Start, OldEnd) of the previous text was replaced by the range
// [Start, NewEnd) of the new text.
type Edit struct {
	Start  int
	OldEnd int
	NewEnd int
}

// Incremental re-parses a document after an edit, reusing entries of
// the previous tree that the edit cannot have affected.
//
// The ledger grammar has a property that makes this cheap: no entry
// extends past a line whose first column holds a token. Lines starting
// with a date, a directive keyword, or a comment are therefore safe
// split points. Incremental re-parses only the boundary-delimited
// region around the edit and splices the previous tree's entries in
// before and after it, with offsets and line numbers shifted.
//
// The result is identical to Parse(newText, filename). When there is
// no previous tree to reuse, it falls back to a full parse.
func Incremental(prev *ast.SyntaxTree, oldText, newText []byte, edit Edit, filename string) *ast.SyntaxTree {
	if prev == nil {
		return Parse(newText, filename)
	}

	regionStart := boundaryBefore(newText, edit.Start)
	regionEndOld := boundaryAfter(oldText, edit.OldEnd)

	deltaBytes := edit.NewEnd - edit.OldEnd
	deltaLines := bytes.Count(newText[edit.Start:edit.NewEnd], nl) -
		bytes.Count(oldText[edit.Start:edit.OldEnd], nl)

	regionEndNew := regionEndOld + deltaBytes
	if regionEndNew < regionStart || regionEndNew > len(newText) {
		return Parse(newText, filename)
	}

	entries := make(ast.Entries, 0, len(prev.Entries)+8)

	// Entries entirely before the re-parsed region are position-stable
	// and reused as-is.
	i := 0
	for ; i < len(prev.Entries); i++ {
		if prev.Entries[i].SourceSpan().End > regionStart {
			break
		}
		entries = append(entries, prev.Entries[i])
	}

	// Re-parse the edited region standalone and shift its entries into
	// document coordinates.
	regionLine := bytes.Count(newText[:regionStart], nl)
	region := Parse(newText[regionStart:regionEndNew], filename)
	for _, e := range region.Entries {
		entries = append(entries, e.Shifted(regionStart, regionLine))
	}

	// Entries entirely after the region shift by the edit delta.
	for ; i < len(prev.Entries); i++ {
		if prev.Entries[i].SourceSpan().Start < regionEndOld {
			continue
		}
		entries = append(entries, prev.Entries[i].Shifted(deltaBytes, deltaLines))
	}

	return &ast.SyntaxTree{Entries: entries}
}

var nl = []byte{'\n'}

// boundaryBefore returns the start offset of the last safe split line
// at or before offset, or 0.
func boundaryBefore(text []byte, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}

	// Walk back to the start of the line containing offset, then keep
	// walking back line by line until a boundary line is found.
	lineStart := lineStartAt(text, offset)
	for {
		if isBoundaryLine(text, lineStart) && lineStart < offset {
			return lineStart
		}
		if lineStart == 0 {
			return 0
		}
		lineStart = lineStartAt(text, lineStart-1)
	}
}

// boundaryAfter returns the start offset of the first safe split line
// strictly after offset, or len(text).
func boundaryAfter(text []byte, offset int) int {
	for i := offset; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		lineStart := i + 1
		if lineStart > offset && isBoundaryLine(text, lineStart) {
			return lineStart
		}
	}
	return len(text)
}

// lineStartAt returns the offset of the first byte of the line
// containing offset.
func lineStartAt(text []byte, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	for offset > 0 && text[offset-1] != '\n' {
		offset--
	}
	return offset
}

// isBoundaryLine reports whether the line starting at lineStart begins
// a token in column one that no earlier entry can extend across: a
// date, a lowercase keyword start, or a comment.
func isBoundaryLine(text []byte, lineStart int) bool {
	if lineStart >= len(text) {
		return false
	}
	ch := text[lineStart]
	switch {
	case ch == ';':
		return true
	case ch >= 'a' && ch <= 'z':
		return true
	case ch >= '0' && ch <= '9':
		return datePatternAt(text, lineStart)
	default:
		return false
	}
}

// datePatternAt checks for YYYY-MM-DD at the given offset.
func datePatternAt(text []byte, start int) bool {
	if start+10 > len(text) {
		return false
	}
	src := text[start:]
	for _, i := range [...]int{0, 1, 2, 3, 5, 6, 8, 9} {
		if src[i] < '0' || src[i] > '9' {
			return false
		}
	}
	return src[4] == '-' && src[7] == '-'
}
