package ast

import "fmt"

// Position represents a location in a ledger document.
type Position struct {
	Filename string
	Offset   int // Byte offset
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed)
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a byte range in a ledger document. Entry spans cover
// the full source text of the entry, from the first character of its
// header line to the last character of its last continuation line,
// excluding the trailing newline.
type Span struct {
	Start int // Starting byte offset (inclusive)
	End   int // Ending byte offset (exclusive)
}

// IsZero returns true if this is an uninitialized span.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Text extracts the source text for this span (zero-copy slice).
// Returns empty string if the span is invalid or out of bounds.
func (s Span) Text(source []byte) string {
	if s.Start < 0 || s.End <= s.Start || s.End > len(source) {
		return ""
	}
	return string(source[s.Start:s.End])
}

// shifted returns the span moved by delta bytes.
func (s Span) shifted(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}
