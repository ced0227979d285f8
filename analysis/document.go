// Package analysis hosts the analysis session: document state,
// semantic diagnostics, and the read queries (completion, hover,
// definition) a language server front-end needs.
package analysis

import (
	"strings"

	"github.com/beanls/beanls/ast"
)

// Document is the session's state for one open file: its current text
// and version, the syntax tree derived from them, and the last
// published diagnostics. Owned exclusively by the session; trees and
// texts are replaced wholesale on change, never mutated, so a snapshot
// taken under the session's read lock stays valid after release.
type Document struct {
	URI         string
	Version     int32
	Text        []byte
	Tree        *ast.SyntaxTree
	Diagnostics []Diagnostic
}

// TextChange is one contiguous edit in byte offsets against the
// document's current text. A whole-document replace is {0, len, text}.
type TextChange struct {
	Start int
	End   int
	Text  string
}

// apply returns the text after the change.
func (c TextChange) apply(text []byte) []byte {
	out := make([]byte, 0, len(text)-(c.End-c.Start)+len(c.Text))
	out = append(out, text[:c.Start]...)
	out = append(out, c.Text...)
	out = append(out, text[c.End:]...)
	return out
}

// filenameFromURI extracts a display filename from a document uri.
func filenameFromURI(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
