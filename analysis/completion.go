package analysis

import (
	"strings"
	"time"

	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/index"
)

// CompletionKind classifies a completion candidate.
type CompletionKind uint8

const (
	CompleteAccount CompletionKind = iota
	CompleteCommodity
	CompleteTag
	CompleteLink
	CompletePayee
	CompleteDate
)

// CompletionItem is one completion candidate. Span is the byte range
// of the partial input the label should replace.
type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
	Span   ast.Span
}

// completionContext is the parsed cursor situation: what kind of name
// is being typed and the partial text so far.
type completionContext struct {
	kind   CompletionKind
	prefix string
	span   ast.Span
	none   bool
}

// completionAt classifies the cursor position from the document text
// alone. The surrounding word and the characters before it decide the
// candidate kind:
//
//	#par       tags
//	^inv       links
//	"Mig       payees (on a transaction header line)
//	Assets:B   accounts
//	45.60 U    commodities (word preceded by a number)
//	2024-      dates (at the start of a line)
func completionAt(text []byte, offset int) completionContext {
	if offset > len(text) {
		offset = len(text)
	}

	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	word := string(text[start:offset])
	span := ast.Span{Start: start, End: offset}

	lineStart := start
	for lineStart > 0 && text[lineStart-1] != '\n' {
		lineStart--
	}

	// Sigil-introduced names.
	if start > lineStart {
		switch text[start-1] {
		case '#':
			return completionContext{kind: CompleteTag, prefix: word,
				span: ast.Span{Start: start - 1, End: offset}}
		case '^':
			return completionContext{kind: CompleteLink, prefix: word,
				span: ast.Span{Start: start - 1, End: offset}}
		case '"':
			if startsWithDate(text[lineStart:]) {
				return completionContext{kind: CompletePayee, prefix: word, span: span}
			}
			return completionContext{none: true}
		}
	}

	// A date being typed at the start of a line.
	if start == lineStart && word != "" && word[0] >= '0' && word[0] <= '9' {
		return completionContext{kind: CompleteDate, prefix: word, span: span}
	}

	// A word preceded by a number is a currency position.
	if prevTokenIsNumber(text, lineStart, start) {
		return completionContext{kind: CompleteCommodity, prefix: word, span: span}
	}

	if word != "" && (word[0] >= 'A' && word[0] <= 'Z') {
		if strings.Contains(word, ":") || !allUpper(word) || start > lineStart {
			return completionContext{kind: CompleteAccount, prefix: word, span: span}
		}
	}

	return completionContext{none: true}
}

// candidates resolves the context against the index.
func (c completionContext) candidates(ix *index.Index, now time.Time) []CompletionItem {
	if c.none {
		return nil
	}

	switch c.kind {
	case CompleteAccount:
		return c.accountCandidates(ix)
	case CompleteCommodity:
		return c.symbolCandidates(ix, index.Commodity)
	case CompleteTag:
		return c.symbolCandidates(ix, index.Tag)
	case CompleteLink:
		return c.symbolCandidates(ix, index.Link)
	case CompletePayee:
		return c.symbolCandidates(ix, index.Payee)
	case CompleteDate:
		today := now.Format("2006-01-02")
		if !strings.HasPrefix(today, c.prefix) {
			return nil
		}
		return []CompletionItem{{Label: today, Kind: CompleteDate, Detail: "today", Span: c.span}}
	}
	return nil
}

// accountCandidates completes accounts segment-wise: a prefix without
// a colon matches whole account names, while "Assets:Ba" offers the
// matching immediate children of "Assets" and nothing deeper.
func (c completionContext) accountCandidates(ix *index.Index) []CompletionItem {
	idx := strings.LastIndexByte(c.prefix, ':')
	if idx < 0 {
		return c.fromSymbols(ix.LookupPrefix(index.Account, c.prefix), CompleteAccount)
	}

	parent := ast.Account(c.prefix[:idx])
	partial := strings.ToLower(c.prefix[idx+1:])

	var items []CompletionItem
	for _, segment := range ix.Accounts().ChildrenOf(parent) {
		if !strings.HasPrefix(strings.ToLower(segment), partial) {
			continue
		}
		items = append(items, CompletionItem{
			Label: string(parent) + ":" + segment,
			Kind:  CompleteAccount,
			Span:  c.span,
		})
	}
	return items
}

func (c completionContext) symbolCandidates(ix *index.Index, kind index.SymbolKind) []CompletionItem {
	return c.fromSymbols(ix.LookupPrefix(kind, c.prefix), c.kind)
}

func (c completionContext) fromSymbols(symbols []*index.Symbol, kind CompletionKind) []CompletionItem {
	items := make([]CompletionItem, 0, len(symbols))
	for _, symbol := range symbols {
		detail := ""
		if len(symbol.Declarations) == 0 {
			detail = "undeclared"
		}
		items = append(items, CompletionItem{
			Label:  symbol.Name,
			Kind:   kind,
			Detail: detail,
			Span:   c.span,
		})
	}
	return items
}

func isWordByte(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' ||
		ch >= '0' && ch <= '9' || ch == ':' || ch == '-' || ch == '_' || ch == '.' ||
		ch >= 0x80
}

func allUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			return false
		}
	}
	return true
}

func startsWithDate(line []byte) bool {
	if len(line) < 10 {
		return false
	}
	for _, i := range [...]int{0, 1, 2, 3, 5, 6, 8, 9} {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return line[4] == '-' && line[7] == '-'
}

// prevTokenIsNumber checks whether the last non-space run before the
// word is numeric, which marks a currency position after an amount.
func prevTokenIsNumber(text []byte, lineStart, wordStart int) bool {
	i := wordStart
	for i > lineStart && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	if i == wordStart || i == lineStart {
		return false
	}
	ch := text[i-1]
	return ch >= '0' && ch <= '9'
}
