// Package parser turns ledger source text into an ast.SyntaxTree.
//
// Parsing never fails: unparseable input becomes ast.Error entries
// covering the offending lines, and the parser resumes at the next
// line that can start an entry. The incremental entry point in
// incremental.go re-parses only the edited region of a document and
// splices reused entries from the previous tree around it.
package parser

import (
	"github.com/beanls/beanls/ast"
)

// Parser consumes the token stream produced by the Lexer and builds
// entries. One Parser instance parses one buffer; the interner may be
// shared across parses.
type Parser struct {
	source   []byte
	filename string
	tokens   []Token
	pos      int
	lastEnd  int // end offset of the last consumed non-newline token
	interner *Interner
	entries  ast.Entries
}

// Parse parses a complete document and always returns a tree covering
// the whole input, even if entirely composed of error entries. Syntax
// problems are represented as ast.Error entries, not returned.
func Parse(source []byte, filename string) *ast.SyntaxTree {
	lexer := NewLexer(source, filename)
	tokens := lexer.ScanAll()

	p := &Parser{
		source:   source,
		filename: filename,
		tokens:   tokens,
		interner: lexer.Interner(),
		entries:  make(ast.Entries, 0, 64),
	}

	return p.parseDocument()
}

// ParseString parses a document from a string. Mostly for tests.
func ParseString(source, filename string) *ast.SyntaxTree {
	return Parse([]byte(source), filename)
}

func (p *Parser) parseDocument() *ast.SyntaxTree {
	for !p.isAtEnd() {
		tok := p.peek()

		if tok.Type == NEWLINE {
			p.advance()
			continue
		}

		// Inline comments are consumed by the entry parsers; a
		// comment reaching the top level is a standalone comment line.
		if tok.Type == COMMENT {
			p.entries = append(p.entries, p.parseComment())
			continue
		}

		start := p.peek()
		entry, err := p.parseEntry()
		if err != nil {
			p.entries = append(p.entries, p.errorEntry(start, err))
			continue
		}
		p.entries = append(p.entries, entry)
	}

	return &ast.SyntaxTree{Entries: p.entries}
}

// parseEntry dispatches on the first token of an entry.
func (p *Parser) parseEntry() (ast.Entry, error) {
	tok := p.peek()

	if tok.Column > 1 {
		return nil, p.errorAtToken(tok, "unexpected indented line outside an entry")
	}

	switch tok.Type {
	case DATE:
		return p.parseDated()
	case OPTION:
		return p.parseOption()
	case INCLUDE:
		return p.parseInclude()
	case PLUGIN:
		return p.parsePlugin()
	case PUSHTAG, POPTAG, PUSHMETA, POPMETA:
		return p.parsePushPop()
	default:
		return nil, p.errorAtToken(tok, "expected a dated directive or top-level keyword, got %s", tok.Type)
	}
}

// parseDated parses any entry that starts with a date.
func (p *Parser) parseDated() (ast.Entry, error) {
	pos := p.tokenPos(p.peek())

	date, err := p.parseDate()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	switch tok.Type {
	case OPEN:
		return p.parseOpen(pos, date)
	case CLOSE:
		return p.parseClose(pos, date)
	case COMMODITY:
		return p.parseCommodity(pos, date)
	case BALANCE:
		return p.parseBalance(pos, date)
	case PAD:
		return p.parsePad(pos, date)
	case NOTE:
		return p.parseNote(pos, date)
	case DOCUMENT:
		return p.parseDocumentDirective(pos, date)
	case PRICE:
		return p.parsePrice(pos, date)
	case EVENT:
		return p.parseEvent(pos, date)
	case CUSTOM:
		return p.parseCustom(pos, date)
	case TXN, ASTERISK, EXCLAIM:
		return p.parseTransaction(pos, date)
	default:
		return nil, p.errorAtToken(tok, "expected directive keyword or transaction flag, got %s", tok.Type)
	}
}

// parseComment parses one standalone comment line.
func (p *Parser) parseComment() *ast.Comment {
	tok := p.advance()

	comment := &ast.Comment{Text: tok.String(p.source)}
	comment.Pos = p.tokenPos(tok)
	comment.Span = ast.Span{Start: tok.Start, End: tok.End}

	p.match(NEWLINE)
	return comment
}

// errorEntry recovers from a parse failure by consuming everything up
// to the next line that can start a new entry, and records the skipped
// region as an ast.Error node. This bounds the blast radius of broken
// input to the lines between two entry boundaries.
func (p *Parser) errorEntry(start Token, err error) *ast.Error {
	end := start.End
	if prev := p.previous(); prev.Type != NEWLINE && prev.End > end {
		end = prev.End
	}

	for !p.isAtEnd() {
		tok := p.peek()
		if tok.Line > start.Line && tok.Column == 1 && tok.Type != NEWLINE {
			break
		}
		if tok.Type != NEWLINE && tok.End > end {
			end = tok.End
		}
		p.advance()
	}

	msg := err.Error()
	if serr, ok := err.(*SyntaxError); ok {
		msg = serr.Msg
	}

	node := &ast.Error{Message: msg}
	node.Pos = p.tokenPos(start)
	node.Span = ast.Span{Start: start.Start, End: end}
	return node
}
