package parser

import (
	"strconv"
	"strings"

	"github.com/beanls/beanls/ast"
)

// Helper parsing methods used across entry parsers. These implement
// the common patterns in ledger syntax.

// parseDate parses a DATE token and converts it to *ast.Date.
func (p *Parser) parseDate() (*ast.Date, error) {
	tok := p.peek()
	if tok.Type != DATE {
		return nil, p.errorAtToken(tok, "expected date")
	}
	p.advance()

	date, err := ast.ParseDate(tok.String(p.source))
	if err != nil {
		return nil, p.errorAtToken(tok, "%v", err)
	}

	return date, nil
}

// parseAccount parses an ACCOUNT token and converts it to ast.Account.
// The account name is interned to save memory.
func (p *Parser) parseAccount() (ast.Account, error) {
	tok := p.peek()
	if tok.Type != ACCOUNT {
		return "", p.errorAtToken(tok, "expected account, got %s %q", tok.Type, tok.String(p.source))
	}
	p.advance()

	account, err := ast.ParseAccount(p.interner.InternBytes(tok.Bytes(p.source)))
	if err != nil {
		return "", p.errorAtToken(tok, "%v", err)
	}

	return account, nil
}

// parseAmount parses an amount: NUMBER CURRENCY. The number may be an
// arithmetic expression (40.00 / 2, (2 + 3) * 4), evaluated at parse
// time.
func (p *Parser) parseAmount() (*ast.Amount, error) {
	value, err := p.parseAmountValue()
	if err != nil {
		return nil, err
	}

	currTok := p.peek()
	if currTok.Type != IDENT {
		return nil, p.errorAtToken(currTok, "expected currency")
	}
	p.advance()

	return &ast.Amount{
		Value:    value,
		Currency: p.interner.InternBytes(currTok.Bytes(p.source)),
	}, nil
}

// parseAmountOptional parses an amount whose currency may be omitted
// (postings can elide the currency, which is then inferred).
func (p *Parser) parseAmountOptional() (*ast.Amount, error) {
	value, err := p.parseAmountValue()
	if err != nil {
		return nil, err
	}

	currency := ""
	if p.check(IDENT) {
		currTok := p.advance()
		currency = p.interner.InternBytes(currTok.Bytes(p.source))
	}

	return &ast.Amount{
		Value:    value,
		Currency: currency,
	}, nil
}

// parseAmountValue returns the amount's numeric text: a NUMBER token
// verbatim (preserving source formatting like "-50.00"), or the
// evaluated result of an arithmetic expression as a decimal string.
func (p *Parser) parseAmountValue() (string, error) {
	if p.isExpressionStart() {
		result, err := p.parseExpression()
		if err != nil {
			return "", err
		}
		return result.String(), nil
	}

	numTok := p.peek()
	if numTok.Type != NUMBER {
		return "", p.errorAtToken(numTok, "expected number")
	}
	p.advance()

	return numTok.String(p.source), nil
}

// parseCost parses a cost specification:
//
//	{ [*] [AMOUNT] [, DATE] [, LABEL] }  per-unit cost
//	{{ AMOUNT }}                         total cost
func (p *Parser) parseCost() (*ast.Cost, error) {
	cost := &ast.Cost{}

	if p.match(LDBRACE) {
		cost.IsTotal = true
		amt, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		cost.Amount = amt
		if !p.match(RDBRACE) {
			return nil, p.errorAtToken(p.peek(), "expected '}}'")
		}
		return cost, nil
	}

	if !p.match(LBRACE) {
		return nil, p.errorAtToken(p.peek(), "expected '{'")
	}

	// Merge cost {*}
	if p.match(ASTERISK) {
		cost.IsMerge = true
		if !p.match(RBRACE) {
			return nil, p.errorAtToken(p.peek(), "expected '}'")
		}
		return cost, nil
	}

	if p.check(NUMBER) || p.check(LPAREN) || p.check(MINUS) {
		amt, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		cost.Amount = amt
	}

	if p.match(COMMA) {
		if p.check(DATE) {
			date, err := p.parseDate()
			if err != nil {
				return nil, err
			}
			cost.Date = date
		}
	}

	if p.match(COMMA) {
		if p.check(STRING) {
			labelTok := p.advance()
			cost.Label = p.unquoteString(labelTok.String(p.source))
		}
	}

	if !p.match(RBRACE) {
		return nil, p.errorAtToken(p.peek(), "expected '}'")
	}
	return cost, nil
}

// parseString parses a STRING token and unquotes it.
func (p *Parser) parseString() (string, error) {
	tok := p.peek()
	if tok.Type != STRING {
		return "", p.errorAtToken(tok, "expected string")
	}
	p.advance()

	raw := tok.String(p.source)
	if len(raw) < 2 || raw[len(raw)-1] != '"' {
		return "", p.errorAtToken(tok, "unterminated string")
	}

	return p.unquoteString(raw), nil
}

// parseIdent parses an IDENT token.
func (p *Parser) parseIdent() (string, error) {
	tok := p.peek()
	if tok.Type != IDENT {
		return "", p.errorAtToken(tok, "expected identifier")
	}
	p.advance()

	return p.interner.InternBytes(tok.Bytes(p.source)), nil
}

// expectEndOfLine consumes an optional inline comment and the line
// terminator. Anything else left on the line is a syntax error.
func (p *Parser) expectEndOfLine() error {
	p.match(COMMENT)
	if p.match(NEWLINE) || p.isAtEnd() {
		return nil
	}
	return p.errorAtToken(p.peek(), "unexpected %s %q at end of line", p.peek().Type, p.peek().String(p.source))
}

// parseMetadata parses indented metadata lines (key: value pairs)
// following a directive. Metadata keys can be identifiers or keywords
// (e.g. "price:" is a valid key).
func (p *Parser) parseMetadata() []*ast.Metadata {
	var metadata []*ast.Metadata

	for {
		keyTok := p.peek()

		isMetadataKey := keyTok.Column > 1 &&
			(keyTok.Type == IDENT || p.isKeyword(keyTok.Type)) &&
			p.peekAhead(1).Type == COLON

		if !isMetadataKey {
			break
		}

		p.advance() // key
		colon := p.advance()

		value := p.unquoteString(p.parseRestOfLine(colon.End))
		p.match(COMMENT)
		p.match(NEWLINE)

		metadata = append(metadata, &ast.Metadata{
			Key:   keyTok.String(p.source),
			Value: value,
		})
	}

	return metadata
}

// isKeyword returns true if the token type is a directive keyword.
func (p *Parser) isKeyword(typ TokenType) bool {
	switch typ {
	case TXN, BALANCE, OPEN, CLOSE, COMMODITY, PAD, NOTE, DOCUMENT,
		PRICE, EVENT, CUSTOM, OPTION, INCLUDE, PLUGIN,
		PUSHTAG, POPTAG, PUSHMETA, POPMETA:
		return true
	default:
		return false
	}
}

// parseRestOfLine reads all tokens until end of line and returns them
// as a string, reconstructing literal spacing between tokens from the
// source. prevEnd is the end offset of the previously consumed token.
func (p *Parser) parseRestOfLine(prevEnd int) string {
	var buf strings.Builder
	lastEnd := prevEnd

	for !p.isAtEnd() && p.peek().Type != NEWLINE && p.peek().Type != COMMENT {
		tok := p.advance()

		if gap := tok.Start - lastEnd; gap > 0 {
			buf.Write(p.source[lastEnd:tok.Start])
		}

		buf.WriteString(tok.String(p.source))
		lastEnd = tok.End
	}

	return strings.TrimSpace(buf.String())
}

// unquoteString removes surrounding quotes from a string.
func (p *Parser) unquoteString(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err == nil {
			return unquoted
		}
		return s[1 : len(s)-1]
	}
	return s
}

// Token navigation

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) Token {
	pos := p.pos + n
	if pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[pos]
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return Token{Type: ILLEGAL}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Type == typ
}

func (p *Parser) match(types ...TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) advance() Token {
	if p.isAtEnd() {
		return p.peek()
	}
	tok := p.tokens[p.pos]
	p.pos++
	if tok.Type != NEWLINE && tok.Type != EOF {
		p.lastEnd = tok.End
	}
	return tok
}

// Error helpers

func (p *Parser) errorAtToken(tok Token, format string, args ...interface{}) error {
	return newErrorf(p.tokenPos(tok), format, args...)
}

// tokenPos extracts position information from a token.
func (p *Parser) tokenPos(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}
