package parser

// Lexer implements a zero-copy lexer for ledger documents.
//
// The zero-copy approach:
// - Tokens store byte offsets, not string values
// - String interning for repeated values
// - Pre-allocated token buffer
//
// Unlike a batch compiler the language server needs line structure, so
// the lexer emits NEWLINE and COMMENT tokens instead of eliding them;
// the parser uses them to delimit entries and postings.

import (
	"bytes"
)

// Lexer tokenizes ledger source.
type Lexer struct {
	source   []byte    // Source buffer
	filename string    // Filename for error reporting
	pos      int       // Current byte position
	line     int       // Current line (1-indexed)
	column   int       // Current column (1-indexed)
	tokens   []Token   // Token buffer (pre-allocated)
	interner *Interner // String interning pool
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source []byte, filename string) *Lexer {
	// Estimate token count: empirically ~1 token per 15 bytes once
	// newlines are included. Pre-allocation avoids slice growth.
	estimatedTokens := len(source)/15 + 64

	internerCap := len(source) / 40
	if internerCap < 256 {
		internerCap = 256
	}

	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		column:   1,
		tokens:   make([]Token, 0, estimatedTokens),
		interner: NewInterner(internerCap),
	}
}

// Interner returns the string interner, shared with the parser.
func (l *Lexer) Interner() *Interner {
	return l.interner
}

// ScanAll lexes the entire source and returns all tokens.
// Single pass, no backtracking.
func (l *Lexer) ScanAll() []Token {
	for l.pos < len(l.source) {
		l.skipBlanks()

		if l.pos >= len(l.source) {
			break
		}

		tok := l.scanToken()
		l.tokens = append(l.tokens, tok)
	}

	l.tokens = append(l.tokens, Token{
		Type:   EOF,
		Start:  l.pos,
		End:    l.pos,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens
}

// scanToken scans the next token from the current position.
func (l *Lexer) scanToken() Token {
	start := l.pos
	startLine := l.line
	startCol := l.column

	ch := l.advance()

	switch {
	case ch == '\n':
		return Token{NEWLINE, start, l.pos, startLine, startCol}

	case ch == ';':
		return l.scanComment(start, startLine, startCol)

	// Dates come first: YYYY-MM-DD starts with a digit, so this must
	// precede number scanning.
	case ch >= '0' && ch <= '9':
		if l.isDatePattern(start) {
			return l.scanDate(start, startLine, startCol)
		}
		return l.scanNumber(start, startLine, startCol)
	case (ch == '-' || ch == '+') && l.peekIsDigit():
		return l.scanNumber(start, startLine, startCol)

	case ch == '"':
		return l.scanString(start, startLine, startCol)

	case ch == '#':
		return l.scanTag(start, startLine, startCol)

	case ch == '^':
		return l.scanLink(start, startLine, startCol)

	// Accounts and currency identifiers start with a capital letter;
	// bytes >= 0x80 allow Unicode letters in account names.
	case ch >= 'A' && ch <= 'Z' || ch >= 0x80:
		return l.scanAccountOrIdent(start, startLine, startCol)

	// Keywords start with a lowercase letter.
	case ch >= 'a' && ch <= 'z':
		return l.scanKeywordOrIdent(start, startLine, startCol)

	case ch == '*':
		return Token{ASTERISK, start, l.pos, startLine, startCol}
	case ch == '!':
		return Token{EXCLAIM, start, l.pos, startLine, startCol}
	case ch == ':':
		return Token{COLON, start, l.pos, startLine, startCol}
	case ch == ',':
		return Token{COMMA, start, l.pos, startLine, startCol}

	// Bare + and - reach here only when not glued to a digit (the
	// signed-number case above wins); they are expression operators.
	case ch == '+':
		return Token{PLUS, start, l.pos, startLine, startCol}
	case ch == '-':
		return Token{MINUS, start, l.pos, startLine, startCol}
	case ch == '/':
		return Token{SLASH, start, l.pos, startLine, startCol}
	case ch == '(':
		return Token{LPAREN, start, l.pos, startLine, startCol}
	case ch == ')':
		return Token{RPAREN, start, l.pos, startLine, startCol}

	case ch == '{':
		if l.peek() == '{' {
			l.advance()
			return Token{LDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{LBRACE, start, l.pos, startLine, startCol}

	case ch == '}':
		if l.peek() == '}' {
			l.advance()
			return Token{RDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{RBRACE, start, l.pos, startLine, startCol}

	case ch == '@':
		if l.peek() == '@' {
			l.advance()
			return Token{ATAT, start, l.pos, startLine, startCol}
		}
		return Token{AT, start, l.pos, startLine, startCol}

	default:
		return Token{ILLEGAL, start, l.pos, startLine, startCol}
	}
}

// isDatePattern checks if the position starts a date pattern YYYY-MM-DD.
func (l *Lexer) isDatePattern(start int) bool {
	if start+10 > len(l.source) {
		return false
	}

	src := l.source[start:]
	return src[0] >= '0' && src[0] <= '9' &&
		src[1] >= '0' && src[1] <= '9' &&
		src[2] >= '0' && src[2] <= '9' &&
		src[3] >= '0' && src[3] <= '9' &&
		src[4] == '-' &&
		src[5] >= '0' && src[5] <= '9' &&
		src[6] >= '0' && src[6] <= '9' &&
		src[7] == '-' &&
		src[8] >= '0' && src[8] <= '9' &&
		src[9] >= '0' && src[9] <= '9'
}

// scanDate scans a date: YYYY-MM-DD (exactly 10 characters, first
// digit already consumed).
func (l *Lexer) scanDate(start, line, col int) Token {
	for i := 0; i < 9; i++ {
		l.advance()
	}
	return Token{DATE, start, l.pos, line, col}
}

// scanNumber scans a number: [-+]?[0-9]+(\.[0-9]+)?
func (l *Lexer) scanNumber(start, line, col int) Token {
	for l.pos < len(l.source) && l.source[l.pos] >= '0' && l.source[l.pos] <= '9' {
		l.advance()
	}

	if l.pos < len(l.source) && l.source[l.pos] == '.' {
		if l.pos+1 < len(l.source) && l.source[l.pos+1] >= '0' && l.source[l.pos+1] <= '9' {
			l.advance() // consume '.'
			for l.pos < len(l.source) && l.source[l.pos] >= '0' && l.source[l.pos] <= '9' {
				l.advance()
			}
		}
	}

	return Token{NUMBER, start, l.pos, line, col}
}

// scanString scans a quoted string: "..." (single line).
func (l *Lexer) scanString(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '"' {
			l.advance()
			break
		}
		if ch == '\n' {
			// Strings don't span lines; leave the newline for the
			// next token so line structure survives.
			break
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.advance()
			l.advance()
		} else {
			l.advance()
		}
	}

	return Token{STRING, start, l.pos, line, col}
}

// scanTag scans a tag: #[A-Za-z0-9_-]+
func (l *Lexer) scanTag(start, line, col int) Token {
	for l.pos < len(l.source) && isNameByte(l.source[l.pos]) {
		l.advance()
	}
	return Token{TAG, start, l.pos, line, col}
}

// scanLink scans a link: ^[A-Za-z0-9_-]+
func (l *Lexer) scanLink(start, line, col int) Token {
	for l.pos < len(l.source) && isNameByte(l.source[l.pos]) {
		l.advance()
	}
	return Token{LINK, start, l.pos, line, col}
}

func isNameByte(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' ||
		ch >= '0' && ch <= '9' || ch == '_' || ch == '-'
}

// scanAccountOrIdent scans an account name or identifier starting with
// a capital or Unicode letter. Accounts contain colons
// (Assets:Bank:Checking), identifiers don't (USD).
func (l *Lexer) scanAccountOrIdent(start, line, col int) Token {
	hasColon := false

	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		isASCIILetter := (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
		isDigit := ch >= '0' && ch <= '9'
		isUTF8 := ch >= 0x80
		isSpecial := ch == ':' || ch == '-' || ch == '_' || ch == '.'

		if !isASCIILetter && !isDigit && !isUTF8 && !isSpecial {
			break
		}

		if ch == ':' {
			hasColon = true
		}
		l.advance()
	}

	if hasColon {
		return Token{ACCOUNT, start, l.pos, line, col}
	}

	return Token{IDENT, start, l.pos, line, col}
}

// scanKeywordOrIdent scans a keyword or identifier starting with a
// lowercase letter.
func (l *Lexer) scanKeywordOrIdent(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') &&
			(ch < '0' || ch > '9') && ch != '_' && ch != '-' {
			break
		}
		l.advance()
	}

	word := l.source[start:l.pos]
	return Token{l.keywordType(word), start, l.pos, line, col}
}

// keywordType returns the token type for a keyword, or IDENT if not a
// keyword. Byte comparison avoids allocating strings.
func (l *Lexer) keywordType(word []byte) TokenType {
	switch {
	case bytes.Equal(word, []byte("txn")):
		return TXN
	case bytes.Equal(word, []byte("balance")):
		return BALANCE
	case bytes.Equal(word, []byte("open")):
		return OPEN
	case bytes.Equal(word, []byte("close")):
		return CLOSE
	case bytes.Equal(word, []byte("commodity")):
		return COMMODITY
	case bytes.Equal(word, []byte("pad")):
		return PAD
	case bytes.Equal(word, []byte("note")):
		return NOTE
	case bytes.Equal(word, []byte("document")):
		return DOCUMENT
	case bytes.Equal(word, []byte("price")):
		return PRICE
	case bytes.Equal(word, []byte("event")):
		return EVENT
	case bytes.Equal(word, []byte("custom")):
		return CUSTOM
	case bytes.Equal(word, []byte("option")):
		return OPTION
	case bytes.Equal(word, []byte("include")):
		return INCLUDE
	case bytes.Equal(word, []byte("plugin")):
		return PLUGIN
	case bytes.Equal(word, []byte("pushtag")):
		return PUSHTAG
	case bytes.Equal(word, []byte("poptag")):
		return POPTAG
	case bytes.Equal(word, []byte("pushmeta")):
		return PUSHMETA
	case bytes.Equal(word, []byte("popmeta")):
		return POPMETA
	default:
		return IDENT
	}
}

// scanComment scans ;... to end of line (newline not included).
func (l *Lexer) scanComment(start, line, col int) Token {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
	return Token{COMMENT, start, l.pos, line, col}
}

// skipBlanks skips spaces, tabs, and carriage returns. Newlines are
// tokens, not whitespace.
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch != ' ' && ch != '\t' && ch != '\r' {
			break
		}
		l.column++
		l.pos++
	}
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekIsDigit() bool {
	if l.pos >= len(l.source) {
		return false
	}
	ch := l.source[l.pos]
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}
