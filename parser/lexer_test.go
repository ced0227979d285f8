package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "single asterisk",
			input: "*",
			want:  []TokenType{ASTERISK, EOF},
		},
		{
			name:  "exclamation",
			input: "!",
			want:  []TokenType{EXCLAIM, EOF},
		},
		{
			name:  "at symbols",
			input: "@ @@",
			want:  []TokenType{AT, ATAT, EOF},
		},
		{
			name:  "braces",
			input: "{ } {{ }}",
			want:  []TokenType{LBRACE, RBRACE, LDBRACE, RDBRACE, EOF},
		},
		{
			name:  "newline is a token",
			input: "*\n!",
			want:  []TokenType{ASTERISK, NEWLINE, EXCLAIM, EOF},
		},
		{
			name:  "comment runs to end of line",
			input: "; hello\n*",
			want:  []TokenType{COMMENT, NEWLINE, ASTERISK, EOF},
		},
		{
			name:  "date then flag",
			input: "2024-01-15 *",
			want:  []TokenType{DATE, ASTERISK, EOF},
		},
		{
			name:  "account and amount",
			input: "Assets:Bank:Checking 100.00 USD",
			want:  []TokenType{ACCOUNT, NUMBER, IDENT, EOF},
		},
		{
			name:  "tag and link",
			input: "#trip-2024 ^invoice-42",
			want:  []TokenType{TAG, LINK, EOF},
		},
		{
			name:  "expression operators",
			input: "40.00 / 2 + (3 * 4) - 1",
			want:  []TokenType{NUMBER, SLASH, NUMBER, PLUS, LPAREN, NUMBER, ASTERISK, NUMBER, RPAREN, MINUS, NUMBER, EOF},
		},
		{
			name:  "minus glued to digits is a signed number",
			input: "-3.50 - 2",
			want:  []TokenType{NUMBER, MINUS, NUMBER, EOF},
		},
		{
			name:  "keywords",
			input: "open close balance option include plugin",
			want:  []TokenType{OPEN, CLOSE, BALANCE, OPTION, INCLUDE, PLUGIN, EOF},
		},
		{
			name:  "lowercase non-keyword is ident",
			input: "frobnicate",
			want:  []TokenType{IDENT, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, len(tt.want), len(tokens), "token count mismatch")

			for i, tok := range tokens {
				assert.Equal(t, tt.want[i], tok.Type, "token type mismatch at %d", i)
			}
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123", "123"},
		{"123.45", "123.45"},
		{"-123", "-123"},
		{"-123.45", "-123.45"},
		{"+10.00", "+10.00"},
		{"0.50", "0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, 2, len(tokens))
			assert.Equal(t, NUMBER, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].String([]byte(tt.input)))
		})
	}
}

func TestLexerDateRequiresFullPattern(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"2024-01-15", DATE},
		{"2024", NUMBER},
		{"2024-01", NUMBER}, // lexes as number, '-', number
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test")
			tokens := lexer.ScanAll()
			assert.Equal(t, tt.want, tokens[0].Type)
		})
	}
}

func TestLexerStrings(t *testing.T) {
	source := []byte(`"Cafe Mogador" "with \"quotes\""`)
	lexer := NewLexer(source, "test")
	tokens := lexer.ScanAll()

	assert.Equal(t, 3, len(tokens))
	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, `"Cafe Mogador"`, tokens[0].String(source))
	assert.Equal(t, STRING, tokens[1].Type)
	assert.Equal(t, `"with \"quotes\""`, tokens[1].String(source))
}

func TestLexerUnterminatedStringStopsAtNewline(t *testing.T) {
	source := []byte("\"no closing quote\n2024-01-15 *")
	lexer := NewLexer(source, "test")
	tokens := lexer.ScanAll()

	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, NEWLINE, tokens[1].Type)
	assert.Equal(t, DATE, tokens[2].Type)
}

func TestLexerPositions(t *testing.T) {
	source := []byte("2024-01-15 open Assets:Cash\n  ; indented\n")
	lexer := NewLexer(source, "test")
	tokens := lexer.ScanAll()

	date := tokens[0]
	assert.Equal(t, 1, date.Line)
	assert.Equal(t, 1, date.Column)
	assert.Equal(t, 0, date.Start)
	assert.Equal(t, 10, date.End)

	open := tokens[1]
	assert.Equal(t, 12, open.Column)

	comment := tokens[4]
	assert.Equal(t, COMMENT, comment.Type)
	assert.Equal(t, 2, comment.Line)
	assert.Equal(t, 3, comment.Column)
}

func TestLexerUnicodeAccount(t *testing.T) {
	source := []byte("Assets:Épargne")
	lexer := NewLexer(source, "test")
	tokens := lexer.ScanAll()

	assert.Equal(t, ACCOUNT, tokens[0].Type)
	assert.Equal(t, "Assets:Épargne", tokens[0].String(source))
}
