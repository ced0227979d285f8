// Package formatter aligns ledger text the way bean-format does:
// posting indentation is normalized and amounts are right-aligned so
// every currency starts in the same column. The formatter works on
// lines, never reflows entries, and leaves anything it does not
// recognize untouched, so a formatted file differs from its input only
// in horizontal whitespace.
package formatter

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// postingLine matches an indented posting: optional flag, a
// multi-segment account, then optionally the amount expression and
// whatever follows it (currency, cost, price, comment).
var postingLine = regexp.MustCompile(`^[ \t]+([!*] )?([A-Z][\w-]*(:[\w-]+)+)(?:[ \t]+(.*?))?[ \t]*$`)

// amountStart splits a number from the rest of the amount expression.
var amountStart = regexp.MustCompile(`^(-?[\d][\d,]*(?:\.\d*)?)[ \t]+(.*)$`)

// Formatter holds the alignment configuration.
type Formatter struct {
	// CurrencyColumn is the 1-based column the currency should start
	// in. Zero derives the column from the widest posting.
	CurrencyColumn int

	// Indent is the posting indentation in spaces.
	Indent int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithCurrencyColumn fixes the column currencies are aligned to.
func WithCurrencyColumn(col int) Option {
	return func(f *Formatter) {
		f.CurrencyColumn = col
	}
}

// WithIndent sets the posting indentation.
func WithIndent(n int) Option {
	return func(f *Formatter) {
		f.Indent = n
	}
}

// New creates a Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{Indent: 2}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// posting is one recognized posting line, split into its aligned
// parts.
type posting struct {
	line   int
	prefix string // indent + flag + account
	number string
	rest   string // currency and everything after it
}

// Format aligns the text and returns the result. Formatting is
// idempotent: running it on its own output is a no-op.
func (f *Formatter) Format(text []byte) []byte {
	lines := strings.Split(string(text), "\n")
	indent := strings.Repeat(" ", f.Indent)

	// First pass: collect postings and the widths that decide the
	// alignment columns.
	var postings []posting
	prefixWidth, numberWidth := 0, 0
	for i, line := range lines {
		m := postingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p := posting{line: i, prefix: indent + m[1] + m[2]}
		if am := amountStart.FindStringSubmatch(m[4]); am != nil {
			p.number = am[1]
			p.rest = am[2]
		} else {
			// Elided amount, or something the amount pattern does not
			// recognize; keep it verbatim after the account.
			p.rest = m[4]
		}
		postings = append(postings, p)

		if w := runewidth.StringWidth(p.prefix); w > prefixWidth {
			prefixWidth = w
		}
		if w := runewidth.StringWidth(p.number); w > numberWidth {
			numberWidth = w
		}
	}

	// The column the number's last digit lands in.
	numberEnd := prefixWidth + 2 + numberWidth
	if f.CurrencyColumn > 0 {
		numberEnd = f.CurrencyColumn - 2
	}

	for _, p := range postings {
		lines[p.line] = f.render(p, numberEnd)
	}

	// Trailing whitespace goes on every line, recognized or not.
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return []byte(strings.Join(lines, "\n"))
}

func (f *Formatter) render(p posting, numberEnd int) string {
	var buf bytes.Buffer
	buf.WriteString(p.prefix)

	if p.number != "" {
		pad := numberEnd - runewidth.StringWidth(p.prefix) - runewidth.StringWidth(p.number)
		if pad < 2 {
			pad = 2
		}
		buf.WriteString(strings.Repeat(" ", pad))
		buf.WriteString(p.number)
		if p.rest != "" {
			buf.WriteByte(' ')
			buf.WriteString(p.rest)
		}
	} else if p.rest != "" {
		buf.WriteString("  ")
		buf.WriteString(p.rest)
	}
	return buf.String()
}
