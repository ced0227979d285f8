package formatter

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFormatAlignsCurrencies(t *testing.T) {
	input := `2024-01-02 * "Coffee"
    Assets:Cash -3.50 USD
  Expenses:Food:Restaurants   3.50 USD
`
	want := `2024-01-02 * "Coffee"
  Assets:Cash                -3.50 USD
  Expenses:Food:Restaurants   3.50 USD
`
	assert.Equal(t, want, string(New().Format([]byte(input))))
}

func TestFormatKeepsFlagAndTrailingParts(t *testing.T) {
	input := `2024-02-01 * "Buy"
  Assets:Brokerage 10 HOOL {518.73 USD}
  ! Assets:Cash -5187.30 USD ; settle
`
	want := `2024-02-01 * "Buy"
  Assets:Brokerage        10 HOOL {518.73 USD}
  ! Assets:Cash     -5187.30 USD ; settle
`
	assert.Equal(t, want, string(New().Format([]byte(input))))
}

func TestFormatElidedPosting(t *testing.T) {
	input := `2024-01-02 * "Coffee"
  Assets:Cash   -3.50 USD
    Expenses:Food
`
	got := string(New().Format([]byte(input)))
	assert.Contains(t, got, "\n  Expenses:Food\n")
}

func TestFormatCurrencyColumn(t *testing.T) {
	input := `2024-01-02 * "Coffee"
  Assets:Cash -3.50 USD
`
	got := string(New(WithCurrencyColumn(30)).Format([]byte(input)))

	// The currency starts in column 30 (1-based).
	lines := splitLines(got)
	assert.Equal(t, 29, indexOf(lines[1], "USD"))
}

func TestFormatLeavesOtherLinesAlone(t *testing.T) {
	input := `; a comment line
option "title" "Example"
2024-01-01 open Assets:Cash

2024-01-02 * "Coffee" #tag
  Assets:Cash      -3.50 USD
  Expenses:Food
`
	got := string(New().Format([]byte(input)))
	lines := splitLines(got)
	assert.Equal(t, "; a comment line", lines[0])
	assert.Equal(t, `option "title" "Example"`, lines[1])
	assert.Equal(t, "2024-01-01 open Assets:Cash", lines[2])
	assert.Equal(t, `2024-01-02 * "Coffee" #tag`, lines[4])
}

func TestFormatStripsTrailingWhitespace(t *testing.T) {
	got := string(New().Format([]byte("2024-01-01 open Assets:Cash   \n")))
	assert.Equal(t, "2024-01-01 open Assets:Cash\n", got)
}

func TestFormatIdempotent(t *testing.T) {
	input := `2024-01-02 * "Coffee"
    Assets:Cash -3.50 USD
  Expenses:Food:Restaurants   3.50 USD

2024-01-03 balance Assets:Cash  -3.50 USD
`
	f := New()
	once := f.Format([]byte(input))
	twice := f.Format(once)
	assert.Equal(t, string(once), string(twice))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
