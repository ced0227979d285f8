package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount represents a numerical value with its associated currency or
// commodity symbol. The value is stored as a string to preserve the
// exact decimal representation from the input, avoiding floating-point
// precision issues; callers convert with shopspring/decimal when they
// need arithmetic.
type Amount struct {
	Value    string
	Currency string
}

// Decimal converts the amount value for arithmetic.
func (a *Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(a.Value)
}

// Cost represents the cost basis specification for a posting, used for
// tracking the acquisition cost of commodities. An empty cost {}
// selects any lot automatically; a merge cost {*} averages all lots.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}              ; Per-unit cost
//	10 HOOL {518.73 USD, 2014-05-01}  ; Cost with acquisition date
//	10 HOOL {{5187.30 USD}}           ; Total cost
//	10 HOOL {}                        ; Any lot (automatic selection)
type Cost struct {
	IsMerge bool
	IsTotal bool
	Amount  *Amount
	Date    *Date
	Label   string
}

// IsEmpty returns true if this is an empty cost specification {}.
// Distinguishes between nil (no cost) and empty cost (any lot selection).
func (c *Cost) IsEmpty() bool {
	return c != nil && !c.IsMerge && c.Amount == nil && c.Date == nil && c.Label == ""
}

// Account represents a ledger account name consisting of at least two
// colon-separated segments. The first segment (account type) must be
// one of the five account categories: Assets, Liabilities, Equity,
// Income, or Expenses. Subsequent segments must start with an
// uppercase letter or digit and can contain letters, numbers, and
// hyphens.
//
// Example accounts:
//
//	Assets:US:BofA:Checking
//	Liabilities:CreditCard:CapitalOne
//	Income:US:Acme:Salary
//	Expenses:Home:Rent
type Account string

// ParseAccount validates an account name.
func ParseAccount(s string) (Account, error) {
	parts := strings.Split(s, ":")

	if len(parts) < 2 {
		return "", fmt.Errorf("account must have at least two segments: %s", s)
	}

	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return "", fmt.Errorf(`unexpected account type "%s"`, parts[0])
	}

	for i := 1; i < len(parts); i++ {
		if !isValidAccountSegment(parts[i]) {
			return "", fmt.Errorf("invalid account segment at position %d: %s", i, parts[i])
		}
	}

	return Account(s), nil
}

// Segments splits the account name into its colon-separated parts.
func (a Account) Segments() []string {
	return strings.Split(string(a), ":")
}

// Parent returns the account name with the last segment removed, or ""
// for a top-level segment.
func (a Account) Parent() Account {
	idx := strings.LastIndexByte(string(a), ':')
	if idx < 0 {
		return ""
	}
	return a[:idx]
}

// accountSegmentRegex validates account segments (after first).
// Must start with uppercase letter or digit, can contain alphanumerics and hyphens.
var accountSegmentRegex = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

// isValidAccountSegment checks if an account segment (after first) is valid.
func isValidAccountSegment(segment string) bool {
	return len(segment) > 0 && accountSegmentRegex.MatchString(segment)
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD). All
// dated directives carry one; dates drive the account lifetime checks
// (open date <= reference date <= close date).
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (*Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	return &Date{Time: t}, nil
}

// IsZero returns true if the Date is nil or represents the zero time.
// Nil-safe so callers can probe optional dates without a check.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// String returns the date in ISO 8601 format.
func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// Link represents a reference link starting with ^, used to connect
// related transactions together (stored without the ^ prefix).
//
// Example: 2014-05-05 * "Payment" ^trip-to-europe
type Link string

// Tag represents a hashtag starting with #, used to categorize and
// filter transactions (stored without the # prefix).
//
// Example: 2014-05-05 * "Dinner" #dining #entertainment
type Tag string

// Metadata represents a key-value pair attached to a directive or
// posting, indented on the lines immediately following it.
//
// Example:
//
//	2014-05-05 * "Payment"
//	  invoice: "INV-2014-05-001"
//	  Assets:Checking  -100.00 USD
//	    confirmation: "CONF123456"
//	  Expenses:Services
type Metadata struct {
	Key   string
	Value string
}
