package ast

// withMetadata is an embeddable struct for entries that can carry
// metadata lines.
type withMetadata struct {
	Metadata []*Metadata
}

// AddMetadata appends metadata entries.
func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// Transaction records a financial transaction with a date, flag,
// optional payee, narration, and a list of postings. The flag
// indicates transaction status: '*' for cleared transactions, '!' for
// pending ones. The sum of all posting amounts must balance to zero
// per commodity (double-entry bookkeeping); at most one posting may
// omit its amount, which is then inferred as the balancing leg.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine"
//	  Liabilities:CreditCard:CapitalOne         -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	node
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag
	Postings  []*Posting

	withMetadata
}

var _ Entry = &Transaction{}

func (t *Transaction) Kind() EntryKind { return KindTransaction }

func (t *Transaction) Shifted(bytes, lines int) Entry {
	c := *t
	c.node = c.node.shifted(bytes, lines)
	c.Postings = make([]*Posting, len(t.Postings))
	for i, p := range t.Postings {
		sp := *p
		sp.Span = sp.Span.shifted(bytes)
		c.Postings[i] = &sp
	}
	return &c
}

// Posting represents a single leg of a transaction, specifying an
// account and optional amount, cost, and price. One posting may omit
// its amount, which will be inferred to balance the transaction. The
// posting's span covers its source line, which is where diagnostics
// about the posting attach.
//
// Example postings within transactions:
//
//	Assets:Investments:Brokerage    10 HOOL {518.73 USD}  ; Purchase with cost
//	Assets:Investments:Cash        200 EUR @ 1.35 USD     ; Conversion with price
//	Expenses:Groceries              45.60 USD             ; Simple posting
//	Assets:Checking                                       ; Inferred amount
type Posting struct {
	Span       Span
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	Price      *Amount
	PriceTotal bool // true for @@ (total price), false for @ (per unit)

	withMetadata
}

// Open declares the opening of an account at a specific date, marking
// the beginning of its lifetime in the ledger. You can optionally
// constrain which currencies the account may hold and specify a
// booking method. Accounts referenced by postings without a matching
// open anywhere in the workspace are reported as undeclared.
//
// Example:
//
//	2014-05-01 open Assets:US:BofA:Checking USD
//	2014-05-01 open Assets:Investments:Brokerage USD,EUR "FIFO"
type Open struct {
	node
	Date                 *Date
	Account              Account
	ConstraintCurrencies []string
	BookingMethod        string

	withMetadata
}

var _ Entry = &Open{}

func (o *Open) Kind() EntryKind { return KindOpen }

func (o *Open) Shifted(bytes, lines int) Entry {
	c := *o
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Close declares the closing of an account at a specific date, marking
// the end of its lifetime in the ledger. Postings dated after the
// close date are reported as uses of a closed account.
//
// Example:
//
//	2015-09-23 close Assets:US:BofA:Checking
type Close struct {
	node
	Date    *Date
	Account Account

	withMetadata
}

var _ Entry = &Close{}

func (c *Close) Kind() EntryKind { return KindClose }

func (c *Close) Shifted(bytes, lines int) Entry {
	cc := *c
	cc.node = cc.node.shifted(bytes, lines)
	return &cc
}

// Commodity declares a commodity or currency that can be used in the
// ledger. The directive is optional in the format; a commodity only
// referenced by price or balance directives and never declared or used
// in a posting is reported as informational, not an error.
//
// Example:
//
//	2014-01-01 commodity USD
//	  name: "US Dollar"
type Commodity struct {
	node
	Date     *Date
	Currency string

	withMetadata
}

var _ Entry = &Commodity{}

func (c *Commodity) Kind() EntryKind { return KindCommodity }

func (c *Commodity) Shifted(bytes, lines int) Entry {
	cc := *c
	cc.node = cc.node.shifted(bytes, lines)
	return &cc
}

// Balance asserts that an account should have a specific balance at
// the beginning of a given date, verifying the ledger against external
// statements.
//
// Example:
//
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
type Balance struct {
	node
	Date    *Date
	Account Account
	Amount  *Amount

	withMetadata
}

var _ Entry = &Balance{}

func (b *Balance) Kind() EntryKind { return KindBalance }

func (b *Balance) Shifted(bytes, lines int) Entry {
	c := *b
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Pad automatically inserts a transaction to bring an account to the
// balance asserted by the next balance directive, posted against
// AccountPad (typically an equity account).
//
// Example:
//
//	2014-01-01 pad Assets:US:BofA:Checking Equity:Opening-Balances
type Pad struct {
	node
	Date       *Date
	Account    Account
	AccountPad Account

	withMetadata
}

var _ Entry = &Pad{}

func (p *Pad) Kind() EntryKind { return KindPad }

func (p *Pad) Shifted(bytes, lines int) Entry {
	c := *p
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Note attaches a dated comment to an account.
//
// Example:
//
//	2014-07-09 note Assets:US:BofA:Checking "Called bank about deposit"
type Note struct {
	node
	Date        *Date
	Account     Account
	Description string

	withMetadata
}

var _ Entry = &Note{}

func (n *Note) Kind() EntryKind { return KindNote }

func (n *Note) Shifted(bytes, lines int) Entry {
	c := *n
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Document associates an external file (receipt, invoice, statement)
// with an account at a specific date.
//
// Example:
//
//	2014-07-09 document Assets:US:BofA:Checking "statements/2014-07.pdf"
type Document struct {
	node
	Date           *Date
	Account        Account
	PathToDocument string

	withMetadata
}

var _ Entry = &Document{}

func (d *Document) Kind() EntryKind { return KindDocument }

func (d *Document) Shifted(bytes, lines int) Entry {
	c := *d
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Price declares the price of a commodity in terms of another currency
// at a specific date.
//
// Example:
//
//	2014-07-09 price USD 1.08 CAD
type Price struct {
	node
	Date      *Date
	Commodity string
	Amount    *Amount

	withMetadata
}

var _ Entry = &Price{}

func (p *Price) Kind() EntryKind { return KindPrice }

func (p *Price) Shifted(bytes, lines int) Entry {
	c := *p
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Event records a named event with a value at a specific date, used
// for tracking location changes, employment history, or other
// time-based state.
//
// Example:
//
//	2014-07-09 event "location" "New York, USA"
type Event struct {
	node
	Date  *Date
	Name  string
	Value string

	withMetadata
}

var _ Entry = &Event{}

func (e *Event) Kind() EntryKind { return KindEvent }

func (e *Event) Shifted(bytes, lines int) Entry {
	c := *e
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Custom is a prototype directive for plugin development, allowing
// arbitrary values after the directive name.
//
// Example:
//
//	2014-07-09 custom "budget" "monthly" 45.30 USD
type Custom struct {
	node
	Date   *Date
	Type   string
	Values []string

	withMetadata
}

var _ Entry = &Custom{}

func (c *Custom) Kind() EntryKind { return KindCustom }

func (c *Custom) Shifted(bytes, lines int) Entry {
	cc := *c
	cc.node = cc.node.shifted(bytes, lines)
	return &cc
}

// Option sets a ledger-wide configuration parameter.
//
// Example:
//
//	option "operating_currency" "USD"
type Option struct {
	node
	Name  string
	Value string
}

var _ Entry = &Option{}

func (o *Option) Kind() EntryKind { return KindOption }

func (o *Option) Shifted(bytes, lines int) Entry {
	c := *o
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Include imports directives from another ledger file.
type Include struct {
	node
	Filename string
}

var _ Entry = &Include{}

func (i *Include) Kind() EntryKind { return KindInclude }

func (i *Include) Shifted(bytes, lines int) Entry {
	c := *i
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Plugin loads a processing plugin with an optional configuration
// string. The language server parses but otherwise ignores it.
type Plugin struct {
	node
	Name   string
	Config string
}

var _ Entry = &Plugin{}

func (p *Plugin) Kind() EntryKind { return KindPlugin }

func (p *Plugin) Shifted(bytes, lines int) Entry {
	c := *p
	c.node = c.node.shifted(bytes, lines)
	return &c
}

// Comment is a standalone comment line at column 0.
type Comment struct {
	node
	Text string
}

var _ Entry = &Comment{}

func (c *Comment) Kind() EntryKind { return KindComment }

func (c *Comment) Shifted(bytes, lines int) Entry {
	cc := *c
	cc.node = cc.node.shifted(bytes, lines)
	return &cc
}

// Error stands in for unparseable input without discarding the
// document structure around it. It covers the raw source span of the
// offending lines and carries the parser's message; parsing never
// aborts, it degrades to Error nodes.
type Error struct {
	node
	Message string
}

var _ Entry = &Error{}

func (e *Error) Kind() EntryKind { return KindError }

func (e *Error) Shifted(bytes, lines int) Entry {
	c := *e
	c.node = c.node.shifted(bytes, lines)
	return &c
}
