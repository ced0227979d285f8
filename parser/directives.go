package parser

import "github.com/beanls/beanls/ast"

// Entry parsers for all non-transaction entries. These are simple
// parsers with deterministic structure.

// finish stamps the entry's position and span. Called after the last
// token of the entry (including metadata lines) has been consumed.
func (p *Parser) finish(pos ast.Position) ast.Span {
	return ast.Span{Start: pos.Offset, End: p.lastEnd}
}

// parseOpen parses: DATE open ACCOUNT [CURRENCY[,CURRENCY]*] ["BOOKING_METHOD"]
func (p *Parser) parseOpen(pos ast.Position, date *ast.Date) (*ast.Open, error) {
	p.advance() // 'open'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	open := &ast.Open{
		Date:    date,
		Account: account,
	}
	open.Pos = pos

	if p.check(IDENT) {
		currency, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)

		for p.match(COMMA) {
			currency, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)
		}
	}

	if p.check(STRING) {
		method, err := p.parseString()
		if err != nil {
			return nil, err
		}
		open.BookingMethod = method
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	open.Metadata = p.parseMetadata()
	open.Span = p.finish(pos)

	return open, nil
}

// parseClose parses: DATE close ACCOUNT
func (p *Parser) parseClose(pos ast.Position, date *ast.Date) (*ast.Close, error) {
	p.advance() // 'close'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	close := &ast.Close{
		Date:    date,
		Account: account,
	}
	close.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	close.Metadata = p.parseMetadata()
	close.Span = p.finish(pos)

	return close, nil
}

// parseCommodity parses: DATE commodity CURRENCY
func (p *Parser) parseCommodity(pos ast.Position, date *ast.Date) (*ast.Commodity, error) {
	p.advance() // 'commodity'

	currency, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	commodity := &ast.Commodity{
		Date:     date,
		Currency: currency,
	}
	commodity.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	commodity.Metadata = p.parseMetadata()
	commodity.Span = p.finish(pos)

	return commodity, nil
}

// parseBalance parses: DATE balance ACCOUNT AMOUNT
func (p *Parser) parseBalance(pos ast.Position, date *ast.Date) (*ast.Balance, error) {
	p.advance() // 'balance'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	balance := &ast.Balance{
		Date:    date,
		Account: account,
		Amount:  amount,
	}
	balance.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	balance.Metadata = p.parseMetadata()
	balance.Span = p.finish(pos)

	return balance, nil
}

// parsePad parses: DATE pad ACCOUNT ACCOUNT_PAD
func (p *Parser) parsePad(pos ast.Position, date *ast.Date) (*ast.Pad, error) {
	p.advance() // 'pad'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	accountPad, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	pad := &ast.Pad{
		Date:       date,
		Account:    account,
		AccountPad: accountPad,
	}
	pad.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	pad.Metadata = p.parseMetadata()
	pad.Span = p.finish(pos)

	return pad, nil
}

// parseNote parses: DATE note ACCOUNT STRING
func (p *Parser) parseNote(pos ast.Position, date *ast.Date) (*ast.Note, error) {
	p.advance() // 'note'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	description, err := p.parseString()
	if err != nil {
		return nil, err
	}

	note := &ast.Note{
		Date:        date,
		Account:     account,
		Description: description,
	}
	note.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	note.Metadata = p.parseMetadata()
	note.Span = p.finish(pos)

	return note, nil
}

// parseDocumentDirective parses: DATE document ACCOUNT STRING
func (p *Parser) parseDocumentDirective(pos ast.Position, date *ast.Date) (*ast.Document, error) {
	p.advance() // 'document'

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	path, err := p.parseString()
	if err != nil {
		return nil, err
	}

	doc := &ast.Document{
		Date:           date,
		Account:        account,
		PathToDocument: path,
	}
	doc.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	doc.Metadata = p.parseMetadata()
	doc.Span = p.finish(pos)

	return doc, nil
}

// parsePrice parses: DATE price CURRENCY AMOUNT
func (p *Parser) parsePrice(pos ast.Position, date *ast.Date) (*ast.Price, error) {
	p.advance() // 'price'

	commodity, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	price := &ast.Price{
		Date:      date,
		Commodity: commodity,
		Amount:    amount,
	}
	price.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	price.Metadata = p.parseMetadata()
	price.Span = p.finish(pos)

	return price, nil
}

// parseEvent parses: DATE event STRING STRING
func (p *Parser) parseEvent(pos ast.Position, date *ast.Date) (*ast.Event, error) {
	p.advance() // 'event'

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	value, err := p.parseString()
	if err != nil {
		return nil, err
	}

	event := &ast.Event{
		Date:  date,
		Name:  name,
		Value: value,
	}
	event.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	event.Metadata = p.parseMetadata()
	event.Span = p.finish(pos)

	return event, nil
}

// parseCustom parses: DATE custom STRING VALUE*
// where VALUE can be STRING | NUMBER [CURRENCY] | IDENT.
func (p *Parser) parseCustom(pos ast.Position, date *ast.Date) (*ast.Custom, error) {
	p.advance() // 'custom'

	customType, err := p.parseString()
	if err != nil {
		return nil, err
	}

	custom := &ast.Custom{
		Date: date,
		Type: customType,
	}
	custom.Pos = pos

	for !p.isAtEnd() && p.peek().Type != NEWLINE && p.peek().Type != COMMENT {
		tok := p.peek()

		switch tok.Type {
		case STRING:
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			custom.Values = append(custom.Values, s)

		case NUMBER:
			p.advance()
			value := tok.String(p.source)
			if p.check(IDENT) {
				currTok := p.advance()
				value += " " + p.interner.InternBytes(currTok.Bytes(p.source))
			}
			custom.Values = append(custom.Values, value)

		case IDENT:
			p.advance()
			custom.Values = append(custom.Values, tok.String(p.source))

		default:
			return nil, p.errorAtToken(tok, "unexpected %s in custom directive", tok.Type)
		}
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	custom.Metadata = p.parseMetadata()
	custom.Span = p.finish(pos)

	return custom, nil
}

// parseOption parses: option STRING STRING
func (p *Parser) parseOption() (*ast.Option, error) {
	tok := p.advance() // 'option'
	pos := p.tokenPos(tok)

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	value, err := p.parseString()
	if err != nil {
		return nil, err
	}

	option := &ast.Option{Name: name, Value: value}
	option.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	option.Span = p.finish(pos)

	return option, nil
}

// parseInclude parses: include STRING
func (p *Parser) parseInclude() (*ast.Include, error) {
	tok := p.advance() // 'include'
	pos := p.tokenPos(tok)

	filename, err := p.parseString()
	if err != nil {
		return nil, err
	}

	include := &ast.Include{Filename: filename}
	include.Pos = pos

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	include.Span = p.finish(pos)

	return include, nil
}

// parsePlugin parses: plugin STRING [STRING]
func (p *Parser) parsePlugin() (*ast.Plugin, error) {
	tok := p.advance() // 'plugin'
	pos := p.tokenPos(tok)

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	plugin := &ast.Plugin{Name: name}
	plugin.Pos = pos

	if p.check(STRING) {
		config, err := p.parseString()
		if err != nil {
			return nil, err
		}
		plugin.Config = config
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	plugin.Span = p.finish(pos)

	return plugin, nil
}

// parsePushPop parses pushtag/poptag/pushmeta/popmeta lines. The
// analyzer does not apply tag or metadata stacks; the lines are kept
// as custom entries so they round-trip without being flagged as
// errors.
func (p *Parser) parsePushPop() (*ast.Custom, error) {
	tok := p.advance()
	pos := p.tokenPos(tok)

	custom := &ast.Custom{Type: tok.String(p.source)}
	custom.Pos = pos

	if rest := p.parseRestOfLine(tok.End); rest != "" {
		custom.Values = append(custom.Values, rest)
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}
	custom.Span = p.finish(pos)

	return custom, nil
}
