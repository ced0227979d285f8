package parser

import "github.com/beanls/beanls/ast"

// parseTransaction parses a transaction header and its indented
// posting lines:
//
//	DATE [txn|*|!] ["PAYEE"] ["NARRATION"] [#tag|^link]*
//	  [FLAG] ACCOUNT [AMOUNT [COST] [@ PRICE | @@ PRICE]]
//	  ...
//
// Editors see a lot of half-typed transactions, so the header parses
// with the narration absent and postings parse with everything after
// the account optional.
func (p *Parser) parseTransaction(pos ast.Position, date *ast.Date) (*ast.Transaction, error) {
	txn := &ast.Transaction{Date: date}
	txn.Pos = pos

	flagTok := p.advance()
	switch flagTok.Type {
	case TXN:
		txn.Flag = "*"
		// "txn" may be followed by an explicit flag character.
		if p.check(ASTERISK) || p.check(EXCLAIM) {
			txn.Flag = p.advance().String(p.source)
		}
	case ASTERISK, EXCLAIM:
		txn.Flag = flagTok.String(p.source)
	}

	// One string is a narration; two are payee then narration.
	if p.check(STRING) {
		first, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if p.check(STRING) {
			second, err := p.parseString()
			if err != nil {
				return nil, err
			}
			txn.Payee = first
			txn.Narration = second
		} else {
			txn.Narration = first
		}
	}

	for p.check(TAG) || p.check(LINK) {
		tok := p.advance()
		if tok.Type == TAG {
			txn.Tags = append(txn.Tags, ast.Tag(p.interner.InternBytes(tok.Bytes(p.source)[1:])))
		} else {
			txn.Links = append(txn.Links, ast.Link(p.interner.InternBytes(tok.Bytes(p.source)[1:])))
		}
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}

	// Body: indented posting, metadata, and comment lines. Blank lines
	// terminate the transaction.
	for !p.isAtEnd() {
		tok := p.peek()

		if tok.Type == NEWLINE {
			break
		}
		if tok.Column == 1 {
			break
		}

		if tok.Type == COMMENT {
			p.advance()
			p.match(NEWLINE)
			continue
		}

		// Metadata attaches to the preceding posting if there is one,
		// otherwise to the transaction itself.
		if (tok.Type == IDENT || p.isKeyword(tok.Type)) && p.peekAhead(1).Type == COLON {
			meta := p.parseMetadata()
			if n := len(txn.Postings); n > 0 {
				txn.Postings[n-1].AddMetadata(meta...)
			} else {
				txn.AddMetadata(meta...)
			}
			continue
		}

		posting, err := p.parsePosting()
		if err != nil {
			return nil, err
		}
		txn.Postings = append(txn.Postings, posting)
	}

	txn.Span = p.finish(pos)
	return txn, nil
}

// parsePosting parses one indented posting line.
func (p *Parser) parsePosting() (*ast.Posting, error) {
	start := p.peek()
	posting := &ast.Posting{}

	if p.check(ASTERISK) || p.check(EXCLAIM) {
		posting.Flag = p.advance().String(p.source)
	}

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}
	posting.Account = account

	if p.check(NUMBER) || p.check(LPAREN) || p.check(MINUS) {
		amount, err := p.parseAmountOptional()
		if err != nil {
			return nil, err
		}
		posting.Amount = amount
	}

	if p.check(LBRACE) || p.check(LDBRACE) {
		cost, err := p.parseCost()
		if err != nil {
			return nil, err
		}
		posting.Cost = cost
	}

	if p.check(AT) || p.check(ATAT) {
		posting.PriceTotal = p.advance().Type == ATAT
		price, err := p.parseAmountOptional()
		if err != nil {
			return nil, err
		}
		posting.Price = price
	}

	if err := p.expectEndOfLine(); err != nil {
		return nil, err
	}

	posting.Span = ast.Span{Start: start.Start, End: p.lastEnd}
	return posting, nil
}
