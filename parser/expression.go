package parser

import (
	"github.com/shopspring/decimal"
)

// Arithmetic amount expressions, evaluated at parse time.
//
// Amounts may be written as expressions over decimals:
//
//	40.00 / 2 USD        → 20 USD
//	2 + 3 * 4 USD        → 14 USD (usual precedence)
//	(40.00 / 3) + 5 USD  → 18.3333333333333333 USD
//
// Grammar:
//
//	expression → term (('+' | '-') term)*
//	term       → factor (('*' | '/') factor)*
//	factor     → NUMBER | '(' expression ')' | '-' factor
//
// The evaluated result is stored on the amount as a decimal string, so
// downstream consumers see expression amounts and plain numbers the
// same way.

// parseExpression parses and evaluates an arithmetic expression.
func (p *Parser) parseExpression() (decimal.Decimal, error) {
	return p.parseAddSubtract()
}

func (p *Parser) parseAddSubtract() (decimal.Decimal, error) {
	left, err := p.parseMultiplyDivide()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek().Type
		if op != PLUS && op != MINUS {
			break
		}
		p.advance()

		right, err := p.parseMultiplyDivide()
		if err != nil {
			return decimal.Zero, err
		}

		switch op {
		case PLUS:
			left = left.Add(right)
		case MINUS:
			left = left.Sub(right)
		}
	}

	return left, nil
}

func (p *Parser) parseMultiplyDivide() (decimal.Decimal, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek().Type
		if op != ASTERISK && op != SLASH {
			break
		}
		opTok := p.advance()

		right, err := p.parsePrimary()
		if err != nil {
			return decimal.Zero, err
		}

		switch op {
		case ASTERISK:
			left = left.Mul(right)
		case SLASH:
			if right.IsZero() {
				return decimal.Zero, p.errorAtToken(opTok, "division by zero")
			}
			left = left.Div(right)
		}
	}

	return left, nil
}

func (p *Parser) parsePrimary() (decimal.Decimal, error) {
	tok := p.peek()

	if tok.Type == LPAREN {
		p.advance()

		result, err := p.parseExpression()
		if err != nil {
			return decimal.Zero, err
		}

		if !p.match(RPAREN) {
			return decimal.Zero, p.errorAtToken(p.peek(), "expected ')' after expression")
		}
		return result, nil
	}

	if tok.Type == NUMBER {
		numTok := p.advance()
		d, err := decimal.NewFromString(numTok.String(p.source))
		if err != nil {
			return decimal.Zero, p.errorAtToken(numTok, "invalid number in expression: %v", err)
		}
		return d, nil
	}

	if tok.Type == MINUS {
		p.advance()
		value, err := p.parsePrimary()
		if err != nil {
			return decimal.Zero, err
		}
		return value.Neg(), nil
	}

	return decimal.Zero, p.errorAtToken(tok, "expected number or '(' in expression, got %s", tok.Type)
}

// isExpressionStart reports whether the upcoming tokens form an
// arithmetic expression rather than a plain number. Signed numbers lex
// as a single NUMBER token, so a leading MINUS only appears in forms
// like "- (2 + 3)".
func (p *Parser) isExpressionStart() bool {
	if p.check(NUMBER) {
		next := p.peekAhead(1).Type
		return next == PLUS || next == MINUS || next == ASTERISK || next == SLASH
	}
	return p.check(LPAREN) || p.check(MINUS)
}
