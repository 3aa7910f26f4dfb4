package parser

import (
	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// Operator precedence, lowest binds loosest.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCompare // = <> < > <= >= IS IN BETWEEN LIKE
	precAdd     // + - ||
	precMul     // * / %
	precUnary
)

func tokenPrecedence(t token.Type) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.IS, token.IN, token.BETWEEN, token.LIKE, token.NOT:
		return precCompare
	case token.PLUS, token.MINUS, token.DPIPE:
		return precAdd
	case token.STAR, token.SLASH, token.MOD:
		return precMul
	}
	return precLowest
}

// parseExpr parses a full expression.
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseBinary(precLowest)
}

// parseBinary is the Pratt loop: parse a prefix expression, then fold
// in infix operators of higher precedence than minPrec.
func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec := tokenPrecedence(p.cur.Type)
		if prec <= minPrec {
			return left, nil
		}

		switch p.cur.Type {
		case token.IS:
			left, err = p.parseIsNull(left)
		case token.IN:
			left, err = p.parseIn(left, false)
		case token.BETWEEN:
			left, err = p.parseBetween(left, false)
		case token.LIKE:
			left, err = p.parseLike(left, false)
		case token.NOT:
			// expr NOT IN / NOT BETWEEN / NOT LIKE
			p.next()
			switch p.cur.Type {
			case token.IN:
				left, err = p.parseIn(left, true)
			case token.BETWEEN:
				left, err = p.parseBetween(left, true)
			case token.LIKE:
				left, err = p.parseLike(left, true)
			default:
				return nil, p.errorf(p.cur.Pos, "expected IN, BETWEEN or LIKE after NOT, got %q", p.cur.Literal)
			}
		default:
			op := keywordUpper(p.cur)
			p.next()
			var right Expr
			right, err = p.parseBinary(prec)
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: op, Left: left, Right: right}
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseUnary parses NOT, unary minus and plus.
func (p *Parser) parseUnary() (Expr, error) {
	switch p.cur.Type {
	case token.NOT:
		pos := p.cur.Pos
		p.next()
		if p.cur.Type == token.EXISTS {
			return p.parseExists(true, pos)
		}
		expr, err := p.parseBinary(precNot)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "NOT", Expr: expr, Position: pos}, nil
	case token.MINUS, token.PLUS:
		pos := p.cur.Pos
		op := p.cur.Literal
		p.next()
		expr, err := p.parseBinary(precUnary)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Expr: expr, Position: pos}, nil
	}
	return p.parsePrimary()
}

// parseIsNull parses IS [NOT] NULL | IS [NOT] TRUE/FALSE.
func (p *Parser) parseIsNull(left Expr) (Expr, error) {
	p.next() // consume IS
	not := p.accept(token.NOT)
	switch p.cur.Type {
	case token.NULL:
		p.next()
		return &IsNullExpr{Expr: left, Not: not}, nil
	case token.TRUE, token.FALSE:
		// IS TRUE / IS FALSE normalize into an equality.
		val := keywordUpper(p.cur)
		pos := p.cur.Pos
		p.next()
		op := "="
		if not {
			op = "<>"
		}
		return &BinaryExpr{
			Op:    op,
			Left:  left,
			Right: &Literal{Type: LiteralBool, Value: val, Position: pos},
		}, nil
	}
	return nil, p.errorf(p.cur.Pos, "expected NULL after IS, got %q", p.cur.Literal)
}

// parseIn parses [NOT] IN (list | subquery).
func (p *Parser) parseIn(left Expr, not bool) (Expr, error) {
	p.next() // consume IN
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	in := &InExpr{Expr: left, Not: not}

	if p.cur.Type == token.SELECT || p.cur.Type == token.WITH {
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		in.Subquery = sel
	} else {
		for {
			item, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			in.List = append(in.List, item)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return in, nil
}

// parseBetween parses [NOT] BETWEEN low AND high. The bounds parse at
// comparison precedence so the AND belongs to BETWEEN.
func (p *Parser) parseBetween(left Expr, not bool) (Expr, error) {
	p.next() // consume BETWEEN
	low, err := p.parseBinary(precCompare)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AND); err != nil {
		return nil, err
	}
	high, err := p.parseBinary(precCompare)
	if err != nil {
		return nil, err
	}
	return &BetweenExpr{Expr: left, Not: not, Low: low, High: high}, nil
}

// parseLike parses [NOT] LIKE pattern.
func (p *Parser) parseLike(left Expr, not bool) (Expr, error) {
	p.next() // consume LIKE
	pattern, err := p.parseBinary(precCompare)
	if err != nil {
		return nil, err
	}
	return &LikeExpr{Expr: left, Not: not, Pattern: pattern}, nil
}

// parseExists parses [NOT] EXISTS (subquery). The EXISTS token is
// current on entry.
func (p *Parser) parseExists(not bool, pos token.Position) (Expr, error) {
	p.next() // consume EXISTS
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	sel, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ExistsExpr{Not: not, Select: sel, Position: pos}, nil
}
