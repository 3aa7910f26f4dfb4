package parser

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// parsePrimary parses a primary expression: literal, column reference,
// function call, CASE, CAST, EXISTS, subquery, or parenthesized
// expression.
func (p *Parser) parsePrimary() (Expr, error) {
	// Segments consumed early by select-item star detection.
	if p.pendingParts != nil {
		parts := p.pendingParts
		pos := p.pendingPos
		p.pendingParts = nil
		return &ColumnRef{Parts: parts, Position: pos}, nil
	}

	switch p.cur.Type {
	case token.NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.cur.Literal, Position: p.cur.Pos}
		p.next()
		return lit, nil
	case token.STRING:
		lit := &Literal{Type: LiteralString, Value: p.cur.Literal, Position: p.cur.Pos}
		p.next()
		return lit, nil
	case token.TRUE, token.FALSE:
		lit := &Literal{Type: LiteralBool, Value: keywordUpper(p.cur), Position: p.cur.Pos}
		p.next()
		return lit, nil
	case token.NULL:
		lit := &Literal{Type: LiteralNull, Value: "NULL", Position: p.cur.Pos}
		p.next()
		return lit, nil
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast()
	case token.EXISTS:
		return p.parseExists(false, p.cur.Pos)
	case token.LPAREN:
		pos := p.cur.Pos
		p.next()
		if p.cur.Type == token.SELECT || p.cur.Type == token.WITH {
			sel, err := p.parseSelectStmt()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &SubqueryExpr{Select: sel, Position: pos}, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ParenExpr{Expr: expr, Position: pos}, nil
	}

	if name, ok := p.identName(); ok {
		tok := p.cur
		quoted := p.cur.Quoted
		p.next()

		// Function call: unquoted name directly followed by (.
		if p.cur.Type == token.LPAREN && !quoted {
			return p.parseFuncCall(name, tok.Pos)
		}
		return p.parseColumnPath(name, tok.Pos)
	}

	// Left-anchored keyword functions such as LEFT(s, n) and RIGHT(s, n)
	// collide with join keywords; in expression position they are calls.
	switch p.cur.Type {
	case token.LEFT, token.RIGHT:
		name := keywordUpper(p.cur)
		pos := p.cur.Pos
		p.next()
		if p.cur.Type != token.LPAREN {
			return nil, p.errorf(pos, "expected ( after %s", name)
		}
		return p.parseFuncCall(name, pos)
	}

	return nil, p.errorf(p.cur.Pos, "unexpected %q in expression", p.cur.Literal)
}

// parseColumnPath parses the remaining .segments of a column reference
// whose first segment is already consumed.
func (p *Parser) parseColumnPath(first string, pos token.Position) (Expr, error) {
	parts := []string{first}
	for p.cur.Type == token.DOT {
		p.next()
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		parts = append(parts, seg.Literal)
	}
	return &ColumnRef{Parts: parts, Position: pos}, nil
}

// parseFuncCall parses name(args) [OVER (...)]. The opening paren is
// current on entry.
func (p *Parser) parseFuncCall(name string, pos token.Position) (Expr, error) {
	fn := &FuncCall{Name: name, Position: pos}
	p.next() // consume (

	if p.cur.Type == token.STAR {
		fn.Star = true
		p.next()
	} else if p.cur.Type != token.RPAREN {
		if p.accept(token.DISTINCT) {
			fn.Distinct = true
		}
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, arg)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if p.cur.Type == token.OVER {
		p.next()
		window, err := p.parseWindowSpec()
		if err != nil {
			return nil, err
		}
		fn.Window = window
	}
	return fn, nil
}

// parseWindowSpec parses ( [PARTITION BY list] [ORDER BY list] ).
func (p *Parser) parseWindowSpec() (*WindowSpec, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	w := &WindowSpec{}

	if p.cur.Type == token.PARTITION {
		p.next()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			w.PartitionBy = append(w.PartitionBy, expr)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	orderBy, err := p.parseOrderBy()
	if err != nil {
		return nil, err
	}
	w.OrderBy = orderBy

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return w, nil
}

// parseCase parses simple and searched CASE expressions.
func (p *Parser) parseCase() (Expr, error) {
	c := &CaseExpr{Position: p.cur.Pos}
	p.next() // consume CASE

	if p.cur.Type != token.WHEN {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}

	for p.cur.Type == token.WHEN {
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, &WhenClause{Cond: cond, Result: result})
	}
	if len(c.Whens) == 0 {
		return nil, p.errorf(p.cur.Pos, "CASE requires at least one WHEN")
	}

	if p.accept(token.ELSE) {
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = els
	}

	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return c, nil
}

// parseCast parses CAST(expr AS type).
func (p *Parser) parseCast() (Expr, error) {
	c := &CastExpr{Position: p.cur.Pos}
	p.next() // consume CAST
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	c.Expr = expr

	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}

	typeName, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	c.TypeName = typeName

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return c, nil
}

// parseTypeName parses a type name with an optional length or precision
// suffix, e.g. VARCHAR(50) or DECIMAL(10, 2). The spelling is kept
// verbatim except the base name folds to uppercase.
func (p *Parser) parseTypeName() (string, error) {
	base, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	name := strings.ToUpper(base.Literal)

	// Multi-word types: DOUBLE PRECISION and friends.
	for {
		next, ok := p.identName()
		if !ok {
			break
		}
		name += " " + strings.ToUpper(next)
		p.next()
	}

	if p.cur.Type == token.LPAREN {
		p.next()
		args := make([]string, 0, 2)
		for {
			tok, err := p.expect(token.NUMBER)
			if err != nil {
				return "", err
			}
			args = append(args, tok.Literal)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return "", err
		}
		name += "(" + strings.Join(args, ", ") + ")"
	}
	return name, nil
}
