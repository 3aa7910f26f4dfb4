package parser

import (
	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// parseSelectStmt parses [WITH ...] select-body.
func (p *Parser) parseSelectStmt() (*SelectStmt, error) {
	stmt := &SelectStmt{Position: p.cur.Pos}

	if p.cur.Type == token.WITH {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		stmt.With = with
	}

	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// parseWithClause parses WITH [RECURSIVE] cte [, cte]...
func (p *Parser) parseWithClause() (*WithClause, error) {
	with := &WithClause{Position: p.cur.Pos}
	p.next() // consume WITH

	if p.accept(token.RECURSIVE) {
		with.Recursive = true
	}

	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return with, nil
}

// parseCTE parses name [(col, ...)] AS (select).
func (p *Parser) parseCTE() (*CTE, error) {
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	cte := &CTE{Name: nameTok.Literal, Position: nameTok.Pos}

	if p.cur.Type == token.LPAREN {
		p.next()
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			cte.Columns = append(cte.Columns, col.Literal)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	sel, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	cte.Select = sel
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cte, nil
}

// parseSelectBody parses a select core optionally followed by set
// operations, then any trailing ORDER BY and LIMIT clauses. Set
// operations associate left.
func (p *Parser) parseSelectBody() (*SelectBody, error) {
	body, err := p.parseSelectBodyTerm()
	if err != nil {
		return nil, err
	}

	for {
		var op SetOpType
		switch p.cur.Type {
		case token.UNION:
			p.next()
			if p.accept(token.ALL) {
				op = SetUnionAll
			} else {
				op = SetUnion
			}
		case token.INTERSECT:
			p.next()
			op = SetIntersect
		case token.EXCEPT:
			p.next()
			op = SetExcept
		default:
			op = SetNone
		}
		if op == SetNone {
			break
		}

		right, err := p.parseSelectBodyTerm()
		if err != nil {
			return nil, err
		}
		body = &SelectBody{
			Op:       op,
			Left:     body,
			Right:    right,
			Position: body.Position,
		}
	}

	orderBy, err := p.parseOrderBy()
	if err != nil {
		return nil, err
	}
	limit, offset, err := p.parseLimitOffset()
	if err != nil {
		return nil, err
	}

	if body.Core != nil {
		body.Core.OrderBy = orderBy
		body.Core.Limit = limit
		body.Core.Offset = offset
	} else {
		body.OrderBy = orderBy
		body.Limit = limit
		body.Offset = offset
	}
	return body, nil
}

// parseSelectBodyTerm parses one arm of a set operation: a SELECT core
// or a parenthesized select.
func (p *Parser) parseSelectBodyTerm() (*SelectBody, error) {
	if p.cur.Type == token.LPAREN {
		pos := p.cur.Pos
		p.next()
		inner, err := p.parseSelectBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		inner.Position = pos
		return inner, nil
	}

	core, err := p.parseSelectCore()
	if err != nil {
		return nil, err
	}
	return &SelectBody{Core: core, Position: core.Position}, nil
}

// parseSelectCore parses SELECT ... through HAVING. Trailing ORDER BY
// and LIMIT are handled by parseSelectBody so they bind correctly in
// set operations.
func (p *Parser) parseSelectCore() (*SelectCore, error) {
	core := &SelectCore{Position: p.cur.Pos}
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}

	if p.accept(token.DISTINCT) {
		core.Distinct = true
	} else {
		p.accept(token.ALL)
	}

	if p.cur.Type == token.TOP {
		if !p.dialect.SupportsTop {
			return nil, p.errorf(p.cur.Pos, "TOP is not supported by dialect %s", p.dialect.Name)
		}
		p.next()
		expr, err := p.parseTopCount()
		if err != nil {
			return nil, err
		}
		core.Top = expr
		if p.accept(token.PERCENT) {
			core.TopPercent = true
		}
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		core.Columns = append(core.Columns, item)
		if !p.accept(token.COMMA) {
			break
		}
	}

	if p.cur.Type == token.INTO {
		if !p.dialect.SupportsSelectInto {
			return nil, p.errorf(p.cur.Pos, "SELECT INTO is not supported by dialect %s", p.dialect.Name)
		}
		p.next()
		name, err := p.parseTableName()
		if err != nil {
			return nil, err
		}
		core.Into = name
	}

	if p.cur.Type == token.FROM {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		core.From = from
	}

	if p.accept(token.WHERE) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		core.Where = expr
	}

	if p.cur.Type == token.GROUP {
		p.next()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			core.GroupBy = append(core.GroupBy, expr)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	if p.accept(token.HAVING) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		core.Having = expr
	}

	return core, nil
}

// parseTopCount parses the count after TOP: a number or a parenthesized
// expression.
func (p *Parser) parseTopCount() (Expr, error) {
	if p.cur.Type == token.LPAREN {
		pos := p.cur.Pos
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ParenExpr{Expr: expr, Position: pos}, nil
	}
	tok, err := p.expect(token.NUMBER)
	if err != nil {
		return nil, err
	}
	return &Literal{Type: LiteralNumber, Value: tok.Literal, Position: tok.Pos}, nil
}

// parseSelectItem parses one projection: *, t.*, or expr [AS] alias.
func (p *Parser) parseSelectItem() (*SelectItem, error) {
	item := &SelectItem{Position: p.cur.Pos}

	if p.cur.Type == token.STAR {
		p.next()
		item.Star = true
		return item, nil
	}

	// t.* and schema.t.* project every column of one source.
	if name, ok := p.identName(); ok && p.peek.Type == token.DOT {
		if qualified, matched := p.tryTableStar(name); matched {
			item.TableStar = qualified
			return item, nil
		}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	item.Expr = expr

	if p.accept(token.AS) {
		alias, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		item.Alias = alias.Literal
		item.AliasPos = alias.Pos
	} else if name, ok := p.identName(); ok {
		item.Alias = name
		item.AliasPos = p.cur.Pos
		p.next()
	}
	return item, nil
}

// tryTableStar attempts to parse name(.name)*.* starting from the
// current identifier. It only consumes tokens on a full match.
func (p *Parser) tryTableStar(first string) (string, bool) {
	// Lookahead is limited to cur and peek, so the common single
	// qualifier case is detected directly and deeper qualification is
	// resolved by consuming and checking after each dot.
	if p.peek.Type != token.DOT {
		return "", false
	}

	parts := []string{first}
	pos := p.cur.Pos
	p.next() // consume first ident
	for p.cur.Type == token.DOT {
		p.next()
		if p.cur.Type == token.STAR {
			p.next()
			return joinParts(parts), true
		}
		name, ok := p.identName()
		if !ok {
			break
		}
		parts = append(parts, name)
		p.next()
	}
	// Plain qualified column. The segments are already consumed, so
	// hand them to the expression parser through pendingParts.
	p.pendingParts = parts
	p.pendingPos = pos
	return "", false
}

// parseCreateStmt parses CREATE [OR REPLACE] [TEMPORARY] TABLE|VIEW
// name AS select.
func (p *Parser) parseCreateStmt() (*CreateStmt, error) {
	stmt := &CreateStmt{Position: p.cur.Pos}
	p.next() // consume CREATE

	if p.cur.Type == token.OR {
		p.next()
		if _, err := p.expect(token.REPLACE); err != nil {
			return nil, err
		}
		stmt.OrReplace = true
	}

	if p.accept(token.TEMPORARY) {
		stmt.Temp = true
	}

	switch p.cur.Type {
	case token.TABLE:
		p.next()
	case token.VIEW:
		p.next()
		stmt.View = true
	default:
		return nil, p.errorf(p.cur.Pos, "expected TABLE or VIEW, got %q", p.cur.Literal)
	}

	name, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	name.Alias = ""
	stmt.Name = name

	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}

	sel, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	stmt.Select = sel
	return stmt, nil
}

// parseOrderBy parses an optional ORDER BY list.
func (p *Parser) parseOrderBy() ([]*OrderItem, error) {
	if p.cur.Type != token.ORDER {
		return nil, nil
	}
	p.next()
	if _, err := p.expect(token.BY); err != nil {
		return nil, err
	}

	var items []*OrderItem
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := &OrderItem{Expr: expr}
		if p.accept(token.DESC) {
			item.Desc = true
		} else {
			p.accept(token.ASC)
		}
		if p.cur.Type == token.NULLS {
			p.next()
			switch p.cur.Type {
			case token.FIRST:
				item.NullsFirst = true
				p.next()
			case token.LAST:
				item.NullsLast = true
				p.next()
			default:
				return nil, p.errorf(p.cur.Pos, "expected FIRST or LAST, got %q", p.cur.Literal)
			}
		}
		items = append(items, item)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return items, nil
}

// parseLimitOffset parses optional LIMIT and OFFSET clauses.
func (p *Parser) parseLimitOffset() (limit, offset Expr, err error) {
	if p.accept(token.LIMIT) {
		limit, err = p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
	}
	if p.accept(token.OFFSET) {
		offset, err = p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
	}
	return limit, offset, nil
}

func joinParts(parts []string) string {
	out := parts[0]
	for _, s := range parts[1:] {
		out += "." + s
	}
	return out
}
