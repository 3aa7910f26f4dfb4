package parser

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// parseFromClause parses FROM source join*.
func (p *Parser) parseFromClause() (*FromClause, error) {
	from := &FromClause{Position: p.cur.Pos}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}

	source, err := p.parseTableSource()
	if err != nil {
		return nil, err
	}
	from.Source = source

	for {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}
	return from, nil
}

// parseJoin parses one join arm if the current token begins one, or
// returns nil.
func (p *Parser) parseJoin() (*Join, error) {
	pos := p.cur.Pos
	var jt JoinType
	needOn := true

	switch p.cur.Type {
	case token.COMMA:
		p.next()
		jt = JoinComma
		needOn = false
	case token.JOIN:
		p.next()
		jt = JoinInner
	case token.INNER:
		p.next()
		if _, err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
		jt = JoinInner
	case token.LEFT:
		p.next()
		p.accept(token.OUTER)
		if _, err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
		jt = JoinLeft
	case token.RIGHT:
		p.next()
		p.accept(token.OUTER)
		if _, err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
		jt = JoinRight
	case token.FULL:
		p.next()
		p.accept(token.OUTER)
		if _, err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
		jt = JoinFull
	case token.CROSS:
		p.next()
		switch p.cur.Type {
		case token.JOIN:
			p.next()
			jt = JoinCross
			needOn = false
		case token.APPLY:
			p.next()
			jt = JoinCrossApply
			needOn = false
		default:
			return nil, p.errorf(p.cur.Pos, "expected JOIN or APPLY after CROSS, got %q", p.cur.Literal)
		}
	case token.OUTER:
		if p.peek.Type != token.APPLY {
			return nil, nil
		}
		p.next()
		p.next()
		jt = JoinOuterApply
		needOn = false
	default:
		return nil, nil
	}

	right, err := p.parseTableSource()
	if err != nil {
		return nil, err
	}
	join := &Join{Type: jt, Right: right, Position: pos}

	if needOn {
		if _, err := p.expect(token.ON); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		join.Condition = cond
	}
	return join, nil
}

// parseTableSource parses a table name, a derived table, or a
// parenthesized source.
func (p *Parser) parseTableSource() (TableSource, error) {
	if p.cur.Type == token.LATERAL {
		pos := p.cur.Pos
		p.next()
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
		lt := &LateralTable{Select: sel, Position: pos}
		lt.Alias = p.parseOptionalAlias()
		return lt, nil
	}
	if p.cur.Type == token.LPAREN {
		pos := p.cur.Pos
		p.next()
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		dt := &DerivedTable{Select: sel, Position: pos}
		dt.Alias = p.parseOptionalAlias()
		return dt, nil
	}
	return p.parseTableName()
}

// parseTableName parses a dot-qualified table name with an optional
// alias. db.schema.name fills all segments, schema.name leaves Database
// empty, and a bare name leaves both empty. db..name records the
// database with an empty schema.
func (p *Parser) parseTableName() (*TableName, error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	parts := []string{first.Literal}
	raw := []string{first.Literal}
	for p.cur.Type == token.DOT {
		p.next()
		// db..name leaves the middle segment empty.
		if p.cur.Type == token.DOT {
			parts = append(parts, "")
			raw = append(raw, "")
			continue
		}
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		parts = append(parts, seg.Literal)
		raw = append(raw, seg.Literal)
	}

	t := &TableName{Position: first.Pos, Raw: strings.Join(raw, ".")}
	switch len(parts) {
	case 1:
		t.Name = parts[0]
	case 2:
		t.Schema = parts[0]
		t.Name = parts[1]
	case 3:
		t.Database = parts[0]
		t.Schema = parts[1]
		t.Name = parts[2]
	default:
		return nil, p.errorf(first.Pos, "too many qualifiers in table name %q", strings.Join(raw, "."))
	}
	t.Temp = strings.HasPrefix(t.Name, "#")
	t.Alias = p.parseOptionalAlias()
	return t, nil
}

// parseOptionalAlias consumes [AS] alias if present. AS is taken only
// when an identifier follows, so the AS that introduces a CREATE body
// stays for the caller.
func (p *Parser) parseOptionalAlias() string {
	if p.cur.Type == token.AS {
		switch p.peek.Type {
		case token.IDENT, token.FIRST, token.LAST, token.REPLACE, token.PERCENT, token.APPLY:
			p.next()
			name, _ := p.identName()
			p.next()
			return name
		}
		return ""
	}
	// A bare identifier after a source is an alias unless it starts a
	// clause or join keyword.
	if p.cur.Type == token.IDENT {
		name := p.cur.Literal
		p.next()
		return name
	}
	return ""
}
