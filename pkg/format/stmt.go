package format

import (
	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

func (p *Printer) formatStatement(stmt parser.Statement) error {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		return p.formatSelectStmt(s)
	case *parser.CreateStmt:
		return p.formatCreateStmt(s)
	default:
		return p.coverage("statement")
	}
}

func (p *Printer) formatCreateStmt(stmt *parser.CreateStmt) error {
	p.keyword("CREATE")
	if stmt.OrReplace {
		p.keyword(" OR REPLACE")
	}
	if stmt.Temp {
		p.keyword(" TEMPORARY")
	}
	if stmt.View {
		p.keyword(" VIEW")
	} else {
		p.keyword(" TABLE")
	}
	p.space()
	p.formatTableName(stmt.Name)
	p.space()
	p.keyword("AS")
	p.writeln()
	return p.formatSelectStmt(stmt.Select)
}

func (p *Printer) formatSelectStmt(stmt *parser.SelectStmt) error {
	if stmt.With != nil {
		if err := p.formatWithClause(stmt.With); err != nil {
			return err
		}
	}
	return p.formatSelectBody(stmt.Body)
}

func (p *Printer) formatWithClause(with *parser.WithClause) error {
	p.keyword("WITH")
	if with.Recursive {
		p.keyword(" RECURSIVE")
	}
	p.writeln()

	p.indent()
	for i, cte := range with.CTEs {
		p.ident(cte.Name)
		if len(cte.Columns) > 0 {
			p.write(" (")
			for j, col := range cte.Columns {
				if j > 0 {
					p.write(", ")
				}
				p.ident(col)
			}
			p.write(")")
		}
		p.keyword(" AS")
		p.write(" (")
		p.writeln()

		p.indent()
		if err := p.formatSelectStmt(cte.Select); err != nil {
			return err
		}
		p.dedent()

		p.write(")")
		if i < len(with.CTEs)-1 {
			p.write(",")
		}
		p.writeln()
	}
	p.dedent()
	return nil
}

func (p *Printer) formatSelectBody(body *parser.SelectBody) error {
	if body.Core != nil {
		if err := p.formatSelectCore(body.Core); err != nil {
			return err
		}
	} else {
		if err := p.formatSelectBody(body.Left); err != nil {
			return err
		}
		p.keyword(body.Op.String())
		p.writeln()
		if err := p.formatSelectBody(body.Right); err != nil {
			return err
		}
	}

	if err := p.formatOrderBy(body.OrderBy); err != nil {
		return err
	}
	return p.formatLimitOffset(body.Limit, body.Offset)
}

func (p *Printer) formatSelectCore(sc *parser.SelectCore) error {
	if sc.Top != nil {
		return p.coverage("SELECT TOP")
	}
	if sc.Into != nil {
		return p.coverage("SELECT INTO")
	}

	p.keyword("SELECT")
	if sc.Distinct {
		p.keyword(" DISTINCT")
	}
	p.writeln()

	p.indent()
	for i, item := range sc.Columns {
		if err := p.formatSelectItem(item); err != nil {
			return err
		}
		if i < len(sc.Columns)-1 {
			p.write(",")
		}
		p.writeln()
	}
	p.dedent()

	if sc.From != nil {
		if err := p.formatFromClause(sc.From); err != nil {
			return err
		}
	}

	if sc.Where != nil {
		p.keyword("WHERE")
		p.space()
		if err := p.formatExpr(sc.Where); err != nil {
			return err
		}
		p.writeln()
	}

	if len(sc.GroupBy) > 0 {
		p.keyword("GROUP BY")
		p.space()
		for i, expr := range sc.GroupBy {
			if i > 0 {
				p.write(", ")
			}
			if err := p.formatExpr(expr); err != nil {
				return err
			}
		}
		p.writeln()
	}

	if sc.Having != nil {
		p.keyword("HAVING")
		p.space()
		if err := p.formatExpr(sc.Having); err != nil {
			return err
		}
		p.writeln()
	}

	if err := p.formatOrderBy(sc.OrderBy); err != nil {
		return err
	}
	return p.formatLimitOffset(sc.Limit, sc.Offset)
}

func (p *Printer) formatOrderBy(items []*parser.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	p.keyword("ORDER BY")
	p.space()
	for i, item := range items {
		if i > 0 {
			p.write(", ")
		}
		if err := p.formatExpr(item.Expr); err != nil {
			return err
		}
		if item.Desc {
			p.keyword(" DESC")
		}
		if item.NullsFirst {
			p.keyword(" NULLS FIRST")
		}
		if item.NullsLast {
			p.keyword(" NULLS LAST")
		}
	}
	p.writeln()
	return nil
}

func (p *Printer) formatLimitOffset(limit, offset parser.Expr) error {
	if limit != nil {
		if !p.dialect.SupportsLimit {
			return p.coverage("LIMIT")
		}
		p.keyword("LIMIT")
		p.space()
		if err := p.formatExpr(limit); err != nil {
			return err
		}
		p.writeln()
	}
	if offset != nil {
		p.keyword("OFFSET")
		p.space()
		if err := p.formatExpr(offset); err != nil {
			return err
		}
		p.writeln()
	}
	return nil
}

func (p *Printer) formatSelectItem(item *parser.SelectItem) error {
	if item.Star {
		p.write("*")
		return nil
	}
	if item.TableStar != "" {
		p.write(item.TableStar)
		p.write(".*")
		return nil
	}

	if err := p.formatExpr(item.Expr); err != nil {
		return err
	}
	if item.Alias != "" {
		p.keyword(" AS ")
		p.ident(item.Alias)
	}
	return nil
}

func (p *Printer) formatFromClause(from *parser.FromClause) error {
	p.keyword("FROM")
	p.space()
	if err := p.formatTableSource(from.Source); err != nil {
		return err
	}
	p.writeln()

	for _, join := range from.Joins {
		if err := p.formatJoin(join); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) formatJoin(join *parser.Join) error {
	switch join.Type {
	case parser.JoinComma:
		// Comma joins render as CROSS JOIN so every join reads the
		// same way in the output.
		p.keyword("CROSS JOIN")
	case parser.JoinInner:
		p.keyword("INNER JOIN")
	case parser.JoinLeft:
		p.keyword("LEFT JOIN")
	case parser.JoinRight:
		p.keyword("RIGHT JOIN")
	case parser.JoinFull:
		p.keyword("FULL JOIN")
	case parser.JoinCross:
		p.keyword("CROSS JOIN")
	case parser.JoinCrossApply, parser.JoinOuterApply:
		return p.coverage("APPLY join")
	default:
		return p.coverage("join")
	}
	p.space()

	if err := p.formatTableSource(join.Right); err != nil {
		return err
	}

	if join.Condition != nil {
		p.keyword(" ON ")
		if err := p.formatExpr(join.Condition); err != nil {
			return err
		}
	}
	p.writeln()
	return nil
}

func (p *Printer) formatTableSource(src parser.TableSource) error {
	switch s := src.(type) {
	case *parser.TableName:
		p.formatTableName(s)
		if s.Alias != "" {
			p.keyword(" AS ")
			p.ident(s.Alias)
		}
		return nil
	case *parser.DerivedTable:
		p.write("(")
		p.writeln()
		p.indent()
		if err := p.formatSelectStmt(s.Select); err != nil {
			return err
		}
		p.dedent()
		p.write(")")
		if s.Alias != "" {
			p.keyword(" AS ")
			p.ident(s.Alias)
		}
		return nil
	case *parser.LateralTable:
		p.keyword("LATERAL")
		p.write(" (")
		p.writeln()
		p.indent()
		if err := p.formatSelectStmt(s.Select); err != nil {
			return err
		}
		p.dedent()
		p.write(")")
		if s.Alias != "" {
			p.keyword(" AS ")
			p.ident(s.Alias)
		}
		return nil
	default:
		return p.coverage("table source")
	}
}

func (p *Printer) formatTableName(t *parser.TableName) {
	if t.Database != "" {
		p.ident(t.Database)
		p.write(".")
	}
	if t.Schema != "" {
		p.ident(t.Schema)
		p.write(".")
	} else if t.Database != "" {
		p.write(".")
	}
	p.ident(t.Name)
}
