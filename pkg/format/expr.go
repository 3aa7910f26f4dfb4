package format

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

func (p *Printer) formatExpr(expr parser.Expr) error {
	switch e := expr.(type) {
	case *parser.ColumnRef:
		for i, part := range e.Parts {
			if i > 0 {
				p.write(".")
			}
			p.ident(part)
		}
		return nil
	case *parser.Literal:
		p.formatLiteral(e)
		return nil
	case *parser.BinaryExpr:
		if err := p.formatExpr(e.Left); err != nil {
			return err
		}
		p.space()
		p.write(e.Op)
		p.space()
		return p.formatExpr(e.Right)
	case *parser.UnaryExpr:
		p.write(e.Op)
		if e.Op == "NOT" {
			p.space()
		}
		return p.formatExpr(e.Expr)
	case *parser.FuncCall:
		return p.formatFuncCall(e)
	case *parser.CaseExpr:
		return p.formatCase(e)
	case *parser.CastExpr:
		p.keyword("CAST")
		p.write("(")
		if err := p.formatExpr(e.Expr); err != nil {
			return err
		}
		p.keyword(" AS ")
		p.write(e.TypeName)
		p.write(")")
		return nil
	case *parser.InExpr:
		return p.formatIn(e)
	case *parser.BetweenExpr:
		if err := p.formatExpr(e.Expr); err != nil {
			return err
		}
		if e.Not {
			p.keyword(" NOT")
		}
		p.keyword(" BETWEEN ")
		if err := p.formatExpr(e.Low); err != nil {
			return err
		}
		p.keyword(" AND ")
		return p.formatExpr(e.High)
	case *parser.IsNullExpr:
		if err := p.formatExpr(e.Expr); err != nil {
			return err
		}
		if e.Not {
			p.keyword(" IS NOT NULL")
		} else {
			p.keyword(" IS NULL")
		}
		return nil
	case *parser.LikeExpr:
		if err := p.formatExpr(e.Expr); err != nil {
			return err
		}
		if e.Not {
			p.keyword(" NOT")
		}
		p.keyword(" LIKE ")
		return p.formatExpr(e.Pattern)
	case *parser.ParenExpr:
		p.write("(")
		if err := p.formatExpr(e.Expr); err != nil {
			return err
		}
		p.write(")")
		return nil
	case *parser.SubqueryExpr:
		p.write("(")
		p.writeln()
		p.indent()
		if err := p.formatSelectStmt(e.Select); err != nil {
			return err
		}
		p.dedent()
		p.write(")")
		return nil
	case *parser.ExistsExpr:
		if e.Not {
			p.keyword("NOT ")
		}
		p.keyword("EXISTS")
		p.write(" (")
		p.writeln()
		p.indent()
		if err := p.formatSelectStmt(e.Select); err != nil {
			return err
		}
		p.dedent()
		p.write(")")
		return nil
	default:
		return p.coverage("expression")
	}
}

func (p *Printer) formatLiteral(lit *parser.Literal) {
	switch lit.Type {
	case parser.LiteralString:
		p.write("'" + strings.ReplaceAll(lit.Value, "'", "''") + "'")
	default:
		p.write(lit.Value)
	}
}

func (p *Printer) formatFuncCall(fn *parser.FuncCall) error {
	p.keyword(fn.Name)
	if !fn.Bare {
		p.write("(")
		if fn.Star {
			p.write("*")
		} else {
			if fn.Distinct {
				p.keyword("DISTINCT ")
			}
			for i, arg := range fn.Args {
				if i > 0 {
					p.write(", ")
				}
				if err := p.formatExpr(arg); err != nil {
					return err
				}
			}
		}
		p.write(")")
	}

	if fn.Window != nil {
		p.keyword(" OVER ")
		p.write("(")
		if len(fn.Window.PartitionBy) > 0 {
			p.keyword("PARTITION BY ")
			for i, expr := range fn.Window.PartitionBy {
				if i > 0 {
					p.write(", ")
				}
				if err := p.formatExpr(expr); err != nil {
					return err
				}
			}
		}
		if len(fn.Window.OrderBy) > 0 {
			if len(fn.Window.PartitionBy) > 0 {
				p.space()
			}
			p.keyword("ORDER BY ")
			for i, item := range fn.Window.OrderBy {
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
		}
		p.write(")")
	}
	return nil
}

func (p *Printer) formatCase(c *parser.CaseExpr) error {
	p.keyword("CASE")
	if c.Operand != nil {
		p.space()
		if err := p.formatExpr(c.Operand); err != nil {
			return err
		}
	}
	for _, when := range c.Whens {
		p.keyword(" WHEN ")
		if err := p.formatExpr(when.Cond); err != nil {
			return err
		}
		p.keyword(" THEN ")
		if err := p.formatExpr(when.Result); err != nil {
			return err
		}
	}
	if c.Else != nil {
		p.keyword(" ELSE ")
		if err := p.formatExpr(c.Else); err != nil {
			return err
		}
	}
	p.keyword(" END")
	return nil
}

func (p *Printer) formatIn(in *parser.InExpr) error {
	if err := p.formatExpr(in.Expr); err != nil {
		return err
	}
	if in.Not {
		p.keyword(" NOT")
	}
	p.keyword(" IN ")
	p.write("(")
	if in.Subquery != nil {
		p.writeln()
		p.indent()
		if err := p.formatSelectStmt(in.Subquery); err != nil {
			return err
		}
		p.dedent()
	} else {
		for i, item := range in.List {
			if i > 0 {
				p.write(", ")
			}
			if err := p.formatExpr(item); err != nil {
				return err
			}
		}
	}
	p.write(")")
	return nil
}
