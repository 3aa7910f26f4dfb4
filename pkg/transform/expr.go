package transform

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

func (t *transformer) expr(expr parser.Expr) parser.Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *parser.ColumnRef, *parser.Literal:
		return expr
	case *parser.BinaryExpr:
		out := *e
		out.Left = t.expr(e.Left)
		out.Right = t.expr(e.Right)
		return &out
	case *parser.UnaryExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		return &out
	case *parser.FuncCall:
		return t.funcCall(e)
	case *parser.CaseExpr:
		out := *e
		out.Operand = t.expr(e.Operand)
		out.Whens = make([]*parser.WhenClause, len(e.Whens))
		for i, when := range e.Whens {
			out.Whens[i] = &parser.WhenClause{
				Cond:   t.expr(when.Cond),
				Result: t.expr(when.Result),
			}
		}
		out.Else = t.expr(e.Else)
		return &out
	case *parser.CastExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		return &out
	case *parser.InExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		out.List = t.exprs(e.List)
		out.Subquery = t.selectStmt(e.Subquery)
		return &out
	case *parser.BetweenExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		out.Low = t.expr(e.Low)
		out.High = t.expr(e.High)
		return &out
	case *parser.IsNullExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		return &out
	case *parser.LikeExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		out.Pattern = t.expr(e.Pattern)
		return &out
	case *parser.ParenExpr:
		out := *e
		out.Expr = t.expr(e.Expr)
		return &out
	case *parser.SubqueryExpr:
		out := *e
		out.Select = t.selectStmt(e.Select)
		return &out
	case *parser.ExistsExpr:
		out := *e
		out.Select = t.selectStmt(e.Select)
		return &out
	default:
		return expr
	}
}

func (t *transformer) funcCall(fn *parser.FuncCall) parser.Expr {
	out := *fn
	out.Args = t.exprs(fn.Args)
	if fn.Window != nil {
		out.Window = &parser.WindowSpec{
			PartitionBy: t.exprs(fn.Window.PartitionBy),
			OrderBy:     t.orderItems(fn.Window.OrderBy),
		}
	}

	if t.rules.IsUnsupported(fn.Name) {
		t.warnf(fn.Position, "%s()", strings.ToUpper(fn.Name))
		return &out
	}

	rule, ok := t.rules.FunctionRule(fn.Name)
	if !ok {
		return &out
	}

	if rule.ConvertToCast {
		return t.convertToCast(&out)
	}

	if rule.Target != "" {
		out.Name = rule.Target
	}
	if rule.ZeroArg && len(out.Args) == 0 && !out.Star {
		out.Bare = true
	}
	if rule.UpperFirstArg && len(out.Args) > 0 {
		if col, ok := out.Args[0].(*parser.ColumnRef); ok && len(col.Parts) == 1 {
			out.Args[0] = &parser.ColumnRef{
				Parts:    []string{strings.ToUpper(col.Parts[0])},
				Position: col.Position,
			}
		}
	}
	return &out
}

// convertToCast rewrites CONVERT(type, expr [, style]) into
// CAST(expr AS type). The optional style argument has no meaning for
// the target and is dropped with a warning. The type parses as an
// ordinary expression, so VARCHAR(50) arrives as a call and INT as a
// column reference.
func (t *transformer) convertToCast(fn *parser.FuncCall) parser.Expr {
	if len(fn.Args) < 2 {
		t.warnf(fn.Position, "CONVERT with %d arguments", len(fn.Args))
		return fn
	}

	typeName, ok := typeExprString(fn.Args[0])
	if !ok {
		t.warnf(fn.Position, "CONVERT with non-type first argument")
		return fn
	}
	if len(fn.Args) > 2 {
		t.warnf(fn.Position, "CONVERT style argument")
	}

	return &parser.CastExpr{
		Expr:     fn.Args[1],
		TypeName: typeName,
		Position: fn.Position,
	}
}

// typeExprString renders an expression that is really a type name, as
// produced by parsing CONVERT's first argument.
func typeExprString(expr parser.Expr) (string, bool) {
	switch e := expr.(type) {
	case *parser.ColumnRef:
		if len(e.Parts) != 1 {
			return "", false
		}
		return strings.ToUpper(e.Parts[0]), true
	case *parser.FuncCall:
		if e.Star || e.Distinct || e.Window != nil {
			return "", false
		}
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			lit, ok := arg.(*parser.Literal)
			if !ok || lit.Type != parser.LiteralNumber {
				return "", false
			}
			args[i] = lit.Value
		}
		return strings.ToUpper(e.Name) + "(" + strings.Join(args, ", ") + ")", true
	default:
		return "", false
	}
}
