// Package transform rewrites a parsed statement from one dialect's
// constructs into another's, driven by a dialect.Ruleset. The input AST
// is never mutated; every node on a changed path is copied.
package transform

import (
	"fmt"
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/parser"
	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// Warning reports a source construct with no clean target equivalent.
// The construct passes through to the output unchanged.
type Warning struct {
	Construct string
	Pos       token.Position
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: no %s equivalent, passed through unchanged", w.Pos, w.Construct)
}

type transformer struct {
	rules    *dialect.Ruleset
	warnings []Warning
}

func (t *transformer) warnf(pos token.Position, format string, args ...any) {
	t.warnings = append(t.warnings, Warning{
		Construct: fmt.Sprintf(format, args...),
		Pos:       pos,
	})
}

// Apply rewrites stmt for the ruleset's target dialect and returns the
// new statement plus any warnings for constructs that passed through
// untranslated.
func Apply(stmt parser.Statement, rules *dialect.Ruleset) (parser.Statement, []Warning) {
	t := &transformer{rules: rules}
	out := t.statement(stmt)
	return out, t.warnings
}

func (t *transformer) statement(stmt parser.Statement) parser.Statement {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		sel := t.selectStmt(s)
		// SELECT ... INTO #tmp becomes CREATE TEMPORARY TABLE.
		if into := takeInto(sel); into != nil {
			return &parser.CreateStmt{
				Temp:     true,
				Name:     t.tableName(into),
				Select:   sel,
				Position: s.Position,
			}
		}
		return sel
	case *parser.CreateStmt:
		out := *s
		if s.Name != nil {
			out.Name = t.tableName(s.Name)
			if s.Name.Temp {
				out.Temp = true
			}
		}
		out.Select = t.selectStmt(s.Select)
		return &out
	default:
		return stmt
	}
}

// takeInto removes and returns the INTO target of the statement's only
// select core, or nil when there is none. Set operations cannot carry
// INTO, so only the leaf core is checked.
func takeInto(stmt *parser.SelectStmt) *parser.TableName {
	if stmt == nil || stmt.Body == nil || stmt.Body.Core == nil {
		return nil
	}
	into := stmt.Body.Core.Into
	stmt.Body.Core.Into = nil
	return into
}

func (t *transformer) selectStmt(stmt *parser.SelectStmt) *parser.SelectStmt {
	if stmt == nil {
		return nil
	}
	out := *stmt
	if stmt.With != nil {
		with := *stmt.With
		with.CTEs = make([]*parser.CTE, len(stmt.With.CTEs))
		for i, cte := range stmt.With.CTEs {
			c := *cte
			c.Select = t.selectStmt(cte.Select)
			with.CTEs[i] = &c
		}
		out.With = &with
	}
	out.Body = t.selectBody(stmt.Body)
	return &out
}

func (t *transformer) selectBody(body *parser.SelectBody) *parser.SelectBody {
	if body == nil {
		return nil
	}
	out := *body
	if body.Core != nil {
		out.Core = t.selectCore(body.Core)
	} else {
		out.Left = t.selectBody(body.Left)
		out.Right = t.selectBody(body.Right)
	}
	out.OrderBy = t.orderItems(body.OrderBy)
	out.Limit = t.expr(body.Limit)
	out.Offset = t.expr(body.Offset)
	return &out
}

func (t *transformer) selectCore(core *parser.SelectCore) *parser.SelectCore {
	out := *core

	// TOP n becomes LIMIT n. TOP n PERCENT has no equivalent, so the
	// count carries over with a warning.
	if core.Top != nil && !t.rules.Target.SupportsTop {
		if core.TopPercent {
			t.warnf(core.Position, "TOP PERCENT")
		}
		out.Top = nil
		out.TopPercent = false
		out.Limit = t.expr(core.Top)
	}

	out.Columns = make([]*parser.SelectItem, len(core.Columns))
	for i, item := range core.Columns {
		c := *item
		c.Expr = t.expr(item.Expr)
		out.Columns[i] = &c
	}
	if core.Into != nil {
		out.Into = t.tableName(core.Into)
	}
	out.From = t.fromClause(core.From)
	out.Where = t.expr(core.Where)
	out.GroupBy = t.exprs(core.GroupBy)
	out.Having = t.expr(core.Having)
	out.OrderBy = t.orderItems(core.OrderBy)
	if core.Limit != nil {
		out.Limit = t.expr(core.Limit)
	}
	out.Offset = t.expr(core.Offset)
	return &out
}

func (t *transformer) fromClause(from *parser.FromClause) *parser.FromClause {
	if from == nil {
		return nil
	}
	out := *from
	out.Source = t.tableSource(from.Source)
	out.Joins = make([]*parser.Join, len(from.Joins))
	for i, join := range from.Joins {
		out.Joins[i] = t.join(join)
	}
	return &out
}

func (t *transformer) join(join *parser.Join) *parser.Join {
	out := *join
	out.Right = t.tableSource(join.Right)
	out.Condition = t.expr(join.Condition)

	switch join.Type {
	case parser.JoinCrossApply:
		// CROSS APPLY subquery becomes CROSS JOIN LATERAL.
		out.Type = parser.JoinCross
		out.Right = t.lateral(out.Right, join.Position)
	case parser.JoinOuterApply:
		// OUTER APPLY keeps unmatched left rows, so it becomes
		// LEFT JOIN LATERAL ... ON TRUE.
		out.Type = parser.JoinLeft
		out.Right = t.lateral(out.Right, join.Position)
		out.Condition = &parser.Literal{
			Type:     parser.LiteralBool,
			Value:    "TRUE",
			Position: join.Position,
		}
	}
	return &out
}

// lateral wraps an APPLY operand as a lateral subquery.
func (t *transformer) lateral(src parser.TableSource, pos token.Position) parser.TableSource {
	switch s := src.(type) {
	case *parser.DerivedTable:
		return &parser.LateralTable{Select: s.Select, Alias: s.Alias, Position: s.Position}
	case *parser.LateralTable:
		return s
	default:
		t.warnf(pos, "APPLY over non-subquery source")
		return src
	}
}

func (t *transformer) tableSource(src parser.TableSource) parser.TableSource {
	switch s := src.(type) {
	case *parser.TableName:
		return t.tableName(s)
	case *parser.DerivedTable:
		out := *s
		out.Select = t.selectStmt(s.Select)
		return &out
	case *parser.LateralTable:
		out := *s
		out.Select = t.selectStmt(s.Select)
		return &out
	default:
		return src
	}
}

// tableName copies a table name, stripping the # prefix from temp
// table names since the target addresses temporary tables by plain
// name.
func (t *transformer) tableName(name *parser.TableName) *parser.TableName {
	if name == nil {
		return nil
	}
	out := *name
	if name.Temp {
		out.Name = strings.TrimLeft(name.Name, "#")
	}
	return &out
}

func (t *transformer) exprs(exprs []parser.Expr) []parser.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]parser.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = t.expr(e)
	}
	return out
}

func (t *transformer) orderItems(items []*parser.OrderItem) []*parser.OrderItem {
	if items == nil {
		return nil
	}
	out := make([]*parser.OrderItem, len(items))
	for i, item := range items {
		c := *item
		c.Expr = t.expr(item.Expr)
		out[i] = &c
	}
	return out
}
