// Package extract walks parsed statements and collects the table
// references they read from, excluding names bound locally by common
// table expressions. A Registry deduplicates references across files
// and merges differently qualified spellings of the same table.
package extract

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

// Completeness classifies how fully qualified a reference is.
type Completeness int

const (
	// Bare is a plain table name with no qualifiers.
	Bare Completeness = iota
	// Partial carries a schema or database but not both.
	Partial
	// Full carries both database and schema.
	Full
)

func (c Completeness) String() string {
	switch c {
	case Full:
		return "full"
	case Partial:
		return "partial"
	}
	return "bare"
}

// QualifiedName is a table's qualification triple. Empty segments were
// absent in the source.
type QualifiedName struct {
	Database string
	Schema   string
	Table    string
}

// String returns the dot-joined name using only present segments.
func (q QualifiedName) String() string {
	parts := make([]string, 0, 3)
	if q.Database != "" {
		parts = append(parts, q.Database)
	}
	if q.Schema != "" {
		parts = append(parts, q.Schema)
	}
	parts = append(parts, q.Table)
	return strings.Join(parts, ".")
}

// Completeness derives the classification from segment presence.
func (q QualifiedName) Completeness() Completeness {
	switch {
	case q.Database != "" && q.Schema != "":
		return Full
	case q.Database != "" || q.Schema != "":
		return Partial
	default:
		return Bare
	}
}

// fold returns the case-folded triple used as a registry key.
func (q QualifiedName) fold() QualifiedName {
	return QualifiedName{
		Database: strings.ToLower(q.Database),
		Schema:   strings.ToLower(q.Schema),
		Table:    strings.ToLower(q.Table),
	}
}

// Ref is one table reference occurrence in one statement.
type Ref struct {
	Name  QualifiedName
	Raw   string // original dot-joined spelling
	Alias string
	File  string
	Stmt  int // statement index within the file
	Line  int
}

// Completeness classifies the occurrence's qualification.
func (r Ref) Completeness() Completeness { return r.Name.Completeness() }

// scope tracks names bound by enclosing WITH clauses. A bare reference
// to a bound name is a CTE read, not a table read.
type scope struct {
	parent *scope
	names  map[string]struct{}
}

func (s *scope) bound(name string) bool {
	folded := strings.ToLower(name)
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.names[folded]; ok {
			return true
		}
	}
	return false
}

func (s *scope) child(ctes []*parser.CTE) *scope {
	if len(ctes) == 0 {
		return s
	}
	names := make(map[string]struct{}, len(ctes))
	for _, cte := range ctes {
		names[strings.ToLower(cte.Name)] = struct{}{}
	}
	return &scope{parent: s, names: names}
}

// childAliases binds derived and lateral subquery aliases, so a later
// bare use of the alias as a table source is a local read, not a table.
func (s *scope) childAliases(from *parser.FromClause) *scope {
	var names map[string]struct{}
	bind := func(src parser.TableSource) {
		var alias string
		switch t := src.(type) {
		case *parser.DerivedTable:
			alias = t.Alias
		case *parser.LateralTable:
			alias = t.Alias
		}
		if alias == "" {
			return
		}
		if names == nil {
			names = make(map[string]struct{})
		}
		names[strings.ToLower(alias)] = struct{}{}
	}
	bind(from.Source)
	for _, join := range from.Joins {
		bind(join.Right)
	}
	if names == nil {
		return s
	}
	return &scope{parent: s, names: names}
}

// walker collects references in document order.
type walker struct {
	file string
	stmt int
	refs []Ref
}

// Statements extracts every table reference from the statements of one
// file, in document order, one Ref per occurrence.
func Statements(file string, stmts []parser.Statement) []Ref {
	w := &walker{file: file}
	for i, stmt := range stmts {
		w.stmt = i
		w.statement(stmt, nil)
	}
	return w.refs
}

func (w *walker) statement(stmt parser.Statement, sc *scope) {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		w.selectStmt(s, sc)
	case *parser.CreateStmt:
		// The created name is an output, not a reference.
		w.selectStmt(s.Select, sc)
	}
}

func (w *walker) selectStmt(stmt *parser.SelectStmt, sc *scope) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		// A CTE's name is visible to the CTEs that follow it and to
		// the main body. Recursive CTEs see themselves.
		for i, cte := range stmt.With.CTEs {
			inner := sc.child(stmt.With.CTEs[:i+1])
			w.selectStmt(cte.Select, inner)
		}
		sc = sc.child(stmt.With.CTEs)
	}
	w.selectBody(stmt.Body, sc)
}

func (w *walker) selectBody(body *parser.SelectBody, sc *scope) {
	if body == nil {
		return
	}
	if body.Core != nil {
		w.selectCore(body.Core, sc)
	} else {
		w.selectBody(body.Left, sc)
		w.selectBody(body.Right, sc)
	}
	for _, item := range body.OrderBy {
		w.expr(item.Expr, sc)
	}
	w.expr(body.Limit, sc)
	w.expr(body.Offset, sc)
}

func (w *walker) selectCore(core *parser.SelectCore, sc *scope) {
	if core.From != nil {
		sc = sc.childAliases(core.From)
	}
	w.expr(core.Top, sc)
	for _, item := range core.Columns {
		w.expr(item.Expr, sc)
	}
	if core.From != nil {
		w.tableSource(core.From.Source, sc)
		for _, join := range core.From.Joins {
			w.tableSource(join.Right, sc)
			w.expr(join.Condition, sc)
		}
	}
	w.expr(core.Where, sc)
	for _, expr := range core.GroupBy {
		w.expr(expr, sc)
	}
	w.expr(core.Having, sc)
	for _, item := range core.OrderBy {
		w.expr(item.Expr, sc)
	}
	w.expr(core.Limit, sc)
	w.expr(core.Offset, sc)
}

func (w *walker) tableSource(src parser.TableSource, sc *scope) {
	switch s := src.(type) {
	case *parser.TableName:
		// Bare names bound by an enclosing WITH are CTE reads.
		if s.Database == "" && s.Schema == "" && sc.bound(s.Name) {
			return
		}
		w.refs = append(w.refs, Ref{
			Name: QualifiedName{
				Database: s.Database,
				Schema:   s.Schema,
				Table:    s.Name,
			},
			Raw:   s.Raw,
			Alias: s.Alias,
			File:  w.file,
			Stmt:  w.stmt,
			Line:  s.Position.Line,
		})
	case *parser.DerivedTable:
		w.selectStmt(s.Select, sc)
	case *parser.LateralTable:
		w.selectStmt(s.Select, sc)
	}
}

func (w *walker) expr(expr parser.Expr, sc *scope) {
	switch e := expr.(type) {
	case nil:
	case *parser.BinaryExpr:
		w.expr(e.Left, sc)
		w.expr(e.Right, sc)
	case *parser.UnaryExpr:
		w.expr(e.Expr, sc)
	case *parser.FuncCall:
		for _, arg := range e.Args {
			w.expr(arg, sc)
		}
		if e.Window != nil {
			for _, pe := range e.Window.PartitionBy {
				w.expr(pe, sc)
			}
			for _, item := range e.Window.OrderBy {
				w.expr(item.Expr, sc)
			}
		}
	case *parser.CaseExpr:
		w.expr(e.Operand, sc)
		for _, when := range e.Whens {
			w.expr(when.Cond, sc)
			w.expr(when.Result, sc)
		}
		w.expr(e.Else, sc)
	case *parser.CastExpr:
		w.expr(e.Expr, sc)
	case *parser.InExpr:
		w.expr(e.Expr, sc)
		for _, item := range e.List {
			w.expr(item, sc)
		}
		w.selectStmt(e.Subquery, sc)
	case *parser.BetweenExpr:
		w.expr(e.Expr, sc)
		w.expr(e.Low, sc)
		w.expr(e.High, sc)
	case *parser.IsNullExpr:
		w.expr(e.Expr, sc)
	case *parser.LikeExpr:
		w.expr(e.Expr, sc)
		w.expr(e.Pattern, sc)
	case *parser.ParenExpr:
		w.expr(e.Expr, sc)
	case *parser.SubqueryExpr:
		w.selectStmt(e.Select, sc)
	case *parser.ExistsExpr:
		w.selectStmt(e.Select, sc)
	}
}
