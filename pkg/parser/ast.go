// Package parser implements a recursive-descent SQL parser producing an
// AST shared by the T-SQL frontend and the Snowflake printer. The parser
// is dialect-aware: quoting style, TOP, and SELECT INTO acceptance come
// from the dialect it is constructed with.
package parser

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// Node is the common interface of all AST nodes.
type Node interface {
	Pos() token.Position
}

// Statement is a top-level SQL statement.
type Statement interface {
	Node
	statementNode()
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// TableSource is anything that can appear as a FROM source: a table
// name, a derived table, or a lateral subquery.
type TableSource interface {
	Node
	tableSourceNode()
}

// SelectStmt is a full SELECT statement: an optional WITH clause
// followed by a select body.
type SelectStmt struct {
	With *WithClause
	Body *SelectBody

	Position token.Position
}

func (s *SelectStmt) Pos() token.Position { return s.Position }
func (s *SelectStmt) statementNode()      {}

// WithClause holds the CTEs introduced by WITH.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE

	Position token.Position
}

func (w *WithClause) Pos() token.Position { return w.Position }

// CTE is one common table expression: name [(columns)] AS (select).
type CTE struct {
	Name    string
	Columns []string
	Select  *SelectStmt

	Position token.Position
}

func (c *CTE) Pos() token.Position { return c.Position }

// SetOpType identifies a set operation between select cores.
type SetOpType int

const (
	SetNone SetOpType = iota
	SetUnion
	SetUnionAll
	SetIntersect
	SetExcept
)

func (s SetOpType) String() string {
	switch s {
	case SetUnion:
		return "UNION"
	case SetUnionAll:
		return "UNION ALL"
	case SetIntersect:
		return "INTERSECT"
	case SetExcept:
		return "EXCEPT"
	}
	return ""
}

// SelectBody is either a single select core or a set operation over two
// bodies. Set operations are left-associative, so a chain of UNIONs
// nests on the left.
type SelectBody struct {
	Core *SelectCore // non-nil for a leaf

	Op    SetOpType
	Left  *SelectBody
	Right *SelectBody

	// OrderBy and Limit attach to the whole compound when present
	// after the last arm of a set operation.
	OrderBy []*OrderItem
	Limit   Expr
	Offset  Expr

	Position token.Position
}

func (b *SelectBody) Pos() token.Position { return b.Position }

// SelectCore is one SELECT ... FROM ... arm.
type SelectCore struct {
	Distinct   bool
	Top        Expr // TOP n, T-SQL only
	TopPercent bool
	Columns    []*SelectItem
	Into       *TableName // SELECT ... INTO #tmp, T-SQL only
	From       *FromClause
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	OrderBy    []*OrderItem
	Limit      Expr
	Offset     Expr

	Position token.Position
}

func (c *SelectCore) Pos() token.Position { return c.Position }

// SelectItem is one projected column.
type SelectItem struct {
	Star      bool   // SELECT *
	TableStar string // SELECT t.*
	Expr      Expr
	Alias     string
	AliasPos  token.Position

	Position token.Position
}

func (s *SelectItem) Pos() token.Position { return s.Position }

// OrderItem is one ORDER BY element.
type OrderItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst bool
	NullsLast  bool
}

// FromClause is the FROM source plus any joins.
type FromClause struct {
	Source TableSource
	Joins  []*Join

	Position token.Position
}

func (f *FromClause) Pos() token.Position { return f.Position }

// JoinType identifies the join flavor.
type JoinType int

const (
	JoinComma JoinType = iota
	JoinInner
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
	JoinCrossApply // T-SQL CROSS APPLY
	JoinOuterApply // T-SQL OUTER APPLY
)

// Join is one join arm following the primary FROM source.
type Join struct {
	Type      JoinType
	Right     TableSource
	Condition Expr // ON clause, nil for CROSS and comma joins

	Position token.Position
}

func (j *Join) Pos() token.Position { return j.Position }

// TableName is a possibly qualified table reference. Empty Database and
// Schema mean the segment was absent in the source text. Raw preserves
// the original dot-joined spelling for reporting and macro injection.
type TableName struct {
	Database string
	Schema   string
	Name     string
	Alias    string
	Raw      string
	Temp     bool // #name temp table

	Position token.Position
}

func (t *TableName) Pos() token.Position { return t.Position }
func (t *TableName) tableSourceNode()    {}

// Bare returns the unqualified table name.
func (t *TableName) Bare() string { return t.Name }

// Qualified returns the dot-joined qualified name using only the
// segments present.
func (t *TableName) Qualified() string {
	parts := make([]string, 0, 3)
	if t.Database != "" {
		parts = append(parts, t.Database)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}

// DerivedTable is a parenthesized subquery in FROM with an alias.
type DerivedTable struct {
	Select *SelectStmt
	Alias  string

	Position token.Position
}

func (d *DerivedTable) Pos() token.Position { return d.Position }
func (d *DerivedTable) tableSourceNode()    {}

// LateralTable is a LATERAL subquery joined to preceding sources. The
// transformer produces these from APPLY; the T-SQL parser never does.
type LateralTable struct {
	Select *SelectStmt
	Alias  string

	Position token.Position
}

func (l *LateralTable) Pos() token.Position { return l.Position }
func (l *LateralTable) tableSourceNode()    {}

// CreateStmt is CREATE [OR REPLACE] [TEMPORARY] TABLE|VIEW name AS select.
type CreateStmt struct {
	View      bool
	Temp      bool
	OrReplace bool
	Name      *TableName
	Select    *SelectStmt

	Position token.Position
}

func (c *CreateStmt) Pos() token.Position { return c.Position }
func (c *CreateStmt) statementNode()      {}

// ColumnRef is a possibly qualified column reference. Parts holds the
// dot-separated segments in source order.
type ColumnRef struct {
	Parts []string

	Position token.Position
}

func (c *ColumnRef) Pos() token.Position { return c.Position }
func (c *ColumnRef) exprNode()           {}

func (c *ColumnRef) String() string { return strings.Join(c.Parts, ".") }

// LiteralType identifies the kind of a literal value.
type LiteralType int

const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a literal value. Value holds the source spelling for
// numbers and the unescaped content for strings.
type Literal struct {
	Type  LiteralType
	Value string

	Position token.Position
}

func (l *Literal) Pos() token.Position { return l.Position }
func (l *Literal) exprNode()           {}

// BinaryExpr is a binary operation. Op holds the source-level operator
// spelling in uppercase, e.g. "+", "=", "AND", "||".
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Pos() token.Position { return b.Left.Pos() }
func (b *BinaryExpr) exprNode()           {}

// UnaryExpr is a prefix operation: NOT, -, +.
type UnaryExpr struct {
	Op   string
	Expr Expr

	Position token.Position
}

func (u *UnaryExpr) Pos() token.Position { return u.Position }
func (u *UnaryExpr) exprNode()           {}

// FuncCall is a function invocation. Star marks COUNT(*).
type FuncCall struct {
	Name     string
	Distinct bool
	Star     bool
	Args     []Expr
	Window   *WindowSpec // OVER clause

	// Bare marks a keyword expression with no argument list, e.g.
	// CURRENT_TIMESTAMP. The printer omits the parentheses.
	Bare bool

	Position token.Position
}

func (f *FuncCall) Pos() token.Position { return f.Position }
func (f *FuncCall) exprNode()           {}

// WindowSpec is an OVER (...) window.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []*OrderItem
}

// CaseExpr is a CASE expression, searched or simple.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []*WhenClause
	Else    Expr

	Position token.Position
}

func (c *CaseExpr) Pos() token.Position { return c.Position }
func (c *CaseExpr) exprNode()           {}

// WhenClause is one WHEN ... THEN ... arm.
type WhenClause struct {
	Cond   Expr
	Result Expr
}

// CastExpr is CAST(expr AS type). TypeName keeps the type's source
// spelling including any length or precision suffix.
type CastExpr struct {
	Expr     Expr
	TypeName string

	Position token.Position
}

func (c *CastExpr) Pos() token.Position { return c.Position }
func (c *CastExpr) exprNode()           {}

// InExpr is expr [NOT] IN (list | subquery).
type InExpr struct {
	Expr     Expr
	Not      bool
	List     []Expr
	Subquery *SelectStmt
}

func (i *InExpr) Pos() token.Position { return i.Expr.Pos() }
func (i *InExpr) exprNode()           {}

// BetweenExpr is expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (b *BetweenExpr) Pos() token.Position { return b.Expr.Pos() }
func (b *BetweenExpr) exprNode()           {}

// IsNullExpr is expr IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (i *IsNullExpr) Pos() token.Position { return i.Expr.Pos() }
func (i *IsNullExpr) exprNode()           {}

// LikeExpr is expr [NOT] LIKE pattern.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Pattern Expr
}

func (l *LikeExpr) Pos() token.Position { return l.Expr.Pos() }
func (l *LikeExpr) exprNode()           {}

// ParenExpr preserves explicit parentheses from the source.
type ParenExpr struct {
	Expr Expr

	Position token.Position
}

func (p *ParenExpr) Pos() token.Position { return p.Position }
func (p *ParenExpr) exprNode()           {}

// SubqueryExpr is a scalar or IN-list subquery in expression position.
type SubqueryExpr struct {
	Select *SelectStmt

	Position token.Position
}

func (s *SubqueryExpr) Pos() token.Position { return s.Position }
func (s *SubqueryExpr) exprNode()           {}

// ExistsExpr is [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not    bool
	Select *SelectStmt

	Position token.Position
}

func (e *ExistsExpr) Pos() token.Position { return e.Position }
func (e *ExistsExpr) exprNode()           {}
