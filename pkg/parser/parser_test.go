package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

func parseSelect(t *testing.T, sql string) *parser.SelectStmt {
	t.Helper()
	stmt, err := parser.Parse(sql, dialect.TSQL)
	require.NoError(t, err)
	sel, ok := stmt.(*parser.SelectStmt)
	require.True(t, ok, "expected SelectStmt, got %T", stmt)
	return sel
}

func TestParseSimpleSelect(t *testing.T) {
	sel := parseSelect(t, "SELECT id, name FROM customers")
	core := sel.Body.Core
	require.NotNil(t, core)
	require.Len(t, core.Columns, 2)

	col, ok := core.Columns[0].Expr.(*parser.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, col.Parts)

	table, ok := core.From.Source.(*parser.TableName)
	require.True(t, ok)
	assert.Equal(t, "customers", table.Name)
	assert.Empty(t, table.Schema)
	assert.Empty(t, table.Database)
}

func TestParseQualifiedTableNames(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		database string
		schema   string
		table    string
		raw      string
	}{
		{
			name:  "bare",
			sql:   "SELECT * FROM orders",
			table: "orders",
			raw:   "orders",
		},
		{
			name:   "schema qualified",
			sql:    "SELECT * FROM dbo.orders",
			schema: "dbo",
			table:  "orders",
			raw:    "dbo.orders",
		},
		{
			name:     "fully qualified",
			sql:      "SELECT * FROM sales.dbo.orders",
			database: "sales",
			schema:   "dbo",
			table:    "orders",
			raw:      "sales.dbo.orders",
		},
		{
			name:     "database with empty schema",
			sql:      "SELECT * FROM sales..orders",
			database: "sales",
			schema:   "",
			table:    "orders",
			raw:      "sales..orders",
		},
		{
			name:   "bracket quoted",
			sql:    "SELECT * FROM [My Schema].[Order Details]",
			schema: "My Schema",
			table:  "Order Details",
			raw:    "My Schema.Order Details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := parseSelect(t, tt.sql)
			table, ok := sel.Body.Core.From.Source.(*parser.TableName)
			require.True(t, ok)
			assert.Equal(t, tt.database, table.Database)
			assert.Equal(t, tt.schema, table.Schema)
			assert.Equal(t, tt.table, table.Name)
			assert.Equal(t, tt.raw, table.Raw)
		})
	}
}

func TestParseTop(t *testing.T) {
	sel := parseSelect(t, "SELECT TOP 10 id FROM orders")
	core := sel.Body.Core
	require.NotNil(t, core.Top)
	lit, ok := core.Top.(*parser.Literal)
	require.True(t, ok)
	assert.Equal(t, "10", lit.Value)
	assert.False(t, core.TopPercent)
}

func TestParseTopPercent(t *testing.T) {
	sel := parseSelect(t, "SELECT TOP 50 PERCENT id FROM orders")
	assert.True(t, sel.Body.Core.TopPercent)
}

func TestParseTopRejectedBySnowflake(t *testing.T) {
	_, err := parser.Parse("SELECT TOP 10 id FROM orders", dialect.Snowflake)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP")
}

func TestParseSelectInto(t *testing.T) {
	sel := parseSelect(t, "SELECT id INTO #staging FROM orders")
	into := sel.Body.Core.Into
	require.NotNil(t, into)
	assert.Equal(t, "#staging", into.Name)
	assert.True(t, into.Temp)
}

func TestParseCTE(t *testing.T) {
	sel := parseSelect(t, `
		WITH recent AS (
			SELECT id FROM orders WHERE age < 30
		)
		SELECT * FROM recent`)
	require.NotNil(t, sel.With)
	require.Len(t, sel.With.CTEs, 1)
	assert.Equal(t, "recent", sel.With.CTEs[0].Name)

	table, ok := sel.Body.Core.From.Source.(*parser.TableName)
	require.True(t, ok)
	assert.Equal(t, "recent", table.Name)
}

func TestParseJoins(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantType parser.JoinType
		hasOn    bool
	}{
		{"inner", "SELECT * FROM a JOIN b ON a.id = b.id", parser.JoinInner, true},
		{"explicit inner", "SELECT * FROM a INNER JOIN b ON a.id = b.id", parser.JoinInner, true},
		{"left", "SELECT * FROM a LEFT JOIN b ON a.id = b.id", parser.JoinLeft, true},
		{"left outer", "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id", parser.JoinLeft, true},
		{"right", "SELECT * FROM a RIGHT JOIN b ON a.id = b.id", parser.JoinRight, true},
		{"full", "SELECT * FROM a FULL OUTER JOIN b ON a.id = b.id", parser.JoinFull, true},
		{"cross", "SELECT * FROM a CROSS JOIN b", parser.JoinCross, false},
		{"comma", "SELECT * FROM a, b", parser.JoinComma, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := parseSelect(t, tt.sql)
			require.Len(t, sel.Body.Core.From.Joins, 1)
			join := sel.Body.Core.From.Joins[0]
			assert.Equal(t, tt.wantType, join.Type)
			if tt.hasOn {
				assert.NotNil(t, join.Condition)
			} else {
				assert.Nil(t, join.Condition)
			}
		})
	}
}

func TestParseApply(t *testing.T) {
	sel := parseSelect(t, `
		SELECT * FROM orders o
		CROSS APPLY (SELECT TOP 1 price FROM items i WHERE i.oid = o.id) latest`)
	require.Len(t, sel.Body.Core.From.Joins, 1)
	join := sel.Body.Core.From.Joins[0]
	assert.Equal(t, parser.JoinCrossApply, join.Type)

	derived, ok := join.Right.(*parser.DerivedTable)
	require.True(t, ok)
	assert.Equal(t, "latest", derived.Alias)
}

func TestParseOuterApply(t *testing.T) {
	sel := parseSelect(t, `
		SELECT * FROM orders o
		OUTER APPLY (SELECT price FROM items i WHERE i.oid = o.id) latest`)
	require.Len(t, sel.Body.Core.From.Joins, 1)
	assert.Equal(t, parser.JoinOuterApply, sel.Body.Core.From.Joins[0].Type)
}

func TestParseSetOperations(t *testing.T) {
	sel := parseSelect(t, "SELECT a FROM x UNION ALL SELECT a FROM y UNION SELECT a FROM z")
	body := sel.Body
	require.Nil(t, body.Core)
	assert.Equal(t, parser.SetUnion, body.Op)
	// Left-associative: (x UNION ALL y) UNION z
	require.Nil(t, body.Left.Core)
	assert.Equal(t, parser.SetUnionAll, body.Left.Op)
	require.NotNil(t, body.Right.Core)
}

func TestParseTableStar(t *testing.T) {
	sel := parseSelect(t, "SELECT o.*, c.name FROM orders o JOIN customers c ON o.cid = c.id")
	require.Len(t, sel.Body.Core.Columns, 2)
	assert.Equal(t, "o", sel.Body.Core.Columns[0].TableStar)

	col, ok := sel.Body.Core.Columns[1].Expr.(*parser.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, []string{"c", "name"}, col.Parts)
}

func TestParseExpressions(t *testing.T) {
	sel := parseSelect(t, `
		SELECT
			CASE WHEN amount > 100 THEN 'big' ELSE 'small' END AS size,
			CAST(amount AS DECIMAL(10, 2)) AS exact,
			ISNULL(region, 'unknown') AS region,
			COUNT(*) AS n
		FROM orders
		WHERE created BETWEEN '2020-01-01' AND '2020-12-31'
			AND region IS NOT NULL
			AND status IN ('open', 'held')
			AND name LIKE N'A%'`)

	core := sel.Body.Core
	require.Len(t, core.Columns, 4)

	_, ok := core.Columns[0].Expr.(*parser.CaseExpr)
	assert.True(t, ok)
	assert.Equal(t, "size", core.Columns[0].Alias)

	cast, ok := core.Columns[1].Expr.(*parser.CastExpr)
	require.True(t, ok)
	assert.Equal(t, "DECIMAL(10, 2)", cast.TypeName)

	fn, ok := core.Columns[2].Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "ISNULL", fn.Name)

	count, ok := core.Columns[3].Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.True(t, count.Star)

	require.NotNil(t, core.Where)
}

func TestParseWindowFunction(t *testing.T) {
	sel := parseSelect(t, `
		SELECT ROW_NUMBER() OVER (PARTITION BY region ORDER BY amount DESC) AS rn
		FROM orders`)
	fn, ok := sel.Body.Core.Columns[0].Expr.(*parser.FuncCall)
	require.True(t, ok)
	require.NotNil(t, fn.Window)
	assert.Len(t, fn.Window.PartitionBy, 1)
	require.Len(t, fn.Window.OrderBy, 1)
	assert.True(t, fn.Window.OrderBy[0].Desc)
}

func TestParseCreateView(t *testing.T) {
	stmt, err := parser.Parse("CREATE VIEW dbo.v_orders AS SELECT id FROM orders", dialect.TSQL)
	require.NoError(t, err)
	create, ok := stmt.(*parser.CreateStmt)
	require.True(t, ok)
	assert.True(t, create.View)
	assert.Equal(t, "v_orders", create.Name.Name)
	assert.Equal(t, "dbo", create.Name.Schema)
}

func TestParseCreateTableAsSelect(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE dbo.summary AS SELECT id FROM orders", dialect.TSQL)
	require.NoError(t, err)
	create, ok := stmt.(*parser.CreateStmt)
	require.True(t, ok)
	assert.False(t, create.View)
	assert.Equal(t, "summary", create.Name.Name)
	assert.Equal(t, "dbo", create.Name.Schema)
	require.NotNil(t, create.Select)
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.Parse("SELECT FROM orders", dialect.TSQL)
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos.Line)
}

func TestParseTrailingGarbage(t *testing.T) {
	_, err := parser.Parse("SELECT 1 banana extra", dialect.TSQL)
	require.Error(t, err)
}

func TestParseSubqueries(t *testing.T) {
	sel := parseSelect(t, `
		SELECT id,
			(SELECT MAX(total) FROM history h WHERE h.id = o.id) AS peak
		FROM orders o
		WHERE EXISTS (SELECT 1 FROM flags f WHERE f.oid = o.id)`)
	core := sel.Body.Core

	_, ok := core.Columns[1].Expr.(*parser.SubqueryExpr)
	assert.True(t, ok)
	_, ok = core.Where.(*parser.ExistsExpr)
	assert.True(t, ok)
}

func TestParseDerivedTable(t *testing.T) {
	sel := parseSelect(t, "SELECT * FROM (SELECT id FROM orders) AS inner_q")
	derived, ok := sel.Body.Core.From.Source.(*parser.DerivedTable)
	require.True(t, ok)
	assert.Equal(t, "inner_q", derived.Alias)
}
