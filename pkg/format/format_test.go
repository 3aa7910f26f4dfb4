package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/format"
	"github.com/lawrenceadams/sam-converter/pkg/parser"
	"github.com/lawrenceadams/sam-converter/pkg/transform"
)

func render(t *testing.T, sql string) string {
	t.Helper()
	stmt, err := parser.Parse(sql, dialect.TSQL)
	require.NoError(t, err)
	out, _ := transform.Apply(stmt, dialect.TSQLToSnowflake)
	rendered, err := format.Format(out, dialect.Snowflake)
	require.NoError(t, err)
	return rendered
}

func TestFormatSelect(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "simple select",
			sql:  "select a, b as total from s.t where a = 1 order by a desc",
			want: `SELECT
  a,
  b AS total
FROM s.t
WHERE a = 1
ORDER BY a DESC
`,
		},
		{
			name: "joins",
			sql: `select o.id from orders o
				inner join customers c on o.cid = c.id
				left outer join regions r on c.rid = r.id`,
			want: `SELECT
  o.id
FROM orders AS o
INNER JOIN customers AS c ON o.cid = c.id
LEFT JOIN regions AS r ON c.rid = r.id
`,
		},
		{
			name: "distinct with group and having",
			sql:  "select distinct region, count(*) as n from orders group by region having count(*) > 5",
			want: `SELECT DISTINCT
  region,
  COUNT(*) AS n
FROM orders
GROUP BY region
HAVING COUNT(*) > 5
`,
		},
		{
			name: "cte",
			sql: `with recent as (select id from orders where age < 30)
				select * from recent`,
			want: `WITH
  recent AS (
    SELECT
      id
    FROM orders
    WHERE age < 30
  )
SELECT
  *
FROM recent
`,
		},
		{
			name: "union",
			sql:  "select a from x union all select a from y",
			want: `SELECT
  a
FROM x
UNION ALL
SELECT
  a
FROM y
`,
		},
		{
			name: "select into becomes create table",
			sql:  "select id into #stage from orders",
			want: `CREATE TEMPORARY TABLE stage AS
SELECT
  id
FROM orders
`,
		},
		{
			name: "top becomes limit",
			sql:  "select top 3 id from orders order by id",
			want: `SELECT
  id
FROM orders
ORDER BY id
LIMIT 3
`,
		},
		{
			name: "database with empty schema",
			sql:  "select id from sales..orders",
			want: `SELECT
  id
FROM sales..orders
`,
		},
		{
			name: "reserved word quoted",
			sql:  "select [order] from t",
			want: `SELECT
  "order"
FROM t
`,
		},
		{
			name: "identifier with spaces quoted",
			sql:  "select [unit price] from [order details]",
			want: `SELECT
  "unit price"
FROM "order details"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.sql))
		})
	}
}

func TestFormatOuterApply(t *testing.T) {
	got := render(t, `
		select o.id, x.price
		from orders o
		outer apply (select price from items i where i.oid = o.id) x`)
	assert.Equal(t, `SELECT
  o.id,
  x.price
FROM orders AS o
LEFT JOIN LATERAL (
  SELECT
    price
  FROM items AS i
  WHERE i.oid = o.id
) AS x ON TRUE
`, got)
}

func TestFormatCoverageErrors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		dialect *dialect.Dialect
		want    string
	}{
		{
			name:    "top reaches snowflake printer",
			sql:     "SELECT TOP 5 a FROM t",
			dialect: dialect.Snowflake,
			want:    "SELECT TOP",
		},
		{
			name:    "into reaches snowflake printer",
			sql:     "SELECT a INTO #x FROM t",
			dialect: dialect.Snowflake,
			want:    "SELECT INTO",
		},
		{
			name:    "apply join reaches snowflake printer",
			sql:     "SELECT * FROM a CROSS APPLY (SELECT 1 FROM b) x",
			dialect: dialect.Snowflake,
			want:    "APPLY join",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.Parse(tt.sql, dialect.TSQL)
			require.NoError(t, err)

			// Untransformed source constructs must fail loudly rather
			// than render as wrong SQL.
			_, err = format.Format(stmt, tt.dialect)
			require.Error(t, err)
			var cerr *format.CoverageError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.want, cerr.Construct)
			assert.Equal(t, "snowflake", cerr.Dialect)
		})
	}
}

func TestFormatLimitUnsupported(t *testing.T) {
	stmt, err := parser.Parse("SELECT TOP 5 a FROM t", dialect.TSQL)
	require.NoError(t, err)
	out, _ := transform.Apply(stmt, dialect.TSQLToSnowflake)

	_, err = format.Format(out, dialect.TSQL)
	var cerr *format.CoverageError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "LIMIT", cerr.Construct)
}

// Formatted output must parse back under the target dialect and format
// to the same text, so emitted models are themselves convertible.
func TestFormatRoundTrip(t *testing.T) {
	sqls := []string{
		`with recent as (select id, amount from orders where age < 30)
			select r.id, case when r.amount > 100 then 'big' else 'small' end as size
			from recent r
			inner join customers c on r.id = c.id
			order by r.amount desc`,
		`select top 10 o.id, isnull(o.region, 'unknown') as region
			from sales.dbo.orders o
			outer apply (select top 1 price from items i where i.oid = o.id) latest
			where o.created between '2020-01-01' and '2020-12-31'`,
		`select region, count(*) as n,
			row_number() over (partition by region order by count(*) desc) as rn
			from orders group by region`,
		`select a from x union all select a from y`,
	}

	for _, sql := range sqls {
		first := render(t, sql)

		stmt, err := parser.Parse(first, dialect.Snowflake)
		require.NoError(t, err, "formatted output should parse: %s", first)
		second, err := format.Format(stmt, dialect.Snowflake)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}
