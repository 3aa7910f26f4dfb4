package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lawrenceadams/sam-converter/internal/sources"
	"github.com/lawrenceadams/sam-converter/pkg/extract"
)

type sourcesDoc struct {
	Version int                   `yaml:"version"`
	Sources []sources.SourceGroup `yaml:"sources"`
}

type refsDoc struct {
	Version   int                 `yaml:"version"`
	ModelRefs []sources.ModelRefs `yaml:"model_refs"`
}

func TestGroupName(t *testing.T) {
	tests := []struct {
		database string
		schema   string
		want     string
	}{
		{"Sales", "dbo", "sales_dbo"},
		{"", "dbo", "dbo"},
		{"sales", "", "sales"},
		{"", "", "unknown_source"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sources.GroupName(tt.database, tt.schema))
	}
}

func TestBuildSources(t *testing.T) {
	data, err := sources.BuildSources([]extract.QualifiedName{
		{Database: "Sales", Schema: "dbo", Table: "Orders"},
		{Database: "sales", Schema: "dbo", Table: "items"},
		{Database: "sales", Schema: "dbo", Table: "EVENTS"},
		{Schema: "staging", Table: "raw_events"},
		{Table: "mystery"},
	})
	require.NoError(t, err)

	var doc sourcesDoc
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.Sources, 3)

	// Groups sort by name.
	assert.Equal(t, "sales_dbo", doc.Sources[0].Name)
	assert.Equal(t, "staging", doc.Sources[1].Name)
	assert.Equal(t, "unknown_source", doc.Sources[2].Name)

	salesDbo := doc.Sources[0]
	assert.Equal(t, "sales", salesDbo.Database)
	assert.Equal(t, "dbo", salesDbo.Schema)
	require.Len(t, salesDbo.Tables, 3)
	// All-uppercase keeps its spelling with no identifier, and sorting
	// ignores case.
	assert.Equal(t, "EVENTS", salesDbo.Tables[0].Name)
	assert.Empty(t, salesDbo.Tables[0].Identifier)
	assert.Equal(t, "items", salesDbo.Tables[1].Name)
	assert.Empty(t, salesDbo.Tables[1].Identifier)
	// Mixed case gets a lowercased name with the original spelling as
	// identifier.
	assert.Equal(t, "orders", salesDbo.Tables[2].Name)
	assert.Equal(t, "Orders", salesDbo.Tables[2].Identifier)

	unknown := doc.Sources[2]
	assert.Empty(t, unknown.Database)
	assert.Empty(t, unknown.Schema)
	require.Len(t, unknown.Tables, 1)
	assert.Equal(t, "mystery", unknown.Tables[0].Name)
}

func TestBuildModelRefs(t *testing.T) {
	data, err := sources.BuildModelRefs(map[string][]string{
		"totals":  {"orders", "customers"},
		"orphan":  {},
		"summary": {"totals"},
	})
	require.NoError(t, err)

	var doc refsDoc
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.ModelRefs, 2)
	assert.Equal(t, "summary", doc.ModelRefs[0].Model)
	assert.Equal(t, []string{"totals"}, doc.ModelRefs[0].DependsOn)
	assert.Equal(t, "totals", doc.ModelRefs[1].Model)
	assert.Equal(t, []string{"customers", "orders"}, doc.ModelRefs[1].DependsOn)
}

func TestBuildModelRefsEmpty(t *testing.T) {
	data, err := sources.BuildModelRefs(map[string][]string{"lonely": {}})
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = sources.BuildModelRefs(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestInject(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		repls []sources.Replacement
		want  string
	}{
		{
			name: "qualified name",
			sql:  "FROM sales.dbo.orders AS o",
			repls: []sources.Replacement{
				{Match: "sales.dbo.orders", Macro: "{{ source('sales_dbo', 'orders') }}"},
			},
			want: "FROM {{ source('sales_dbo', 'orders') }} AS o",
		},
		{
			name: "case insensitive",
			sql:  "FROM Sales.DBO.Orders",
			repls: []sources.Replacement{
				{Match: "sales.dbo.orders", Macro: "{{ source('sales_dbo', 'orders') }}"},
			},
			want: "FROM {{ source('sales_dbo', 'orders') }}",
		},
		{
			name: "bare name does not match inside qualified",
			sql:  "FROM sales.dbo.orders JOIN orders",
			repls: []sources.Replacement{
				{Match: "orders", Macro: "{{ ref('orders') }}"},
			},
			want: "FROM sales.dbo.orders JOIN {{ ref('orders') }}",
		},
		{
			name: "bare name does not match a longer identifier",
			sql:  "FROM orders_archive, orders",
			repls: []sources.Replacement{
				{Match: "orders", Macro: "{{ ref('orders') }}"},
			},
			want: "FROM orders_archive, {{ ref('orders') }}",
		},
		{
			name: "longer match wins",
			sql:  "FROM dbo.orders",
			repls: []sources.Replacement{
				{Match: "orders", Macro: "{{ ref('orders') }}"},
				{Match: "dbo.orders", Macro: "{{ source('dbo', 'orders') }}"},
			},
			want: "FROM {{ source('dbo', 'orders') }}",
		},
		{
			name: "string literal and column qualifier untouched",
			sql:  "WHERE kind = 'orders'\nFROM orders",
			repls: []sources.Replacement{
				{Match: "orders", Macro: "{{ ref('orders') }}"},
			},
			want: "WHERE kind = 'orders'\nFROM {{ ref('orders') }}",
		},
		{
			name: "adjacent occurrences both replaced",
			sql:  "FROM a,a",
			repls: []sources.Replacement{
				{Match: "a", Macro: "{{ ref('a') }}"},
			},
			want: "FROM {{ ref('a') }},{{ ref('a') }}",
		},
		{
			name: "injected macro not rescanned",
			sql:  "FROM dbo.orders JOIN orders",
			repls: []sources.Replacement{
				{Match: "dbo.orders", Macro: "{{ source('dbo', 'orders') }}"},
				{Match: "orders", Macro: "{{ ref('orders') }}"},
			},
			want: "FROM {{ source('dbo', 'orders') }} JOIN {{ ref('orders') }}",
		},
		{
			name: "end of input",
			sql:  "FROM orders",
			repls: []sources.Replacement{
				{Match: "orders", Macro: "{{ ref('orders') }}"},
			},
			want: "FROM {{ ref('orders') }}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sources.Inject(tt.sql, tt.repls))
		})
	}
}

func TestMacros(t *testing.T) {
	assert.Equal(t, "{{ ref('orders') }}", sources.RefMacro("orders"))
	assert.Equal(t, "{{ source('sales_dbo', 'orders') }}", sources.SourceMacro("sales_dbo", "orders"))
}
