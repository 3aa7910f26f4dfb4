package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"tsql", "TSQL", "snowflake", "Snowflake"} {
		d, ok := dialect.Get(name)
		require.True(t, ok, name)
		require.NotNil(t, d)
	}

	_, ok := dialect.Get("oracle")
	assert.False(t, ok)
}

func TestDialectCapabilities(t *testing.T) {
	assert.True(t, dialect.TSQL.SupportsTop)
	assert.True(t, dialect.TSQL.SupportsSelectInto)
	assert.False(t, dialect.TSQL.SupportsLimit)
	assert.True(t, dialect.TSQL.Identifiers.BracketQuoting)

	assert.False(t, dialect.Snowflake.SupportsTop)
	assert.False(t, dialect.Snowflake.SupportsSelectInto)
	assert.True(t, dialect.Snowflake.SupportsLimit)
	assert.False(t, dialect.Snowflake.Identifiers.BracketQuoting)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "MixedCase", dialect.TSQL.NormalizeName("MixedCase"))
	assert.Equal(t, "MIXEDCASE", dialect.Snowflake.NormalizeName("MixedCase"))
}

func TestIsReservedWord(t *testing.T) {
	assert.True(t, dialect.Snowflake.IsReservedWord("select"))
	assert.True(t, dialect.Snowflake.IsReservedWord("ORDER"))
	assert.True(t, dialect.Snowflake.IsReservedWord("lateral"))
	assert.False(t, dialect.Snowflake.IsReservedWord("customers"))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"order details"`, dialect.Snowflake.QuoteIdentifier("order details"))
	assert.Equal(t, `"say ""hi"""`, dialect.Snowflake.QuoteIdentifier(`say "hi"`))
	assert.Equal(t, "[col]]name]", dialect.TSQL.QuoteIdentifier("col]name"))
}

func TestQuoteIdentifierIfNeeded(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"customers", "customers"},
		{"_private", "_private"},
		{"v$stat", "v$stat"},
		{"order", `"order"`},
		{"unit price", `"unit price"`},
		{"2fast", `"2fast"`},
		{"", `""`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dialect.Snowflake.QuoteIdentifierIfNeeded(tt.name))
	}
}

func TestFunctionRule(t *testing.T) {
	rule, ok := dialect.TSQLToSnowflake.FunctionRule("getdate")
	require.True(t, ok)
	assert.Equal(t, "CURRENT_TIMESTAMP", rule.Target)
	assert.True(t, rule.ZeroArg)

	rule, ok = dialect.TSQLToSnowflake.FunctionRule("Convert")
	require.True(t, ok)
	assert.True(t, rule.ConvertToCast)

	rule, ok = dialect.TSQLToSnowflake.FunctionRule("DATEADD")
	require.True(t, ok)
	assert.Empty(t, rule.Target)
	assert.True(t, rule.UpperFirstArg)

	_, ok = dialect.TSQLToSnowflake.FunctionRule("COALESCE")
	assert.False(t, ok)
}

func TestIsUnsupported(t *testing.T) {
	assert.True(t, dialect.TSQLToSnowflake.IsUnsupported("object_id"))
	assert.True(t, dialect.TSQLToSnowflake.IsUnsupported("PATINDEX"))
	// DATE_PART would turn DATENAME's 'July' into 7.
	assert.True(t, dialect.TSQLToSnowflake.IsUnsupported("DATENAME"))
	assert.False(t, dialect.TSQLToSnowflake.IsUnsupported("LEN"))
}
