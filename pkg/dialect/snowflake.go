package dialect

// Snowflake is the target dialect. The printer quotes with double
// quotes only when a name needs it, and emits LIMIT instead of TOP.
var Snowflake = &Dialect{
	Name: "snowflake",
	Identifiers: IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: NormUpper,
	},
	SupportsTop:        false,
	SupportsLimit:      true,
	SupportsSelectInto: false,
	reserved:           snowflakeReserved,
}

var snowflakeReserved = reservedSet(
	"ALL", "AND", "ANY", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST",
	"CONNECT", "CREATE", "CROSS", "CURRENT", "DELETE", "DESC",
	"DISTINCT", "DROP", "ELSE", "END", "EXCEPT", "EXISTS", "FROM",
	"FULL", "GROUP", "HAVING", "ILIKE", "IN", "INNER", "INTERSECT",
	"INTO", "IS", "JOIN", "LATERAL", "LEFT", "LIKE", "LIMIT", "MINUS",
	"NATURAL", "NOT", "NULL", "OFFSET", "ON", "OR", "ORDER", "QUALIFY",
	"RIGHT", "SELECT", "TABLE", "THEN", "UNION", "UPDATE", "USING",
	"VALUES", "VIEW", "WHEN", "WHERE", "WITH",
)

func init() {
	Register(Snowflake)
}
