package dialect

// TSQL is the Microsoft SQL Server dialect. It is the source dialect of
// every conversion run: the parser accepts bracket-quoted identifiers,
// TOP, and SELECT INTO when parsing with it.
var TSQL = &Dialect{
	Name: "tsql",
	Identifiers: IdentifierConfig{
		Quote:          "[",
		QuoteEnd:       "]",
		Escape:         "]]",
		BracketQuoting: true,
		Normalization:  NormNone,
	},
	SupportsTop:        true,
	SupportsLimit:      false,
	SupportsSelectInto: true,
	reserved:           tsqlReserved,
}

var tsqlReserved = reservedSet(
	"ALL", "AND", "ANY", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST",
	"CREATE", "CROSS", "DELETE", "DESC", "DISTINCT", "DROP", "ELSE",
	"END", "EXCEPT", "EXISTS", "FROM", "FULL", "GROUP", "HAVING", "IN",
	"INNER", "INSERT", "INTERSECT", "INTO", "IS", "JOIN", "LEFT", "LIKE",
	"NOT", "NULL", "ON", "OR", "ORDER", "OUTER", "OVER", "PERCENT",
	"RIGHT", "SELECT", "TABLE", "THEN", "TOP", "UNION", "UPDATE",
	"VALUES", "VIEW", "WHEN", "WHERE", "WITH",
)

func reservedSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func init() {
	Register(TSQL)
}
