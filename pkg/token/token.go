// Package token defines the lexical tokens shared by the T-SQL and
// Snowflake SQL frontends.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int32

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	MOD       // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;

	// Keywords (alphabetical)
	ALL
	AND
	APPLY
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CREATE
	CROSS
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FIRST
	FROM
	FULL
	GROUP
	HAVING
	IN
	INNER
	INTERSECT
	INTO
	IS
	JOIN
	LAST
	LATERAL
	LEFT
	LIKE
	LIMIT
	NOT
	NULL
	NULLS
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	PARTITION
	PERCENT
	RECURSIVE
	REPLACE
	RIGHT
	SELECT
	TABLE
	TEMPORARY
	THEN
	TOP
	TRUE
	UNION
	VIEW
	WHEN
	WHERE
	WITH
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	MOD:       "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	SEMICOLON: ";",

	ALL:       "ALL",
	AND:       "AND",
	APPLY:     "APPLY",
	AS:        "AS",
	ASC:       "ASC",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	CAST:      "CAST",
	CREATE:    "CREATE",
	CROSS:     "CROSS",
	DESC:      "DESC",
	DISTINCT:  "DISTINCT",
	ELSE:      "ELSE",
	END:       "END",
	EXCEPT:    "EXCEPT",
	EXISTS:    "EXISTS",
	FALSE:     "FALSE",
	FIRST:     "FIRST",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	IN:        "IN",
	INNER:     "INNER",
	INTERSECT: "INTERSECT",
	INTO:      "INTO",
	IS:        "IS",
	JOIN:      "JOIN",
	LAST:      "LAST",
	LATERAL:   "LATERAL",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	NOT:       "NOT",
	NULL:      "NULL",
	NULLS:     "NULLS",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	OVER:      "OVER",
	PARTITION: "PARTITION",
	PERCENT:   "PERCENT",
	RECURSIVE: "RECURSIVE",
	REPLACE:   "REPLACE",
	RIGHT:     "RIGHT",
	SELECT:    "SELECT",
	TABLE:     "TABLE",
	TEMPORARY: "TEMPORARY",
	THEN:      "THEN",
	TOP:       "TOP",
	TRUE:      "TRUE",
	UNION:     "UNION",
	VIEW:      "VIEW",
	WHEN:      "WHEN",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]Type{
	"all":       ALL,
	"and":       AND,
	"apply":     APPLY,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"cast":      CAST,
	"create":    CREATE,
	"cross":     CROSS,
	"desc":      DESC,
	"distinct":  DISTINCT,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"exists":    EXISTS,
	"false":     FALSE,
	"first":     FIRST,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"having":    HAVING,
	"in":        IN,
	"inner":     INNER,
	"intersect": INTERSECT,
	"into":      INTO,
	"is":        IS,
	"join":      JOIN,
	"last":      LAST,
	"lateral":   LATERAL,
	"left":      LEFT,
	"like":      LIKE,
	"limit":     LIMIT,
	"not":       NOT,
	"null":      NULL,
	"nulls":     NULLS,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"over":      OVER,
	"partition": PARTITION,
	"percent":   PERCENT,
	"recursive": RECURSIVE,
	"replace":   REPLACE,
	"right":     RIGHT,
	"select":    SELECT,
	"table":     TABLE,
	"temporary": TEMPORARY,
	"then":      THEN,
	"top":       TOP,
	"true":      TRUE,
	"union":     UNION,
	"view":      VIEW,
	"when":      WHEN,
	"where":     WHERE,
	"with":      WITH,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned;
// otherwise IDENT. Quoted identifiers must not go through this lookup.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t Type) bool {
	return t >= ALL && t <= WITH
}

// Token represents a lexical token with position information.
type Token struct {
	Type    Type
	Literal string
	Quoted  bool // identifier was written in [brackets] or "quotes"
	Pos     Position
}
