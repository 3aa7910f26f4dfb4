// Package dialect defines SQL dialect configuration as data.
//
// A Dialect describes the surface syntax of one SQL flavor: identifier
// quoting, name normalization, and which row-limiting construct it
// accepts. Translation rules between dialects live in rules.go. Both are
// plain data loaded at init and immutable for the lifetime of the
// process; the parser, transformer, and printer consume them.
package dialect

import "strings"

// Normalization describes how a dialect folds unquoted identifiers.
type Normalization int

const (
	// NormNone preserves identifier case.
	NormNone Normalization = iota
	// NormUpper folds unquoted identifiers to uppercase (Snowflake).
	NormUpper
	// NormLower folds unquoted identifiers to lowercase.
	NormLower
)

// IdentifierConfig describes identifier quoting for a dialect.
type IdentifierConfig struct {
	Quote          string // opening quote character
	QuoteEnd       string // closing quote character
	Escape         string // escape sequence for QuoteEnd inside a quoted name
	BracketQuoting bool   // accept [name] quoting on input (T-SQL)
	Normalization  Normalization
}

// Dialect represents one SQL dialect's surface syntax configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// Row limiting
	SupportsTop   bool // SELECT TOP n (T-SQL)
	SupportsLimit bool // LIMIT n [OFFSET m]

	// SELECT ... INTO #tmp (T-SQL temp table creation)
	SupportsSelectInto bool

	reserved map[string]struct{}
}

// NormalizeName folds an identifier according to the dialect's rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUpper:
		return strings.ToUpper(name)
	case NormLower:
		return strings.ToLower(name)
	default:
		return name
	}
}

// IsReservedWord returns true if the word needs quoting when used as an
// identifier in this dialect.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reserved[strings.ToUpper(word)]
	return ok
}

// QuoteIdentifier quotes a name using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes a name only when required: reserved
// words and names containing characters outside [A-Za-z0-9_$].
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) || !isPlainIdent(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

func isPlainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var registry = make(map[string]*Dialect)

// Register adds a dialect to the process-wide registry. It is called
// from the dialect definition files' init functions.
func Register(d *Dialect) {
	registry[strings.ToLower(d.Name)] = d
}

// Get returns a registered dialect by name.
func Get(name string) (*Dialect, bool) {
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}
