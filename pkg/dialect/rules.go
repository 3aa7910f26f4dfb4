package dialect

// FunctionMapping describes how one source-dialect function translates
// to the target dialect.
type FunctionMapping struct {
	// Target is the function name in the target dialect. Empty means
	// the name passes through unchanged.
	Target string

	// ZeroArg rewrites a no-argument call to a bare keyword expression,
	// e.g. GETDATE() to CURRENT_TIMESTAMP.
	ZeroArg bool

	// ConvertToCast rewrites CONVERT(type, expr [, style]) into
	// CAST(expr AS type), dropping the style argument.
	ConvertToCast bool

	// UpperFirstArg folds the first argument to uppercase when it is a
	// bare identifier, used for date part names in DATEADD and friends.
	UpperFirstArg bool
}

// Ruleset holds the translation rules applied between a source and a
// target dialect. It is pure data; pkg/transform interprets it.
type Ruleset struct {
	Source *Dialect
	Target *Dialect

	// Functions maps uppercase source function names to mappings.
	Functions map[string]FunctionMapping

	// Unsupported lists uppercase function names with no target
	// equivalent. Calls pass through unchanged and produce a warning.
	Unsupported map[string]struct{}
}

// FunctionRule looks up the mapping for a function name.
func (r *Ruleset) FunctionRule(name string) (FunctionMapping, bool) {
	m, ok := r.Functions[upperASCII(name)]
	return m, ok
}

// IsUnsupported reports whether the named function has no target
// equivalent.
func (r *Ruleset) IsUnsupported(name string) bool {
	_, ok := r.Unsupported[upperASCII(name)]
	return ok
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// TSQLToSnowflake is the translation ruleset for conversion runs.
var TSQLToSnowflake = &Ruleset{
	Source: TSQL,
	Target: Snowflake,
	Functions: map[string]FunctionMapping{
		"GETDATE":     {Target: "CURRENT_TIMESTAMP", ZeroArg: true},
		"SYSDATETIME": {Target: "CURRENT_TIMESTAMP", ZeroArg: true},
		"GETUTCDATE":  {Target: "CURRENT_TIMESTAMP", ZeroArg: true},
		"ISNULL":      {Target: "COALESCE"},
		"CONVERT":     {ConvertToCast: true},
		"LEN":         {Target: "LENGTH"},
		"IIF":         {Target: "IFF"},
		"NEWID":       {Target: "UUID_STRING"},
		"DATEPART":    {Target: "DATE_PART", UpperFirstArg: true},
		"REPLICATE":   {Target: "REPEAT"},
		"CHARINDEX":   {Target: "POSITION"},
		"DATEADD":     {UpperFirstArg: true},
		"DATEDIFF":    {UpperFirstArg: true},
	},
	// DATENAME has no direct equivalent: DATE_PART returns a number
	// where DATENAME returns a name, so it passes through with a
	// warning instead of silently changing meaning.
	Unsupported: map[string]struct{}{
		"DATENAME":    {},
		"OBJECT_ID":   {},
		"PATINDEX":    {},
		"QUOTENAME":   {},
		"SUSER_SNAME": {},
		"HOST_NAME":   {},
		"APP_NAME":    {},
	},
}
