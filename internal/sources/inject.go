package sources

import (
	"fmt"
	"sort"
	"strings"
)

// Replacement maps one table spelling in converted SQL to its dbt
// macro.
type Replacement struct {
	// Match is the table's spelling as the printer rendered it.
	Match string
	// Macro is the replacement text, e.g. {{ ref('orders') }}.
	Macro string
}

// RefMacro renders a {{ ref('model') }} macro.
func RefMacro(model string) string {
	return fmt.Sprintf("{{ ref('%s') }}", model)
}

// SourceMacro renders a {{ source('group', 'table') }} macro.
func SourceMacro(group, table string) string {
	return fmt.Sprintf("{{ source('%s', '%s') }}", group, table)
}

// Inject substitutes table spellings with their macros. Longer matches
// apply first so a qualified spelling wins over a bare one that happens
// to be its suffix. Matching is case-insensitive on whole dotted-name
// boundaries.
func Inject(sql string, repls []Replacement) string {
	sorted := make([]Replacement, len(repls))
	copy(sorted, repls)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Match) > len(sorted[j].Match)
	})

	for _, r := range sorted {
		if r.Match == "" {
			continue
		}
		sql = replaceName(sql, r.Match, r.Macro)
	}
	return sql
}

// replaceName rewrites every whole-name occurrence of match with macro.
// Boundaries are checked without being consumed, so occurrences
// separated by a single comma or space are all seen. The scan walks the
// input text only; text inserted by this call is never rescanned, and
// the quote boundary keeps later passes out of earlier macro arguments.
func replaceName(sql, match, macro string) string {
	lower := strings.ToLower(sql)
	needle := strings.ToLower(match)

	var b strings.Builder
	last := 0
	for i := 0; i <= len(lower)-len(needle); {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(needle)
		if !nameBoundary(sql, start-1) || !nameBoundary(sql, end) {
			i = start + 1
			continue
		}
		b.WriteString(sql[last:start])
		b.WriteString(macro)
		last = end
		i = end
	}
	if last == 0 {
		return sql
	}
	b.WriteString(sql[last:])
	return b.String()
}

// nameBoundary reports whether position i can delimit a whole name:
// either end of the input, or a byte that cannot continue an
// identifier, extend a dotted name, or open a quote. The quote rule
// keeps bare names from matching inside string literals.
func nameBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	switch c := s[i]; {
	case c == '_' || c == '$' || c == '.' || c == '\'' || c == '"':
		return false
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return false
	}
	return true
}
