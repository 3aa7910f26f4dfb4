package parser

import "strings"

// RawStatement is one statement's source text plus the line it starts
// on within the original file.
type RawStatement struct {
	Text string
	Line int // 1-based line of the first non-blank character
}

// SplitStatements splits a script into individual statements. Statements
// end at a top-level semicolon or at a GO batch separator on a line of
// its own. String literals, bracket-quoted identifiers, and comments are
// skipped so separators inside them do not split.
func SplitStatements(script string) []RawStatement {
	var stmts []RawStatement
	var buf strings.Builder

	line := 1
	startLine := 1
	started := false

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			stmts = append(stmts, RawStatement{Text: text, Line: startLine})
		}
		buf.Reset()
		started = false
	}

	i := 0
	for i < len(script) {
		ch := script[i]

		if ch == '\n' {
			line++
		}

		if !started && !isSpaceByte(ch) {
			started = true
			startLine = line
		}

		switch {
		case ch == '\'':
			j := skipQuoted(script, i, '\'')
			buf.WriteString(script[i:j])
			line += strings.Count(script[i:j], "\n")
			i = j
			continue
		case ch == '[':
			j := skipQuoted(script, i, ']')
			buf.WriteString(script[i:j])
			line += strings.Count(script[i:j], "\n")
			i = j
			continue
		case ch == '"':
			j := skipQuoted(script, i, '"')
			buf.WriteString(script[i:j])
			line += strings.Count(script[i:j], "\n")
			i = j
			continue
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			j := strings.IndexByte(script[i:], '\n')
			if j < 0 {
				j = len(script)
			} else {
				j += i
			}
			buf.WriteString(script[i:j])
			i = j
			continue
		case ch == '/' && i+1 < len(script) && script[i+1] == '*':
			j := strings.Index(script[i+2:], "*/")
			if j < 0 {
				j = len(script)
			} else {
				j += i + 4
			}
			buf.WriteString(script[i:j])
			line += strings.Count(script[i:j], "\n")
			i = j
			continue
		case ch == ';':
			flush()
			i++
			continue
		}

		// GO batch separator: the word alone on its line.
		if (ch == 'g' || ch == 'G') && atLineStart(script, i) {
			if n, ok := matchGoLine(script, i); ok {
				flush()
				line += strings.Count(script[i:n], "\n")
				i = n
				continue
			}
		}

		buf.WriteByte(ch)
		i++
	}
	flush()

	return stmts
}

// skipQuoted returns the index just past a quoted region starting at i,
// honoring doubled-closer escapes.
func skipQuoted(s string, i int, close byte) int {
	j := i + 1
	for j < len(s) {
		if s[j] == close {
			if j+1 < len(s) && s[j+1] == close {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

// atLineStart reports whether only spaces and tabs precede position i on
// its line.
func atLineStart(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch s[j] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// matchGoLine matches GO (optionally with a repeat count, which is
// ignored) followed only by whitespace up to end of line. Returns the
// index past the line terminator.
func matchGoLine(s string, i int) (int, bool) {
	j := i + 2
	if j > len(s) {
		return 0, false
	}
	if !strings.EqualFold(s[i:j], "go") {
		return 0, false
	}
	if j < len(s) && (isIdentByte(s[j]) || s[j] == '#') {
		return 0, false
	}
	for j < len(s) && s[j] != '\n' {
		switch {
		case s[j] == ' ' || s[j] == '\t' || s[j] == '\r':
		case s[j] >= '0' && s[j] <= '9':
		default:
			return 0, false
		}
		j++
	}
	if j < len(s) {
		j++ // consume the newline
	}
	return j, true
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

func isSpaceByte(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
