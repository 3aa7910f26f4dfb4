// Package format renders parsed statements back to SQL text for one
// target dialect.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

const indentSize = 2

// CoverageError reports an AST node the target dialect cannot express.
// Reaching the printer with such a node means a translation rule is
// missing, so the whole run is treated as failed rather than emitting
// wrong SQL.
type CoverageError struct {
	Construct string
	Dialect   string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("cannot render %s for dialect %s", e.Construct, e.Dialect)
}

// Format renders a statement as SQL for the given dialect. The output
// ends with a single newline.
func Format(stmt parser.Statement, d *dialect.Dialect) (string, error) {
	p := newPrinter(d)
	if err := p.formatStatement(stmt); err != nil {
		return "", err
	}
	return p.String(), nil
}

// Printer holds formatting state: output buffer, indent depth, and the
// target dialect for identifier quoting.
type Printer struct {
	dialect     *dialect.Dialect
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter(d *dialect.Dialect) *Printer {
	return &Printer{
		dialect:     d,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) keyword(s string) {
	p.write(strings.ToUpper(s))
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// ident prints an identifier, quoting it when the dialect requires.
func (p *Printer) ident(name string) {
	p.write(p.dialect.QuoteIdentifierIfNeeded(name))
}

func (p *Printer) coverage(construct string) error {
	return &CoverageError{Construct: construct, Dialect: p.dialect.Name}
}
