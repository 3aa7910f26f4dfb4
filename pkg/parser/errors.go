package parser

import (
	"fmt"

	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// ParseError reports a syntax error with its position in the source.
type ParseError struct {
	Pos     token.Position
	Message string

	// Statement is the source text of the statement being parsed, set
	// by callers that parse pre-split scripts.
	Statement string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
