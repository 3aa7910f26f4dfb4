package parser

import (
	"strings"

	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/token"
)

// Parser parses SQL statements for one dialect.
type Parser struct {
	lexer   *Lexer
	dialect *dialect.Dialect

	cur  token.Token
	peek token.Token

	// pendingParts holds identifier segments already consumed by
	// select-item star detection, picked up by the next primary parse.
	pendingParts []string
	pendingPos   token.Position
}

// New creates a Parser over the given input and dialect.
func New(input string, d *dialect.Dialect) *Parser {
	p := &Parser{
		lexer:   NewLexer(input, d),
		dialect: d,
	}
	// Prime cur and peek.
	p.next()
	p.next()
	return p
}

// Parse parses a single statement. The whole input must be consumed; a
// trailing semicolon is allowed.
func Parse(input string, d *dialect.Dialect) (Statement, error) {
	p := New(input, d)
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.SEMICOLON {
		p.next()
	}
	if p.cur.Type != token.EOF {
		return nil, p.errorf(p.cur.Pos, "unexpected %q after statement", p.cur.Literal)
	}
	return stmt, nil
}

// ParseStatement parses the next statement from the token stream.
func (p *Parser) ParseStatement() (Statement, error) {
	switch p.cur.Type {
	case token.SELECT, token.WITH, token.LPAREN:
		return p.parseSelectStmt()
	case token.CREATE:
		return p.parseCreateStmt()
	default:
		return nil, p.errorf(p.cur.Pos, "expected statement, got %q", p.cur.Literal)
	}
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// expect consumes the current token if it has the given type, or fails.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.cur.Type != t {
		return token.Token{}, p.errorf(p.cur.Pos, "expected %s, got %q", t, p.cur.Literal)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

// accept consumes the current token if it has the given type.
func (p *Parser) accept(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

// identName returns the current token's identifier text, accepting
// unreserved keywords in identifier position.
func (p *Parser) identName() (string, bool) {
	if p.cur.Type == token.IDENT {
		return p.cur.Literal, true
	}
	// Soft keywords double as identifiers.
	switch p.cur.Type {
	case token.FIRST, token.LAST, token.REPLACE, token.PERCENT, token.APPLY:
		return p.cur.Literal, true
	}
	return "", false
}

// expectIdent consumes an identifier and returns its text.
func (p *Parser) expectIdent() (token.Token, error) {
	if name, ok := p.identName(); ok {
		tok := p.cur
		tok.Literal = name
		p.next()
		return tok, nil
	}
	return token.Token{}, p.errorf(p.cur.Pos, "expected identifier, got %q", p.cur.Literal)
}

// keywordUpper returns the uppercase spelling of the current keyword.
func keywordUpper(tok token.Token) string {
	return strings.ToUpper(tok.Literal)
}
