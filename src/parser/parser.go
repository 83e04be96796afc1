package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"github.com/joetechbob/cypher-guard/src/ast"
	"github.com/joetechbob/cypher-guard/src/cgerr"
	cypherlexer "github.com/joetechbob/cypher-guard/src/lexer"
)

// defaultMaxExpressionDepth bounds expression recursion so a crafted or
// accidentally malformed query fails cleanly instead of exhausting the
// goroutine stack. 0 (via WithMaxExpressionDepth) disables the check.
const defaultMaxExpressionDepth = 200

// Parser turns Cypher-shaped query text into an *ast.Query.
type Parser struct {
	participle       *participle.Parser[gQuery]
	maxExpressionDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxExpressionDepth overrides the default expression nesting guard.
// A value of 0 disables the check entirely.
func WithMaxExpressionDepth(n int) Option {
	return func(p *Parser) { p.maxExpressionDepth = n }
}

// New builds a Parser, compiling the participle grammar once.
func New(opts ...Option) (*Parser, error) {
	pp, err := participle.Build[gQuery](
		participle.Lexer(cypherlexer.Cypher),
		participle.Elide(cypherlexer.Elided()...),
		participle.CaseInsensitive(cypherlexer.Keywords...),
		participle.UseLookahead(8),
	)
	if err != nil {
		return nil, fmt.Errorf("cypher-guard: build grammar: %w", err)
	}
	p := &Parser{participle: pp, maxExpressionDepth: defaultMaxExpressionDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse parses query text into an *ast.Query. Any failure - lexical or
// grammatical - comes back as a *cgerr.ParseError, per the pipeline's
// short-circuit-on-parse-failure contract: no later stage runs when this
// returns an error. Clause-order legality is a structural concern and is
// checked later, by src/validator, not here.
func (p *Parser) Parse(text string) (*ast.Query, error) {
	tree, err := p.participle.ParseString("", text)
	if err != nil {
		return nil, cgerr.NewParseError("could not parse query", err)
	}

	conv := &converter{maxDepth: p.maxExpressionDepth}
	query, err := conv.query(tree)
	if err != nil {
		return nil, cgerr.NewParseError("could not build query", err)
	}

	return query, nil
}
