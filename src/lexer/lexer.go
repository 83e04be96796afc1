// Package lexer defines the token rules shared by src/parser's grammar
// (spec §4.1). It follows the same lexer-construction idiom the teacher
// repo uses (participle/v2's lexer.SimpleRule table), extended to the
// full token set the grammar needs: backtick identifiers, both string
// quote styles, integer vs. float literals, $parameters, line/block
// comments, and multi-character operators ordered ahead of their
// single-character prefixes so RE2's leftmost-first alternation picks
// the longer match (spec §4.1: "<=, >=, <>, =~, ||, .." must be
// recognised before their single-character prefixes).
package lexer

import "github.com/alecthomas/participle/v2/lexer"

// Token names, exported so src/parser's grammar tags can reference them
// (e.g. `@Ident`, `@String`).
const (
	Comment    = "Comment"
	Whitespace = "Whitespace"
	String     = "String"
	Float      = "Float"
	Int        = "Int"
	Param      = "Param"
	Ident      = "Ident"
	Op         = "Op"
)

// Keywords is the reserved-word set. Each is lexed as its own token type
// (matched ahead of the generic Ident rule below) rather than a plain
// Ident whose text happens to equal a keyword. Without this, a bare
// `@Ident` capture used for variable names elsewhere in the grammar would
// just as happily swallow a clause keyword like WHEN or END, since both
// would otherwise be indistinguishable Ident tokens. Grammar tags refer
// to these by their upper-case text (e.g. `"MATCH"`), and participle
// compares such a literal with the token's text, so src/parser enables
// participle.CaseInsensitive for these token types: "match" and
// "shortestPath" then match `"MATCH"` and `"SHORTESTPATH"`.
var Keywords = []string{
	"MATCH", "OPTIONAL", "WHERE", "CREATE", "MERGE", "ON", "SET", "DELETE",
	"DETACH", "REMOVE", "WITH", "UNWIND", "IN", "CALL", "YIELD", "RETURN",
	"ORDER", "BY", "SKIP", "LIMIT", "DISTINCT", "AS", "AND", "OR", "XOR",
	"NOT", "IS", "NULL", "STARTS", "ENDS", "CONTAINS", "CASE", "WHEN",
	"THEN", "ELSE", "END", "TRUE", "FALSE", "SHORTESTPATH", "ALLSHORTESTPATHS",
	"DESC", "ASC", "DESCENDING", "ASCENDING",
}

func keywordRules() []lexer.SimpleRule {
	// SHORTESTPATH/ALLSHORTESTPATHS are camel-cased in real Cypher source
	// (shortestPath, allShortestPaths); the token names stay upper-case,
	// only the matched text differs.
	text := map[string]string{
		"SHORTESTPATH":     "shortestPath",
		"ALLSHORTESTPATHS": "allShortestPaths",
	}
	rules := make([]lexer.SimpleRule, len(Keywords))
	for i, kw := range Keywords {
		word := kw
		if t, ok := text[kw]; ok {
			word = t
		}
		rules[i] = lexer.SimpleRule{Name: kw, Pattern: `(?i)\b` + word + `\b`}
	}
	return rules
}

// Cypher is the shared lexer used to build the participle parser.
var Cypher = lexer.MustSimple(append([]lexer.SimpleRule{
	{Name: Comment, Pattern: `//[^\n]*|/\*[\s\S]*?\*/`},
	{Name: Whitespace, Pattern: `[ \t\r\n]+`},
	{Name: String, Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
	{Name: Float, Pattern: `\d+\.\d+([eE][+-]?\d+)?|\d+[eE][+-]?\d+`},
	{Name: Int, Pattern: `\d+`},
	{Name: Param, Pattern: `\$[a-zA-Z_][a-zA-Z0-9_]*`},
},
	append(keywordRules(),
		lexer.SimpleRule{Name: Ident, Pattern: "`[^`]*`|[a-zA-Z_][a-zA-Z0-9_]*"},
		// Longest-alternative-first: RE2 alternation is leftmost-first, not
		// leftmost-longest, so every multi-character operator must precede
		// the single-character class it is a prefix of. Relationship arrows
		// ("->", "<-", "--") are deliberately NOT lexed as single tokens:
		// the grammar recognises them as sequences of the single-character
		// "-", "<", ">" tokens, so "<" stays available as a bare less-than
		// comparison (e.g. "a.x < -5") without colliding with the arrow form.
		lexer.SimpleRule{Name: Op, Pattern: `<=|>=|<>|=~|\|\||\.\.|[-+*/%^=<>.,:()\[\]{}|]`},
	)...,
))

// Elided returns the token names skipped around every grammar token.
func Elided() []string {
	return []string{Comment, Whitespace}
}
