// FILE: lixenwraith/config/hocon/token.go
package hocon

import "strings"

// TokenType identifies a lexical class produced by the tokenizer.
type TokenType int

const (
	TokenUnknown TokenType = iota
	TokenEOF
	TokenComment
	TokenSpace
	TokenInclude
	TokenKey
	TokenAssign
	TokenBeginScope
	TokenEndScope
	TokenString
	TokenNumeric
	TokenDecimal
	TokenDouble
	TokenBoolean
	TokenSubstitution
	TokenSafeSubstitution
	TokenBeginArray
	TokenEndArray
	TokenArraySeparator
)

var tokenNames = map[TokenType]string{
	TokenUnknown:          "Unknown",
	TokenEOF:              "EOF",
	TokenComment:          "Comment",
	TokenSpace:            "Space",
	TokenInclude:          "Include",
	TokenKey:              "Key",
	TokenAssign:           "Assign",
	TokenBeginScope:       "BeginScope",
	TokenEndScope:         "EndScope",
	TokenString:           "String",
	TokenNumeric:          "Numeric",
	TokenDecimal:          "Decimal",
	TokenDouble:           "Double",
	TokenBoolean:          "Boolean",
	TokenSubstitution:     "Substitution",
	TokenSafeSubstitution: "SafeSubstitution",
	TokenBeginArray:       "BeginArray",
	TokenEndArray:         "EndArray",
	TokenArraySeparator:   "ArraySeparator",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TokenSet is a bit set of token types, used to express which tokens a caller
// requests or wants skipped.
type TokenSet uint32

// Tokens builds a set from the given types.
func Tokens(types ...TokenType) TokenSet {
	var s TokenSet
	for _, t := range types {
		s |= 1 << uint(t)
	}
	return s
}

// Has reports whether t is a member of the set.
func (s TokenSet) Has(t TokenType) bool {
	return s&(1<<uint(t)) != 0
}

func (s TokenSet) String() string {
	var names []string
	for t := TokenUnknown; t <= TokenArraySeparator; t++ {
		if s.Has(t) {
			names = append(names, t.String())
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Token is a single lexical match. Value holds the captured payload: the inner
// text for quoted strings, substitutions and includes, the raw text otherwise.
type Token struct {
	Type  TokenType
	Value string
}

// Frequently used sets.
var (
	ignorable = Tokens(TokenComment, TokenSpace)

	// Object members may be separated by commas as well as line breaks.
	memberIgnorable = ignorable | Tokens(TokenArraySeparator)

	keyOrInclude = Tokens(TokenInclude, TokenKey)

	assignOrScope = Tokens(TokenBeginScope, TokenAssign)

	scalarTokens = Tokens(
		TokenString, TokenNumeric, TokenDecimal, TokenDouble,
		TokenBoolean, TokenSubstitution, TokenSafeSubstitution,
	)

	valueTokens = scalarTokens | Tokens(TokenBeginArray)

	arrayTokens = scalarTokens | Tokens(TokenArraySeparator, TokenEndArray)
)
