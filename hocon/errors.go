// FILE: lixenwraith/config/hocon/errors.go
package hocon

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrAlreadyIncluded is returned when an include would re-enter a source
	// already read during the same parse.
	ErrAlreadyIncluded = errors.New("already included")
	// ErrSubstitutionNotFound is returned when a hard substitution has no target.
	ErrSubstitutionNotFound = errors.New("substitution not found")
	// ErrInvalidValue is returned when a literal cannot be represented, such as
	// an integer outside the int64 range.
	ErrInvalidValue = errors.New("invalid value")
)

// Expectation names the token class the reader required.
type Expectation int

const (
	ExpectAssignOrScope Expectation = iota
	ExpectValue
	ExpectEndScopeOrProperty
	ExpectArrayElement
	ExpectProperty
)

func (e Expectation) String() string {
	switch e {
	case ExpectAssignOrScope:
		return "assign or begin scope"
	case ExpectValue:
		return "array/string/numeric/bool/substitution"
	case ExpectEndScopeOrProperty:
		return "end scope '}' or a property"
	case ExpectArrayElement:
		return "array value, ',' or ']'"
	case ExpectProperty:
		return "property or include"
	default:
		return "token"
	}
}

// SyntaxError reports that an expected token class was not found.
type SyntaxError struct {
	Expected Expectation
	Found    TokenType
	Offset   int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expected %s, but: %s, offset: %d", e.Expected, e.Found, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
