package userstore

import (
	"errors"
)

// Expression is an opaque boolean expression over user properties (or over
// the fields of an event collection when used inside an EventFilter).
// The store does not interpret expressions itself; it hands them to an
// ExpressionFormatter which turns them into predicate text.
type Expression interface {
	expression()
}

// Raw is an Expression that formats to its own text, unchanged.
// It is the escape hatch for callers that already hold predicate text
// produced by an external expression compiler.
type Raw string

func (Raw) expression() {}

// ExpressionFormatter turns an Expression into predicate text for the
// backend's query language. Implementations are expected to be total over
// the expression grammar they accept and must return an error otherwise.
type ExpressionFormatter interface {
	Format(expr Expression) (string, error)
}

// ExpressionFormatterFunc adapts a plain function to the ExpressionFormatter interface.
type ExpressionFormatterFunc func(expr Expression) (string, error)

// Format calls f.
func (f ExpressionFormatterFunc) Format(expr Expression) (string, error) {
	return f(expr)
}

// FormatRawExpression is the default formatter: it handles Raw expressions
// and rejects everything else.
func FormatRawExpression(expr Expression) (string, error) {
	raw, ok := expr.(Raw)
	if !ok {
		return "", errors.Join(ErrUnsupportedExpression, errors.New("default formatter only handles userstore.Raw"))
	}

	return string(raw), nil
}
