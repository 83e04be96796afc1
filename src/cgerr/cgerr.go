// Package cgerr is the closed error taxonomy of spec §7 and §4.8. Every
// structural diagnostic the validator raises is one of these tagged
// types; parse failures use ParseError and short-circuit the pipeline.
package cgerr

import "fmt"

// Kind is a closed enum over the structural error taxonomy.
type Kind int

const (
	KindUndefinedLabel Kind = iota
	KindUndefinedRelationshipType
	KindUndefinedProperty
	KindUndefinedVariable
	KindUndefinedPathVariable
	KindInvalidRelationshipConnection
	KindClauseOrder
)

func (k Kind) String() string {
	switch k {
	case KindUndefinedLabel:
		return "UndefinedLabel"
	case KindUndefinedRelationshipType:
		return "UndefinedRelationshipType"
	case KindUndefinedProperty:
		return "UndefinedProperty"
	case KindUndefinedVariable:
		return "UndefinedVariable"
	case KindUndefinedPathVariable:
		return "UndefinedPathVariable"
	case KindInvalidRelationshipConnection:
		return "InvalidRelationshipConnection"
	case KindClauseOrder:
		return "ClauseOrderError"
	default:
		return "Unknown"
	}
}

// ValidationError is a single structural diagnostic. It carries the
// offending identifier(s) so downstream tests and tooling can pattern
// match on stable, name-mentioning messages (spec §7).
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UndefinedLabel reports a node label absent from the schema.
func UndefinedLabel(label string) *ValidationError {
	return &ValidationError{
		Kind:    KindUndefinedLabel,
		Message: fmt.Sprintf("undefined label %q: not declared in the schema", label),
	}
}

// UndefinedRelationshipType reports a relationship type absent from the schema.
func UndefinedRelationshipType(relType string) *ValidationError {
	return &ValidationError{
		Kind:    KindUndefinedRelationshipType,
		Message: fmt.Sprintf("undefined relationship type %q: not declared in the schema", relType),
	}
}

// UndefinedProperty reports a property access against a known label or
// relationship type that does not declare that property.
func UndefinedProperty(ownerKind, owner, property string) *ValidationError {
	return &ValidationError{
		Kind:    KindUndefinedProperty,
		Message: fmt.Sprintf("undefined property %q on %s %q", property, ownerKind, owner),
	}
}

// UndefinedVariable reports a reference to a variable never bound by any
// pattern, WITH projection, UNWIND, or path binding.
func UndefinedVariable(variable string) *ValidationError {
	return &ValidationError{
		Kind:    KindUndefinedVariable,
		Message: fmt.Sprintf("undefined variable %q", variable),
	}
}

// UndefinedPathVariable reports a path-function argument that is not a
// bound path variable.
func UndefinedPathVariable(variable string) *ValidationError {
	return &ValidationError{
		Kind:    KindUndefinedPathVariable,
		Message: fmt.Sprintf("undefined path variable %q: not bound by any path pattern", variable),
	}
}

// InvalidRelationshipConnection reports a (start, type, end) triple not
// permitted by the schema's relationship set.
func InvalidRelationshipConnection(start, relType, end string) *ValidationError {
	return &ValidationError{
		Kind: KindInvalidRelationshipConnection,
		Message: fmt.Sprintf(
			"invalid relationship connection (%s)-[:%s]->(%s): not declared in the schema",
			start, relType, end,
		),
	}
}

// ClauseOrder reports a clause appearing where the state machine forbids it.
func ClauseOrder(keyword string, position int) *ValidationError {
	return &ValidationError{
		Kind:    KindClauseOrder,
		Message: fmt.Sprintf("clause %q not permitted here (position %d)", keyword, position),
	}
}

// ParseError signals that the query text does not conform to the
// supported grammar (spec §7). It is the sole error propagated to the
// caller when parsing fails; no later stage runs.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// NewParseError wraps a lower-level parse failure.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{Message: message, Cause: cause}
}
