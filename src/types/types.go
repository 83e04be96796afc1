// Package types implements the opt-in type checker's type system: the
// Neo4jType tag set, the compatibility blocklist, and the TypeCheckLevel
// mode switch (spec §4.7, §4.9).
package types

import "strings"

// TypeCheckLevel selects the type checker's behaviour.
type TypeCheckLevel int

const (
	// Off performs no type checking; Validate returns empty issue lists.
	Off TypeCheckLevel = iota
	// Warnings collects issues but never affects validity.
	Warnings
	// Strict collects issues and Error-severity issues make the query invalid.
	Strict
)

func (l TypeCheckLevel) String() string {
	switch l {
	case Off:
		return "off"
	case Warnings:
		return "warnings"
	case Strict:
		return "strict"
	default:
		return "off"
	}
}

// ParseTypeCheckLevel parses the options string form from spec §6,
// defaulting to Off for anything unrecognised.
func ParseTypeCheckLevel(s string) TypeCheckLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warnings":
		return Warnings
	case "strict":
		return Strict
	default:
		return Off
	}
}

// Neo4jType is the enumerated set of declared property types recognised
// by the type checker (spec §4.7).
type Neo4jType int

const (
	String Neo4jType = iota
	Integer
	Float
	Boolean
	Date
	DateTime
	LocalTime
	Time
	Duration
	Point
	Unknown
)

func (t Neo4jType) String() string {
	switch t {
	case String:
		return "String"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Boolean:
		return "Boolean"
	case Date:
		return "Date"
	case DateTime:
		return "DateTime"
	case LocalTime:
		return "LocalTime"
	case Time:
		return "Time"
	case Duration:
		return "Duration"
	case Point:
		return "Point"
	default:
		return "Unknown"
	}
}

// ParseNeo4jType parses a declared-type string from the schema, case
// insensitively, mapping anything unrecognised to Unknown (spec §4.7).
func ParseNeo4jType(s string) Neo4jType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STRING":
		return String
	case "INTEGER", "INT", "LONG":
		return Integer
	case "FLOAT", "DOUBLE":
		return Float
	case "BOOLEAN", "BOOL":
		return Boolean
	case "DATE":
		return Date
	case "DATETIME", "ZONEDDATETIME":
		return DateTime
	case "LOCALTIME":
		return LocalTime
	case "TIME":
		return Time
	case "DURATION":
		return Duration
	case "POINT":
		return Point
	default:
		return Unknown
	}
}

// MismatchSeverity is the severity of a detected type mismatch.
type MismatchSeverity int

const (
	SeverityWarning MismatchSeverity = iota
	SeverityError
)

func (s MismatchSeverity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one type-mismatch finding (spec §4.7/§4.8).
type Issue struct {
	Severity   MismatchSeverity
	Message    string
	Suggestion string // "" if none
}

// CheckCompatibility applies the blocklist compatibility relation from
// spec §4.7. It returns (severity, true) when the pairing is disallowed,
// or (_, false) when the pairing is allowed (including any pairing
// involving Unknown, per the absorption rule).
func CheckCompatibility(lhs, rhs Neo4jType) (MismatchSeverity, bool) {
	if lhs == Unknown || rhs == Unknown {
		return 0, false
	}
	// The relation is symmetric: normalise so lhs/rhs order doesn't matter.
	a, b := lhs, rhs
	if a > b {
		a, b = b, a
	}
	switch {
	case a == String && (b == Date || b == DateTime || b == Boolean):
		return SeverityError, true
	case a == String && (b == Integer || b == Float):
		return SeverityWarning, true
	default:
		return 0, false
	}
}

// ConcatOperandKind classifies an operand for '+'/'||' resolution.
type ConcatOperandKind int

const (
	OperandUnknown ConcatOperandKind = iota
	OperandString
	OperandNumeric
	OperandList
)

// ResolveConcatResult is the inferred type of a '+'/'||' expression.
type ResolveConcatResult int

const (
	ConcatResultUnknown ResolveConcatResult = iota
	ConcatResultString
	ConcatResultNumeric
	ConcatResultList
)

// ResolveConcatType implements spec §4.9's operator semantics for '+' and
// '||': both String -> String; both numeric -> numeric; either Unknown ->
// Unknown; otherwise, if either side is a list -> List.
func ResolveConcatType(left, right ConcatOperandKind) ResolveConcatResult {
	if left == OperandUnknown || right == OperandUnknown {
		return ConcatResultUnknown
	}
	if left == OperandString && right == OperandString {
		return ConcatResultString
	}
	if left == OperandNumeric && right == OperandNumeric {
		return ConcatResultNumeric
	}
	if left == OperandList || right == OperandList {
		return ConcatResultList
	}
	return ConcatResultUnknown
}
