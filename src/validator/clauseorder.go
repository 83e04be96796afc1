package validator

import (
	"github.com/joetechbob/cypher-guard/src/ast"
	"github.com/joetechbob/cypher-guard/src/cgerr"
)

// clauseState is the clause-order state machine's current position:
// "what may legally come next" (spec §4.4).
type clauseState int

const (
	stateStart      clauseState = iota // nothing parsed yet
	stateOpen                          // after a Reading or With clause
	stateAfterWhere                    // after a Where clause
	stateAfterWrite                    // after a Writing clause
)

// ClauseOrderMachine is the explicit small automaton spec §4.4
// describes, run once per query over its flat clause list. It
// accumulates one error per clause landing on an illegal transition
// rather than stopping at the first (spec §7 "Semantic errors
// accumulate").
type ClauseOrderMachine struct {
	state      clauseState
	seenReturn bool
}

// Check feeds clauses through the machine in order and returns every
// illegal transition found.
func (m *ClauseOrderMachine) Check(clauses []ast.Clause) []*cgerr.ValidationError {
	if len(clauses) == 0 {
		return []*cgerr.ValidationError{cgerr.ClauseOrder("", 0)}
	}
	var errs []*cgerr.ValidationError
	for i, clause := range clauses {
		kind := clauseKind(clause)
		if m.seenReturn {
			errs = append(errs, cgerr.ClauseOrder(kind.String(), i))
			continue
		}
		if !m.allows(kind) {
			errs = append(errs, cgerr.ClauseOrder(kind.String(), i))
			continue
		}
		m.advance(kind)
	}
	return errs
}

// allows reports whether kind may legally follow the machine's current
// state, per the transition table:
//
//   - Start -> Match | OptionalMatch | Create | Merge | With | Unwind | Call
//   - after Reading|With -> anything
//   - after Where -> anything except another Where
//   - after Writing -> anything except Where (WHERE ties only to the
//     reading clause immediately before it, never to a write)
func (m *ClauseOrderMachine) allows(kind ast.ClauseKind) bool {
	switch m.state {
	case stateStart:
		switch kind {
		case ast.ClauseMatch, ast.ClauseOptionalMatch, ast.ClauseCreate, ast.ClauseMerge,
			ast.ClauseWith, ast.ClauseUnwind, ast.ClauseCall:
			return true
		default:
			return false
		}
	case stateAfterWhere, stateAfterWrite:
		return kind != ast.ClauseWhere
	default: // stateOpen
		return true
	}
}

func (m *ClauseOrderMachine) advance(kind ast.ClauseKind) {
	switch kind {
	case ast.ClauseReturn:
		m.seenReturn = true
	case ast.ClauseCreate, ast.ClauseMerge, ast.ClauseStandaloneSet,
		ast.ClauseDelete, ast.ClauseDetachDelete, ast.ClauseRemove:
		m.state = stateAfterWrite
	case ast.ClauseWhere:
		m.state = stateAfterWhere
	default: // Reading (Match/OptionalMatch/Unwind/Call), With
		m.state = stateOpen
	}
}

// checkClauseOrder runs a fresh ClauseOrderMachine over clauses.
func checkClauseOrder(clauses []ast.Clause) []*cgerr.ValidationError {
	m := &ClauseOrderMachine{}
	return m.Check(clauses)
}

func clauseKind(c ast.Clause) ast.ClauseKind {
	if m, ok := c.(*ast.MatchClause); ok {
		return m.OptionalKind()
	}
	return c.ClauseKind()
}
