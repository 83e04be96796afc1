package validator

import (
	"github.com/joetechbob/cypher-guard/src/cgerr"
	"github.com/joetechbob/cypher-guard/src/extractor"
	"github.com/joetechbob/cypher-guard/src/schema"
)

// checkStructural implements the five checks of spec §4.6, in order,
// accumulating every failure rather than stopping at the first (spec
// §7 "Semantic errors accumulate").
func checkStructural(el *extractor.QueryElements, s *schema.Schema) []*cgerr.ValidationError {
	var errs []*cgerr.ValidationError

	for _, label := range el.VariableNodeBindings {
		if !s.HasLabel(label) {
			errs = append(errs, cgerr.UndefinedLabel(label))
		}
	}

	for _, relType := range el.VariableRelationshipBindings {
		if !s.HasRelationshipType(relType) {
			errs = append(errs, cgerr.UndefinedRelationshipType(relType))
		}
	}

	for _, use := range el.RelationshipUses {
		if use.StartLabel == "*" || use.EndLabel == "*" || use.Type == "*" {
			continue
		}
		ok := s.HasRelationshipConnection(use.StartLabel, use.Type, use.EndLabel)
		if !ok && use.Undirected {
			// An undirected pattern ("--") declares no start/end, so either
			// schema ordering of the same two labels satisfies it.
			ok = s.HasRelationshipConnection(use.EndLabel, use.Type, use.StartLabel)
		}
		if !ok {
			errs = append(errs, cgerr.InvalidRelationshipConnection(use.StartLabel, use.Type, use.EndLabel))
		}
	}

	for _, access := range el.PropertyAccesses {
		errs = append(errs, checkPropertyAccess(el, s, access)...)
	}

	for _, name := range el.PathFunctionArgs {
		if !el.PathVariables[name] {
			errs = append(errs, cgerr.UndefinedPathVariable(name))
		}
	}

	return errs
}

// checkPropertyAccess resolves the accessed variable's label or
// relationship type and checks the property against the schema (spec
// §4.6 item 4). A variable with no pattern/projection binding at all is
// UndefinedVariable. Only property accesses on variable references are
// recorded by the extractor, so function names never reach this check.
func checkPropertyAccess(el *extractor.QueryElements, s *schema.Schema, access extractor.PropertyAccess) []*cgerr.ValidationError {
	if label, ok := el.VariableNodeBindings[access.Variable]; ok {
		if _, has := s.NodeProperty(label, access.Property); !has {
			return []*cgerr.ValidationError{cgerr.UndefinedProperty("label", label, access.Property)}
		}
		return nil
	}
	if relType, ok := el.VariableRelationshipBindings[access.Variable]; ok {
		if _, has := s.RelationshipProperty(relType, access.Property); !has {
			return []*cgerr.ValidationError{cgerr.UndefinedProperty("relationship type", relType, access.Property)}
		}
		return nil
	}
	if !el.DefinedNames[access.Variable] {
		return []*cgerr.ValidationError{cgerr.UndefinedVariable(access.Variable)}
	}
	// The variable is defined (e.g. via WITH/UNWIND/YIELD) but carries no
	// label or relationship type to check the property against; nothing
	// more can be said about it structurally.
	return nil
}
