package validator

import (
	"fmt"

	"github.com/joetechbob/cypher-guard/src/extractor"
	"github.com/joetechbob/cypher-guard/src/schema"
	"github.com/joetechbob/cypher-guard/src/types"
)

// checkTypes implements the opt-in type checker of spec §4.7: for every
// PropertyComparison, resolve the declared property type and the
// compared-to type, and apply the blocklist compatibility relation.
// Off mode is not handled here; the caller skips this entirely per
// spec §8 invariant 1.
func checkTypes(el *extractor.QueryElements, s *schema.Schema) []types.Issue {
	var issues []types.Issue
	for _, cmp := range el.PropertyComparisons {
		declared, ok := declaredType(el, s, cmp.Variable, cmp.Property)
		if !ok {
			continue
		}
		severity, mismatched := types.CheckCompatibility(declared, cmp.ValueTypeHint)
		if !mismatched {
			continue
		}
		issues = append(issues, types.Issue{
			Severity:   severity,
			Message:    mismatchMessage(cmp, declared),
			Suggestion: mismatchSuggestion(cmp, declared),
		})
	}
	return issues
}

func declaredType(el *extractor.QueryElements, s *schema.Schema, variable, property string) (types.Neo4jType, bool) {
	if label, ok := el.VariableNodeBindings[variable]; ok {
		if prop, has := s.NodeProperty(label, property); has {
			return types.ParseNeo4jType(prop.Type), true
		}
		return 0, false
	}
	if relType, ok := el.VariableRelationshipBindings[variable]; ok {
		if prop, has := s.RelationshipProperty(relType, property); has {
			return types.ParseNeo4jType(prop.Type), true
		}
	}
	return 0, false
}

func mismatchMessage(cmp extractor.PropertyComparison, declared types.Neo4jType) string {
	return fmt.Sprintf(
		"%s.%s is declared %s but compared to %s (%s %s ...)",
		cmp.Variable, cmp.Property, declared, cmp.ValueTypeHint, cmp.Variable+"."+cmp.Property, cmp.Operator,
	)
}

// mismatchSuggestion supplies the actionable fix spec §4.7 names for the
// canonical String-vs-Date case; every other pairing has none.
func mismatchSuggestion(cmp extractor.PropertyComparison, declared types.Neo4jType) string {
	if declared == types.String && cmp.ValueTypeHint == types.Date {
		return fmt.Sprintf("wrap %s.%s in date(...), or compare against a string literal instead", cmp.Variable, cmp.Property)
	}
	if declared == types.Date && cmp.ValueTypeHint == types.String {
		return "use a date('YYYY-MM-DD') literal on the string side instead of a bare string"
	}
	return ""
}
