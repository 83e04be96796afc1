package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joetechbob/cypher-guard/src/ast"
	"github.com/joetechbob/cypher-guard/src/parser"
	"github.com/joetechbob/cypher-guard/src/types"
)

func extract(t *testing.T, text string) *QueryElements {
	t.Helper()
	p, err := parser.New()
	require.NoError(t, err)
	q, err := p.Parse(text)
	require.NoError(t, err)
	return Extract(q)
}

func TestExtract_NodeBindingFirstLabelWins(t *testing.T) {
	el := extract(t, `MATCH (n:Person) MATCH (n:Company) RETURN n`)
	require.Equal(t, "Person", el.VariableNodeBindings["n"])
}

func TestExtract_UnlabeledReuseDoesNotShadow(t *testing.T) {
	el := extract(t, `MATCH (n:Person) MATCH (n) RETURN n`)
	require.Equal(t, "Person", el.VariableNodeBindings["n"])
}

func TestExtract_PropertyAccess(t *testing.T) {
	el := extract(t, `MATCH (n:Person) RETURN n.name, n.age`)
	require.Contains(t, el.PropertyAccesses, PropertyAccess{Variable: "n", Property: "name"})
	require.Contains(t, el.PropertyAccesses, PropertyAccess{Variable: "n", Property: "age"})
}

func TestExtract_PropertyComparisonWithLiteral(t *testing.T) {
	el := extract(t, `MATCH (n:Person) WHERE n.age >= 18 RETURN n`)
	require.Len(t, el.PropertyComparisons, 1)
	cmp := el.PropertyComparisons[0]
	require.Equal(t, "n", cmp.Variable)
	require.Equal(t, "age", cmp.Property)
	require.Equal(t, ast.OpGte, cmp.Operator)
	require.Equal(t, ValueLiteral, cmp.ValueKind)
	require.Equal(t, types.Integer, cmp.ValueTypeHint)
}

func TestExtract_PropertyComparisonWithTypedFunction(t *testing.T) {
	el := extract(t, `MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps`)
	require.Len(t, el.PropertyComparisons, 1)
	cmp := el.PropertyComparisons[0]
	require.Equal(t, ValueFunctionCall, cmp.ValueKind)
	require.Equal(t, types.Date, cmp.ValueTypeHint)
}

func TestExtract_PropertyComparisonWithParameter(t *testing.T) {
	el := extract(t, `MATCH (n:Person) WHERE n.age = $minAge RETURN n`)
	require.Len(t, el.PropertyComparisons, 1)
	require.Equal(t, ValueParameter, el.PropertyComparisons[0].ValueKind)
	require.Equal(t, types.Unknown, el.PropertyComparisons[0].ValueTypeHint)
}

func TestExtract_ComparisonAgainstUnrecognisedFunctionIsSkipped(t *testing.T) {
	el := extract(t, `MATCH (n:Person) WHERE n.age = customFunc() RETURN n`)
	require.Empty(t, el.PropertyComparisons)
}

func TestExtract_NonComparisonOperatorNotRecorded(t *testing.T) {
	el := extract(t, `MATCH (n:Person) WHERE n.name STARTS WITH "A" RETURN n`)
	require.Empty(t, el.PropertyComparisons)
}

func TestExtract_RelationshipUseRightDirection(t *testing.T) {
	el := extract(t, `MATCH (a:Person)-[:KNOWS]->(b:Company) RETURN a, b`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: "KNOWS", EndLabel: "Company"})
}

func TestExtract_RelationshipUseLeftDirectionFlipsEndpoints(t *testing.T) {
	el := extract(t, `MATCH (a:Person)<-[:KNOWS]-(b:Company) RETURN a, b`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Company", Type: "KNOWS", EndLabel: "Person"})
}

func TestExtract_RelationshipUseWildcardWhenUnlabeled(t *testing.T) {
	el := extract(t, `MATCH (a)-[:KNOWS]->(b:Company) RETURN a, b`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: wildcard, Type: "KNOWS", EndLabel: "Company"})
}

func TestExtract_RelationshipUseFillsLabelFromBinding(t *testing.T) {
	el := extract(t, `MATCH (a:Person) MATCH (a)-[:KNOWS]->(b:Company) RETURN a, b`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: "KNOWS", EndLabel: "Company"})
}

func TestExtract_PathVariable(t *testing.T) {
	el := extract(t, `MATCH p = shortestPath((a:Person)-[:KNOWS*]-(b:Person)) RETURN nodes(p), relationships(p)`)
	require.True(t, el.PathVariables["p"])
	require.True(t, el.DefinedNames["p"])
	require.Contains(t, el.PathFunctionArgs, "p")
}

func TestExtract_PathFunctionArgumentNotAPathVariable(t *testing.T) {
	el := extract(t, `MATCH (n:Person) RETURN length(n)`)
	require.Contains(t, el.PathFunctionArgs, "n")
	require.False(t, el.PathVariables["n"])
}

func TestExtract_PatternPredicateFunctionNotFlaggedAsVariable(t *testing.T) {
	el := extract(t, `MATCH (u:Person), (i:Item) WHERE NOT (u)-[:LIKES]->(i) AND length(u.name) > 3 RETURN u, i`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: "LIKES", EndLabel: "Item"})
	require.Contains(t, el.PropertyAccesses, PropertyAccess{Variable: "u", Property: "name"})
}

func TestExtract_WithProjectionAliasJoinsDefinedNames(t *testing.T) {
	el := extract(t, `MATCH (n:Person) WITH n.name AS name RETURN name`)
	require.True(t, el.DefinedNames["name"])
}

func TestExtract_UnwindVariableJoinsDefinedNames(t *testing.T) {
	el := extract(t, `UNWIND [1, 2, 3] AS x RETURN x`)
	require.True(t, el.DefinedNames["x"])
}

func TestExtract_CallYieldJoinsDefinedNames(t *testing.T) {
	el := extract(t, `CALL db.labels() YIELD label RETURN label`)
	require.True(t, el.DefinedNames["label"])
}

func TestExtract_ListComprehensionVariableNotJoinedToDefinedNames(t *testing.T) {
	el := extract(t, `RETURN [x IN range(0, 10) | x * 2]`)
	require.False(t, el.DefinedNames["x"])
}

func TestExtract_QuantifiedPathPatternRelationshipUses(t *testing.T) {
	el := extract(t, `MATCH (a:Person)--((n:Person)-[:KNOWS]->(m:Person)){1,3}--(b:Person) RETURN a`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: "KNOWS", EndLabel: "Person"})
}

// The relationships bordering a QuantifiedPathPattern must resolve
// against the QPP's own nearest inner node rather than being skipped.
func TestExtract_QuantifiedPathPatternBoundaryRelationshipUses(t *testing.T) {
	el := extract(t, `MATCH (a:Person)--((n:Person)-[:KNOWS]->(m:Staffer)){1,3}--(b:Company) RETURN a`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: wildcard, EndLabel: "Person", Undirected: true})
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Staffer", Type: wildcard, EndLabel: "Company", Undirected: true})
}

func TestExtract_UndirectedRelationshipUseMarked(t *testing.T) {
	el := extract(t, `MATCH (p:Person)-[:WORKS_AT]-(c:Company) RETURN p`)
	require.Contains(t, el.RelationshipUses, RelationshipUse{StartLabel: "Person", Type: "WORKS_AT", EndLabel: "Company", Undirected: true})
}
