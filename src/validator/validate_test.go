package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joetechbob/cypher-guard/src/schema"
	"github.com/joetechbob/cypher-guard/src/types"
)

func schemaFromJSON(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s, err := schema.NewFromJSON([]byte(doc))
	require.NoError(t, err)
	return s
}

// S1 - String-vs-Date silent failure, warnings mode.
func TestValidate_S1_StringVsDateWarnings(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}
	}`)
	res, err := Validate(
		`MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps`,
		s, Options{TypeChecking: types.Warnings},
	)
	require.NoError(t, err)
	// String-vs-Date is a SeverityError pairing; in Warnings mode it still
	// lands in TypeErrors (severity is intrinsic to the pairing, not the
	// mode), but only Strict mode lets TypeErrors flip Valid.
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.TypeWarnings)
	require.Len(t, res.TypeErrors, 1)
	assert.Contains(t, res.TypeErrors[0], "String")
	assert.Contains(t, res.TypeErrors[0], "Date")
	assert.Contains(t, res.TypeErrors[0], "ps.valid_from")
}

// S2 - same query, strict mode.
func TestValidate_S2_StringVsDateStrict(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}
	}`)
	res, err := Validate(
		`MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps`,
		s, Options{TypeChecking: types.Strict},
	)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.TypeErrors)
}

// S3 - Integer<->Float allowed.
func TestValidate_S3_IntegerFloatAllowed(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Product": [{"name": "price", "neo4j_type": "INTEGER"}]}
	}`)
	res, err := Validate(
		`MATCH (p:Product) WHERE p.price > 25.5 RETURN p`,
		s, Options{TypeChecking: types.Strict},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.TypeWarnings)
	assert.Empty(t, res.TypeErrors)
}

// S4 - undefined label.
func TestValidate_S4_UndefinedLabel(t *testing.T) {
	s := schemaFromJSON(t, `{"node_props": {"Person": []}}`)
	res, err := Validate(`MATCH (x:Nonsense) RETURN x`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "Nonsense")
}

// S5 - invalid relationship connection.
func TestValidate_S5_InvalidRelationshipConnection(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": [], "Company": []},
		"relationships": [{"start": "Person", "type": "KNOWS", "end": "Person"}]
	}`)
	res, err := Validate(`MATCH (a:Person)-[:KNOWS]->(b:Company) RETURN a, b`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if e.Kind.String() == "InvalidRelationshipConnection" {
			found = true
			assert.Contains(t, e.Error(), "Person")
			assert.Contains(t, e.Error(), "KNOWS")
			assert.Contains(t, e.Error(), "Company")
		}
	}
	assert.True(t, found, "expected an InvalidRelationshipConnection error")
}

// An undirected relationship pattern matches the schema's declared
// connection in either endpoint ordering.
func TestValidate_UndirectedRelationshipEitherOrder(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": [], "Company": []},
		"relationships": [{"start": "Company", "type": "WORKS_AT", "end": "Person"}]
	}`)
	res, err := Validate(`MATCH (p:Person)-[:WORKS_AT]-(c:Company) RETURN p`, s, Options{})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

// A directed relationship pattern still only matches the one declared
// ordering; the undirected either-order relaxation does not leak into it.
func TestValidate_DirectedRelationshipStillOrderSensitive(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": [], "Company": []},
		"relationships": [{"start": "Company", "type": "WORKS_AT", "end": "Person"}]
	}`)
	res, err := Validate(`MATCH (p:Person)-[:WORKS_AT]->(c:Company) RETURN p`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

// S6 - pattern predicate + function in WHERE.
func TestValidate_S6_PatternPredicateAndFunction(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": [{"name": "name", "neo4j_type": "STRING"}], "Item": []},
		"relationships": [{"start": "Person", "type": "LIKES", "end": "Item"}]
	}`)
	res, err := Validate(
		`MATCH (u:Person), (i:Item) WHERE NOT (u)-[:LIKES]->(i) AND length(u.name) > 3 RETURN u, i`,
		s, Options{},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

// S7 - quantified path + path function.
func TestValidate_S7_QuantifiedPathAndPathFunction(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": []},
		"relationships": [{"start": "Person", "type": "KNOWS", "end": "Person"}]
	}`)
	res, err := Validate(
		`MATCH p = shortestPath((a:Person)-[:KNOWS*]-(b:Person)) WHERE length(p) <= 3 RETURN nodes(p), relationships(p)`,
		s, Options{},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

// Invariant 1: mode-off backward compatibility.
func TestValidate_Invariant_ModeOffNoTypeIssues(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}
	}`)
	query := `MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps`

	off, err := Validate(query, s, Options{TypeChecking: types.Off})
	require.NoError(t, err)
	assert.Empty(t, off.TypeWarnings)
	assert.Empty(t, off.TypeErrors)

	strict, err := Validate(query, s, Options{TypeChecking: types.Strict})
	require.NoError(t, err)
	assert.Equal(t, off.Valid, len(strict.Errors) == 0)
}

// Invariant 2: monotone accumulation.
func TestValidate_Invariant_MonotoneAccumulation(t *testing.T) {
	s := schemaFromJSON(t, `{"node_props": {"Person": []}}`)
	res, err := Validate(`MATCH (x:Nope1), (y:Nope2), (z:Nope3) RETURN x, y, z`, s, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Errors, 3)
}

// Invariant 4: Unknown absorbs.
func TestValidate_Invariant_UnknownAbsorbs(t *testing.T) {
	s := schemaFromJSON(t, `{
		"node_props": {"Person": [{"name": "misc", "neo4j_type": "SOMETHING_WEIRD"}]}
	}`)
	res, err := Validate(`MATCH (p:Person) WHERE p.misc = "x" RETURN p`, s, Options{TypeChecking: types.Strict})
	require.NoError(t, err)
	assert.Empty(t, res.TypeWarnings)
	assert.Empty(t, res.TypeErrors)
	assert.True(t, res.Valid)
}

func TestValidate_ParseErrorShortCircuits(t *testing.T) {
	s := schema.New()
	res, err := Validate(`NOT CYPHER AT ALL (((`, s, Options{})
	require.Error(t, err)
	assert.Equal(t, Result{}, res)
}

func TestValidate_ClauseOrderRejected(t *testing.T) {
	s := schema.New()
	res, err := Validate(`RETURN 1 MATCH (n) RETURN n`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ClauseOrderError", res.Errors[0].Kind.String())
}

// A standalone SET with no preceding reading clause is an illegal
// Start transition (spec §4.4 excludes every Writing clause from Start
// except CREATE/MERGE).
func TestValidate_ClauseOrderRejectsStandaloneSetAtStart(t *testing.T) {
	s := schema.New()
	res, err := Validate(`SET n.x = 1 RETURN n`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ClauseOrderError", res.Errors[0].Kind.String())
}

// DELETE is likewise excluded from Start.
func TestValidate_ClauseOrderRejectsDeleteAtStart(t *testing.T) {
	s := schema.New()
	res, err := Validate(`DELETE n`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ClauseOrderError", res.Errors[0].Kind.String())
}

// WHERE may not directly follow a writing clause; it ties only to the
// reading clause immediately before it.
func TestValidate_ClauseOrderRejectsWhereAfterWriting(t *testing.T) {
	s := schemaFromJSON(t, `{"node_props": {"Person": [{"name": "age", "neo4j_type": "INTEGER"}]}}`)
	res, err := Validate(`MATCH (n:Person) CREATE (m:Person) WHERE n.age > 1 RETURN n`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ClauseOrderError", res.Errors[0].Kind.String())
}

// WITH carries bindings forward into a following RETURN, the most
// common clause shape in real queries.
func TestValidate_ClauseOrderAcceptsWithThenReturn(t *testing.T) {
	s := schemaFromJSON(t, `{"node_props": {"Person": [{"name": "name", "neo4j_type": "STRING"}]}}`)
	res, err := Validate(`MATCH (n:Person) WITH n.name AS name RETURN name`, s, Options{})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_UndefinedProperty(t *testing.T) {
	s := schemaFromJSON(t, `{"node_props": {"Person": [{"name": "name", "neo4j_type": "STRING"}]}}`)
	res, err := Validate(`MATCH (p:Person) RETURN p.age`, s, Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "UndefinedProperty", res.Errors[0].Kind.String())
}
