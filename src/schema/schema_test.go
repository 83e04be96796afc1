package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "node_props": {
    "Person": [{"name": "name", "neo4j_type": "STRING"}, {"name": "age", "neo4j_type": "INTEGER"}]
  },
  "rel_props": {
    "KNOWS": [{"name": "since", "neo4j_type": "DATE"}]
  },
  "relationships": [
    {"start": "Person", "type": "KNOWS", "end": "Person"}
  ],
  "metadata": {"source": "test"}
}`

const sampleYAML = `
node_props:
  Person:
    - name: name
      neo4j_type: STRING
rel_props: {}
relationships: []
metadata:
  source: test
`

func TestNewFromJSON(t *testing.T) {
	s, err := NewFromJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.True(t, s.HasLabel("Person"))
	require.False(t, s.HasLabel("Company"))
	require.True(t, s.HasRelationshipType("KNOWS"))

	p, ok := s.NodeProperty("Person", "age")
	require.True(t, ok)
	require.Equal(t, "INTEGER", p.Type)

	_, ok = s.NodeProperty("Person", "missing")
	require.False(t, ok)

	require.True(t, s.HasRelationshipConnection("Person", "KNOWS", "Person"))
	require.False(t, s.HasRelationshipConnection("Person", "KNOWS", "Company"))
}

func TestNewFromYAML(t *testing.T) {
	s, err := NewFromYAML([]byte(sampleYAML))
	require.NoError(t, err)
	require.True(t, s.HasLabel("Person"))
	require.Equal(t, "test", s.Metadata["source"])
}

func TestNewFromJSON_Malformed(t *testing.T) {
	_, err := NewFromJSON([]byte(`{not json`))
	require.Error(t, err)
}

func TestNew_EmptyMapsInitialized(t *testing.T) {
	s := New()
	require.NotNil(t, s.NodeProperties)
	require.NotNil(t, s.RelationshipProperties)
	require.False(t, s.HasLabel("Anything"))
}
