// Package schema models the declarative graph schema that cypher-guard
// validates queries against (spec §3, §6). A Schema is an immutable value
// shared read-only across concurrent validation calls.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Property is one declared (name, type) pair on a label or relationship
// type. Type is the raw declared-type string from the schema document;
// callers wanting the parsed tag use src/types.ParseNeo4jType(Type).
type Property struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"neo4j_type" yaml:"neo4j_type"`
}

// Relationship is one permitted (start, type, end) connection triple.
type Relationship struct {
	Start string `json:"start" yaml:"start"`
	Type  string `json:"type" yaml:"type"`
	End   string `json:"end" yaml:"end"`
}

// Schema is the typed description of a graph's labels, relationship
// types, their properties, and the connections permitted between them
// (spec §3 "Schema").
type Schema struct {
	NodeProperties         map[string][]Property `json:"node_props" yaml:"node_props"`
	RelationshipProperties map[string][]Property `json:"rel_props" yaml:"rel_props"`
	Relationships          []Relationship         `json:"relationships" yaml:"relationships"`
	Metadata               map[string]any         `json:"metadata" yaml:"metadata"`
}

// New returns an empty, ready-to-populate Schema.
func New() *Schema {
	return &Schema{
		NodeProperties:         make(map[string][]Property),
		RelationshipProperties: make(map[string][]Property),
	}
}

// NewFromJSON parses the document shape described in spec §6.
func NewFromJSON(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cypher-guard: parse schema JSON: %w", err)
	}
	s.normalize()
	return &s, nil
}

// NewFromYAML parses the same document shape expressed as YAML, matching
// the yaml-tagged schema structs found across the wider retrieval pack
// (e.g. hemanta212-scaf's Schema/ModelSchema).
func NewFromYAML(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cypher-guard: parse schema YAML: %w", err)
	}
	s.normalize()
	return &s, nil
}

func (s *Schema) normalize() {
	if s.NodeProperties == nil {
		s.NodeProperties = make(map[string][]Property)
	}
	if s.RelationshipProperties == nil {
		s.RelationshipProperties = make(map[string][]Property)
	}
}

// HasLabel reports whether label is declared.
func (s *Schema) HasLabel(label string) bool {
	_, ok := s.NodeProperties[label]
	return ok
}

// HasRelationshipType reports whether relType is declared.
func (s *Schema) HasRelationshipType(relType string) bool {
	_, ok := s.RelationshipProperties[relType]
	return ok
}

// NodeProperty looks up a declared node property by label, returning
// (Property{}, false) if the label or the property is unknown.
func (s *Schema) NodeProperty(label, property string) (Property, bool) {
	for _, p := range s.NodeProperties[label] {
		if p.Name == property {
			return p, true
		}
	}
	return Property{}, false
}

// RelationshipProperty looks up a declared relationship property by type.
func (s *Schema) RelationshipProperty(relType, property string) (Property, bool) {
	for _, p := range s.RelationshipProperties[relType] {
		if p.Name == property {
			return p, true
		}
	}
	return Property{}, false
}

// HasRelationshipConnection reports whether the (start, type, end) triple
// is permitted by the schema's relationship set (spec §4.6 item 3).
func (s *Schema) HasRelationshipConnection(start, relType, end string) bool {
	for _, r := range s.Relationships {
		if r.Type == relType && r.Start == start && r.End == end {
			return true
		}
	}
	return false
}
