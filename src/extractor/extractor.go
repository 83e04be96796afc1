// Package extractor implements the single depth-first AST walk of spec
// §4.5: it turns an *ast.Query into a QueryElements bundle of the facts
// the structural validator and type checker need (variable bindings,
// property accesses and comparisons, relationship uses, path variables,
// and every name the query defines).
package extractor

import (
	"strings"

	"github.com/joetechbob/cypher-guard/src/ast"
	"github.com/joetechbob/cypher-guard/src/types"
)

// ValueKind tags how a PropertyComparison's right-hand side was shaped.
type ValueKind int

const (
	ValueLiteral ValueKind = iota
	ValueParameter
	ValueFunctionCall
)

// PropertyAccess is one "(variable, property)" pair witnessed anywhere
// in the query (spec §3 "property_accesses").
type PropertyAccess struct {
	Variable string
	Property string
}

// PropertyComparison is one binary comparison whose left side is a
// simple property access (spec §3 "property_comparisons").
type PropertyComparison struct {
	Variable      string
	Property      string
	Operator      ast.BinaryOp
	ValueKind     ValueKind
	ValueTypeHint types.Neo4jType
}

// RelationshipUse is one (start, type, end) triple observed in a
// pattern, with "*" standing in for a label/type that couldn't be
// resolved (spec §3 "relationship_uses"). Undirected marks a pattern
// written with "--" rather than an arrow: the structural validator
// accepts either endpoint ordering against the schema for these,
// matching how an undirected match has no notion of which side is
// the declared start.
type RelationshipUse struct {
	StartLabel string
	Type       string
	EndLabel   string
	Undirected bool
}

const wildcard = "*"

// QueryElements is the extractor's single output artefact (spec §3).
// It is owned entirely by one validation call; nothing in it persists.
type QueryElements struct {
	VariableNodeBindings         map[string]string
	VariableRelationshipBindings map[string]string
	PropertyAccesses             []PropertyAccess
	PropertyComparisons          []PropertyComparison
	RelationshipUses             []RelationshipUse
	PathVariables                map[string]bool
	DefinedNames                 map[string]bool
	// PathFunctionArgs is every variable name passed as an argument to
	// one of the path functions length/nodes/relationships (spec §4.3,
	// §4.6 item 5): each must resolve to a bound path variable.
	PathFunctionArgs []string
}

func newQueryElements() *QueryElements {
	return &QueryElements{
		VariableNodeBindings:         make(map[string]string),
		VariableRelationshipBindings: make(map[string]string),
		PathVariables:                make(map[string]bool),
		DefinedNames:                 make(map[string]bool),
	}
}

// typedFunctions is the small closed table of functions whose return
// type the checker knows (spec §4.5, §9 "typed-function registry as a
// small closed table"). Every other function resolves to Unknown,
// which the absorption rule (spec §4.9) never flags.
var typedFunctions = map[string]types.Neo4jType{
	"date":      types.Date,
	"datetime":  types.DateTime,
	"localtime": types.LocalTime,
	"time":      types.Time,
	"duration":  types.Duration,
	"tointeger": types.Integer,
	"tofloat":   types.Float,
	"tostring":  types.String,
	"toboolean": types.Boolean,
}

// Extract walks query once and returns the elements derived from it.
func Extract(query *ast.Query) *QueryElements {
	w := &walker{elements: newQueryElements()}
	for _, c := range query.Clauses {
		w.clause(c)
	}
	return w.elements
}

type walker struct {
	elements *QueryElements
}

func (w *walker) defineName(name string) {
	if name != "" {
		w.elements.DefinedNames[name] = true
	}
}

func (w *walker) clause(c ast.Clause) {
	switch cl := c.(type) {
	case *ast.MatchClause:
		for _, p := range cl.Patterns {
			w.pattern(p)
		}
	case *ast.CreateClause:
		for _, p := range cl.Patterns {
			w.pattern(p)
		}
	case *ast.MergeClause:
		w.pattern(cl.Pattern)
		w.updateItems(cl.OnCreate)
		w.updateItems(cl.OnMatch)
	case *ast.WhereClause:
		w.expr(cl.Condition)
	case *ast.SetClause:
		w.updateItems(cl.Items)
	case *ast.DeleteClause:
		for _, t := range cl.Targets {
			w.expr(t)
		}
	case *ast.RemoveClause:
		w.updateItems(cl.Items)
	case *ast.WithClause:
		w.projectionItems(cl.Items)
		if cl.Where != nil {
			w.expr(cl.Where)
		}
		w.orderByItems(cl.OrderBy)
		w.optExpr(cl.Skip)
		w.optExpr(cl.Limit)
	case *ast.ReturnClause:
		w.projectionItems(cl.Items)
		w.orderByItems(cl.OrderBy)
		w.optExpr(cl.Skip)
		w.optExpr(cl.Limit)
	case *ast.UnwindClause:
		w.expr(cl.Expression)
		w.defineName(cl.Variable)
	case *ast.CallClause:
		for _, a := range cl.Arguments {
			w.expr(a)
		}
		for _, y := range cl.Yield {
			w.defineName(y)
		}
		if cl.Subquery != nil {
			for _, c := range cl.Subquery.Clauses {
				w.clause(c)
			}
		}
	}
}

func (w *walker) updateItems(items []ast.UpdateItem) {
	for _, item := range items {
		switch u := item.(type) {
		case *ast.PropertySet:
			w.expr(u.Value)
		case *ast.PropertyAddMap:
			w.expr(u.Value)
		case *ast.LabelAdd, *ast.LabelRemove, *ast.PropertyRemove:
			// no nested expression to walk
		}
	}
}

func (w *walker) projectionItems(items []ast.ProjectionItem) {
	for _, p := range items {
		if p.Wildcard {
			continue
		}
		w.expr(p.Expression)
		w.defineName(p.Alias)
	}
}

func (w *walker) orderByItems(items []ast.OrderByItem) {
	for _, o := range items {
		w.expr(o.Expression)
	}
}

func (w *walker) optExpr(e ast.Expression) {
	if e != nil {
		w.expr(e)
	}
}

// ---------------------------------------------------------------------
// Patterns (spec §4.5 items 1, 4, 5)
// ---------------------------------------------------------------------

func (w *walker) pattern(p *ast.PathPattern) {
	if p.Variable != "" {
		w.elements.PathVariables[p.Variable] = true
		w.defineName(p.Variable)
	}
	w.bindElements(p.Elements)
	w.relationshipUses(p.Elements)
}

// bindElements registers every variable->label/type binding in elements,
// first-binding-wins, and recurses into any quantified sub-pattern.
// This must run before relationshipUses so a variable reused later in
// the same chain already has a resolved label to fall back on.
func (w *walker) bindElements(elements []ast.PatternElement) {
	for _, el := range elements {
		switch e := el.(type) {
		case *ast.NodePattern:
			w.defineName(e.Variable)
			if e.Variable != "" && len(e.Labels) > 0 {
				if _, bound := w.elements.VariableNodeBindings[e.Variable]; !bound {
					w.elements.VariableNodeBindings[e.Variable] = e.Labels[0]
				}
			}
			w.optMapLiteral(e.Properties)
		case *ast.RelationshipPattern:
			w.defineName(e.Variable)
			if e.Variable != "" && len(e.Types) > 0 {
				if _, bound := w.elements.VariableRelationshipBindings[e.Variable]; !bound {
					w.elements.VariableRelationshipBindings[e.Variable] = e.Types[0]
				}
			}
			w.optMapLiteral(e.Properties)
		case *ast.QuantifiedPathPattern:
			w.bindElements(e.SubPattern.Elements)
		}
	}
}

// relationshipUses walks consecutive (Node, Relationship, Node) triples
// in elements and records one RelationshipUse per relationship,
// resolving each endpoint's label from its own inline label if present,
// falling back to the variable's binding (spec §3 "relationship_uses").
// A triple bordering a QuantifiedPathPattern is not skipped: the QPP's
// own first/last node stands in for the missing NodePattern, so a
// boundary relationship like "(a)--(qpp){1,3}" still gets checked
// against the QPP's nearest inner node.
func (w *walker) relationshipUses(elements []ast.PatternElement) {
	for i := 1; i+1 < len(elements); i += 2 {
		rel, ok := elements[i].(*ast.RelationshipPattern)
		if !ok {
			continue
		}
		left, leftOK := boundaryNode(elements[i-1], true)
		right, rightOK := boundaryNode(elements[i+1], false)
		if !leftOK || !rightOK {
			continue
		}
		startLabel, endLabel := w.nodeLabel(left), w.nodeLabel(right)
		relType := wildcard
		if len(rel.Types) > 0 {
			relType = rel.Types[0]
		}
		start, end := startLabel, endLabel
		if rel.Direction == ast.DirectionLeft {
			start, end = endLabel, startLabel
		}
		w.elements.RelationshipUses = append(w.elements.RelationshipUses, RelationshipUse{
			StartLabel: start,
			Type:       relType,
			EndLabel:   end,
			Undirected: rel.Direction == ast.DirectionUndirected,
		})
	}
	for _, el := range elements {
		if qpp, ok := el.(*ast.QuantifiedPathPattern); ok {
			w.relationshipUses(qpp.SubPattern.Elements)
		}
	}
}

// boundaryNode resolves a pattern-chain neighbour to the NodePattern
// that actually borders the relationship at this position. A plain
// node resolves to itself; a QuantifiedPathPattern resolves to its
// sub-pattern's near node (last, if it sits to the left of the
// relationship; first, if it sits to the right), recursing through any
// further nesting, mirroring how the original validator flattens QPPs
// into the same positional node/relationship vectors it uses for
// connection checking.
func boundaryNode(el ast.PatternElement, near bool) (*ast.NodePattern, bool) {
	switch e := el.(type) {
	case *ast.NodePattern:
		return e, true
	case *ast.QuantifiedPathPattern:
		elems := e.SubPattern.Elements
		if len(elems) == 0 {
			return nil, false
		}
		if near {
			return boundaryNode(elems[len(elems)-1], true)
		}
		return boundaryNode(elems[0], false)
	default:
		return nil, false
	}
}

func (w *walker) nodeLabel(n *ast.NodePattern) string {
	if len(n.Labels) > 0 {
		return n.Labels[0]
	}
	if n.Variable != "" {
		if label, ok := w.elements.VariableNodeBindings[n.Variable]; ok {
			return label
		}
	}
	return wildcard
}

func (w *walker) optMapLiteral(m *ast.MapLiteral) {
	if m == nil {
		return
	}
	for _, entry := range m.Entries {
		w.expr(entry.Value)
	}
}

// ---------------------------------------------------------------------
// Expressions (spec §4.5 items 2, 3)
// ---------------------------------------------------------------------

func (w *walker) expr(e ast.Expression) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.Literal, *ast.Parameter, *ast.VariableRef:
		// leaves; nothing to recurse into
	case *ast.PropertyAccess:
		if subject, ok := v.Subject.(*ast.VariableRef); ok && v.KeyIsIdent {
			w.elements.PropertyAccesses = append(w.elements.PropertyAccesses, PropertyAccess{
				Variable: subject.Name,
				Property: v.KeyIdent,
			})
		}
		w.expr(v.Subject)
		w.expr(v.Key)
	case *ast.BracketAccess:
		w.expr(v.Subject)
		w.expr(v.Index)
	case *ast.Slice:
		w.expr(v.Subject)
		w.optExpr(v.Start)
		w.optExpr(v.End)
	case *ast.Unary:
		w.expr(v.Operand)
	case *ast.Binary:
		w.binary(v)
	case *ast.FunctionCall:
		if isPathFunction(v.Name) {
			for _, a := range v.Args {
				if ref, ok := a.(*ast.VariableRef); ok {
					w.elements.PathFunctionArgs = append(w.elements.PathFunctionArgs, ref.Name)
				}
			}
		}
		for _, a := range v.Args {
			w.expr(a)
		}
	case *ast.ListLiteral:
		for _, el := range v.Elements {
			w.expr(el)
		}
	case *ast.MapLiteral:
		for _, entry := range v.Entries {
			w.expr(entry.Value)
		}
	case *ast.MapProjection:
		w.expr(v.Subject)
		for _, item := range v.Items {
			if item.Kind == ast.MapProjComputed {
				w.expr(item.Value)
			}
		}
	case *ast.ListComprehension:
		// The comprehension's loop variable is deliberately not added to
		// DefinedNames: spec §4.5 item 5 lists pattern, WITH, UNWIND, and
		// path bindings only, not comprehension variables.
		w.expr(v.Source)
		w.optExpr(v.Where)
		w.optExpr(v.Projection)
	case *ast.PatternComprehension:
		w.pattern(v.Pattern)
		w.optExpr(v.Where)
		w.expr(v.Projection)
	case *ast.CaseExpr:
		w.optExpr(v.Discriminant)
		for _, wc := range v.Whens {
			w.expr(wc.Condition)
			w.expr(wc.Result)
		}
		w.optExpr(v.Else)
	case *ast.PatternPredicate:
		w.pattern(v.Pattern)
	}
}

func (w *walker) binary(b *ast.Binary) {
	w.expr(b.Left)
	w.optExpr(b.Right)

	if b.Right == nil || !b.Op.IsComparison() {
		return
	}
	prop, ok := b.Left.(*ast.PropertyAccess)
	if !ok || !prop.KeyIsIdent {
		return
	}
	subject, ok := prop.Subject.(*ast.VariableRef)
	if !ok {
		return
	}

	kind, hint, ok := valueKindAndHint(b.Right)
	if !ok {
		return
	}
	w.elements.PropertyComparisons = append(w.elements.PropertyComparisons, PropertyComparison{
		Variable:      subject.Name,
		Property:      prop.KeyIdent,
		Operator:      b.Op,
		ValueKind:     kind,
		ValueTypeHint: hint,
	})
}

// valueKindAndHint classifies the right-hand side of a comparison per
// spec §4.5 item 3: only a literal, a parameter, or a call to a
// recognised typed function qualifies.
func valueKindAndHint(e ast.Expression) (ValueKind, types.Neo4jType, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		return ValueLiteral, literalTypeHint(v), true
	case *ast.Parameter:
		return ValueParameter, types.Unknown, true
	case *ast.FunctionCall:
		if hint, ok := typedFunctions[strings.ToLower(v.Name)]; ok {
			return ValueFunctionCall, hint, true
		}
	}
	return 0, types.Unknown, false
}

// isPathFunction reports whether name is one of the path functions spec
// §4.3 names as legal arguments for a path variable: length, nodes,
// relationships.
func isPathFunction(name string) bool {
	switch strings.ToLower(name) {
	case "length", "nodes", "relationships":
		return true
	default:
		return false
	}
}

func literalTypeHint(l *ast.Literal) types.Neo4jType {
	switch l.Kind {
	case ast.LiteralString:
		return types.String
	case ast.LiteralInt:
		return types.Integer
	case ast.LiteralFloat:
		return types.Float
	case ast.LiteralBool:
		return types.Boolean
	default:
		return types.Unknown
	}
}
