package parser

import (
	"fmt"
	"strings"

	"github.com/joetechbob/cypher-guard/src/ast"
	"github.com/joetechbob/cypher-guard/src/cgerr"
)

// converter walks a parse tree and builds the ast package's values from
// it, tracking expression nesting depth so a pathologically nested query
// text fails with a clean error instead of a stack overflow.
type converter struct {
	maxDepth int
	depth    int
}

func (c *converter) enterExpr() error {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		return fmt.Errorf("expression nesting exceeds maximum depth of %d", c.maxDepth)
	}
	return nil
}

func (c *converter) leaveExpr() { c.depth-- }

func (c *converter) query(q *gQuery) (*ast.Query, error) {
	clauses := make([]ast.Clause, 0, len(q.Clauses))
	for _, gc := range q.Clauses {
		clause, err := c.clause(gc)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return &ast.Query{Clauses: clauses}, nil
}

func (c *converter) clause(gc *gClause) (ast.Clause, error) {
	switch {
	case gc.Match != nil:
		return c.matchClause(gc.Match)
	case gc.Create != nil:
		return c.createClause(gc.Create)
	case gc.Merge != nil:
		return c.mergeClause(gc.Merge)
	case gc.Unwind != nil:
		return c.unwindClause(gc.Unwind)
	case gc.Call != nil:
		return c.callClause(gc.Call)
	case gc.Where != nil:
		return c.whereClause(gc.Where)
	case gc.Set != nil:
		return c.setClause(gc.Set)
	case gc.Delete != nil:
		return c.deleteClause(gc.Delete)
	case gc.Remove != nil:
		return c.removeClause(gc.Remove)
	case gc.With != nil:
		return c.withClause(gc.With)
	case gc.Return != nil:
		return c.returnClause(gc.Return)
	default:
		return nil, fmt.Errorf("empty clause")
	}
}

func (c *converter) matchClause(m *gMatchClause) (*ast.MatchClause, error) {
	patterns, err := c.pathPatterns(m.Patterns)
	if err != nil {
		return nil, err
	}
	return &ast.MatchClause{Optional: m.Optional, Patterns: patterns}, nil
}

func (c *converter) createClause(m *gCreateClause) (*ast.CreateClause, error) {
	patterns, err := c.pathPatterns(m.Patterns)
	if err != nil {
		return nil, err
	}
	return &ast.CreateClause{Patterns: patterns}, nil
}

func (c *converter) mergeClause(m *gMergeClause) (*ast.MergeClause, error) {
	pattern, err := c.pathPattern(m.Pattern)
	if err != nil {
		return nil, err
	}
	out := &ast.MergeClause{Pattern: pattern}
	for _, action := range m.Actions {
		items, err := c.updateItems(action.Items)
		if err != nil {
			return nil, err
		}
		if action.OnCreate {
			out.OnCreate = append(out.OnCreate, items...)
		} else {
			out.OnMatch = append(out.OnMatch, items...)
		}
	}
	return out, nil
}

func (c *converter) whereClause(w *gWhereClause) (*ast.WhereClause, error) {
	cond, err := c.expr(w.Condition)
	if err != nil {
		return nil, err
	}
	return &ast.WhereClause{Condition: cond}, nil
}

func (c *converter) setClause(s *gSetClause) (*ast.SetClause, error) {
	items, err := c.updateItems(s.Items)
	if err != nil {
		return nil, err
	}
	return &ast.SetClause{Items: items}, nil
}

func (c *converter) deleteClause(d *gDeleteClause) (*ast.DeleteClause, error) {
	targets := make([]ast.Expression, 0, len(d.Targets))
	for _, t := range d.Targets {
		e, err := c.expr(t)
		if err != nil {
			return nil, err
		}
		targets = append(targets, e)
	}
	return &ast.DeleteClause{Targets: targets, Detach: d.Detach}, nil
}

func (c *converter) removeClause(r *gRemoveClause) (*ast.RemoveClause, error) {
	items := make([]ast.UpdateItem, 0, len(r.Items))
	for _, item := range r.Items {
		switch {
		case item.Label != nil:
			items = append(items, &ast.LabelRemove{Variable: item.Label.Variable, Labels: item.Label.Labels})
		case item.Prop != nil:
			items = append(items, &ast.PropertyRemove{Variable: item.Prop.Variable, Property: item.Prop.Property})
		default:
			return nil, fmt.Errorf("empty REMOVE item")
		}
	}
	return &ast.RemoveClause{Items: items}, nil
}

func (c *converter) withClause(w *gWithClause) (*ast.WithClause, error) {
	items, err := c.projectionItems(w.Items)
	if err != nil {
		return nil, err
	}
	orderBy, err := c.orderByItems(w.OrderBy)
	if err != nil {
		return nil, err
	}
	var where ast.Expression
	if w.Where != nil {
		where, err = c.expr(w.Where)
		if err != nil {
			return nil, err
		}
	}
	skip, err := c.optionalExpr(w.Skip)
	if err != nil {
		return nil, err
	}
	limit, err := c.optionalExpr(w.Limit)
	if err != nil {
		return nil, err
	}
	return &ast.WithClause{
		Distinct: w.Distinct,
		Items:    items,
		Where:    where,
		OrderBy:  orderBy,
		Skip:     skip,
		Limit:    limit,
	}, nil
}

func (c *converter) returnClause(r *gReturnClause) (*ast.ReturnClause, error) {
	items, err := c.projectionItems(r.Items)
	if err != nil {
		return nil, err
	}
	orderBy, err := c.orderByItems(r.OrderBy)
	if err != nil {
		return nil, err
	}
	skip, err := c.optionalExpr(r.Skip)
	if err != nil {
		return nil, err
	}
	limit, err := c.optionalExpr(r.Limit)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnClause{
		Distinct: r.Distinct,
		Items:    items,
		OrderBy:  orderBy,
		Skip:     skip,
		Limit:    limit,
	}, nil
}

func (c *converter) unwindClause(u *gUnwindClause) (*ast.UnwindClause, error) {
	e, err := c.expr(u.Expression)
	if err != nil {
		return nil, err
	}
	return &ast.UnwindClause{Expression: e, Variable: u.Variable}, nil
}

func (c *converter) callClause(call *gCallClause) (*ast.CallClause, error) {
	if call.Subquery != nil {
		sub, err := c.query(call.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.CallClause{Subquery: sub}, nil
	}
	args := make([]ast.Expression, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		e, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &ast.CallClause{
		ProcedureName: strings.Join(call.NameParts, "."),
		Arguments:     args,
		Yield:         call.Yield,
	}, nil
}

func (c *converter) updateItems(items []*gUpdateItem) ([]ast.UpdateItem, error) {
	out := make([]ast.UpdateItem, 0, len(items))
	for _, u := range items {
		switch {
		case u.LabelAdd != nil:
			out = append(out, &ast.LabelAdd{Variable: u.LabelAdd.Variable, Labels: u.LabelAdd.Labels})
		case u.AddMap != nil:
			v, err := c.expr(u.AddMap.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.PropertyAddMap{Variable: u.AddMap.Variable, Value: v})
		case u.PropSet != nil:
			v, err := c.expr(u.PropSet.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.PropertySet{Variable: u.PropSet.Variable, Property: u.PropSet.Property, Value: v})
		default:
			return nil, fmt.Errorf("empty SET item")
		}
	}
	return out, nil
}

func (c *converter) projectionItems(items []*gProjectionItem) ([]ast.ProjectionItem, error) {
	out := make([]ast.ProjectionItem, 0, len(items))
	for _, p := range items {
		if p.Wildcard {
			out = append(out, ast.ProjectionItem{Wildcard: true})
			continue
		}
		e, err := c.expr(p.Expression)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.ProjectionItem{Expression: e, Alias: p.Alias})
	}
	return out, nil
}

func (c *converter) orderByItems(items []*gOrderByItem) ([]ast.OrderByItem, error) {
	out := make([]ast.OrderByItem, 0, len(items))
	for _, o := range items {
		e, err := c.expr(o.Expression)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.OrderByItem{Expression: e, Descending: o.Desc})
	}
	return out, nil
}

func (c *converter) optionalExpr(e *gExpr) (ast.Expression, error) {
	if e == nil {
		return nil, nil
	}
	return c.expr(e)
}

// ---------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------

func (c *converter) pathPatterns(ps []*gPathPattern) ([]*ast.PathPattern, error) {
	out := make([]*ast.PathPattern, 0, len(ps))
	for _, p := range ps {
		pp, err := c.pathPattern(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pp)
	}
	return out, nil
}

func (c *converter) pathPattern(p *gPathPattern) (*ast.PathPattern, error) {
	var chain *gPatternChain
	fn := ast.PathFunctionNone
	switch {
	case p.ShortestPath != nil:
		chain, fn = p.ShortestPath, ast.PathFunctionShortestPath
	case p.AllShortestPaths != nil:
		chain, fn = p.AllShortestPaths, ast.PathFunctionAllShortestPaths
	default:
		chain = p.Plain
	}
	elems, err := c.patternChain(chain.First, chain.Rest)
	if err != nil {
		return nil, err
	}
	return &ast.PathPattern{Variable: p.Variable, PathFunction: fn, Elements: elems}, nil
}

func (c *converter) patternChain(first *gPatternElement, rest []*gChainStep) ([]ast.PatternElement, error) {
	elems := make([]ast.PatternElement, 0, 1+2*len(rest))
	e, err := c.patternElement(first)
	if err != nil {
		return nil, err
	}
	elems = append(elems, e)
	for _, step := range rest {
		rel, err := c.relPattern(step.Rel)
		if err != nil {
			return nil, err
		}
		elems = append(elems, rel)
		node, err := c.patternElement(step.Node)
		if err != nil {
			return nil, err
		}
		elems = append(elems, node)
	}
	return elems, nil
}

func (c *converter) patternElement(e *gPatternElement) (ast.PatternElement, error) {
	if e.QPP != nil {
		sub, err := c.patternChain(e.QPP.Sub.First, e.QPP.Sub.Rest)
		if err != nil {
			return nil, err
		}
		return &ast.QuantifiedPathPattern{
			SubPattern: &ast.PathPattern{Elements: sub},
			Quantifier: c.braceQuantifier(e.QPP.Quantifier),
		}, nil
	}
	return c.nodePattern(e.Node)
}

func (c *converter) nodePattern(n *gNodePattern) (*ast.NodePattern, error) {
	props, err := c.optionalMapLiteral(n.Properties)
	if err != nil {
		return nil, err
	}
	return &ast.NodePattern{Variable: n.Variable, Labels: n.Labels, Properties: props}, nil
}

func (c *converter) relPattern(r *gRelPattern) (*ast.RelationshipPattern, error) {
	if r.LeftArrow && r.RightArrow {
		return nil, cgerr.NewParseError("relationship pattern cannot point both directions", nil)
	}
	direction := ast.DirectionUndirected
	switch {
	case r.LeftArrow:
		direction = ast.DirectionLeft
	case r.RightArrow:
		direction = ast.DirectionRight
	}
	out := &ast.RelationshipPattern{Direction: direction}
	if r.Details != nil {
		out.Variable = r.Details.Variable
		out.Types = r.Details.Types
		if r.Details.Quantifier != nil {
			out.Quantifier = c.relQuantifier(r.Details.Quantifier)
		}
		props, err := c.optionalMapLiteral(r.Details.Properties)
		if err != nil {
			return nil, err
		}
		out.Properties = props
	}
	return out, nil
}

func (c *converter) relQuantifier(q *gRelQuantifier) *ast.Quantifier {
	if q.Min == nil && !q.Range && q.Max == nil {
		return &ast.Quantifier{Min: 0, Max: nil}
	}
	if !q.Range {
		m := *q.Min
		max := m
		return &ast.Quantifier{Min: m, Max: &max}
	}
	min := 0
	if q.Min != nil {
		min = *q.Min
	}
	var max *int
	if q.Max != nil {
		v := *q.Max
		max = &v
	}
	return &ast.Quantifier{Min: min, Max: max}
}

func (c *converter) braceQuantifier(q *gBraceQuantifier) ast.Quantifier {
	min := 0
	if q.Min != nil {
		min = *q.Min
	}
	if q.Max != nil {
		v := *q.Max
		return ast.Quantifier{Min: min, Max: &v}
	}
	if q.Min != nil && !q.Comma {
		v := *q.Min
		return ast.Quantifier{Min: min, Max: &v}
	}
	return ast.Quantifier{Min: min, Max: nil}
}

func (c *converter) optionalMapLiteral(m *gMapLiteral) (*ast.MapLiteral, error) {
	if m == nil {
		return nil, nil
	}
	return c.mapLiteral(m)
}

func (c *converter) mapLiteral(m *gMapLiteral) (*ast.MapLiteral, error) {
	entries := make([]ast.MapEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		v, err := c.expr(e.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: e.Key, Value: v})
	}
	return &ast.MapLiteral{Entries: entries}, nil
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (c *converter) expr(e *gExpr) (ast.Expression, error) {
	if err := c.enterExpr(); err != nil {
		return nil, err
	}
	defer c.leaveExpr()
	return c.orExpr((*gOrExpr)(e))
}

func (c *converter) orExpr(o *gOrExpr) (ast.Expression, error) {
	left, err := c.xorExpr(o.First)
	if err != nil {
		return nil, err
	}
	for _, r := range o.Rest {
		right, err := c.xorExpr(r)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) xorExpr(x *gXorExpr) (ast.Expression, error) {
	left, err := c.andExpr(x.First)
	if err != nil {
		return nil, err
	}
	for _, r := range x.Rest {
		right, err := c.andExpr(r)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.OpXor, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) andExpr(a *gAndExpr) (ast.Expression, error) {
	left, err := c.notExpr(a.First)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Rest {
		right, err := c.notExpr(r)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) notExpr(n *gNotExpr) (ast.Expression, error) {
	operand, err := c.comparisonExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	for range n.Nots {
		if pp, ok := operand.(*ast.PatternPredicate); ok {
			flipped := *pp
			flipped.Negated = !flipped.Negated
			operand = &flipped
			continue
		}
		operand = &ast.Unary{Op: ast.UnaryNot, Operand: operand}
	}
	return operand, nil
}

func (c *converter) comparisonExpr(cmp *gComparisonExpr) (ast.Expression, error) {
	left, err := c.concatExpr(cmp.First)
	if err != nil {
		return nil, err
	}
	for _, tail := range cmp.Ops {
		switch {
		case tail.Simple != nil:
			right, err := c.concatExpr(tail.Simple.Right)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: simpleCompOp(tail.Simple.Op), Left: left, Right: right}
		case tail.InTail != nil:
			right, err := c.concatExpr(tail.InTail)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpIn, Left: left, Right: right}
		case tail.StartsWith != nil:
			right, err := c.concatExpr(tail.StartsWith)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpStartsWith, Left: left, Right: right}
		case tail.EndsWith != nil:
			right, err := c.concatExpr(tail.EndsWith)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpEndsWith, Left: left, Right: right}
		case tail.Contains != nil:
			right, err := c.concatExpr(tail.Contains)
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpContains, Left: left, Right: right}
		case tail.IsNotNull:
			left = &ast.Binary{Op: ast.OpIsNotNull, Left: left}
		case tail.IsNull:
			left = &ast.Binary{Op: ast.OpIsNull, Left: left}
		default:
			return nil, fmt.Errorf("empty comparison tail")
		}
	}
	return left, nil
}

func simpleCompOp(op string) ast.BinaryOp {
	switch op {
	case "=":
		return ast.OpEq
	case "<>":
		return ast.OpNeq
	case "<":
		return ast.OpLt
	case "<=":
		return ast.OpLte
	case ">":
		return ast.OpGt
	case ">=":
		return ast.OpGte
	case "=~":
		return ast.OpRegexMatch
	default:
		return ast.OpEq
	}
}

func (c *converter) concatExpr(e *gConcatExpr) (ast.Expression, error) {
	left, err := c.multiplicativeExpr(e.First)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Ops {
		right, err := c.multiplicativeExpr(tail.Operand)
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch tail.Op {
		case "+":
			op = ast.OpAdd
		case "-":
			op = ast.OpSub
		case "||":
			op = ast.OpConcat
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) multiplicativeExpr(e *gMultiplicativeExpr) (ast.Expression, error) {
	left, err := c.powExpr(e.First)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Ops {
		right, err := c.powExpr(tail.Operand)
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch tail.Op {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) powExpr(e *gPowExpr) (ast.Expression, error) {
	base, err := c.unaryExpr(e.Base)
	if err != nil {
		return nil, err
	}
	if e.Exp == nil {
		return base, nil
	}
	exp, err := c.powExpr(e.Exp)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: ast.OpPow, Left: base, Right: exp}, nil
}

func (c *converter) unaryExpr(e *gUnaryExpr) (ast.Expression, error) {
	operand, err := c.postfixExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "-":
		return &ast.Unary{Op: ast.UnaryNeg, Operand: operand}, nil
	case "+":
		return &ast.Unary{Op: ast.UnaryPlus, Operand: operand}, nil
	default:
		return operand, nil
	}
}

func (c *converter) postfixExpr(e *gPostfixExpr) (ast.Expression, error) {
	result, err := c.atom(e.Atom)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		switch {
		case op.Property != nil:
			result = &ast.PropertyAccess{
				Subject:    result,
				Key:        &ast.Literal{Kind: ast.LiteralString, Str: *op.Property},
				KeyIsIdent: true,
				KeyIdent:   *op.Property,
			}
		case op.Index != nil:
			idx := op.Index
			if idx.Start == nil && !idx.HasRange {
				return nil, cgerr.NewParseError("empty index expression", nil)
			}
			if !idx.HasRange {
				start, err := c.expr(idx.Start)
				if err != nil {
					return nil, err
				}
				result = &ast.BracketAccess{Subject: result, Index: start}
				continue
			}
			var start, end ast.Expression
			if idx.Start != nil {
				start, err = c.expr(idx.Start)
				if err != nil {
					return nil, err
				}
			}
			if idx.End != nil {
				end, err = c.expr(idx.End)
				if err != nil {
					return nil, err
				}
			}
			result = &ast.Slice{Subject: result, Start: start, End: end}
		}
	}
	return result, nil
}

func (c *converter) atom(a *gAtom) (ast.Expression, error) {
	switch {
	case a.Case != nil:
		return c.caseExpr(a.Case)
	case a.ListCompr != nil:
		return c.listComprehension(a.ListCompr)
	case a.PatternCompr != nil:
		return c.patternComprehension(a.PatternCompr)
	case a.PatternPred != nil:
		return c.patternPredicate(a.PatternPred)
	case a.Paren != nil:
		return c.expr(a.Paren)
	case a.List != nil:
		return c.listLiteral(a.List)
	case a.Map != nil:
		return c.mapLiteral(a.Map)
	case a.FuncCall != nil:
		return c.functionCall(a.FuncCall)
	case a.MapProj != nil:
		return c.mapProjection(a.MapProj)
	case a.Literal != nil:
		return literalAtom(a.Literal), nil
	case a.Param != "":
		return &ast.Parameter{Name: strings.TrimPrefix(a.Param, "$")}, nil
	case a.Var != "":
		return &ast.VariableRef{Name: a.Var}, nil
	default:
		return nil, cgerr.NewParseError("empty expression atom", nil)
	}
}

func literalAtom(l *gLiteralAtom) ast.Expression {
	switch {
	case l.Str != nil:
		return &ast.Literal{Kind: ast.LiteralString, Str: unquoteCypherString(*l.Str)}
	case l.Float != nil:
		return &ast.Literal{Kind: ast.LiteralFloat, Float: *l.Float}
	case l.Int != nil:
		return &ast.Literal{Kind: ast.LiteralInt, Int: *l.Int}
	case l.True:
		return &ast.Literal{Kind: ast.LiteralBool, Bool: true}
	case l.False:
		return &ast.Literal{Kind: ast.LiteralBool, Bool: false}
	default:
		return &ast.Literal{Kind: ast.LiteralNull}
	}
}

// unquoteCypherString strips the surrounding quote characters (either
// style is accepted by the lexer) and resolves backslash escapes.
func unquoteCypherString(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i == len(body)-1 {
			b.WriteByte(ch)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\'', '\\':
			b.WriteByte(body[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

func (c *converter) listLiteral(l *gListLiteral) (*ast.ListLiteral, error) {
	elems := make([]ast.Expression, 0, len(l.Elements))
	for _, e := range l.Elements {
		v, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return &ast.ListLiteral{Elements: elems}, nil
}

func (c *converter) functionCall(f *gFunctionCall) (*ast.FunctionCall, error) {
	name := strings.Join(f.Name, ".")
	if f.Wildcard {
		return &ast.FunctionCall{Name: name, Wildcard: true, Distinct: f.Distinct}, nil
	}
	args := make([]ast.Expression, 0, len(f.Args))
	for _, a := range f.Args {
		v, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return &ast.FunctionCall{Name: name, Args: args, Distinct: f.Distinct}, nil
}

func (c *converter) mapProjection(m *gMapProjectionAtom) (*ast.MapProjection, error) {
	items := make([]ast.MapProjectionItem, 0, len(m.Items))
	for _, item := range m.Items {
		switch {
		case item.AllProps:
			items = append(items, ast.MapProjectionItem{Kind: ast.MapProjAllProperties})
		case item.PropName != "":
			items = append(items, ast.MapProjectionItem{Kind: ast.MapProjPropertyName, Name: item.PropName})
		case item.Computed != nil:
			v, err := c.expr(item.Computed.Value)
			if err != nil {
				return nil, err
			}
			items = append(items, ast.MapProjectionItem{Kind: ast.MapProjComputed, Name: item.Computed.Key, Value: v})
		default:
			items = append(items, ast.MapProjectionItem{Kind: ast.MapProjVariable, Name: item.Variable})
		}
	}
	return &ast.MapProjection{Subject: &ast.VariableRef{Name: m.Variable}, Items: items}, nil
}

func (c *converter) listComprehension(l *gListComprehension) (*ast.ListComprehension, error) {
	source, err := c.expr(l.Source)
	if err != nil {
		return nil, err
	}
	var where, projection ast.Expression
	if l.Where != nil {
		if where, err = c.expr(l.Where); err != nil {
			return nil, err
		}
	}
	if l.Projection != nil {
		if projection, err = c.expr(l.Projection); err != nil {
			return nil, err
		}
	}
	return &ast.ListComprehension{Variable: l.Variable, Source: source, Where: where, Projection: projection}, nil
}

func (c *converter) patternComprehension(p *gPatternComprehension) (*ast.PatternComprehension, error) {
	pattern, err := c.pathPattern(p.Pattern)
	if err != nil {
		return nil, err
	}
	var where ast.Expression
	if p.Where != nil {
		if where, err = c.expr(p.Where); err != nil {
			return nil, err
		}
	}
	projection, err := c.expr(p.Projection)
	if err != nil {
		return nil, err
	}
	return &ast.PatternComprehension{Pattern: pattern, Where: where, Projection: projection}, nil
}

func (c *converter) patternPredicate(p *gPatternPredicateAtom) (*ast.PatternPredicate, error) {
	elems, err := c.patternChain(p.Chain.First, p.Chain.Rest)
	if err != nil {
		return nil, err
	}
	return &ast.PatternPredicate{Pattern: &ast.PathPattern{Elements: elems}}, nil
}

func (c *converter) caseExpr(ce *gCaseExpr) (*ast.CaseExpr, error) {
	var discriminant ast.Expression
	var err error
	if ce.Discriminant != nil {
		discriminant, err = c.expr(ce.Discriminant)
		if err != nil {
			return nil, err
		}
	}
	whens := make([]ast.WhenClause, 0, len(ce.Whens))
	for _, w := range ce.Whens {
		cond, err := c.expr(w.Condition)
		if err != nil {
			return nil, err
		}
		result, err := c.expr(w.Result)
		if err != nil {
			return nil, err
		}
		whens = append(whens, ast.WhenClause{Condition: cond, Result: result})
	}
	var elseExpr ast.Expression
	if ce.Else != nil {
		elseExpr, err = c.expr(ce.Else)
		if err != nil {
			return nil, err
		}
	}
	return &ast.CaseExpr{Discriminant: discriminant, Whens: whens, Else: elseExpr}, nil
}
