// inline_expr.go - O2 single-expression inliner (§4.J)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// exprCandidate is a function eligible for single-expression inlining:
// its body is exactly `return e;` with e small enough (or always_inline).
type exprCandidate struct {
	fn     *ast.Node
	params []string
	expr   *ast.Node
}

// findExprCandidates scans program's functions for §4.J's eligibility
// shape, bounded by opts.MaxInlineCandidates.
func findExprCandidates(program []*ast.Node, opts Options, sizeLimit int) map[string]exprCandidate {
	out := make(map[string]exprCandidate)
	for _, fn := range program {
		if fn.Kind != ast.KindFunction || fn.Body == nil {
			continue
		}
		if fn.InlineHint == -1 { // noinline
			continue
		}
		if len(fn.Body.Children) != 1 || fn.Body.Children[0].Kind != ast.KindReturn {
			continue
		}
		e := fn.Body.Children[0].Expr
		if e == nil {
			continue
		}
		limit := sizeLimit
		if fn.InlineHint == 2 { // always_inline bypasses the size limit
			limit = -1
		}
		if limit >= 0 && ast.CountNodes(e) > limit {
			continue
		}
		if len(out) >= opts.MaxInlineCandidates {
			break
		}
		params := make([]string, len(fn.Children))
		for i, p := range fn.Children {
			params[i] = p.Name
		}
		out[fn.Name] = exprCandidate{fn: fn, params: params, expr: e}
	}
	return out
}

// InlineExprCalls rewrites every call to a candidate within n, replacing
// it with a deep clone of the candidate's expression with parameters
// substituted by the (pure) call arguments, then re-folds the result
// (§4.J). Returns the number of call sites inlined.
func InlineExprCalls(n *ast.Node, candidates map[string]exprCandidate) int {
	if n == nil {
		return 0
	}
	count := 0
	walkAndInlineExpr(n, candidates, &count)
	return count
}

func walkAndInlineExpr(n *ast.Node, candidates map[string]exprCandidate, count *int) {
	if n == nil {
		return
	}
	for _, child := range directChildren(n) {
		walkAndInlineExpr(*child, candidates, count)
	}
	for i := range n.Children {
		walkAndInlineExpr(n.Children[i], candidates, count)
	}

	tryInlineExprAt(&n.Left, candidates, count)
	tryInlineExprAt(&n.Right, candidates, count)
	tryInlineExprAt(&n.Expr, candidates, count)
	tryInlineExprAt(&n.Array, candidates, count)
	tryInlineExprAt(&n.Index, candidates, count)
	tryInlineExprAt(&n.Object, candidates, count)
	tryInlineExprAt(&n.Initializer, candidates, count)
	tryInlineExprAt(&n.Lhs, candidates, count)
	tryInlineExprAt(&n.Rhs, candidates, count)
	tryInlineExprAt(&n.Cond, candidates, count)
	for i := range n.Children {
		tryInlineExprAt(&n.Children[i], candidates, count)
	}
}

// directChildren returns pointer slots for the statement-shaped fields so
// the generic walker can descend into them uniformly.
func directChildren(n *ast.Node) []**ast.Node {
	return []**ast.Node{&n.Then, &n.Else, &n.Body, &n.Init, &n.Step}
}

// tryInlineExprAt inlines *slot in place if it is (or contains, via a
// nested call the substitution doesn't need to find — this covers only
// the slot itself, which the recursive walk above reaches for every
// field) a call to a candidate with pure arguments.
func tryInlineExprAt(slot **ast.Node, candidates map[string]exprCandidate, count *int) {
	n := *slot
	if n == nil {
		return
	}
	if n.Kind == ast.KindCall {
		if cand, ok := candidates[n.Name]; ok && allArgsPure(n.Children) {
			repl := substituteExprCandidate(cand, n.Children)
			repl.ResolvedType = n.ResolvedType
			*slot = repl
			*count++
			return
		}
	}
}

func allArgsPure(args []*ast.Node) bool {
	for _, a := range args {
		if !a.IsPure() {
			return false
		}
	}
	return true
}

// substituteExprCandidate clones cand.expr, replaces parameter
// identifiers with the call's argument expressions, and re-folds (§4.J);
// tryInlineExprAt then gives the result the call site's resolved type.
func substituteExprCandidate(cand exprCandidate, args []*ast.Node) *ast.Node {
	clone := cand.expr.Clone()
	argByName := make(map[string]*ast.Node, len(cand.params))
	for i, p := range cand.params {
		if i < len(args) {
			argByName[p] = args[i]
		}
	}
	replaced := substituteParams(clone, argByName)
	return foldNode(replaced)
}

// substituteParams walks an expression and replaces identifier leaves
// that name a parameter with a clone of the corresponding argument.
func substituteParams(n *ast.Node, args map[string]*ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindIdentifier {
		if arg, ok := args[n.Name]; ok {
			return arg.Clone()
		}
		return n
	}
	switch n.Kind {
	case ast.KindBinary:
		n.Left = substituteParams(n.Left, args)
		n.Right = substituteParams(n.Right, args)
	case ast.KindUnary:
		n.Expr = substituteParams(n.Expr, args)
	case ast.KindCast:
		n.Expr = substituteParams(n.Expr, args)
	case ast.KindArrayAccess:
		n.Array = substituteParams(n.Array, args)
		n.Index = substituteParams(n.Index, args)
	case ast.KindMemberAccess:
		n.Object = substituteParams(n.Object, args)
	case ast.KindCall:
		for i := range n.Children {
			n.Children[i] = substituteParams(n.Children[i], args)
		}
	case ast.KindIf:
		n.Cond = substituteParams(n.Cond, args)
		n.Then = substituteParams(n.Then, args)
		n.Else = substituteParams(n.Else, args)
	}
	return n
}
