// walk.go - generic tree utilities shared by the optimizer passes

package ast

// CountNodes returns the number of nodes in the subtree rooted at n,
// including n itself. Used by the single-expression inliner's size limit
// (§4.J), the unroller's body-size check (§4.M), and Run's fold
// statistics; the statement inliner (§4.L) counts statements instead.
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	count += CountNodes(n.Left)
	count += CountNodes(n.Right)
	count += CountNodes(n.Expr)
	count += CountNodes(n.Array)
	count += CountNodes(n.Index)
	count += CountNodes(n.Object)
	count += CountNodes(n.Initializer)
	count += CountNodes(n.Lhs)
	count += CountNodes(n.Rhs)
	count += CountNodes(n.Cond)
	count += CountNodes(n.Then)
	count += CountNodes(n.Else)
	count += CountNodes(n.Init)
	count += CountNodes(n.Step)
	count += CountNodes(n.Body)
	for _, c := range n.Children {
		count += CountNodes(c)
	}
	return count
}

// ContainsGotoOrLabel reports whether the subtree contains a goto or label,
// used by the O3 eligibility check (§4.L) which excludes such functions.
func ContainsGotoOrLabel(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == KindGoto || n.Kind == KindLabel {
		return true
	}
	return ContainsGotoOrLabel(n.Left) || ContainsGotoOrLabel(n.Right) ||
		ContainsGotoOrLabel(n.Expr) || ContainsGotoOrLabel(n.Then) ||
		ContainsGotoOrLabel(n.Else) || ContainsGotoOrLabel(n.Init) ||
		ContainsGotoOrLabel(n.Step) || ContainsGotoOrLabel(n.Body) ||
		containsInChildren(n.Children, ContainsGotoOrLabel)
}

// ContainsLoop reports whether the subtree contains a while/do_while/for,
// used by the O3 eligibility check (§4.L: "no loops").
func ContainsLoop(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindWhile, KindDoWhile, KindFor:
		return true
	}
	return ContainsLoop(n.Left) || ContainsLoop(n.Right) || ContainsLoop(n.Expr) ||
		ContainsLoop(n.Then) || ContainsLoop(n.Else) || ContainsLoop(n.Body) ||
		containsInChildren(n.Children, ContainsLoop)
}

// ContainsTopLevelBreakOrContinue reports whether a break/continue appears
// in n's own statement list without being nested inside a further loop or
// switch (which would bind it), used by §4.L eligibility.
func ContainsTopLevelBreakOrContinue(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindBreak, KindContinue:
		return true
	case KindWhile, KindDoWhile, KindFor, KindSwitch:
		return false // break/continue inside these bind to them, not the caller
	case KindBlock:
		for _, c := range n.Children {
			if ContainsTopLevelBreakOrContinue(c) {
				return true
			}
		}
		return false
	case KindIf:
		return ContainsTopLevelBreakOrContinue(n.Then) || ContainsTopLevelBreakOrContinue(n.Else)
	}
	return false
}

// ContainsStaticLocal reports whether a var_decl with IsStatic appears in
// the subtree, used by §4.L eligibility ("no static locals").
func ContainsStaticLocal(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == KindVarDecl && n.IsStatic {
		return true
	}
	return ContainsStaticLocal(n.Then) || ContainsStaticLocal(n.Else) ||
		ContainsStaticLocal(n.Init) || ContainsStaticLocal(n.Step) || ContainsStaticLocal(n.Body) ||
		containsInChildren(n.Children, ContainsStaticLocal)
}

func containsInChildren(children []*Node, pred func(*Node) bool) bool {
	for _, c := range children {
		if pred(c) {
			return true
		}
	}
	return false
}

// FindFirstCall searches n depth-first for the first call expression,
// descending into binary expressions, casts, unary ops, array/member
// access, and conditionals (§4.L: "It searches inside binary expressions,
// casts, unary ops, array/member access, and conditionals to find the
// first call — not merely top-level calls"). It returns the call node and
// a replace function that overwrites it in place.
func FindFirstCall(n *Node) (call *Node, replace func(*Node)) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == KindCall {
		return n, func(repl *Node) { *n = *repl }
	}
	switch n.Kind {
	case KindBinary:
		if c, r := FindFirstCall(n.Left); c != nil {
			return c, r
		}
		return FindFirstCall(n.Right)
	case KindUnary:
		return FindFirstCall(n.Expr)
	case KindCast:
		return FindFirstCall(n.Expr)
	case KindArrayAccess:
		if c, r := FindFirstCall(n.Array); c != nil {
			return c, r
		}
		return FindFirstCall(n.Index)
	case KindMemberAccess:
		return FindFirstCall(n.Object)
	case KindIf: // ternary-in-expression-position
		if c, r := FindFirstCall(n.Cond); c != nil {
			return c, r
		}
		if c, r := FindFirstCall(n.Then); c != nil {
			return c, r
		}
		return FindFirstCall(n.Else)
	}
	return nil, nil
}
