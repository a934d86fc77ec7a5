// fold.go - O1: constant folding, algebraic simplification, strength
// reduction, and dead-branch/statement trimming (§4.G)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// foldNode is the bottom-up O1 rewrite entry point for a single
// expression: recurse into children first, then attempt folding,
// algebraic simplification, and strength reduction in that order (§4.G).
// It returns the (possibly new) node to use in place of n.
func foldNode(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case ast.KindBinary:
		n.Left = foldNode(n.Left)
		n.Right = foldNode(n.Right)
		return foldBinary(n)
	case ast.KindUnary:
		n.Expr = foldNode(n.Expr)
		return foldUnary(n)
	case ast.KindCast:
		n.Expr = foldNode(n.Expr)
	case ast.KindArrayAccess:
		n.Array = foldNode(n.Array)
		n.Index = foldNode(n.Index)
	case ast.KindMemberAccess:
		n.Object = foldNode(n.Object)
	case ast.KindCall:
		for i, arg := range n.Children {
			n.Children[i] = foldNode(arg)
		}
	case ast.KindAssign:
		n.Lhs = foldNode(n.Lhs)
		n.Rhs = foldNode(n.Rhs)
	}
	return n
}

// foldUnary folds neg/not/bitnot of a constant operand and collapses
// double negation (§4.G: "collapses -(-x) → x and ~~x → x").
func foldUnary(n *ast.Node) *ast.Node {
	if n.Expr == nil {
		return n
	}
	if n.Expr.IsConstant() {
		if v, ok := ast.EvalUnary(n.Op, n.Expr.IntValue); ok {
			return ast.Int(v)
		}
	}
	if n.Expr.Kind == ast.KindUnary && n.Expr.Op == n.Op && (n.Op == ast.OpNeg || n.Op == ast.OpBitNot) {
		return n.Expr.Expr
	}
	return n
}

// foldBinary applies constant folding, then algebraic identities and
// strength reduction (§4.G).
func foldBinary(n *ast.Node) *ast.Node {
	l, r := n.Left, n.Right

	if l.IsConstant() && r.IsConstant() {
		if v, ok := ast.EvalBinary(n.Op, l.IntValue, r.IntValue); ok {
			return ast.Int(v)
		}
		return n
	}

	if simplified := algebraicSimplify(n, l, r); simplified != nil {
		return simplified
	}
	if reduced := strengthReduce(n, l, r); reduced != nil {
		return reduced
	}
	return n
}

// algebraicSimplify applies the identity/annihilator table from §4.G:
// `x+0,0+x,x-0,x*1,1*x,x/1,x|0,0|x,x^0,0^x,x<<0,x>>0 → x`;
// `x*0,0*x,x&0,0&x → 0`.
func algebraicSimplify(n, l, r *ast.Node) *ast.Node {
	switch n.Op {
	case ast.OpAdd:
		if isZero(r) {
			return l
		}
		if isZero(l) {
			return r
		}
	case ast.OpSub:
		if isZero(r) {
			return l
		}
	case ast.OpMul:
		if isOne(r) {
			return l
		}
		if isOne(l) {
			return r
		}
		if isZero(l) || isZero(r) {
			return ast.Int(0)
		}
	case ast.OpDiv:
		if isOne(r) {
			return l
		}
	case ast.OpOr:
		if isZero(r) {
			return l
		}
		if isZero(l) {
			return r
		}
	case ast.OpXor:
		if isZero(r) {
			return l
		}
		if isZero(l) {
			return r
		}
	case ast.OpAnd:
		if isZero(l) || isZero(r) {
			return ast.Int(0)
		}
	case ast.OpShl, ast.OpShr:
		if isZero(r) {
			return l
		}
	}
	return nil
}

// strengthReduce rewrites `x*2^n`, `x/2^n`, `x%2^n` into shift/and,
// swapping operand order for multiply when the constant is on the left
// (§4.G).
func strengthReduce(n, l, r *ast.Node) *ast.Node {
	switch n.Op {
	case ast.OpMul:
		if r.IsConstant() && ast.IsPowerOfTwo(r.IntValue) {
			return &ast.Node{Kind: ast.KindBinary, Op: ast.OpShl, Left: l, Right: ast.Int(int64(ast.Log2(r.IntValue))), ResolvedType: n.ResolvedType}
		}
		if l.IsConstant() && ast.IsPowerOfTwo(l.IntValue) {
			return &ast.Node{Kind: ast.KindBinary, Op: ast.OpShl, Left: r, Right: ast.Int(int64(ast.Log2(l.IntValue))), ResolvedType: n.ResolvedType}
		}
	case ast.OpDiv:
		if r.IsConstant() && ast.IsPowerOfTwo(r.IntValue) {
			return &ast.Node{Kind: ast.KindBinary, Op: ast.OpShr, Left: l, Right: ast.Int(int64(ast.Log2(r.IntValue))), ResolvedType: n.ResolvedType}
		}
	case ast.OpMod:
		if r.IsConstant() && ast.IsPowerOfTwo(r.IntValue) {
			return &ast.Node{Kind: ast.KindBinary, Op: ast.OpAnd, Left: l, Right: ast.Int(r.IntValue - 1), ResolvedType: n.ResolvedType}
		}
	}
	return nil
}

func isZero(n *ast.Node) bool { return n.IsConstant() && n.IntValue == 0 }
func isOne(n *ast.Node) bool  { return n.IsConstant() && n.IntValue == 1 }
