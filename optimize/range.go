// range.go - assert-driven range analysis (§4.H)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// varRange tracks what is known about a variable's value within a block
// after the assert statements seen so far (§4.H).
type varRange struct {
	min, max     int64
	isPowerOfTwo bool
	exact        bool
}

// rangeEnv is the per-block scratch table, bounded per §5 ("scratch
// tables are bounded-size... overflow is handled by silently refusing to
// record further entries").
type rangeEnv struct {
	bindings map[string]*varRange
	maxSize  int
}

func newRangeEnv(maxSize int) *rangeEnv {
	return &rangeEnv{bindings: make(map[string]*varRange), maxSize: maxSize}
}

func (e *rangeEnv) get(name string) (*varRange, bool) {
	r, ok := e.bindings[name]
	return r, ok
}

func (e *rangeEnv) set(name string, r *varRange) {
	if _, exists := e.bindings[name]; !exists && len(e.bindings) >= e.maxSize {
		return
	}
	e.bindings[name] = r
}

func (e *rangeEnv) drop(name string) {
	delete(e.bindings, name)
}

// RunRangeAnalysis applies §4.H to a block: a single linear pass that
// refines the environment on `assert` statements and substitutes `exact`
// bindings into the statements that follow. Substitution covers
// assignment right-hand sides, declaration initializers, return values and
// if/switch conditions; other statements are left as they are. Each nested
// block (if/loop/switch body, inner block) is analysed with a fresh, empty
// environment, so refinements made outside it are not substituted inside.
func RunRangeAnalysis(block *ast.Node, opts Options) {
	if block == nil || block.Kind != ast.KindBlock {
		return
	}
	env := newRangeEnv(opts.MaxRanges)
	for _, stmt := range block.Children {
		applyRangeStmt(stmt, env)
	}
}

func applyRangeStmt(n *ast.Node, env *rangeEnv) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindAssert:
		refineFromAssert(n.Expr, env)
	case ast.KindAssign:
		substituteExact(&n.Rhs, env)
		n.Rhs = foldNode(n.Rhs)
		if n.Lhs != nil && n.Lhs.Kind == ast.KindIdentifier {
			env.drop(n.Lhs.Name)
		}
	case ast.KindVarDecl:
		substituteExact(&n.Initializer, env)
		n.Initializer = foldNode(n.Initializer)
		env.drop(n.Name)
	case ast.KindReturn:
		substituteExact(&n.Expr, env)
		n.Expr = foldNode(n.Expr)
	case ast.KindIf:
		substituteExact(&n.Cond, env)
		n.Cond = foldNode(n.Cond)
		RunRangeAnalysis(n.Then, Options{MaxRanges: env.maxSize})
		RunRangeAnalysis(n.Else, Options{MaxRanges: env.maxSize})
	case ast.KindWhile, ast.KindDoWhile, ast.KindFor:
		RunRangeAnalysis(n.Then, Options{MaxRanges: env.maxSize})
	case ast.KindSwitch:
		substituteExact(&n.Cond, env)
		n.Cond = foldNode(n.Cond)
		RunRangeAnalysis(n.Then, Options{MaxRanges: env.maxSize})
	case ast.KindBlock:
		RunRangeAnalysis(n, Options{MaxRanges: env.maxSize})
	}
}

// refineFromAssert decomposes `&&` chains and recognizes the two
// recognized refinement shapes (§4.H).
func refineFromAssert(cond *ast.Node, env *rangeEnv) {
	if cond == nil {
		return
	}
	if cond.Kind == ast.KindBinary && cond.Op == ast.OpLAnd {
		refineFromAssert(cond.Left, env)
		refineFromAssert(cond.Right, env)
		return
	}
	if name, ok := powerOfTwoPattern(cond); ok {
		r, exists := env.get(name)
		if !exists {
			r = &varRange{min: minInt64, max: maxInt64}
		}
		cp := *r
		cp.isPowerOfTwo = true
		env.set(name, &cp)
		return
	}
	if cond.Kind == ast.KindBinary && cond.Op.IsComparison() {
		tightenComparison(cond, env)
	}
}

const minInt64 = -1 << 63
const maxInt64 = 1<<63 - 1

// powerOfTwoPattern matches `(x & (x-1)) == 0` in either operand order
// (§4.H).
func powerOfTwoPattern(cond *ast.Node) (string, bool) {
	if cond.Op != ast.OpEq {
		return "", false
	}
	for _, side := range []*ast.Node{cond.Left, cond.Right} {
		other := cond.Right
		if side == cond.Right {
			other = cond.Left
		}
		if !other.IsConstant() || other.IntValue != 0 {
			continue
		}
		if side.Kind != ast.KindBinary || side.Op != ast.OpAnd {
			continue
		}
		name, ok := xAndXMinus1(side.Left, side.Right)
		if ok {
			return name, true
		}
	}
	return "", false
}

func xAndXMinus1(a, b *ast.Node) (string, bool) {
	for _, pair := range [][2]*ast.Node{{a, b}, {b, a}} {
		x, xm1 := pair[0], pair[1]
		if x.Kind != ast.KindIdentifier {
			continue
		}
		if xm1.Kind == ast.KindBinary && xm1.Op == ast.OpSub &&
			xm1.Left.Kind == ast.KindIdentifier && xm1.Left.Name == x.Name &&
			xm1.Right.IsConstant() && xm1.Right.IntValue == 1 {
			return x.Name, true
		}
	}
	return "", false
}

// tightenComparison handles `x REL const` or `const REL x` (§4.H).
func tightenComparison(cond *ast.Node, env *rangeEnv) {
	var name string
	var op ast.TokenOp
	var c int64

	switch {
	case cond.Left.Kind == ast.KindIdentifier && cond.Right.IsConstant():
		name, op, c = cond.Left.Name, cond.Op, cond.Right.IntValue
	case cond.Right.Kind == ast.KindIdentifier && cond.Left.IsConstant():
		name, op, c = cond.Right.Name, mirrorRel(cond.Op), cond.Left.IntValue
	default:
		return
	}

	r, exists := env.get(name)
	if !exists {
		r = &varRange{min: minInt64, max: maxInt64}
	}
	cp := *r
	switch op {
	case ast.OpLt:
		if c-1 < cp.max {
			cp.max = c - 1
		}
	case ast.OpLe:
		if c < cp.max {
			cp.max = c
		}
	case ast.OpGt:
		if c+1 > cp.min {
			cp.min = c + 1
		}
	case ast.OpGe:
		if c > cp.min {
			cp.min = c
		}
	case ast.OpEq:
		cp.min, cp.max = c, c
	default:
		return
	}
	if cp.min == cp.max {
		cp.exact = true
	}
	env.set(name, &cp)
}

// mirrorRel flips a relational operator's sense when operands were
// swapped (`const REL x` -> `x REL' const`).
func mirrorRel(op ast.TokenOp) ast.TokenOp {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLe:
		return ast.OpGe
	case ast.OpGe:
		return ast.OpLe
	}
	return op
}

// substituteExact replaces identifier references to `exact`-bound
// variables with their integer value throughout the expression (§4.H).
func substituteExact(np **ast.Node, env *rangeEnv) {
	n := *np
	if n == nil {
		return
	}
	if n.Kind == ast.KindIdentifier {
		if r, ok := env.get(n.Name); ok && r.exact {
			*np = ast.Int(r.min)
		}
		return
	}
	switch n.Kind {
	case ast.KindBinary:
		substituteExact(&n.Left, env)
		substituteExact(&n.Right, env)
	case ast.KindUnary:
		if n.Op == ast.OpAddr {
			return // §4.H/§8: never substitute into the operand of &
		}
		substituteExact(&n.Expr, env)
	case ast.KindCast:
		substituteExact(&n.Expr, env)
	case ast.KindArrayAccess:
		substituteExact(&n.Array, env)
		substituteExact(&n.Index, env)
	case ast.KindMemberAccess:
		substituteExact(&n.Object, env)
	case ast.KindCall:
		for i := range n.Children {
			substituteExact(&n.Children[i], env)
		}
	}
}
