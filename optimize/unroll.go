// unroll.go - full loop unrolling (§4.M)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// unrollMaxIterations follows the corpus's higher-bound revision (8, not
// 4): the 4-iteration revision fails §8 Scenario 2's mandatory 5-iteration
// full unroll.
const unrollMaxIterations = 8
const unrollMaxBodyNodes = 50

// UnrollLoop analyzes a `for` node for the canonical counted shape and,
// when the full-unroll decision applies, returns a replacement block;
// otherwise returns nil and the caller should keep the loop as-is (§4.M).
// Applying this to an already-unrolled block (no longer a `for`) is a
// no-op by construction, satisfying §8's idempotence property.
func UnrollLoop(loop *ast.Node) *ast.Node {
	if loop == nil || loop.Kind != ast.KindFor {
		return nil
	}
	varName, a, ok := canonicalInit(loop.Init)
	if !ok {
		return nil
	}
	relOp, b, ok := canonicalCond(loop.Cond, varName)
	if !ok {
		return nil
	}
	if !canonicalStep(loop.Step, varName) {
		return nil
	}

	n := iterationCount(relOp, a, b)
	if n <= 0 || n > unrollMaxIterations {
		return nil
	}
	if ast.ContainsGotoOrLabel(loop.Then) || containsFlowControl(loop.Then) {
		return nil
	}
	if ast.CountNodes(loop.Then) > unrollMaxBodyNodes {
		return nil
	}

	out := &ast.Node{Kind: ast.KindBlock}
	for i := int64(0); i < n; i++ {
		iter := a + i
		clone := loop.Then.Clone()
		substituteLoopVar(clone, varName, iter)
		out.Children = append(out.Children, foldStmt(clone))
	}
	return out
}

// containsFlowControl reports whether a loop body contains break/continue
// that would make per-iteration duplication unsound (§4.M: "body has no
// flow control").
func containsFlowControl(body *ast.Node) bool {
	return ast.ContainsTopLevelBreakOrContinue(body) || containsNestedBreakContinue(body)
}

func containsNestedBreakContinue(n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindBreak, ast.KindContinue:
		return true
	case ast.KindBlock:
		for _, c := range n.Children {
			if containsNestedBreakContinue(c) {
				return true
			}
		}
		return false
	case ast.KindIf:
		return containsNestedBreakContinue(n.Then) || containsNestedBreakContinue(n.Else)
	case ast.KindWhile, ast.KindDoWhile, ast.KindFor, ast.KindSwitch:
		return false // bound by the nested construct, not this loop
	}
	return false
}

func canonicalInit(init *ast.Node) (varName string, a int64, ok bool) {
	if init == nil {
		return "", 0, false
	}
	switch init.Kind {
	case ast.KindVarDecl:
		if init.Initializer != nil && init.Initializer.IsConstant() {
			return init.Name, init.Initializer.IntValue, true
		}
	case ast.KindAssign:
		if init.Lhs != nil && init.Lhs.Kind == ast.KindIdentifier && init.Rhs.IsConstant() {
			return init.Lhs.Name, init.Rhs.IntValue, true
		}
	}
	return "", 0, false
}

func canonicalCond(cond *ast.Node, varName string) (op ast.TokenOp, b int64, ok bool) {
	if cond == nil || cond.Kind != ast.KindBinary {
		return 0, 0, false
	}
	if cond.Op != ast.OpLt && cond.Op != ast.OpLe && cond.Op != ast.OpNe {
		return 0, 0, false
	}
	if cond.Left.Kind == ast.KindIdentifier && cond.Left.Name == varName && cond.Right.IsConstant() {
		return cond.Op, cond.Right.IntValue, true
	}
	return 0, 0, false
}

func canonicalStep(step *ast.Node, varName string) bool {
	if step == nil {
		return false
	}
	switch step.Kind {
	case ast.KindUnary:
		return (step.Op == ast.OpPreInc || step.Op == ast.OpPostInc) &&
			step.Expr != nil && step.Expr.Kind == ast.KindIdentifier && step.Expr.Name == varName
	case ast.KindAssign:
		if step.Lhs == nil || step.Lhs.Kind != ast.KindIdentifier || step.Lhs.Name != varName {
			return false
		}
		rhs := step.Rhs
		if rhs == nil || rhs.Kind != ast.KindBinary || rhs.Op != ast.OpAdd {
			return false
		}
		oneOnRight := rhs.Right.IsConstant() && rhs.Right.IntValue == 1 && rhs.Left.Kind == ast.KindIdentifier && rhs.Left.Name == varName
		oneOnLeft := rhs.Left.IsConstant() && rhs.Left.IntValue == 1 && rhs.Right.Kind == ast.KindIdentifier && rhs.Right.Name == varName
		return oneOnRight || oneOnLeft
	}
	return false
}

// iterationCount implements §4.M's formula per comparison operator.
func iterationCount(op ast.TokenOp, a, b int64) int64 {
	switch op {
	case ast.OpLt:
		return b - a
	case ast.OpLe:
		return b - a + 1
	case ast.OpNe:
		return b - a
	}
	return 0
}

// substituteLoopVar replaces every reference to varName in n with the
// concrete iteration value.
func substituteLoopVar(n *ast.Node, varName string, value int64) {
	if n == nil {
		return
	}
	for _, slot := range []**ast.Node{&n.Left, &n.Right, &n.Expr, &n.Array, &n.Index, &n.Object,
		&n.Initializer, &n.Lhs, &n.Rhs, &n.Cond} {
		if *slot != nil && (*slot).Kind == ast.KindIdentifier && (*slot).Name == varName {
			*slot = ast.Int(value)
			continue
		}
		substituteLoopVar(*slot, varName, value)
	}
	substituteLoopVar(n.Then, varName, value)
	substituteLoopVar(n.Else, varName, value)
	for i := range n.Children {
		if n.Children[i] != nil && n.Children[i].Kind == ast.KindIdentifier && n.Children[i].Name == varName {
			n.Children[i] = ast.Int(value)
			continue
		}
		substituteLoopVar(n.Children[i], varName, value)
	}
}
