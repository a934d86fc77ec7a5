// strength_iv.go - induction-variable strength reduction (§4.K)

package optimize

import (
	"strconv"

	"github.com/fador/fadors-c99-sub002/ast"
)

// loopShape captures the loop-variable facts RunIVStrengthReduction needs:
// the variable name, its constant initial value, and its per-iteration
// constant step.
type loopShape struct {
	varName string
	init    int64
	step    int64
}

// RunIVStrengthReduction scans loop for `var * CONST` uses of the loop
// variable and introduces a fresh induction variable for each distinct
// CONST (§4.K). Only `for` loops are transformed; `while` loops, and loops
// whose body contains a top-level break or continue, are left unchanged.
// Mutates loop in place by prepending the IV declarations to the enclosing
// block (via the returned prelude) and appending the IV increments to the
// loop body.
func RunIVStrengthReduction(loop *ast.Node) (prelude []*ast.Node) {
	if loop == nil || (loop.Kind != ast.KindWhile && loop.Kind != ast.KindFor) {
		return nil
	}
	shape, ok := detectLoopShape(loop)
	if !ok {
		return nil
	}
	if ast.ContainsTopLevelBreakOrContinue(loop.Then) {
		return nil
	}

	consts := collectMultiplierConstants(loop.Then, shape.varName)
	if len(consts) == 0 {
		return nil
	}

	ivSeq := 0
	for _, k := range consts {
		ivSeq++
		ivName := ivFreshName(ivSeq)
		replaceMultiplier(loop.Then, shape.varName, k, ivName)

		prelude = append(prelude, &ast.Node{
			Kind: ast.KindVarDecl, Name: ivName,
			Initializer: ast.Int(shape.init * k),
		})
		appendIVIncrement(loop, ivName, shape.step*k)
	}
	return prelude
}

func ivFreshName(seq int) string {
	return "_iv" + strconv.Itoa(seq)
}

// detectLoopShape recognizes a constant-initialized loop variable with a
// linear `i = i + STEP` increment (§4.K).
func detectLoopShape(loop *ast.Node) (loopShape, bool) {
	var initNode, stepNode *ast.Node
	if loop.Kind == ast.KindFor {
		initNode, stepNode = loop.Init, loop.Step
	} else {
		return loopShape{}, false // while-loop IV strength reduction needs an explicit init this shape doesn't track
	}
	if initNode == nil || stepNode == nil {
		return loopShape{}, false
	}

	var name string
	var init int64
	switch initNode.Kind {
	case ast.KindVarDecl:
		if initNode.Initializer == nil || !initNode.Initializer.IsConstant() {
			return loopShape{}, false
		}
		name, init = initNode.Name, initNode.Initializer.IntValue
	case ast.KindAssign:
		if initNode.Lhs == nil || initNode.Lhs.Kind != ast.KindIdentifier || !initNode.Rhs.IsConstant() {
			return loopShape{}, false
		}
		name, init = initNode.Lhs.Name, initNode.Rhs.IntValue
	default:
		return loopShape{}, false
	}

	step, ok := linearStep(stepNode, name)
	if !ok {
		return loopShape{}, false
	}
	return loopShape{varName: name, init: init, step: step}, true
}

// linearStep recognizes `i = i + STEP` (either operand order) as an
// assign-statement step clause.
func linearStep(step *ast.Node, name string) (int64, bool) {
	if step.Kind != ast.KindAssign || step.Lhs == nil || step.Lhs.Kind != ast.KindIdentifier || step.Lhs.Name != name {
		return 0, false
	}
	rhs := step.Rhs
	if rhs == nil || rhs.Kind != ast.KindBinary || rhs.Op != ast.OpAdd {
		return 0, false
	}
	if rhs.Left.Kind == ast.KindIdentifier && rhs.Left.Name == name && rhs.Right.IsConstant() {
		return rhs.Right.IntValue, true
	}
	if rhs.Right.Kind == ast.KindIdentifier && rhs.Right.Name == name && rhs.Left.IsConstant() {
		return rhs.Left.IntValue, true
	}
	return 0, false
}

// collectMultiplierConstants finds every distinct CONST in a `var * CONST`
// (or `CONST * var`) expression referencing varName within body.
func collectMultiplierConstants(body *ast.Node, varName string) []int64 {
	seen := map[int64]bool{}
	var out []int64
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindBinary && n.Op == ast.OpMul {
			if k, ok := varTimesConst(n, varName); ok && !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
			n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
			walk(c)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(body)
	return out
}

func varTimesConst(n *ast.Node, varName string) (int64, bool) {
	if n.Left.Kind == ast.KindIdentifier && n.Left.Name == varName && n.Right.IsConstant() {
		return n.Right.IntValue, true
	}
	if n.Right.Kind == ast.KindIdentifier && n.Right.Name == varName && n.Left.IsConstant() {
		return n.Left.IntValue, true
	}
	return 0, false
}

// replaceMultiplier replaces every `varName * k` / `k * varName` node in
// body with a reference to ivName.
func replaceMultiplier(n *ast.Node, varName string, k int64, ivName string) {
	if n == nil {
		return
	}
	for _, slot := range []**ast.Node{&n.Left, &n.Right, &n.Expr, &n.Array, &n.Index, &n.Object,
		&n.Initializer, &n.Lhs, &n.Rhs, &n.Cond, &n.Then, &n.Else, &n.Init, &n.Step, &n.Body} {
		if *slot == nil {
			continue
		}
		if c, ok := varTimesConst(*slot, varName); ok && c == k && (*slot).Kind == ast.KindBinary && (*slot).Op == ast.OpMul {
			*slot = ast.Ident(ivName)
			continue
		}
		replaceMultiplier(*slot, varName, k, ivName)
	}
	for i := range n.Children {
		if c, ok := varTimesConst(n.Children[i], varName); ok && c == k && n.Children[i].Kind == ast.KindBinary && n.Children[i].Op == ast.OpMul {
			n.Children[i] = ast.Ident(ivName)
			continue
		}
		replaceMultiplier(n.Children[i], varName, k, ivName)
	}
}

// appendIVIncrement appends `_ivK = _ivK + STEP*CONST` as the last
// statement of the loop body rather than to the step clause (§4.K). This
// is equivalent because RunIVStrengthReduction only transforms loops with
// no top-level break or continue, so the end of the body is reached right
// before the step on every iteration.
func appendIVIncrement(loop *ast.Node, ivName string, delta int64) {
	incr := &ast.Node{
		Kind: ast.KindAssign,
		Lhs:  ast.Ident(ivName),
		Rhs:  &ast.Node{Kind: ast.KindBinary, Op: ast.OpAdd, Left: ast.Ident(ivName), Right: ast.Int(delta)},
	}
	if loop.Then == nil || loop.Then.Kind != ast.KindBlock {
		block := &ast.Node{Kind: ast.KindBlock}
		if loop.Then != nil {
			block.Children = append(block.Children, loop.Then)
		}
		loop.Then = block
	}
	loop.Then.Children = append(loop.Then.Children, incr)
}
