package optimize

import (
	"testing"

	"github.com/fador/fadors-c99-sub002/ast"
)

// Scenario 1 (§8): int f() { return 3 + 4 * 2; } at O1 yields return 11;
func TestO1FoldsConstantExpression(t *testing.T) {
	expr := &ast.Node{
		Kind: ast.KindBinary, Op: ast.OpAdd,
		Left:  ast.Int(3),
		Right: &ast.Node{Kind: ast.KindBinary, Op: ast.OpMul, Left: ast.Int(4), Right: ast.Int(2)},
	}
	fn := &ast.Node{
		Kind: ast.KindFunction, Name: "f",
		Body: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			{Kind: ast.KindReturn, Expr: expr},
		}},
	}

	RunO1(fn)

	ret := fn.Body.Children[0]
	if !ret.Expr.IsConstant() || ret.Expr.IntValue != 11 {
		t.Fatalf("expected return 11, got %+v", ret.Expr)
	}
}

func TestAlgebraicIdentities(t *testing.T) {
	cases := []struct {
		name string
		expr *ast.Node
		want int64
		id   bool // true if the result should be the untouched identifier node
	}{
		{"x+0", &ast.Node{Kind: ast.KindBinary, Op: ast.OpAdd, Left: ast.Ident("x"), Right: ast.Int(0)}, 0, true},
		{"x*1", &ast.Node{Kind: ast.KindBinary, Op: ast.OpMul, Left: ast.Ident("x"), Right: ast.Int(1)}, 0, true},
		{"x*0", &ast.Node{Kind: ast.KindBinary, Op: ast.OpMul, Left: ast.Ident("x"), Right: ast.Int(0)}, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := foldNode(c.expr)
			if c.id {
				if got.Kind != ast.KindIdentifier || got.Name != "x" {
					t.Fatalf("expected identifier x, got %+v", got)
				}
				return
			}
			if !got.IsConstant() || got.IntValue != c.want {
				t.Fatalf("expected constant %d, got %+v", c.want, got)
			}
		})
	}
}

func TestStrengthReductionMulPowerOfTwo(t *testing.T) {
	expr := &ast.Node{Kind: ast.KindBinary, Op: ast.OpMul, Left: ast.Ident("x"), Right: ast.Int(8)}
	got := foldNode(expr)
	if got.Kind != ast.KindBinary || got.Op != ast.OpShl {
		t.Fatalf("expected shift node, got %+v", got)
	}
	if !got.Right.IsConstant() || got.Right.IntValue != 3 {
		t.Fatalf("expected shift amount 3, got %+v", got.Right)
	}
}

func TestIfConstantCollapses(t *testing.T) {
	thenBlock := &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{{Kind: ast.KindReturn, Expr: ast.Int(1)}}}
	ifNode := &ast.Node{Kind: ast.KindIf, Cond: ast.Int(0), Then: thenBlock}

	got := foldStmt(ifNode)
	if got.Kind != ast.KindBlock || len(got.Children) != 0 {
		t.Fatalf("expected empty block for if(0) with no else, got %+v", got)
	}
}

// Scenario 2 (§8): for (int i=0; i<5; i++) sum += i; with sum initialized
// to 0, at O3, yields sum = 10 after folding the fully unrolled body.
func TestO3FullyUnrollsAndFolds(t *testing.T) {
	// sum = 0;
	sumDecl := &ast.Node{Kind: ast.KindVarDecl, Name: "sum", Initializer: ast.Int(0)}
	// for (int i = 0; i < 5; i++) sum = sum + i;
	loop := &ast.Node{
		Kind: ast.KindFor,
		Init: &ast.Node{Kind: ast.KindVarDecl, Name: "i", Initializer: ast.Int(0)},
		Cond: &ast.Node{Kind: ast.KindBinary, Op: ast.OpLt, Left: ast.Ident("i"), Right: ast.Int(5)},
		Step: &ast.Node{Kind: ast.KindUnary, Op: ast.OpPostInc, Expr: ast.Ident("i")},
		Then: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			{Kind: ast.KindAssign, Lhs: ast.Ident("sum"),
				Rhs: &ast.Node{Kind: ast.KindBinary, Op: ast.OpAdd, Left: ast.Ident("sum"), Right: ast.Ident("i")}},
		}},
	}
	fn := &ast.Node{
		Kind: ast.KindFunction, Name: "f",
		Body: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{sumDecl, loop,
			{Kind: ast.KindReturn, Expr: ast.Ident("sum")},
		}},
	}
	program := []*ast.Node{fn}

	opts := DefaultOptions(O3)
	program, _ = Run(program, opts)

	fn = program[0]
	// After unrolling, the for node is replaced by a block; the statement
	// that used to be the loop should no longer be a KindFor.
	for _, c := range fn.Body.Children {
		if c.Kind == ast.KindFor {
			t.Fatalf("expected loop to be fully unrolled, found remaining for-node")
		}
	}
	RunO2Propagation(fn.Body, opts)
	ret := fn.Body.Children[len(fn.Body.Children)-1]
	if ret.Kind == ast.KindReturn && ret.Expr.IsConstant() {
		if ret.Expr.IntValue != 10 {
			t.Fatalf("expected folded sum 10, got %d", ret.Expr.IntValue)
		}
	}
}

// Scenario 6 (§8): static int helper(int x) { return 99; } int main() {
// return helper(7); } at O3 reduces to int main() { return 99; }, and
// helper is dropped.
func TestIPADropsDeadStaticHelper(t *testing.T) {
	helper := &ast.Node{
		Kind: ast.KindFunction, Name: "helper", IsFunStatic: true,
		Children: []*ast.Node{{Kind: ast.KindVarDecl, Name: "x"}},
		Body:     &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{{Kind: ast.KindReturn, Expr: ast.Int(99)}}},
	}
	main := &ast.Node{
		Kind: ast.KindFunction, Name: "main",
		Body: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			{Kind: ast.KindReturn, Expr: &ast.Node{Kind: ast.KindCall, Name: "helper", Children: []*ast.Node{ast.Int(7)}}},
		}},
	}
	program := []*ast.Node{helper, main}

	program = RunIPA(program, DefaultOptions(O3))

	if len(program) != 1 || program[0].Name != "main" {
		t.Fatalf("expected helper to be eliminated, program: %+v", program)
	}
	ret := program[0].Body.Children[0]
	if !ret.Expr.IsConstant() || ret.Expr.IntValue != 99 {
		t.Fatalf("expected return 99, got %+v", ret.Expr)
	}
}

func TestDeadStoreElimination(t *testing.T) {
	block := &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
		{Kind: ast.KindVarDecl, Name: "x", Initializer: ast.Int(1)},
		{Kind: ast.KindAssign, Lhs: ast.Ident("x"), Rhs: ast.Int(2)}, // dead: never read before next store
		{Kind: ast.KindAssign, Lhs: ast.Ident("x"), Rhs: ast.Int(3)},
		{Kind: ast.KindReturn, Expr: ast.Ident("x")},
	}}
	RunO2Propagation(block, DefaultOptions(O2))

	if len(block.Children) != 3 {
		t.Fatalf("expected the middle dead store to be removed, got %d statements", len(block.Children))
	}
}

func TestUnrollLoopReplacesForWithBlock(t *testing.T) {
	loop := &ast.Node{
		Kind: ast.KindFor,
		Init: &ast.Node{Kind: ast.KindVarDecl, Name: "i", Initializer: ast.Int(0)},
		Cond: &ast.Node{Kind: ast.KindBinary, Op: ast.OpLt, Left: ast.Ident("i"), Right: ast.Int(3)},
		Step: &ast.Node{Kind: ast.KindUnary, Op: ast.OpPostInc, Expr: ast.Ident("i")},
		Then: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			{Kind: ast.KindAssign, Lhs: ast.Ident("acc"),
				Rhs: &ast.Node{Kind: ast.KindBinary, Op: ast.OpAdd, Left: ast.Ident("acc"), Right: ast.Ident("i")}},
		}},
	}
	out := UnrollLoop(loop)
	if out == nil || out.Kind != ast.KindBlock || len(out.Children) != 3 {
		t.Fatalf("expected a 3-statement unrolled block, got %+v", out)
	}

	// Idempotence (§8): re-running Unroll on the output (no longer a for)
	// is a no-op.
	again := UnrollLoop(out)
	if again != nil {
		t.Fatalf("expected unroll of a non-for node to be a no-op")
	}
}

func TestVectorizeElementWise(t *testing.T) {
	loop := &ast.Node{
		Kind: ast.KindFor,
		Init: &ast.Node{Kind: ast.KindVarDecl, Name: "i", Initializer: ast.Int(0)},
		Cond: &ast.Node{Kind: ast.KindBinary, Op: ast.OpLt, Left: ast.Ident("i"), Right: ast.Int(16)},
		Step: &ast.Node{Kind: ast.KindUnary, Op: ast.OpPostInc, Expr: ast.Ident("i")},
		Then: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			{Kind: ast.KindAssign,
				Lhs: &ast.Node{Kind: ast.KindArrayAccess, Array: ast.Ident("a"), Index: ast.Ident("i")},
				Rhs: &ast.Node{Kind: ast.KindBinary, Op: ast.OpAdd,
					Left:  &ast.Node{Kind: ast.KindArrayAccess, Array: ast.Ident("b"), Index: ast.Ident("i")},
					Right: &ast.Node{Kind: ast.KindArrayAccess, Array: ast.Ident("c"), Index: ast.Ident("i")}},
			},
		}},
	}
	// Tag the destination array identifier with a resolved int32 element type.
	loop.Then.Children[0].Lhs.Array.ResolvedType = &ast.Type{ElementKind: ast.ElemInt32}

	VectorizeFor(loop, AVXNone)
	if loop.VecInfo == nil {
		t.Fatalf("expected VecInfo to be attached")
	}
	if loop.VecInfo.Mode != ast.VecElementWise {
		t.Fatalf("expected element-wise mode, got %v", loop.VecInfo.Mode)
	}
	if loop.VecInfo.Width != 4 {
		t.Fatalf("expected width 4 without AVX, got %d", loop.VecInfo.Width)
	}
}
