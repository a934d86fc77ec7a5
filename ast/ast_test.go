package ast

import "testing"

func TestIsPureLiteralsAndIdentifiers(t *testing.T) {
	if !Int(3).IsPure() || !Ident("x").IsPure() {
		t.Error("literals and identifiers are pure")
	}
}

func TestIsPureCallAndAssignAreImpure(t *testing.T) {
	call := &Node{Kind: KindCall, Name: "f"}
	if call.IsPure() {
		t.Error("a call is never pure")
	}
	assign := &Node{Kind: KindAssign, Lhs: Ident("x"), Rhs: Int(1)}
	if assign.IsPure() {
		t.Error("an assignment is never pure")
	}
}

func TestIsPurePreIncIsImpure(t *testing.T) {
	n := &Node{Kind: KindUnary, Op: OpPreInc, Expr: Ident("i")}
	if n.IsPure() {
		t.Error("pre-increment has a side effect")
	}
	deref := &Node{Kind: KindUnary, Op: OpDeref, Expr: Ident("p")}
	if !deref.IsPure() {
		t.Error("a bare deref is pure")
	}
}

func TestCloneDeepCopiesAndDropsVecInfo(t *testing.T) {
	orig := &Node{
		Kind:    KindBinary,
		Op:      OpAdd,
		Left:    Ident("a"),
		Right:   Int(2),
		VecInfo: &VecInfo{Width: 4},
	}
	clone := orig.Clone()

	if clone == orig || clone.Left == orig.Left || clone.Right == orig.Right {
		t.Fatal("Clone must allocate new nodes throughout the subtree")
	}
	if clone.VecInfo != nil {
		t.Error("Clone must not carry VecInfo onto the copy")
	}
	clone.Left.Name = "b"
	if orig.Left.Name != "a" {
		t.Error("mutating the clone must not affect the original")
	}
}

func TestCloneNilIsNil(t *testing.T) {
	var n *Node
	if n.Clone() != nil {
		t.Error("cloning a nil node must return nil")
	}
}

func TestCountNodes(t *testing.T) {
	// a + (b * 2): 5 nodes total.
	n := &Node{Kind: KindBinary, Op: OpAdd, Left: Ident("a"), Right: &Node{
		Kind: KindBinary, Op: OpMul, Left: Ident("b"), Right: Int(2),
	}}
	if got := CountNodes(n); got != 5 {
		t.Fatalf("CountNodes = %d, want 5", got)
	}
	if CountNodes(nil) != 0 {
		t.Error("CountNodes(nil) should be 0")
	}
}

func TestContainsGotoOrLabel(t *testing.T) {
	clean := &Node{Kind: KindBlock, Children: []*Node{{Kind: KindReturn, Expr: Int(1)}}}
	if ContainsGotoOrLabel(clean) {
		t.Error("no goto/label present")
	}
	withGoto := &Node{Kind: KindBlock, Children: []*Node{{Kind: KindGoto, Name: "out"}}}
	if !ContainsGotoOrLabel(withGoto) {
		t.Error("expected goto to be found")
	}
}

func TestContainsLoop(t *testing.T) {
	body := &Node{Kind: KindBlock, Children: []*Node{{Kind: KindFor}}}
	if !ContainsLoop(body) {
		t.Error("expected nested for to be found")
	}
	if ContainsLoop(&Node{Kind: KindBlock}) {
		t.Error("empty block has no loop")
	}
}

func TestContainsTopLevelBreakOrContinue(t *testing.T) {
	top := &Node{Kind: KindBlock, Children: []*Node{{Kind: KindBreak}}}
	if !ContainsTopLevelBreakOrContinue(top) {
		t.Error("expected top-level break to be found")
	}
	nested := &Node{Kind: KindBlock, Children: []*Node{
		{Kind: KindFor, Then: &Node{Kind: KindBlock, Children: []*Node{{Kind: KindBreak}}}},
	}}
	if ContainsTopLevelBreakOrContinue(nested) {
		t.Error("a break inside a nested loop binds to that loop, not the caller")
	}
}

func TestContainsStaticLocal(t *testing.T) {
	decl := &Node{Kind: KindVarDecl, Name: "counter", IsStatic: true}
	block := &Node{Kind: KindBlock, Children: []*Node{decl}}
	if !ContainsStaticLocal(block) {
		t.Error("expected static local to be found")
	}
	if ContainsStaticLocal(&Node{Kind: KindVarDecl, Name: "x"}) {
		t.Error("non-static var_decl should not match")
	}
}

func TestFindFirstCallDescendsIntoExpressions(t *testing.T) {
	call := &Node{Kind: KindCall, Name: "f"}
	expr := &Node{Kind: KindBinary, Op: OpAdd, Left: Int(1), Right: &Node{
		Kind: KindUnary, Op: OpNeg, Expr: call,
	}}
	found, replace := FindFirstCall(expr)
	if found != call {
		t.Fatal("expected to find the call nested under unary/binary")
	}
	replace(Int(42))
	if expr.Right.Expr.Kind != KindInteger || expr.Right.Expr.IntValue != 42 {
		t.Fatal("replace should overwrite the call node in place")
	}
}

func TestFindFirstCallNoneFound(t *testing.T) {
	if call, _ := FindFirstCall(Int(1)); call != nil {
		t.Error("expected no call found in a bare literal")
	}
}

func TestEvalBinaryArithmetic(t *testing.T) {
	cases := []struct {
		op   TokenOp
		a, b int64
		want int64
	}{
		{OpAdd, 3, 4, 7},
		{OpSub, 10, 3, 7},
		{OpMul, 6, 7, 42},
		{OpShl, 1, 4, 16},
		{OpAnd, 0xFF, 0x0F, 0x0F},
		{OpLt, 1, 2, 1},
		{OpGe, 2, 2, 1},
	}
	for _, c := range cases {
		got, ok := EvalBinary(c.op, c.a, c.b)
		if !ok || got != c.want {
			t.Errorf("EvalBinary(%v, %d, %d) = %d, %v; want %d", c.op, c.a, c.b, got, ok, c.want)
		}
	}
}

func TestEvalBinaryDivModByZeroIsNotOk(t *testing.T) {
	if _, ok := EvalBinary(OpDiv, 1, 0); ok {
		t.Error("division by zero must not fold")
	}
	if _, ok := EvalBinary(OpMod, 1, 0); ok {
		t.Error("modulo by zero must not fold")
	}
}

func TestEvalUnary(t *testing.T) {
	if v, ok := EvalUnary(OpNeg, 5); !ok || v != -5 {
		t.Errorf("neg(5) = %d, %v", v, ok)
	}
	if v, ok := EvalUnary(OpNot, 0); !ok || v != 1 {
		t.Errorf("!0 = %d, %v", v, ok)
	}
	if v, ok := EvalUnary(OpBitNot, 0); !ok || v != -1 {
		t.Errorf("~0 = %d, %v", v, ok)
	}
}

func TestIsPowerOfTwoAndLog2(t *testing.T) {
	for _, v := range []int64{1, 2, 4, 8, 1024} {
		if !IsPowerOfTwo(v) {
			t.Errorf("%d should be a power of two", v)
		}
	}
	for _, v := range []int64{0, 3, 5, -8} {
		if IsPowerOfTwo(v) {
			t.Errorf("%d should not be a power of two", v)
		}
	}
	if Log2(8) != 3 || Log2(1) != 0 || Log2(1024) != 10 {
		t.Error("unexpected Log2 result")
	}
}

func TestIsTerminator(t *testing.T) {
	for _, k := range []Kind{KindReturn, KindBreak, KindContinue, KindGoto} {
		if !(&Node{Kind: k}).IsTerminator() {
			t.Errorf("%v should be a terminator", k)
		}
	}
	if (&Node{Kind: KindAssign}).IsTerminator() {
		t.Error("assign is not a terminator")
	}
}
