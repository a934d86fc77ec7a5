// vectorize.go - loop vectorizer annotation (§4.N)
//
// This pass only attaches a VecInfo to recognized loops; it never
// rewrites the AST (§6: "attachment of a vec_info to a loop" is the only
// mutation this component performs).

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// AVXLevel mirrors compiler_options.avx_level (§6).
type AVXLevel int

const (
	AVXNone AVXLevel = 0
	AVX1    AVXLevel = 1
	AVX2    AVXLevel = 2
)

// VectorizeFor attempts to recognize and annotate for's element-wise or
// init vectorizable shape (§4.N modes 1 and 3); VectorizeWhile handles
// mode 2 (reduction).
func VectorizeFor(loop *ast.Node, avx AVXLevel) {
	if loop == nil || loop.Kind != ast.KindFor {
		return
	}
	varName, a, ok := canonicalInit(loop.Init)
	if !ok || a != 0 {
		return
	}
	relOp, b, ok := canonicalCond(loop.Cond, varName)
	if !ok || !canonicalStep(loop.Step, varName) {
		return
	}
	iterations := iterationCount(relOp, a, b)
	if iterations <= 0 {
		return
	}

	if info := matchElementWise(loop.Then, varName); info != nil {
		attach(loop, info, iterations, avx)
		return
	}
	if info := matchInit(loop.Then, varName); info != nil {
		attach(loop, info, iterations, avx)
	}
}

// VectorizeWhile recognizes the reduction shape (§4.N mode 2): a while
// loop whose body is exactly `acc = acc + arr[i];` followed by the index
// step (`i = i + 1`, `i++` or `++i`). The accumulator may be either operand
// of the `+`, but the two statements must come in that order.
func VectorizeWhile(loop *ast.Node, avx AVXLevel) {
	if loop == nil || loop.Kind != ast.KindWhile || loop.Then == nil || loop.Then.Kind != ast.KindBlock {
		return
	}
	stmts := loop.Then.Children
	if len(stmts) != 2 {
		return
	}
	accStmt, idxStmt := stmts[0], stmts[1]
	accName, arr, idxName, ok := matchReduction(accStmt)
	if !ok {
		return
	}
	if !canonicalStep(idxStmt, idxName) {
		return
	}

	elemKind := arrayElemKind(arr, loop.Then)
	info := &ast.VecInfo{
		Mode:     ast.VecReduction,
		LoopVar:  idxName,
		AccumVar: accName,
		IsFloat:  elemKind == ast.ElemFloat32,
		ElemSize: 4,
		Op:       ast.OpAdd,
	}
	attachWidth(info, -1, avx) // reduction loops have no static iteration bound here
	loop.VecInfo = info
}

// matchElementWise recognizes `a[i] = b[i] OP c[i];` as for's sole body
// statement.
func matchElementWise(body *ast.Node, loopVar string) *ast.VecInfo {
	stmt := soleStatement(body)
	if stmt == nil || stmt.Kind != ast.KindAssign {
		return nil
	}
	dst := stmt.Lhs
	if dst == nil || dst.Kind != ast.KindArrayAccess || !isIdentNamed(dst.Index, loopVar) {
		return nil
	}
	rhs := stmt.Rhs
	if rhs == nil || rhs.Kind != ast.KindBinary {
		return nil
	}
	src1, ok1 := arrayRefAt(rhs.Left, loopVar)
	src2, ok2 := arrayRefAt(rhs.Right, loopVar)
	if !ok1 || !ok2 {
		return nil
	}
	elemKind := arrayElemKind(dst.Array, nil)
	isFloat := elemKind == ast.ElemFloat32
	if isFloat {
		switch rhs.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		default:
			return nil
		}
	} else {
		switch rhs.Op {
		case ast.OpAdd, ast.OpSub:
		default:
			return nil
		}
	}
	return &ast.VecInfo{
		Mode: ast.VecElementWise, LoopVar: loopVar,
		Dst: dst, Src1: src1, Src2: src2, Op: rhs.Op, IsFloat: isFloat, ElemSize: 4,
	}
}

// matchInit recognizes `arr[i] = expr;` where expr is K*i+C in any of the
// accepted shapes (§4.N mode 3).
func matchInit(body *ast.Node, loopVar string) *ast.VecInfo {
	stmt := soleStatement(body)
	if stmt == nil || stmt.Kind != ast.KindAssign {
		return nil
	}
	dst := stmt.Lhs
	if dst == nil || dst.Kind != ast.KindArrayAccess || !isIdentNamed(dst.Index, loopVar) {
		return nil
	}
	scale, offset, ok := linearExpr(stmt.Rhs, loopVar)
	if !ok {
		return nil
	}
	elemKind := arrayElemKind(dst.Array, nil)
	return &ast.VecInfo{
		Mode: ast.VecInit, LoopVar: loopVar, Dst: dst,
		IsFloat: elemKind == ast.ElemFloat32, ElemSize: 4,
		InitScale: scale, InitOffset: offset,
	}
}

// linearExpr matches K*i+C, i+C, K*i, i, or a bare constant, any operand
// order (§4.N).
func linearExpr(e *ast.Node, loopVar string) (scale, offset int64, ok bool) {
	if e == nil {
		return 0, 0, false
	}
	if e.IsConstant() {
		return 0, e.IntValue, true
	}
	if isIdentNamed(e, loopVar) {
		return 1, 0, true
	}
	if e.Kind == ast.KindBinary && e.Op == ast.OpMul {
		if k, ok := varTimesConst(e, loopVar); ok {
			return k, 0, true
		}
	}
	if e.Kind == ast.KindBinary && e.Op == ast.OpAdd {
		for _, pair := range [][2]*ast.Node{{e.Left, e.Right}, {e.Right, e.Left}} {
			base, rest := pair[0], pair[1]
			if !rest.IsConstant() {
				continue
			}
			if isIdentNamed(base, loopVar) {
				return 1, rest.IntValue, true
			}
			if base.Kind == ast.KindBinary && base.Op == ast.OpMul {
				if k, ok := varTimesConst(base, loopVar); ok {
					return k, rest.IntValue, true
				}
			}
		}
	}
	return 0, 0, false
}

func soleStatement(body *ast.Node) *ast.Node {
	if body == nil {
		return nil
	}
	if body.Kind == ast.KindBlock {
		if len(body.Children) != 1 {
			return nil
		}
		return body.Children[0]
	}
	return body
}

func isIdentNamed(n *ast.Node, name string) bool {
	return n != nil && n.Kind == ast.KindIdentifier && n.Name == name
}

// arrayRefAt matches `arr[i]` for the given loop variable.
func arrayRefAt(n *ast.Node, loopVar string) (*ast.Node, bool) {
	if n != nil && n.Kind == ast.KindArrayAccess && isIdentNamed(n.Index, loopVar) {
		return n, true
	}
	return nil, false
}

// matchReduction matches `acc = acc + arr[i];` (or `arr[i] + acc`) in
// either operand order, returning the accumulator name, the array
// expression, and the index variable name.
func matchReduction(stmt *ast.Node) (accName string, arr *ast.Node, idxName string, ok bool) {
	if stmt.Kind != ast.KindAssign || stmt.Lhs == nil || stmt.Lhs.Kind != ast.KindIdentifier {
		return "", nil, "", false
	}
	acc := stmt.Lhs.Name
	rhs := stmt.Rhs
	if rhs == nil || rhs.Kind != ast.KindBinary || rhs.Op != ast.OpAdd {
		return "", nil, "", false
	}
	for _, pair := range [][2]*ast.Node{{rhs.Left, rhs.Right}, {rhs.Right, rhs.Left}} {
		accRef, arrRef := pair[0], pair[1]
		if isIdentNamed(accRef, acc) && arrRef != nil && arrRef.Kind == ast.KindArrayAccess && arrRef.Index != nil && arrRef.Index.Kind == ast.KindIdentifier {
			return acc, arrRef.Array, arrRef.Index.Name, true
		}
	}
	return "", nil, "", false
}

func identName(n *ast.Node) string {
	if n == nil {
		return ""
	}
	return n.Name
}

// arrayElemKind reads resolved_type.element_kind off the array
// identifier (§4.N).
func arrayElemKind(arr *ast.Node, _ *ast.Node) ast.ElemKind {
	if arr == nil || arr.ResolvedType == nil {
		return ast.ElemUnknown
	}
	return arr.ResolvedType.ElementKind
}

// attach computes the vector width and stores the VecInfo on loop.
func attach(loop *ast.Node, info *ast.VecInfo, iterations int64, avx AVXLevel) {
	info.Iterations = iterations
	attachWidth(info, iterations, avx)
	if info.Width == 0 {
		return
	}
	loop.VecInfo = info
}

// attachWidth implements §4.N's width-selection rule: 8 for AVX-float
// (avx>=1) or AVX2-int (avx>=2); 4 otherwise. If iterations (when known,
// i.e. >= 0) can't fill width, it is halved to 4; below 4 the loop is not
// vectorized (VecInfo is cleared by the caller in that case... here we
// simply leave width unset and let the caller drop the annotation).
func attachWidth(info *ast.VecInfo, iterations int64, avx AVXLevel) {
	width := 4
	if info.IsFloat && avx >= AVX1 {
		width = 8
	} else if !info.IsFloat && avx >= AVX2 {
		width = 8
	}
	if iterations >= 0 && iterations < int64(width) {
		width = 4
	}
	if iterations >= 0 && iterations < 4 {
		info.Width = 0 // caller treats a zero width as "not vectorized"
		return
	}
	info.Width = width
}
