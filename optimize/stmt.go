// stmt.go - O1 statement-level rewrites: dead branches, dead loop bodies,
// and block truncation after a terminator (§4.G)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// foldStmt applies O1 to a single statement node, recursing into its
// nested blocks/expressions and rewriting `if(const)`, `while(0)`, and
// `for(...; 0; ...)` per §4.G.
func foldStmt(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindBlock:
		foldBlock(n)
	case ast.KindIf:
		n.Cond = foldNode(n.Cond)
		n.Then = foldStmt(n.Then)
		n.Else = foldStmt(n.Else)
		if n.Cond.IsConstant() {
			if n.Cond.IntValue != 0 {
				return n.Then
			}
			if n.Else != nil {
				return n.Else
			}
			return ast.EmptyBlock()
		}
	case ast.KindWhile:
		n.Cond = foldNode(n.Cond)
		n.Then = foldStmt(n.Then)
		if n.Cond.IsConstant() && n.Cond.IntValue == 0 {
			return ast.EmptyBlock()
		}
	case ast.KindDoWhile:
		n.Cond = foldNode(n.Cond)
		n.Then = foldStmt(n.Then)
	case ast.KindFor:
		if n.Init != nil {
			n.Init = foldStmt(n.Init)
		}
		if n.Cond != nil {
			n.Cond = foldNode(n.Cond)
		}
		if n.Step != nil {
			n.Step = foldStmt(n.Step)
		}
		n.Then = foldStmt(n.Then)
		if n.Cond != nil && n.Cond.IsConstant() && n.Cond.IntValue == 0 {
			if n.Init == nil {
				return ast.EmptyBlock()
			}
			return n.Init
		}
	case ast.KindSwitch:
		n.Cond = foldNode(n.Cond)
		n.Then = foldStmt(n.Then)
	case ast.KindReturn:
		n.Expr = foldNode(n.Expr)
	case ast.KindVarDecl:
		n.Initializer = foldNode(n.Initializer)
	case ast.KindAssign:
		n.Lhs = foldNode(n.Lhs)
		n.Rhs = foldNode(n.Rhs)
	case ast.KindAssert:
		n.Expr = foldNode(n.Expr)
	default:
		return foldNode(n)
	}
	return n
}

// foldBlock rewrites every statement in n's children in place, then
// truncates anything unreachable after an unconditional terminator unless
// a case/default label follows it (§4.G, §8 invariant).
func foldBlock(n *ast.Node) {
	for i, c := range n.Children {
		n.Children[i] = foldStmt(c)
	}
	for i, c := range n.Children {
		if !c.IsTerminator() {
			continue
		}
		cut := i + 1
		for cut < len(n.Children) {
			k := n.Children[cut].Kind
			if k == ast.KindCase || k == ast.KindDefault {
				break
			}
			cut++
		}
		if cut < len(n.Children) {
			n.Children = append(n.Children[:i+1], n.Children[cut:]...)
		} else {
			n.Children = n.Children[:i+1]
		}
		break
	}
}

// RunO1 applies the O1 pass to a single function body in place.
func RunO1(fn *ast.Node) {
	if fn == nil || fn.Kind != ast.KindFunction || fn.Body == nil {
		return
	}
	fn.Body = foldStmt(fn.Body)
}
