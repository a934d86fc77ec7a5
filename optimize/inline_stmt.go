// inline_stmt.go - O3 aggressive multi-statement inliner (§4.L)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// stmtCandidate is a function eligible for §4.L's aggressive inlining.
type stmtCandidate struct {
	fn     *ast.Node
	params []string
}

// findStmtCandidates scans program's functions for §4.L's eligibility
// shape: body is a block of <= limit statements, last is return, no
// goto/label, no top-level break/continue, no nested return besides the
// terminal one, no static locals, no loops.
func findStmtCandidates(program []*ast.Node, limit int, hotNames map[string]bool, elevatedLimit int) map[string]stmtCandidate {
	out := make(map[string]stmtCandidate)
	for _, fn := range program {
		if fn.Kind != ast.KindFunction || fn.Body == nil || fn.InlineHint == -1 {
			continue
		}
		effLimit := limit
		if hotNames[fn.Name] {
			effLimit = elevatedLimit
		}
		if len(fn.Body.Children) == 0 || len(fn.Body.Children) > effLimit {
			continue
		}
		if fn.Body.Children[len(fn.Body.Children)-1].Kind != ast.KindReturn {
			continue
		}
		if ContainsNestedReturnExceptLast(fn.Body) {
			continue
		}
		if ast.ContainsGotoOrLabel(fn.Body) {
			continue
		}
		if ast.ContainsTopLevelBreakOrContinue(fn.Body) {
			continue
		}
		if ast.ContainsStaticLocal(fn.Body) {
			continue
		}
		if ast.ContainsLoop(fn.Body) {
			continue
		}
		params := make([]string, len(fn.Children))
		for i, p := range fn.Children {
			params[i] = p.Name
		}
		out[fn.Name] = stmtCandidate{fn: fn, params: params}
	}
	return out
}

// ContainsNestedReturnExceptLast reports whether body (a block whose last
// statement is a return) contains any other return anywhere nested inside
// it (§4.L: "no nested return other than the terminal one").
func ContainsNestedReturnExceptLast(body *ast.Node) bool {
	last := body.Children[len(body.Children)-1]
	for i, c := range body.Children {
		if i == len(body.Children)-1 {
			continue
		}
		if containsReturn(c) {
			return true
		}
	}
	return containsReturnBelow(last)
}

func containsReturn(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == ast.KindReturn {
		return true
	}
	switch n.Kind {
	case ast.KindIf:
		return containsReturn(n.Then) || containsReturn(n.Else)
	case ast.KindBlock:
		for _, c := range n.Children {
			if containsReturn(c) {
				return true
			}
		}
	case ast.KindWhile, ast.KindDoWhile, ast.KindFor, ast.KindSwitch:
		return containsReturn(n.Then)
	}
	return false
}

// containsReturnBelow is like containsReturn but the node itself being a
// return is not counted (it is the permitted terminal one).
func containsReturnBelow(n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindIf:
		return containsReturn(n.Then) || containsReturn(n.Else)
	case ast.KindBlock:
		for _, c := range n.Children {
			if containsReturn(c) {
				return true
			}
		}
	}
	return false
}

// InlineStmtCalls finds eligible call sites inside block (whose arguments
// are pure and whose target is not the function currently being
// processed, preventing self-recursive closure) and splices the callee's
// body in per §4.L. Each statement is searched for its first call: in the
// value of a return, the right-hand side of an assignment, the initializer
// of a declaration, or the statement itself otherwise. Returns the number
// of sites inlined.
func InlineStmtCalls(block *ast.Node, currentFnName string, candidates map[string]stmtCandidate, siteSeq *int) int {
	if block == nil || block.Kind != ast.KindBlock {
		return 0
	}
	count := 0
	for i := 0; i < len(block.Children); i++ {
		stmt := block.Children[i]
		root := stmt
		switch stmt.Kind {
		case ast.KindReturn:
			root = stmt.Expr
		case ast.KindAssign:
			root = stmt.Rhs
		case ast.KindVarDecl:
			root = stmt.Initializer
		}
		call, replace := ast.FindFirstCall(root)
		if call == nil {
			continue
		}
		cand, ok := candidates[call.Name]
		if !ok || call.Name == currentFnName || !allArgsPure(call.Children) {
			continue
		}

		*siteSeq++
		suffix := ivFreshName(*siteSeq)
		leading, tailExpr := instantiateStmtCandidate(cand, call.Children, suffix)

		replace(tailExpr)
		if len(leading) > 0 {
			rest := append([]*ast.Node{}, block.Children[i:]...)
			block.Children = append(block.Children[:i], leading...)
			block.Children = append(block.Children, rest...)
			i += len(leading)
		}
		count++
	}
	return count
}

// instantiateStmtCandidate deep-clones the callee body, substitutes
// parameters, renames locals with a fresh per-site suffix, and splits the
// clone into its leading statements (everything but the terminal return)
// plus the terminal return's expression (§4.L).
func instantiateStmtCandidate(cand stmtCandidate, args []*ast.Node, suffix string) (leading []*ast.Node, tailExpr *ast.Node) {
	bodyClone := cand.fn.Body.Clone()

	argByName := make(map[string]*ast.Node, len(cand.params))
	for i, p := range cand.params {
		if i < len(args) {
			argByName[p] = args[i]
		}
	}
	renameMap := collectLocalNames(bodyClone, cand.params)
	for _, stmt := range bodyClone.Children {
		substituteAndRenameStmt(stmt, argByName, renameMap, suffix)
	}

	n := len(bodyClone.Children)
	leading = bodyClone.Children[:n-1]
	tailExpr = bodyClone.Children[n-1].Expr
	if tailExpr == nil {
		tailExpr = ast.Int(0)
	}
	return leading, tailExpr
}

// collectLocalNames gathers every var_decl name in body (excluding
// parameters, which are substituted rather than renamed) so each can be
// given a fresh per-site name.
func collectLocalNames(body *ast.Node, params []string) map[string]string {
	isParam := map[string]bool{}
	for _, p := range params {
		isParam[p] = true
	}
	out := map[string]string{}
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindVarDecl && !isParam[n.Name] {
			out[n.Name] = n.Name
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

func substituteAndRenameStmt(n *ast.Node, args map[string]*ast.Node, locals map[string]string, suffix string) {
	if n == nil {
		return
	}
	if n.Kind == ast.KindVarDecl {
		if _, isLocal := locals[n.Name]; isLocal {
			n.Name = n.Name + suffix
		}
		n.Initializer = substituteAndRenameExpr(n.Initializer, args, locals, suffix)
		return
	}
	for _, slot := range []**ast.Node{&n.Left, &n.Right, &n.Expr, &n.Array, &n.Index, &n.Object,
		&n.Lhs, &n.Rhs, &n.Cond, &n.Init, &n.Step} {
		*slot = substituteAndRenameExpr(*slot, args, locals, suffix)
	}
	if n.Then != nil {
		substituteAndRenameStmt(n.Then, args, locals, suffix)
	}
	if n.Else != nil {
		substituteAndRenameStmt(n.Else, args, locals, suffix)
	}
	for i := range n.Children {
		substituteAndRenameStmt(n.Children[i], args, locals, suffix)
	}
}

func substituteAndRenameExpr(n *ast.Node, args map[string]*ast.Node, locals map[string]string, suffix string) *ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindIdentifier {
		if arg, ok := args[n.Name]; ok {
			return arg.Clone()
		}
		if _, isLocal := locals[n.Name]; isLocal {
			return ast.Ident(n.Name + suffix)
		}
		return n
	}
	switch n.Kind {
	case ast.KindBinary:
		n.Left = substituteAndRenameExpr(n.Left, args, locals, suffix)
		n.Right = substituteAndRenameExpr(n.Right, args, locals, suffix)
	case ast.KindUnary:
		n.Expr = substituteAndRenameExpr(n.Expr, args, locals, suffix)
	case ast.KindCast:
		n.Expr = substituteAndRenameExpr(n.Expr, args, locals, suffix)
	case ast.KindArrayAccess:
		n.Array = substituteAndRenameExpr(n.Array, args, locals, suffix)
		n.Index = substituteAndRenameExpr(n.Index, args, locals, suffix)
	case ast.KindMemberAccess:
		n.Object = substituteAndRenameExpr(n.Object, args, locals, suffix)
	case ast.KindCall:
		for i := range n.Children {
			n.Children[i] = substituteAndRenameExpr(n.Children[i], args, locals, suffix)
		}
	case ast.KindAssign:
		n.Lhs = substituteAndRenameExpr(n.Lhs, args, locals, suffix)
		n.Rhs = substituteAndRenameExpr(n.Rhs, args, locals, suffix)
	}
	return n
}
