// propagate.go - O2 within-block constant propagation and dead-store
// elimination (§4.I)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// bindValue is what the propagation environment knows about a variable's
// current value: an integer constant, a simple identifier alias, or
// unknown.
type bindValue struct {
	isInt   bool
	intVal  int64
	isIdent bool
	ident   string
}

type binding struct {
	value      bindValue
	storeStmt  *ast.Node // the var_decl/assign that last wrote this variable
	wasRead    bool
	isVarDecl  bool
}

type propEnv struct {
	bindings map[string]*binding
	maxSize  int
}

func newPropEnv(maxSize int) *propEnv {
	return &propEnv{bindings: make(map[string]*binding), maxSize: maxSize}
}

func (e *propEnv) invalidateAll() {
	for k := range e.bindings {
		delete(e.bindings, k)
	}
}

func (e *propEnv) set(name string, b *binding) {
	if _, exists := e.bindings[name]; !exists && len(e.bindings) >= e.maxSize {
		return
	}
	e.bindings[name] = b
}

// RunO2Propagation runs the single forward sweep described in §4.I over
// block's direct statement list, mutating it in place (including removing
// dead stores).
func RunO2Propagation(block *ast.Node, opts Options) {
	if block == nil || block.Kind != ast.KindBlock {
		return
	}
	env := newPropEnv(opts.MaxBindings)
	var deadStores []*ast.Node

	for _, stmt := range block.Children {
		propagateStmt(stmt, env, &deadStores)
	}

	if len(deadStores) == 0 {
		return
	}
	dead := make(map[*ast.Node]bool, len(deadStores))
	for _, s := range deadStores {
		dead[s] = true
	}
	filtered := block.Children[:0]
	for _, c := range block.Children {
		if !dead[c] {
			filtered = append(filtered, c)
		}
	}
	block.Children = filtered
}

func propagateStmt(n *ast.Node, env *propEnv, deadStores *[]*ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindVarDecl:
		substituteProp(&n.Initializer, env)
		n.Initializer = foldNode(n.Initializer)
		markPriorDeadStore(n.Name, env, deadStores)
		env.set(n.Name, &binding{value: valueOf(n.Initializer), storeStmt: n, isVarDecl: true})

	case ast.KindAssign:
		if n.Lhs == nil || n.Lhs.Kind != ast.KindIdentifier {
			substituteProp(&n.Lhs, env)
			substituteProp(&n.Rhs, env)
			n.Rhs = foldNode(n.Rhs)
			return
		}
		substituteProp(&n.Rhs, env)
		n.Rhs = foldNode(n.Rhs)
		markPriorDeadStore(n.Lhs.Name, env, deadStores)
		env.set(n.Lhs.Name, &binding{value: valueOf(n.Rhs), storeStmt: n})

	case ast.KindReturn:
		substituteProp(&n.Expr, env)
		n.Expr = foldNode(n.Expr)
		env.invalidateAll()

	case ast.KindIf:
		substituteProp(&n.Cond, env)
		n.Cond = foldNode(n.Cond)
		if n.Then != nil {
			env.invalidateAll()
		}
		if n.Else != nil {
			env.invalidateAll()
		}

	case ast.KindSwitch:
		substituteProp(&n.Cond, env)
		n.Cond = foldNode(n.Cond)
		env.invalidateAll()

	case ast.KindWhile, ast.KindDoWhile, ast.KindFor:
		// Loop conditions are never substituted (§4.I: "could produce an
		// infinite loop"). Bodies invalidate the environment wholesale.
		env.invalidateAll()

	case ast.KindLabel, ast.KindCase, ast.KindDefault, ast.KindBreak, ast.KindContinue, ast.KindGoto:
		env.invalidateAll()

	case ast.KindAssert:
		substituteProp(&n.Expr, env)

	case ast.KindBlock:
		for _, c := range n.Children {
			propagateStmt(c, env, deadStores)
		}

	default:
		substituteProp(&n, env)
	}
}

// markPriorDeadStore implements §4.I's dead-store rule: if the previous
// store to name was never read and its RHS was pure, and it wasn't a
// var_decl, remove it.
func markPriorDeadStore(name string, env *propEnv, deadStores *[]*ast.Node) {
	prior, ok := env.bindings[name]
	if !ok || prior.wasRead || prior.isVarDecl || prior.storeStmt == nil {
		return
	}
	var rhs *ast.Node
	switch prior.storeStmt.Kind {
	case ast.KindAssign:
		rhs = prior.storeStmt.Rhs
	default:
		return
	}
	if rhs.IsPure() {
		*deadStores = append(*deadStores, prior.storeStmt)
	}
}

func valueOf(e *ast.Node) bindValue {
	switch {
	case e == nil:
		return bindValue{}
	case e.IsConstant():
		return bindValue{isInt: true, intVal: e.IntValue}
	case e.Kind == ast.KindIdentifier:
		return bindValue{isIdent: true, ident: e.Name}
	}
	return bindValue{}
}

// substituteProp replaces identifier reads with their known integer value
// (copy propagation var->var is disabled by policy, §4.I) and marks the
// binding as read. The operand of `&x`, `++x`, `x++`, `--x` and `x--` is
// never substituted; x's binding is dropped instead.
func substituteProp(np **ast.Node, env *propEnv) {
	n := *np
	if n == nil {
		return
	}
	if n.Kind == ast.KindIdentifier {
		if b, ok := env.bindings[n.Name]; ok {
			b.wasRead = true
			if b.value.isInt {
				*np = ast.Int(b.value.intVal)
			}
		}
		return
	}
	switch n.Kind {
	case ast.KindBinary:
		substituteProp(&n.Left, env)
		substituteProp(&n.Right, env)
	case ast.KindUnary:
		switch n.Op {
		case ast.OpAddr, ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
			if n.Expr != nil && n.Expr.Kind == ast.KindIdentifier {
				delete(env.bindings, n.Expr.Name)
			}
			return
		}
		substituteProp(&n.Expr, env)
	case ast.KindCast:
		substituteProp(&n.Expr, env)
	case ast.KindArrayAccess:
		substituteProp(&n.Array, env)
		substituteProp(&n.Index, env)
	case ast.KindMemberAccess:
		substituteProp(&n.Object, env)
	case ast.KindCall:
		for i := range n.Children {
			substituteProp(&n.Children[i], env)
		}
		env.invalidateAll()
	}
}
