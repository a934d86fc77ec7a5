// ipa.go - interprocedural suite: return-value propagation, IPA constant
// propagation, dead-argument elimination, dead-function elimination (§4.O)

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// ReturnValuePropagation records functions whose body is a single
// `return K;` with integer K and no control-flow statements, then
// replaces calls to them (with side-effect-free arguments) with K across
// program. Returns the count of call sites replaced.
func ReturnValuePropagation(program []*ast.Node) int {
	constFns := map[string]int64{}
	for _, fn := range program {
		if fn.Kind != ast.KindFunction || fn.Body == nil {
			continue
		}
		if len(fn.Body.Children) != 1 {
			continue
		}
		stmt := fn.Body.Children[0]
		if stmt.Kind != ast.KindReturn || stmt.Expr == nil || !stmt.Expr.IsConstant() {
			continue
		}
		constFns[fn.Name] = stmt.Expr.IntValue
	}
	if len(constFns) == 0 {
		return 0
	}

	count := 0
	for _, fn := range program {
		if fn.Body == nil {
			continue
		}
		replaceConstCalls(fn.Body, constFns, &count)
	}
	return count
}

func replaceConstCalls(n *ast.Node, constFns map[string]int64, count *int) {
	if n == nil {
		return
	}
	for _, slot := range []**ast.Node{&n.Left, &n.Right, &n.Expr, &n.Array, &n.Index, &n.Object,
		&n.Initializer, &n.Lhs, &n.Rhs, &n.Cond, &n.Then, &n.Else, &n.Init, &n.Step, &n.Body} {
		s := *slot
		if s != nil && s.Kind == ast.KindCall {
			if k, ok := constFns[s.Name]; ok && allArgsPure(s.Children) {
				*slot = ast.Int(k)
				*count++
				continue
			}
		}
		replaceConstCalls(*slot, constFns, count)
	}
	for i := range n.Children {
		c := n.Children[i]
		if c != nil && c.Kind == ast.KindCall {
			if k, ok := constFns[c.Name]; ok && allArgsPure(c.Children) {
				n.Children[i] = ast.Int(k)
				*count++
				continue
			}
		}
		replaceConstCalls(c, constFns, count)
	}
}

// IPAConstantPropagation finds, per static function, parameter positions
// always passed the same integer constant across all call sites in
// program, substituting that constant for the parameter within the
// function body (§4.O: "only for... is_static"; main excluded).
func IPAConstantPropagation(program []*ast.Node) int {
	isStatic := map[string]bool{}
	paramCount := map[string]int{}
	fnByName := map[string]*ast.Node{}
	for _, fn := range program {
		if fn.Kind != ast.KindFunction {
			continue
		}
		fnByName[fn.Name] = fn
		isStatic[fn.Name] = fn.IsFunStatic
		paramCount[fn.Name] = len(fn.Children)
	}

	// observed[name][argIndex] = (constant value, is this position
	// consistent so far, has at least one call been seen).
	type posState struct {
		value      int64
		consistent bool
		seen       bool
	}
	observed := map[string][]posState{}

	var scanCalls func(n *ast.Node)
	scanCalls = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindCall {
			if n.Name != "main" && isStatic[n.Name] {
				states, ok := observed[n.Name]
				if !ok {
					states = make([]posState, paramCount[n.Name])
					observed[n.Name] = states
				}
				for i, arg := range n.Children {
					if i >= len(states) {
						break
					}
					st := &states[i]
					if arg == nil || !arg.IsConstant() {
						st.consistent = false
						st.seen = true
						continue
					}
					if !st.seen {
						st.value, st.consistent, st.seen = arg.IntValue, true, true
					} else if st.consistent && st.value != arg.IntValue {
						st.consistent = false
					}
				}
			}
		}
		for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
			n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
			scanCalls(c)
		}
		for _, c := range n.Children {
			scanCalls(c)
		}
	}
	for _, fn := range program {
		scanCalls(fn.Body)
	}

	count := 0
	for name, states := range observed {
		fn := fnByName[name]
		if fn == nil || fn.Body == nil {
			continue
		}
		for i, st := range states {
			if !st.consistent || !st.seen || i >= len(fn.Children) {
				continue
			}
			paramName := fn.Children[i].Name
			substituteIdentWithConst(fn.Body, paramName, st.value)
			count++
		}
	}
	return count
}

func substituteIdentWithConst(n *ast.Node, name string, value int64) {
	if n == nil {
		return
	}
	for _, slot := range []**ast.Node{&n.Left, &n.Right, &n.Expr, &n.Array, &n.Index, &n.Object,
		&n.Initializer, &n.Lhs, &n.Rhs, &n.Cond, &n.Then, &n.Else, &n.Init, &n.Step, &n.Body} {
		if *slot != nil && (*slot).Kind == ast.KindIdentifier && (*slot).Name == name {
			*slot = ast.Int(value)
			continue
		}
		substituteIdentWithConst(*slot, name, value)
	}
	for i := range n.Children {
		if n.Children[i] != nil && n.Children[i].Kind == ast.KindIdentifier && n.Children[i].Name == name {
			n.Children[i] = ast.Int(value)
			continue
		}
		substituteIdentWithConst(n.Children[i], name, value)
	}
}

// DeadArgumentElimination removes an unused parameter of a static
// function from its declaration and every call site, iterating
// right-to-left so removing one index doesn't invalidate the others
// (§4.O).
func DeadArgumentElimination(program []*ast.Node) int {
	count := 0
	for _, fn := range program {
		if fn.Kind != ast.KindFunction || !fn.IsFunStatic || fn.Body == nil {
			continue
		}
		for i := len(fn.Children) - 1; i >= 0; i-- {
			param := fn.Children[i]
			if isParamUsed(fn.Body, param.Name) {
				continue
			}
			fn.Children = append(fn.Children[:i], fn.Children[i+1:]...)
			removeCallArg(program, fn.Name, i)
			count++
		}
	}
	return count
}

func isParamUsed(n *ast.Node, name string) bool {
	if n == nil {
		return false
	}
	if n.Kind == ast.KindIdentifier && n.Name == name {
		return true
	}
	for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
		n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
		if isParamUsed(c, name) {
			return true
		}
	}
	for _, c := range n.Children {
		if isParamUsed(c, name) {
			return true
		}
	}
	return false
}

func removeCallArg(program []*ast.Node, fnName string, argIndex int) {
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindCall && n.Name == fnName && argIndex < len(n.Children) {
			n.Children = append(n.Children[:argIndex], n.Children[argIndex+1:]...)
		}
		for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
			n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
			walk(c)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, fn := range program {
		walk(fn.Body)
	}
}

// DeadFunctionElimination removes static functions with zero remaining
// call sites anywhere in program; `main` is never removed (§4.O, §8).
func DeadFunctionElimination(program []*ast.Node) []*ast.Node {
	callCount := map[string]int{}
	var scan func(n *ast.Node)
	scan = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindCall {
			callCount[n.Name]++
		}
		for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
			n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
			scan(c)
		}
		for _, c := range n.Children {
			scan(c)
		}
	}
	for _, fn := range program {
		scan(fn.Body)
	}

	out := program[:0]
	for _, fn := range program {
		if fn.Kind == ast.KindFunction && fn.IsFunStatic && fn.Name != "main" && callCount[fn.Name] == 0 {
			continue
		}
		out = append(out, fn)
	}
	return out
}

// RunIPA runs the interprocedural suite once, per §4.O's ordering
// (return-value propagation, then IPA constant propagation, then
// dead-argument elimination, then dead-function elimination), followed by
// a final O1+O2 pass over every surviving function.
func RunIPA(program []*ast.Node, opts Options) []*ast.Node {
	ReturnValuePropagation(program)
	IPAConstantPropagation(program)
	DeadArgumentElimination(program)
	program = DeadFunctionElimination(program)

	for _, fn := range program {
		if fn.Body == nil {
			continue
		}
		RunO1(fn)
		RunO2Propagation(fn.Body, opts)
	}
	return program
}
