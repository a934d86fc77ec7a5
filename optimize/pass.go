// pass.go - top-level optimizer entry point, options, and statistics
//
// Run is a supplement beyond spec.md's per-pass descriptions: spec.md
// specifies what each pass does but not how a driver sequences them
// across a whole program at a given -O level. This ties §4.G-§4.O
// together the way a real compiler driver would.

package optimize

import "github.com/fador/fadors-c99-sub002/ast"

// Level selects how aggressively the optimizer runs, mirroring
// compiler_options.opt_level (§6).
type Level int

const (
	O0 Level = iota
	O1
	O2
	O3
)

// Options bundles the opt level and the scratch-table capacities from
// §5/§9 ("scratch tables are bounded-size... by design"). IsHot wires in
// an optional PGO profile (§6): functions it reports hot get the elevated
// statement-inlining limit; nil means no function is hot. There is no
// cold hook: cold functions are optimized like any other.
type Options struct {
	Level               Level
	AVXLevel            AVXLevel
	MaxBindings         int
	MaxRanges           int
	MaxInlineCandidates int
	IsHot               func(name string) bool
}

// DefaultOptions matches the corpus's most-restrictive revision of the
// scratch-table sizes mentioned in §5 ("e.g. 256 bindings, 64 ranges, 256
// inline candidates").
func DefaultOptions(level Level) Options {
	return Options{
		Level:               level,
		MaxBindings:         256,
		MaxRanges:           64,
		MaxInlineCandidates: 256,
	}
}

const (
	exprInlineSizeLimit         = 4
	exprInlineTransitiveLimit   = 16
	stmtInlineSizeLimit         = 8
	stmtInlineElevatedSizeLimit = 20
	o3FixpointRounds            = 3
)

// Stats counts the rewrites Run performed, for human inspection only
// (`cmd/backendctl -stats`); no pass consults it, preserving §5's
// single-pass-to-completion guarantee. Folds counts functions whose body
// changed size under O1 and range analysis, not individual folds.
// DeadStoresEliminated, ReturnPropagations, IPAConstProps and
// DeadArgsRemoved are not filled in by Run and stay zero.
type Stats struct {
	Folds               int
	DeadStoresEliminated int
	ExprInlines          int
	StmtInlines          int
	LoopsUnrolled        int
	IVsIntroduced        int
	LoopsVectorized      int
	ReturnPropagations   int
	IPAConstProps        int
	DeadArgsRemoved      int
	DeadFunctionsRemoved int
}

// Run applies the optimizer to every function in program at opts.Level,
// returning the (possibly shrunk, at O3) function list and accumulated
// Stats.
func Run(program []*ast.Node, opts Options) ([]*ast.Node, Stats) {
	var stats Stats
	if opts.Level == O0 {
		return program, stats
	}

	for _, fn := range program {
		runO1AndRange(fn, opts, &stats)
	}

	if opts.Level == O1 {
		return program, stats
	}

	for _, fn := range program {
		runO2(fn, opts, &stats)
	}

	if opts.Level == O2 {
		return program, stats
	}

	program = runO3(program, opts, &stats)
	return program, stats
}

func runO1AndRange(fn *ast.Node, opts Options, stats *Stats) {
	if fn.Kind != ast.KindFunction || fn.Body == nil {
		return
	}
	before := ast.CountNodes(fn.Body)
	RunO1(fn)
	RunRangeAnalysis(fn.Body, opts)
	RunO1(fn)
	after := ast.CountNodes(fn.Body)
	if after != before {
		stats.Folds++
	}
}

func runO2(fn *ast.Node, opts Options, stats *Stats) {
	if fn.Kind != ast.KindFunction || fn.Body == nil {
		return
	}
	RunO2Propagation(fn.Body, opts)

	program := []*ast.Node{fn} // single-function view for candidate discovery at O2 scope
	candidates := findExprCandidates(program, opts, exprInlineSizeLimit)
	stats.ExprInlines += InlineExprCalls(fn.Body, candidates)

	RunO1(fn)
	RunO2Propagation(fn.Body, opts)

	walkLoops(fn.Body, func(loop *ast.Node) {
		prelude := RunIVStrengthReduction(loop)
		if len(prelude) > 0 {
			stats.IVsIntroduced += len(prelude)
			spliceBefore(fn.Body, loop, prelude)
		}
	})
}

func runO3(program []*ast.Node, opts Options, stats *Stats) []*ast.Node {
	hot := map[string]bool{}
	if opts.IsHot != nil {
		for _, fn := range program {
			if fn.Kind == ast.KindFunction && opts.IsHot(fn.Name) {
				hot[fn.Name] = true
			}
		}
	}

	siteSeq := 0
	for round := 0; round < o3FixpointRounds; round++ {
		exprCands := findExprCandidates(program, opts, exprInlineTransitiveLimit)
		stmtCands := findStmtCandidates(program, stmtInlineSizeLimit, hot, stmtInlineElevatedSizeLimit)

		changed := 0
		for _, fn := range program {
			if fn.Kind != ast.KindFunction || fn.Body == nil {
				continue
			}
			exprHits := InlineExprCalls(fn.Body, exprCands)
			stmtHits := InlineStmtCalls(fn.Body, fn.Name, stmtCands, &siteSeq)
			stats.ExprInlines += exprHits
			stats.StmtInlines += stmtHits
			changed += exprHits + stmtHits
			RunO1(fn)
			RunO2Propagation(fn.Body, opts)
		}
		if changed == 0 {
			break
		}
	}

	for _, fn := range program {
		if fn.Kind != ast.KindFunction || fn.Body == nil {
			continue
		}
		walkLoops(fn.Body, func(loop *ast.Node) {
			if loop.Kind == ast.KindFor {
				if unrolled := UnrollLoop(loop); unrolled != nil {
					*loop = *unrolled
					stats.LoopsUnrolled++
				}
			}
		})
		RunO1(fn)
	}

	for _, fn := range program {
		if fn.Kind != ast.KindFunction || fn.Body == nil {
			continue
		}
		walkLoops(fn.Body, func(loop *ast.Node) {
			switch loop.Kind {
			case ast.KindFor:
				before := loop.VecInfo
				VectorizeFor(loop, opts.AVXLevel)
				if loop.VecInfo != nil && loop.VecInfo != before {
					stats.LoopsVectorized++
				}
			case ast.KindWhile:
				before := loop.VecInfo
				VectorizeWhile(loop, opts.AVXLevel)
				if loop.VecInfo != nil && loop.VecInfo != before {
					stats.LoopsVectorized++
				}
			}
		})
	}

	before := len(program)
	program = RunIPA(program, opts)
	stats.DeadFunctionsRemoved += before - len(program)

	return program
}

// walkLoops calls fn for every while/do_while/for reachable from n,
// depth-first, visiting outer loops before inner ones.
func walkLoops(n *ast.Node, fn func(*ast.Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindWhile, ast.KindDoWhile, ast.KindFor:
		fn(n)
	}
	for _, c := range []*ast.Node{n.Left, n.Right, n.Expr, n.Array, n.Index, n.Object,
		n.Initializer, n.Lhs, n.Rhs, n.Cond, n.Then, n.Else, n.Init, n.Step, n.Body} {
		walkLoops(c, fn)
	}
	for _, c := range n.Children {
		walkLoops(c, fn)
	}
}

// spliceBefore inserts prelude immediately before target within the
// nearest enclosing block reachable from root (used to place
// induction-variable declarations ahead of the loop that uses them,
// §4.K).
func spliceBefore(root, target *ast.Node, prelude []*ast.Node) {
	if root == nil {
		return
	}
	if root.Kind == ast.KindBlock {
		for i, c := range root.Children {
			if c == target {
				rest := append([]*ast.Node{}, root.Children[i:]...)
				root.Children = append(root.Children[:i], prelude...)
				root.Children = append(root.Children, rest...)
				return
			}
		}
	}
	for _, c := range []*ast.Node{root.Then, root.Else, root.Body} {
		spliceBefore(c, target, prelude)
	}
	for _, c := range root.Children {
		spliceBefore(c, target, prelude)
	}
}
