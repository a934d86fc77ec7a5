// Command backendctl is a small inspection CLI over the optimizer and
// encoder packages: it runs the optimizer on a toy program, encodes a toy
// instruction sequence, and prints the emitted bytes and relocations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fador/fadors-c99-sub002/ast"
	"github.com/fador/fadors-c99-sub002/buffer"
	"github.com/fador/fadors-c99-sub002/config"
	"github.com/fador/fadors-c99-sub002/encoder"
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/optimize"
	"github.com/fador/fadors-c99-sub002/pgo"
	"github.com/fador/fadors-c99-sub002/reloc"
)

func main() {
	var configPath string
	var pgoPath string

	rootCmd := &cobra.Command{
		Use:   "backendctl",
		Short: "Inspect the optimizer and x86 encoder",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "compiler_options YAML file")
	rootCmd.PersistentFlags().StringVar(&pgoPath, "pgo-file", "", "PGO profile JSON file (overrides --config's pgo_use_file)")

	var optLevel int
	var showStats bool
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the demo toy program through the optimizer and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(configPath, pgoPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("level") {
				opts.Level = optimize.Level(optLevel)
			}

			program := demoProgram()
			program, stats := optimize.Run(program, opts)

			printProgram(program)
			if showStats {
				printStats(stats)
			}
			return nil
		},
	}
	optimizeCmd.Flags().IntVar(&optLevel, "level", int(optimize.O1), "optimization level (0-3)")
	optimizeCmd.Flags().BoolVar(&showStats, "stats", false, "print pass statistics")

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a small demo x86-64 instruction sequence and dump bytes + relocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf := buffer.New(64)
			sink := reloc.New()
			c := encoder.New(buf, encoder.Bits64, sink)

			c.EmitInst2("mov", operand.Imm(0x1234567890abcdef), operand.Reg("rax"))
			c.EmitInst2("add", operand.Reg("rbx"), operand.Reg("rax"))
			c.EmitInst2("cmp", operand.Imm(0), operand.Reg("rax"))
			c.EmitInst1("jne", operand.Label("loop_top"))
			c.EmitInst0("ret")

			dumpBytes(os.Stdout, buf.Bytes())
			dumpRelocs(os.Stdout, sink)
			return nil
		},
	}

	rootCmd.AddCommand(optimizeCmd, encodeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// resolveOptions builds optimize.Options from an optional YAML config
// file and an optional PGO profile, matching §6's compiler_options ->
// pass-threshold wiring.
func resolveOptions(configPath, pgoPath string) (optimize.Options, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return optimize.Options{}, err
		}
		cfg = loaded
	}

	opts := optimize.DefaultOptions(optimize.Level(cfg.OptLevel))
	opts.AVXLevel = optimize.AVXLevel(cfg.AVXLevel)

	profilePath := pgoPath
	if profilePath == "" {
		profilePath = cfg.PGOUseFile
	}
	if profilePath != "" {
		profile, err := pgo.LoadProfile(profilePath)
		if err != nil {
			return optimize.Options{}, err
		}
		opts.IsHot = profile.IsHot
	}
	return opts, nil
}

// demoProgram builds a small toy AST exercising constant folding and loop
// unrolling, standing in for what a real front end would hand the
// optimizer: `int f() { int sum = 0; for (int i=0;i<5;i++) sum = sum + i;
// return sum; }`.
func demoProgram() []*ast.Node {
	sumDecl := &ast.Node{Kind: ast.KindVarDecl, Name: "sum", Initializer: ast.Int(0)}
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
		Body: &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
			sumDecl, loop, {Kind: ast.KindReturn, Expr: ast.Ident("sum")},
		}},
	}
	return []*ast.Node{fn}
}

func printProgram(program []*ast.Node) {
	for _, fn := range program {
		fmt.Printf("function %s: %d statements in body\n", fn.Name, len(fn.Body.Children))
		if last := fn.Body.Children[len(fn.Body.Children)-1]; last.Kind == ast.KindReturn && last.Expr.IsConstant() {
			fmt.Printf("  return %d\n", last.Expr.IntValue)
		}
	}
}

func printStats(s optimize.Stats) {
	fmt.Printf("folds=%d exprInlines=%d stmtInlines=%d unrolled=%d ivs=%d vectorized=%d deadFns=%d\n",
		s.Folds, s.ExprInlines, s.StmtInlines, s.LoopsUnrolled, s.IVsIntroduced, s.LoopsVectorized, s.DeadFunctionsRemoved)
}

// dumpBytes prints the encoded buffer as a hex dump, column-aligned when
// stdout is a terminal and plain (one contiguous hex string) when piped,
// matching the driver-detects-terminal pattern grounded on the teacher's
// direct golang.org/x/term usage.
func dumpBytes(w *os.File, b []byte) {
	if term.IsTerminal(int(w.Fd())) {
		for i, byteVal := range b {
			if i > 0 && i%8 == 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%02x ", byteVal)
		}
		fmt.Fprintln(w)
		return
	}
	for _, byteVal := range b {
		fmt.Fprintf(w, "%02x", byteVal)
	}
	fmt.Fprintln(w)
}

func dumpRelocs(w *os.File, sink *reloc.Sink) {
	for _, r := range sink.Relocs {
		sym := sink.Symbols[r.Symbol]
		fmt.Fprintf(w, "reloc off=%d kind=%s symbol=%s section=%s\n", r.Offset, r.Kind, sym.Name, r.Section)
	}
}
