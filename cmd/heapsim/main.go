// Command heapsim drives the heap allocation-base engine over a real
// Go package's call graph, printing the pointer value returned for
// every call to a configured allocator function name (default:
// malloc). Validity intervals are not printed.
//
// It stands in for the real analyzer frontend: it has no C parser, so
// it replays synthetic, constant-size allocations at each matching
// call site rather than evaluating a C abstract interpreter. Its
// purpose is to exercise CallstackOracle/WrapperSet truncation and
// the Allocation Dispatcher's precision ladder end to end, the way
// Matts966-knil (a golang.org/x/tools/go/analysis-based nil-check
// analyzer in the retrieval pack) walks a real callgraph.Graph built
// with go/ssa.
package main

import (
	"flag"
	"fmt"
	"go/types"
	"log"
	"os"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/4144/tis-interpreter/heap"
	"github.com/4144/tis-interpreter/internal/demomodel"
	"github.com/4144/tis-interpreter/internal/typeoracle"
)

func main() {
	var (
		pattern = flag.String("pkg", "", "Go package pattern to load, e.g. ./... or a single package path")
		fn      = flag.String("fn", "malloc", "allocator function name to replay as Frama_C_alloc_by_stack")
		mlevel  = flag.Int("mlevel", 0, "precision-ladder max level (spec.md mlevel option)")
		size    = flag.Int64("size", 8, "constant byte size to replay at each matched call site")
		stats   = flag.Bool("stats", false, "print AllocStats after the run")
		trace   = flag.Bool("trace", false, "enable Context.Trace diagnostics")
	)
	flag.Parse()

	if *pattern == "" {
		fmt.Fprintln(os.Stderr, "usage: heapsim -pkg <pattern> [-fn malloc] [-mlevel 0] [-size 8]")
		os.Exit(2)
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo |
		packages.NeedSyntax | packages.NeedDeps | packages.NeedImports}
	pkgs, err := packages.Load(cfg, *pattern)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		log.Fatalf("package load reported errors")
	}

	prog, _ := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	cg := static.CallGraph(prog)

	opts := heap.DefaultOptions()
	opts.MLevel = *mlevel
	opts.MallocFunctions = []string{*fn}

	ctx := heap.NewContext()
	ctx.Options = opts
	ctx.Trace = *trace

	oracle := typeoracle.New(opts.MaxByteSize)
	ops := demomodel.Ops{}
	state := demomodel.NewState()
	var model heap.Model = state

	env := heap.Env{
		Ops:           ops,
		Oracle:        oracle,
		Bottom:        demomodel.Sentinel("BOTTOM"),
		Uninitialized: demomodel.Sentinel("UNINITIALIZED"),
		Null:          demomodel.NullPtr(ctx.NullBase()),
	}

	var sites int
	callgraph.GraphVisitEdges(cg, func(e *callgraph.Edge) error {
		callee := e.Callee.Func
		if callee == nil || callee.Name() != *fn {
			return nil
		}
		caller := "top"
		if e.Caller != nil && e.Caller.Func != nil {
			caller = e.Caller.Func.Name()
		}
		line := 0
		if e.Site != nil {
			line = prog.Fset.Position(e.Site.Pos()).Line
		}
		env.Stack = heap.Callstack{{Func: caller, Line: line}}

		if rv := returnedPointerType(e); rv != nil {
			oracle.RecordAssignment(caller, rv)
		}

		result, berr := ctx.AllocByStackBuiltin(env, model, []heap.AbstractValue{demomodel.Int(*size, *size)})
		if berr != nil {
			fmt.Fprintf(os.Stderr, "%s:%d: %v\n", caller, line, berr)
			return nil
		}
		for _, vs := range result.Values {
			model = vs.State
			fmt.Printf("%s:%d: %s -> %s\n", caller, line, *fn, vs.Value)
		}
		sites++
		return nil
	})

	fmt.Printf("replayed %d call site(s) of %q\n", sites, *fn)
	if *stats {
		fmt.Printf("coined=%d reused=%d promoted=%d freed_hard=%d freed_weak=%d\n",
			ctx.Stats.Coined.Get(), ctx.Stats.Reused.Get(), ctx.Stats.Promoted.Get(),
			ctx.Stats.FreedHard.Get(), ctx.Stats.FreedWeak.Get())
	}
}

// returnedPointerType reports T when e's call value itself has
// (underlying) pointer type *T, and nil otherwise -- the SSA analog of
// "lv = malloc(...)" having lvalue type T*, used to seed
// typeoracle.Oracle.RecordAssignment. Stores of the result are not
// inspected.
func returnedPointerType(e *callgraph.Edge) types.Type {
	instr, ok := e.Site.(ssa.Value)
	if !ok {
		return nil
	}
	t, ok := instr.Type().Underlying().(*types.Pointer)
	if !ok {
		return nil
	}
	return t.Elem()
}
