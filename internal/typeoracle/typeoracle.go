// Package typeoracle is a concrete, Go-hosted stand-in for the C
// TypeOracle collaborator of heap.TypeOracle (spec.md §6). The real
// analyzer consults a C type system; implementing one is out of scope
// (spec.md §1). This adapter instead inspects Go *types.Pointer
// destination types the way Matts966-knil (a golang.org/x/tools/go/
// analysis + go/ssa nil-check analyzer in the retrieval pack) walks
// go/types signatures, so cmd/heapsim and this package's tests have a
// real type system to drive the engine's Size Inference against
// instead of a hand-rolled fake.
package typeoracle

import (
	"go/types"

	"github.com/4144/tis-interpreter/heap"
)

// Oracle adapts go/types types and sizes to heap.TypeOracle: call sites are
// identified by name, and PointeeTypeOfAssignment looks up the
// pointer element type recorded for that name by RecordAssignment.
type Oracle struct {
	sizes   types.Sizes
	assigns map[string]types.Type // call-site key -> destination *T's T
	named   map[string]types.Type // elem type name -> resolved types.Type, for BytesSizeOf
	max     int64
}

// New returns an Oracle using the standard (gc, amd64-like) size
// model and a cap on inferred byte sizes.
func New(maxByteSize int64) *Oracle {
	return &Oracle{
		sizes:   types.SizesFor("gc", "amd64"),
		assigns: make(map[string]types.Type),
		max:     maxByteSize,
	}
}

// RecordAssignment records that the call site named by key is an
// assignment "lv = call(...)" whose lvalue has pointer type *elem.
// cmd/heapsim calls this once per SSA call instruction it inspects,
// the Go analog of the real oracle reading the C AST around the call.
func (o *Oracle) RecordAssignment(key string, elem types.Type) {
	if _, ok := o.assigns[key]; ok {
		return // first-wins, see spec.md §9's open question.
	}
	o.assigns[key] = elem
}

// BytesSizeOf implements heap.TypeOracle.
func (o *Oracle) BytesSizeOf(elemType string) int64 {
	t, ok := o.named[elemType]
	if !ok {
		return 1
	}
	return o.sizes.Sizeof(t)
}

// PointeeTypeOfAssignment implements heap.TypeOracle. stack's
// innermost frame's Func name alone is used as the call-site key (the
// line is ignored); see RecordAssignment.
func (o *Oracle) PointeeTypeOfAssignment(stack heap.Callstack) (string, bool) {
	top, ok := stack.Top()
	if !ok {
		return "", false
	}
	key := top.Func
	t, ok := o.assigns[key]
	if !ok || t == nil {
		return "", false
	}
	name := t.String()
	if o.named == nil {
		o.named = make(map[string]types.Type)
	}
	o.named[name] = t
	return name, true
}

// MaxByteSize implements heap.TypeOracle.
func (o *Oracle) MaxByteSize() int64 { return o.max }

var _ heap.TypeOracle = (*Oracle)(nil)
