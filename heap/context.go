package heap

import (
	"fmt"
	"os"
)

// Context is the analyzer-wide state the engine mutates: the BaseId
// arena, the set of currently-malloced bases, the CallstackRegistry
// and the active Options. Design Note 9 of spec.md §9 asks for these
// to be fields of an explicitly-passed context rather than ambient
// singletons; Context is that context.
//
// Its zero value is not ready for use -- call NewContext. Like the
// teacher's Allocator, a Context is not safe for concurrent use from
// multiple goroutines.
type Context struct {
	Arena    BaseArena
	Registry *CallstackRegistry
	Malloced map[BaseId]struct{}
	Options  Options
	Stats    AllocStats

	// Trace gates one-line stderr diagnostics, the same way the
	// teacher's package-level `trace` const gates fmt.Fprintf(os.Stderr,
	// ...) around Malloc/Free/Realloc (see memory.go). Unlike the
	// teacher's compile-time const, this is a runtime field so tests
	// and cmd/heapsim can toggle it.
	Trace bool

	nullBase *BaseId
}

// NullBase returns the stable BaseId of the single Kind==Null base
// this Context lazily coins the first time it is needed. Pointer
// values denoting NULL should wrap this id (via EvalOp.WrapPtr) rather
// than any Allocated base, so ResolveBasesToFree's Kind switch (spec.md
// §4.8) recognizes them.
func (ctx *Context) NullBase() BaseId {
	if ctx.nullBase == nil {
		id := ctx.Arena.New(Base{Name: "NULL", Kind: Null})
		ctx.nullBase = &id
	}
	return *ctx.nullBase
}

// NewContext returns a ready-to-use Context with default Options.
func NewContext() *Context {
	return &Context{
		Registry: NewCallstackRegistry(),
		Malloced: make(map[BaseId]struct{}),
		Options:  DefaultOptions(),
	}
}

func (c *Context) tracef(format string, args ...interface{}) {
	if !c.Trace {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
}

// markMalloced registers id as a currently-live malloced base, in
// both the global set (spec.md §3) and implicitly via the
// CallstackRegistry pool it was appended to by the caller.
func (c *Context) markMalloced(id BaseId) {
	c.Malloced[id] = struct{}{}
}

// unmarkMalloced removes id from the global malloced set; used by the
// Free Engine on a strong free. The BaseArena record itself is never
// removed (spec.md §9: bases are owned by the global arena for the
// whole analysis).
func (c *Context) unmarkMalloced(id BaseId) {
	delete(c.Malloced, id)
}
