package heap

import "testing"

func TestResolveBasesToFreeSeparatesNullWrongAndValid(t *testing.T) {
	ctx := NewContext()
	oracle := fakeOracle{max: 1 << 30}
	allocated, _ := ctx.AllocAbstract(testStack("f", 1), oracle, false, "malloc", fakeInt(4, 4), true)
	nonAllocated := ctx.Arena.New(Base{Name: "g", Kind: Var})

	fs := ctx.ResolveBasesToFree(fakePtr(allocated))
	if _, ok := fs.Bases[allocated]; !ok || len(fs.Bases) != 1 {
		t.Fatalf("ResolveBasesToFree(allocated) = %+v, want {allocated}", fs.Bases)
	}

	fs = ctx.ResolveBasesToFree(fakePtr(nonAllocated))
	if len(fs.Bases) != 0 || fs.WrongFrees != 1 {
		t.Fatalf("ResolveBasesToFree(non-allocated) = %+v, WrongFrees=%d, want empty/1", fs.Bases, fs.WrongFrees)
	}
}

func TestCardinalityCountsWeakAsTwo(t *testing.T) {
	ctx := NewContext()
	strong := ctx.Arena.New(Base{Name: "s", Kind: Allocated, Validity: VariableValidity(false, 7, 7)})
	weak := ctx.Arena.New(Base{Name: "w", Kind: Allocated, Validity: VariableValidity(true, 7, 7)})

	if got := ctx.cardinality(map[BaseId]struct{}{strong: {}}); got != 1 {
		t.Fatalf("cardinality({strong}) = %d, want 1", got)
	}
	if got := ctx.cardinality(map[BaseId]struct{}{weak: {}}); got != 2 {
		t.Fatalf("cardinality({weak}) = %d, want 2", got)
	}
	if got := ctx.cardinality(map[BaseId]struct{}{strong: {}, weak: {}}); got != 3 {
		t.Fatalf("cardinality({strong,weak}) = %d, want 3", got)
	}
}

func TestFreeSingleStrongBaseRemovesBinding(t *testing.T) {
	ctx := NewContext()
	oracle := fakeOracle{max: 1 << 30}
	id, _ := ctx.AllocAbstract(testStack("f", 1), oracle, false, "malloc", fakeInt(4, 4), true)
	ctx.markMalloced(id)

	state := Model(newFakeState()).AddBase(id, fakeOffsetMap{label: "v"})
	newState, strong := ctx.Free(map[BaseId]struct{}{id: {}}, state)
	if !strong {
		t.Fatalf("freeing a single strong base reported strong=false")
	}
	if _, bound := newState.FindBase(id); bound {
		t.Fatalf("strong free left the base bound in state")
	}
	if _, stillMalloced := ctx.Malloced[id]; stillMalloced {
		t.Fatalf("strong free left the base in ctx.Malloced")
	}
	if ctx.Stats.FreedHard.Get() != 1 {
		t.Fatalf("Stats.FreedHard = %d, want 1", ctx.Stats.FreedHard.Get())
	}
}

func TestFreeMultipleBasesIsWeakAndKeepsBindings(t *testing.T) {
	ctx := NewContext()
	oracle := fakeOracle{max: 1 << 30}
	id1, _ := ctx.AllocAbstract(testStack("f", 1), oracle, false, "malloc", fakeInt(4, 4), true)
	id2, _ := ctx.AllocAbstract(testStack("f", 2), oracle, false, "malloc", fakeInt(4, 4), true)

	state := Model(newFakeState()).AddBase(id1, fakeOffsetMap{label: "a"}).AddBase(id2, fakeOffsetMap{label: "b"})
	newState, strong := ctx.Free(map[BaseId]struct{}{id1: {}, id2: {}}, state)
	if strong {
		t.Fatalf("freeing two bases reported strong=true")
	}
	if _, bound := newState.FindBase(id1); !bound {
		t.Fatalf("weak free removed id1's binding")
	}
	if _, bound := newState.FindBase(id2); !bound {
		t.Fatalf("weak free removed id2's binding")
	}
	if ctx.Stats.FreedWeak.Get() != 2 {
		t.Fatalf("Stats.FreedWeak = %d, want 2", ctx.Stats.FreedWeak.Get())
	}
}

// TestFreeThirdReusesFirstNotSecond is spec.md §8 scenario 3:
// p = malloc(8); q = malloc(8); free(p); r = malloc(8) with mlevel=1
// -> r reuses p's base (strong), not q's; q remains bound.
func TestFreeThirdReusesFirstNotSecond(t *testing.T) {
	ctx := NewContext()
	oracle := fakeOracle{max: 1 << 30}
	stack := testStack("site", 9)

	state := Model(newFakeState())
	p, _ := ctx.AllocByStack(stack, state, oracle, 1, Strong, "malloc", fakeInt(8, 8), true)
	state = state.AddBase(p, fakeOffsetMap{label: "p"})

	q, _ := ctx.AllocByStack(stack, state, oracle, 1, Strong, "malloc", fakeInt(8, 8), true)
	state = state.AddBase(q, fakeOffsetMap{label: "q"})

	state, _ = ctx.Free(map[BaseId]struct{}{p: {}}, state)

	r, _ := ctx.AllocByStack(stack, state, oracle, 1, Strong, "malloc", fakeInt(8, 8), true)
	if r != p {
		t.Fatalf("r = %v, want it to reuse p = %v", r, p)
	}
	if _, bound := state.FindBase(q); !bound {
		t.Fatalf("q's binding was disturbed by freeing p")
	}
}
