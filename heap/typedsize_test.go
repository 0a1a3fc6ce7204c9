package heap

import "testing"

func TestExtractSizeClampsToMaxAndDefaultsOnUnprojectable(t *testing.T) {
	smin, smax := ExtractSize(fakeInt(4, 4), 1<<20)
	if smin != 4 || smax != 4 {
		t.Fatalf("ExtractSize(4,4) = (%d,%d), want (4,4)", smin, smax)
	}

	smin, smax = ExtractSize(fakeInt(-5, 10), 1<<20)
	if smin != 0 || smax != 10 {
		t.Fatalf("ExtractSize(-5,10) = (%d,%d), want (0,10)", smin, smax)
	}

	smin, smax = ExtractSize(fakeInt(0, 1<<30), 100)
	if smin != 0 || smax != 100 {
		t.Fatalf("ExtractSize clamp to maxByteSize = (%d,%d), want (0,100)", smin, smax)
	}

	smin, smax = ExtractSize(Unknown{}, 64)
	if smin != 0 || smax != 64 {
		t.Fatalf("ExtractSize on unprojectable value = (%d,%d), want (0,64)", smin, smax)
	}
}

// Unknown is a value that always fails ProjectIval, to exercise
// ExtractSize's ok=false fallback.
type Unknown struct{}

func (Unknown) Inject(base BaseId, ival IntInterval) AbstractValue { return Unknown{} }
func (Unknown) FoldTopsetOk(f func(base BaseId, offsets OffsetSet) bool) bool { return true }
func (Unknown) ProjectIval() (IntInterval, bool)                             { return IntInterval{}, false }
func (Unknown) Join(AbstractValue) AbstractValue                            { return Unknown{} }

func TestGuessIntendedMallocTypePicksElemOnExactMultiple(t *testing.T) {
	oracle := fakeOracle{elem: "int", elemSize: 4, hasElem: true}
	ts := GuessIntendedMallocType(testStack("f", 1), oracle, 12, 12, true)
	if ts.ElemType != "int" || ts.ElemSize != 4 {
		t.Fatalf("GuessIntendedMallocType = %+v, want elem int/4", ts)
	}
	if !ts.HasElems || ts.NbElems != 3 {
		t.Fatalf("GuessIntendedMallocType NbElems = %v/%d, want true/3", ts.HasElems, ts.NbElems)
	}
}

func TestGuessIntendedMallocTypeFallsBackToCharOnMismatch(t *testing.T) {
	oracle := fakeOracle{elem: "int", elemSize: 4, hasElem: true}
	ts := GuessIntendedMallocType(testStack("f", 1), oracle, 10, 10, true)
	if ts.ElemType != "char" || ts.ElemSize != 1 {
		t.Fatalf("GuessIntendedMallocType on non-multiple size = %+v, want char/1", ts)
	}
}

func TestGuessIntendedMallocTypeNoElemsForVariableSize(t *testing.T) {
	oracle := fakeOracle{elem: "int", elemSize: 4, hasElem: true}
	ts := GuessIntendedMallocType(testStack("f", 1), oracle, 4, 40, false)
	if ts.HasElems {
		t.Fatalf("GuessIntendedMallocType reported HasElems for a non-constant-size request")
	}
}

func TestSizeClassBitsMonotonic(t *testing.T) {
	if sizeClassBits(0) != 0 {
		t.Fatalf("sizeClassBits(0) = %d, want 0", sizeClassBits(0))
	}
	a, b := sizeClassBits(8), sizeClassBits(4096)
	if a >= b {
		t.Fatalf("sizeClassBits not monotonic: sizeClassBits(8)=%d >= sizeClassBits(4096)=%d", a, b)
	}
}
