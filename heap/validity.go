package heap

// UpdateVariableValidity implements spec.md §4.3: rewrite an existing
// base's validity bounds and, if makeWeak is set and the base was
// strong, promote it: rename it (insert "_w") and weaken its C type
// to an unsized array. It is a fatal InvariantViolation to call this
// on a base that is not Allocated with Variable validity (spec.md
// §4.11, §7).
//
// The operation is monotone: callers issue it either with identical
// bounds (idempotent) or with widened bounds; the new [minAlloc,
// maxAlloc] is the join of the old bounds with the ones passed in, so
// a caller can never accidentally shrink a base's validity.
//
// Returns the new max valid bit offset for the Uninitialization
// Painter to use; the base keeps its id.
func (ctx *Context) UpdateVariableValidity(id BaseId, sizev AbstractValue, makeWeak bool) int64 {
	b := ctx.Arena.Get(id)
	if b.Kind != Allocated || b.Validity.Tag != Variable {
		fatalf(InvariantViolation, "update_variable_validity on non-Allocated/non-Variable base %q", b.Name)
	}

	smin, smax := ExtractSize(sizev, ctx.Options.MaxByteSize)
	newMin, newMax := bitBounds(smin, smax)

	wasWeak := b.Validity.Weak
	minAlloc := b.Validity.MinAlloc
	if newMin < minAlloc {
		minAlloc = newMin
	}
	maxAlloc := maxI64(b.Validity.MaxAlloc, newMax)
	weak := makeWeak || wasWeak

	if makeWeak && !wasWeak {
		b.Name = markWeak(b.Name)
		b.Typ.Kind = UnsizedArray
		b.Typ.NbElems = 0
		ctx.Stats.Promoted.Inc(1)
		ctx.tracef("update_variable_validity(%s) promoted to weak", b.Name)
	}

	b.Validity = VariableValidity(weak, minAlloc, maxAlloc)
	ctx.tracef("update_variable_validity(%s) -> [%d,%d] weak=%v", b.Name, minAlloc, maxAlloc, weak)
	return maxAlloc
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
