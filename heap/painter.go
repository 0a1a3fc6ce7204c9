package heap

// AddUninitialized implements spec.md §4.5: build an isotropic
// offset-map over the base's full allocable range initialized to the
// bottom value; if maxValidBits >= 0, overwrite [0, maxValidBits]
// with the UNINITIALIZED marker; then join with the base's existing
// offset-map in state, if any, and store back.
//
// Joining rather than replacing is mandatory on re-entry so that
// prior values at shared indices survive a weak allocation -- this
// is why the function takes the *previous* state and returns a new
// one rather than mutating in place.
func AddUninitialized(ops EvalOp, state Model, id BaseId, allocableBits int64, maxValidBits int64, bottom, uninitialized AbstractValue) Model {
	m := ops.CreateIsotropic(allocableBits, bottom)
	if maxValidBits >= 0 {
		m = ops.AddRange(m, 0, maxValidBits, uninitialized, RepeatSpec{Repeat: 1, Rel: false})
	}
	if existing, ok := state.FindBase(id); ok {
		m = existing.Join(m)
	}
	return state.AddBase(id, m)
}
