package heap

// ErrnoENOMEM is the errno value the Fallible-Return Wrapper sets on
// the NULL-return alternative, when MallocReturnsNull is enabled.
const ErrnoENOMEM = 12

// ValueState pairs a returned abstract value with the Model it is
// valid in -- the "(return-value, state)" pair of spec.md §4.6.
type ValueState struct {
	Value AbstractValue
	State Model
}

// Fallible builds the list of (return-value, state) pairs spec.md
// §4.6 describes: always the successful allocation, and, if
// MallocReturnsNull is set, additionally a NULL return paired with
// the *original* (pre-allocation) state carrying an ENOMEM errno.
func (ctx *Context) Fallible(retBase BaseId, ops EvalOp, origState, stateAfterAlloc Model, nullValue AbstractValue, setErrno func(Model, int) Model) []ValueState {
	basePtr := ops.WrapPtr(retBase, singletonZeroOffsets{})
	out := []ValueState{{Value: basePtr, State: stateAfterAlloc}}
	if ctx.Options.MallocReturnsNull {
		failState := origState
		if setErrno != nil {
			failState = setErrno(origState, ErrnoENOMEM)
		}
		out = append(out, ValueState{Value: nullValue, State: failState})
	}
	return out
}

// singletonZeroOffsets is the trivial OffsetSet {0}, the offset a
// freshly returned pointer always carries.
type singletonZeroOffsets struct{}

func (singletonZeroOffsets) Contains(offset int64) bool { return offset == 0 }
func (singletonZeroOffsets) IsSingletonZero() bool       { return true }
