package heap

// Options holds the configuration table of spec.md §6. CLI flag
// parsing is explicitly out of scope for this package (spec.md §1);
// cmd/heapsim is the one place in the module that owns a flag.FlagSet
// and turns command-line flags into an Options value.
type Options struct {
	// MallocFunctions names whose frames are stripped from the top of
	// the callstack while coining (malloc-functions, default {malloc}).
	MallocFunctions []string

	// MallocReturnsNull enables the nondeterministic NULL-return
	// failure alternative (malloc-returns-null, default false).
	MallocReturnsNull bool

	// MLevel is the max_level for alloc_by_stack (mlevel, default 0).
	MLevel int

	// MallocPLevel is the max_level for alloc_tms / tis_alloc
	// (malloc-plevel, default 3).
	MallocPLevel int

	// TisAllocWeakSize is the size used by the legacy weak allocation
	// builtin (tis-alloc-weak-size, default 10000).
	TisAllocWeakSize int64

	// MaxByteSize caps the byte interval Size Inference will ever
	// report; not a named option in spec.md §6 but required so
	// ExtractSize has a concrete ceiling to default to.
	MaxByteSize int64
}

// DefaultOptions returns the option table's documented defaults.
func DefaultOptions() Options {
	return Options{
		MallocFunctions:   []string{"malloc"},
		MallocReturnsNull: false,
		MLevel:            0,
		MallocPLevel:      3,
		TisAllocWeakSize:  10000,
		MaxByteSize:       1 << 40,
	}
}

// Wrappers builds the WrapperSet implied by MallocFunctions.
func (o Options) Wrappers() WrapperSet {
	return NewWrapperSet(o.MallocFunctions...)
}
