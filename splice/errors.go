package splice

import "errors"

// Error kinds from spec.md §7, as errors.Is-comparable sentinels wrapped
// with %w so callers can branch on kind without string matching, the one
// place this repo adds structure beyond the teacher's raw fmt.Errorf
// values, because spec.md explicitly names distinct kinds the calling
// build driver is expected to distinguish.
var (
	// ErrSymbolNotFound: a placeholder temp_fn_name is absent from the
	// target symtab.
	ErrSymbolNotFound = errors.New("placeholder symbol not found")

	// ErrMisaligned: a placeholder symbol's st_value is not a multiple of
	// 4, or placeholders appear out of source order.
	ErrMisaligned = errors.New("misaligned or out-of-order placeholder")

	// ErrBadAssemblyObject: the assembled object defines a symbol outside
	// its own .text, or relocates into a local symbol.
	ErrBadAssemblyObject = errors.New("assembled object violates splicer assumptions")

	// ErrAssemblerFailed: the external assembler command exited non-zero.
	ErrAssemblerFailed = errors.New("assembler invocation failed")
)
