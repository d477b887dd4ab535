package elf32

import "errors"

// ErrMalformed is wrapped by every ELF invariant violation: bad magic,
// wrong class/endianness/machine/type, multiple symbol tables, a missing
// NUL terminator in a string table, SHN_XINDEX, or sh_size not a multiple
// of sh_entsize.
var ErrMalformed = errors.New("malformed ELF object")
