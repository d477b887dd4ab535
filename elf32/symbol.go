package elf32

import "fmt"

// Symbol models one Elf32_Sym entry, decomposed per spec.md §3/§4.C.
type Symbol struct {
	StName  uint32
	StValue uint32
	StSize  uint32
	StOther byte
	StShndx uint16

	Bind       byte
	Type       byte
	Visibility byte

	Name string

	// NewIndex is the splicer's auxiliary remap field: populated in one
	// forward pass over the surviving symbols before any relocation is
	// rewritten, then read (never written) while rewriting relocations.
	// See splice.Splice and spec.md §9 "Mutation during index remapping."
	NewIndex int
}

// DecodeSymbol parses one 16-byte Elf32_Sym record. strtab resolves
// st_name into the symbol's Name.
func DecodeSymbol(b []byte, strtab *Section) (*Symbol, error) {
	raw, err := decodeSym(b)
	if err != nil {
		return nil, err
	}
	if raw.Shndx == SHN_XINDEX {
		return nil, fmt.Errorf("%w: SHN_XINDEX is not supported", ErrMalformed)
	}
	name, err := strtab.LookupStr(raw.Name)
	if err != nil {
		return nil, err
	}
	return &Symbol{
		StName:     raw.Name,
		StValue:    raw.Value,
		StSize:     raw.Size,
		StOther:    raw.Other,
		StShndx:    raw.Shndx,
		Bind:       raw.Info >> 4,
		Type:       raw.Info & 0xf,
		Visibility: raw.Other & 0x3,
		Name:       name,
	}, nil
}

// Encode serializes the symbol back to its 16-byte wire form. The
// round-trip contract is encode(decode(b)) == b whenever Bind, Type, and
// the raw fields are untouched (spec.md §4.C).
func (s *Symbol) Encode() []byte {
	info := (s.Bind << 4) | (s.Type & 0xf)
	return encodeSym(symRaw{
		Name:  s.StName,
		Value: s.StValue,
		Size:  s.StSize,
		Info:  info,
		Other: s.StOther,
		Shndx: s.StShndx,
	})
}
