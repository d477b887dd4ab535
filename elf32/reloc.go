package elf32

// Relocation models one REL (8-byte) or RELA (12-byte) entry, decomposed
// per spec.md §3/§4.D. r_info is recomputed from SymIndex and RelType on
// Encode, never stored directly: the splicer mutates SymIndex in place
// while rewriting relocations, and the wire encoding must always reflect
// the current value.
type Relocation struct {
	ROffset  uint32
	Addend   int32 // only meaningful when IsRela
	SymIndex uint32
	RelType  byte
	IsRela   bool
}

// DecodeRelocation parses one relocation record. isRela selects the
// 12-byte (with addend) vs 8-byte wire format.
func DecodeRelocation(b []byte, isRela bool) (*Relocation, error) {
	raw, err := decodeRel(b, isRela)
	if err != nil {
		return nil, err
	}
	return &Relocation{
		ROffset:  raw.Offset,
		Addend:   raw.Addend,
		SymIndex: raw.Info >> 8,
		RelType:  byte(raw.Info & 0xff),
		IsRela:   isRela,
	}, nil
}

// Encode serializes the relocation back to its wire form, recomputing
// r_info from the (possibly remapped) SymIndex and RelType.
func (r *Relocation) Encode() []byte {
	info := (r.SymIndex << 8) | uint32(r.RelType)
	return encodeRel(relRaw{
		Offset: r.ROffset,
		Info:   info,
		Addend: r.Addend,
	}, r.IsRela)
}
