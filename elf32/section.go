package elf32

import "fmt"

// Section models one Elf32_Shdr plus its payload bytes, late-bound to a
// resolved name, its string table (for SHT_SYMTAB), its relocation
// target, and the set of relocation sections that target it.
// Cross-references are carried as integer indices into the owning File's
// section list; LateInit resolves Link/Info into the Strtab/RelTarget
// pointers and records RelocatedBy as indices, see spec.md §9 on why
// this avoids ownership cycles between sections.
type Section struct {
	Index int

	ShName    uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Offset    uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32

	Data []byte

	Name string

	// RelocatedBy lists the indices of relocation sections whose sh_info
	// points at this section (the inverse of Info for SHT_REL/SHT_RELA
	// sections). Populated by LateInit.
	RelocatedBy []int

	// Populated by LateInit when Type == SHT_SYMTAB.
	Strtab        *Section
	SymbolEntries []*Symbol

	// Populated by LateInit when IsRel().
	RelTarget   *Section
	Relocations []*Relocation
}

// IsRel reports whether this section holds relocation records.
func (s *Section) IsRel() bool {
	return s.Type == SHT_REL || s.Type == SHT_RELA
}

func decodeSection(header []byte, fileData []byte, index int) (*Section, error) {
	raw, err := decodeShdr(header)
	if err != nil {
		return nil, err
	}
	if raw.Flags&SHF_LINK_ORDER != 0 {
		return nil, fmt.Errorf("%w: SHF_LINK_ORDER is not supported (section index %d)", ErrMalformed, index)
	}
	if raw.Entsize != 0 && raw.Size%raw.Entsize != 0 {
		return nil, fmt.Errorf("%w: sh_size %d not a multiple of sh_entsize %d (section index %d)", ErrMalformed, raw.Size, raw.Entsize, index)
	}
	var data []byte
	if raw.Type != SHT_NOBITS {
		end := int(raw.Offset) + int(raw.Size)
		if end > len(fileData) || int(raw.Offset) > end {
			return nil, fmt.Errorf("%w: section %d payload [%d:%d] out of bounds (file is %d bytes)", ErrMalformed, index, raw.Offset, end, len(fileData))
		}
		data = make([]byte, raw.Size)
		copy(data, fileData[raw.Offset:end])
	}
	return &Section{
		Index:     index,
		ShName:    raw.Name,
		Type:      raw.Type,
		Flags:     raw.Flags,
		Addr:      raw.Addr,
		Offset:    raw.Offset,
		Size:      raw.Size,
		Link:      raw.Link,
		Info:      raw.Info,
		Addralign: raw.Addralign,
		Entsize:   raw.Entsize,
		Data:      data,
	}, nil
}

// newSectionFromParts constructs a fresh section with sh_addr = 0,
// sh_offset = 0, sh_size = len(data), used by the splicer to insert
// .rel.text / .rela.text when absent (spec.md §4.E from_parts).
func newSectionFromParts(shName, shType, shFlags, shLink, shInfo, shAddralign, shEntsize uint32, data []byte, index int) *Section {
	return &Section{
		Index:     index,
		ShName:    shName,
		Type:      shType,
		Flags:     shFlags,
		Addr:      0,
		Offset:    0,
		Size:      uint32(len(data)),
		Link:      shLink,
		Info:      shInfo,
		Addralign: shAddralign,
		Entsize:   shEntsize,
		Data:      append([]byte(nil), data...),
	}
}

// headerToBin packs the current header state into its 40-byte wire form.
// If the section is not SHT_NOBITS, sh_size is refreshed from len(Data)
// first, so in-place payload growth (e.g. appending relocations) is
// reflected automatically on write.
func (s *Section) headerToBin() []byte {
	if s.Type != SHT_NOBITS {
		s.Size = uint32(len(s.Data))
	}
	return encodeShdr(shdrRaw{
		Name:      s.ShName,
		Type:      s.Type,
		Flags:     s.Flags,
		Addr:      s.Addr,
		Offset:    s.Offset,
		Size:      s.Size,
		Link:      s.Link,
		Info:      s.Info,
		Addralign: s.Addralign,
		Entsize:   s.Entsize,
	})
}

// LateInit performs the second binding phase, invoked once every section
// in the file exists: resolving a symbol table's string table and parsing
// its symbol entries, or resolving a relocation section's target and
// parsing its relocation entries and registering itself in the target's
// RelocatedBy list.
func (s *Section) LateInit(sections []*Section) error {
	switch {
	case s.Type == SHT_SYMTAB:
		return s.initSymbols(sections)
	case s.IsRel():
		if int(s.Info) >= len(sections) {
			return fmt.Errorf("%w: relocation section %q sh_info %d out of range", ErrMalformed, s.Name, s.Info)
		}
		s.RelTarget = sections[s.Info]
		s.RelTarget.RelocatedBy = append(s.RelTarget.RelocatedBy, s.Index)
		return s.initRelocs()
	}
	return nil
}

func (s *Section) initSymbols(sections []*Section) error {
	if s.Entsize != symSize {
		return fmt.Errorf("%w: symtab sh_entsize is %d, want %d", ErrMalformed, s.Entsize, symSize)
	}
	if int(s.Link) >= len(sections) {
		return fmt.Errorf("%w: symtab sh_link %d out of range", ErrMalformed, s.Link)
	}
	strtab := sections[s.Link]
	entries := make([]*Symbol, 0, len(s.Data)/symSize)
	for i := 0; i+symSize <= len(s.Data); i += symSize {
		sym, err := DecodeSymbol(s.Data[i:i+symSize], strtab)
		if err != nil {
			return err
		}
		entries = append(entries, sym)
	}
	s.Strtab = strtab
	s.SymbolEntries = entries
	return nil
}

func (s *Section) initRelocs() error {
	entsize := relSize
	isRela := s.Type == SHT_RELA
	if isRela {
		entsize = relaSize
	}
	if int(s.Entsize) != entsize {
		return fmt.Errorf("%w: relocation section %q sh_entsize is %d, want %d", ErrMalformed, s.Name, s.Entsize, entsize)
	}
	entries := make([]*Relocation, 0, len(s.Data)/entsize)
	for i := 0; i+entsize <= len(s.Data); i += entsize {
		rel, err := DecodeRelocation(s.Data[i:i+entsize], isRela)
		if err != nil {
			return err
		}
		entries = append(entries, rel)
	}
	s.Relocations = entries
	return nil
}

// FindSymbol does a linear scan for a symbol by name, returning the
// first match and whether one was found. Used by the splicer to locate placeholder
// functions (spec.md §4.G Step 1).
func (s *Section) FindSymbol(name string) (*Symbol, bool) {
	for _, sym := range s.SymbolEntries {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}
