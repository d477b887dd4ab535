package elf32

import (
	"bytes"
	"fmt"
	"os"
)

const ehdrSize = 52 // 16-byte e_ident + 36-byte tail

// Header is the 52-byte Elf32_Ehdr, carried as its own struct so File can
// rewrite e_shoff/e_shnum without re-deriving the rest of the fields.
type Header struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < ehdrSize {
		return Header{}, fmt.Errorf("%w: file is %d bytes, shorter than the 52-byte ELF header", ErrMalformed, len(b))
	}
	if !bytes.Equal(b[0:4], []byte{0x7f, 'E', 'L', 'F'}) {
		return Header{}, fmt.Errorf("%w: bad magic %x", ErrMalformed, b[0:4])
	}
	tail, err := decodeEhdrTail(b[16:ehdrSize])
	if err != nil {
		return Header{}, err
	}
	var h Header
	copy(h.Ident[:], b[0:16])
	h.Type = tail.Type
	h.Machine = tail.Machine
	h.Version = tail.Version
	h.Entry = tail.Entry
	h.Phoff = tail.Phoff
	h.Shoff = tail.Shoff
	h.Flags = tail.Flags
	h.Ehsize = tail.Ehsize
	h.Phentsize = tail.Phentsize
	h.Phnum = tail.Phnum
	h.Shentsize = tail.Shentsize
	h.Shnum = tail.Shnum
	h.Shstrndx = tail.Shstrndx

	if h.Ident[eiClass] != ELFCLASS32 {
		return Header{}, fmt.Errorf("%w: only 32-bit ELF is supported (e_ident[EI_CLASS]=%d)", ErrMalformed, h.Ident[eiClass])
	}
	if h.Ident[eiData] != ELFDATA2MSB {
		return Header{}, fmt.Errorf("%w: only big-endian ELF is supported (e_ident[EI_DATA]=%d)", ErrMalformed, h.Ident[eiData])
	}
	if h.Type != ET_REL {
		return Header{}, fmt.Errorf("%w: e_type is %d, want ET_REL (1)", ErrMalformed, h.Type)
	}
	if h.Machine != EM_MIPS {
		return Header{}, fmt.Errorf("%w: e_machine is %d, want EM_MIPS (8)", ErrMalformed, h.Machine)
	}
	if h.Phoff != 0 {
		return Header{}, fmt.Errorf("%w: e_phoff is %d, want 0 (no program headers)", ErrMalformed, h.Phoff)
	}
	if h.Shoff == 0 {
		return Header{}, fmt.Errorf("%w: e_shoff is 0", ErrMalformed)
	}
	if h.Shstrndx == SHN_UNDEF {
		return Header{}, fmt.Errorf("%w: e_shstrndx is SHN_UNDEF", ErrMalformed)
	}
	return h, nil
}

func (h Header) encode() []byte {
	tail := ehdrTail{
		Type:      h.Type,
		Machine:   h.Machine,
		Version:   h.Version,
		Entry:     h.Entry,
		Phoff:     h.Phoff,
		Shoff:     h.Shoff,
		Flags:     h.Flags,
		Ehsize:    h.Ehsize,
		Phentsize: h.Phentsize,
		Phnum:     h.Phnum,
		Shentsize: h.Shentsize,
		Shnum:     h.Shnum,
		Shstrndx:  h.Shstrndx,
	}
	out := make([]byte, 0, ehdrSize)
	out = append(out, h.Ident[:]...)
	out = append(out, encodeEhdrTail(tail)...)
	return out
}

// File is the exclusive owner of its section list, as described in
// spec.md §3: sections refer to each other by index (Link, Info,
// RelocatedBy), and the Strtab/RelTarget pointers into the same list are
// resolved from those indices by Section.LateInit.
type File struct {
	Header   Header
	Sections []*Section
	Symtab   *Section
}

// Parse builds a complete File model from a raw object-file buffer,
// following the six steps of spec.md §4.F.
func Parse(data []byte) (*File, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	if int(hdr.Shoff)+int(hdr.Shentsize) > len(data) {
		return nil, fmt.Errorf("%w: e_shoff %d + e_shentsize %d past end of file", ErrMalformed, hdr.Shoff, hdr.Shentsize)
	}
	nullHeader := data[hdr.Shoff : int(hdr.Shoff)+int(hdr.Shentsize)]
	nullSection, err := decodeSection(nullHeader, data, 0)
	if err != nil {
		return nil, err
	}

	numSections := int(hdr.Shnum)
	if numSections == 0 {
		numSections = int(nullSection.Size)
	}

	sections := make([]*Section, 0, numSections)
	sections = append(sections, nullSection)
	for i := 1; i < numSections; i++ {
		off := int(hdr.Shoff) + i*int(hdr.Shentsize)
		if off+int(hdr.Shentsize) > len(data) {
			return nil, fmt.Errorf("%w: section header %d past end of file", ErrMalformed, i)
		}
		sec, err := decodeSection(data[off:off+int(hdr.Shentsize)], data, i)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}

	var symtab *Section
	for _, s := range sections {
		if s.Type == SHT_SYMTAB {
			if symtab != nil {
				return nil, fmt.Errorf("%w: more than one SHT_SYMTAB section", ErrMalformed)
			}
			symtab = s
		}
	}
	if symtab == nil {
		return nil, fmt.Errorf("%w: no SHT_SYMTAB section found", ErrMalformed)
	}

	if int(hdr.Shstrndx) >= len(sections) {
		return nil, fmt.Errorf("%w: e_shstrndx %d out of range", ErrMalformed, hdr.Shstrndx)
	}
	shstr := sections[hdr.Shstrndx]
	for _, s := range sections {
		name, err := shstr.LookupStr(s.ShName)
		if err != nil {
			return nil, err
		}
		s.Name = name
	}
	for _, s := range sections {
		if err := s.LateInit(sections); err != nil {
			return nil, err
		}
	}

	return &File{Header: hdr, Sections: sections, Symtab: symtab}, nil
}

// ReadFile reads and parses an object file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("IO: reading %s: %w", path, err)
	}
	return Parse(data)
}

// FindSection returns the first section with the given name, or nil.
func (f *File) FindSection(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSection appends a brand-new section (e.g. a .rel.text created by the
// splicer when one was absent), registers its name in the section-header
// string table, and immediately late-initializes it so its RelocatedBy
// link is established, per spec.md §9 "Section insertion after load."
func (f *File) AddSection(name string, shType, shFlags, shLink, shInfo, shAddralign, shEntsize uint32, data []byte) (*Section, error) {
	shstr := f.Sections[f.Header.Shstrndx]
	nameOff, err := shstr.AddStr(name)
	if err != nil {
		return nil, err
	}
	s := newSectionFromParts(nameOff, shType, shFlags, shLink, shInfo, shAddralign, shEntsize, data, len(f.Sections))
	s.Name = name
	f.Sections = append(f.Sections, s)
	if err := s.LateInit(f.Sections); err != nil {
		return nil, err
	}
	return s, nil
}

// Write serializes the current model to w, following spec.md §4.F's
// write algorithm: sections are emitted in index order with per-section
// alignment padding, SHT_NULL/SHT_NOBITS sections contribute no file
// bytes, the cursor is padded to 4 before the section header table, and
// the ELF header is rewritten last with the now-current e_shoff/e_shnum.
// Byte-exact offsets from the original file are not preserved; functional
// equivalence is (spec.md §8 property 1).
func (f *File) Write() ([]byte, error) {
	var buf bytes.Buffer

	f.Header.Shnum = uint16(len(f.Sections))

	headerPlaceholder := f.Header.encode()
	buf.Write(headerPlaceholder)

	for _, s := range f.Sections {
		if s.Type == SHT_NULL || s.Type == SHT_NOBITS {
			continue
		}
		if s.Addralign > 0 {
			if pad := buf.Len() % int(s.Addralign); pad != 0 {
				buf.Write(make([]byte, int(s.Addralign)-pad))
			}
		}
		s.Offset = uint32(buf.Len())
		buf.Write(s.Data)
	}

	if pad := buf.Len() % 4; pad != 0 {
		buf.Write(make([]byte, 4-pad))
	}
	f.Header.Shoff = uint32(buf.Len())

	for _, s := range f.Sections {
		buf.Write(s.headerToBin())
	}

	out := buf.Bytes()
	copy(out[0:ehdrSize], f.Header.encode())
	return out, nil
}

// WriteFile writes the serialized model to path.
func (f *File) WriteFile(path string) error {
	data, err := f.Write()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("IO: writing %s: %w", path, err)
	}
	return nil
}
