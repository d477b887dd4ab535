package elf32

import "encoding/binary"

// objBuilder assembles a MIPS ET_REL object from the sections added to
// it, for use across the package's tests; minimalObject uses it to build
// one with a .text, .symtab, and .strtab section. That shape mirrors the
// original Python reference's test fixtures: one function symbol
// pointing into .text, and nothing else.
type objBuilder struct {
	sections []builtSection
}

type builtSection struct {
	name      string
	shType    uint32
	flags     uint32
	link      uint32
	info      uint32
	addralign uint32
	entsize   uint32
	data      []byte
}

func newObjBuilder() *objBuilder {
	return &objBuilder{sections: []builtSection{{name: "", shType: SHT_NULL}}}
}

func (b *objBuilder) add(s builtSection) int {
	b.sections = append(b.sections, s)
	return len(b.sections) - 1
}

// build serializes the accumulated sections into a full ELF object,
// computing a shstrtab, section header offsets, and the ELF header by
// hand (not via File.Write, so parsing tests don't depend on the
// encoder under test).
func (b *objBuilder) build() []byte {
	shstrtabIdx := b.add(builtSection{name: ".shstrtab", shType: SHT_STRTAB})

	var shstrtabData []byte
	shstrtabData = append(shstrtabData, 0)
	nameOffsets := make([]uint32, len(b.sections))
	for i, s := range b.sections {
		nameOffsets[i] = uint32(len(shstrtabData))
		shstrtabData = append(shstrtabData, []byte(s.name)...)
		shstrtabData = append(shstrtabData, 0)
	}
	b.sections[shstrtabIdx].data = shstrtabData

	var buf []byte
	buf = make([]byte, ehdrSize)

	offsets := make([]uint32, len(b.sections))
	for i, s := range b.sections {
		if s.shType == SHT_NULL {
			continue
		}
		for len(buf)%4 != 0 {
			buf = append(buf, 0)
		}
		offsets[i] = uint32(len(buf))
		buf = append(buf, s.data...)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	shoff := uint32(len(buf))

	for i, s := range b.sections {
		var size uint32
		if s.shType != SHT_NULL {
			size = uint32(len(s.data))
		}
		hdr := shdrRaw{
			Name:      nameOffsets[i],
			Type:      s.shType,
			Flags:     s.flags,
			Addr:      0,
			Offset:    offsets[i],
			Size:      size,
			Link:      s.link,
			Info:      s.info,
			Addralign: s.addralign,
			Entsize:   s.entsize,
		}
		buf = append(buf, encodeShdr(hdr)...)
	}

	h := Header{
		Type:      ET_REL,
		Machine:   EM_MIPS,
		Version:   1,
		Shoff:     shoff,
		Ehsize:    ehdrSize,
		Shentsize: shdrSize,
		Shnum:     uint16(len(b.sections)),
		Shstrndx:  uint16(shstrtabIdx),
	}
	h.Ident[0], h.Ident[1], h.Ident[2], h.Ident[3] = 0x7f, 'E', 'L', 'F'
	h.Ident[eiClass] = ELFCLASS32
	h.Ident[eiData] = ELFDATA2MSB
	copy(buf[0:ehdrSize], h.encode())
	return buf
}

func symRecord(name, value, size, shndx uint32, bind, typ byte) []byte {
	info := (bind << 4) | (typ & 0xf)
	raw := make([]byte, symSize)
	binary.BigEndian.PutUint32(raw[0:4], name)
	binary.BigEndian.PutUint32(raw[4:8], value)
	binary.BigEndian.PutUint32(raw[8:12], size)
	raw[12] = info
	raw[13] = 0
	binary.BigEndian.PutUint16(raw[14:16], uint16(shndx))
	return raw
}

// minimalObject builds the smallest valid object: null section, .text
// (textWords zero/nop words), .symtab (one null symbol, one global function
// symbol named fnName at word offset fnWordOffset), .strtab.
func minimalObject(fnName string, fnWordOffset int, textWords int) []byte {
	b := newObjBuilder()

	text := make([]byte, textWords*4)
	textIdx := b.add(builtSection{name: ".text", shType: SHT_PROGBITS, flags: SHF_ALLOC | SHF_EXECINSTR, addralign: 4, data: text})

	var strtabData []byte
	strtabData = append(strtabData, 0)
	fnNameOff := uint32(len(strtabData))
	strtabData = append(strtabData, []byte(fnName)...)
	strtabData = append(strtabData, 0)
	strtabIdx := b.add(builtSection{name: ".strtab", shType: SHT_STRTAB, data: strtabData})

	var symData []byte
	symData = append(symData, symRecord(0, 0, 0, 0, STB_LOCAL, STT_NOTYPE)...)
	symData = append(symData, symRecord(fnNameOff, uint32(fnWordOffset*4), 0, uint32(textIdx), STB_GLOBAL, STT_FUNC)...)
	b.add(builtSection{name: ".symtab", shType: SHT_SYMTAB, link: uint32(strtabIdx), info: 1, entsize: symSize, data: symData})

	return b.build()
}
