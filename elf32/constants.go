package elf32

// Section indices with special meaning (Elf32_Word sh_link/st_shndx values).
const (
	SHN_UNDEF  = 0x0000
	SHN_ABS    = 0xfff1
	SHN_COMMON = 0xfff2
	SHN_XINDEX = 0xffff
)

// Symbol types (st_info & 0xf).
const (
	STT_NOTYPE  = 0
	STT_OBJECT  = 1
	STT_FUNC    = 2
	STT_SECTION = 3
	STT_FILE    = 4
	STT_COMMON  = 5
	STT_TLS     = 6
)

// Symbol bindings (st_info >> 4).
const (
	STB_LOCAL  = 0
	STB_GLOBAL = 1
	STB_WEAK   = 2
)

// Symbol visibilities (st_other & 0x3).
const (
	STV_DEFAULT   = 0
	STV_INTERNAL  = 1
	STV_HIDDEN    = 2
	STV_PROTECTED = 3
)

// Section types (sh_type).
const (
	SHT_NULL         = 0
	SHT_PROGBITS     = 1
	SHT_SYMTAB       = 2
	SHT_STRTAB       = 3
	SHT_RELA         = 4
	SHT_HASH         = 5
	SHT_DYNAMIC      = 6
	SHT_NOTE         = 7
	SHT_NOBITS       = 8
	SHT_REL          = 9
	SHT_SHLIB        = 10
	SHT_DYNSYM       = 11
	SHT_MIPS_REGINFO = 0x70000006
)

// Section flags (sh_flags).
const (
	SHF_WRITE      = 0x1
	SHF_ALLOC      = 0x2
	SHF_EXECINSTR  = 0x4
	SHF_LINK_ORDER = 0x80
)

// ELF header e_type / e_machine values this package accepts.
const (
	ET_REL   = 1
	EM_MIPS  = 8
	ELFCLASS32 = 1
	ELFDATA2MSB = 2
)

// Relocation types this tool actually cares about (MIPS); the splicer
// treats rel_type as an opaque byte otherwise.
const (
	R_MIPS_32   = 2
	R_MIPS_26   = 4
	R_MIPS_HI16 = 5
	R_MIPS_LO16 = 6
)

// e_ident byte indices.
const (
	eiClass = 4
	eiData  = 5
)
