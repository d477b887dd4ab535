package splice

import (
	"os"
	"testing"

	"github.com/xyproto/mipsasm/elf32"
)

// buildObject assembles a minimal valid MIPS ET_REL object out of
// caller-supplied sections (excluding the implicit null section and
// .shstrtab, which are added automatically), then serializes and
// re-parses it through elf32 itself so the returned *elf32.File is
// fully late-initialized exactly like one read from disk.
type rawSection struct {
	name      string
	typ       uint32
	flags     uint32
	link      uint32
	info      uint32
	addralign uint32
	entsize   uint32
	data      []byte
}

func buildObject(t *testing.T, secs []rawSection) *elf32.File {
	t.Helper()

	names := make([]string, len(secs)+1)
	for i, s := range secs {
		names[i] = s.name
	}
	names[len(secs)] = ".shstrtab"

	var shstrtabData []byte
	shstrtabData = append(shstrtabData, 0)
	nameOffsets := make([]uint32, len(names))
	for i, n := range names {
		nameOffsets[i] = uint32(len(shstrtabData))
		shstrtabData = append(shstrtabData, []byte(n)...)
		shstrtabData = append(shstrtabData, 0)
	}

	sections := make([]*elf32.Section, 0, len(secs)+2)
	sections = append(sections, &elf32.Section{Index: 0, Type: elf32.SHT_NULL})
	for i, s := range secs {
		sections = append(sections, &elf32.Section{
			Index:     i + 1,
			ShName:    nameOffsets[i],
			Type:      s.typ,
			Flags:     s.flags,
			Link:      s.link,
			Info:      s.info,
			Addralign: s.addralign,
			Entsize:   s.entsize,
			Data:      s.data,
		})
	}
	shstrndx := len(sections)
	sections = append(sections, &elf32.Section{
		Index:  shstrndx,
		ShName: nameOffsets[len(secs)],
		Type:   elf32.SHT_STRTAB,
		Data:   shstrtabData,
	})

	f := &elf32.File{Sections: sections}
	f.Header.Ident[0], f.Header.Ident[1], f.Header.Ident[2], f.Header.Ident[3] = 0x7f, 'E', 'L', 'F'
	f.Header.Ident[4] = elf32.ELFCLASS32
	f.Header.Ident[5] = elf32.ELFDATA2MSB
	f.Header.Type = elf32.ET_REL
	f.Header.Machine = elf32.EM_MIPS
	f.Header.Shentsize = 40
	f.Header.Shstrndx = uint16(shstrndx)

	raw, err := f.Write()
	if err != nil {
		t.Fatalf("building fixture object: %v", err)
	}
	parsed, err := elf32.Parse(raw)
	if err != nil {
		t.Fatalf("parsing fixture object: %v", err)
	}
	return parsed
}

func writeTempObject(t *testing.T, f *elf32.File) string {
	t.Helper()
	path := t.TempDir() + "/target.o"
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("writing fixture object: %v", err)
	}
	return path
}

// stubAssembler returns a shell command string that, when Splice appends
// "<inpath> -o <outpath>" to it, ignores the generated assembly and
// copies sourceObj's bytes to the output path instead, standing in for
// a real MIPS assembler in tests that don't have one on PATH.
func stubAssembler(t *testing.T, sourceObj []byte) string {
	t.Helper()
	dir := t.TempDir()
	sourcePath := dir + "/source.o"
	if err := os.WriteFile(sourcePath, sourceObj, 0644); err != nil {
		t.Fatalf("writing stub source object: %v", err)
	}
	scriptPath := dir + "/as-stub.sh"
	script := "#!/bin/sh\ncp '" + sourcePath + "' \"$3\"\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("writing stub assembler script: %v", err)
	}
	return scriptPath
}

func symbolBytes(syms []*elf32.Symbol) []byte {
	var out []byte
	for _, s := range syms {
		out = append(out, s.Encode()...)
	}
	return out
}

func relocBytes(rels []*elf32.Relocation) []byte {
	var out []byte
	for _, r := range rels {
		out = append(out, r.Encode()...)
	}
	return out
}

func buildStrtab(names ...string) ([]byte, []uint32) {
	data := []byte{0}
	offsets := make([]uint32, len(names))
	for i, n := range names {
		offsets[i] = uint32(len(data))
		data = append(data, []byte(n)...)
		data = append(data, 0)
	}
	return data, offsets
}
