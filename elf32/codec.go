package elf32

import (
	"encoding/binary"
	"fmt"
)

// All multibyte ELF fields in this package are big-endian 32-bit MIPS
// records: two-byte halves and four-byte words, packed and unpacked with
// encoding/binary the same way the teacher packs little-endian x86-64
// records in plt_got.go and codegen_elf_writer.go, just with the opposite
// byte order.

var order = binary.BigEndian

const (
	ehdrTailSize = 36 // e_type..e_shstrndx, after the 16-byte e_ident
	shdrSize     = 40
	symSize      = 16
	relSize      = 8
	relaSize     = 12
)

type ehdrTail struct {
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

func decodeEhdrTail(b []byte) (ehdrTail, error) {
	if len(b) < ehdrTailSize {
		return ehdrTail{}, fmt.Errorf("%w: ELF header tail truncated: got %d bytes, need %d", ErrMalformed, len(b), ehdrTailSize)
	}
	var t ehdrTail
	t.Type = order.Uint16(b[0:2])
	t.Machine = order.Uint16(b[2:4])
	t.Version = order.Uint32(b[4:8])
	t.Entry = order.Uint32(b[8:12])
	t.Phoff = order.Uint32(b[12:16])
	t.Shoff = order.Uint32(b[16:20])
	t.Flags = order.Uint32(b[20:24])
	t.Ehsize = order.Uint16(b[24:26])
	t.Phentsize = order.Uint16(b[26:28])
	t.Phnum = order.Uint16(b[28:30])
	t.Shentsize = order.Uint16(b[30:32])
	t.Shnum = order.Uint16(b[32:34])
	t.Shstrndx = order.Uint16(b[34:36])
	return t, nil
}

func encodeEhdrTail(t ehdrTail) []byte {
	b := make([]byte, ehdrTailSize)
	order.PutUint16(b[0:2], t.Type)
	order.PutUint16(b[2:4], t.Machine)
	order.PutUint32(b[4:8], t.Version)
	order.PutUint32(b[8:12], t.Entry)
	order.PutUint32(b[12:16], t.Phoff)
	order.PutUint32(b[16:20], t.Shoff)
	order.PutUint32(b[20:24], t.Flags)
	order.PutUint16(b[24:26], t.Ehsize)
	order.PutUint16(b[26:28], t.Phentsize)
	order.PutUint16(b[28:30], t.Phnum)
	order.PutUint16(b[30:32], t.Shentsize)
	order.PutUint16(b[32:34], t.Shnum)
	order.PutUint16(b[34:36], t.Shstrndx)
	return b
}

type shdrRaw struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Offset    uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

func decodeShdr(b []byte) (shdrRaw, error) {
	if len(b) < shdrSize {
		return shdrRaw{}, fmt.Errorf("%w: section header truncated: got %d bytes, need %d", ErrMalformed, len(b), shdrSize)
	}
	return shdrRaw{
		Name:      order.Uint32(b[0:4]),
		Type:      order.Uint32(b[4:8]),
		Flags:     order.Uint32(b[8:12]),
		Addr:      order.Uint32(b[12:16]),
		Offset:    order.Uint32(b[16:20]),
		Size:      order.Uint32(b[20:24]),
		Link:      order.Uint32(b[24:28]),
		Info:      order.Uint32(b[28:32]),
		Addralign: order.Uint32(b[32:36]),
		Entsize:   order.Uint32(b[36:40]),
	}, nil
}

func encodeShdr(s shdrRaw) []byte {
	b := make([]byte, shdrSize)
	order.PutUint32(b[0:4], s.Name)
	order.PutUint32(b[4:8], s.Type)
	order.PutUint32(b[8:12], s.Flags)
	order.PutUint32(b[12:16], s.Addr)
	order.PutUint32(b[16:20], s.Offset)
	order.PutUint32(b[20:24], s.Size)
	order.PutUint32(b[24:28], s.Link)
	order.PutUint32(b[28:32], s.Info)
	order.PutUint32(b[32:36], s.Addralign)
	order.PutUint32(b[36:40], s.Entsize)
	return b
}

type symRaw struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  byte
	Other byte
	Shndx uint16
}

func decodeSym(b []byte) (symRaw, error) {
	if len(b) < symSize {
		return symRaw{}, fmt.Errorf("%w: symbol record truncated: got %d bytes, need %d", ErrMalformed, len(b), symSize)
	}
	return symRaw{
		Name:  order.Uint32(b[0:4]),
		Value: order.Uint32(b[4:8]),
		Size:  order.Uint32(b[8:12]),
		Info:  b[12],
		Other: b[13],
		Shndx: order.Uint16(b[14:16]),
	}, nil
}

func encodeSym(s symRaw) []byte {
	b := make([]byte, symSize)
	order.PutUint32(b[0:4], s.Name)
	order.PutUint32(b[4:8], s.Value)
	order.PutUint32(b[8:12], s.Size)
	b[12] = s.Info
	b[13] = s.Other
	order.PutUint16(b[14:16], s.Shndx)
	return b
}

type relRaw struct {
	Offset uint32
	Info   uint32
	Addend int32 // only meaningful for RELA
}

func decodeRel(b []byte, isRela bool) (relRaw, error) {
	want := relSize
	if isRela {
		want = relaSize
	}
	if len(b) < want {
		return relRaw{}, fmt.Errorf("%w: relocation record truncated: got %d bytes, need %d", ErrMalformed, len(b), want)
	}
	r := relRaw{
		Offset: order.Uint32(b[0:4]),
		Info:   order.Uint32(b[4:8]),
	}
	if isRela {
		r.Addend = int32(order.Uint32(b[8:12]))
	}
	return r, nil
}

func encodeRel(r relRaw, isRela bool) []byte {
	if isRela {
		b := make([]byte, relaSize)
		order.PutUint32(b[0:4], r.Offset)
		order.PutUint32(b[4:8], r.Info)
		order.PutUint32(b[8:12], uint32(r.Addend))
		return b
	}
	b := make([]byte, relSize)
	order.PutUint32(b[0:4], r.Offset)
	order.PutUint32(b[4:8], r.Info)
	return b
}
