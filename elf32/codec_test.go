package elf32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShdrRoundTrip(t *testing.T) {
	raw := shdrRaw{
		Name: 1, Type: SHT_PROGBITS, Flags: SHF_ALLOC, Addr: 0,
		Offset: 0x40, Size: 0x100, Link: 0, Info: 0, Addralign: 4, Entsize: 0,
	}
	enc := encodeShdr(raw)
	require.Len(t, enc, shdrSize)

	dec, err := decodeShdr(enc)
	require.NoError(t, err)
	require.Equal(t, raw, dec)
}

func TestDecodeShdrShortBuffer(t *testing.T) {
	_, err := decodeShdr(make([]byte, shdrSize-1))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSymRoundTrip(t *testing.T) {
	raw := symRaw{Name: 7, Value: 0x1000, Size: 4, Info: (STB_GLOBAL << 4) | STT_FUNC, Other: 0, Shndx: 1}
	enc := encodeSym(raw)
	require.Len(t, enc, symSize)

	dec, err := decodeSym(enc)
	require.NoError(t, err)
	require.Equal(t, raw, dec)
}

func TestRelRoundTrip(t *testing.T) {
	rel := relRaw{Offset: 0x20, Info: (5 << 8) | R_MIPS_HI16}
	enc := encodeRel(rel, false)
	require.Len(t, enc, relSize)
	dec, err := decodeRel(enc, false)
	require.NoError(t, err)
	require.Equal(t, rel, dec)
}

func TestRelaRoundTrip(t *testing.T) {
	rela := relRaw{Offset: 0x20, Info: (5 << 8) | R_MIPS_32, Addend: -12}
	enc := encodeRel(rela, true)
	require.Len(t, enc, relaSize)
	dec, err := decodeRel(enc, true)
	require.NoError(t, err)
	require.Equal(t, rela, dec)
}

func TestDecodeRelShortBuffer(t *testing.T) {
	_, err := decodeRel(make([]byte, relSize-1), false)
	require.ErrorIs(t, err, ErrMalformed)
	_, err = decodeRel(make([]byte, relaSize-1), true)
	require.ErrorIs(t, err, ErrMalformed)
}
