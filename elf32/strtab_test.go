package elf32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddStrThenLookupStr(t *testing.T) {
	s := &Section{Type: SHT_STRTAB, Data: []byte{0}}

	off, err := s.AddStr("hello")
	require.NoError(t, err)
	require.EqualValues(t, 1, off)

	got, err := s.LookupStr(off)
	require.NoError(t, err)
	require.Equal(t, "hello", got)

	off2, err := s.AddStr("world")
	require.NoError(t, err)
	got2, err := s.LookupStr(off2)
	require.NoError(t, err)
	require.Equal(t, "world", got2)

	got0, err := s.LookupStr(0)
	require.NoError(t, err)
	require.Equal(t, "", got0)
}

func TestLookupStrRejectsNonStrtab(t *testing.T) {
	s := &Section{Type: SHT_PROGBITS, Data: []byte{0, 'a', 0}}
	_, err := s.LookupStr(0)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLookupStrUnterminated(t *testing.T) {
	s := &Section{Type: SHT_STRTAB, Data: []byte{'a', 'b', 'c'}}
	_, err := s.LookupStr(0)
	require.ErrorIs(t, err, ErrMalformed)
}
