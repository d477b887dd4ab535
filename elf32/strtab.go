package elf32

import (
	"bytes"
	"fmt"
)

// LookupStr returns the NUL-terminated string starting at byte offset
// within a section's payload. The section must be of type SHT_STRTAB.
func (s *Section) LookupStr(offset uint32) (string, error) {
	if s.Type != SHT_STRTAB {
		return "", fmt.Errorf("%w: LookupStr on non-STRTAB section %q", ErrMalformed, s.Name)
	}
	if int(offset) > len(s.Data) {
		return "", fmt.Errorf("%w: string offset %d past end of strtab %q (len %d)", ErrMalformed, offset, s.Name, len(s.Data))
	}
	end := bytes.IndexByte(s.Data[offset:], 0)
	if end == -1 {
		return "", fmt.Errorf("%w: unterminated string at offset %d in strtab %q", ErrMalformed, offset, s.Name)
	}
	return string(s.Data[offset : int(offset)+end]), nil
}

// AddStr appends s plus a trailing NUL to the string table's payload and
// returns the offset at which it was written. The returned offset is
// stable for the remainder of the model's life: string tables are never
// truncated or reordered, only appended to.
func (s *Section) AddStr(str string) (uint32, error) {
	if s.Type != SHT_STRTAB {
		return 0, fmt.Errorf("%w: AddStr on non-STRTAB section %q", ErrMalformed, s.Name)
	}
	off := uint32(len(s.Data))
	s.Data = append(s.Data, []byte(str)...)
	s.Data = append(s.Data, 0)
	return off, nil
}
