package splice

import (
	"fmt"

	"github.com/xyproto/mipsasm/elf32"
)

// mergeSymbols implements spec.md §4.G Step 6: the source string table is
// appended verbatim to the target's, a new symbol list is built in
// insertion order (target symbols minus the dropped placeholders, then
// the source's non-local symbols with .text remapped and names
// rebased), and every surviving symbol's NewIndex auxiliary field is
// populated in this single forward pass, per spec.md §9's "build the
// side table, then rewrite relocations" ordering.
//
// It deliberately does not re-sort locals before globals, nor update the
// symtab's sh_info afterward (spec.md §9 "Open questions"): the final
// symtab may not be strictly ELF-compliant, but the downstream linker
// tolerates it in practice, and replicating that looseness is the
// documented choice here (see DESIGN.md).
func mergeSymbols(target, source *elf32.File, sourceText, targetText *elf32.Section, tempNames, fnNames map[string]bool) error {
	strtabAdj := uint32(len(target.Symtab.Strtab.Data))
	target.Symtab.Strtab.Data = append(target.Symtab.Strtab.Data, source.Symtab.Strtab.Data...)

	newEntries := make([]*elf32.Symbol, 0, len(target.Symtab.SymbolEntries)+len(source.Symtab.SymbolEntries))
	index := 0
	for _, s := range target.Symtab.SymbolEntries {
		if tempNames[s.Name] {
			continue
		}
		s.NewIndex = index
		index++
		newEntries = append(newEntries, s)
	}

	numLocalSyms := int(source.Symtab.Info)
	if numLocalSyms > len(source.Symtab.SymbolEntries) {
		return fmt.Errorf("%w: source symtab sh_info %d exceeds its %d symbols", elf32.ErrMalformed, numLocalSyms, len(source.Symtab.SymbolEntries))
	}

	for _, s := range source.Symtab.SymbolEntries[numLocalSyms:] {
		if s.StShndx != elf32.SHN_UNDEF {
			if int(s.StShndx) != sourceText.Index {
				return fmt.Errorf("%w: assembled symbol %q is defined in section %d, must be .text (section %d) or UNDEF", ErrBadAssemblyObject, s.Name, s.StShndx, sourceText.Index)
			}
			s.StShndx = uint16(targetText.Index)
			// glabel doesn't emit a .type directive, so objdump shows it
			// as an object/notype. Fix it up for the "real" function
			// names the C side will call.
			if fnNames[s.Name] {
				s.Type = elf32.STT_FUNC
			}
		}
		s.StName += strtabAdj
		s.NewIndex = index
		index++
		newEntries = append(newEntries, s)
	}

	data := make([]byte, 0, len(newEntries)*16)
	for _, s := range newEntries {
		data = append(data, s.Encode()...)
	}
	target.Symtab.Data = data
	target.Symtab.SymbolEntries = newEntries
	return nil
}

// remapTargetRelocations implements spec.md §4.G Step 7: every relocation
// section already targeting .text gets its sym_index rewritten from the
// pre-merge target symbol table to the new merged indices.
func remapTargetRelocations(target *elf32.File, targetText *elf32.Section, oldTargetSymbols []*elf32.Symbol) error {
	for _, idx := range targetText.RelocatedBy {
		r := target.Sections[idx]
		for _, rel := range r.Relocations {
			if int(rel.SymIndex) >= len(oldTargetSymbols) {
				return fmt.Errorf("%w: relocation sym_index %d out of range (target had %d symbols)", elf32.ErrMalformed, rel.SymIndex, len(oldTargetSymbols))
			}
			rel.SymIndex = uint32(oldTargetSymbols[rel.SymIndex].NewIndex)
		}
		r.Data = encodeRelocations(r.Relocations)
	}
	return nil
}

// propagateSourceRelocations implements spec.md §4.G Step 8: every
// relocation in the assembled object's .text relocation sections is
// remapped to the merged symbol indices and appended onto the target's
// .rel.text / .rela.text, creating either section if the target didn't
// already have one.
func propagateSourceRelocations(target, source *elf32.File, sourceText, targetText *elf32.Section) error {
	numLocalSyms := int(source.Symtab.Info)
	for _, idx := range sourceText.RelocatedBy {
		r := source.Sections[idx]
		for _, rel := range r.Relocations {
			if int(rel.SymIndex) < numLocalSyms {
				return fmt.Errorf("%w: relocation sym_index %d targets a local symbol; assembled code must only relocate into globals", ErrBadAssemblyObject, rel.SymIndex)
			}
			if int(rel.SymIndex) >= len(source.Symtab.SymbolEntries) {
				return fmt.Errorf("%w: relocation sym_index %d out of range", elf32.ErrMalformed, rel.SymIndex)
			}
			rel.SymIndex = uint32(source.Symtab.SymbolEntries[rel.SymIndex].NewIndex)
		}
		newData := encodeRelocations(r.Relocations)

		var targetRel *elf32.Section
		var err error
		if r.Type == elf32.SHT_REL {
			if targetRel = target.FindSection(".rel.text"); targetRel == nil {
				targetRel, err = target.AddSection(".rel.text", elf32.SHT_REL, 0, uint32(target.Symtab.Index), uint32(targetText.Index), 4, 8, nil)
			}
		} else {
			if targetRel = target.FindSection(".rela.text"); targetRel == nil {
				targetRel, err = target.AddSection(".rela.text", elf32.SHT_RELA, 0, uint32(target.Symtab.Index), uint32(targetText.Index), 4, 12, nil)
			}
		}
		if err != nil {
			return err
		}
		targetRel.Data = append(targetRel.Data, newData...)
	}
	return nil
}

func encodeRelocations(rels []*elf32.Relocation) []byte {
	out := make([]byte, 0)
	for _, rel := range rels {
		out = append(out, rel.Encode()...)
	}
	return out
}
