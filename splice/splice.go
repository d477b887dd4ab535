// Package splice implements the merge algorithm that embeds hand-written
// MIPS assembly into a compiler-produced object file, described in
// spec.md §4.G. It is a straight-line pipeline with no retries: any
// assertion violation is fatal and no partial output is produced, since
// the target file is only written after every other step succeeds.
package splice

import (
	"fmt"

	"github.com/xyproto/mipsasm/elf32"
)

// Options configures one splice run.
type Options struct {
	// Functions is the spliced-function list, in the same source order
	// as the placeholders appeared in the C file.
	Functions []Function
	// Prelude, if non-nil, is raw assembly text prepended to the
	// generated .s file (.set / .macro directives, e.g.).
	Prelude []byte
	// AssemblerCmd is a shell command string; Splice appends
	// " <inpath> -o <outpath>" to it.
	AssemblerCmd string
}

// Splice runs the postprocess splice pipeline against the object file at
// targetPath, overwriting it in place on success.
func Splice(targetPath string, opts Options) error {
	target, err := elf32.ReadFile(targetPath)
	if err != nil {
		return err
	}

	locs, err := locatePlaceholders(target, opts.Functions)
	if err != nil {
		return err
	}

	asm, plan, err := buildAssembly(opts.Prelude, opts.Functions, locs)
	if err != nil {
		return err
	}

	objData, err := runAssembler(opts.AssemblerCmd, asm)
	if err != nil {
		return err
	}
	source, err := elf32.Parse(objData)
	if err != nil {
		return err
	}

	if err := mergeReginfo(target, source); err != nil {
		return err
	}

	sourceText := source.FindSection(".text")
	targetText := target.FindSection(".text")
	if sourceText == nil || targetText == nil {
		return fmt.Errorf("%w: .text section missing in target or assembled object", elf32.ErrMalformed)
	}
	if err := spliceText(targetText, sourceText, plan); err != nil {
		return err
	}

	tempNames := make(map[string]bool, len(opts.Functions))
	fnNames := make(map[string]bool, len(opts.Functions))
	for _, f := range opts.Functions {
		tempNames[f.TempFnName] = true
		fnNames[f.FnName] = true
	}

	oldTargetSymbols := target.Symtab.SymbolEntries

	if err := mergeSymbols(target, source, sourceText, targetText, tempNames, fnNames); err != nil {
		return err
	}

	if err := remapTargetRelocations(target, targetText, oldTargetSymbols); err != nil {
		return err
	}
	if err := propagateSourceRelocations(target, source, sourceText, targetText); err != nil {
		return err
	}

	return target.WriteFile(targetPath)
}

// locatePlaceholders implements spec.md §4.G Step 1: for each function,
// find its placeholder symbol in the target symtab by linear scan,
// require a word-aligned st_value, and require word offsets are
// non-decreasing across the function list (the list is assumed to be in
// source order).
func locatePlaceholders(target *elf32.File, functions []Function) ([]int, error) {
	locs := make([]int, len(functions))
	prevLoc := 0
	for i, fn := range functions {
		sym, ok := target.Symtab.FindSymbol(fn.TempFnName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, fn.TempFnName)
		}
		if sym.StValue%4 != 0 {
			return nil, fmt.Errorf("%w: placeholder %q has st_value %d, not a multiple of 4", ErrMisaligned, fn.TempFnName, sym.StValue)
		}
		loc := int(sym.StValue / 4)
		if loc < prevLoc {
			return nil, fmt.Errorf("%w: placeholder %q at word %d precedes previous placeholder (must be non-decreasing)", ErrMisaligned, fn.TempFnName, loc)
		}
		locs[i] = loc
		prevLoc = loc
	}
	return locs, nil
}

// mergeReginfo implements spec.md §4.G Step 4: OR-combine the first 20
// bytes (register-use masks and GP value) of both .reginfo sections,
// leaving the remaining 4 bytes of the MIPS 24-byte reginfo untouched.
func mergeReginfo(target, source *elf32.File) error {
	targetReginfo := target.FindSection(".reginfo")
	sourceReginfo := source.FindSection(".reginfo")
	if targetReginfo == nil || sourceReginfo == nil {
		return fmt.Errorf("%w: .reginfo section missing in target or assembled object", elf32.ErrMalformed)
	}
	if len(targetReginfo.Data) < 20 || len(sourceReginfo.Data) < 20 {
		return fmt.Errorf("%w: .reginfo section shorter than 20 bytes", elf32.ErrMalformed)
	}
	for i := 0; i < 20; i++ {
		targetReginfo.Data[i] |= sourceReginfo.Data[i]
	}
	return nil
}

// spliceText implements spec.md §4.G Step 5: for each (pos, count) in
// the copy plan, overwrite the target .text bytes with the corresponding
// range from the source .text. The target's overall length is never
// changed (spec.md §8 property 4).
func spliceText(targetText, sourceText *elf32.Section, plan []copyUnit) error {
	for _, u := range plan {
		start := u.locWords * 4
		end := start + u.numInstr*4
		if end > len(targetText.Data) || end > len(sourceText.Data) {
			return fmt.Errorf("%w: splice range [%d:%d) out of bounds (target %d bytes, source %d bytes)", elf32.ErrMalformed, start, end, len(targetText.Data), len(sourceText.Data))
		}
		copy(targetText.Data[start:end], sourceText.Data[start:end])
	}
	return nil
}
