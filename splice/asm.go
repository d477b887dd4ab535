package splice

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Function is one spliced-function descriptor handed to Splice, matching
// the source-extraction interface of spec.md §6: the tuple
// (fn_name, temp_fn_name, body_lines, num_instr) produced by the
// C-source scanner.
type Function struct {
	FnName     string
	TempFnName string
	BodyLines  []string
	NumInstr   int
}

// copyUnit records where one function's instructions land in word offsets
// within .text, built while generating the padded assembly (spec.md §4.G
// Step 2) and consumed while splicing .text (Step 5).
type copyUnit struct {
	locWords   int
	numInstr   int
}

// buildAssembly emits the prelude (if any), the .text section directive,
// and for each function first enough nop lines to pad from prevLoc up to
// its word offset, then its body lines, the "pad with nops" strategy of
// spec.md §4.G Step 2 / §9, which keeps every .text-internal relocation
// position-correct without per-relocation offset math. It returns the
// generated assembly text and the copy plan used in Step 5.
func buildAssembly(prelude []byte, functions []Function, locs []int) ([]byte, []copyUnit, error) {
	var buf bytes.Buffer
	if len(prelude) > 0 {
		buf.Write(prelude)
	}
	buf.WriteString(".section .text, \"ax\"\n\n")

	prevLoc := 0
	plan := make([]copyUnit, 0, len(functions))
	for i, fn := range functions {
		loc := locs[i]
		if loc < prevLoc {
			return nil, nil, fmt.Errorf("%w: placeholder %q at word %d overlaps the previous function, which ends at word %d", ErrMisaligned, fn.TempFnName, loc, prevLoc)
		}
		for n := 0; n < loc-prevLoc; n++ {
			buf.WriteString("nop\n")
		}
		for _, line := range fn.BodyLines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		prevLoc = loc + fn.NumInstr
		plan = append(plan, copyUnit{locWords: loc, numInstr: fn.NumInstr})
	}
	return buf.Bytes(), plan, nil
}

// runAssembler writes asm to a temporary .s file, invokes assemblerCmd on
// it (appending " <inpath> -o <outpath>" per spec.md §6's assembler
// interface), and returns the contents of the produced .o file. Both
// temporary files are removed on every exit path, matching the teacher's
// os.CreateTemp + defer os.Remove idiom (main.go, cli.go).
func runAssembler(assemblerCmd string, asm []byte) (objData []byte, err error) {
	sFile, err := os.CreateTemp("", "mipsasm_*.s")
	if err != nil {
		return nil, fmt.Errorf("IO: creating temp assembly file: %w", err)
	}
	sName := sFile.Name()
	defer os.Remove(sName)

	if _, err := sFile.Write(asm); err != nil {
		sFile.Close()
		return nil, fmt.Errorf("IO: writing temp assembly file: %w", err)
	}
	if err := sFile.Close(); err != nil {
		return nil, fmt.Errorf("IO: closing temp assembly file: %w", err)
	}

	oFile, err := os.CreateTemp("", "mipsasm_*.o")
	if err != nil {
		return nil, fmt.Errorf("IO: creating temp object file: %w", err)
	}
	oName := oFile.Name()
	oFile.Close()
	defer os.Remove(oName)

	fullCmd := strings.TrimSpace(assemblerCmd) + " " + sName + " -o " + oName
	cmd := exec.Command("sh", "-c", fullCmd)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return nil, fmt.Errorf("%w: %q: %v\n%s", ErrAssemblerFailed, fullCmd, runErr, out)
	}

	data, err := os.ReadFile(oName)
	if err != nil {
		return nil, fmt.Errorf("IO: reading assembled object: %w", err)
	}
	return data, nil
}
