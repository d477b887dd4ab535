// Command mipsasm merges hand-written MIPS assembly into a C compiler's
// object output, the two-pass workflow described in spec.md §6:
//
//	mipsasm preprocess file.c                      > file.asm_processor.c
//	cc -c file.asm_processor.c -o file.o
//	mipsasm postprocess file.c file.o --assembler "mips-linux-gnu-as -EB -O2"
//
// preprocess prints a version of the C source with every GLOBAL_ASM(...)
// block replaced by a placeholder function, so a normal C compiler can
// produce an object file with symbols and relocations in the right
// places. postprocess then splices the real assembly for those
// placeholders into the compiled object, in place.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xyproto/mipsasm/cscan"
	"github.com/xyproto/mipsasm/splice"
)

const versionString = "mipsasm 1.0.0"

// Verbose enables debug tracing to stderr, following the teacher's global
// Verbose bool + fmt.Fprintf(os.Stderr, ...) idiom rather than a logging
// framework.
var Verbose bool

func debugf(format string, args ...any) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "mipsasm: "+format+"\n", args...)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s

Usage:
  mipsasm preprocess [-optimized] <file.c>
  mipsasm postprocess [-optimized] <file.c> <object.o> --assembler "<cmd>" [--asm-prelude <file>]
  mipsasm -version

`, versionString)
	flag.PrintDefaults()
}

func main() {
	verbose := flag.Bool("v", false, "verbose mode (print scan and splice summaries to stderr)")
	optimized := flag.Bool("optimized", false, "use the optimized-build instruction-count thresholds instead of the debug ones")
	assemblerCmd := flag.String("assembler", "", "shell command invoking the target assembler, e.g. \"mips-linux-gnu-as -EB -O2\"")
	asmPrelude := flag.String("asm-prelude", "", "path to a file of raw assembly text prepended before every splice")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Usage = usage
	flag.Parse()

	// flag.Parse stops at the subcommand, so parse again after each
	// positional argument: flags may follow the subcommand and its operands.
	args := flag.Args()
	if len(args) > 0 {
		rest := args[1:]
		args = []string{args[0]}
		for len(rest) > 0 {
			flag.CommandLine.Parse(rest)
			rest = flag.Args()
			if len(rest) > 0 {
				args = append(args, rest[0])
				rest = rest[1:]
			}
		}
	}

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}
	Verbose = *verbose

	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	params := cscan.Debug
	if *optimized {
		params = cscan.Optimized
	}

	switch args[0] {
	case "preprocess":
		if len(args) != 2 {
			log.Fatalf("preprocess: expected exactly one C source file, got %d arguments", len(args)-1)
		}
		if err := runPreprocess(args[1], params); err != nil {
			log.Fatal(err)
		}
	case "postprocess":
		if len(args) != 3 {
			log.Fatalf("postprocess: expected <file.c> <object.o>, got %d arguments", len(args)-1)
		}
		if *assemblerCmd == "" {
			log.Fatal("postprocess: --assembler is required")
		}
		if err := runPostprocess(args[1], args[2], *assemblerCmd, *asmPrelude, params); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func runPreprocess(cFile string, params cscan.Params) error {
	f, err := os.Open(cFile)
	if err != nil {
		return fmt.Errorf("IO: opening %s: %w", cFile, err)
	}
	defer f.Close()

	result, err := cscan.Scan(f, params)
	if err != nil {
		return fmt.Errorf("preprocessing %s: %w", cFile, err)
	}
	debugf("found %d GLOBAL_ASM block(s) in %s", len(result.Functions), cFile)

	_, err = os.Stdout.WriteString(result.Source)
	return err
}

func runPostprocess(cFile, objFile, assemblerCmd, preludePath string, params cscan.Params) error {
	f, err := os.Open(cFile)
	if err != nil {
		return fmt.Errorf("IO: opening %s: %w", cFile, err)
	}
	result, err := cscan.Scan(f, params)
	f.Close()
	if err != nil {
		return fmt.Errorf("scanning %s: %w", cFile, err)
	}
	debugf("splicing %d function(s) from %s into %s", len(result.Functions), cFile, objFile)

	var prelude []byte
	if preludePath != "" {
		prelude, err = os.ReadFile(preludePath)
		if err != nil {
			return fmt.Errorf("IO: reading %s: %w", preludePath, err)
		}
	}

	if len(result.Functions) == 0 {
		debugf("no GLOBAL_ASM blocks found, leaving %s unchanged", objFile)
		return nil
	}

	return splice.Splice(objFile, splice.Options{
		Functions:    result.Functions,
		Prelude:      prelude,
		AssemblerCmd: assemblerCmd,
	})
}
