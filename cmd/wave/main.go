// Command wave compiles Wave source files into statically-mapped ELF64
// executables for Linux x86-64.
//
//	wave <input> [-o <output>] [--raw]
//
// Environment:
//
//	WAVE_OUTPUT   default output filename (a.out when unset)
//	WAVE_STRICT   fail the build when a reference stays unresolved
//	WAVE_LISTING  write an assembly listing of the emitted code to this file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"golang.org/x/sys/unix"

	"github.com/wavelang/wave/internal/core"
)

func usage() {
	fmt.Printf("Wave %s\n", core.Version)
	fmt.Printf("   Rule-Driven Compiler\n\n")
	fmt.Printf("Usage: wave <input.wave> [-o output] [--raw]\n\n")
	fmt.Print(`Syntax:
  out "text"           - write text
  emit "\xHH"          - write bytes
  byte(N)              - write a single byte
  getchar()            - read a character
  putchar(N)           - write a character
  name = expr          - assignment
  when cond { }        - conditional
  loop { }             - loop
  break                - leave the loop
  fn name args { }     - function definition
  name(args)           - function call
  keep                 - event loop
  fate on/off          - dynamic/static mode
  limit N              - resource limit
  -> value             - return value
  unified { i: e: r: } - field parameters
  syscall.exit(N)      - exit
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	input := os.Args[1]

	fs := flag.NewFlagSet("wave", flag.ExitOnError)
	output := fs.String("o", env.Str("WAVE_OUTPUT", "a.out"), "output file")
	raw := fs.Bool("raw", false, "write the bare code buffer, no ELF headers")
	fs.Parse(os.Args[2:])

	source, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open: %s\n", input)
		os.Exit(1)
	}

	compiler := core.New(source)

	listingFile := env.Str("WAVE_LISTING", "")
	if listingFile != "" {
		compiler.Gen().EnableListing()
	}

	compiler.Compile()

	for _, w := range compiler.Gen().Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if env.Bool("WAVE_STRICT") && compiler.Gen().UnresolvedFixups() > 0 {
		fmt.Fprintln(os.Stderr, "strict mode: unresolved references, no output written")
		os.Exit(1)
	}

	if *raw {
		if err := os.WriteFile(*output, compiler.Gen().Raw(), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		if err := os.WriteFile(*output, compiler.Gen().ELF(), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := unix.Chmod(*output, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if listingFile != "" {
		if err := os.WriteFile(listingFile, []byte(compiler.Gen().Listing()), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Print(compiler.Report(*output, *raw))
}
