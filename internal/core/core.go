// Package core implements the Wave compiler: a single-pass recursive-descent
// walk over the source text that emits x86-64 machine code directly, with no
// AST in between.
//
// A compile makes three passes over the byte buffer holding the source:
//
//	Pass 1  collects fn declarations and their body ranges; emits nothing
//	Pass 2  compiles every top-level statement into the main program
//	Pass 3  emits the captured function bodies after main's exit(0)
//
// then resolves the forward jump and call fixups. Statement keywords:
//
//	out "text"            write text to stdout
//	emit "\xHH"           write raw bytes to stdout
//	byte(N) / putchar(N)  write one byte
//	getchar()             read one byte
//	name = expr           assignment (global at top level, local in a fn)
//	when cond { }         conditional
//	loop { } / break      loop
//	fn name args { }      function definition
//	name(args)            call
//	keep                  event loop
//	-> value / return     return value (breaks the loop when inside one)
//	fate on/off, limit N  scheduler controls
//	unified { i: e: r: }  field parameters
//	syscall.*             Linux syscall intrinsics
//
// Unknown statements skip to the end of the line; the compiler never aborts
// on unrecognized keywords.
package core

import (
	"github.com/wavelang/wave/internal/codegen"
	"github.com/wavelang/wave/internal/telemetry"
)

// Version of the Wave language toolchain.
const Version = "1.0-alpha"

// MaxLoopDepth bounds the nesting of loop statements addressable by break.
const MaxLoopDepth = 16

// loopFrame holds the labels of one enclosing loop.
type loopFrame struct {
	start string
	end   string
}

// Compiler carries the scan cursor, the loop stack, the code generator and
// the telemetry layer for one compilation.
type Compiler struct {
	src []byte
	pos int

	fateMode bool
	loops    []loopFrame

	field *telemetry.Field
	tiles *telemetry.Tiles
	fate  *telemetry.Fate

	platform telemetry.Platform
	bridge   telemetry.Bridge
	compat   telemetry.Compat

	gen *codegen.CodeGen
}

// New creates a compiler over source. The platform and device probes run
// once at construction, the way the scheduler expects.
func New(source []byte) *Compiler {
	c := &Compiler{
		src:      source,
		fateMode: true,
		gen:      codegen.New(),
	}
	c.field = telemetry.NewField()
	c.tiles = telemetry.NewTiles(c.field)
	c.fate = telemetry.NewFate()

	c.platform.Probe(c.fate)
	c.compat.Probe(c.fate)
	return c
}

// Gen exposes the code generator for image writing and diagnostics.
func (c *Compiler) Gen() *codegen.CodeGen { return c.gen }

func (c *Compiler) pushLoop(start, end string) {
	if len(c.loops) < MaxLoopDepth {
		c.loops = append(c.loops, loopFrame{start: start, end: end})
	}
}

func (c *Compiler) popLoop() {
	if len(c.loops) > 0 {
		c.loops = c.loops[:len(c.loops)-1]
	}
}

func (c *Compiler) innerLoop() (loopFrame, bool) {
	if len(c.loops) == 0 {
		return loopFrame{}, false
	}
	return c.loops[len(c.loops)-1], true
}
