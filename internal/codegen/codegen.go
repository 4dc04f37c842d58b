// Package codegen holds the Wave code generator: the code and data buffers,
// the label and fixup tables, the variable and function tables, and the fixed
// x86_64 instruction menu the compiler emits through.
//
// The generator is append-only. Instructions and inline literals land in the
// code buffer; forward jump and call displacements are written as zeros and
// patched by ResolveFixups once all labels are known. Over-capacity writes
// are dropped but counted, so the driver can surface them instead of
// miscompiling silently.
package codegen

import (
	"fmt"

	"github.com/wavelang/wave/pkg/elf"
)

// Capacity bounds. Writes past the buffer and table bounds are dropped and
// counted; names longer than MaxIdent-1 bytes are clipped and parameter lists
// stop at MaxParams, without being counted.
const (
	MaxCode   = 4 * 1024 * 1024
	MaxData   = 1024 * 1024
	MaxVars   = 4096
	MaxFuncs  = 2048
	MaxLabels = 8192
	MaxParams = 16
	MaxIdent  = 256
)

// GlobalBase is the absolute address of the first global variable slot. The
// ELF program header widens the segment's memory size to cover this region.
const GlobalBase = elf.DefaultBSSBase

// CodeGen owns everything that turns compiled statements into an executable
// image.
type CodeGen struct {
	code []byte
	data []byte

	vars        []Variable
	stackSize   int32
	globalBytes uint64
	inFunction  bool

	funcs []Function

	labels []label
	fixups []fixup

	whenID int
	loopID int

	listing  []string
	listOn   bool
	overflow overflowCounts
}

// overflowCounts tracks dropped writes per table for the capacity report.
type overflowCounts struct {
	codeBytes int
	dataBytes int
	vars      int
	funcs     int
	labels    int
	fixups    int
}

// New creates an empty code generator.
func New() *CodeGen {
	return &CodeGen{
		code: make([]byte, 0, 4096),
		data: make([]byte, 0, 256),
	}
}

// Pos returns the current code buffer write cursor.
func (g *CodeGen) Pos() int { return len(g.code) }

// Code returns the emitted code buffer.
func (g *CodeGen) Code() []byte { return g.code }

// Data returns the data buffer. The current compiler never appends to it,
// but the image writer accounts for it.
func (g *CodeGen) Data() []byte { return g.data }

// GlobalBytes returns the size of the global-variable region.
func (g *CodeGen) GlobalBytes() uint64 { return g.globalBytes }

// VarCount returns the number of live variable entries.
func (g *CodeGen) VarCount() int { return len(g.vars) }

// FuncCount returns the number of registered functions.
func (g *CodeGen) FuncCount() int { return len(g.funcs) }

// EmitByte appends one byte to the code buffer.
func (g *CodeGen) EmitByte(b byte) {
	if len(g.code) >= MaxCode {
		g.overflow.codeBytes++
		return
	}
	g.code = append(g.code, b)
}

// EmitBytes appends a byte sequence to the code buffer.
func (g *CodeGen) EmitBytes(bs []byte) {
	for _, b := range bs {
		g.EmitByte(b)
	}
}

// EmitU32 appends a 32-bit value in little-endian order.
func (g *CodeGen) EmitU32(v uint32) {
	g.EmitByte(byte(v))
	g.EmitByte(byte(v >> 8))
	g.EmitByte(byte(v >> 16))
	g.EmitByte(byte(v >> 24))
}

// EmitI32 appends a 32-bit signed value in little-endian order.
func (g *CodeGen) EmitI32(v int32) { g.EmitU32(uint32(v)) }

// EmitU64 appends a 64-bit value in little-endian order.
func (g *CodeGen) EmitU64(v uint64) {
	g.EmitU32(uint32(v))
	g.EmitU32(uint32(v >> 32))
}

// ELF builds the one-segment executable image.
func (g *CodeGen) ELF() []byte {
	im := elf.Image{Code: g.code, Data: g.data, GlobalBytes: g.globalBytes}
	return im.Build()
}

// Raw returns the bare code buffer for --raw output.
func (g *CodeGen) Raw() []byte { return g.code }

// Warnings reports capacity overflows and unresolved fixups accumulated
// during compilation. Empty when the compile was clean.
func (g *CodeGen) Warnings() []string {
	var w []string
	if n := g.overflow.codeBytes; n > 0 {
		w = append(w, fmt.Sprintf("code buffer full: %d bytes dropped", n))
	}
	if n := g.overflow.dataBytes; n > 0 {
		w = append(w, fmt.Sprintf("data buffer full: %d bytes dropped", n))
	}
	if n := g.overflow.vars; n > 0 {
		w = append(w, fmt.Sprintf("variable table full: %d variables dropped", n))
	}
	if n := g.overflow.funcs; n > 0 {
		w = append(w, fmt.Sprintf("function table full: %d functions dropped", n))
	}
	if n := g.overflow.labels; n > 0 {
		w = append(w, fmt.Sprintf("label table full: %d labels dropped", n))
	}
	if n := g.overflow.fixups; n > 0 {
		w = append(w, fmt.Sprintf("fixup table full: %d fixups dropped", n))
	}
	for _, f := range g.fixups {
		if !f.resolved {
			w = append(w, fmt.Sprintf("unresolved reference %q at offset %d (left zero)", f.label, f.pos))
		}
	}
	return w
}

// UnresolvedFixups returns the number of fixups that found no label. Strict
// builds fail when this is nonzero.
func (g *CodeGen) UnresolvedFixups() int {
	n := 0
	for _, f := range g.fixups {
		if !f.resolved {
			n++
		}
	}
	return n
}
