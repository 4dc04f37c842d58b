package core

import (
	"fmt"
	"strings"
)

// Report is the fixed post-compile summary printed to stdout.
type Report struct {
	Output    string
	Raw       bool
	CodeSize  int
	Variables int
	Functions int

	FieldI float64
	FieldE float64
	FieldR float64

	TileBytes uint64
	PoolCount int

	FateDynamic bool

	PlatformID  int
	SyscallBase uint64
}

// Report collects the summary for the finished compile.
func (c *Compiler) Report(output string, raw bool) Report {
	return Report{
		Output:      output,
		Raw:         raw,
		CodeSize:    c.gen.Pos(),
		Variables:   c.gen.VarCount(),
		Functions:   c.gen.FuncCount(),
		FieldI:      c.field.I,
		FieldE:      c.field.E,
		FieldR:      c.field.R,
		TileBytes:   c.tiles.TotalUsed(),
		PoolCount:   c.tiles.PoolCount(),
		FateDynamic: c.fate.On,
		PlatformID:  c.platform.ID,
		SyscallBase: c.platform.SyscallBase,
	}
}

// String renders the report in its fixed shape.
func (r Report) String() string {
	var out strings.Builder

	if r.Raw {
		fmt.Fprintf(&out, "Generated raw: %s (%d bytes)\n", r.Output, r.CodeSize)
	} else {
		fmt.Fprintf(&out, "Generated: %s\n", r.Output)
		fmt.Fprintf(&out, "   Code: %d bytes\n", r.CodeSize)
	}

	fmt.Fprintf(&out, "   Variables: %d | Functions: %d\n", r.Variables, r.Functions)
	fmt.Fprintf(&out, "   Unified: i=%.2f e=%.2f r=%.2f\n", r.FieldI, r.FieldE, r.FieldR)
	fmt.Fprintf(&out, "   Tile: %d bytes (%d pools)\n", r.TileBytes, r.PoolCount)

	fate := "static"
	if r.FateDynamic {
		fate = "dynamic"
	}
	fmt.Fprintf(&out, "   Fate: %s\n", fate)
	fmt.Fprintf(&out, "   Platform: id=%d syscall_base=0x%x\n", r.PlatformID, r.SyscallBase)

	return out.String()
}
