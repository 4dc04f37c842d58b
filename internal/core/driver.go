package core

import (
	"github.com/wavelang/wave/internal/codegen"
	"github.com/wavelang/wave/internal/telemetry"
)

// Compile runs the whole compilation: main prologue, the three source
// passes, the trailing exit, and fixup resolution. The code generator holds
// the finished image afterwards.
func (c *Compiler) Compile() {
	c.gen.Prologue()
	c.gen.SubRSP(512)

	// Fresh rule state for this compile, with the four standard pools.
	c.field = telemetry.NewField()
	c.tiles = telemetry.NewTiles(c.field)
	c.fate = telemetry.NewFate()

	c.tiles.AddPool(0x10000, 0x10000, "blackhole")
	c.tiles.AddPool(0x20000, 0x10000, "meshbrain")
	c.tiles.AddPool(0x30000, 0x10000, "multinova")
	c.tiles.AddPool(0x40000, 0x10000, "baseforce")

	// Pass 1: collect function declarations and body ranges.
	saved := c.pos
	for c.pos < len(c.src) {
		c.skipSpace()
		if c.accept("fn ") {
			c.compileFnDef()
		} else {
			c.skipLine()
		}
	}
	c.pos = saved

	// Pass 2: compile the main program. fn statements re-register their
	// functions (idempotent by name) and skip the bodies.
	for c.pos < len(c.src) {
		c.compileStatement()
	}

	c.gen.ExitImm(0)

	// Pass 3: emit function bodies past main's exit.
	for i := 0; i < c.gen.FuncCount(); i++ {
		fn := c.gen.FuncAt(i)
		if fn.BodyPos <= 0 || fn.BodyEnd <= fn.BodyPos {
			continue
		}
		fn.CodeOffset = c.gen.Pos()
		c.gen.AddLabel(fn.Name)

		c.gen.Prologue()
		c.gen.SubRSP(256)

		c.compileFunctionBody(fn)

		c.gen.AddRSP(256)
		c.gen.PopRBP()
		c.gen.Ret()
	}

	c.gen.ResolveFixups()
}

// compileFunctionBody binds the parameters as frame variables and compiles
// the captured body range. Arguments are pushed left-to-right by the caller,
// so the rightmost one sits closest to the return address: parameter i lives
// at 16 + (n-1-i)*8 above the frame base.
func (c *Compiler) compileFunctionBody(fn *codegen.Function) {
	savedVars, savedStack := c.gen.BeginFunctionScope()

	n := len(fn.Params)
	for i, p := range fn.Params {
		c.gen.BindParam(p, int32(16+(n-1-i)*8))
	}

	savedPos := c.pos
	c.pos = fn.BodyPos
	for c.pos < fn.BodyEnd {
		c.compileStatement()
	}
	c.pos = savedPos

	c.gen.EndFunctionScope(savedVars, savedStack)
}
