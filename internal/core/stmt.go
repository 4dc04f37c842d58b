package core

import "github.com/wavelang/wave/internal/codegen"

// Statement compilation: first-match keyword dispatch, then assignment or
// call, then skip-to-end-of-line tolerance. Order matters: the specific
// prefixes (fate on, platform.probe, syscall.exit) must win over the block
// declarations that share their leading word.

// blockDecls are declaration keywords whose balanced { ... } block is
// consumed without emitting anything.
var blockDecls = []string{
	"pool ", "fate {", "task {", "gpu {", "perf {",
	"reg {", "sys {", "compiler {",
	"collapse {", "lib {", "env {",
	"rule ", "intent ", "platform {",
	"tile {", "codegen {", "graphics {",
	"gui {", "style {", "layout {",
	"event {", "db {", "core {",
	"kernel {", "linux {", "macos {",
	"windows {", "driver {", "observe {",
	"field {", "use ",
}

func (c *Compiler) compileStatement() {
	c.skipSpace()
	if c.pos >= len(c.src) {
		return
	}

	if c.peek() == '#' {
		c.skipLine()
		return
	}

	switch {
	case c.accept("out "):
		c.compileInlineWrite()
		return
	case c.accept("emit "):
		c.compileInlineWrite()
		return
	case c.accept("fn "):
		c.compileFnDef()
		return
	case c.accept("when "):
		c.compileWhen()
		return
	case c.accept("loop"):
		c.skipSpace()
		c.compileLoop()
		return
	case c.accept("break"):
		c.compileBreak()
		return
	case c.accept("return"):
		c.compileReturn()
		return
	case c.accept("-> "):
		c.compileReturn()
		return
	case c.accept("keep"):
		c.gen.EventLoop()
		return
	case c.accept("fate on"):
		c.fateMode = true
		c.fate.On = true
		return
	case c.accept("fate off"):
		c.fateMode = false
		c.fate.On = false
		return
	case c.accept("limit "):
		n := c.parseNumber()
		if n != 0 {
			c.fate.MarginalThreshold = 1.0 / float64(n)
		}
		return
	case c.accept("syscall.exit("):
		c.compileExit()
		return
	case c.accept("syscall.write("):
		c.compileSyscall3(1)
		return
	case c.accept("syscall.read("):
		c.compileSyscall3(0)
		return
	case c.accept("syscall.open("):
		c.compileSyscall3(2)
		return
	case c.accept("syscall.close("):
		c.compileExpr()
		c.gen.MovRDIFromRAX()
		c.gen.MovRAXImm(3)
		c.gen.Syscall()
		c.closeParen()
		return
	case c.accept("syscall.mmap("):
		c.emitMmapArgs()
		c.closeParen()
		return
	case c.accept("poke("):
		c.compileExpr() // address
		c.gen.PushRAX()
		c.skipSpace()
		if c.peek() == ',' {
			c.advance()
		}
		c.skipSpace()
		c.compileExpr() // value
		c.gen.PopRBX()
		c.gen.MovRBXByteFromAL()
		c.closeParen()
		return
	case c.accept("peek("):
		c.compileExpr()
		c.gen.MovzxRAXByteRAX()
		c.closeParen()
		return
	case c.accept("getchar()"):
		c.emitGetchar()
		return
	case c.accept("putchar("):
		c.compilePutByte()
		return
	case c.accept("byte("):
		c.compilePutByte()
		return
	case c.accept("unified "):
		c.parseUnifiedBlock()
		return
	case c.match("unified{"):
		c.pos += len("unified") // leave the brace for the block parser
		c.parseUnifiedBlock()
		return
	case c.accept("platform.probe"):
		return
	case c.accept("bridge.read"):
		return
	case c.accept("compat.probe"):
		return
	}

	for _, kw := range blockDecls {
		if c.match(kw) {
			c.skipBlockDecl()
			return
		}
	}

	if c.accept("otherwise") {
		c.skipSpace()
		if c.peek() == '{' {
			c.compileBlock()
		}
		return
	}

	if isIdentStart(c.peek()) {
		name := c.parseIdent()
		c.skipSpace()
		switch {
		case c.peek() == '=' && c.peekN(1) != '=':
			c.advance()
			c.compileAssign(name)
		case c.peek() == '(':
			c.advance()
			c.skipSpace()
			c.compileCallStatement(name)
		default:
			c.skipLine()
		}
		return
	}

	c.skipLine()
}

// compileInlineWrite handles out and emit: embed the literal bytes behind a
// near jump, then write them to stdout. Both keywords share the mechanism;
// escapes are already resolved by the string scanner.
func (c *Compiler) compileInlineWrite() {
	c.skipSpace()
	text := c.parseString()
	if len(text) == 0 {
		return
	}

	c.gen.JmpOver(int32(len(text)))
	dataPos := c.gen.Pos()
	c.gen.InlineData(text)

	c.gen.MovRAXImm(1)
	c.gen.MovRDIImm(1)
	rel := -int32(c.gen.Pos() - dataPos + 7)
	c.gen.LeaRSIRIP(rel)
	c.gen.MovRDXImm(int64(len(text)))
	c.gen.Syscall()
}

// compileFnDef records a function declaration and captures its body byte
// range; nothing is emitted here. Bodies compile in the third pass.
func (c *Compiler) compileFnDef() {
	c.skipSpace()
	name := c.parseIdent()

	fn := c.gen.RegisterFunc(name)
	if fn == nil {
		return
	}

	c.skipSpace()
	for c.pos < len(c.src) && c.peek() != '{' && len(fn.Params) < codegen.MaxParams {
		if isIdentStart(c.peek()) {
			fn.Params = append(fn.Params, c.parseIdent())
		} else {
			c.advance()
		}
		c.skipSpace()
	}

	if c.peek() == '{' {
		c.advance()
		fn.BodyPos = c.pos
		c.skipBalancedBraces()
		fn.BodyEnd = c.pos - 1
	}
}

// skipBalancedBraces consumes a block whose opening brace is already
// consumed, honoring string literals (with escapes) and # comments so a
// brace inside either never unbalances the scan.
func (c *Compiler) skipBalancedBraces() {
	depth := 1
	for c.pos < len(c.src) && depth > 0 {
		switch ch := c.peek(); ch {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			c.advance()
			for c.pos < len(c.src) && c.peek() != '"' {
				if c.peek() == '\\' {
					c.advance()
				}
				c.advance()
			}
		case '#':
			for c.pos < len(c.src) && c.peek() != '\n' {
				c.advance()
			}
		}
		c.advance()
	}
}

func (c *Compiler) compileWhen() {
	end := c.gen.NextWhenLabel()

	c.skipSpace()
	c.compileExpr()

	c.gen.TestRAX()
	c.gen.Je(end)

	c.skipSpace()
	if c.peek() == '{' {
		c.compileBlock()
	}

	c.gen.AddLabel(end)
}

func (c *Compiler) compileLoop() {
	start, end := c.gen.NextLoopLabels()
	c.pushLoop(start, end)

	c.gen.AddLabel(start)

	c.skipSpace()
	if c.peek() == '{' {
		c.compileBlock()
	}

	// Scheduler hook: one observation per compiled loop.
	if c.fateMode && c.fate.On {
		c.fate.Tick(c.tiles)
	}

	c.gen.Jmp(start)
	c.gen.AddLabel(end)

	c.popLoop()
}

func (c *Compiler) compileBreak() {
	if frame, ok := c.innerLoop(); ok {
		c.gen.Jmp(frame.end)
	}
}

// compileReturn handles both return and ->. Inside a loop the token breaks
// to the loop end; at function level it emits the epilogue.
func (c *Compiler) compileReturn() {
	c.skipSpace()
	if c.pos < len(c.src) && c.peek() != '\n' && c.peek() != '}' {
		c.compileExpr()
	}

	if frame, ok := c.innerLoop(); ok {
		c.gen.Jmp(frame.end)
	} else {
		c.gen.Epilogue()
	}
}

func (c *Compiler) compileAssign(name string) {
	c.skipSpace()

	v := c.gen.FindVar(name)
	if v == nil {
		v = c.gen.AddVar(name, codegen.VarInt)
	}
	if v != nil {
		c.compileExpr()
		c.gen.StoreVar(v)
	}
}

// compileCallStatement emits a user function call whose result is discarded.
// The opening parenthesis is already consumed.
func (c *Compiler) compileCallStatement(name string) {
	argc := 0
	for c.peek() != ')' && c.pos < len(c.src) {
		c.compileExpr()
		c.gen.PushRAX()
		argc++
		c.skipSpace()
		if c.peek() == ',' {
			c.advance()
		}
		c.skipSpace()
	}
	if c.peek() == ')' {
		c.advance()
	}
	c.gen.Call(name)
	if argc > 0 {
		c.gen.AddRSP(int32(argc * 8))
	}
}

func (c *Compiler) compileBlock() {
	c.skipSpace()
	if c.peek() == '{' {
		c.advance()
	}
	for c.pos < len(c.src) {
		c.skipSpace()
		if c.peek() == '}' {
			c.advance()
			break
		}
		c.compileStatement()
	}
}

// skipBlockDecl consumes a declaration keyword and its balanced block.
func (c *Compiler) skipBlockDecl() {
	for c.pos < len(c.src) && c.peek() != '{' {
		c.advance()
	}
	if c.peek() == '{' {
		c.advance()
		c.skipBalancedBraces()
	}
}

// compileExit emits the exit syscall. Literal statuses take the immediate
// encoding; expressions compile to %rax first.
func (c *Compiler) compileExit() {
	c.skipSpace()
	ch := c.peek()
	if isDigit(ch) || (ch == '-' && isDigit(c.peekN(1))) {
		start := c.pos
		code := c.parseNumber()
		c.skipSpace()
		if c.peek() == ')' {
			c.advance()
			c.gen.ExitImm(code)
			return
		}
		c.pos = start
	}
	c.compileExpr()
	c.closeParen()
	c.gen.ExitRAX()
}

// compileSyscall3 marshals the three-argument syscalls (read 0, write 1,
// open 2): first two arguments park on the stack, the third lands in %rdx,
// then the parked pair pops into %rsi and %rdi.
func (c *Compiler) compileSyscall3(num int64) {
	c.pushTwoArgs()
	c.compileExpr()
	c.gen.MovRDXFromRAX()
	c.gen.PopRAX()
	c.gen.MovRSIFromRAX()
	c.gen.PopRAX()
	c.gen.MovRDIFromRAX()
	c.gen.MovRAXImm(num)
	c.gen.Syscall()
	c.closeParen()
}

// compilePutByte emits putchar/byte: stores the low byte of the argument in
// a stack scratch and writes it to stdout.
func (c *Compiler) compilePutByte() {
	c.compileExpr()
	c.closeParen()
	c.gen.SubRSP(16)
	c.gen.MovRSPByteFromAL()
	c.gen.MovRAXImm(1)
	c.gen.MovRDIImm(1)
	c.gen.LeaRSIRSP()
	c.gen.MovRDXImm(1)
	c.gen.Syscall()
	c.gen.AddRSP(16)
}

// parseUnifiedBlock reads unified { i: v, e: v, r: v } and stores the field
// parameters. Values here keep their fractional part; the long key names are
// accepted alongside the short ones.
func (c *Compiler) parseUnifiedBlock() {
	c.skipSpace()
	if c.peek() != '{' {
		c.skipLine()
		return
	}
	c.advance()

	for c.pos < len(c.src) && c.peek() != '}' {
		c.skipSpace()
		if c.peek() == '}' {
			break
		}

		key := c.parseIdent()
		c.skipSpace()
		if c.peek() == ':' {
			c.advance()
		}
		c.skipSpace()
		val := c.parseFieldValue()

		switch key {
		case "i", "information_density":
			c.field.Set(val, c.field.E, c.field.R)
		case "e", "entropy_gradient":
			c.field.Set(c.field.I, val, c.field.R)
		case "r", "relation_strength":
			c.field.Set(c.field.I, c.field.E, val)
		}

		c.skipSpace()
		if c.peek() == ',' {
			c.advance()
		}
	}
	if c.peek() == '}' {
		c.advance()
	}
}

// closeParen consumes a trailing ')' if present.
func (c *Compiler) closeParen() {
	c.skipSpace()
	if c.peek() == ')' {
		c.advance()
	}
}
