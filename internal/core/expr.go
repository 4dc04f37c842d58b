package core

import (
	"strings"

	"github.com/wavelang/wave/internal/codegen"
)

// Expression compilation. Expressions have a single precedence level:
// a primary followed by a left-to-right chain of binary operators, where the
// right operand is produced by a recursive call that itself consumes any
// following operators. Evaluation routes through a fixed register pair: the
// left operand parks on the machine stack while the right lands in %rax,
// then pops into %rbx for the operation.

// compileExpr emits code leaving the expression's value in %rax. The return
// value is the parse-time value of a leading number literal (also through a
// parenthesized group), even when operators follow it; it is 0 when the
// expression starts with anything else.
func (c *Compiler) compileExpr() int64 {
	c.skipSpace()

	var left int64

	switch {
	case isDigit(c.peek()) || (c.peek() == '-' && isDigit(c.peekN(1))):
		left = c.parseNumber()
		c.gen.MovRAXImm(left)

	case c.peek() == '"':
		c.compileStringLiteral()

	case isIdentStart(c.peek()):
		name := c.parseIdent()
		c.skipSpace()
		if c.peek() == '(' {
			c.advance()
			c.skipSpace()
			c.compileCallExpr(name)
		} else if v := c.gen.FindVar(name); v != nil {
			c.gen.LoadVar(v)
		} else {
			c.gen.MovRAXImm(0)
		}

	case c.peek() == '(':
		c.advance()
		left = c.compileExpr()
		c.skipSpace()
		if c.peek() == ')' {
			c.advance()
		}

	default:
		c.gen.MovRAXImm(0)
	}

	// Binary operator chain.
	c.skipSpace()
	for c.pos < len(c.src) {
		op, op2 := c.peek(), c.peekN(1)

		switch {
		case op == '+' && op2 != '=':
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.AddRBX()

		case op == '-' && !isDigit(op2) && op2 != '=':
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SubRBX()

		case op == '*' && op2 != '=':
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.MulRBX()

		case op == '/' && op2 != '=':
			// Division places the right operand in the scratch register and
			// pops the left back into the accumulator before dividing.
			c.advance()
			c.binaryRHS()
			c.gen.MovRBXFromRAX()
			c.gen.PopRAX()
			c.gen.DivRBX()

		case op == '>' && op2 == '=':
			c.advance()
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondGe)

		case op == '<' && op2 == '=':
			c.advance()
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondLe)

		case op == '=' && op2 == '=':
			c.advance()
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondEq)

		case op == '!' && op2 == '=':
			c.advance()
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondNe)

		case op == '>' && op2 != '>':
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondGt)

		case op == '<' && op2 != '<':
			c.advance()
			c.binaryRHS()
			c.gen.PopRBX()
			c.gen.SetCompare(codegen.CondLt)

		default:
			return left
		}
	}
	return left
}

// binaryRHS parks the left operand and compiles the right one. The division
// and comparison callers decide how the pair recombines.
func (c *Compiler) binaryRHS() {
	c.gen.PushRAX()
	c.compileExpr()
}

// compileStringLiteral embeds the string (with trailing NUL) in the
// instruction stream behind a short jump, then points %rax back at it with
// a RIP-relative lea.
func (c *Compiler) compileStringLiteral() {
	str := c.parseString()
	c.gen.JmpShort(int8(len(str) + 1))
	strPos := c.gen.Pos()
	c.gen.InlineData(append(str, 0))
	rel := -int32(c.gen.Pos() - strPos + 7)
	c.gen.LeaRAXRIP(rel)
}

// compileCallExpr handles a name followed by '(' inside an expression:
// the built-ins, the syscall intrinsics, or a user function call. The
// opening parenthesis is already consumed.
func (c *Compiler) compileCallExpr(name string) {
	switch {
	case name == "getchar":
		if c.peek() == ')' {
			c.advance()
		}
		c.emitGetchar()

	case name == "peek":
		c.compileExpr() // address in %rax
		c.skipSpace()
		if c.peek() == ')' {
			c.advance()
		}
		c.gen.MovzxRAXByteRAX()

	case name == "poke":
		c.compileExpr() // address
		c.gen.PushRAX()
		c.skipSpace()
		if c.peek() == ',' {
			c.advance()
		}
		c.skipSpace()
		c.compileExpr() // value in %rax
		c.skipSpace()
		if c.peek() == ')' {
			c.advance()
		}
		c.gen.PopRBX()
		c.gen.MovRBXByteFromAL()

	case strings.HasPrefix(name, "syscall"):
		c.compileSyscallExpr(name)

	default:
		argc := 0
		for c.peek() != ')' && c.pos < len(c.src) && argc < codegen.MaxParams {
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
}

// emitGetchar reads one byte from stdin over a 16-byte stack scratch and
// leaves it zero-extended in %rax.
func (c *Compiler) emitGetchar() {
	c.gen.SubRSP(16)
	c.gen.MovRAXImm(0)
	c.gen.MovRDIImm(0)
	c.gen.LeaRSIRSP()
	c.gen.MovRDXImm(1)
	c.gen.Syscall()
	c.gen.MovzxRAXByteRSP()
	c.gen.AddRSP(16)
}

// compileSyscallExpr marshals a syscall.NAME(...) form. name is the dotted
// identifier already scanned (the dot is an identifier character); the
// syscall number follows the Linux x86-64 table.
func (c *Compiler) compileSyscallExpr(name string) {
	sysName := strings.TrimPrefix(name, "syscall")
	if strings.HasPrefix(sysName, ".") {
		sysName = sysName[1:]
	} else if c.peek() == '.' {
		c.advance()
		sysName = c.parseIdent()
	}
	c.skipSpace()
	if c.peek() == '(' {
		c.advance()
	}

	switch sysName {
	case "open":
		c.pushTwoArgs()
		c.compileExpr() // mode
		c.gen.MovRDXFromRAX()
		c.gen.PopRAX()
		c.gen.MovRSIFromRAX()
		c.gen.PopRAX()
		c.gen.MovRDIFromRAX()
		c.gen.MovRAXImm(2)
		c.gen.Syscall()

	case "read":
		c.pushTwoArgs()
		c.compileExpr() // count
		c.gen.MovRDXFromRAX()
		c.gen.PopRAX()
		c.gen.MovRSIFromRAX()
		c.gen.PopRAX()
		c.gen.MovRDIFromRAX()
		c.gen.MovRAXImm(0)
		c.gen.Syscall()

	case "write":
		c.pushTwoArgs()
		c.compileExpr() // count
		c.gen.MovRDXFromRAX()
		c.gen.PopRAX()
		c.gen.MovRSIFromRAX()
		c.gen.PopRAX()
		c.gen.MovRDIFromRAX()
		c.gen.MovRAXImm(1)
		c.gen.Syscall()

	case "close":
		c.compileExpr() // fd
		c.gen.MovRDIFromRAX()
		c.gen.MovRAXImm(3)
		c.gen.Syscall()

	case "mmap":
		c.emitMmapArgs()
	}

	c.skipSpace()
	if c.peek() == ')' {
		c.advance()
	}
}

// pushTwoArgs compiles and pushes the first two comma-separated arguments.
func (c *Compiler) pushTwoArgs() {
	c.compileExpr()
	c.gen.PushRAX()
	c.skipSpace()
	if c.peek() == ',' {
		c.advance()
	}
	c.compileExpr()
	c.gen.PushRAX()
	c.skipSpace()
	if c.peek() == ',' {
		c.advance()
	}
}

// emitMmapArgs marshals the six mmap arguments. The first five park on the
// stack; the sixth lands in %r9 directly, then the rest pop into the System V
// argument registers in reverse.
func (c *Compiler) emitMmapArgs() {
	for i := 0; i < 5; i++ {
		c.compileExpr()
		c.gen.PushRAX()
		c.skipSpace()
		if c.peek() == ',' {
			c.advance()
		}
	}
	c.compileExpr() // offset
	c.gen.MovR9FromRAX()
	c.gen.PopR8()  // fd
	c.gen.PopR10() // flags
	c.gen.PopRAX() // prot
	c.gen.MovRDXFromRAX()
	c.gen.PopRAX() // len
	c.gen.MovRSIFromRAX()
	c.gen.PopRAX() // addr
	c.gen.MovRDIFromRAX()
	c.gen.MovRAXImm(9)
	c.gen.Syscall()
}
