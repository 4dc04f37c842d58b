package codegen

import (
	"fmt"

	"github.com/wavelang/wave/pkg/amd64"
)

// The instruction menu. Each method appends one fixed encoding from
// pkg/amd64 plus an AT&T-style listing line. None of them branch on
// generator state.

// Cond selects the SETcc emitted after a comparison. The condition reads as
// "scratch OP accumulator" on the flags from cmp %rax, %rbx.
type Cond int

const (
	CondEq Cond = iota
	CondNe
	CondLt
	CondLe
	CondGt
	CondGe
)

func (g *CodeGen) emit(bs []byte, asm string) {
	g.EmitBytes(bs)
	g.note("    " + asm)
}

func (g *CodeGen) PushRBP() { g.emit(amd64.PushRBP(), "push %rbp") }
func (g *CodeGen) PopRBP()  { g.emit(amd64.PopRBP(), "pop %rbp") }
func (g *CodeGen) PushRAX() { g.emit(amd64.PushRAX(), "push %rax") }
func (g *CodeGen) PopRAX()  { g.emit(amd64.PopRAX(), "pop %rax") }
func (g *CodeGen) PushRBX() { g.emit(amd64.PushRBX(), "push %rbx") }
func (g *CodeGen) PopRBX()  { g.emit(amd64.PopRBX(), "pop %rbx") }

func (g *CodeGen) Ret()     { g.emit(amd64.Ret(), "ret") }
func (g *CodeGen) Syscall() { g.emit(amd64.Syscall(), "syscall") }
func (g *CodeGen) Pause()   { g.emit(amd64.Pause(), "pause") }
func (g *CodeGen) Nop()     { g.emit(amd64.Nop(), "nop") }

// Prologue establishes a frame: push %rbp; movq %rsp, %rbp.
func (g *CodeGen) Prologue() {
	g.PushRBP()
	g.emit(amd64.MovRBPFromRSP(), "movq %rsp, %rbp")
}

// Epilogue tears a frame down: movq %rbp, %rsp; pop %rbp; ret.
func (g *CodeGen) Epilogue() {
	g.emit(amd64.MovRSPFromRBP(), "movq %rbp, %rsp")
	g.PopRBP()
	g.Ret()
}

func (g *CodeGen) SubRSP(n int32) { g.emit(amd64.SubRSPImm32(n), fmt.Sprintf("subq $%d, %%rsp", n)) }
func (g *CodeGen) AddRSP(n int32) { g.emit(amd64.AddRSPImm32(n), fmt.Sprintf("addq $%d, %%rsp", n)) }

func (g *CodeGen) MovRAXImm(v int64) {
	g.emit(amd64.MovabsRAX(uint64(v)), fmt.Sprintf("movabs $%d, %%rax", v))
}

func (g *CodeGen) MovRDIImm(v int64) {
	g.emit(amd64.MovabsRDI(uint64(v)), fmt.Sprintf("movabs $%d, %%rdi", v))
}

func (g *CodeGen) MovRSIImm(v int64) {
	g.emit(amd64.MovabsRSI(uint64(v)), fmt.Sprintf("movabs $%d, %%rsi", v))
}

func (g *CodeGen) MovRDXImm(v int64) {
	g.emit(amd64.MovabsRDX(uint64(v)), fmt.Sprintf("movabs $%d, %%rdx", v))
}

func (g *CodeGen) MovRDIFromRAX() { g.emit(amd64.MovRDIFromRAX(), "movq %rax, %rdi") }
func (g *CodeGen) MovRSIFromRAX() { g.emit(amd64.MovRSIFromRAX(), "movq %rax, %rsi") }
func (g *CodeGen) MovRDXFromRAX() { g.emit(amd64.MovRDXFromRAX(), "movq %rax, %rdx") }
func (g *CodeGen) MovRBXFromRAX() { g.emit(amd64.MovRBXFromRAX(), "movq %rax, %rbx") }
func (g *CodeGen) MovR9FromRAX()  { g.emit(amd64.MovR9FromRAX(), "movq %rax, %r9") }
func (g *CodeGen) PopR8()         { g.emit(amd64.PopR8(), "pop %r8") }
func (g *CodeGen) PopR10()        { g.emit(amd64.PopR10(), "pop %r10") }

// LoadLocal loads a 64-bit frame slot into the accumulator.
func (g *CodeGen) LoadLocal(disp int32) {
	g.emit(amd64.MovRAXFromRBPDisp(disp), fmt.Sprintf("movq %d(%%rbp), %%rax", disp))
}

// StoreLocal stores the accumulator into a 64-bit frame slot.
func (g *CodeGen) StoreLocal(disp int32) {
	g.emit(amd64.MovRBPDispFromRAX(disp), fmt.Sprintf("movq %%rax, %d(%%rbp)", disp))
}

// LoadGlobal loads a 64-bit value from an absolute address:
// movabs addr, %rax; movq (%rax), %rax.
func (g *CodeGen) LoadGlobal(addr uint64) {
	g.emit(amd64.MovabsRAX(addr), fmt.Sprintf("movabs $0x%x, %%rax", addr))
	g.emit(amd64.MovRAXFromRAXInd(), "movq (%rax), %rax")
}

// StoreGlobal stores the accumulator to an absolute address. The value is
// parked on the stack while the address materializes in the scratch
// register, so nothing is clobbered before the store:
// push %rax; movabs addr, %rbx; pop %rax; movq %rax, (%rbx).
func (g *CodeGen) StoreGlobal(addr uint64) {
	g.PushRAX()
	g.emit(amd64.MovabsRBX(addr), fmt.Sprintf("movabs $0x%x, %%rbx", addr))
	g.PopRAX()
	g.emit(amd64.MovRBXIndFromRAX(), "movq %rax, (%rbx)")
}

// LoadVar loads a variable by its storage class.
func (g *CodeGen) LoadVar(v *Variable) {
	if v.IsGlobal {
		g.LoadGlobal(v.GlobalAddr)
	} else {
		g.LoadLocal(v.StackOffset)
	}
}

// StoreVar stores the accumulator into a variable by its storage class.
func (g *CodeGen) StoreVar(v *Variable) {
	if v.IsGlobal {
		g.StoreGlobal(v.GlobalAddr)
	} else {
		g.StoreLocal(v.StackOffset)
	}
}

// AddRBX encodes: addq %rbx, %rax. Left operand in scratch, result in the
// accumulator.
func (g *CodeGen) AddRBX() { g.emit(amd64.AddRAXRBX(), "addq %rbx, %rax") }

// SubRBX subtracts the accumulator (right operand) from the scratch register
// (left operand), leaving the result in the accumulator. The three-move
// idiom places the left operand in %rax before the subtract:
// movq %rax, %rcx; movq %rbx, %rax; subq %rcx, %rax.
func (g *CodeGen) SubRBX() {
	g.emit(amd64.MovRCXFromRAX(), "movq %rax, %rcx")
	g.emit(amd64.MovRAXFromRBX(), "movq %rbx, %rax")
	g.emit(amd64.SubRAXRCX(), "subq %rcx, %rax")
}

// MulRBX encodes: imulq %rbx, %rax.
func (g *CodeGen) MulRBX() { g.emit(amd64.ImulRAXRBX(), "imulq %rbx, %rax") }

// DivRBX divides %rax by %rbx, signed: cqo; idivq %rbx. The caller places
// the left operand in %rax and the right operand in %rbx beforehand.
func (g *CodeGen) DivRBX() {
	g.emit(amd64.Cqo(), "cqo")
	g.emit(amd64.IdivRBX(), "idivq %rbx")
}

// SetCompare compares scratch with accumulator and materializes the boolean:
// cmpq %rax, %rbx; setCC %al; movzbq %al, %rax.
func (g *CodeGen) SetCompare(c Cond) {
	g.emit(amd64.CmpRBXRAX(), "cmpq %rax, %rbx")
	switch c {
	case CondEq:
		g.emit(amd64.Sete(), "sete %al")
	case CondNe:
		g.emit(amd64.Setne(), "setne %al")
	case CondLt:
		g.emit(amd64.Setl(), "setl %al")
	case CondLe:
		g.emit(amd64.Setle(), "setle %al")
	case CondGt:
		g.emit(amd64.Setg(), "setg %al")
	case CondGe:
		g.emit(amd64.Setge(), "setge %al")
	}
	g.emit(amd64.MovzxRAXAL(), "movzbq %al, %rax")
}

// TestRAX encodes: testq %rax, %rax.
func (g *CodeGen) TestRAX() { g.emit(amd64.TestRAXRAX(), "testq %rax, %rax") }

// Je emits a conditional jump to label with a fixed-up rel32.
func (g *CodeGen) Je(label string) {
	g.emit(amd64.JeOp(), "je "+label)
	g.AddFixup(label)
}

// Jne emits a conditional jump to label with a fixed-up rel32.
func (g *CodeGen) Jne(label string) {
	g.emit(amd64.JneOp(), "jne "+label)
	g.AddFixup(label)
}

// Jmp emits an unconditional near jump to label with a fixed-up rel32.
func (g *CodeGen) Jmp(label string) {
	g.emit(amd64.JmpOp(), "jmp "+label)
	g.AddFixup(label)
}

// Call emits a near call to label with a fixed-up rel32.
func (g *CodeGen) Call(label string) {
	g.emit(amd64.CallOp(), "call "+label)
	g.AddFixup(label)
}

// JmpOver emits a near jump that skips n inline data bytes.
func (g *CodeGen) JmpOver(n int32) {
	g.emit(amd64.JmpRel32(n), fmt.Sprintf("jmp .+%d", n+5))
}

// JmpShort emits a two-byte jump with an 8-bit displacement.
func (g *CodeGen) JmpShort(rel int8) {
	g.emit(amd64.JmpShort(rel), fmt.Sprintf("jmp .%+d", int(rel)+2))
}

// LeaRAXRIP points the accumulator at a RIP-relative inline literal.
func (g *CodeGen) LeaRAXRIP(disp int32) {
	g.emit(amd64.LeaRAXRIP(disp), fmt.Sprintf("leaq %d(%%rip), %%rax", disp))
}

// LeaRSIRIP points %rsi at a RIP-relative inline literal.
func (g *CodeGen) LeaRSIRIP(disp int32) {
	g.emit(amd64.LeaRSIRIP(disp), fmt.Sprintf("leaq %d(%%rip), %%rsi", disp))
}

// LeaRSIRSP points %rsi at the stack scratch used by single-byte I/O.
func (g *CodeGen) LeaRSIRSP() { g.emit(amd64.LeaRSIRSP(), "leaq (%rsp), %rsi") }

// MovzxRAXByteRSP loads the scratch byte zero-extended.
func (g *CodeGen) MovzxRAXByteRSP() { g.emit(amd64.MovzxRAXByteRSP(), "movzbq (%rsp), %rax") }

// MovzxRAXByteRAX loads the byte the accumulator points at, zero-extended.
func (g *CodeGen) MovzxRAXByteRAX() { g.emit(amd64.MovzxRAXByteRAX(), "movzbq (%rax), %rax") }

// MovRSPByteFromAL stores the low accumulator byte into the stack scratch.
func (g *CodeGen) MovRSPByteFromAL() { g.emit(amd64.MovRSPByteFromAL(), "movb %al, (%rsp)") }

// MovRBXByteFromAL stores the low accumulator byte at the scratch address.
func (g *CodeGen) MovRBXByteFromAL() { g.emit(amd64.MovRBXByteFromAL(), "movb %al, (%rbx)") }

// ExitImm emits the Linux exit syscall with a literal status.
func (g *CodeGen) ExitImm(code int64) {
	g.MovRAXImm(60)
	g.MovRDIImm(code)
	g.Syscall()
}

// ExitRAX emits the Linux exit syscall with the status in the accumulator.
func (g *CodeGen) ExitRAX() {
	g.MovRDIFromRAX()
	g.MovRAXImm(60)
	g.Syscall()
}

// EventLoop emits the keep statement's two-instruction idle loop:
// pause; jmp back to the pause.
func (g *CodeGen) EventLoop() {
	g.Pause()
	g.JmpShort(-4)
}

// InlineData appends literal bytes to the code buffer and records them in
// the listing.
func (g *CodeGen) InlineData(bs []byte) {
	g.EmitBytes(bs)
	g.note(fmt.Sprintf("    .byte %d bytes inline", len(bs)))
}

// NextWhenLabel returns a fresh end label for a when statement.
func (g *CodeGen) NextWhenLabel() string {
	id := g.whenID
	g.whenID++
	return fmt.Sprintf("_when_end_%d", id)
}

// NextLoopLabels returns fresh start and end labels for a loop.
func (g *CodeGen) NextLoopLabels() (start, end string) {
	id := g.loopID
	g.loopID++
	return fmt.Sprintf("_loop_start_%d", id), fmt.Sprintf("_loop_end_%d", id)
}
