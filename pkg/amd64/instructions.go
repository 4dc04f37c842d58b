package amd64

// This file contains the x86_64 instruction encoders used by the Wave
// compiler. Each function returns the machine code bytes for a specific
// instruction form.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB bytes),
// see: https://wiki.osdev.org/X86-64_Instruction_Encoding
//
// The menu is fixed: expressions route through RAX (accumulator) and RBX
// (scratch), System V argument registers RDI/RSI/RDX carry syscall operands,
// and RBP is the frame base.

// PushRBP encodes: push %rbp (55)
func PushRBP() []byte { return []byte{0x55} }

// PopRBP encodes: pop %rbp (5D)
func PopRBP() []byte { return []byte{0x5d} }

// PushRAX encodes: push %rax (50)
func PushRAX() []byte { return []byte{0x50} }

// PopRAX encodes: pop %rax (58)
func PopRAX() []byte { return []byte{0x58} }

// PushRBX encodes: push %rbx (53)
func PushRBX() []byte { return []byte{0x53} }

// PopRBX encodes: pop %rbx (5B)
func PopRBX() []byte { return []byte{0x5b} }

// MovRBPFromRSP encodes: movq %rsp, %rbp (48 89 E5)
// Establishes the frame base at function entry.
func MovRBPFromRSP() []byte { return []byte{0x48, 0x89, 0xe5} }

// MovRSPFromRBP encodes: movq %rbp, %rsp (48 89 EC)
// Restores the stack pointer at function exit.
func MovRSPFromRBP() []byte { return []byte{0x48, 0x89, 0xec} }

// Ret encodes: ret (C3)
func Ret() []byte { return []byte{0xc3} }

// Syscall encodes: syscall (0F 05)
func Syscall() []byte { return []byte{0x0f, 0x05} }

// Pause encodes: pause (F3 90)
func Pause() []byte { return []byte{0xf3, 0x90} }

// Nop encodes: nop (90)
func Nop() []byte { return []byte{0x90} }

// SubRSPImm32 encodes: subq $imm32, %rsp (48 81 EC <imm32>)
// Reserves stack space.
func SubRSPImm32(n int32) []byte {
	// REX.W + 81 /5 id = sub r/m64, imm32; ModRM 11 101 100 (rsp) = EC
	return imm32([]byte{0x48, 0x81, 0xec}, n)
}

// AddRSPImm32 encodes: addq $imm32, %rsp (48 81 C4 <imm32>)
// Releases stack space.
func AddRSPImm32(n int32) []byte {
	// REX.W + 81 /0 id = add r/m64, imm32; ModRM 11 000 100 (rsp) = C4
	return imm32([]byte{0x48, 0x81, 0xc4}, n)
}

// MovabsRAX encodes: movabs $imm64, %rax (48 B8 <imm64>)
func MovabsRAX(v uint64) []byte { return imm64([]byte{0x48, 0xb8}, v) }

// MovabsRDI encodes: movabs $imm64, %rdi (48 BF <imm64>)
func MovabsRDI(v uint64) []byte { return imm64([]byte{0x48, 0xbf}, v) }

// MovabsRSI encodes: movabs $imm64, %rsi (48 BE <imm64>)
func MovabsRSI(v uint64) []byte { return imm64([]byte{0x48, 0xbe}, v) }

// MovabsRDX encodes: movabs $imm64, %rdx (48 BA <imm64>)
func MovabsRDX(v uint64) []byte { return imm64([]byte{0x48, 0xba}, v) }

// MovabsRBX encodes: movabs $imm64, %rbx (48 BB <imm64>)
func MovabsRBX(v uint64) []byte { return imm64([]byte{0x48, 0xbb}, v) }

// MovRDIFromRAX encodes: movq %rax, %rdi (48 89 C7)
func MovRDIFromRAX() []byte { return []byte{0x48, 0x89, 0xc7} }

// MovRSIFromRAX encodes: movq %rax, %rsi (48 89 C6)
func MovRSIFromRAX() []byte { return []byte{0x48, 0x89, 0xc6} }

// MovRDXFromRAX encodes: movq %rax, %rdx (48 89 C2)
func MovRDXFromRAX() []byte { return []byte{0x48, 0x89, 0xc2} }

// MovRBXFromRAX encodes: movq %rax, %rbx (48 89 C3)
func MovRBXFromRAX() []byte { return []byte{0x48, 0x89, 0xc3} }

// MovRCXFromRAX encodes: movq %rax, %rcx (48 89 C1)
func MovRCXFromRAX() []byte { return []byte{0x48, 0x89, 0xc1} }

// MovRAXFromRBX encodes: movq %rbx, %rax (48 89 D8)
func MovRAXFromRBX() []byte { return []byte{0x48, 0x89, 0xd8} }

// MovR9FromRAX encodes: movq %rax, %r9 (49 89 C1)
func MovR9FromRAX() []byte { return []byte{0x49, 0x89, 0xc1} }

// PopR8 encodes: pop %r8 (41 58)
func PopR8() []byte { return []byte{0x41, 0x58} }

// PopR10 encodes: pop %r10 (41 5A)
func PopR10() []byte { return []byte{0x41, 0x5a} }

// MovRAXFromRBPDisp encodes: movq disp32(%rbp), %rax (48 8B 85 <disp32>)
// Loads a 64-bit frame slot into the accumulator.
func MovRAXFromRBPDisp(disp int32) []byte {
	// REX.W + 8B /r; ModRM 10 000 101 (rax, [rbp]+disp32) = 85
	return imm32([]byte{0x48, 0x8b, 0x85}, disp)
}

// MovRBPDispFromRAX encodes: movq %rax, disp32(%rbp) (48 89 85 <disp32>)
// Stores the accumulator into a 64-bit frame slot.
func MovRBPDispFromRAX(disp int32) []byte {
	return imm32([]byte{0x48, 0x89, 0x85}, disp)
}

// MovRAXFromRAXInd encodes: movq (%rax), %rax (48 8B 00)
// Indirect 64-bit load through the accumulator; paired with MovabsRAX for
// absolute (global) addresses.
func MovRAXFromRAXInd() []byte { return []byte{0x48, 0x8b, 0x00} }

// MovRBXIndFromRAX encodes: movq %rax, (%rbx) (48 89 03)
// Indirect 64-bit store through the scratch register.
func MovRBXIndFromRAX() []byte { return []byte{0x48, 0x89, 0x03} }

// AddRAXRBX encodes: addq %rbx, %rax (48 01 D8)
func AddRAXRBX() []byte { return []byte{0x48, 0x01, 0xd8} }

// SubRAXRCX encodes: subq %rcx, %rax (48 29 C8)
func SubRAXRCX() []byte { return []byte{0x48, 0x29, 0xc8} }

// ImulRAXRBX encodes: imulq %rbx, %rax (48 0F AF C3)
func ImulRAXRBX() []byte { return []byte{0x48, 0x0f, 0xaf, 0xc3} }

// Cqo encodes: cqo (48 99)
// Sign-extends RAX into RDX:RAX before a signed division.
func Cqo() []byte { return []byte{0x48, 0x99} }

// IdivRBX encodes: idivq %rbx (48 F7 FB)
func IdivRBX() []byte { return []byte{0x48, 0xf7, 0xfb} }

// CmpRBXRAX encodes: cmpq %rax, %rbx (48 39 C3)
// Sets flags for "rbx OP rax"; followed by a SETcc on AL.
func CmpRBXRAX() []byte { return []byte{0x48, 0x39, 0xc3} }

// Sete encodes: sete %al (0F 94 C0)
func Sete() []byte { return []byte{0x0f, 0x94, 0xc0} }

// Setne encodes: setne %al (0F 95 C0)
func Setne() []byte { return []byte{0x0f, 0x95, 0xc0} }

// Setl encodes: setl %al (0F 9C C0)
func Setl() []byte { return []byte{0x0f, 0x9c, 0xc0} }

// Setle encodes: setle %al (0F 9E C0)
func Setle() []byte { return []byte{0x0f, 0x9e, 0xc0} }

// Setg encodes: setg %al (0F 9F C0)
func Setg() []byte { return []byte{0x0f, 0x9f, 0xc0} }

// Setge encodes: setge %al (0F 9D C0)
func Setge() []byte { return []byte{0x0f, 0x9d, 0xc0} }

// MovzxRAXAL encodes: movzbq %al, %rax (48 0F B6 C0)
// Zero-extends a SETcc result to the full accumulator.
func MovzxRAXAL() []byte { return []byte{0x48, 0x0f, 0xb6, 0xc0} }

// TestRAXRAX encodes: testq %rax, %rax (48 85 C0)
func TestRAXRAX() []byte { return []byte{0x48, 0x85, 0xc0} }

// JeOp is the opcode prefix for: je rel32 (0F 84).
// The caller appends the four displacement bytes via its fixup table.
func JeOp() []byte { return []byte{0x0f, 0x84} }

// JneOp is the opcode prefix for: jne rel32 (0F 85).
func JneOp() []byte { return []byte{0x0f, 0x85} }

// JmpOp is the opcode prefix for: jmp rel32 (E9).
func JmpOp() []byte { return []byte{0xe9} }

// CallOp is the opcode prefix for: call rel32 (E8).
func CallOp() []byte { return []byte{0xe8} }

// JmpRel32 encodes: jmp rel32 (E9 <rel32>) with a known displacement.
func JmpRel32(rel int32) []byte { return imm32([]byte{0xe9}, rel) }

// JmpShort encodes: jmp rel8 (EB <rel8>)
// Used to hop over short inline string literals.
func JmpShort(rel int8) []byte { return []byte{0xeb, byte(rel)} }

// LeaRAXRIP encodes: leaq disp32(%rip), %rax (48 8D 05 <disp32>)
// Materializes the address of an inline literal.
func LeaRAXRIP(disp int32) []byte {
	// REX.W + 8D /r; ModRM 00 000 101 (rax, RIP-relative) = 05
	return imm32([]byte{0x48, 0x8d, 0x05}, disp)
}

// LeaRSIRIP encodes: leaq disp32(%rip), %rsi (48 8D 35 <disp32>)
func LeaRSIRIP(disp int32) []byte {
	return imm32([]byte{0x48, 0x8d, 0x35}, disp)
}

// LeaRSIRSP encodes: leaq (%rsp), %rsi (48 8D 34 24)
// Points RSI at the stack scratch used by single-byte I/O.
func LeaRSIRSP() []byte {
	// ModRM 00 110 100 (rsi, SIB) = 34; SIB 00 100 100 (rsp base) = 24
	return []byte{0x48, 0x8d, 0x34, 0x24}
}

// MovzxRAXByteRSP encodes: movzbq (%rsp), %rax (48 0F B6 04 24)
func MovzxRAXByteRSP() []byte { return []byte{0x48, 0x0f, 0xb6, 0x04, 0x24} }

// MovzxRAXByteRAX encodes: movzbq (%rax), %rax (48 0F B6 00)
// The peek primitive.
func MovzxRAXByteRAX() []byte { return []byte{0x48, 0x0f, 0xb6, 0x00} }

// MovRSPByteFromAL encodes: movb %al, (%rsp) (88 04 24)
func MovRSPByteFromAL() []byte { return []byte{0x88, 0x04, 0x24} }

// MovRBXByteFromAL encodes: movb %al, (%rbx) (88 03)
// The poke primitive.
func MovRBXByteFromAL() []byte { return []byte{0x88, 0x03} }
