package core

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func compile(t *testing.T, src string) *Compiler {
	t.Helper()
	c := New([]byte(src))
	c.Compile()
	return c
}

// mainPrologue is the fixed entry sequence: push %rbp; movq %rsp, %rbp;
// subq $512, %rsp.
var mainPrologue = []byte{
	0x55,
	0x48, 0x89, 0xe5,
	0x48, 0x81, 0xec, 0x00, 0x02, 0x00, 0x00,
}

// exitZero is movabs $60, %rax; movabs $0, %rdi; syscall.
var exitZero = []byte{
	0x48, 0xb8, 0x3c, 0, 0, 0, 0, 0, 0, 0,
	0x48, 0xbf, 0, 0, 0, 0, 0, 0, 0, 0,
	0x0f, 0x05,
}

// TestEmptySource checks that an empty compile is exactly the prologue plus
// the trailing exit(0), and wraps into a well-formed image.
func TestEmptySource(t *testing.T) {
	c := compile(t, "")

	want := append(append([]byte{}, mainPrologue...), exitZero...)
	if !bytes.Equal(c.Gen().Code(), want) {
		t.Errorf("code = % x\nwant % x", c.Gen().Code(), want)
	}

	out := c.Gen().ELF()
	if len(out) != 120+len(want) {
		t.Errorf("image size = %d, want %d", len(out), 120+len(want))
	}
	if out[0] != 0x7f || out[1] != 'E' {
		t.Error("bad ELF magic")
	}
}

// TestOutEmbedsString checks the inline-literal convention: the bytes sit
// behind a near jump and the following lea points back at them.
func TestOutEmbedsString(t *testing.T) {
	c := compile(t, `out "hi\n"
syscall.exit(0)`)
	code := c.Gen().Code()

	// jmp over the three data bytes right after the prologue
	if code[11] != 0xe9 {
		t.Fatalf("code[11] = %#x, want jmp near", code[11])
	}
	if skip := binary.LittleEndian.Uint32(code[12:]); skip != 3 {
		t.Errorf("jmp skips %d bytes, want 3", skip)
	}

	dataPos := bytes.Index(code, []byte("hi\n"))
	if dataPos != 16 {
		t.Fatalf("inline data at %d, want 16", dataPos)
	}

	// the lea rsi must reconstruct the data address RIP-relatively
	leaPos := bytes.Index(code, []byte{0x48, 0x8d, 0x35})
	if leaPos < 0 {
		t.Fatal("no lea rsi, [rip+disp] emitted")
	}
	disp := int32(binary.LittleEndian.Uint32(code[leaPos+3:]))
	if got := leaPos + 7 + int(disp); got != dataPos {
		t.Errorf("lea resolves to %d, want %d", got, dataPos)
	}
}

// TestOutPairConcatenates checks two out statements emit two independent
// inline literals in order.
func TestOutPairConcatenates(t *testing.T) {
	c := compile(t, `out "AB"
out "CD"
syscall.exit(0)`)
	code := c.Gen().Code()

	ab := bytes.Index(code, []byte("AB"))
	cd := bytes.Index(code, []byte("CD"))
	if ab < 0 || cd < 0 || cd < ab {
		t.Errorf("literal order: AB at %d, CD at %d", ab, cd)
	}
}

// TestGlobalAssignment checks scenario 2: x = 7 stores through the absolute
// global slot and syscall.exit(x) loads it back.
func TestGlobalAssignment(t *testing.T) {
	c := compile(t, `x = 7
syscall.exit(x)`)
	code := c.Gen().Code()

	if c.Gen().VarCount() != 1 {
		t.Errorf("VarCount = %d, want 1", c.Gen().VarCount())
	}
	v := c.Gen().FindVar("x")
	if v == nil || !v.IsGlobal || v.GlobalAddr != 0x600000 {
		t.Fatalf("x = %+v, want global at 0x600000", v)
	}

	// store: push %rax; movabs $0x600000, %rbx; pop %rax; movq %rax, (%rbx)
	store := []byte{
		0x50,
		0x48, 0xbb, 0x00, 0x00, 0x60, 0, 0, 0, 0, 0,
		0x58,
		0x48, 0x89, 0x03,
	}
	if !bytes.Contains(code, store) {
		t.Error("missing load-safe global store sequence")
	}

	// exit with the value: movq %rax, %rdi; movabs $60, %rax; syscall
	exitRAX := []byte{0x48, 0x89, 0xc7, 0x48, 0xb8, 0x3c}
	if !bytes.Contains(code, exitRAX) {
		t.Error("missing exit-with-accumulator sequence")
	}
}

// TestFunctionCall checks scenario 3: declaration in pass 1, body emitted
// after main's exit, call fixup resolved to the body offset.
func TestFunctionCall(t *testing.T) {
	c := compile(t, `fn add a b { -> a + b }
y = add(3, 4)
syscall.exit(y)`)
	code := c.Gen().Code()

	fn := c.Gen().FindFunc("add")
	if fn == nil {
		t.Fatal("add not registered")
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Errorf("params = %v, want [a b]", fn.Params)
	}
	if fn.CodeOffset == 0 {
		t.Fatal("body never emitted")
	}
	if code[fn.CodeOffset] != 0x55 {
		t.Errorf("body starts with %#x, want push %%rbp", code[fn.CodeOffset])
	}
	if c.Gen().UnresolvedFixups() != 0 {
		t.Fatalf("unresolved fixups: %d", c.Gen().UnresolvedFixups())
	}

	// some call site must resolve exactly to the body offset
	found := false
	for i := 0; i+5 <= len(code); i++ {
		if code[i] != 0xe8 {
			continue
		}
		disp := int32(binary.LittleEndian.Uint32(code[i+1:]))
		if i+5+int(disp) == fn.CodeOffset {
			found = true
			break
		}
	}
	if !found {
		t.Error("no call resolves to the function body")
	}

	// body locals and params are dropped after pass 3
	if c.Gen().VarCount() != 1 {
		t.Errorf("VarCount = %d, want 1 (just y)", c.Gen().VarCount())
	}
}

// TestLoopBreak checks scenario 4's control flow: resolved loop labels, a
// forward je out of the when, and a backward jmp to the loop start.
func TestLoopBreak(t *testing.T) {
	c := compile(t, `i = 0
loop { i = i + 1 when i == 3 { break } }
syscall.exit(i)`)
	code := c.Gen().Code()

	if c.Gen().UnresolvedFixups() != 0 {
		t.Fatalf("unresolved fixups: %d", c.Gen().UnresolvedFixups())
	}

	backward := false
	for i := 0; i+5 <= len(code); i++ {
		if code[i] == 0xe9 {
			if disp := int32(binary.LittleEndian.Uint32(code[i+1:])); disp < 0 {
				backward = true
			}
		}
	}
	if !backward {
		t.Error("no backward jump to the loop start")
	}

	// the compile-time scheduler ticks once per loop and collapses
	if c.Report("a.out", false).FateDynamic {
		t.Error("fate must be static after a loop tick")
	}
}

// TestReturnInsideLoopBreaks checks the dual-purpose return token: inside a
// loop it jumps to the loop end instead of emitting a function epilogue.
func TestReturnInsideLoopBreaks(t *testing.T) {
	c := compile(t, `loop { -> 5 }
syscall.exit(0)`)
	code := c.Gen().Code()

	epilogue := []byte{0x48, 0x89, 0xec, 0x5d, 0xc3}
	if bytes.Contains(code, epilogue) {
		t.Error("return inside a loop must not emit an epilogue")
	}
	if c.Gen().UnresolvedFixups() != 0 {
		t.Errorf("unresolved fixups: %d", c.Gen().UnresolvedFixups())
	}
}

// TestBreakOutsideLoopIsNoOp checks the permissive policy.
func TestBreakOutsideLoopIsNoOp(t *testing.T) {
	c := compile(t, `break
syscall.exit(0)`)

	want := 11 + 22 + 22 // prologue, literal exit, trailing exit
	if got := c.Gen().Pos(); got != want {
		t.Errorf("code size = %d, want %d", got, want)
	}
}

// TestFunctionBodyAfterExit checks pass ordering: a body's inline data may
// only appear past main's trailing exit.
func TestFunctionBodyAfterExit(t *testing.T) {
	c := compile(t, `fn f { out "Z" }
syscall.exit(0)`)
	code := c.Gen().Code()

	mainEnd := 11 + 22 + 22
	z := bytes.IndexByte(code[mainEnd:], 'Z')
	if z < 0 {
		t.Fatal("body literal missing entirely")
	}
	if idx := bytes.IndexByte(code[:mainEnd], 'Z'); idx >= 0 {
		t.Errorf("body literal leaked into main at %d", idx)
	}
}

// TestKeepEmitsEventLoop checks the pause + self-jump pair.
func TestKeepEmitsEventLoop(t *testing.T) {
	c := compile(t, "keep")
	if !bytes.Contains(c.Gen().Code(), []byte{0xf3, 0x90, 0xeb, 0xfc}) {
		t.Error("missing event loop sequence")
	}
}

// TestOtherwiseAlwaysRuns checks that otherwise is a bare block with no
// condition attached.
func TestOtherwiseAlwaysRuns(t *testing.T) {
	c := compile(t, `otherwise { out "A" }
syscall.exit(0)`)
	code := c.Gen().Code()

	if !bytes.Contains(code, []byte{0xe9, 0x01, 0x00, 0x00, 0x00, 'A'}) {
		t.Error("otherwise block was not compiled")
	}
	// no conditional jump guards it
	if bytes.Contains(code[:20], []byte{0x0f, 0x84}) {
		t.Error("otherwise must not test a condition")
	}
}

// TestUnknownStatementsSkip checks unrecognized lines never abort or emit.
func TestUnknownStatementsSkip(t *testing.T) {
	c := compile(t, `this is not wave at all
gpu { shaders { } }
syscall.exit(0)`)

	want := 11 + 22 + 22
	if got := c.Gen().Pos(); got != want {
		t.Errorf("code size = %d, want %d", got, want)
	}
}

// TestTelemetryIsInert checks scenario 6: a unified block changes the
// report and nothing else.
func TestTelemetryIsInert(t *testing.T) {
	plain := compile(t, `syscall.exit(0)`)
	tuned := compile(t, `unified { i: 0.9, e: 0.1, r: 0.5 }
syscall.exit(0)`)

	if !bytes.Equal(plain.Gen().Code(), tuned.Gen().Code()) {
		t.Error("unified block must not change emitted code")
	}
	if !bytes.Equal(plain.Gen().ELF(), tuned.Gen().ELF()) {
		t.Error("unified block must not change the image")
	}

	rep := tuned.Report("a.out", false)
	if rep.FieldI != 0.9 || rep.FieldE != 0.1 || rep.FieldR != 0.5 {
		t.Errorf("field = (%v %v %v), want (0.9 0.1 0.5)", rep.FieldI, rep.FieldE, rep.FieldR)
	}
	if s := rep.String(); !strings.Contains(s, "i=0.90 e=0.10 r=0.50") {
		t.Errorf("report = %q, want two-decimal field tuple", s)
	}
}

// TestReportShape checks the fixed report lines.
func TestReportShape(t *testing.T) {
	c := compile(t, `x = 1
syscall.exit(0)`)
	s := c.Report("out.bin", false).String()

	for _, want := range []string{
		"Generated: out.bin",
		"Variables: 1 | Functions: 0",
		"Tile: 0 bytes (4 pools)",
		"Fate: dynamic",
		"Platform: id=1 syscall_base=0x0",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("report missing %q:\n%s", want, s)
		}
	}

	raw := c.Report("out.bin", true).String()
	if !strings.Contains(raw, "Generated raw: out.bin") {
		t.Errorf("raw report = %q", raw)
	}
}

// TestStringLiteralExpression checks the expression-level inline string:
// short jump over the NUL-terminated bytes, then lea %rax back at them.
func TestStringLiteralExpression(t *testing.T) {
	c := compile(t, `s = "hi"
syscall.exit(0)`)
	code := c.Gen().Code()

	pos := bytes.Index(code, []byte{0xeb, 0x03, 'h', 'i', 0x00})
	if pos < 0 {
		t.Fatal("missing short-jump inline literal")
	}
	leaStart := pos + 5
	want := []byte{0x48, 0x8d, 0x05}
	if !bytes.Equal(code[leaStart:leaStart+3], want) {
		t.Fatalf("no lea after literal: % x", code[leaStart:leaStart+3])
	}
	disp := int32(binary.LittleEndian.Uint32(code[leaStart+3:]))
	if got := leaStart + 7 + int(disp); got != pos+2 {
		t.Errorf("lea resolves to %d, want %d", got, pos+2)
	}
}

// TestHexAndNegativeLiterals checks literal immediates reach the code.
func TestHexAndNegativeLiterals(t *testing.T) {
	c := compile(t, `a = 0x10
b = -2
syscall.exit(0)`)
	code := c.Gen().Code()

	if !bytes.Contains(code, []byte{0x48, 0xb8, 0x10, 0, 0, 0, 0, 0, 0, 0}) {
		t.Error("missing movabs $0x10")
	}
	neg := []byte{0x48, 0xb8, 0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if !bytes.Contains(code, neg) {
		t.Error("missing movabs $-2")
	}
}

// TestPutcharSequence checks the single-byte write over the stack scratch.
func TestPutcharSequence(t *testing.T) {
	c := compile(t, `putchar(65)
syscall.exit(0)`)
	code := c.Gen().Code()

	scratch := []byte{
		0x48, 0x81, 0xec, 0x10, 0x00, 0x00, 0x00, // subq $16, %rsp
		0x88, 0x04, 0x24, // movb %al, (%rsp)
	}
	if !bytes.Contains(code, scratch) {
		t.Error("missing putchar scratch sequence")
	}
}

// TestFnRedeclarationIsIdempotent checks that the pass-1/pass-2 double walk
// leaves a single function entry with one body range.
func TestFnRedeclarationIsIdempotent(t *testing.T) {
	c := compile(t, `fn ping { out "p" }
ping()
syscall.exit(0)`)

	if got := c.Gen().FuncCount(); got != 1 {
		t.Errorf("FuncCount = %d, want 1", got)
	}
	if c.Gen().UnresolvedFixups() != 0 {
		t.Errorf("unresolved fixups: %d", c.Gen().UnresolvedFixups())
	}
}
