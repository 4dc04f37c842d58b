package elf

import (
	"encoding/binary"
	"testing"
)

func le64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off:]) }
func le32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
func le16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }

// TestImageHeader checks the fixed fields of the ELF and program headers.
func TestImageHeader(t *testing.T) {
	im := Image{Code: make([]byte, 33)}
	out := im.Build()

	if len(out) != HeaderSize+33 {
		t.Fatalf("file size = %d, want %d", len(out), HeaderSize+33)
	}

	// ELF identification
	if out[0] != ELFMAG0 || out[1] != ELFMAG1 || out[2] != ELFMAG2 || out[3] != ELFMAG3 {
		t.Error("bad ELF magic")
	}
	if out[4] != ELFCLASS64 {
		t.Errorf("EI_CLASS = %d, want %d", out[4], ELFCLASS64)
	}
	if out[5] != ELFDATA2LSB {
		t.Errorf("EI_DATA = %d, want %d", out[5], ELFDATA2LSB)
	}
	if out[6] != EV_CURRENT {
		t.Errorf("EI_VERSION = %d, want %d", out[6], EV_CURRENT)
	}

	if got := le16(out, 16); got != ET_EXEC {
		t.Errorf("e_type = %d, want %d", got, ET_EXEC)
	}
	if got := le16(out, 18); got != EM_X86_64 {
		t.Errorf("e_machine = %d, want %d", got, EM_X86_64)
	}
	if got := le64(out, 24); got != DefaultCodeBase+HeaderSize {
		t.Errorf("e_entry = %#x, want %#x", got, DefaultCodeBase+HeaderSize)
	}
	if got := le64(out, 32); got != ELF64HeaderSize {
		t.Errorf("e_phoff = %d, want %d", got, ELF64HeaderSize)
	}
	if got := le16(out, 52); got != ELF64HeaderSize {
		t.Errorf("e_ehsize = %d, want %d", got, ELF64HeaderSize)
	}
	if got := le16(out, 54); got != ELF64PhdrSize {
		t.Errorf("e_phentsize = %d, want %d", got, ELF64PhdrSize)
	}
	if got := le16(out, 56); got != 1 {
		t.Errorf("e_phnum = %d, want 1", got)
	}
}

// TestImageProgramHeader checks the single PT_LOAD segment.
func TestImageProgramHeader(t *testing.T) {
	code := make([]byte, 100)
	im := Image{Code: code, GlobalBytes: 16}
	out := im.Build()

	ph := 64 // program header offset
	if got := le32(out, ph); got != PT_LOAD {
		t.Errorf("p_type = %d, want %d", got, PT_LOAD)
	}
	if got := le32(out, ph+4); got != PF_R|PF_W|PF_X {
		t.Errorf("p_flags = %d, want 7", got)
	}
	if got := le64(out, ph+8); got != 0 {
		t.Errorf("p_offset = %d, want 0", got)
	}
	if got := le64(out, ph+16); got != DefaultCodeBase {
		t.Errorf("p_vaddr = %#x, want %#x", got, uint64(DefaultCodeBase))
	}
	if got := le64(out, ph+32); got != uint64(HeaderSize+100) {
		t.Errorf("p_filesz = %d, want %d", got, HeaderSize+100)
	}
	wantMem := uint64(DefaultBSSBase-DefaultCodeBase) + PageSize + 0x10000
	if got := le64(out, ph+40); got != wantMem {
		t.Errorf("p_memsz = %#x, want %#x", got, wantMem)
	}
	if got := le64(out, ph+48); got != PageSize {
		t.Errorf("p_align = %#x, want %#x", got, uint64(PageSize))
	}
}

// TestImageMemSizeFloor checks the one-page floor when the global area is
// absent or smaller than a page, and the widening past it.
func TestImageMemSizeFloor(t *testing.T) {
	base := uint64(DefaultBSSBase-DefaultCodeBase) + 0x10000

	tests := []struct {
		name    string
		globals uint64
		want    uint64
	}{
		{"no globals", 0, base + PageSize},
		{"under a page", 16, base + PageSize},
		{"over a page", 0x2000, base + 0x2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := Image{GlobalBytes: tt.globals}
			if got := im.MemSize(); got != tt.want {
				t.Errorf("MemSize() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

// TestImageCarriesCodeAndData checks the payload lands after the headers.
func TestImageCarriesCodeAndData(t *testing.T) {
	im := Image{Code: []byte{0xaa, 0xbb}, Data: []byte{0xcc}}
	out := im.Build()

	if len(out) != HeaderSize+3 {
		t.Fatalf("file size = %d, want %d", len(out), HeaderSize+3)
	}
	if out[HeaderSize] != 0xaa || out[HeaderSize+1] != 0xbb || out[HeaderSize+2] != 0xcc {
		t.Errorf("payload = % x", out[HeaderSize:])
	}
}
