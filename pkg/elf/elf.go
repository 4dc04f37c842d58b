// Package elf provides ELF64 binary format building utilities.
// This package has no dependencies on the compiler internals and can be used
// standalone for generating ELF executables.
package elf

import (
	"encoding/binary"
)

// ELF64 constants
const (
	// ELF identification
	ELFMAG0       = 0x7f
	ELFMAG1       = 'E'
	ELFMAG2       = 'L'
	ELFMAG3       = 'F'
	ELFCLASS64    = 2
	ELFDATA2LSB   = 1 // Little endian
	EV_CURRENT    = 1
	ELFOSABI_NONE = 0

	// ELF types
	ET_EXEC = 2 // Executable file

	// Machine types
	EM_X86_64 = 62

	// Program header types
	PT_NULL = 0
	PT_LOAD = 1

	// Program header flags
	PF_X = 0x1 // Execute
	PF_W = 0x2 // Write
	PF_R = 0x4 // Read

	// Sizes
	ELF64HeaderSize = 64
	ELF64PhdrSize   = 56
	PageSize        = 0x1000

	// Wave memory layout
	DefaultCodeBase = 0x400000 // Load address of the image
	DefaultBSSBase  = 0x600000 // Global-variable region
	HeaderSize      = ELF64HeaderSize + ELF64PhdrSize
)

// Header64 represents the ELF64 file header.
type Header64 struct {
	Ident     [16]byte // ELF identification
	Type      uint16   // Object file type
	Machine   uint16   // Machine type
	Version   uint32   // Object file version
	Entry     uint64   // Entry point address
	PhOff     uint64   // Program header offset
	ShOff     uint64   // Section header offset
	Flags     uint32   // Processor-specific flags
	EhSize    uint16   // ELF header size
	PhEntSize uint16   // Program header entry size
	PhNum     uint16   // Number of program headers
	ShEntSize uint16   // Section header entry size
	ShNum     uint16   // Number of section headers
	ShStrNdx  uint16   // Section name string table index
}

// Phdr64 represents an ELF64 program header.
type Phdr64 struct {
	Type   uint32 // Segment type
	Flags  uint32 // Segment flags
	Off    uint64 // File offset
	VAddr  uint64 // Virtual address
	PAddr  uint64 // Physical address
	FileSz uint64 // Size in file
	MemSz  uint64 // Size in memory
	Align  uint64 // Alignment
}

// Image describes a minimal one-segment Wave executable.
//
//	ELF Layout (Minimal)
//
//	Offset     Content             Size
//	0x0000     ELF Header          64 bytes
//	0x0040     Program Header      56 bytes (PT_LOAD: whole file, R+W+X)
//	0x0078     Code                variable (entry point)
//	...        Data                variable
//
//	Virtual Addresses:
//	0x400000   File image (headers included; entry at 0x400078)
//	0x600000   Globals (zero-initialized; covered by the segment's MemSz)
//
//	The single segment maps the file at offset 0 and widens MemSz so the
//	kernel zero-fills the global region past the end of the file, the way a
//	BSS segment would. No section headers.
type Image struct {
	Code        []byte // Emitted instructions and inline literals
	Data        []byte // Data buffer (currently always empty, kept in layout)
	GlobalBytes uint64 // Bytes reserved for globals at DefaultBSSBase
}

// Entry returns the entry point address: load base plus both headers.
func (im *Image) Entry() uint64 {
	return DefaultCodeBase + HeaderSize
}

// FileSize returns the on-disk size of the built image.
func (im *Image) FileSize() uint64 {
	return HeaderSize + uint64(len(im.Code)) + uint64(len(im.Data))
}

// MemSize returns the segment memory size: it spans from the load base past
// the global region so globals get kernel-zeroed memory. The global area is
// floored at one page.
func (im *Image) MemSize() uint64 {
	globals := im.GlobalBytes
	if globals < PageSize {
		globals = PageSize
	}
	return DefaultBSSBase - DefaultCodeBase + globals + 0x10000
}

// Build produces the final ELF binary.
func (im *Image) Build() []byte {
	out := make([]byte, 0, im.FileSize())

	hdr := Header64{
		Type:      ET_EXEC,
		Machine:   EM_X86_64,
		Version:   EV_CURRENT,
		Entry:     im.Entry(),
		PhOff:     ELF64HeaderSize,
		ShOff:     0, // No section headers
		EhSize:    ELF64HeaderSize,
		PhEntSize: ELF64PhdrSize,
		PhNum:     1,
	}
	hdr.Ident[0] = ELFMAG0
	hdr.Ident[1] = ELFMAG1
	hdr.Ident[2] = ELFMAG2
	hdr.Ident[3] = ELFMAG3
	hdr.Ident[4] = ELFCLASS64
	hdr.Ident[5] = ELFDATA2LSB
	hdr.Ident[6] = EV_CURRENT
	hdr.Ident[7] = ELFOSABI_NONE
	// Ident[8..15] are padding (already zero)

	out = writeHeader(out, &hdr)

	phdr := Phdr64{
		Type:   PT_LOAD,
		Flags:  PF_R | PF_W | PF_X,
		Off:    0,
		VAddr:  DefaultCodeBase,
		PAddr:  DefaultCodeBase,
		FileSz: im.FileSize(),
		MemSz:  im.MemSize(),
		Align:  PageSize,
	}
	out = writePhdr(out, &phdr)

	out = append(out, im.Code...)
	out = append(out, im.Data...)
	return out
}

// writeHeader writes the ELF64 header.
func writeHeader(out []byte, hdr *Header64) []byte {
	out = append(out, hdr.Ident[:]...)
	out = appendLE16(out, hdr.Type)
	out = appendLE16(out, hdr.Machine)
	out = appendLE32(out, hdr.Version)
	out = appendLE64(out, hdr.Entry)
	out = appendLE64(out, hdr.PhOff)
	out = appendLE64(out, hdr.ShOff)
	out = appendLE32(out, hdr.Flags)
	out = appendLE16(out, hdr.EhSize)
	out = appendLE16(out, hdr.PhEntSize)
	out = appendLE16(out, hdr.PhNum)
	out = appendLE16(out, hdr.ShEntSize)
	out = appendLE16(out, hdr.ShNum)
	out = appendLE16(out, hdr.ShStrNdx)
	return out
}

// writePhdr writes a program header.
func writePhdr(out []byte, phdr *Phdr64) []byte {
	out = appendLE32(out, phdr.Type)
	out = appendLE32(out, phdr.Flags)
	out = appendLE64(out, phdr.Off)
	out = appendLE64(out, phdr.VAddr)
	out = appendLE64(out, phdr.PAddr)
	out = appendLE64(out, phdr.FileSz)
	out = appendLE64(out, phdr.MemSz)
	out = appendLE64(out, phdr.Align)
	return out
}

// Little-endian append helpers
func appendLE16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}
