// Package amd64 provides x86_64 (AMD64) machine code encoding utilities.
// This package has no dependencies on compiler internals and can be used
// standalone for generating x86_64 machine code.
//
// Every function returns the exact byte sequence for one instruction form.
// Control-transfer encoders whose rel32 displacement is resolved later are
// exposed as opcode prefixes; the caller appends the four displacement bytes
// through its fixup table.
package amd64

import "encoding/binary"

// writeLE32 writes a 32-bit value in little-endian order.
func writeLE32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// writeLE64 writes a 64-bit value in little-endian order.
func writeLE64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

// imm32 appends a 32-bit signed immediate to an opcode prefix.
func imm32(opcode []byte, v int32) []byte {
	buf := make([]byte, 0, len(opcode)+4)
	buf = append(buf, opcode...)
	var disp [4]byte
	writeLE32(disp[:], uint32(v))
	return append(buf, disp[:]...)
}

// imm64 appends a 64-bit immediate to an opcode prefix.
func imm64(opcode []byte, v uint64) []byte {
	buf := make([]byte, 0, len(opcode)+8)
	buf = append(buf, opcode...)
	var q [8]byte
	writeLE64(q[:], v)
	return append(buf, q[:]...)
}
