package bpf

import "encoding/binary"

// Width is the fixed size in bytes of every encoded instruction.
const Width = 8

// Encode packs i into the eight-byte wire form of spec.md §4.5:
// opcode(1) | dst:4 src:4 (1) | offset (2, little-endian) | immediate (4,
// little-endian).
func Encode(i Instruction) [Width]byte {
	var b [Width]byte
	b[0] = i.Op
	b[1] = uint8(i.Dst&0x0f) | uint8(i.Src&0x0f)<<4
	binary.LittleEndian.PutUint16(b[2:4], uint16(i.Off))
	binary.LittleEndian.PutUint32(b[4:8], uint32(i.Imm))
	return b
}

// Decode is the inverse of Encode.
func Decode(b [Width]byte) Instruction {
	return Instruction{
		Op:  b[0],
		Dst: Register(b[1] & 0x0f),
		Src: Register(b[1] >> 4),
		Off: int16(binary.LittleEndian.Uint16(b[2:4])),
		Imm: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// EncodeProgram concatenates the encoded form of every instruction in
// order, producing the raw loadable byte stream (spec.md §5: no ELF
// wrapper, just the instruction stream).
func EncodeProgram(prog []Instruction) []byte {
	out := make([]byte, 0, len(prog)*Width)
	for _, ins := range prog {
		enc := Encode(ins)
		out = append(out, enc[:]...)
	}
	return out
}

// DecodeProgram splits a raw byte stream back into instructions. len(b)
// must be a multiple of Width.
func DecodeProgram(b []byte) []Instruction {
	out := make([]Instruction, 0, len(b)/Width)
	for i := 0; i+Width <= len(b); i += Width {
		var chunk [Width]byte
		copy(chunk[:], b[i:i+Width])
		out = append(out, Decode(chunk))
	}
	return out
}
