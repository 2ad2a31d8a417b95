// Package bpf is the target instruction model of spec.md §4.3-§4.5: the
// eBPF-derived eight-byte instruction encoding, its registers and opcodes,
// and an encoder/disassembler pair. It also carries a small interpreter used
// only by this package's and codegen's tests to execute emitted sequences
// end-to-end (spec.md testable property 6), since nothing in the compiled
// output's actual execution path runs inside this module.
package bpf

// Register is one of the eleven general-purpose/frame registers of the
// target machine (spec.md §3's calling convention).
type Register uint8

const (
	R0  Register = 0 // return value
	R1  Register = 1 // arg 1
	R2  Register = 2 // arg 2
	R3  Register = 3 // arg 3
	R4  Register = 4 // arg 4
	R5  Register = 5 // arg 5
	R6  Register = 6 // callee-saved scratch
	R7  Register = 7 // callee-saved scratch
	R8  Register = 8 // callee-saved scratch
	R9  Register = 9 // callee-saved scratch
	R10 Register = 10 // read-only frame pointer
)

// Instruction classes occupy the low 3 bits of the opcode byte.
const (
	classLD    = 0x00
	classLDX   = 0x01
	classST    = 0x02
	classSTX   = 0x03
	classALU   = 0x04
	classJMP   = 0x05
	classALU64 = 0x07
)

// Load/store size modifiers occupy bits 3-4.
const (
	sizeW  = 0x00 // 32-bit word
	sizeH  = 0x08 // 16-bit half-word
	sizeB  = 0x10 // 8-bit byte
	sizeDW = 0x18 // 64-bit double-word
)

// Addressing modes occupy bits 5-7 of a load/store opcode.
const (
	modeIMM = 0x00
	modeMEM = 0x60
)

// ALU/ALU64 operations occupy bits 4-7; the source bit (0x08) selects
// immediate (K, bit clear) vs. register (X, bit set) operands.
const (
	aluADD  = 0x00
	aluSUB  = 0x10
	aluMUL  = 0x20
	aluDIV  = 0x30
	aluOR   = 0x40
	aluAND  = 0x50
	aluLSH  = 0x60
	aluRSH  = 0x70
	aluNEG  = 0x80
	aluMOD  = 0x90
	aluXOR  = 0xa0
	aluMOV  = 0xb0
	aluARSH = 0xc0

	srcK = 0x00
	srcX = 0x08
)

// Jump operations occupy bits 4-7 of a JMP-class opcode.
const (
	jmpJA   = 0x00
	jmpJEQ  = 0x10
	jmpJGT  = 0x20
	jmpJGE  = 0x30
	jmpJSET = 0x40
	jmpJNE  = 0x50
	jmpJSGT = 0x60
	jmpJSGE = 0x70
	jmpCALL = 0x80
	jmpEXIT = 0x90
	jmpJLT  = 0xa0
	jmpJLE  = 0xb0
	jmpJSLT = 0xc0
	jmpJSLE = 0xd0
)

// AluOp names an arithmetic/logic/move operation, independent of operand
// source or register width, for use by codegen's expression lowering.
type AluOp int

const (
	Add AluOp = iota
	Sub
	Mul
	Div
	Or
	And
	Lsh
	Rsh
	Neg
	Mod
	Xor
	Mov
	Arsh
)

var aluEncoding = map[AluOp]uint8{
	Add: aluADD, Sub: aluSUB, Mul: aluMUL, Div: aluDIV,
	Or: aluOR, And: aluAND, Lsh: aluLSH, Rsh: aluRSH,
	Neg: aluNEG, Mod: aluMOD, Xor: aluXOR, Mov: aluMOV, Arsh: aluARSH,
}

// CondOp names a comparison used by a conditional jump.
type CondOp int

const (
	JEQ CondOp = iota
	JNE
	JGT
	JGE
	JLT
	JLE
	JSGT
	JSGE
	JSLT
	JSLE
	JSET
)

var jmpEncoding = map[CondOp]uint8{
	JEQ: jmpJEQ, JNE: jmpJNE, JGT: jmpJGT, JGE: jmpJGE, JLT: jmpJLT, JLE: jmpJLE,
	JSGT: jmpJSGT, JSGE: jmpJSGE, JSLT: jmpJSLT, JSLE: jmpJSLE, JSET: jmpJSET,
}

// Size names a memory access width for load/store instructions.
type Size int

const (
	Byte Size = iota
	Half
	Word
	DWord
)

var sizeEncoding = map[Size]uint8{Byte: sizeB, Half: sizeH, Word: sizeW, DWord: sizeDW}

// Instruction is one fixed-width eight-byte instruction: opcode, packed
// 4-bit dst/src register fields, a 16-bit signed offset, and a 32-bit
// signed immediate (spec.md §4.5).
type Instruction struct {
	Op  uint8
	Dst Register
	Src Register
	Off int16
	Imm int32
}

// ALU64Reg builds `dst op= src` over the full 64-bit register width.
func ALU64Reg(op AluOp, dst, src Register) Instruction {
	return Instruction{Op: classALU64 | aluEncoding[op] | srcX, Dst: dst, Src: src}
}

// ALU64Imm builds `dst op= imm` over the full 64-bit register width.
func ALU64Imm(op AluOp, dst Register, imm int32) Instruction {
	return Instruction{Op: classALU64 | aluEncoding[op] | srcK, Dst: dst, Imm: imm}
}

// ALU32Reg builds a 32-bit-width `dst op= src`.
func ALU32Reg(op AluOp, dst, src Register) Instruction {
	return Instruction{Op: classALU | aluEncoding[op] | srcX, Dst: dst, Src: src}
}

// ALU32Imm builds a 32-bit-width `dst op= imm`.
func ALU32Imm(op AluOp, dst Register, imm int32) Instruction {
	return Instruction{Op: classALU | aluEncoding[op] | srcK, Dst: dst, Imm: imm}
}

// MovImm64 materializes an arbitrary 64-bit immediate into dst using the
// mov/lsh/or shift sequence of spec.md §4.4 (16 bits at a time, most
// significant chunk first) rather than the two-instruction lddw form,
// matching the target model's documented preference for a single-slot,
// relocation-free encoding.
//
// Each chunk is built top-down: mov seeds the highest 16 bits, then every
// following chunk shifts the accumulator left 16 and ORs the next chunk in.
// The shift must run even when a middle chunk is zero, since it still has
// to make room for the chunks below it; only the OR for a zero chunk can
// be skipped. Every immediate here is a zero-extended uint16, so interp.go's
// sign-extension of the Imm field (`int64(ins.Imm)`) never corrupts bits
// above the chunk being ORed in.
func MovImm64(dst Register, imm uint64) []Instruction {
	out := []Instruction{
		ALU64Imm(Mov, dst, int32(uint16(imm>>48))),
	}
	for _, shift := range [3]uint{32, 16, 0} {
		out = append(out, ALU64Imm(Lsh, dst, 16))
		if chunk := uint16(imm >> shift); chunk != 0 {
			out = append(out, ALU64Imm(Or, dst, int32(chunk)))
		}
	}
	return out
}

// LoadMem builds `dst = *(size *)(src + off)`.
func LoadMem(size Size, dst, src Register, off int16) Instruction {
	return Instruction{Op: classLDX | modeMEM | sizeEncoding[size], Dst: dst, Src: src, Off: off}
}

// StoreReg builds `*(size *)(dst + off) = src`.
func StoreReg(size Size, dst Register, off int16, src Register) Instruction {
	return Instruction{Op: classSTX | modeMEM | sizeEncoding[size], Dst: dst, Src: src, Off: off}
}

// StoreImm builds `*(size *)(dst + off) = imm`.
func StoreImm(size Size, dst Register, off int16, imm int32) Instruction {
	return Instruction{Op: classST | modeMEM | sizeEncoding[size], Dst: dst, Imm: imm, Off: off}
}

// JumpAlways builds an unconditional jump of off instructions relative to
// the one following it.
func JumpAlways(off int16) Instruction {
	return Instruction{Op: classJMP | jmpJA, Off: off}
}

// JumpCondReg builds a conditional jump comparing dst against a register.
func JumpCondReg(cond CondOp, dst, src Register, off int16) Instruction {
	return Instruction{Op: classJMP | jmpEncoding[cond] | srcX, Dst: dst, Src: src, Off: off}
}

// JumpCondImm builds a conditional jump comparing dst against an immediate.
func JumpCondImm(cond CondOp, dst Register, imm int32, off int16) Instruction {
	return Instruction{Op: classJMP | jmpEncoding[cond] | srcK, Dst: dst, Imm: imm, Off: off}
}

// Call builds a helper call by numeric id.
func Call(id int32) Instruction {
	return Instruction{Op: classJMP | jmpCALL, Imm: id}
}

// Exit builds the function epilogue: return R0 to the caller.
func Exit() Instruction {
	return Instruction{Op: classJMP | jmpEXIT}
}
