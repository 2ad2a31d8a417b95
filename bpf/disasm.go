package bpf

import "fmt"

var aluMnemonic = map[uint8]string{
	aluADD: "add", aluSUB: "sub", aluMUL: "mul", aluDIV: "div",
	aluOR: "or", aluAND: "and", aluLSH: "lsh", aluRSH: "rsh",
	aluNEG: "neg", aluMOD: "mod", aluXOR: "xor", aluMOV: "mov", aluARSH: "arsh",
}

var jmpMnemonic = map[uint8]string{
	jmpJEQ: "jeq", jmpJGT: "jgt", jmpJGE: "jge", jmpJSET: "jset", jmpJNE: "jne",
	jmpJSGT: "jsgt", jmpJSGE: "jsge", jmpJLT: "jlt", jmpJLE: "jle",
	jmpJSLT: "jslt", jmpJSLE: "jsle",
}

var sizeMnemonic = map[uint8]string{sizeB: "b", sizeH: "h", sizeW: "w", sizeDW: "dw"}

func regName(r Register) string { return fmt.Sprintf("r%d", r) }

// disassembleOne renders a single instruction as a mnemonic line, falling
// back to a raw `.byte` directive for any opcode byte this package does not
// recognize.
func disassembleOne(i Instruction) string {
	class := i.Op & 0x07
	switch class {
	case classALU64, classALU:
		suffix := "64"
		if class == classALU {
			suffix = "32"
		}
		op := i.Op &^ 0x0f
		name, ok := aluMnemonic[op]
		if !ok {
			return byteFallback(i)
		}
		if i.Op&srcX != 0 {
			return fmt.Sprintf("%s%s %s, %s", name, suffix, regName(i.Dst), regName(i.Src))
		}
		return fmt.Sprintf("%s%s %s, %d", name, suffix, regName(i.Dst), i.Imm)
	case classLDX:
		sz, ok := sizeMnemonic[i.Op&0x18]
		if !ok {
			return byteFallback(i)
		}
		return fmt.Sprintf("ldx%s %s, [%s%+d]", sz, regName(i.Dst), regName(i.Src), i.Off)
	case classST:
		sz, ok := sizeMnemonic[i.Op&0x18]
		if !ok {
			return byteFallback(i)
		}
		return fmt.Sprintf("st%s [%s%+d], %d", sz, regName(i.Dst), i.Off, i.Imm)
	case classSTX:
		sz, ok := sizeMnemonic[i.Op&0x18]
		if !ok {
			return byteFallback(i)
		}
		return fmt.Sprintf("stx%s [%s%+d], %s", sz, regName(i.Dst), i.Off, regName(i.Src))
	case classJMP:
		op := i.Op &^ 0x0f
		switch op &^ srcX {
		case jmpJA:
			return fmt.Sprintf("ja %+d", i.Off)
		case jmpCALL:
			return fmt.Sprintf("call %d", i.Imm)
		case jmpEXIT:
			return "exit"
		default:
			name, ok := jmpMnemonic[op&^srcX]
			if !ok {
				return byteFallback(i)
			}
			if i.Op&srcX != 0 {
				return fmt.Sprintf("%s %s, %s, %+d", name, regName(i.Dst), regName(i.Src), i.Off)
			}
			return fmt.Sprintf("%s %s, %d, %+d", name, regName(i.Dst), i.Imm, i.Off)
		}
	default:
		return byteFallback(i)
	}
}

func byteFallback(i Instruction) string {
	enc := Encode(i)
	return fmt.Sprintf(".byte 0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x",
		enc[0], enc[1], enc[2], enc[3], enc[4], enc[5], enc[6], enc[7])
}

// Disassemble renders a whole program as one line per instruction, labeled
// with the instruction's byte offset in hex (spec.md §4.5's "HHHH: mnemonic
// operands" listing format).
func Disassemble(prog []Instruction) []string {
	lines := make([]string, len(prog))
	for idx, ins := range prog {
		lines[idx] = fmt.Sprintf("%04x: %s", idx*Width, disassembleOne(ins))
	}
	return lines
}
