package bpf

import "fmt"

// Interp is a minimal interpreter over the instruction subset this package
// emits. It exists only so this package's and codegen's tests can execute a
// compiled sequence end-to-end and check the result (spec.md testable
// property 6); it is not part of the compiler's own output path, which only
// ever produces a byte stream for an external loader to run.
type Interp struct {
	Regs  [11]uint64
	Stack [512]byte // addressed via R10 - offset, offset always negative
	Mem   map[uint64][]byte

	Helpers map[int32]func(args [5]uint64) uint64
}

// NewInterp returns an Interp with R10 set to point just past the stack
// buffer, matching the read-only frame-pointer convention of spec.md §3.
func NewInterp() *Interp {
	it := &Interp{Mem: map[uint64][]byte{}}
	it.Regs[R10] = uint64(len(it.Stack))
	return it
}

// stackSlice resolves an R10-relative address into the backing array,
// panicking (surfaced as a test failure) on an out-of-range access.
func (it *Interp) stackSlice(addr uint64, size int) []byte {
	base := it.Regs[R10]
	off := int64(addr) - int64(base)
	idx := len(it.Stack) + int(off)
	if idx < 0 || idx+size > len(it.Stack) {
		panic(fmt.Sprintf("stack access out of range: addr=%d size=%d", addr, size))
	}
	return it.Stack[idx : idx+size]
}

func loadLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func storeLE(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

func sizeBytes(op uint8) int {
	switch op & 0x18 {
	case sizeB:
		return 1
	case sizeH:
		return 2
	case sizeW:
		return 4
	default:
		return 8
	}
}

// Run executes prog from instruction 0 until an exit, returning R0. It
// halts with an error if it would run unboundedly (guards against a runaway
// test fixture, not a real execution limit).
func (it *Interp) Run(prog []Instruction) (uint64, error) {
	const maxSteps = 1_000_000
	pc := 0
	for step := 0; ; step++ {
		if step > maxSteps {
			return 0, fmt.Errorf("exceeded %d steps without exit", maxSteps)
		}
		if pc < 0 || pc >= len(prog) {
			return 0, fmt.Errorf("pc %d out of range", pc)
		}
		ins := prog[pc]
		class := ins.Op & 0x07

		switch class {
		case classALU64, classALU:
			src := it.Regs[ins.Src]
			if ins.Op&srcX == 0 {
				src = uint64(int64(ins.Imm))
			}
			dst := it.Regs[ins.Dst]
			result := alu(ins.Op&^0x0f, dst, src)
			if class == classALU {
				result &= 0xffffffff
			}
			it.Regs[ins.Dst] = result
			pc++
		case classLDX:
			addr := it.Regs[ins.Src] + uint64(int64(ins.Off))
			n := sizeBytes(ins.Op)
			it.Regs[ins.Dst] = loadLE(it.stackSlice(addr, n))
			pc++
		case classST:
			addr := it.Regs[ins.Dst] + uint64(int64(ins.Off))
			n := sizeBytes(ins.Op)
			storeLE(it.stackSlice(addr, n), uint64(int64(ins.Imm)))
			pc++
		case classSTX:
			addr := it.Regs[ins.Dst] + uint64(int64(ins.Off))
			n := sizeBytes(ins.Op)
			storeLE(it.stackSlice(addr, n), it.Regs[ins.Src])
			pc++
		case classJMP:
			op := ins.Op &^ 0x0f
			switch op &^ srcX {
			case jmpJA:
				pc += int(ins.Off) + 1
			case jmpEXIT:
				return it.Regs[R0], nil
			case jmpCALL:
				fn, ok := it.Helpers[ins.Imm]
				if !ok {
					return 0, fmt.Errorf("unknown helper id %d", ins.Imm)
				}
				it.Regs[R0] = fn([5]uint64{it.Regs[R1], it.Regs[R2], it.Regs[R3], it.Regs[R4], it.Regs[R5]})
				pc++
			default:
				src := it.Regs[ins.Src]
				if ins.Op&srcX == 0 {
					src = uint64(int64(ins.Imm))
				}
				if cond(op&^srcX, it.Regs[ins.Dst], src) {
					pc += int(ins.Off) + 1
				} else {
					pc++
				}
			}
		default:
			return 0, fmt.Errorf("unsupported opcode 0x%02x at pc %d", ins.Op, pc)
		}
	}
}

func alu(op uint8, dst, src uint64) uint64 {
	switch op {
	case aluADD:
		return dst + src
	case aluSUB:
		return dst - src
	case aluMUL:
		return dst * src
	case aluDIV:
		if src == 0 {
			return 0
		}
		return dst / src
	case aluOR:
		return dst | src
	case aluAND:
		return dst & src
	case aluLSH:
		return dst << (src & 63)
	case aluRSH:
		return dst >> (src & 63)
	case aluNEG:
		return -dst
	case aluMOD:
		if src == 0 {
			return dst
		}
		return dst % src
	case aluXOR:
		return dst ^ src
	case aluMOV:
		return src
	case aluARSH:
		return uint64(int64(dst) >> (src & 63))
	default:
		return dst
	}
}

func cond(op uint8, dst, src uint64) bool {
	switch op {
	case jmpJEQ:
		return dst == src
	case jmpJNE:
		return dst != src
	case jmpJGT:
		return dst > src
	case jmpJGE:
		return dst >= src
	case jmpJLT:
		return dst < src
	case jmpJLE:
		return dst <= src
	case jmpJSET:
		return dst&src != 0
	case jmpJSGT:
		return int64(dst) > int64(src)
	case jmpJSGE:
		return int64(dst) >= int64(src)
	case jmpJSLT:
		return int64(dst) < int64(src)
	case jmpJSLE:
		return int64(dst) <= int64(src)
	default:
		return false
	}
}
