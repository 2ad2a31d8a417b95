package bpf

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Testable property 4: encode then decode is the identity.
	cases := []Instruction{
		ALU64Imm(Add, R1, 5),
		ALU64Reg(Xor, R2, R3),
		LoadMem(DWord, R1, R10, -8),
		StoreImm(Word, R10, -16, 42),
		JumpCondReg(JGT, R1, R2, 7),
		Call(1),
		Exit(),
	}
	for _, want := range cases {
		enc := Encode(want)
		got := Decode(enc)
		if got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestEncodeProgramWidth(t *testing.T) {
	prog := []Instruction{ALU64Imm(Mov, R0, 0), Exit()}
	raw := EncodeProgram(prog)
	if len(raw) != len(prog)*Width {
		t.Fatalf("expected %d bytes, got %d", len(prog)*Width, len(raw))
	}
	back := DecodeProgram(raw)
	if len(back) != len(prog) {
		t.Fatalf("expected %d decoded instructions, got %d", len(prog), len(back))
	}
}

func TestDisassembleKnownAndFallback(t *testing.T) {
	lines := Disassemble([]Instruction{ALU64Imm(Add, R1, 5), Exit(), {Op: 0xff}})
	if lines[0] != "0000: add64 r1, 5" {
		t.Fatalf("unexpected mnemonic line: %q", lines[0])
	}
	if lines[1] != "0008: exit" {
		t.Fatalf("unexpected exit line: %q", lines[1])
	}
	if lines[2][:5] != "0010:" || lines[2][6:11] != ".byte" {
		t.Fatalf("expected a .byte fallback, got %q", lines[2])
	}
}

func TestInterpAdd(t *testing.T) {
	prog := []Instruction{
		ALU64Imm(Mov, R0, 2),
		ALU64Imm(Add, R0, 40),
		Exit(),
	}
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestInterpXor(t *testing.T) {
	prog := []Instruction{
		ALU64Imm(Mov, R0, 0b1010),
		ALU64Imm(Xor, R0, 0b0110),
		Exit(),
	}
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 0b1100 {
		t.Fatalf("expected 0b1100, got %b", got)
	}
}

func TestInterpBigImmediate(t *testing.T) {
	const want uint64 = 0x6e9de2b30b19f9ea
	prog := append(MovImm64(R0, want), Exit())
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %#x, got %#x", want, got)
	}
}

func TestInterpBranchMax(t *testing.T) {
	// max(a, b): if a > b { r0 = a } else { r0 = b }, then exit.
	prog := []Instruction{
		ALU64Imm(Mov, R1, 7),
		ALU64Imm(Mov, R2, 19),
		JumpCondReg(JGT, R1, R2, 2), // if r1 > r2, skip the "r0 = r2" branch
		ALU64Reg(Mov, R0, R2),
		JumpAlways(1),
		ALU64Reg(Mov, R0, R1),
		Exit(),
	}
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 19 {
		t.Fatalf("expected 19, got %d", got)
	}
}

func TestInterpTriangularSumLoop(t *testing.T) {
	// sum = 0; for (i = 1; i <= 5; i++) sum += i; return sum; (= 15)
	prog := []Instruction{
		ALU64Imm(Mov, R0, 0),
		ALU64Imm(Mov, R1, 1),
		JumpCondImm(JGT, R1, 5, 3), // 2: loop head
		ALU64Reg(Add, R0, R1),
		ALU64Imm(Add, R1, 1),
		JumpAlways(-4), // back to loop head
		Exit(),
	}
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestInterpHelperCall(t *testing.T) {
	prog := []Instruction{
		ALU64Imm(Mov, R1, 3),
		ALU64Imm(Mov, R2, 4),
		Call(100),
		Exit(),
	}
	it := NewInterp()
	it.Helpers = map[int32]func(args [5]uint64) uint64{
		100: func(args [5]uint64) uint64 { return args[0] + args[1] },
	}
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestInterpStackStore(t *testing.T) {
	prog := []Instruction{
		StoreImm(DWord, R10, -8, 99),
		LoadMem(DWord, R0, R10, -8),
		Exit(),
	}
	it := NewInterp()
	got, err := it.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got != 99 {
		t.Fatalf("expected 99, got %d", got)
	}
}
