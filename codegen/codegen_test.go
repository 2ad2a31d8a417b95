package codegen

import (
	"testing"

	"holybpf/bpf"
	"holybpf/lexer"
	"holybpf/parser"
)

func compileSrc(t *testing.T, src string) *Result {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	file, err := parser.Make(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	result, err := Compile(file)
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return result
}

func runFunc(t *testing.T, result *Result, name string, args ...uint64) uint64 {
	t.Helper()
	start, ok := result.FuncOffsets[name]
	if !ok {
		t.Fatalf("no such function %q", name)
	}
	it := bpf.NewInterp()
	for i, a := range args {
		it.Regs[bpf.R1+bpf.Register(i)] = a
	}
	got, err := it.Run(result.Instructions[start:])
	if err != nil {
		t.Fatalf("interp error: %v", err)
	}
	return got
}

func TestCodegenAdd(t *testing.T) {
	result := compileSrc(t, "I64 add(I64 a, I64 b) { return a + b; }")
	if got := runFunc(t, result, "add", 19, 23); got != 42 {
		t.Fatalf("add(19,23) = %d, want 42", got)
	}
}

func TestCodegenXor(t *testing.T) {
	result := compileSrc(t, "I64 f(I64 a, I64 b) { return a ^ b; }")
	if got := runFunc(t, result, "f", 0b1010, 0b0110); got != 0b1100 {
		t.Fatalf("f = %b, want 0b1100", got)
	}
}

func TestCodegenBigImmediate(t *testing.T) {
	result := compileSrc(t, "U64 f() { return 0x6e9de2b30b19f9ea; }")
	if got := runFunc(t, result, "f"); got != 0x6e9de2b30b19f9ea {
		t.Fatalf("f() = %#x, want 0x6e9de2b30b19f9ea", got)
	}
}

func TestCodegenBranchMax(t *testing.T) {
	result := compileSrc(t, `
		I64 max(I64 a, I64 b) {
			if (a > b) {
				return a;
			}
			return b;
		}
	`)
	if got := runFunc(t, result, "max", 7, 19); got != 19 {
		t.Fatalf("max(7,19) = %d, want 19", got)
	}
	if got := runFunc(t, result, "max", 100, 3); got != 100 {
		t.Fatalf("max(100,3) = %d, want 100", got)
	}
}

func TestCodegenTriangularSumLoop(t *testing.T) {
	result := compileSrc(t, `
		I64 triangular(I64 n) {
			I64 sum = 0;
			I64 i = 1;
			while (i <= n) {
				sum += i;
				i++;
			}
			return sum;
		}
	`)
	if got := runFunc(t, result, "triangular", 5); got != 15 {
		t.Fatalf("triangular(5) = %d, want 15", got)
	}
}

func TestCodegenForLoopWithBreakAndContinue(t *testing.T) {
	result := compileSrc(t, `
		I64 sumEven(I64 n) {
			I64 sum = 0;
			I64 i = 0;
			for (i = 0; i < n; i++) {
				if (i % 2 != 0) {
					continue;
				}
				if (i > 10) {
					break;
				}
				sum += i;
			}
			return sum;
		}
	`)
	// evens up to and including 10: 0+2+4+6+8+10 = 30; breaks before 12.
	if got := runFunc(t, result, "sumEven", 20); got != 30 {
		t.Fatalf("sumEven(20) = %d, want 30", got)
	}
}

func TestCodegenSixParamsRejected(t *testing.T) {
	toks, err := lexer.New("I64 f(I64 a, I64 b, I64 c, I64 d, I64 e, I64 g) { return 0; }").Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := parser.Make(toks).Parse(); err == nil {
		t.Fatal("expected the parser to reject a 6-parameter function before codegen ever runs")
	}
}

func TestCodegenStackSlotsAreDisjoint(t *testing.T) {
	// Each declared local must land on its own stack slot (testable
	// property 7): three locals read back independently after being
	// written in an order that would alias if slots collided.
	result := compileSrc(t, `
		I64 f() {
			I64 a = 1;
			I64 b = 2;
			I64 c = 3;
			return a * 100 + b * 10 + c;
		}
	`)
	if got := runFunc(t, result, "f"); got != 123 {
		t.Fatalf("f() = %d, want 123 (slots must not alias)", got)
	}
}

func TestCodegenLogicalAnd(t *testing.T) {
	result := compileSrc(t, "Bool f(Bool a, Bool b) { return a && b; }")
	if got := runFunc(t, result, "f", 1, 1); got != 1 {
		t.Fatalf("f(1,1) = %d, want 1", got)
	}
	if got := runFunc(t, result, "f", 1, 0); got != 0 {
		t.Fatalf("f(1,0) = %d, want 0", got)
	}
	if got := runFunc(t, result, "f", 0, 1); got != 0 {
		t.Fatalf("f(0,1) = %d, want 0", got)
	}
}

func TestCodegenLogicalOr(t *testing.T) {
	result := compileSrc(t, "Bool f(Bool a, Bool b) { return a || b; }")
	if got := runFunc(t, result, "f", 0, 0); got != 0 {
		t.Fatalf("f(0,0) = %d, want 0", got)
	}
	if got := runFunc(t, result, "f", 1, 0); got != 1 {
		t.Fatalf("f(1,0) = %d, want 1", got)
	}
	if got := runFunc(t, result, "f", 0, 1); got != 1 {
		t.Fatalf("f(0,1) = %d, want 1", got)
	}
}

func TestCodegenClassFieldAddressing(t *testing.T) {
	result := compileSrc(t, `
		class Pair { I64 a; I64 b; };
		I64 sumPair(Pair *p) {
			return p.a + p.b;
		}
	`)
	start := result.FuncOffsets["sumPair"]
	it := bpf.NewInterp()
	// lay out a Pair{a: 10, b: 32} on the interpreter's own stack and
	// pass its address in R1, mimicking a caller-provided pointer.
	it.Regs[bpf.R10] = uint64(len(it.Stack))
	base := it.Regs[bpf.R10] - 64
	it.Regs[bpf.R1] = base
	storeLE64(it, base, 10)
	storeLE64(it, base+8, 32)
	got, err := it.Run(result.Instructions[start:])
	if err != nil {
		t.Fatalf("interp error: %v", err)
	}
	if got != 42 {
		t.Fatalf("sumPair = %d, want 42", got)
	}
}

func storeLE64(it *bpf.Interp, addr, val uint64) {
	idx := len(it.Stack) - int(it.Regs[bpf.R10]-addr)
	for i := 0; i < 8; i++ {
		it.Stack[idx+i] = byte(val)
		val >>= 8
	}
}

func TestCodegenUnknownIdentifier(t *testing.T) {
	toks, err := lexer.New("I64 f() { return nope; }").Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	file, err := parser.Make(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Compile(file)
	if err == nil {
		t.Fatal("expected an unknown-identifier error")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != "codegen.unknown-identifier" {
		t.Fatalf("expected codegen.unknown-identifier, got %v", err)
	}
}

func TestCodegenTooManyCallArgsRejected(t *testing.T) {
	result := compileSrc(t, `
		I64 helper(I64 a, I64 b, I64 c, I64 d, I64 e) { return a; }
	`)
	if result == nil {
		t.Fatal("expected helper to compile")
	}
	toks, err := lexer.New(`
		I64 helper(I64 a, I64 b, I64 c, I64 d, I64 e) { return a; }
		I64 caller() { return helper(1, 2, 3, 4, 5, 6); }
	`).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	file, err := parser.Make(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Compile(file)
	if err == nil {
		t.Fatal("expected a too-many-arguments error")
	}
}
