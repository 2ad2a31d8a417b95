package parser

import (
	"testing"

	"holybpf/ast"
	"holybpf/lexer"
	"holybpf/token"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	file, err := Make(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return file
}

func TestParsePrecedenceNesting(t *testing.T) {
	// 1 + 2 * 3 should nest the multiplication under the addition's right
	// operand (testable property 3).
	file := mustParse(t, "I64 f() { return 1 + 2 * 3; }")
	fn := file.Items[0].(ast.FuncDecl)
	ret := fn.Body.Stmts[0].(ast.Return)
	add, ok := ret.Value.(ast.BinaryOp)
	if !ok || add.Op.String() != "+" {
		t.Fatalf("expected top-level +, got %#v", ret.Value)
	}
	mul, ok := add.Right.(ast.BinaryOp)
	if !ok || mul.Op.String() != "*" {
		t.Fatalf("expected nested *, got %#v", add.Right)
	}
}

func TestParseAssociativity(t *testing.T) {
	// 10 - 3 - 2 must be (10 - 3) - 2, not 10 - (3 - 2).
	file := mustParse(t, "I64 f() { return 10 - 3 - 2; }")
	fn := file.Items[0].(ast.FuncDecl)
	ret := fn.Body.Stmts[0].(ast.Return)
	outer := ret.Value.(ast.BinaryOp)
	if _, ok := outer.Left.(ast.BinaryOp); !ok {
		t.Fatalf("expected left-associative nesting, got %#v", outer.Left)
	}
	if _, ok := outer.Right.(ast.IntLiteral); !ok {
		t.Fatalf("expected plain literal on the right, got %#v", outer.Right)
	}
}

func TestParseSixParamsRejected(t *testing.T) {
	_, err := Make(mustLex(t, "I64 f(I64 a, I64 b, I64 c, I64 d, I64 e, I64 g) { return 0; }")).Parse()
	if err == nil {
		t.Fatal("expected an error for a 6-parameter function")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "parse.too-many-params" {
		t.Fatalf("expected parse.too-many-params, got %v", err)
	}
}

func TestParseFiveParamsAccepted(t *testing.T) {
	file := mustParse(t, "I64 f(I64 a, I64 b, I64 c, I64 d, I64 e) { return a; }")
	fn := file.Items[0].(ast.FuncDecl)
	if len(fn.Params) != 5 {
		t.Fatalf("expected 5 params, got %d", len(fn.Params))
	}
}

func TestParseBadLValueRejected(t *testing.T) {
	_, err := Make(mustLex(t, "I64 f() { 1 + 2 = 3; return 0; }")).Parse()
	if err == nil {
		t.Fatal("expected an error for an invalid assignment target")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "parse.bad-lvalue" {
		t.Fatalf("expected parse.bad-lvalue, got %v", err)
	}
}

func TestParseValidLValues(t *testing.T) {
	file := mustParse(t, `
		class Pair { I64 a; I64 b; };
		I64 f(Pair *p, I64 arr[]) {
			I64 x = 0;
			x = 1;
			*p.a = 2;
			arr[0] = 3;
			p.a = 4;
			return x;
		}
	`)
	fn := file.Items[1].(ast.FuncDecl)
	if len(fn.Body.Stmts) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(fn.Body.Stmts))
	}
}

func TestParseIntLiteralRoundTrip(t *testing.T) {
	// Testable property 2: literal value and radix survive parsing unchanged.
	cases := []struct {
		src   string
		value uint64
		radix int
	}{
		{"123", 123, 10},
		{"0x1F", 0x1F, 16},
		{"0b101", 0b101, 2},
		{"0x6e9de2b30b19f9ea", 0x6e9de2b30b19f9ea, 16},
	}
	for _, c := range cases {
		file := mustParse(t, "I64 f() { return "+c.src+"; }")
		fn := file.Items[0].(ast.FuncDecl)
		ret := fn.Body.Stmts[0].(ast.Return)
		lit, ok := ret.Value.(ast.IntLiteral)
		if !ok {
			t.Fatalf("%s: expected IntLiteral, got %#v", c.src, ret.Value)
		}
		if lit.Value != c.value || lit.Radix != c.radix {
			t.Fatalf("%s: got value=%d radix=%d, want value=%d radix=%d", c.src, lit.Value, lit.Radix, c.value, c.radix)
		}
	}
}

func TestParseClassDuplicateFieldRejected(t *testing.T) {
	_, err := Make(mustLex(t, "class Foo { I64 a; I64 a; };")).Parse()
	if err == nil {
		t.Fatal("expected an error for a duplicate field name")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "parse.duplicate-field" {
		t.Fatalf("expected parse.duplicate-field, got %v", err)
	}
}

func TestParseDefineFoldsConstant(t *testing.T) {
	file := mustParse(t, "#define SIZE 4 * 2\nI64 f() { I64 a[SIZE]; return 0; }")
	def := file.Items[0].(ast.DefineDecl)
	v, err := foldConstInt(def.Value)
	if err != nil {
		t.Fatalf("fold error: %v", err)
	}
	if v != 8 {
		t.Fatalf("expected SIZE to fold to 8, got %d", v)
	}
}

func TestParseIfElseBindsNearest(t *testing.T) {
	file := mustParse(t, `
		I64 f(I64 a, I64 b) {
			if (a) if (b) return 1; else return 2;
			return 0;
		}
	`)
	fn := file.Items[0].(ast.FuncDecl)
	outer := fn.Body.Stmts[0].(ast.If)
	inner, ok := outer.Then.(ast.If)
	if !ok {
		t.Fatalf("expected nested if, got %#v", outer.Then)
	}
	if inner.Else == nil {
		t.Fatal("expected else to bind to the nearest if")
	}
	if outer.Else != nil {
		t.Fatal("else must not bind to the outer if")
	}
}

func TestParseForClausesOptional(t *testing.T) {
	file := mustParse(t, "I64 f() { for (;;) { break; } return 0; }")
	fn := file.Items[0].(ast.FuncDecl)
	loop := fn.Body.Stmts[0].(ast.For)
	if loop.Init != nil || loop.Cond != nil || loop.Step != nil {
		t.Fatal("expected all three for-clauses to be nil when omitted")
	}
}

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	return toks
}
