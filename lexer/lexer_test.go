package lexer

import (
	"testing"

	"holybpf/token"
)

func typesOf(tokens []token.Token) []token.Type {
	types := make([]token.Type, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func assertTypes(t *testing.T, got []token.Type, want []token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanOperators(t *testing.T) {
	lex := New("== != <= >= << >>= && || ++ --")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	assertTypes(t, typesOf(tokens), []token.Type{
		token.EQ, token.NE, token.LE, token.GE,
		token.SHL, token.SHR_ASSIGN, token.ANDAND, token.OROR,
		token.INC, token.DEC, token.EOF,
	})
}

func TestScanKeywordsAndTypes(t *testing.T) {
	lex := New("U64 Bool class if else while for return break continue TRUE FALSE")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	assertTypes(t, typesOf(tokens), []token.Type{
		token.U64, token.BOOL, token.CLASS, token.IF, token.ELSE,
		token.WHILE, token.FOR, token.RETURN, token.BREAK, token.CONTINUE,
		token.TRUE, token.FALSE, token.EOF,
	})
}

func TestScanIntegerLiterals(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		value uint64
		radix int
	}{
		{"decimal", "12345", 12345, 10},
		{"hex", "0xFF", 0xFF, 16},
		{"binary", "0b1010", 0b1010, 2},
		{"big hex", "0x6e9de2b30b19f9ea", 0x6e9de2b30b19f9ea, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := New(tt.src)
			tokens, err := lex.Scan()
			if err != nil {
				t.Fatalf("Scan() error: %v", err)
			}
			if len(tokens) != 2 {
				t.Fatalf("expected INT + EOF, got %v", tokens)
			}
			if tokens[0].Type != token.INT {
				t.Fatalf("expected INT, got %v", tokens[0].Type)
			}
			if tokens[0].Int != tt.value {
				t.Errorf("value = %d, want %d", tokens[0].Int, tt.value)
			}
			if tokens[0].Radix != tt.radix {
				t.Errorf("radix = %d, want %d", tokens[0].Radix, tt.radix)
			}
		})
	}
}

func TestScanIntegerOverflowIsError(t *testing.T) {
	lex := New("0xFFFFFFFFFFFFFFFFFF")
	if _, err := lex.Scan(); err == nil {
		t.Fatal("expected overflow error, got nil")
	}
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	lex := New(`"hi\n\t\x41"`)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if string(tokens[0].Str) != "hi\n\tA" {
		t.Errorf("decoded string = %q, want %q", tokens[0].Str, "hi\n\tA")
	}
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	lex := New(`"unterminated`)
	if _, err := lex.Scan(); err == nil {
		t.Fatal("expected unterminated-string error, got nil")
	}
}

func TestScanCharLiteral(t *testing.T) {
	lex := New(`'\n'`)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if tokens[0].Type != token.CHAR || tokens[0].Str[0] != '\n' {
		t.Errorf("got %v, want CHAR('\\n')", tokens[0])
	}
}

func TestScanComments(t *testing.T) {
	lex := New("U64 /* comment \n spanning lines */ a; // trailing\n")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	assertTypes(t, typesOf(tokens), []token.Type{token.U64, token.IDENT, token.SEMICOLON, token.EOF})
}

func TestScanPreprocessorDefine(t *testing.T) {
	lex := New("#define FOO 42\nU64 x;")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if tokens[0].Type != token.PP_DEFINE {
		t.Fatalf("expected PP_DEFINE, got %v", tokens[0].Type)
	}
	if tokens[0].PP.Name != "FOO" || tokens[0].PP.Value != "42" {
		t.Errorf("preprocessor payload = %+v", tokens[0].PP)
	}
}

func TestScanIllegalCharacterIsError(t *testing.T) {
	lex := New("U64 x = @;")
	if _, err := lex.Scan(); err == nil {
		t.Fatal("expected illegal-char error, got nil")
	}
}

func TestScanDeterminism(t *testing.T) {
	src := "U64 add(U64 a, U64 b){ return a + b; }"
	a, err := New(src).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	b, err := New(src).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	assertTypes(t, typesOf(a), typesOf(b))
}
