package token

import "testing"

func TestTypeString(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"U64", U64, "U64"},
		{"Bool", BOOL, "Bool"},
		{"shl assign", SHL_ASSIGN, "<<="},
		{"class", CLASS, "class"},
		{"eof", EOF, "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("Type.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeywordsLookup(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Type
	}{
		{"U8", U8},
		{"class", CLASS},
		{"while", WHILE},
		{"TRUE", TRUE},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			got, ok := Keywords[tt.lexeme]
			if !ok {
				t.Fatalf("keyword %q not found", tt.lexeme)
			}
			if got != tt.want {
				t.Errorf("Keywords[%q] = %v, want %v", tt.lexeme, got, tt.want)
			}
		})
	}
}

func TestIsTypeKeyword(t *testing.T) {
	if !U64.IsTypeKeyword() {
		t.Error("U64 should be a type keyword")
	}
	if IF.IsTypeKeyword() {
		t.Error("IF should not be a type keyword")
	}
}
