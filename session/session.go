// Package session orchestrates one compilation unit end to end: lex, parse,
// generate code, and optionally render diagnostics or a disassembly
// listing. It exists so the CLI driver has one small surface to call
// instead of wiring the lexer, parser, and codegen packages together
// itself (spec.md §5's external-interface boundary).
package session

import (
	"encoding/json"
	"fmt"

	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/codegen"
	"holybpf/lexer"
	"holybpf/parser"
	"holybpf/token"
)

// Session holds the state of one source buffer as it moves through the
// pipeline; each stage's output is kept so callers can inspect intermediate
// results (tokens, AST) without recomputing them.
type Session struct {
	Source string
	Tokens []token.Token
	File   *ast.File
	Result *codegen.Result
}

// New creates a Session over raw source text.
func New(source string) *Session {
	return &Session{Source: source}
}

// Lex runs the lexer stage, caching the token stream.
func (s *Session) Lex() ([]token.Token, error) {
	if s.Tokens != nil {
		return s.Tokens, nil
	}
	toks, err := lexer.New(s.Source).Scan()
	if err != nil {
		return nil, err
	}
	s.Tokens = toks
	return toks, nil
}

// Parse runs the lexer (if not already run) and the parser, caching the
// resulting AST.
func (s *Session) Parse() (*ast.File, error) {
	if s.Tokens == nil {
		if _, err := s.Lex(); err != nil {
			return nil, err
		}
	}
	file, err := parser.Make(s.Tokens).Parse()
	if err != nil {
		return nil, err
	}
	s.File = file
	return file, nil
}

// Compile runs every stage through code generation, caching the result.
func (s *Session) Compile() (*codegen.Result, error) {
	if s.File == nil {
		if _, err := s.Parse(); err != nil {
			return nil, err
		}
	}
	result, err := codegen.Compile(s.File)
	if err != nil {
		return nil, err
	}
	s.Result = result
	return result, nil
}

// Bytes returns the raw loadable instruction stream for a compiled session
// (spec.md §5's Open Question resolution: no ELF wrapper, just the stream).
func (s *Session) Bytes() ([]byte, error) {
	if s.Result == nil {
		if _, err := s.Compile(); err != nil {
			return nil, err
		}
	}
	return bpf.EncodeProgram(s.Result.Instructions), nil
}

// Disassembly renders the compiled program as one mnemonic line per
// instruction.
func (s *Session) Disassembly() ([]string, error) {
	if s.Result == nil {
		if _, err := s.Compile(); err != nil {
			return nil, err
		}
	}
	return bpf.Disassemble(s.Result.Instructions), nil
}

// TokenDump renders the lexed token stream, one token per line.
func (s *Session) TokenDump() ([]string, error) {
	if s.Tokens == nil {
		if _, err := s.Lex(); err != nil {
			return nil, err
		}
	}
	lines := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		lines[i] = t.String()
	}
	return lines, nil
}

// ASTDump renders the parsed AST as indented JSON for inspection.
func (s *Session) ASTDump() (string, error) {
	if s.File == nil {
		if _, err := s.Parse(); err != nil {
			return "", err
		}
	}
	b, err := json.MarshalIndent(s.File, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal AST: %w", err)
	}
	return string(b), nil
}
