package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"holybpf/session"
)

// replCmd implements an interactive REPL command: each line is lexed,
// parsed, and compiled on its own, with the disassembly printed back so a
// user can explore the code generator one statement at a time.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive lex/parse/disassemble session" }
func (*replCmd) Usage() string {
	return `repl:
  Read a line, compile it as a standalone function body wrapped in
  "I64 _repl() { ... }", and print its disassembly. Type .tokens or .ast
  to dump the previous line's token stream or AST instead. Type exit or
  press Ctrl-D to leave.
`
}

func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("holybpf> ")
	if err != nil {
		fmt.Printf("💥 Failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var lastSrc string
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit":
			return subcommands.ExitSuccess
		case line == ".tokens":
			dumpTokens(lastSrc)
			continue
		case line == ".ast":
			dumpAST(lastSrc)
			continue
		}

		src := "I64 _repl() { " + line + " }"
		lastSrc = src
		sess := session.New(src)
		lines, err := sess.Disassembly()
		if err != nil {
			fmt.Printf("💥 %s\n", err)
			continue
		}
		fmt.Println(strings.Join(lines, "\n"))
	}
	return subcommands.ExitSuccess
}

func dumpTokens(src string) {
	if src == "" {
		fmt.Println("💥 nothing compiled yet")
		return
	}
	lines, err := session.New(src).TokenDump()
	if err != nil {
		fmt.Printf("💥 %s\n", err)
		return
	}
	fmt.Println(strings.Join(lines, "\n"))
}

func dumpAST(src string) {
	if src == "" {
		fmt.Println("💥 nothing compiled yet")
		return
	}
	out, err := session.New(src).ASTDump()
	if err != nil {
		fmt.Printf("💥 %s\n", err)
		return
	}
	fmt.Println(out)
}
