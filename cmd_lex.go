package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"holybpf/session"
)

type lexCmd struct{}

func (*lexCmd) Name() string     { return "lex" }
func (*lexCmd) Synopsis() string { return "Dump the token stream for a source file" }
func (*lexCmd) Usage() string {
	return `lex <file>:
  Print one token per line.
`
}

func (*lexCmd) SetFlags(f *flag.FlagSet) {}

func (*lexCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	lines, err := session.New(string(data)).TokenDump()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(strings.Join(lines, "\n"))
	return subcommands.ExitSuccess
}
