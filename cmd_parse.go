package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"holybpf/session"
)

type parseCmd struct{}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "Dump the parsed AST for a source file as JSON" }
func (*parseCmd) Usage() string {
	return `parse <file>:
  Print the AST as indented JSON.
`
}

func (*parseCmd) SetFlags(f *flag.FlagSet) {}

func (*parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out, err := session.New(string(data)).ASTDump()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Parsing error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}
