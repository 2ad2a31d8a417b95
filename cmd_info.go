package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"holybpf/bpf"
)

type infoCmd struct{}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "Print facts about the target instruction model" }
func (*infoCmd) Usage() string {
	return `info:
  Print register and encoding facts about the compilation target.
`
}

func (*infoCmd) SetFlags(f *flag.FlagSet) {}

func (*infoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("instruction width: %d bytes\n", bpf.Width)
	fmt.Println("registers:")
	fmt.Println("  R0       return value")
	fmt.Println("  R1 - R5  call arguments")
	fmt.Println("  R6 - R9  callee-saved scratch")
	fmt.Println("  R10      read-only frame pointer")
	fmt.Println("encoding: opcode(1) | dst:4 src:4 (1) | offset:2 LE | immediate:4 LE")
	return subcommands.ExitSuccess
}
