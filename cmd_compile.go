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

type compileCmd struct {
	asmOut  string
	outPath string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a source file to a loadable eBPF instruction stream" }
func (*compileCmd) Usage() string {
	return `compile [-o out.bin] [-asm out.asm] <file>:
  Lex, parse, and generate code for a source file, writing the raw
  8-byte-per-instruction stream to -o (default: <file>.bin).
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.outPath, "o", "", "output path for the raw instruction stream (default: <file>.bin)")
	f.StringVar(&cmd.asmOut, "asm", "", "also write a disassembly listing to this path")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	srcPath := args[0]

	data, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	sess := session.New(string(data))
	raw, err := sess.Bytes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err)
		return subcommands.ExitFailure
	}

	outPath := cmd.outPath
	if outPath == "" {
		outPath = trimExt(srcPath) + ".bin"
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write %s: %v\n", outPath, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %d bytes (%d instructions) to %s\n", len(raw), len(raw)/8, outPath)

	if cmd.asmOut != "" {
		lines, err := sess.Disassembly()
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(cmd.asmOut, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to write %s: %v\n", cmd.asmOut, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("wrote disassembly to %s\n", cmd.asmOut)
	}

	return subcommands.ExitSuccess
}

func trimExt(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}
