package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&lexCmd{}, "")
	subcommands.Register(&parseCmd{}, "")
	subcommands.Register(&infoCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
