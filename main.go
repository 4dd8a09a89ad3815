package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/sieve/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	if args.Query == nil && args.Browse == nil && args.Reset == nil && args.Session == nil && args.Config == nil {
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := cliHandler.Execute(&args); err != nil {
		cliHandler.Close()
		fmt.Printf("Error: %v\n", err)
		fmt.Println()
		parser.WriteUsage(os.Stderr)
		os.Exit(1)
	}
	if err := cliHandler.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
