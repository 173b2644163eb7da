package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wordbook/internal/cli"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "libs":
		cmd = cli.NewLibsCommand()
	case "create":
		cmd = cli.NewCreateCommand()
	case "select":
		cmd = cli.NewSelectCommand()
	case "add":
		cmd = cli.NewAddCommand()
	case "lookup":
		cmd = cli.NewLookupCommand()
	case "remove":
		cmd = cli.NewRemoveCommand()
	case "import":
		cmd = cli.NewImportCommand()
	case "export":
		cmd = cli.NewExportCommand()
	case "version":
		fmt.Printf("wordbook %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  libs      List word libraries\n")
	fmt.Fprintf(os.Stderr, "  create    Create a word library\n")
	fmt.Fprintf(os.Stderr, "  select    Make a library the current one\n")
	fmt.Fprintf(os.Stderr, "  add       Add or replace a word\n")
	fmt.Fprintf(os.Stderr, "  lookup    Print the definition of a word\n")
	fmt.Fprintf(os.Stderr, "  remove    Remove a word\n")
	fmt.Fprintf(os.Stderr, "  import    Replace a library with a library file\n")
	fmt.Fprintf(os.Stderr, "  export    Write a library in serialized form\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
