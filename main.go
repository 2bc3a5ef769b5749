package main

import (
	"errors"
	"flag"
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

func runCommand(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "notebooks":
		runCommand(cli.NewNotebooksCommand(), args)

	case "add":
		runCommand(cli.NewAddCommand(), args)

	case "export":
		runCommand(cli.NewExportCommand(), args)

	case "import":
		runCommand(cli.NewImportCommand(), args)

	case "hash-password":
		runCommand(cli.NewHashPasswordCommand(), args)

	case "version":
		fmt.Printf("wordbook %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve          Start the web UI (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  notebooks      List notebooks, or the words of one notebook\n")
	fmt.Fprintf(os.Stderr, "  add            Translate a word and add it to a notebook\n")
	fmt.Fprintf(os.Stderr, "  export         Download a notebook spreadsheet or a full backup\n")
	fmt.Fprintf(os.Stderr, "  import         Replace all backend data with a backup archive\n")
	fmt.Fprintf(os.Stderr, "  hash-password  Print a bcrypt hash for AUTH_PASSWORD_HASH\n")
	fmt.Fprintf(os.Stderr, "  version        Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
