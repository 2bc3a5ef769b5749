package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/config"
)

// HashPasswordCommand prints a bcrypt hash for AUTH_PASSWORD_HASH.
type HashPasswordCommand struct {
	Password string
	Cost     int
	In       io.Reader
	Out      io.Writer
}

func NewHashPasswordCommand() *HashPasswordCommand {
	return &HashPasswordCommand{}
}

func (cmd *HashPasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.StringVar(&cmd.Password, "password", "", "Password to hash (read from stdin when empty)")
	fs.IntVar(&cmd.Cost, "cost", config.NewConfig().Auth.BcryptCost, "bcrypt cost")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-password [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print a bcrypt hash to put in AUTH_PASSWORD_HASH.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  echo 'my secret password' | %s hash-password\n", os.Args[0])
	}
	return fs.Parse(args)
}

func (cmd *HashPasswordCommand) Run() error {
	password := cmd.Password
	if password == "" {
		line, err := bufio.NewReader(orStdin(cmd.In)).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password, cmd.Cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(orStdout(cmd.Out), hash)
	return nil
}
