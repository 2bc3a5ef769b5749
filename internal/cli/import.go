package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/mrlokans/wordbook/internal/api"
)

var ErrImportAborted = errors.New("import aborted")

// ImportCommand replaces everything on the backend with a backup archive.
type ImportCommand struct {
	backend  backendFlags
	FilePath string
	Yes      bool
	In       io.Reader
	Out      io.Writer
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cmd.backend.register(fs)
	fs.StringVar(&cmd.FilePath, "file", "", "Backup archive to import (required)")
	fs.BoolVar(&cmd.Yes, "yes", false, "Do not ask for confirmation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <archive> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace ALL notebooks and words on the backend with a backup archive.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	out := orStdout(cmd.Out)

	f, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cmd.FilePath, err)
	}
	defer f.Close()

	if !cmd.Yes && !confirm(orStdin(cmd.In), out, "This replaces every notebook on "+cmd.backend.BaseURL+". Continue?") {
		return ErrImportAborted
	}

	ctx, cancel := signalContext()
	defer cancel()

	contentType := mime.TypeByExtension(filepath.Ext(cmd.FilePath))
	err = cmd.backend.client().ImportAll(ctx, api.Upload{
		Filename:    filepath.Base(cmd.FilePath),
		ContentType: contentType,
		Body:        f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Import complete")
	return nil
}
