package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/utils"
)

// ExportCommand downloads one notebook as a spreadsheet or the whole backend
// as an archive.
type ExportCommand struct {
	backend    backendFlags
	NotebookID int64
	OutputPath string
	OutputDir  string
	Out        io.Writer
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.backend.register(fs)
	fs.Int64Var(&cmd.NotebookID, "notebook", 0, "Notebook id to export as a spreadsheet (omit to export everything)")
	fs.StringVar(&cmd.OutputPath, "o", "", "Output file (defaults to the name the backend suggests)")
	fs.StringVar(&cmd.OutputDir, "dir", ".", "Directory for the default output file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download a notebook spreadsheet or a full backup archive.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -notebook 3\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -o backup.zip\n", os.Args[0])
	}
	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	ctx, cancel := signalContext()
	defer cancel()
	client := cmd.backend.client()
	out := orStdout(cmd.Out)

	var (
		dl  *api.Download
		err error
	)
	if cmd.NotebookID > 0 {
		dl, err = client.ExportNotebook(ctx, cmd.NotebookID)
	} else {
		dl, err = client.ExportAll(ctx)
	}
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	path := cmd.OutputPath
	if path == "" {
		path = filepath.Join(cmd.OutputDir, utils.SanitizeFilename(dl.Filename, api.DefaultBackupName))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := io.Copy(f, dl.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, n)
	return nil
}
