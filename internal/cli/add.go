package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/notebooks"
	"github.com/mrlokans/wordbook/internal/wordentry"
)

// AddCommand runs the entry workflow once: search, then commit.
type AddCommand struct {
	backend     backendFlags
	NotebookID  int64
	Word        string
	Platform    string
	Translation string
	Note        string
	Verbose     bool
	Out         io.Writer
}

func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	cmd.backend.register(fs)
	fs.Int64Var(&cmd.NotebookID, "notebook", 0, "Notebook id to add the word to (required)")
	fs.StringVar(&cmd.Word, "word", "", "Word to look up and add (required)")
	fs.StringVar(&cmd.Platform, "platform", string(entities.PlatformYoudao), "Translation platform: youdao or bing")
	fs.StringVar(&cmd.Translation, "translation", "", "Use this translation instead of the platform's")
	fs.StringVar(&cmd.Note, "note", "", "Note to store with the word (replaces a note found by lookup)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log backend requests")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -notebook <id> -word <word> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Translate a word and add it to a notebook.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.NotebookID <= 0 {
		return fmt.Errorf("required flag -notebook not provided")
	}
	if cmd.Word == "" {
		return fmt.Errorf("required flag -word not provided")
	}
	if _, ok := entities.ParsePlatform(cmd.Platform); !ok {
		return fmt.Errorf("unknown platform %q", cmd.Platform)
	}
	return nil
}

func (cmd *AddCommand) Run() error {
	ctx, cancel := signalContext()
	defer cancel()
	out := orStdout(cmd.Out)

	logger := zap.NewNop()
	if cmd.Verbose {
		logger = logging.New("debug", "console")
	}
	defer func() { _ = logger.Sync() }()

	client := cmd.backend.client()
	store := notebooks.NewStore(client, notebooks.Options{Logger: logger})
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	if err := store.Select(ctx, cmd.NotebookID); err != nil {
		return err
	}

	platform, _ := entities.ParsePlatform(cmd.Platform)
	entry := wordentry.NewWorkflow(client, store, wordentry.Options{DefaultPlatform: platform, Logger: logger})

	draft, err := entry.Search(ctx, cmd.Word, platform)
	if err != nil && cmd.Translation == "" {
		return err
	}
	if cmd.Translation != "" {
		entry.SetTranslation(cmd.Translation)
	}
	if cmd.Note != "" {
		entry.SetNote(cmd.Note)
	}
	if draft.Known {
		fmt.Fprintf(out, "%q is already in your wordbook\n", draft.Word)
	}

	word, err := entry.Commit(ctx)
	if err != nil {
		if errors.Is(err, wordentry.ErrEmptyTranslation) {
			return fmt.Errorf("no translation found for %q, pass -translation", cmd.Word)
		}
		return err
	}

	nb, _ := store.Get(cmd.NotebookID)
	fmt.Fprintf(out, "Added %q to %s: %s\n", word.Word, nb.Name, oneLine(word.Definition))
	return nil
}
