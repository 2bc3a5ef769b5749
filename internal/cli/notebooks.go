package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/wordbook/internal/api"
)

// NotebooksCommand prints the notebook list, or one notebook's words.
type NotebooksCommand struct {
	backend    backendFlags
	NotebookID int64
	Limit      int
	Out        io.Writer
}

func NewNotebooksCommand() *NotebooksCommand {
	return &NotebooksCommand{}
}

func (cmd *NotebooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("notebooks", flag.ContinueOnError)
	cmd.backend.register(fs)
	fs.Int64Var(&cmd.NotebookID, "words", 0, "List the words of this notebook id instead of the notebooks")
	fs.IntVar(&cmd.Limit, "limit", 0, "Maximum number of words to print (0 prints all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s notebooks [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List notebooks, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *NotebooksCommand) Run() error {
	ctx, cancel := signalContext()
	defer cancel()
	client := cmd.backend.client()
	tw := tabwriter.NewWriter(orStdout(cmd.Out), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if cmd.NotebookID > 0 {
		page, err := client.ListWords(ctx, cmd.NotebookID, api.ListWordsOptions{Limit: cmd.Limit})
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "WORD\tTRANSLATION\tNOTE")
		for _, w := range page.Words {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", w.Word, oneLine(w.Definition), oneLine(w.Note))
		}
		fmt.Fprintf(tw, "\n%d of %d words\n", len(page.Words), page.Total)
		return nil
	}

	list, err := client.ListNotebooks(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(tw, "No notebooks yet")
		return nil
	}
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, nb := range list {
		created := ""
		if !nb.CreatedAt.IsZero() {
			created = nb.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", nb.ID, nb.Name, created)
	}
	return nil
}
