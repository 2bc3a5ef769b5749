// Package cli holds the one-shot commands that talk to the wordbook backend
// without starting the web UI.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/config"
)

// backendFlags are shared by every command that calls the backend.
type backendFlags struct {
	BaseURL string
	Timeout time.Duration
}

func (b *backendFlags) register(fs *flag.FlagSet) {
	cfg := config.NewConfig()
	fs.StringVar(&b.BaseURL, "api", cfg.API.BaseURL, "Base URL of the wordbook backend")
	fs.DurationVar(&b.Timeout, "timeout", cfg.API.Timeout, "Per-request timeout")
}

func (b *backendFlags) client() *api.Client {
	return api.NewClient(b.BaseURL, b.Timeout)
}

// signalContext is cancelled on Ctrl+C so a long download stops cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// confirm asks a yes/no question on in; only "y" or "yes" agrees.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func orStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func orStdin(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}
	return r
}
