package wordentry

import (
	"context"
	"strings"
)

// KeyEvent is a key press inside the entry form.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool // Cmd on macOS
	Focus Focus
}

type Action int

const (
	ActionNone Action = iota
	ActionSearch
	ActionCommit
)

// HandleKey applies the keyboard contract: Ctrl/Cmd+Enter commits from any
// field, plain Enter in the search field searches, everything else is ignored.
func (w *Workflow) HandleKey(ctx context.Context, ev KeyEvent) (Action, error) {
	if !strings.EqualFold(ev.Key, "Enter") {
		return ActionNone, nil
	}

	if ev.Ctrl || ev.Meta {
		_, err := w.Commit(ctx)
		return ActionCommit, err
	}

	if ev.Focus != FocusSearch {
		return ActionNone, nil
	}
	d := w.Draft()
	_, err := w.Search(ctx, d.Word, d.Platform)
	return ActionSearch, err
}
