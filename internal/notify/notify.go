// Package notify turns operation outcomes into the one-line notices shown to
// the user.
package notify

import (
	"context"
	"errors"
	"strconv"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/notebooks"
	"github.com/mrlokans/wordbook/internal/selection"
	"github.com/mrlokans/wordbook/internal/view"
	"github.com/mrlokans/wordbook/internal/wordentry"
	"github.com/mrlokans/wordbook/internal/wordlist"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (n Notice) IsZero() bool { return n.Message == "" }

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

func Info(msg string) Notice { return Notice{Level: LevelInfo, Message: msg} }

const GenericFailure = "Something went wrong, please try again"

var messages = []struct {
	err   error
	level Level
	msg   string
}{
	{wordentry.ErrNoNotebook, LevelError, "Please select a notebook first"},
	{wordentry.ErrEmptyWord, LevelError, "Please enter a word"},
	{api.ErrEmptyWord, LevelError, "Please enter a word"},
	{wordentry.ErrEmptyTranslation, LevelError, "Search for a translation before adding the word"},
	{api.ErrWordExists, LevelError, "This word is already in the notebook"},
	{notebooks.ErrEmptyName, LevelError, "Notebook name cannot be empty"},
	{notebooks.ErrCoverUpload, LevelError, "Cover upload failed, the notebook was not created"},
	{notebooks.ErrUnknownNotebook, LevelError, "That notebook no longer exists"},
	{view.ErrUnknownNotebook, LevelError, "That notebook no longer exists"},
	{api.ErrNotebookNotFound, LevelError, "That notebook no longer exists"},
	{selection.ErrEmptySelection, LevelError, "Select at least one word first"},
	{selection.ErrSameNotebook, LevelError, "Choose a different notebook"},
	{selection.ErrNoNotebook, LevelError, "Open a notebook first"},
	{wordlist.ErrNotOpen, LevelError, "Open a notebook first"},
	{selection.ErrBusy, LevelError, "Another batch action is still running"},
	{selection.ErrCancelled, LevelInfo, "Cancelled"},
	{context.DeadlineExceeded, LevelError, "The server took too long to answer, please try again"},
}

var batchFailures = map[selection.Op]string{
	selection.OpDelete: "Delete failed, please try again",
	selection.OpMove:   "Move failed, please try again",
	selection.OpCopy:   "Copy failed, please try again",
}

// FromError maps err to a notice. Superseded searches produce no notice.
func FromError(err error) Notice {
	if err == nil || errors.Is(err, wordentry.ErrStaleSearch) {
		return Notice{}
	}

	var batchErr *selection.BatchError
	if errors.As(err, &batchErr) {
		if msg, ok := batchFailures[batchErr.Result.Op]; ok {
			return Notice{Level: LevelError, Message: msg}
		}
	}

	for _, m := range messages {
		if errors.Is(err, m.err) {
			return Notice{Level: m.level, Message: m.msg}
		}
	}
	return Notice{Level: LevelError, Message: GenericFailure}
}

// BatchSuccess is the notice for a finished batch action.
func BatchSuccess(r *selection.Result) Notice {
	switch r.Op {
	case selection.OpDelete:
		return Success(plural(len(r.Words), "word deleted", "words deleted"))
	case selection.OpMove:
		return Success(plural(len(r.Words), "word moved", "words moved"))
	default:
		return Success(plural(len(r.Words), "word copied", "words copied"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
