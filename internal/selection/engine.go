// Package selection implements multi-select over the open notebook's words
// and the batch delete / move / copy actions on the selected set.
package selection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/logging"
)

var (
	ErrEmptySelection = errors.New("no words selected")
	ErrCancelled      = errors.New("batch action cancelled")
	ErrSameNotebook   = errors.New("target is the open notebook")
	ErrNoNotebook     = errors.New("no notebook is open")
	ErrBusy           = errors.New("another batch action is running")
	ErrBatchFailed    = errors.New("batch action failed")
)

// Backend performs the per-word requests of a batch.
type Backend interface {
	DeleteWord(ctx context.Context, notebookID int64, word string) error
	MoveWord(ctx context.Context, targetID, sourceID int64, word string) error
	CopyWord(ctx context.Context, targetID, sourceID int64, word string) error
}

// WordList is the open detail view's word list.
type WordList interface {
	NotebookID() (int64, bool)
	Reload(ctx context.Context) error
}

// ConfirmFunc asks the user to confirm deleting n words.
type ConfirmFunc func(n int) bool

// Engine holds selection mode and the selected words of the open notebook.
type Engine struct {
	backend Backend
	list    WordList
	emitter events.Emitter
	logger  *zap.Logger

	mu       sync.Mutex
	active   bool
	running  bool
	selected map[string]struct{}
}

// NewEngine creates an engine with selection mode off.
func NewEngine(backend Backend, list WordList, emitter events.Emitter, logger *zap.Logger) *Engine {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Engine{
		backend:  backend,
		list:     list,
		emitter:  emitter,
		logger:   logging.OrNop(logger).Named("selection"),
		selected: make(map[string]struct{}),
	}
}

// Enter turns on selection mode with an empty set.
func (e *Engine) Enter() {
	e.mu.Lock()
	e.active = true
	e.selected = make(map[string]struct{})
	e.mu.Unlock()
	e.changed()
}

// Cancel leaves selection mode and drops the set.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.active = false
	e.selected = make(map[string]struct{})
	e.mu.Unlock()
	e.changed()
}

// Toggle flips membership of word and reports whether it is now selected.
// Outside selection mode it does nothing.
func (e *Engine) Toggle(word string) bool {
	e.mu.Lock()
	if !e.active || word == "" {
		e.mu.Unlock()
		return false
	}
	_, on := e.selected[word]
	if on {
		delete(e.selected, word)
	} else {
		e.selected[word] = struct{}{}
	}
	e.mu.Unlock()
	e.changed()
	return !on
}

// Active reports whether selection mode is on.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) IsSelected(word string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.selected[word]
	return ok
}

// Selected returns the selected words sorted.
func (e *Engine) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedLocked()
}

func (e *Engine) selectedLocked() []string {
	words := make([]string, 0, len(e.selected))
	for w := range e.selected {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Count returns the number of selected words.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.selected)
}

// Targets lists notebooks words may be moved or copied to.
func (e *Engine) Targets(notebooks []entities.Notebook) []entities.Notebook {
	openID, open := e.list.NotebookID()
	out := make([]entities.Notebook, 0, len(notebooks))
	for _, nb := range notebooks {
		if open && nb.ID == openID {
			continue
		}
		out = append(out, nb)
	}
	return out
}

// BatchDelete deletes every selected word after confirm agrees.
func (e *Engine) BatchDelete(ctx context.Context, confirm ConfirmFunc) (*Result, error) {
	return e.run(ctx, OpDelete, 0, confirm, func(ctx context.Context, source int64, word string) error {
		return e.backend.DeleteWord(ctx, source, word)
	})
}

// BatchMove moves every selected word to target.
func (e *Engine) BatchMove(ctx context.Context, target int64) (*Result, error) {
	return e.run(ctx, OpMove, target, nil, func(ctx context.Context, source int64, word string) error {
		return e.backend.MoveWord(ctx, target, source, word)
	})
}

// BatchCopy copies every selected word to target. The open list is unchanged
// by a copy, so it is not reloaded.
func (e *Engine) BatchCopy(ctx context.Context, target int64) (*Result, error) {
	return e.run(ctx, OpCopy, target, nil, func(ctx context.Context, source int64, word string) error {
		return e.backend.CopyWord(ctx, target, source, word)
	})
}

func (e *Engine) run(ctx context.Context, op Op, target int64, confirm ConfirmFunc, do func(ctx context.Context, source int64, word string) error) (*Result, error) {
	source, open := e.list.NotebookID()
	if !open {
		return nil, ErrNoNotebook
	}

	e.mu.Lock()
	if !e.active || len(e.selected) == 0 {
		e.mu.Unlock()
		return nil, ErrEmptySelection
	}
	if e.running {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	words := e.selectedLocked()
	e.mu.Unlock()

	if op != OpDelete && target == source {
		return nil, ErrSameNotebook
	}
	if confirm != nil && !confirm(len(words)) {
		return nil, ErrCancelled
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	result := &Result{Op: op, Source: source, Target: target, Words: words}

	// Every request runs to completion; one failure must not cancel the rest.
	var (
		g      errgroup.Group
		failMu sync.Mutex
	)
	for _, word := range words {
		g.Go(func() error {
			if err := do(ctx, source, word); err != nil {
				failMu.Lock()
				result.Failed = append(result.Failed, word)
				failMu.Unlock()
				return fmt.Errorf("%s %q: %w", op, word, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sort.Strings(result.Failed)
		e.logger.Warn("batch action failed",
			zap.String("op", string(op)),
			zap.Int64("notebook_id", source),
			zap.Int("total", len(words)),
			zap.Strings("failed", result.Failed),
			zap.Error(err))
		return result, &BatchError{Result: result, Err: err}
	}

	e.mu.Lock()
	e.active = false
	e.selected = make(map[string]struct{})
	e.mu.Unlock()
	e.changed()

	e.logger.Info("batch action done",
		zap.String("op", string(op)),
		zap.Int64("notebook_id", source),
		zap.Int("count", len(words)))

	if op.changesSource() {
		if err := e.list.Reload(ctx); err != nil {
			e.logger.Warn("word list reload after batch failed", zap.Error(err))
		}
	}
	return result, nil
}

func (e *Engine) changed() {
	e.emitter.Emit(context.Background(), events.SelectionChanged, nil)
}

// Op names a batch action.
type Op string

const (
	OpDelete Op = "delete"
	OpMove   Op = "move"
	OpCopy   Op = "copy"
)

func (o Op) changesSource() bool {
	return o == OpDelete || o == OpMove
}

// Result describes a finished batch.
type Result struct {
	Op     Op
	Source int64
	Target int64
	Words  []string
	Failed []string
}

func (r *Result) Succeeded() int {
	return len(r.Words) - len(r.Failed)
}

// BatchError reports a batch where at least one request failed. Requests that
// succeeded are not rolled back.
type BatchError struct {
	Result *Result
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s failed for %d of %d words (%s): %v",
		e.Result.Op, len(e.Result.Failed), len(e.Result.Words), strings.Join(e.Result.Failed, ", "), e.Err)
}

func (e *BatchError) Is(target error) bool {
	return target == ErrBatchFailed
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
