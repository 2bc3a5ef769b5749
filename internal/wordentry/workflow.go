// Package wordentry implements the search-then-commit flow for adding a word
// to the current notebook.
package wordentry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/logging"
)

var (
	ErrNoNotebook       = errors.New("no notebook selected")
	ErrEmptyWord        = errors.New("word is empty")
	ErrEmptyTranslation = errors.New("translation is empty")
	// ErrStaleSearch is returned when a newer search or a reset overtook this one.
	ErrStaleSearch = errors.New("search superseded")
)

// Backend is the part of the API client the workflow calls.
type Backend interface {
	LookupWord(ctx context.Context, word string) (*entities.WordLookup, error)
	Translate(ctx context.Context, word string, platform entities.Platform) (*entities.Translation, error)
	AddWord(ctx context.Context, notebookID int64, word, definition, note string) (*entities.WordEntry, error)
}

// NotebookSource resolves the notebook words are committed to.
type NotebookSource interface {
	CurrentID() (int64, bool)
}

// Options configures a Workflow. An invalid DefaultPlatform means youdao.
type Options struct {
	DefaultPlatform entities.Platform
	Emitter         events.Emitter
	Logger          *zap.Logger
}

// Workflow owns the draft entry and turns it into a word in the current
// notebook.
type Workflow struct {
	backend   Backend
	notebooks NotebookSource
	emitter   events.Emitter
	logger    *zap.Logger

	mu          sync.Mutex
	draft       Draft
	searchSeq   uint64
	defaultPlat entities.Platform
}

// NewWorkflow creates a workflow with an empty draft.
func NewWorkflow(backend Backend, notebooks NotebookSource, opts Options) *Workflow {
	platform := opts.DefaultPlatform
	if !platform.Valid() {
		platform = entities.PlatformYoudao
	}
	w := &Workflow{
		backend:     backend,
		notebooks:   notebooks,
		emitter:     opts.Emitter,
		logger:      logging.OrNop(opts.Logger).Named("wordentry"),
		defaultPlat: platform,
	}
	if w.emitter == nil {
		w.emitter = events.Nop{}
	}
	w.draft = newDraft(platform)
	return w
}

// Draft returns a snapshot of the entry form.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Workflow) SetWord(word string) {
	w.update(func(d *Draft) { d.Word = word })
}

func (w *Workflow) SetTranslation(translation string) {
	w.update(func(d *Draft) { d.Translation = translation })
}

func (w *Workflow) SetNote(note string) {
	w.update(func(d *Draft) { d.Note = note })
}

func (w *Workflow) SetFocus(f Focus) {
	w.update(func(d *Draft) { d.Focus = f })
}

// SetPlatform ignores unknown platforms.
func (w *Workflow) SetPlatform(p entities.Platform) {
	if !p.Valid() {
		return
	}
	w.update(func(d *Draft) { d.Platform = p })
}

func (w *Workflow) update(fn func(d *Draft)) {
	w.mu.Lock()
	fn(&w.draft)
	w.mu.Unlock()
	w.emitter.Emit(context.Background(), events.DraftChanged, nil)
}

// Reset starts a fresh draft and makes in-flight searches stale. The chosen
// platform is kept.
func (w *Workflow) Reset() {
	w.mu.Lock()
	platform := w.draft.Platform
	w.searchSeq++
	w.draft = newDraft(platform)
	w.mu.Unlock()
	w.emitter.Emit(context.Background(), events.DraftChanged, nil)
}

// Search runs the existence lookup and the translation concurrently. The
// translation always replaces the translation field; the note comes from the
// lookup when the word is already known and is cleared otherwise. A failed
// lookup is only logged, a failed translation is returned.
func (w *Workflow) Search(ctx context.Context, word string, platform entities.Platform) (Draft, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return w.Draft(), ErrEmptyWord
	}

	w.mu.Lock()
	if !platform.Valid() {
		platform = w.draft.Platform
	}
	w.searchSeq++
	seq := w.searchSeq
	w.draft.Word = word
	w.draft.Platform = platform
	w.draft.Searching = true
	w.mu.Unlock()

	var (
		lookup      *entities.WordLookup
		translation *entities.Translation
		lookupErr   error
		translErr   error
		g           errgroup.Group
	)
	g.Go(func() error {
		lookup, lookupErr = w.backend.LookupWord(ctx, word)
		return lookupErr
	})
	g.Go(func() error {
		translation, translErr = w.backend.Translate(ctx, word, platform)
		return translErr
	})
	_ = g.Wait()

	w.mu.Lock()
	if seq != w.searchSeq {
		w.mu.Unlock()
		w.logger.Debug("discarding superseded search", zap.String("word", word))
		return w.Draft(), ErrStaleSearch
	}

	w.draft.Searching = false
	if translErr == nil {
		w.draft.Translation = translation.Translation
		w.draft.UKPhonetic = translation.UKPhonetic
		w.draft.USPhonetic = translation.USPhonetic
	} else {
		w.draft.Translation = ""
		w.draft.UKPhonetic = ""
		w.draft.USPhonetic = ""
	}
	if lookupErr == nil && lookup.Exists {
		w.draft.Note = lookup.Note
		w.draft.Known = true
	} else {
		w.draft.Note = ""
		w.draft.Known = false
	}
	snapshot := w.draft
	w.mu.Unlock()

	w.emitter.Emit(ctx, events.DraftChanged, nil)

	if lookupErr != nil {
		w.logger.Warn("word lookup failed", zap.String("word", word), zap.Error(lookupErr))
	}
	if translErr != nil {
		w.logger.Warn("translation failed",
			zap.String("word", word),
			zap.String("platform", string(platform)),
			zap.Error(translErr))
		return snapshot, fmt.Errorf("failed to translate %q: %w", word, translErr)
	}
	return snapshot, nil
}

// Validate checks the commit preconditions in order: notebook, word, translation.
func (w *Workflow) Validate() (int64, Draft, error) {
	d := w.Draft()
	notebookID, ok := w.notebooks.CurrentID()
	if !ok {
		return 0, d, ErrNoNotebook
	}
	if strings.TrimSpace(d.Word) == "" {
		return 0, d, ErrEmptyWord
	}
	if strings.TrimSpace(d.Translation) == "" {
		return 0, d, ErrEmptyTranslation
	}
	return notebookID, d, nil
}

// Commit adds the draft to the current notebook. The draft survives any
// failure so the user can retry.
func (w *Workflow) Commit(ctx context.Context) (*entities.WordEntry, error) {
	notebookID, d, err := w.Validate()
	if err != nil {
		return nil, err
	}

	word := strings.TrimSpace(d.Word)
	entry, err := w.backend.AddWord(ctx, notebookID, word, strings.TrimSpace(d.Translation), d.Note)
	if err != nil {
		w.logger.Warn("commit failed",
			zap.Int64("notebook_id", notebookID),
			zap.String("word", word),
			zap.Error(err))
		return nil, err
	}

	// The draft is cleared even if it was edited while the add was in flight,
	// and any search still running is discarded.
	w.mu.Lock()
	w.searchSeq++
	w.draft = newDraft(w.draft.Platform)
	w.mu.Unlock()

	w.logger.Info("word added", zap.Int64("notebook_id", notebookID), zap.String("word", word))
	w.emitter.Emit(ctx, events.DraftChanged, nil)
	w.emitter.Emit(ctx, events.WordAdded, notebookID)
	return entry, nil
}
