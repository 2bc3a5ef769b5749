// Package wordlist caches the words of the notebook open in the detail view.
// Each open starts a session; responses that arrive after the session ended
// are dropped.
package wordlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/logging"
)

var ErrNotOpen = errors.New("no notebook is open")

type Backend interface {
	ListWords(ctx context.Context, notebookID int64, opts api.ListWordsOptions) (*entities.WordPage, error)
}

type Options struct {
	PageSize int // 0 loads everything
	Emitter  events.Emitter
	Logger   *zap.Logger
}

// List is the word list of the notebook shown in the detail view.
type List struct {
	backend  Backend
	pageSize int
	emitter  events.Emitter
	logger   *zap.Logger

	mu         sync.RWMutex
	open       bool
	notebookID int64
	session    uint64
	issued     uint64
	applied    uint64
	page       int
	words      []entities.WordEntry
	total      int
	loaded     bool
}

// New creates a closed list.
func New(backend Backend, opts Options) *List {
	l := &List{
		backend:  backend,
		pageSize: opts.PageSize,
		emitter:  opts.Emitter,
		logger:   logging.OrNop(opts.Logger).Named("wordlist"),
	}
	if l.emitter == nil {
		l.emitter = events.Nop{}
	}
	return l
}

// Open starts a new session for notebookID and drops any cached words.
func (l *List) Open(notebookID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session++
	l.open = true
	l.notebookID = notebookID
	l.page = 0
	l.words = nil
	l.total = 0
	l.loaded = false
}

// Close ends the session; in-flight loads become no-ops.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session++
	l.open = false
	l.words = nil
	l.total = 0
	l.loaded = false
}

// SetPage selects which page Reload fetches. Ignored when paging is off.
func (l *List) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
}

// Reload fetches the current page for the open notebook.
func (l *List) Reload(ctx context.Context) error {
	l.mu.Lock()
	if !l.open {
		l.mu.Unlock()
		return ErrNotOpen
	}
	l.issued++
	seq := l.issued
	session := l.session
	notebookID := l.notebookID
	opts := api.ListWordsOptions{}
	if l.pageSize > 0 {
		opts.Limit = l.pageSize
		opts.Offset = l.page * l.pageSize
	}
	l.mu.Unlock()

	page, err := l.backend.ListWords(ctx, notebookID, opts)
	if err != nil {
		l.logger.Warn("word list load failed", zap.Int64("notebook_id", notebookID), zap.Error(err))
		return fmt.Errorf("failed to load words: %w", err)
	}

	l.mu.Lock()
	if !l.open || session != l.session || seq < l.applied {
		l.mu.Unlock()
		l.logger.Debug("dropping word list for ended session", zap.Int64("notebook_id", notebookID))
		return nil
	}
	l.applied = seq
	l.words = page.Words
	l.total = page.Total
	l.loaded = true
	l.mu.Unlock()

	l.emitter.Emit(ctx, events.WordsChanged, notebookID)
	return nil
}

// NotebookID returns the open notebook.
func (l *List) NotebookID() (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.notebookID, l.open
}

// Words returns a copy of the loaded page.
func (l *List) Words() []entities.WordEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]entities.WordEntry(nil), l.words...)
}

// Total is the word count reported by the backend.
func (l *List) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Paging describes the current page for rendering.
type Paging struct {
	Page     int
	PageSize int
	Total    int
	HasPrev  bool
	HasNext  bool
}

func (l *List) Paging() Paging {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p := Paging{Page: l.page, PageSize: l.pageSize, Total: l.total}
	if l.pageSize > 0 {
		p.HasPrev = l.page > 0
		p.HasNext = (l.page+1)*l.pageSize < l.total
	}
	return p
}
