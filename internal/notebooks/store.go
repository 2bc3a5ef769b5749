// Package notebooks holds the cached notebook list and the current notebook.
//
// The cache is never edited speculatively: every confirmed mutation is
// followed by a full refresh from the backend, and overlapping refreshes are
// reconciled by a StalePolicy.
package notebooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/logging"
)

var (
	ErrEmptyName       = errors.New("notebook name is empty")
	ErrCoverUpload     = errors.New("cover upload failed")
	ErrUnknownNotebook = errors.New("notebook is not in the list")
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// Backend is the part of the API client the store needs.
type Backend interface {
	ListNotebooks(ctx context.Context) ([]entities.Notebook, error)
	CreateNotebook(ctx context.Context, name, cover string) (*entities.Notebook, error)
	RenameNotebook(ctx context.Context, id int64, name string) error
	DeleteNotebook(ctx context.Context, id int64) error
	CopyNotebook(ctx context.Context, id int64) error
	UploadCover(ctx context.Context, image api.Upload) (string, error)
}

// Options configures a Store. Zero values fall back to the defaults.
type Options struct {
	RetryAttempts int
	RetryDelay    time.Duration
	Policy        StalePolicy
	Emitter       events.Emitter
	Logger        *zap.Logger
}

// Store caches the notebook list and the current notebook. It is safe for
// concurrent use; the lock is never held across a backend call.
type Store struct {
	backend Backend
	emitter events.Emitter
	logger  *zap.Logger

	retryAttempts int
	retryDelay    time.Duration
	policy        StalePolicy

	mu          sync.RWMutex
	notebooks   []entities.Notebook
	currentID   int64
	hasCurrent  bool
	loaded      bool
	lastRefresh time.Time
	issued      uint64
	applied     uint64
	closed      bool
}

// NewStore creates an empty store. Nothing is fetched until Refresh.
func NewStore(backend Backend, opts Options) *Store {
	s := &Store{
		backend:       backend,
		emitter:       opts.Emitter,
		logger:        logging.OrNop(opts.Logger).Named("notebooks"),
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
		policy:        opts.Policy,
		notebooks:     []entities.Notebook{},
	}
	if s.emitter == nil {
		s.emitter = events.Nop{}
	}
	if s.retryAttempts <= 0 {
		s.retryAttempts = defaultRetryAttempts
	}
	if s.retryDelay <= 0 {
		s.retryDelay = defaultRetryDelay
	}
	return s
}

// Refresh fetches the list, retrying failed fetches with a fixed delay. On
// final failure the cached state is left untouched and the error returned.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.issue()

	var (
		list []entities.Notebook
		err  error
	)
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("notebook refresh interrupted: %w", ctx.Err())
			case <-time.After(s.retryDelay):
			}
		}

		list, err = s.backend.ListNotebooks(ctx)
		if err == nil {
			break
		}
		s.logger.Warn("notebook list fetch failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.retryAttempts),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		s.logger.Error("giving up on notebook refresh", zap.Error(err))
		return fmt.Errorf("failed to refresh notebooks: %w", err)
	}

	s.apply(ctx, seq, list)
	return nil
}

func (s *Store) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// apply swaps in a fetched list. The whole slice is replaced under one lock
// so readers never see a mixture of two responses.
func (s *Store) apply(ctx context.Context, seq uint64, list []entities.Notebook) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("store closed, dropping notebook list", zap.Uint64("seq", seq))
		return
	}
	if !s.policy.accepts(seq, s.applied) {
		s.mu.Unlock()
		s.logger.Debug("dropping stale notebook list",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", s.applied))
		return
	}
	if seq > s.applied {
		s.applied = seq
	}

	s.notebooks = append(make([]entities.Notebook, 0, len(list)), list...)
	s.reconcileCurrentLocked()
	s.loaded = true
	s.lastRefresh = time.Now()
	count := len(s.notebooks)
	s.mu.Unlock()

	s.emitter.Emit(ctx, events.NotebooksChanged, count)
}

// reconcileCurrentLocked keeps the current id only while it resolves to a
// cached notebook; otherwise the first notebook becomes current.
func (s *Store) reconcileCurrentLocked() {
	if s.hasCurrent && s.indexLocked(s.currentID) >= 0 {
		return
	}
	if len(s.notebooks) == 0 {
		s.currentID, s.hasCurrent = 0, false
		return
	}
	s.currentID, s.hasCurrent = s.notebooks[0].ID, true
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.notebooks {
		if s.notebooks[i].ID == id {
			return i
		}
	}
	return -1
}

// Create makes a notebook, uploading cover first when given. A failed upload
// aborts before the notebook is created.
func (s *Store) Create(ctx context.Context, name string, cover *api.Upload) (*entities.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	coverURL := ""
	if cover != nil {
		url, err := s.backend.UploadCover(ctx, *cover)
		if err != nil {
			s.logger.Warn("cover upload failed, notebook not created", zap.String("name", name), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrCoverUpload, err)
		}
		coverURL = url
	}

	created, err := s.backend.CreateNotebook(ctx, name, coverURL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("notebook created", zap.Int64("id", created.ID), zap.String("name", name))
	s.refreshAfterMutation(ctx, "create")
	return created, nil
}

// Rename validates the name locally, renames and refreshes.
func (s *Store) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := s.backend.RenameNotebook(ctx, id, name); err != nil {
		return err
	}
	s.refreshAfterMutation(ctx, "rename")
	return nil
}

// Delete removes a notebook on the backend and refreshes the cache.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteNotebook(ctx, id); err != nil {
		return err
	}
	s.refreshAfterMutation(ctx, "delete")
	return nil
}

// Copy duplicates a notebook and its words, then refreshes.
func (s *Store) Copy(ctx context.Context, id int64) error {
	if err := s.backend.CopyNotebook(ctx, id); err != nil {
		return err
	}
	s.refreshAfterMutation(ctx, "copy")
	return nil
}

// The mutation already succeeded, so a failed follow-up refresh is only
// logged; the next poll reconciles.
func (s *Store) refreshAfterMutation(ctx context.Context, op string) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after mutation failed", zap.String("op", op), zap.Error(err))
	}
}

// Select makes id the current notebook. It must be in the cached list.
func (s *Store) Select(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownNotebook, id)
	}
	changed := !s.hasCurrent || s.currentID != id
	s.currentID, s.hasCurrent = id, true
	count := len(s.notebooks)
	s.mu.Unlock()

	if changed {
		s.emitter.Emit(ctx, events.NotebooksChanged, count)
	}
	return nil
}

// Current resolves the current id against the cache.
func (s *Store) Current() (entities.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasCurrent {
		return entities.Notebook{}, false
	}
	if i := s.indexLocked(s.currentID); i >= 0 {
		return s.notebooks[i], true
	}
	return entities.Notebook{}, false
}

// CurrentID returns the current notebook id if it is still cached.
func (s *Store) CurrentID() (int64, bool) {
	nb, ok := s.Current()
	return nb.ID, ok
}

// Notebooks returns a copy of the cached list in server order.
func (s *Store) Notebooks() []entities.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Notebook(nil), s.notebooks...)
}

// Get looks a notebook up in the cache.
func (s *Store) Get(id int64) (entities.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.notebooks[i], true
	}
	return entities.Notebook{}, false
}

// DefaultName proposes a name for a notebook created without one.
func (s *Store) DefaultName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("Wordbook %d", len(s.notebooks)+1)
}

// Loaded reports whether at least one refresh has been applied.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastRefresh returns when a refresh response was last applied.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Close makes every later response a no-op.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
