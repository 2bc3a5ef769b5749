package selection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
)

// fakeBackend stores words per notebook so a reload after a batch shows the
// server-side effect.
type fakeBackend struct {
	mu     sync.Mutex
	words  map[int64]map[string]bool
	fail   map[string]bool
	calls  int
	copies []string
}

func newFakeBackend(notebook int64, words ...string) *fakeBackend {
	f := &fakeBackend{words: map[int64]map[string]bool{notebook: {}}, fail: map[string]bool{}}
	for _, w := range words {
		f.words[notebook][w] = true
	}
	return f
}

func (f *fakeBackend) record(word string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[word] {
		return errors.New("server error")
	}
	return nil
}

func (f *fakeBackend) DeleteWord(_ context.Context, notebookID int64, word string) error {
	if err := f.record(word); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.words[notebookID], word)
	return nil
}

func (f *fakeBackend) MoveWord(_ context.Context, targetID, sourceID int64, word string) error {
	if err := f.record(word); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.words[sourceID], word)
	if f.words[targetID] == nil {
		f.words[targetID] = map[string]bool{}
	}
	f.words[targetID][word] = true
	return nil
}

func (f *fakeBackend) CopyWord(_ context.Context, targetID, _ int64, word string) error {
	if err := f.record(word); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies = append(f.copies, word)
	return nil
}

func (f *fakeBackend) has(notebook int64, word string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.words[notebook][word]
}

type fakeList struct {
	id      int64
	open    bool
	reloads int
	seen    []string
	backend *fakeBackend
}

func (l *fakeList) NotebookID() (int64, bool) { return l.id, l.open }

func (l *fakeList) Reload(context.Context) error {
	l.reloads++
	l.seen = nil
	l.backend.mu.Lock()
	for w := range l.backend.words[l.id] {
		l.seen = append(l.seen, w)
	}
	l.backend.mu.Unlock()
	return nil
}

func setup(words ...string) (*Engine, *fakeBackend, *fakeList) {
	backend := newFakeBackend(1, words...)
	list := &fakeList{id: 1, open: true, backend: backend}
	return NewEngine(backend, list, &events.MockEmitter{}, nil), backend, list
}

func yes(int) bool { return true }

func TestEngine_Toggle(t *testing.T) {
	e, _, _ := setup("apple")

	assert.False(t, e.Toggle("apple"), "toggle outside selection mode is ignored")
	assert.Zero(t, e.Count())

	e.Enter()
	assert.True(t, e.Toggle("apple"))
	assert.True(t, e.IsSelected("apple"))
	assert.False(t, e.Toggle("apple"))
	assert.Zero(t, e.Count())

	e.Toggle("apple")
	e.Cancel()
	assert.False(t, e.Active())
	assert.Zero(t, e.Count())
}

func TestEngine_EmptySelection(t *testing.T) {
	e, backend, _ := setup("apple")
	e.Enter()

	_, err := e.BatchDelete(context.Background(), yes)
	assert.ErrorIs(t, err, ErrEmptySelection)
	_, err = e.BatchMove(context.Background(), 2)
	assert.ErrorIs(t, err, ErrEmptySelection)
	_, err = e.BatchCopy(context.Background(), 2)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Zero(t, backend.calls)
}

func TestEngine_BatchDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes all and reloads", func(t *testing.T) {
		e, backend, list := setup("apple", "banana", "cherry")
		e.Enter()
		e.Toggle("apple")
		e.Toggle("banana")

		result, err := e.BatchDelete(ctx, yes)
		require.NoError(t, err)

		assert.Equal(t, []string{"apple", "banana"}, result.Words)
		assert.False(t, e.Active())
		assert.Zero(t, e.Count())
		assert.Equal(t, 1, list.reloads)
		assert.Equal(t, []string{"cherry"}, list.seen)
		assert.False(t, backend.has(1, "apple"))
	})

	t.Run("declined confirmation sends nothing", func(t *testing.T) {
		e, backend, _ := setup("apple")
		e.Enter()
		e.Toggle("apple")

		var asked int
		_, err := e.BatchDelete(ctx, func(n int) bool { asked = n; return false })

		assert.ErrorIs(t, err, ErrCancelled)
		assert.Equal(t, 1, asked)
		assert.Zero(t, backend.calls)
		assert.True(t, e.Active())
		assert.Equal(t, 1, e.Count())
	})

	t.Run("partial failure keeps selection and list", func(t *testing.T) {
		e, backend, list := setup("apple", "banana")
		backend.fail["banana"] = true
		e.Enter()
		e.Toggle("apple")
		e.Toggle("banana")

		result, err := e.BatchDelete(ctx, yes)

		assert.ErrorIs(t, err, ErrBatchFailed)
		var batchErr *BatchError
		require.ErrorAs(t, err, &batchErr)
		assert.Equal(t, []string{"banana"}, result.Failed)
		assert.Equal(t, 1, result.Succeeded())
		assert.Equal(t, 2, backend.calls, "every request settles")
		assert.False(t, backend.has(1, "apple"), "no rollback of the successful delete")
		assert.Zero(t, list.reloads)
		assert.True(t, e.Active())
		assert.Equal(t, 2, e.Count())
	})
}

func TestEngine_BatchMove(t *testing.T) {
	ctx := context.Background()

	t.Run("moves and reloads", func(t *testing.T) {
		e, backend, list := setup("apple")
		e.Enter()
		e.Toggle("apple")

		_, err := e.BatchMove(ctx, 7)
		require.NoError(t, err)

		assert.True(t, backend.has(7, "apple"))
		assert.Equal(t, 1, list.reloads)
		assert.Empty(t, list.seen)
	})

	t.Run("failure is reported without reload", func(t *testing.T) {
		e, backend, list := setup("apple")
		backend.fail["apple"] = true
		e.Enter()
		e.Toggle("apple")

		_, err := e.BatchMove(ctx, 7)

		assert.ErrorIs(t, err, ErrBatchFailed)
		assert.Zero(t, list.reloads)
	})

	t.Run("same notebook is rejected", func(t *testing.T) {
		e, backend, _ := setup("apple")
		e.Enter()
		e.Toggle("apple")

		_, err := e.BatchMove(ctx, 1)

		assert.ErrorIs(t, err, ErrSameNotebook)
		assert.Zero(t, backend.calls)
	})
}

func TestEngine_BatchCopyDoesNotReload(t *testing.T) {
	e, backend, list := setup("apple", "pear")
	e.Enter()
	e.Toggle("apple")
	e.Toggle("pear")

	_, err := e.BatchCopy(context.Background(), 9)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"apple", "pear"}, backend.copies)
	assert.Zero(t, list.reloads)
	assert.False(t, e.Active())
}

func TestEngine_NoOpenNotebook(t *testing.T) {
	e, _, list := setup("apple")
	e.Enter()
	e.Toggle("apple")
	list.open = false

	_, err := e.BatchCopy(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNoNotebook)
}

func TestEngine_Targets(t *testing.T) {
	e, _, _ := setup()
	notebooks := []entities.Notebook{{ID: 1, Name: "open"}, {ID: 2, Name: "other"}, {ID: 3, Name: "third"}}

	targets := e.Targets(notebooks)

	require.Len(t, targets, 2)
	assert.Equal(t, int64(2), targets[0].ID)
	assert.Equal(t, int64(3), targets[1].ID)
}
