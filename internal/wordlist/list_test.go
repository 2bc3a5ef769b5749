package wordlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
)

type fakeBackend struct {
	words map[int64][]string
	opts  []api.ListWordsOptions
	block   chan struct{}
	started chan struct{}
	err     error
}

func (f *fakeBackend) ListWords(_ context.Context, notebookID int64, opts api.ListWordsOptions) (*entities.WordPage, error) {
	f.opts = append(f.opts, opts)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	page := &entities.WordPage{Total: len(f.words[notebookID])}
	for _, w := range f.words[notebookID] {
		page.Words = append(page.Words, entities.WordEntry{Word: w})
	}
	return page, nil
}

func words(l *List) []string {
	var out []string
	for _, w := range l.Words() {
		out = append(out, w.Word)
	}
	return out
}

func TestList_Reload(t *testing.T) {
	ctx := context.Background()

	t.Run("loads the open notebook", func(t *testing.T) {
		emitter := &events.MockEmitter{}
		l := New(&fakeBackend{words: map[int64][]string{3: {"apple", "banana"}}}, Options{Emitter: emitter})
		l.Open(3)

		require.NoError(t, l.Reload(ctx))

		assert.Equal(t, []string{"apple", "banana"}, words(l))
		assert.Equal(t, 2, l.Total())
		assert.True(t, l.Loaded())
		assert.Equal(t, 1, emitter.Count(events.WordsChanged))
	})

	t.Run("requires an open notebook", func(t *testing.T) {
		l := New(&fakeBackend{}, Options{})
		assert.ErrorIs(t, l.Reload(ctx), ErrNotOpen)
	})

	t.Run("failure keeps previous words", func(t *testing.T) {
		backend := &fakeBackend{words: map[int64][]string{3: {"apple"}}}
		l := New(backend, Options{})
		l.Open(3)
		require.NoError(t, l.Reload(ctx))

		backend.err = errors.New("timeout")
		require.Error(t, l.Reload(ctx))

		assert.Equal(t, []string{"apple"}, words(l))
	})

	t.Run("paging sends limit and offset", func(t *testing.T) {
		backend := &fakeBackend{words: map[int64][]string{1: {"a", "b", "c"}}}
		l := New(backend, Options{PageSize: 2})
		l.Open(1)
		l.SetPage(1)

		require.NoError(t, l.Reload(ctx))

		assert.Equal(t, api.ListWordsOptions{Limit: 2, Offset: 2}, backend.opts[0])
		p := l.Paging()
		assert.True(t, p.HasPrev)
		assert.False(t, p.HasNext)
	})
}

func TestList_LateResponseAfterCloseIsDropped(t *testing.T) {
	backend := &fakeBackend{words: map[int64][]string{3: {"apple"}}, block: make(chan struct{}), started: make(chan struct{}, 1)}
	emitter := &events.MockEmitter{}
	l := New(backend, Options{Emitter: emitter})
	l.Open(3)

	done := make(chan error, 1)
	go func() { done <- l.Reload(context.Background()) }()
	<-backend.started
	l.Close()
	close(backend.block)

	require.NoError(t, <-done)
	assert.Empty(t, l.Words())
	assert.Zero(t, emitter.Count(events.WordsChanged))
	_, open := l.NotebookID()
	assert.False(t, open)
}

func TestList_ReopenDropsPreviousSession(t *testing.T) {
	backend := &fakeBackend{words: map[int64][]string{3: {"apple"}, 4: {"pear"}}, block: make(chan struct{}), started: make(chan struct{}, 1)}
	l := New(backend, Options{})
	l.Open(3)

	done := make(chan error, 1)
	go func() { done <- l.Reload(context.Background()) }()
	<-backend.started
	l.Open(4)
	close(backend.block)
	require.NoError(t, <-done)

	assert.Empty(t, l.Words())
	backend.block = nil
	backend.started = nil
	require.NoError(t, l.Reload(context.Background()))
	assert.Equal(t, []string{"pear"}, words(l))
}
