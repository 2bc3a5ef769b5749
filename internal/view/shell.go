// Package view tracks what the browser is looking at: the notebook grid or
// one notebook's detail view, and which popover (if any) is open.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/logging"
)

var ErrUnknownNotebook = errors.New("notebook does not exist")

type RouteKind int

const (
	RouteGrid RouteKind = iota
	RouteDetail
)

type Route struct {
	Kind       RouteKind
	NotebookID int64
}

func (r Route) IsDetail() bool { return r.Kind == RouteDetail }

type NotebookLookup interface {
	Get(id int64) (entities.Notebook, bool)
}

// DetailSession is the word list owned by a detail view.
type DetailSession interface {
	Open(notebookID int64)
	Close()
	SetPage(page int)
	Reload(ctx context.Context) error
	NotebookID() (int64, bool)
}

type SelectionResetter interface {
	Cancel()
}

type DraftResetter interface {
	Reset()
}

type Shell struct {
	notebooks NotebookLookup
	list      DetailSession
	selection SelectionResetter
	draft     DraftResetter
	logger    *zap.Logger

	mu      sync.Mutex
	route   Route
	popover Popover
}

func NewShell(notebooks NotebookLookup, list DetailSession, selection SelectionResetter, draft DraftResetter, logger *zap.Logger) *Shell {
	return &Shell{
		notebooks: notebooks,
		list:      list,
		selection: selection,
		draft:     draft,
		logger:    logging.OrNop(logger).Named("view"),
	}
}

func (s *Shell) Route() Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// ShowDetail navigates to a notebook's detail view and loads its words.
// Coming from anywhere else starts a fresh session: new word list, empty
// selection, empty draft. Staying on the same notebook keeps all three.
// A negative page keeps the current page.
func (s *Shell) ShowDetail(ctx context.Context, notebookID int64, page int) error {
	if _, ok := s.notebooks.Get(notebookID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNotebook, notebookID)
	}

	s.mu.Lock()
	same := s.route.IsDetail() && s.route.NotebookID == notebookID
	if !same {
		if s.route.IsDetail() {
			s.leaveDetailLocked()
		}
		s.route = Route{Kind: RouteDetail, NotebookID: notebookID}
		s.popover = Popover{}
		s.list.Open(notebookID)
		s.selection.Cancel()
		s.draft.Reset()
		s.logger.Debug("entered detail view", zap.Int64("notebook_id", notebookID))
	}
	s.mu.Unlock()

	if page >= 0 {
		s.list.SetPage(page)
	}
	return s.list.Reload(ctx)
}

// ShowGrid leaves any detail view. Late word-list responses become no-ops
// and the selection is cleared. Showing the grid again keeps an open popover.
func (s *Shell) ShowGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.route.IsDetail() {
		return
	}
	s.leaveDetailLocked()
	s.route = Route{Kind: RouteGrid}
	s.popover = Popover{}
}

func (s *Shell) leaveDetailLocked() {
	s.list.Close()
	s.selection.Cancel()
	s.logger.Debug("left detail view", zap.Int64("notebook_id", s.route.NotebookID))
}

// Popover returns the popover state.
func (s *Shell) Popover() Popover {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popover
}

// TogglePopover opens id, or closes it when it is already open.
func (s *Shell) TogglePopover(id string) Popover {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popover = s.popover.Toggle(id)
	return s.popover
}

func (s *Shell) ClosePopover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popover = Popover{}
}

// Click handles a click anywhere on the page. region is the popover region
// the click landed in, empty when it landed elsewhere.
func (s *Shell) Click(region string) Popover {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popover = s.popover.Click(region)
	return s.popover
}

// Attach subscribes the shell to store changes and returns the unsubscribe func.
func (s *Shell) Attach(bus *events.Bus) func() {
	return bus.On(func(ctx context.Context, ev events.Event) {
		switch ev.Name {
		case events.NotebooksChanged:
			s.onNotebooksChanged()
		case events.WordAdded:
			if id, ok := ev.Data.(int64); ok {
				s.onWordAdded(ctx, id)
			}
		}
	})
}

func (s *Shell) onNotebooksChanged() {
	route := s.Route()
	if !route.IsDetail() {
		return
	}
	if _, ok := s.notebooks.Get(route.NotebookID); ok {
		return
	}
	s.logger.Info("open notebook disappeared, returning to grid", zap.Int64("notebook_id", route.NotebookID))
	s.ShowGrid()
}

// A word committed into the notebook on screen shows up without a manual reload.
func (s *Shell) onWordAdded(ctx context.Context, notebookID int64) {
	route := s.Route()
	if !route.IsDetail() || route.NotebookID != notebookID {
		return
	}
	go func() {
		if err := s.list.Reload(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("reload after word added failed", zap.Error(err))
		}
	}()
}
