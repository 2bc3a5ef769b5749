package http

import (
	"context"

	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
)

// Transfer streams exports and imports through to the backend.
type Transfer interface {
	ExportNotebook(ctx context.Context, id int64) (*api.Download, error)
	ExportAll(ctx context.Context) (*api.Download, error)
	ImportAll(ctx context.Context, archive api.Upload) error
}

// WordSearcher finds words across every notebook.
type WordSearcher interface {
	SearchWords(ctx context.Context, keyword string) ([]entities.WordEntry, error)
}

// BackendPinger reports whether the backend answers.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// DatabasePinger reports whether the local database answers.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ActivityLog records outcomes and lists them back.
type ActivityLog interface {
	Outcome(ctx context.Context, kind entities.ActivityKind, action, description string, notebookID *int64, err error)
	List(ctx context.Context, kind entities.ActivityKind, limit, offset int) ([]entities.ActivityEvent, int64, error)
}

// CoverResolver maps a notebook cover value to the backend URL serving it.
type CoverResolver interface {
	Resolve(cover string) (string, error)
}

// CoverSource returns a local file for a notebook cover.
type CoverSource interface {
	CoverResolver
	GetCover(ctx context.Context, notebookID int64, cover string) (string, error)
	InvalidateCover(notebookID int64) error
}

type nopActivity struct{}

func (nopActivity) Outcome(context.Context, entities.ActivityKind, string, string, *int64, error) {}

func (nopActivity) List(context.Context, entities.ActivityKind, int, int) ([]entities.ActivityEvent, int64, error) {
	return nil, 0, nil
}
