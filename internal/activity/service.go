// Package activity keeps the front-end's own history: every user-visible
// outcome (mutation, batch, export, login) is written to the local database
// so it can be reviewed at /api/activity.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activitydb "github.com/mrlokans/wordbook/internal/database/activity"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/utils"
)

const maxTextLen = 500

type requestIDKey struct{}

// WithRequestID tags ctx so every event recorded under it shares one id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored in ctx, or a fresh one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Service records and lists activity events.
type Service struct {
	repo   *activitydb.Repository
	logger *zap.Logger
}

func NewService(repo *activitydb.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrNop(logger).Named("activity")}
}

// Record writes event synchronously.
func (s *Service) Record(ctx context.Context, event *entities.ActivityEvent) error {
	if event.RequestID == "" {
		event.RequestID = RequestID(ctx)
	}
	event.Description = utils.Truncate(event.Description, maxTextLen)
	event.ErrorMsg = utils.Truncate(event.ErrorMsg, maxTextLen)
	return s.repo.LogEvent(ctx, event)
}

// RecordAsync writes event in the background. The request context is not
// used for the write so a finished request does not cancel it.
func (s *Service) RecordAsync(ctx context.Context, event *entities.ActivityEvent) {
	if event.RequestID == "" {
		event.RequestID = RequestID(ctx)
	}
	go func() {
		if err := s.Record(context.Background(), event); err != nil {
			s.logger.Warn("Failed to record activity", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// Outcome records the result of one operation. A nil err is a success.
func (s *Service) Outcome(ctx context.Context, kind entities.ActivityKind, action, description string, notebookID *int64, err error) {
	event := &entities.ActivityEvent{
		Kind:        kind,
		Action:      action,
		Description: description,
		NotebookID:  notebookID,
		Status:      entities.ActivityStatusSuccess,
	}
	if err != nil {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = err.Error()
	}
	s.RecordAsync(ctx, event)
}

// RecordLogin logs a password login attempt.
func (s *Service) RecordLogin(ctx context.Context, ip string, success bool, reason string) {
	event := &entities.ActivityEvent{
		Kind:        entities.ActivityAuth,
		Action:      "login",
		Description: fmt.Sprintf("Login from %s", ip),
		Status:      entities.ActivityStatusSuccess,
	}
	if !success {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = reason
	}
	s.RecordAsync(ctx, event)
}

// List returns a page of events, most recent first.
func (s *Service) List(ctx context.Context, kind entities.ActivityKind, limit, offset int) ([]entities.ActivityEvent, int64, error) {
	return s.repo.GetEvents(ctx, kind, limit, offset)
}

// Purge removes events older than retention.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(ctx, time.Now().Add(-retention))
}

// NotebookRef is a convenience for the optional NotebookID column.
func NotebookRef(id int64) *int64 {
	return &id
}
