package activity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/wordbook/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an activity event.
func (r *Repository) LogEvent(ctx context.Context, event *entities.ActivityEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvents returns a page of events, most recent first, plus the total.
// An empty kind matches every kind.
func (r *Repository) GetEvents(ctx context.Context, kind entities.ActivityKind, limit, offset int) ([]entities.ActivityEvent, int64, error) {
	var events []entities.ActivityEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.ActivityEvent{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetByRequestID returns every event recorded under one request.
func (r *Repository) GetByRequestID(ctx context.Context, requestID string) ([]entities.ActivityEvent, error) {
	var events []entities.ActivityEvent
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).Order("id").Find(&events).Error
	return events, err
}

// DeleteOldEvents removes events older than the given time and returns how
// many were deleted.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.ActivityEvent{})
	return result.RowsAffected, result.Error
}
