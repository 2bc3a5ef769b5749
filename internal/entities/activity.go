package entities

import "time"

type ActivityKind string

const (
	ActivityNotebook ActivityKind = "notebook"
	ActivityWord     ActivityKind = "word"
	ActivityBatch    ActivityKind = "batch"
	ActivityTransfer ActivityKind = "transfer" // export / import
	ActivityAuth     ActivityKind = "auth"
	ActivityRefresh  ActivityKind = "refresh"
)

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusFailed  ActivityStatus = "failed"
)

// ActivityEvent records one user-visible outcome. The wordbook data itself is
// never stored locally; this is only the front-end's own history.
type ActivityEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RequestID   string         `gorm:"size:36;index" json:"request_id"`
	Kind        ActivityKind   `gorm:"index;size:20" json:"kind"`
	Action      string         `gorm:"size:50" json:"action"` // e.g. "notebook_rename", "batch_move"
	Description string         `gorm:"size:500" json:"description"`
	NotebookID  *int64         `gorm:"index" json:"notebook_id,omitempty"`
	Status      ActivityStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
