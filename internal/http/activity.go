package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/entities"
)

type ActivityController struct {
	activity ActivityLog
}

func NewActivityController(activity ActivityLog) *ActivityController {
	return &ActivityController{activity: activity}
}

// GetActivity returns paginated activity events as JSON.
// GET /api/activity?page=&limit=&kind=
func (ac *ActivityController) GetActivity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit
	kind := entities.ActivityKind(c.Query("kind"))

	events, total, err := ac.activity.List(c.Request.Context(), kind, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load activity", Code: "INTERNAL_ERROR"})
		return
	}
	if events == nil {
		events = []entities.ActivityEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
