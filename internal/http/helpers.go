package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/notify"
	"github.com/mrlokans/wordbook/internal/view"
	"github.com/mrlokans/wordbook/internal/wordentry"
	"github.com/mrlokans/wordbook/internal/wordlist"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "BAD_REQUEST"})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "NOT_FOUND"})
}

// --- Parameter Parsing ---

// parseIDParam extracts a notebook id from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseFormID extracts a notebook id from a form field.
func parseFormID(c *gin.Context, field string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.PostForm(field)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

// --- Fetch Support ---

// wantsJSON reports whether the request came from the page script rather
// than a plain form submission.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// --- Flash Notices ---

const (
	flashLevelKey   = "flash_level"
	flashMessageKey = "flash_message"
)

func setFlash(c *gin.Context, sessions *auth.SessionManager, n notify.Notice) {
	if sessions == nil || n.IsZero() {
		return
	}
	sessions.Put(c.Request.Context(), flashLevelKey, string(n.Level))
	sessions.Put(c.Request.Context(), flashMessageKey, n.Message)
}

func popFlash(c *gin.Context, sessions *auth.SessionManager) notify.Notice {
	if sessions == nil {
		return notify.Notice{}
	}
	ctx := c.Request.Context()
	return notify.Notice{
		Level:   notify.Level(sessions.PopString(ctx, flashLevelKey)),
		Message: sessions.PopString(ctx, flashMessageKey),
	}
}

// --- Routing ---

// routePath is the URL of the screen the shell is showing.
func routePath(route view.Route, paging wordlist.Paging) string {
	if !route.IsDetail() {
		return "/"
	}
	path := fmt.Sprintf("/notebooks/%d", route.NotebookID)
	if paging.Page > 0 {
		path += "?page=" + strconv.Itoa(paging.Page)
	}
	return path
}

// draftJSON is the entry form as the page script sees it.
func draftJSON(d wordentry.Draft) gin.H {
	return gin.H{
		"word":        d.Word,
		"translation": d.Translation,
		"note":        d.Note,
		"platform":    d.Platform,
		"uk_phonetic": d.UKPhonetic,
		"us_phonetic": d.USPhonetic,
		"focus":       d.Focus.String(),
		"known":       d.Known,
		"searching":   d.Searching,
	}
}
