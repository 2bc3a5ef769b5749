package http

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/covers"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// coverResolver prefers the cache's resolver and falls back to one built
// from the backend URL.
func coverResolver(cfg RouterConfig, logger *zap.Logger) CoverResolver {
	if cfg.Covers != nil {
		return cfg.Covers
	}
	if cfg.BackendURL == "" {
		return nil
	}
	resolver, err := covers.NewResolver(cfg.BackendURL)
	if err != nil {
		logger.Warn("cover links disabled", zap.String("backend", cfg.BackendURL), zap.Error(err))
		return nil
	}
	return resolver
}

// requestID tags every request so its log lines and activity events can be
// matched up.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(activity.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t entities.Timestamp) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"coverURL": func(nb entities.Notebook) string {
			return fmt.Sprintf("/covers/%d", nb.ID)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"subtract": func(a, b int) int {
			return a - b
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := logging.OrNop(cfg.Logger)

	router := gin.New()
	router.Use(requestID())
	router.Use(logging.AccessLog(logger))
	router.Use(logging.Recovery(logger))
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}
	router.Use(auth.NewGate(cfg.Sessions, cfg.AuthConfig.Mode).Handler())
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	if cfg.TemplatesPath != "" {
		tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseGlob(filepath.Join(cfg.TemplatesPath, "*.html")))
		router.SetHTMLTemplate(tmpl)
	}
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	var activityLog ActivityLog = nopActivity{}
	if cfg.Activity != nil {
		activityLog = cfg.Activity
	}

	if cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.Sessions != nil {
		recorder, _ := cfg.Activity.(auth.LoginRecorder)
		auth.NewController(cfg.Sessions, cfg.AuthConfig, recorder, logger).RegisterRoutes(router)
	}

	state := &uiState{
		notebooks: cfg.Notebooks,
		entry:     cfg.Entry,
		words:     cfg.Words,
		selection: cfg.Selection,
		shell:     cfg.Shell,
		sessions:  cfg.Sessions,
		activity:  activityLog,
		version:   cfg.Version,
		logger:    logger.Named("ui"),
	}

	health := NewHealthController(cfg.Database, cfg.Backend, cfg.Notebooks, cfg.Version)
	ui := NewUIController(state, cfg.Search)
	notebooksController := NewNotebooksController(state, cfg.Covers)
	entry := NewEntryController(state)
	selectionController := NewSelectionController(state)
	popover := NewPopoverController(state)
	activityController := NewActivityController(activityLog)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Screens
	router.GET("/", ui.GridPage)
	router.GET("/notebooks/:id", ui.DetailPage)
	router.GET("/search", ui.SearchPage)

	// Notebook store
	router.POST("/notebooks", notebooksController.Create)
	router.POST("/notebooks/select", notebooksController.Select)
	router.POST("/notebooks/:id/rename", notebooksController.Rename)
	router.POST("/notebooks/:id/delete", notebooksController.Delete)
	router.POST("/notebooks/:id/copy", notebooksController.Copy)

	// Word entry
	router.POST("/entry/search", entry.Search)
	router.POST("/entry/note", entry.Note)
	router.POST("/entry/commit", entry.Commit)
	router.POST("/entry/key", entry.Key)

	// Selection and batch actions
	router.POST("/selection/enter", selectionController.Enter)
	router.POST("/selection/cancel", selectionController.Cancel)
	router.POST("/selection/toggle", selectionController.Toggle)
	router.POST("/selection/delete", selectionController.Delete)
	router.POST("/selection/move", selectionController.Move)
	router.POST("/selection/copy", selectionController.Copy)

	// Dropdown menus
	router.POST("/popover/toggle", popover.Toggle)
	router.POST("/popover/click", popover.Click)

	// Export / import
	if cfg.Transfer != nil {
		transfer := NewTransferController(state, cfg.Transfer)
		router.GET("/notebooks/:id/export", transfer.ExportNotebook)
		router.GET("/export", transfer.ExportAll)
		router.POST("/import", transfer.Import)
	}

	if cfg.Bus != nil {
		router.GET("/events", NewEventsController(cfg.Bus).Stream)
	}

	router.GET("/covers/:id", NewCoversController(cfg.Covers, coverResolver(cfg, logger), cfg.Notebooks, logger.Named("covers")).GetCover)

	router.GET("/api/activity", activityController.GetActivity)

	return router
}
