package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/notebooks"
	"github.com/mrlokans/wordbook/internal/notify"
	"github.com/mrlokans/wordbook/internal/selection"
	"github.com/mrlokans/wordbook/internal/view"
	"github.com/mrlokans/wordbook/internal/wordentry"
	"github.com/mrlokans/wordbook/internal/wordlist"
)

// uiState is the client-side state every page renders from. There is one
// user, so one instance is shared by all requests.
type uiState struct {
	notebooks *notebooks.Store
	entry     *wordentry.Workflow
	words     *wordlist.List
	selection *selection.Engine
	shell     *view.Shell
	sessions  *auth.SessionManager
	activity  ActivityLog
	version   string
	logger    *zap.Logger
}

// location is where a form submission returns to.
func (s *uiState) location() string {
	return routePath(s.shell.Route(), s.words.Paging())
}

// render merges the shared page data into data and renders name.
func (s *uiState) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	current, hasCurrent := s.notebooks.Current()
	notice, _ := data["Notice"].(notify.Notice)
	if notice.IsZero() {
		notice = popFlash(c, s.sessions)
	}

	data["Notebooks"] = s.notebooks.Notebooks()
	data["Current"] = current
	data["HasCurrent"] = hasCurrent
	data["Loaded"] = s.notebooks.Loaded()
	data["Draft"] = s.entry.Draft()
	data["Platforms"] = entities.Platforms()
	data["Popover"] = s.shell.Popover()
	data["Notice"] = notice
	data["CSRFToken"] = auth.GetCSRFToken(c)
	data["Auth"] = GetAuthTemplateData(c)
	data["Version"] = s.version
	data["Back"] = s.location()

	c.HTML(status, name, data)
}

// respond finishes a state-changing request: JSON for the page script,
// flash plus redirect for a plain form.
func (s *uiState) respond(c *gin.Context, n notify.Notice, extra gin.H) {
	if wantsJSON(c) {
		body := gin.H{"route": s.location()}
		if !n.IsZero() {
			body["notice"] = n
		}
		for k, v := range extra {
			body[k] = v
		}
		status := http.StatusOK
		if n.Level == notify.LevelError {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, body)
		return
	}
	setFlash(c, s.sessions, n)
	c.Redirect(http.StatusSeeOther, s.location())
}

// UIController serves the two screens and the cross-notebook search page.
type UIController struct {
	*uiState
	search WordSearcher
}

func NewUIController(state *uiState, search WordSearcher) *UIController {
	return &UIController{uiState: state, search: search}
}

// GridPage renders the notebook grid.
// GET /
func (ui *UIController) GridPage(c *gin.Context) {
	ui.shell.ShowGrid()

	var notice notify.Notice
	if !ui.notebooks.Loaded() {
		if err := ui.notebooks.Refresh(c.Request.Context()); err != nil {
			notice = notify.Notice{Level: notify.LevelError, Message: "Could not load notebooks, retrying in the background"}
		}
	}

	ui.render(c, http.StatusOK, "grid", gin.H{
		"Title":       "Notebooks",
		"DefaultName": ui.notebooks.DefaultName(),
		"Notice":      notice,
	})
}

// DetailPage renders one notebook's words.
// GET /notebooks/:id?page=N
func (ui *UIController) DetailPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctx := c.Request.Context()

	page := -1
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p >= 0 {
			page = p
		}
	}

	// A notebook created a moment ago may not be in the cache yet.
	if _, known := ui.notebooks.Get(id); !known {
		_ = ui.notebooks.Refresh(ctx)
	}

	var notice notify.Notice
	if err := ui.shell.ShowDetail(ctx, id, page); err != nil {
		if errors.Is(err, view.ErrUnknownNotebook) {
			setFlash(c, ui.sessions, notify.FromError(err))
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		ui.logger.Warn("word list load failed", zap.Int64("notebook_id", id), zap.Error(err))
		notice = notify.FromError(err)
	}
	// Words added here go into the open notebook.
	_ = ui.notebooks.Select(ctx, id)

	nb, _ := ui.notebooks.Get(id)
	selected := make(map[string]bool)
	for _, w := range ui.selection.Selected() {
		selected[w] = true
	}

	ui.render(c, http.StatusOK, "detail", gin.H{
		"Title":     nb.Name,
		"Notebook":  nb,
		"Words":     ui.words.Words(),
		"Paging":    ui.words.Paging(),
		"Selecting": ui.selection.Active(),
		"Selected":  selected,
		"Count":     ui.selection.Count(),
		"Targets":   ui.selection.Targets(ui.notebooks.Notebooks()),
		"Notice":    notice,
	})
}

// SearchPage lists words matching q across all notebooks. It is a top-level
// screen like the grid, so any open notebook is left first.
// GET /search?q=
func (ui *UIController) SearchPage(c *gin.Context) {
	ui.shell.ShowGrid()

	query := strings.TrimSpace(c.Query("q"))
	data := gin.H{"Title": "Search", "Query": query}

	if query != "" && ui.search != nil {
		words, err := ui.search.SearchWords(c.Request.Context(), query)
		if err != nil {
			ui.logger.Warn("word search failed", zap.String("query", query), zap.Error(err))
			data["Notice"] = notify.FromError(err)
		}
		data["Results"] = words
	}

	ui.render(c, http.StatusOK, "search", data)
}
