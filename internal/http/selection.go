package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/notify"
	"github.com/mrlokans/wordbook/internal/selection"
)

// SelectionController handles selection mode and the batch actions.
type SelectionController struct {
	*uiState
}

func NewSelectionController(state *uiState) *SelectionController {
	return &SelectionController{uiState: state}
}

func (sc *SelectionController) selectionJSON() gin.H {
	return gin.H{
		"active":   sc.selection.Active(),
		"selected": sc.selection.Selected(),
	}
}

// Enter switches selection mode on with an empty set.
// POST /selection/enter
func (sc *SelectionController) Enter(c *gin.Context) {
	sc.selection.Enter()
	sc.respond(c, notify.Notice{}, gin.H{"selection": sc.selectionJSON()})
}

// Cancel leaves selection mode.
// POST /selection/cancel
func (sc *SelectionController) Cancel(c *gin.Context) {
	sc.selection.Cancel()
	sc.respond(c, notify.Notice{}, gin.H{"selection": sc.selectionJSON()})
}

// Toggle adds or removes one word.
// POST /selection/toggle (form: word)
func (sc *SelectionController) Toggle(c *gin.Context) {
	sc.selection.Toggle(c.PostForm("word"))
	sc.respond(c, notify.Notice{}, gin.H{"selection": sc.selectionJSON()})
}

// Delete deletes the selected words. Without confirm=yes it asks first.
// POST /selection/delete (form: confirm)
func (sc *SelectionController) Delete(c *gin.Context) {
	confirmed := c.PostForm("confirm") == "yes"
	pending := 0
	result, err := sc.selection.BatchDelete(c.Request.Context(), func(n int) bool {
		pending = n
		return confirmed
	})
	if errors.Is(err, selection.ErrCancelled) && !confirmed {
		sc.askConfirm(c, pending)
		return
	}
	sc.finish(c, result, err)
}

func (sc *SelectionController) askConfirm(c *gin.Context, n int) {
	msg := fmt.Sprintf("Delete %d selected words? This cannot be undone.", n)
	if n == 1 {
		msg = "Delete the selected word? This cannot be undone."
	}
	if wantsJSON(c) {
		c.JSON(http.StatusConflict, gin.H{"confirm": msg, "count": n})
		return
	}
	sc.render(c, http.StatusOK, "confirm", gin.H{
		"Title":   "Confirm",
		"Message": msg,
		"Action":  "/selection/delete",
	})
}

// Move moves the selected words to another notebook.
// POST /selection/move (form: target)
func (sc *SelectionController) Move(c *gin.Context) {
	target, ok := parseFormID(c, "target")
	if !ok {
		sc.respond(c, notify.FromError(selection.ErrSameNotebook), nil)
		return
	}
	result, err := sc.selection.BatchMove(c.Request.Context(), target)
	sc.finish(c, result, err)
}

// Copy copies the selected words to another notebook.
// POST /selection/copy (form: target)
func (sc *SelectionController) Copy(c *gin.Context) {
	target, ok := parseFormID(c, "target")
	if !ok {
		sc.respond(c, notify.FromError(selection.ErrSameNotebook), nil)
		return
	}
	result, err := sc.selection.BatchCopy(c.Request.Context(), target)
	sc.finish(c, result, err)
}

func (sc *SelectionController) finish(c *gin.Context, result *selection.Result, err error) {
	if result != nil {
		desc := fmt.Sprintf("%s %d words", result.Op, len(result.Words))
		if result.Target != 0 {
			desc += fmt.Sprintf(" to notebook %d", result.Target)
		}
		sc.activity.Outcome(c.Request.Context(), entities.ActivityBatch, "batch_"+string(result.Op), desc, activity.NotebookRef(result.Source), err)
	}
	if err != nil {
		sc.respond(c, notify.FromError(err), gin.H{"selection": sc.selectionJSON()})
		return
	}
	sc.respond(c, notify.BatchSuccess(result), gin.H{"selection": sc.selectionJSON()})
}
