package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/view"
)

// PopoverController tracks which dropdown menu is open.
type PopoverController struct {
	*uiState
}

func NewPopoverController(state *uiState) *PopoverController {
	return &PopoverController{uiState: state}
}

func popoverJSON(p view.Popover) gin.H {
	return gin.H{"open": p.IsOpen(), "id": p.ID}
}

// Toggle opens or closes a popover.
// POST /popover/toggle (form: id)
func (pc *PopoverController) Toggle(c *gin.Context) {
	p := pc.shell.TogglePopover(c.PostForm("id"))
	pc.reply(c, p)
}

// Click reports a click on the page; region is empty outside any popover.
// POST /popover/click (form: region)
func (pc *PopoverController) Click(c *gin.Context) {
	p := pc.shell.Click(c.PostForm("region"))
	pc.reply(c, p)
}

func (pc *PopoverController) reply(c *gin.Context, p view.Popover) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"popover": popoverJSON(p)})
		return
	}
	c.Redirect(http.StatusSeeOther, pc.location())
}
