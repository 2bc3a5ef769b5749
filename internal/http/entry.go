package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/notify"
	"github.com/mrlokans/wordbook/internal/wordentry"
)

// EntryController drives the search-then-commit word entry form.
type EntryController struct {
	*uiState
}

func NewEntryController(state *uiState) *EntryController {
	return &EntryController{uiState: state}
}

// applyFields copies the posted form fields into the draft. Fields that were
// not posted are left alone.
func (ec *EntryController) applyFields(c *gin.Context) {
	if word, ok := c.GetPostForm("word"); ok {
		ec.entry.SetWord(word)
	}
	if translation, ok := c.GetPostForm("translation"); ok {
		ec.entry.SetTranslation(translation)
	}
	if note, ok := c.GetPostForm("note"); ok {
		ec.entry.SetNote(note)
	}
	if raw, ok := c.GetPostForm("platform"); ok {
		if p, valid := entities.ParsePlatform(raw); valid {
			ec.entry.SetPlatform(p)
		}
	}
	if focus, ok := c.GetPostForm("focus"); ok {
		ec.entry.SetFocus(wordentry.ParseFocus(focus))
	}
}

// Search looks the word up and fetches its translation.
// POST /entry/search (form: word, platform)
func (ec *EntryController) Search(c *gin.Context) {
	platform, _ := entities.ParsePlatform(c.PostForm("platform"))
	draft, err := ec.entry.Search(c.Request.Context(), c.PostForm("word"), platform)
	ec.respond(c, notify.FromError(err), gin.H{"draft": draftJSON(draft)})
}

// Note saves edits to the translation and note fields.
// POST /entry/note (form: translation, note)
func (ec *EntryController) Note(c *gin.Context) {
	ec.applyFields(c)
	ec.respond(c, notify.Notice{}, gin.H{"draft": draftJSON(ec.entry.Draft())})
}

// Commit adds the draft to the current notebook.
// POST /entry/commit (form: word, translation, note)
func (ec *EntryController) Commit(c *gin.Context) {
	ec.applyFields(c)
	ec.commit(c)
}

func (ec *EntryController) commit(c *gin.Context) {
	ctx := c.Request.Context()
	notebookID, draft, err := ec.entry.Validate()
	if err != nil {
		ec.respond(c, notify.FromError(err), gin.H{"action": "commit", "draft": draftJSON(draft)})
		return
	}

	entry, err := ec.entry.Commit(ctx)
	ec.activity.Outcome(ctx, entities.ActivityWord, "word_add", fmt.Sprintf("Added %q", draft.Word), activity.NotebookRef(notebookID), err)
	if err != nil {
		ec.respond(c, notify.FromError(err), gin.H{"action": "commit", "draft": draftJSON(ec.entry.Draft())})
		return
	}
	ec.respond(c, notify.Success(fmt.Sprintf("Added %q", entry.Word)), gin.H{"action": "commit", "draft": draftJSON(ec.entry.Draft())})
}

// Key forwards a key press from the entry form.
// POST /entry/key (form: key, ctrl, meta, focus and the current field values)
func (ec *EntryController) Key(c *gin.Context) {
	ec.applyFields(c)
	ev := wordentry.KeyEvent{
		Key:   c.PostForm("key"),
		Ctrl:  parseBool(c.PostForm("ctrl")),
		Meta:  parseBool(c.PostForm("meta")),
		Focus: wordentry.ParseFocus(c.PostForm("focus")),
	}

	// Commit goes through the same path as the button so it is recorded.
	if ev.Key == "Enter" && (ev.Ctrl || ev.Meta) {
		ec.commit(c)
		return
	}

	action, err := ec.entry.HandleKey(c.Request.Context(), ev)
	if action == wordentry.ActionNone {
		c.JSON(http.StatusOK, gin.H{"action": "none", "draft": draftJSON(ec.entry.Draft())})
		return
	}
	ec.respond(c, notify.FromError(err), gin.H{"action": "search", "draft": draftJSON(ec.entry.Draft())})
}
