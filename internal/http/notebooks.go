package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/notify"
	"github.com/mrlokans/wordbook/internal/wordentry"
)

// maxCoverUploadSize caps a cover image picked in the create form.
const maxCoverUploadSize = 5 << 20

var (
	errCoverTooLarge = errors.New("cover image too large")
	errCoverNotImage = errors.New("cover is not an image")
)

var coverMessages = map[error]string{
	errCoverTooLarge: "Cover image must be smaller than 5 MB",
	errCoverNotImage: "Cover must be an image",
}

// NotebooksController handles notebook create / rename / delete / copy and
// the current-notebook selector.
type NotebooksController struct {
	*uiState
	covers CoverSource
}

func NewNotebooksController(state *uiState, covers CoverSource) *NotebooksController {
	return &NotebooksController{uiState: state, covers: covers}
}

// Create makes a notebook, uploading the optional cover first.
// POST /notebooks (multipart: name, cover)
func (nc *NotebooksController) Create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = nc.notebooks.DefaultName()
	}

	var cover *api.Upload
	fh, err := c.FormFile("cover")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no cover picked
	case err != nil:
		nc.logger.Warn("unreadable cover upload", zap.Error(err))
		nc.respond(c, notify.Notice{Level: notify.LevelError, Message: "Could not read the cover image"}, nil)
		return
	case fh.Size > 0:
		upload, closeFn, err := openCover(fh)
		if err != nil {
			msg, ok := coverMessages[err]
			if !ok {
				msg = "Could not read the cover image"
			}
			nc.respond(c, notify.Notice{Level: notify.LevelError, Message: msg}, nil)
			return
		}
		defer closeFn()
		cover = upload
	}

	created, err := nc.notebooks.Create(c.Request.Context(), name, cover)
	var nbID *int64
	if created != nil {
		nbID = activity.NotebookRef(created.ID)
	}
	nc.activity.Outcome(c.Request.Context(), entities.ActivityNotebook, "notebook_create", "Created "+name, nbID, err)
	if err != nil {
		nc.logger.Warn("notebook create failed", zap.String("name", name), zap.Error(err))
		nc.respond(c, notify.FromError(err), nil)
		return
	}
	nc.respond(c, notify.Success(fmt.Sprintf("Notebook %q created", name)), gin.H{"notebook": created})
}

func openCover(fh *multipart.FileHeader) (*api.Upload, func(), error) {
	if fh.Size > maxCoverUploadSize {
		return nil, nil, errCoverTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, nil, errCoverNotImage
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &api.Upload{Filename: fh.Filename, ContentType: contentType, Body: f}, func() { f.Close() }, nil
}

// Rename changes a notebook's name.
// POST /notebooks/:id/rename
func (nc *NotebooksController) Rename(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid notebook id")
		return
	}
	name := c.PostForm("name")

	err := nc.notebooks.Rename(c.Request.Context(), id, name)
	nc.activity.Outcome(c.Request.Context(), entities.ActivityNotebook, "notebook_rename", "Renamed to "+strings.TrimSpace(name), activity.NotebookRef(id), err)
	if err != nil {
		nc.respond(c, notify.FromError(err), nil)
		return
	}
	nc.respond(c, notify.Success("Notebook renamed"), nil)
}

// Delete removes a notebook and its words.
// POST /notebooks/:id/delete
func (nc *NotebooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid notebook id")
		return
	}
	nb, _ := nc.notebooks.Get(id)

	err := nc.notebooks.Delete(c.Request.Context(), id)
	nc.activity.Outcome(c.Request.Context(), entities.ActivityNotebook, "notebook_delete", "Deleted "+nb.Name, activity.NotebookRef(id), err)
	if err != nil {
		nc.respond(c, notify.FromError(err), nil)
		return
	}
	if nc.covers != nil {
		if err := nc.covers.InvalidateCover(id); err != nil {
			nc.logger.Warn("cover cache cleanup failed", zap.Int64("notebook_id", id), zap.Error(err))
		}
	}
	nc.respond(c, notify.Success("Notebook deleted"), nil)
}

// Copy duplicates a notebook with its words.
// POST /notebooks/:id/copy
func (nc *NotebooksController) Copy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid notebook id")
		return
	}
	nb, _ := nc.notebooks.Get(id)

	err := nc.notebooks.Copy(c.Request.Context(), id)
	nc.activity.Outcome(c.Request.Context(), entities.ActivityNotebook, "notebook_copy", "Copied "+nb.Name, activity.NotebookRef(id), err)
	if err != nil {
		nc.respond(c, notify.FromError(err), nil)
		return
	}
	nc.respond(c, notify.Success("Notebook copied"), nil)
}

// Select changes the notebook new words go into.
// POST /notebooks/select (form: id)
func (nc *NotebooksController) Select(c *gin.Context) {
	id, ok := parseFormID(c, "id")
	if !ok {
		nc.respond(c, notify.FromError(wordentry.ErrNoNotebook), nil)
		return
	}
	if err := nc.notebooks.Select(c.Request.Context(), id); err != nil {
		nc.respond(c, notify.FromError(err), nil)
		return
	}
	nc.respond(c, notify.Notice{}, nil)
}
