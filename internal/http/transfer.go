package http

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/notify"
)

// maxImportSize caps a backup archive upload.
const maxImportSize = 100 << 20

// TransferController proxies spreadsheet/archive exports and the destructive
// archive import.
type TransferController struct {
	*uiState
	transfer Transfer
}

func NewTransferController(state *uiState, transfer Transfer) *TransferController {
	return &TransferController{uiState: state, transfer: transfer}
}

// ExportNotebook downloads one notebook as a spreadsheet.
// GET /notebooks/:id/export
func (tc *TransferController) ExportNotebook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid notebook id")
		return
	}
	dl, err := tc.transfer.ExportNotebook(c.Request.Context(), id)
	tc.activity.Outcome(c.Request.Context(), entities.ActivityTransfer, "notebook_export", "Exported notebook", activity.NotebookRef(id), err)
	tc.serveDownload(c, dl, err)
}

// ExportAll downloads the whole backend as an archive.
// GET /export
func (tc *TransferController) ExportAll(c *gin.Context) {
	dl, err := tc.transfer.ExportAll(c.Request.Context())
	tc.activity.Outcome(c.Request.Context(), entities.ActivityTransfer, "export_all", "Exported all notebooks", nil, err)
	tc.serveDownload(c, dl, err)
}

func (tc *TransferController) serveDownload(c *gin.Context, dl *api.Download, err error) {
	if err != nil {
		tc.logger.Warn("export failed", zap.Error(err))
		setFlash(c, tc.sessions, notify.FromError(err))
		c.Redirect(http.StatusSeeOther, tc.location())
		return
	}
	defer dl.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename})
	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Import replaces every notebook with the uploaded archive. The form must
// carry confirm=yes.
// POST /import (multipart: file, confirm)
func (tc *TransferController) Import(c *gin.Context) {
	if c.PostForm("confirm") != "yes" {
		tc.respond(c, notify.Notice{
			Level:   notify.LevelError,
			Message: "Importing replaces all notebooks. Tick the confirmation box to continue.",
		}, nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		tc.respond(c, notify.Notice{Level: notify.LevelError, Message: "Please choose a backup file"}, nil)
		return
	}
	if fh.Size > maxImportSize {
		tc.respond(c, notify.Notice{Level: notify.LevelError, Message: "Backup file is too large"}, nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		tc.respond(c, notify.Notice{Level: notify.LevelError, Message: "Could not read the backup file"}, nil)
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	err = tc.transfer.ImportAll(ctx, api.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	tc.activity.Outcome(ctx, entities.ActivityTransfer, "import_all", "Imported "+fh.Filename, nil, err)
	if err != nil {
		tc.logger.Warn("import failed", zap.String("file", fh.Filename), zap.Error(err))
		tc.respond(c, notify.FromError(err), nil)
		return
	}

	// Everything on screen may be gone now.
	tc.shell.ShowGrid()
	if err := tc.notebooks.Refresh(ctx); err != nil {
		tc.logger.Warn("refresh after import failed", zap.Error(err))
	}
	tc.respond(c, notify.Success("Import complete"), nil)
}
