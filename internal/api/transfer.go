package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/mrlokans/wordbook/internal/utils"
)

const (
	DefaultNotebookExportName = "notebook.xlsx"
	DefaultBackupName         = "wordbook-backup.zip"
)

// Download is a streamed binary response. The caller must close Body.
type Download struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.ReadCloser
}

// Upload is a file to send as multipart field "file".
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type uploadCoverResponse struct {
	URL string `json:"url"`
}

// ExportNotebook downloads one notebook as a spreadsheet.
func (c *Client) ExportNotebook(ctx context.Context, id int64) (*Download, error) {
	dl, err := c.download(ctx, notebookPath(id)+"/export", DefaultNotebookExportName)
	if err != nil {
		return nil, fmt.Errorf("failed to export notebook %d: %w", id, err)
	}
	return dl, nil
}

// ExportAll downloads the whole backend database archive.
func (c *Client) ExportAll(ctx context.Context) (*Download, error) {
	dl, err := c.download(ctx, "/api/export-db", DefaultBackupName)
	if err != nil {
		return nil, fmt.Errorf("failed to export database: %w", err)
	}
	return dl, nil
}

// ImportAll replaces the backend's data with the archive. This is destructive.
func (c *Client) ImportAll(ctx context.Context, archive Upload) error {
	if err := c.upload(ctx, "/api/import", archive, nil); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	return nil
}

// UploadCover stores a cover image and returns the URL to pass to CreateNotebook.
func (c *Client) UploadCover(ctx context.Context, image Upload) (string, error) {
	var resp uploadCoverResponse
	if err := c.upload(ctx, "/api/upload/cover", image, &resp); err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}
	if resp.URL == "" {
		return "", fmt.Errorf("failed to upload cover: empty url in response")
	}
	return resp.URL, nil
}

func (c *Client) download(ctx context.Context, path, fallbackName string) (*Download, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Download{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: contentType,
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}, nil
}

func (c *Client) upload(ctx context.Context, path string, file Upload, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(filePartHeader(file))
		if err == nil {
			_, err = io.Copy(part, file.Body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.do(ctx, http.MethodPost, path, nil, pr, mw.FormDataContentType())
	if err != nil {
		pr.CloseWithError(err)
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp.Body, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(file Upload) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := utils.SanitizeFilename(file.Filename, "upload")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	return h
}

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header, preferring the RFC 5987 filename* form.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	return utils.SanitizeFilename(params["filename"], fallback)
}
