package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mrlokans/wordbook/internal/entities"
)

type notebookListResponse struct {
	Notebooks []entities.Notebook `json:"notebooks"`
}

type createNotebookRequest struct {
	Name  string `json:"name"`
	Cover string `json:"cover,omitempty"`
}

type renameNotebookRequest struct {
	Name string `json:"name"`
}

func notebookPath(id int64) string {
	return "/api/notebooks/" + strconv.FormatInt(id, 10)
}

// ListNotebooks returns all notebooks in server order (newest first).
func (c *Client) ListNotebooks(ctx context.Context) ([]entities.Notebook, error) {
	var resp notebookListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/notebooks", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list notebooks: %w", err)
	}
	if resp.Notebooks == nil {
		resp.Notebooks = []entities.Notebook{}
	}
	return resp.Notebooks, nil
}

// CreateNotebook creates a notebook. cover is an already uploaded image URL or empty.
func (c *Client) CreateNotebook(ctx context.Context, name, cover string) (*entities.Notebook, error) {
	var nb entities.Notebook
	req := createNotebookRequest{Name: name, Cover: cover}
	if err := c.doJSON(ctx, http.MethodPost, "/api/notebooks", nil, req, &nb); err != nil {
		return nil, fmt.Errorf("failed to create notebook: %w", err)
	}
	return &nb, nil
}

func (c *Client) RenameNotebook(ctx context.Context, id int64, name string) error {
	if err := c.doJSON(ctx, http.MethodPut, notebookPath(id), nil, renameNotebookRequest{Name: name}, nil); err != nil {
		return fmt.Errorf("failed to rename notebook %d: %w", id, err)
	}
	return nil
}

// DeleteNotebook removes a notebook; the backend cascades to its word entries.
func (c *Client) DeleteNotebook(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, notebookPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete notebook %d: %w", id, err)
	}
	return nil
}

// CopyNotebook duplicates a notebook server-side. The copy gets a new id.
func (c *Client) CopyNotebook(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPost, notebookPath(id)+"/copy", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to copy notebook %d: %w", id, err)
	}
	return nil
}
