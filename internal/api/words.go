package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

type addWordRequest struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Note       string `json:"note"`
}

type addWordResponse struct {
	Success bool               `json:"success"`
	Word    entities.WordEntry `json:"word"`
}

type transferWordRequest struct {
	SourceNotebookID int64  `json:"sourceNotebookId"`
	Word             string `json:"word"`
}

type searchResponse struct {
	Words []entities.WordEntry `json:"words"`
}

// ListWordsOptions pages the word list. Zero values mean "no limit" / "from start".
type ListWordsOptions struct {
	Limit  int
	Offset int
}

func wordsPath(notebookID int64) string {
	return notebookPath(notebookID) + "/words"
}

// ListWords returns one page of a notebook's words, newest first, plus the total count.
func (c *Client) ListWords(ctx context.Context, notebookID int64, opts ListWordsOptions) (*entities.WordPage, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var page entities.WordPage
	if err := c.doJSON(ctx, http.MethodGet, wordsPath(notebookID), query, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list words of notebook %d: %w", notebookID, err)
	}
	if page.Words == nil {
		page.Words = []entities.WordEntry{}
	}
	return &page, nil
}

// AddWord stores word in the notebook. A duplicate surfaces as ErrWordExists.
func (c *Client) AddWord(ctx context.Context, notebookID int64, word, definition, note string) (*entities.WordEntry, error) {
	var resp addWordResponse
	req := addWordRequest{Word: word, Definition: definition, Note: note}
	if err := c.doJSON(ctx, http.MethodPost, wordsPath(notebookID), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to add %q: %w", word, err)
	}
	return &resp.Word, nil
}

func (c *Client) DeleteWord(ctx context.Context, notebookID int64, word string) error {
	path := wordsPath(notebookID) + "/" + url.PathEscape(word)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete %q: %w", word, err)
	}
	return nil
}

// MoveWord moves word from sourceID into targetID.
func (c *Client) MoveWord(ctx context.Context, targetID, sourceID int64, word string) error {
	req := transferWordRequest{SourceNotebookID: sourceID, Word: word}
	if err := c.doJSON(ctx, http.MethodPost, wordsPath(targetID)+"/move", nil, req, nil); err != nil {
		return fmt.Errorf("failed to move %q to notebook %d: %w", word, targetID, err)
	}
	return nil
}

// CopyWord copies word from sourceID into targetID.
func (c *Client) CopyWord(ctx context.Context, targetID, sourceID int64, word string) error {
	req := transferWordRequest{SourceNotebookID: sourceID, Word: word}
	if err := c.doJSON(ctx, http.MethodPost, wordsPath(targetID)+"/copy", nil, req, nil); err != nil {
		return fmt.Errorf("failed to copy %q to notebook %d: %w", word, targetID, err)
	}
	return nil
}

// LookupWord asks whether the word is already known and returns its stored note.
func (c *Client) LookupWord(ctx context.Context, word string) (*entities.WordLookup, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrEmptyWord
	}
	var lookup entities.WordLookup
	if err := c.doJSON(ctx, http.MethodGet, "/api/words/"+url.PathEscape(word), nil, nil, &lookup); err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", word, err)
	}
	return &lookup, nil
}

// Translate fetches a translation from platform.
func (c *Client) Translate(ctx context.Context, word string, platform entities.Platform) (*entities.Translation, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrEmptyWord
	}
	if !platform.Valid() {
		platform = entities.PlatformYoudao
	}
	query := url.Values{}
	query.Set("word", word)
	query.Set("platform", string(platform))

	var tr entities.Translation
	if err := c.doJSON(ctx, http.MethodGet, "/api/translate", query, nil, &tr); err != nil {
		return nil, fmt.Errorf("failed to translate %q: %w", word, err)
	}
	return &tr, nil
}

// SearchWords finds words across all notebooks matching keyword.
func (c *Client) SearchWords(ctx context.Context, keyword string) ([]entities.WordEntry, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyWord
	}
	query := url.Values{}
	query.Set("keyword", keyword)

	var resp searchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/words/search", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", keyword, err)
	}
	if resp.Words == nil {
		resp.Words = []entities.WordEntry{}
	}
	return resp.Words, nil
}
