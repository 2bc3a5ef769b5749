package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, time.Second)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)

	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, 15*time.Second, c.httpClient.Timeout)
}

func TestClient_ListNotebooks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/notebooks", r.URL.Path)
		_, _ = w.Write([]byte(`{"notebooks":[
			{"id":2,"name":"GRE","created_at":"2024-05-02 08:00:00"},
			{"id":1,"name":"Daily","created_at":"2024-05-01 08:00:00","cover":"/covers/1.png"}
		]}`))
	})

	notebooks, err := c.ListNotebooks(context.Background())
	require.NoError(t, err)
	require.Len(t, notebooks, 2)
	assert.Equal(t, int64(2), notebooks[0].ID)
	assert.Equal(t, "Daily", notebooks[1].Name)
	assert.True(t, notebooks[1].HasCover())
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		code     string
		message  string
	}{
		{
			name:     "structured detail",
			status:   http.StatusNotFound,
			body:     `{"detail":{"code":"NOTEBOOK_NOT_FOUND","message":"missing"}}`,
			sentinel: ErrNotebookNotFound,
			code:     CodeNotebookNotFound,
			message:  "missing",
		},
		{
			name:     "word exists by code",
			status:   http.StatusBadRequest,
			body:     `{"detail":{"code":"WORD_EXISTS","message":"dup"}}`,
			sentinel: ErrWordExists,
			code:     CodeWordExists,
			message:  "dup",
		},
		{
			name:     "word exists by conflict status",
			status:   http.StatusConflict,
			body:     `{"detail":"already there"}`,
			sentinel: ErrWordExists,
			message:  "already there",
		},
		{
			name:     "validation list",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":[{"loc":["body","name"],"msg":"field required"}]}`,
			sentinel: ErrInvalidParams,
			code:     CodeInvalidParams,
		},
		{
			name:    "plain text body",
			status:  http.StatusBadGateway,
			body:    "upstream down",
			message: "upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.AddWord(context.Background(), 1, "apple", "苹果", "")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestClient_WordRequests(t *testing.T) {
	t.Run("delete escapes the word", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/notebooks/4/words/ice%20cream", r.URL.EscapedPath())
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		require.NoError(t, c.DeleteWord(context.Background(), 4, "ice cream"))
	})

	t.Run("move posts to the target notebook", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notebooks/7/words/move", r.URL.Path)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(3), body["sourceNotebookId"])
			assert.Equal(t, "apple", body["word"])
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		require.NoError(t, c.MoveWord(context.Background(), 7, 3, "apple"))
	})

	t.Run("list words sends paging", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			assert.Equal(t, "40", r.URL.Query().Get("offset"))
			_, _ = w.Write([]byte(`{"words":[{"word":"apple","definition":"苹果","note":"","add_time":"2024-05-01T10:00:00"}],"total":41}`))
		})

		page, err := c.ListWords(context.Background(), 1, ListWordsOptions{Limit: 20, Offset: 40})
		require.NoError(t, err)
		assert.Equal(t, 41, page.Total)
		require.Len(t, page.Words, 1)
		assert.Equal(t, "苹果", page.Words[0].Definition)
	})

	t.Run("translate passes the platform code", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/translate", r.URL.Path)
			assert.Equal(t, "cat", r.URL.Query().Get("word"))
			assert.Equal(t, "bing", r.URL.Query().Get("platform"))
			_, _ = w.Write([]byte(`{"word":"cat","translation":"n. 猫","uk_pronoun":"kæt","us_pronoun":"kæt"}`))
		})

		tr, err := c.Translate(context.Background(), "cat", entities.PlatformBing)
		require.NoError(t, err)
		assert.Equal(t, "n. 猫", tr.Translation)
		assert.Equal(t, "kæt", tr.UKPhonetic)
	})

	t.Run("empty word never reaches the server", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request %s", r.URL.Path)
		})

		_, err := c.LookupWord(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrEmptyWord)
	})
}

func TestClient_Download(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		expected    string
	}{
		{"plain filename", `attachment; filename="GRE.xlsx"`, "GRE.xlsx"},
		{"encoded filename wins", `attachment; filename="fallback.xlsx"; filename*=UTF-8''%E8%AF%8D%E6%9C%AC.xlsx`, "词本.xlsx"},
		{"missing header", "", DefaultNotebookExportName},
		{"garbage header", `attachment; filename="unterminated`, DefaultNotebookExportName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/notebooks/5/export", r.URL.Path)
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				_, _ = w.Write([]byte("xlsx-bytes"))
			})

			dl, err := c.ExportNotebook(context.Background(), 5)
			require.NoError(t, err)
			defer dl.Body.Close()

			assert.Equal(t, tt.expected, dl.Filename)
			body, err := io.ReadAll(dl.Body)
			require.NoError(t, err)
			assert.Equal(t, "xlsx-bytes", string(body))
		})
	}
}

func TestClient_UploadCover(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload/cover", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "png-bytes", string(data))
		_, _ = w.Write([]byte(`{"url":"/static/covers/abc.png"}`))
	})

	url, err := c.UploadCover(context.Background(), Upload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/static/covers/abc.png", url)
}

func TestClient_ImportAllFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":{"code":"DATABASE_ERROR","message":"bad archive"}}`))
	})

	err := c.ImportAll(context.Background(), Upload{Filename: "backup.zip", Body: strings.NewReader("zip")})
	require.Error(t, err)
	assert.True(t, IsServerError(err))
}
