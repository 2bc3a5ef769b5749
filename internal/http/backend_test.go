package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrlokans/wordbook/internal/entities"
)

// fakeBackend is an in-memory wordbook server speaking the REST contract the
// api client expects.
type fakeBackend struct {
	mu            sync.Mutex
	nextID        int64
	notebooks     []entities.Notebook // newest first
	words         map[int64][]entities.WordEntry
	translations  map[string]entities.Translation
	failTranslate bool
	failList      bool
	imported      []byte
	importName    string
	exportBody    string
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		words: make(map[int64][]entities.WordEntry),
		translations: map[string]entities.Translation{
			"hello": {Word: "hello", Translation: "int. hi", UKPhonetic: "həˈləʊ", USPhonetic: "həˈloʊ"},
			"apple": {Word: "apple", Translation: "n. a fruit"},
		},
		exportBody: "spreadsheet-bytes",
	}
	srv := httptest.NewServer(fb.routes())
	t.Cleanup(srv.Close)
	return fb, srv
}

// addNotebook seeds a notebook and returns its id.
func (fb *fakeBackend) addNotebook(name string, words ...string) int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	nb := entities.Notebook{ID: fb.nextID, Name: name, CreatedAt: entities.Timestamp{Time: time.Now().UTC()}}
	fb.notebooks = append([]entities.Notebook{nb}, fb.notebooks...)
	for _, w := range words {
		fb.words[nb.ID] = append([]entities.WordEntry{{Word: w, Definition: "def of " + w}}, fb.words[nb.ID]...)
	}
	return nb.ID
}

func (fb *fakeBackend) notebook(id int64) (entities.Notebook, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, nb := range fb.notebooks {
		if nb.ID == id {
			return nb, true
		}
	}
	return entities.Notebook{}, false
}

func (fb *fakeBackend) notebookNames() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	names := make([]string, 0, len(fb.notebooks))
	for _, nb := range fb.notebooks {
		names = append(names, nb.Name)
	}
	return names
}

func (fb *fakeBackend) wordsOf(id int64) []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, 0, len(fb.words[id]))
	for _, w := range fb.words[id] {
		out = append(out, w.Word)
	}
	return out
}

func (fb *fakeBackend) indexLocked(id int64) int {
	for i, nb := range fb.notebooks {
		if nb.ID == id {
			return i
		}
	}
	return -1
}

func (fb *fakeBackend) hasWordLocked(id int64, word string) bool {
	for _, w := range fb.words[id] {
		if w.Word == word {
			return true
		}
	}
	return false
}

func (fb *fakeBackend) removeWordLocked(id int64, word string) (entities.WordEntry, bool) {
	for i, w := range fb.words[id] {
		if w.Word == word {
			fb.words[id] = append(fb.words[id][:i:i], fb.words[id][i+1:]...)
			return w, true
		}
	}
	return entities.WordEntry{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"detail": map[string]string{"code": code, "message": message}})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (fb *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/notebooks", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if fb.failList {
			writeDetail(w, http.StatusInternalServerError, "DATABASE_ERROR", "locked")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notebooks": fb.notebooks})
	})

	mux.HandleFunc("POST /api/notebooks", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Cover string `json:"cover"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "INVALID_PARAMS", "name required")
			return
		}
		id := fb.addNotebook(req.Name)
		fb.mu.Lock()
		fb.notebooks[fb.indexLocked(id)].Cover = req.Cover
		nb := fb.notebooks[fb.indexLocked(id)]
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, nb)
	})

	mux.HandleFunc("PUT /api/notebooks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		var req struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		i := fb.indexLocked(id)
		if i < 0 {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		fb.notebooks[i].Name = req.Name
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("DELETE /api/notebooks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		i := fb.indexLocked(id)
		if i < 0 {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		fb.notebooks = append(fb.notebooks[:i:i], fb.notebooks[i+1:]...)
		delete(fb.words, id)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("POST /api/notebooks/{id}/copy", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		src, ok := fb.notebook(id)
		if !ok {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		newID := fb.addNotebook(src.Name + " (copy)")
		fb.mu.Lock()
		fb.words[newID] = append([]entities.WordEntry(nil), fb.words[id]...)
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("GET /api/notebooks/{id}/words", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if fb.indexLocked(id) < 0 {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		all := fb.words[id]
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page := []entities.WordEntry{}
		if offset < len(all) {
			page = all[offset:]
		}
		if limit > 0 && limit < len(page) {
			page = page[:limit]
		}
		writeJSON(w, http.StatusOK, entities.WordPage{Words: page, Total: len(all)})
	})

	mux.HandleFunc("POST /api/notebooks/{id}/words", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		var req struct {
			Word       string `json:"word"`
			Definition string `json:"definition"`
			Note       string `json:"note"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if fb.indexLocked(id) < 0 {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		if fb.hasWordLocked(id, req.Word) {
			writeDetail(w, http.StatusConflict, "WORD_EXISTS", "word already exists")
			return
		}
		entry := entities.WordEntry{Word: req.Word, Definition: req.Definition, Note: req.Note, AddTime: entities.Timestamp{Time: time.Now().UTC()}}
		fb.words[id] = append([]entities.WordEntry{entry}, fb.words[id]...)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "word": entry})
	})

	mux.HandleFunc("DELETE /api/notebooks/{id}/words/{word}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.removeWordLocked(id, r.PathValue("word")); !ok {
			writeDetail(w, http.StatusNotFound, "WORD_NOT_FOUND", "no such word")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	transfer := func(move bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			target, _ := pathID(r)
			var req struct {
				SourceNotebookID int64  `json:"sourceNotebookId"`
				Word             string `json:"word"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			fb.mu.Lock()
			defer fb.mu.Unlock()
			if fb.indexLocked(target) < 0 {
				writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
				return
			}
			var entry entities.WordEntry
			var ok bool
			if move {
				entry, ok = fb.removeWordLocked(req.SourceNotebookID, req.Word)
			} else {
				for _, e := range fb.words[req.SourceNotebookID] {
					if e.Word == req.Word {
						entry, ok = e, true
					}
				}
			}
			if !ok {
				writeDetail(w, http.StatusNotFound, "WORD_NOT_FOUND", "no such word")
				return
			}
			if !fb.hasWordLocked(target, entry.Word) {
				fb.words[target] = append([]entities.WordEntry{entry}, fb.words[target]...)
			}
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		}
	}
	mux.HandleFunc("POST /api/notebooks/{id}/words/move", transfer(true))
	mux.HandleFunc("POST /api/notebooks/{id}/words/copy", transfer(false))

	mux.HandleFunc("GET /api/words/search", func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		fb.mu.Lock()
		defer fb.mu.Unlock()
		found := []entities.WordEntry{}
		for _, nb := range fb.notebooks {
			for _, e := range fb.words[nb.ID] {
				if strings.Contains(e.Word, keyword) {
					found = append(found, e)
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"words": found})
	})

	mux.HandleFunc("GET /api/words/{word}", func(w http.ResponseWriter, r *http.Request) {
		word := r.PathValue("word")
		fb.mu.Lock()
		defer fb.mu.Unlock()
		for _, nb := range fb.notebooks {
			for _, e := range fb.words[nb.ID] {
				if e.Word == word {
					writeJSON(w, http.StatusOK, entities.WordLookup{Exists: true, Definition: e.Definition, Note: e.Note})
					return
				}
			}
		}
		writeJSON(w, http.StatusOK, entities.WordLookup{})
	})

	mux.HandleFunc("GET /api/translate", func(w http.ResponseWriter, r *http.Request) {
		word := r.URL.Query().Get("word")
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if fb.failTranslate {
			writeDetail(w, http.StatusBadGateway, "TRANSLATE_ERROR", "upstream down")
			return
		}
		tr, ok := fb.translations[word]
		if !ok {
			tr = entities.Translation{Word: word, Translation: "translation of " + word}
		}
		writeJSON(w, http.StatusOK, tr)
	})

	mux.HandleFunc("GET /api/notebooks/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		nb, ok := fb.notebook(id)
		if !ok {
			writeDetail(w, http.StatusNotFound, "NOTEBOOK_NOT_FOUND", "no such notebook")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, nb.Name))
		_, _ = io.WriteString(w, fb.exportBody)
	})

	mux.HandleFunc("GET /api/export-db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="backup.zip"`)
		_, _ = io.WriteString(w, "zip-bytes")
	})

	mux.HandleFunc("POST /api/import", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "INVALID_PARAMS", "file required")
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		fb.mu.Lock()
		fb.imported = data
		fb.importName = header.Filename
		fb.notebooks = nil
		fb.words = make(map[int64][]entities.WordEntry)
		fb.mu.Unlock()
		fb.addNotebook("Imported")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("POST /api/upload/cover", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "INVALID_PARAMS", "file required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": "/static/covers/" + header.Filename})
	})

	return mux
}
