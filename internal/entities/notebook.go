package entities

import "strings"

// Notebook mirrors a row of the backend's notebook list.
type Notebook struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"created_at"`
	Cover     string    `json:"cover,omitempty"` // Remote URL, empty when no cover was uploaded
}

func (n Notebook) HasCover() bool {
	return strings.TrimSpace(n.Cover) != ""
}

// WordEntry is a word as stored in one notebook.
type WordEntry struct {
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	Note       string    `json:"note"`
	AddTime    Timestamp `json:"add_time"`
}

// WordLookup is the backend's answer to "do we already know this word".
type WordLookup struct {
	Exists     bool   `json:"exists"`
	Definition string `json:"definition"`
	Note       string `json:"note"`
}

// Translation is one dictionary result from a translation platform.
type Translation struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	UKPhonetic  string `json:"uk_pronoun"`
	USPhonetic  string `json:"us_pronoun"`
}

// WordPage is one page of a notebook's word list.
type WordPage struct {
	Words []WordEntry `json:"words"`
	Total int         `json:"total"`
}
