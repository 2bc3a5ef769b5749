package wordentry

import "github.com/mrlokans/wordbook/internal/entities"

// Focus is the entry field that has keyboard focus.
type Focus int

const (
	FocusSearch Focus = iota
	FocusTranslation
	FocusNote
)

func (f Focus) String() string {
	switch f {
	case FocusTranslation:
		return "translation"
	case FocusNote:
		return "note"
	default:
		return "search"
	}
}

// ParseFocus maps a form field name to a Focus; unknown names mean the search field.
func ParseFocus(s string) Focus {
	switch s {
	case "translation":
		return FocusTranslation
	case "note":
		return FocusNote
	default:
		return FocusSearch
	}
}

// Draft is the entry form state.
type Draft struct {
	Word        string
	Translation string
	Note        string
	Platform    entities.Platform
	UKPhonetic  string
	USPhonetic  string
	Focus       Focus
	Searching   bool
	Known       bool // the backend already has this word
}

func newDraft(platform entities.Platform) Draft {
	return Draft{Platform: platform, Focus: FocusSearch}
}
