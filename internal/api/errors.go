package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes the backend puts in detail.code.
const (
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeNotebookNotFound = "NOTEBOOK_NOT_FOUND"
	CodeInvalidParams    = "INVALID_PARAMS"
	CodeSearchError      = "SEARCH_ERROR"
	CodeWordExists       = "WORD_EXISTS"
)

var (
	ErrWordExists       = errors.New("word already exists in notebook")
	ErrNotebookNotFound = errors.New("notebook not found")
	ErrInvalidParams    = errors.New("invalid request parameters")
	ErrEmptyWord        = errors.New("word is empty")
)

// Error is a non-2xx response from the wordbook backend.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("backend error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("backend error %d", e.StatusCode)
	}
}

// Is maps backend codes onto the package sentinels so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrWordExists:
		return e.Code == CodeWordExists || e.StatusCode == http.StatusConflict
	case ErrNotebookNotFound:
		return e.Code == CodeNotebookNotFound
	case ErrInvalidParams:
		return e.Code == CodeInvalidParams
	}
	return false
}

// IsServerError reports whether the backend answered with a 5xx.
func IsServerError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError
}
