package utils

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

const maxFilenameBytes = 200

// SanitizeFilename makes a server-supplied download name safe to hand to a
// browser or write to disk. Directory components are dropped. An empty result
// is replaced with fallback.
func SanitizeFilename(filename, fallback string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	filename = path.Base(filename)
	if filename == "." || filename == "/" {
		filename = ""
	}

	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)
	filename = strings.TrimLeft(filename, ".")

	if len(filename) > maxFilenameBytes {
		ext := path.Ext(filename)
		if len(ext) > 10 {
			ext = ""
		}
		filename = truncateUTF8(filename[:len(filename)-len(ext)], maxFilenameBytes-len(ext)) + ext
	}

	if filename == "" {
		return fallback
	}
	return filename
}

// Truncate shortens s to at most max bytes without splitting a rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return truncateUTF8(s, max)
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
