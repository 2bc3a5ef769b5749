package entities

import "strings"

// Platform identifies a translation source the backend can query.
type Platform string

const (
	PlatformYoudao Platform = "youdao"
	PlatformBing   Platform = "bing"
)

var platformLabels = map[Platform]string{
	PlatformYoudao: "有道翻译",
	PlatformBing:   "必应词典",
}

// Platforms lists every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformYoudao, PlatformBing}
}

func (p Platform) Label() string {
	if label, ok := platformLabels[p]; ok {
		return label
	}
	return string(p)
}

func (p Platform) Valid() bool {
	_, ok := platformLabels[p]
	return ok
}

// ParsePlatform accepts a platform code or its display label.
func ParsePlatform(s string) (Platform, bool) {
	s = strings.TrimSpace(s)
	if p := Platform(strings.ToLower(s)); p.Valid() {
		return p, true
	}
	for p, label := range platformLabels {
		if label == s {
			return p, true
		}
	}
	return "", false
}
