package notebooks

import "strings"

// StalePolicy decides whether a refresh response may replace the cache.
type StalePolicy int

const (
	// LastCompletedWins applies every response; the one that completes last
	// determines the state.
	LastCompletedWins StalePolicy = iota
	// LatestIssuedWins drops responses to requests issued before the newest
	// already-applied one.
	LatestIssuedWins
)

func (p StalePolicy) accepts(seq, applied uint64) bool {
	if p == LatestIssuedWins {
		return seq > applied
	}
	return true
}

func (p StalePolicy) String() string {
	if p == LatestIssuedWins {
		return "issue"
	}
	return "completion"
}

// ParseStalePolicy maps the configuration value; unknown values mean LastCompletedWins.
func ParseStalePolicy(s string) StalePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "issue") {
		return LatestIssuedWins
	}
	return LastCompletedWins
}
