package models

// Match types for whitelist patterns.
const (
	MatchExact = "exact"
	MatchRegex = "regex"
)

// WhitelistEntry is one row of a list_whitelist response.
type WhitelistEntry struct {
	ID        int64  `json:"id"`
	Pattern   string `json:"pattern"`
	MatchType string `json:"match_type"`
	Reason    string `json:"reason,omitempty"`
}
