package player

import (
	"strconv"
	"strings"
)

// Query describes one batter whose Hall of Fame case we narrate.
// The numeric fields come straight from the upstream stats model, which is
// why they are floats even where whole numbers would do.
type Query struct {
	FullPlayerName           string  `json:"FullPlayerName"`
	YearsPlayed              float64 `json:"YearsPlayed"`
	HR                       float64 `json:"HR"`
	TotalPlayerAwards        float64 `json:"TotalPlayerAwards"`
	HallOfFameProbability    float64 `json:"HallOfFameProbability"`
	ReturnResponseAsMarkdown bool    `json:"ReturnResponseAsMarkdown,omitempty"`
}

// Fingerprint returns the canonical representation of the query used as
// cache-key material: all five stat fields joined with "-". Two queries with
// identical field values always produce the same fingerprint, in every
// process; the markdown flag is presentation-only and excluded.
func (q Query) Fingerprint() string {
	parts := []string{
		q.FullPlayerName,
		formatStat(q.YearsPlayed),
		formatStat(q.HR),
		formatStat(q.TotalPlayerAwards),
		formatStat(q.HallOfFameProbability),
	}
	return strings.Join(parts, "-")
}

// SearchString returns the web-search query derived from the player name.
func (q Query) SearchString() string {
	return q.FullPlayerName + " baseball Hall of Fame"
}

// formatStat renders a numeric field in a fixed, locale-independent way.
// 'g' with precision -1 prints whole floats without a trailing ".0", so
// 21 years comes out as "21", not "21.0".
func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
