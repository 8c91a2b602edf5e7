package similarity

import "sort"

const (
	// DefaultThreshold drops matches whose score is at or below this value.
	DefaultThreshold = 0.2
	// DefaultMaxMatches caps the number of matches returned per ingestion.
	DefaultMaxMatches = 5
)

// RankerConfig controls match filtering and truncation. The defaults mirror
// the product's fixed constants but are injectable for tuning and tests.
type RankerConfig struct {
	Threshold  float64
	MaxMatches int
}

// DefaultRankerConfig returns the standard threshold and cap.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{Threshold: DefaultThreshold, MaxMatches: DefaultMaxMatches}
}

// Match is one scored candidate from the user's corpus.
type Match struct {
	DocumentID string  `json:"docId"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
}

// Rank filters out candidates scoring at or below the threshold, sorts the
// rest descending by score (stable, so equal scores keep their input order),
// and truncates to the configured cap. Pure transformation, no I/O.
func Rank(candidates []Match, cfg RankerConfig) []Match {
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = DefaultMaxMatches
	}

	kept := make([]Match, 0, len(candidates))
	for _, m := range candidates {
		if m.Score > cfg.Threshold {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > cfg.MaxMatches {
		kept = kept[:cfg.MaxMatches]
	}
	return kept
}
