package review

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Tier is the grade a single review gives an anime, best to worst SSS..E.
type Tier string

const (
	TierSSS Tier = "SSS"
	TierSS  Tier = "SS"
	TierS   Tier = "S"
	TierA   Tier = "A"
	TierB   Tier = "B"
	TierC   Tier = "C"
	TierD   Tier = "D"
	TierE   Tier = "E"
)

// Tiers lists every tier from best to worst.
var Tiers = []Tier{TierSSS, TierSS, TierS, TierA, TierB, TierC, TierD, TierE}

var ErrInvalidTier = errors.New("invalid tier")

// ParseTier accepts a tier label case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Rank is the position of t in Tiers (0 is best), or -1 for an unknown tier.
func (t Tier) Rank() int {
	for i, candidate := range Tiers {
		if candidate == t {
			return i
		}
	}
	return -1
}

func (t Tier) String() string {
	return string(t)
}

// ModeTier returns the most frequent tier. Among tiers sharing the highest
// count the best one wins, so the result does not depend on input order.
// Unknown tiers are ignored; an empty input yields "".
func ModeTier(tiers []Tier) Tier {
	counts := make([]int, len(Tiers))
	for _, t := range tiers {
		if r := t.Rank(); r >= 0 {
			counts[r]++
		}
	}

	best, bestCount := -1, 0
	for rank, count := range counts {
		if count > bestCount {
			best, bestCount = rank, count
		}
	}
	if best < 0 {
		return ""
	}
	return Tiers[best]
}

// RoundRating rounds to one decimal place, half away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// AverageRating is the mean of ratings rounded to one decimal; 0 when empty.
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return RoundRating(sum / float64(len(ratings)))
}

// ValidRating reports whether r is inside the accepted 0.0..10.0 range.
func ValidRating(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 10
}
