package review

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ReviewSort selects how one anime's reviews are ordered.
type ReviewSort string

const (
	SortByVotes ReviewSort = "votes"
	SortByViews ReviewSort = "views"
)

var ErrInvalidSort = errors.New("invalid sort")

// ParseReviewSort defaults to SortByVotes when s is empty.
func ParseReviewSort(s string) (ReviewSort, error) {
	switch ReviewSort(s) {
	case "", SortByVotes:
		return SortByVotes, nil
	case SortByViews:
		return SortByViews, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
}

// RankKey carries the fields review ordering depends on.
type RankKey struct {
	ID        int64
	UpCount   int64
	DownCount int64
	ViewCount int64
	CreatedAt time.Time
}

// Score is up votes minus down votes.
func (k RankKey) Score() int64 {
	return k.UpCount - k.DownCount
}

// SortReviews orders items in place. Ties on the primary key fall back to
// newest first, then to the higher id.
func SortReviews[T any](items []T, by ReviewSort, key func(T) RankKey) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		var c int
		switch by {
		case SortByViews:
			c = cmp.Compare(kb.ViewCount, ka.ViewCount)
		default:
			c = cmp.Compare(kb.Score(), ka.Score())
		}
		if c != 0 {
			return c
		}
		if c = kb.CreatedAt.Compare(ka.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(kb.ID, ka.ID)
	})
}

// Scored is one review's contribution to an anime aggregate.
type Scored struct {
	Tier   Tier
	Rating float64
}

// Aggregate summarises every review of a single anime.
type Aggregate struct {
	Tier        Tier    `json:"tier"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

func Aggregated(scores []Scored) Aggregate {
	tiers := make([]Tier, 0, len(scores))
	ratings := make([]float64, 0, len(scores))
	for _, s := range scores {
		tiers = append(tiers, s.Tier)
		ratings = append(ratings, s.Rating)
	}
	return Aggregate{
		Tier:        ModeTier(tiers),
		Rating:      AverageRating(ratings),
		ReviewCount: len(scores),
	}
}

// VoteType is the direction of a review vote.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

var ErrInvalidVote = errors.New("invalid vote type")

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteUp, VoteDown:
		return VoteType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVote, s)
}

// NextVote applies a vote request to the user's current vote: repeating the
// same direction clears it, anything else replaces it. nil means no vote.
func NextVote(current *VoteType, requested VoteType) *VoteType {
	if current != nil && *current == requested {
		return nil
	}
	next := requested
	return &next
}
