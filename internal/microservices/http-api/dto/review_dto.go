package dto

import (
	"time"

	"anilog/internal/review"
)

// CreateReviewRequest: either AnimeID names an existing anime or AnimeTitle
// creates a new one together with the review.
type CreateReviewRequest struct {
	AnimeID     *int64   `json:"animeId"`
	AnimeTitle  string   `json:"animeTitle" binding:"omitempty,max=200"`
	CoverImage  *string  `json:"coverImage" binding:"omitempty,max=500"`
	SeriesID    *int64   `json:"seriesId"`
	CategoryIDs []int64  `json:"categoryIds"`
	Tier        string   `json:"tier" binding:"required"`
	Rating      *float64 `json:"rating" binding:"required"`
	OneLiner    string   `json:"oneLiner" binding:"max=200"`
	Content     string   `json:"content" binding:"max=20000"`
	IsAnonymous bool     `json:"isAnonymous"`
}

// UpdateReviewRequest: anonymity cannot be changed after posting
type UpdateReviewRequest struct {
	Tier     *string  `json:"tier"`
	Rating   *float64 `json:"rating"`
	OneLiner *string  `json:"oneLiner" binding:"omitempty,max=200"`
	Content  *string  `json:"content" binding:"omitempty,max=20000"`
}

type ReviewResponse struct {
	ID           int64            `json:"id"`
	AnimeID      int64            `json:"animeId"`
	AnimeTitle   string           `json:"animeTitle"`
	UserID       string           `json:"userId,omitempty"`
	Author       string           `json:"author"`
	ProfileImage string           `json:"profileImage"`
	IsAnonymous  bool             `json:"isAnonymous"`
	IsMine       bool             `json:"isMine"`
	Tier         review.Tier      `json:"tier"`
	Rating       float64          `json:"rating"`
	OneLiner     string           `json:"oneLiner"`
	Content      string           `json:"content"`
	ContentHTML  string           `json:"contentHtml,omitempty"`
	ViewCount    int64            `json:"viewCount"`
	UpCount      int64            `json:"upCount"`
	DownCount    int64            `json:"downCount"`
	CommentCount int64            `json:"commentCount"`
	MyVote       *review.VoteType `json:"myVote"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ReviewDetailResponse: a single review with the anime it belongs to
type ReviewDetailResponse struct {
	ReviewResponse
	Anime   AnimeCard    `json:"anime"`
	Series  *SeriesBrief `json:"series,omitempty"`
	Related []AnimeCard  `json:"related"`
}

type AnimeReviewsResponse struct {
	Anime   AnimeCard        `json:"anime"`
	Sort    string           `json:"sort"`
	Reviews []ReviewResponse `json:"reviews"`
}

type VoteRequest struct {
	VoteType string `json:"voteType" binding:"required,oneof=up down"`
}

type VoteResponse struct {
	Vote      *review.VoteType `json:"vote"`
	UpCount   int64            `json:"upCount"`
	DownCount int64            `json:"downCount"`
}

type UserVoteResponse struct {
	Vote *review.VoteType `json:"vote"`
}
