package dto

import "time"

// CreateCommentDTO for creating a comment or a reply
type CreateCommentDTO struct {
	Content     string  `json:"content" binding:"required"`
	ParentID    *int64  `json:"parentId"`
	IsAnonymous bool    `json:"isAnonymous"`
	TierRequest *string `json:"tierRequest"`
}

// CommentResponse: anonymous comments never carry userId or profileImage
type CommentResponse struct {
	ID             int64     `json:"id"`
	ReviewID       int64     `json:"reviewId"`
	ParentID       *int64    `json:"parentId"`
	UserID         string    `json:"userId,omitempty"`
	Author         string    `json:"author"`
	ProfileImage   string    `json:"profileImage,omitempty"`
	IsAnonymous    bool      `json:"isAnonymous"`
	AnonNumber     *int      `json:"anonNumber,omitempty"`
	IsReviewAuthor bool      `json:"isReviewAuthor"`
	IsMine         bool      `json:"isMine"`
	Content        string    `json:"content"`
	TierRequest    *string   `json:"tierRequest,omitempty"`
	VoteCount      int64     `json:"voteCount"`
	IsVoted        bool      `json:"isVoted"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
}

// AnonStatusResponse tells the client whether the anonymity toggle is locked
type AnonStatusResponse struct {
	Forced         bool   `json:"forced"`
	IsAnonymous    bool   `json:"isAnonymous"`
	IsReviewAuthor bool   `json:"isReviewAuthor"`
	Reason         string `json:"reason"`
}

type CommentVoteResponse struct {
	Voted     bool  `json:"voted"`
	VoteCount int64 `json:"voteCount"`
}
