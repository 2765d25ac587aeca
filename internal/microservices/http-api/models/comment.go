package models

import "time"

// Comment on a review. ParentID points at a top-level comment; replies to
// replies are stored under the top-level ancestor so depth stays at two.
type Comment struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID    int64     `json:"reviewId" gorm:"not null;index"`
	UserID      string    `json:"userId" gorm:"type:uuid;not null;index"`
	ParentID    *int64    `json:"parentId,omitempty" gorm:"index"`
	IsAnonymous bool      `json:"isAnonymous" gorm:"not null;default:false"`
	AnonNumber  *int      `json:"anonNumber,omitempty"`
	Content     string    `json:"content" gorm:"not null;type:text"`
	TierRequest *string   `json:"tierRequest,omitempty" gorm:"size:3"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`

	// Associations
	Review Review   `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}

type CommentVote struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentID int64     `json:"commentId" gorm:"not null;uniqueIndex:idx_comment_vote_user"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_comment_vote_user"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	Comment Comment `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE;"`
}

func (CommentVote) TableName() string {
	return "comment_votes"
}
