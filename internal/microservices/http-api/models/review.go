package models

import "time"

// Review is one user's review of one anime. UserID deliberately has no
// foreign key so a closed account leaves its reviews behind.
type Review struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AnimeID     int64     `json:"animeId" gorm:"not null;uniqueIndex:idx_review_anime_user"`
	UserID      string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_review_anime_user;index"`
	IsAnonymous bool      `json:"isAnonymous" gorm:"not null;default:false"`
	Tier        string    `json:"tier" gorm:"size:3;not null;check:tier IN ('SSS','SS','S','A','B','C','D','E')"`
	Rating      float64   `json:"rating" gorm:"type:numeric(3,1);not null;check:rating >= 0 AND rating <= 10"`
	OneLiner    string    `json:"oneLiner" gorm:"size:200"`
	Content     string    `json:"content" gorm:"type:text"`
	ViewCount   int64     `json:"viewCount" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Associations
	Anime Anime `json:"-" gorm:"foreignKey:AnimeID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewVote struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID  int64     `json:"reviewId" gorm:"not null;uniqueIndex:idx_review_vote_user"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_review_vote_user"`
	VoteType  string    `json:"voteType" gorm:"size:4;not null;check:vote_type IN ('up','down')"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
}

func (ReviewVote) TableName() string {
	return "review_votes"
}
