package models

import "time"

// Series groups the seasons of one franchise.
type Series struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	Anime []Anime `json:"anime,omitempty" gorm:"foreignKey:SeriesID"`
}

func (Series) TableName() string {
	return "series"
}
