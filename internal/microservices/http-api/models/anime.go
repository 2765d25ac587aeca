package models

import "time"

type Anime struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title      string    `json:"title" gorm:"not null;index"`
	CoverImage *string   `json:"coverImage,omitempty"`
	SeriesID   *int64    `json:"seriesId,omitempty" gorm:"index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`

	// association
	Series     *Series    `json:"series,omitempty" gorm:"foreignKey:SeriesID;constraint:OnDelete:SET NULL;"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:anime_categories;constraint:OnDelete:CASCADE;"`
}

func (Anime) TableName() string {
	return "anime"
}
