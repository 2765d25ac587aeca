package models

// Featured pins an anime to the front page.
type Featured struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	AnimeID   int64 `json:"animeId" gorm:"uniqueIndex;not null"`
	SortOrder int   `json:"sortOrder" gorm:"not null;default:0"`

	Anime Anime `json:"anime,omitempty" gorm:"foreignKey:AnimeID;constraint:OnDelete:CASCADE;"`
}

func (Featured) TableName() string {
	return "featured"
}
