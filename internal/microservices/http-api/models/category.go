package models

const DefaultCategoryIcon = "📁"

type Category struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"uniqueIndex;not null"`
	Icon      string `json:"icon" gorm:"not null;default:'📁'"`
	SortOrder int    `json:"sortOrder" gorm:"not null;default:0"`
}

func (Category) TableName() string {
	return "categories"
}

// explicit join model for the anime <-> category many2many
type AnimeCategory struct {
	AnimeID    int64 `json:"animeId" gorm:"primaryKey"`
	CategoryID int64 `json:"categoryId" gorm:"primaryKey;index"`
}

func (AnimeCategory) TableName() string {
	return "anime_categories"
}
