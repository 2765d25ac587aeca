package repository

import (
	"context"

	"anilog/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeaturedRepository interface {
	List(ctx context.Context, limit int) ([]models.Featured, error)
	Put(ctx context.Context, animeID int64, sortOrder int) error
	Remove(ctx context.Context, animeID int64) error
}

type featuredRepository struct {
	db *gorm.DB
}

func NewFeaturedRepository(db *gorm.DB) FeaturedRepository {
	return &featuredRepository{db: db}
}

func (r *featuredRepository) List(ctx context.Context, limit int) ([]models.Featured, error) {
	var list []models.Featured
	q := r.db.WithContext(ctx).Preload("Anime").Order("sort_order, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Put features the anime, or moves it if already featured.
func (r *featuredRepository) Put(ctx context.Context, animeID int64, sortOrder int) error {
	f := models.Featured{AnimeID: animeID, SortOrder: sortOrder}
	return translate(r.db.WithContext(ctx).Omit("Anime").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "anime_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sort_order"}),
	}).Create(&f).Error)
}

func (r *featuredRepository) Remove(ctx context.Context, animeID int64) error {
	res := r.db.WithContext(ctx).Where("anime_id = ?", animeID).Delete(&models.Featured{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
