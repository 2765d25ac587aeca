package repository

import (
	"context"
	"fmt"

	"anilog/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type SeriesRepository interface {
	List(ctx context.Context) ([]models.Series, error)
	FindByID(ctx context.Context, id int64) (*models.Series, error)
	Create(ctx context.Context, s *models.Series, animeIDs []int64) error
	Update(ctx context.Context, s *models.Series, animeIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type seriesRepository struct {
	db *gorm.DB
}

func NewSeriesRepository(db *gorm.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) List(ctx context.Context) ([]models.Series, error) {
	var list []models.Series
	if err := r.db.WithContext(ctx).
		Preload("Anime", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("title").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *seriesRepository) FindByID(ctx context.Context, id int64) (*models.Series, error) {
	var s models.Series
	if err := r.db.WithContext(ctx).
		Preload("Anime", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *seriesRepository) Create(ctx context.Context, s *models.Series, animeIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s.Anime = nil
		if err := tx.Omit("Anime").Create(s).Error; err != nil {
			return fmt.Errorf("create series: %w", translate(err))
		}
		return assignAnime(tx, s.ID, animeIDs)
	})
}

// Update renames the series. A non-nil animeIDs becomes its exact membership.
func (r *seriesRepository) Update(ctx context.Context, s *models.Series, animeIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Series{}).Where("id = ?", s.ID).Update("title", s.Title)
		if res.Error != nil {
			return fmt.Errorf("update series: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if animeIDs == nil {
			return nil
		}
		if err := tx.Model(&models.Anime{}).Where("series_id = ?", s.ID).Update("series_id", nil).Error; err != nil {
			return err
		}
		return assignAnime(tx, s.ID, animeIDs)
	})
}

func assignAnime(tx *gorm.DB, seriesID int64, animeIDs []int64) error {
	if len(animeIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Anime{}).Where("id IN ?", animeIDs).Update("series_id", seriesID).Error
}

// Delete removes the series; its anime stay, detached.
func (r *seriesRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Anime{}).Where("series_id = ?", id).Update("series_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Series{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
