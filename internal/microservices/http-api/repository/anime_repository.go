package repository

import (
	"context"
	"fmt"

	"anilog/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// AnimePick is one entry of the anime picker used when writing a review.
type AnimePick struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReviewCount int64  `json:"reviewCount"`
}

type AnimeRepository interface {
	Create(ctx context.Context, anime *models.Anime, categoryIDs []int64) error
	Update(ctx context.Context, anime *models.Anime, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Anime, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Anime, error)
	List(ctx context.Context, categoryID *int64) ([]models.Anime, error)
	Siblings(ctx context.Context, seriesID, excludeID int64) ([]models.Anime, error)
	Picker(ctx context.Context) ([]AnimePick, error)
	TopOneLiners(ctx context.Context, animeIDs []int64) (map[int64]string, error)
	Count(ctx context.Context) (int64, error)
}

type animeRepository struct {
	db *gorm.DB
}

func NewAnimeRepository(db *gorm.DB) AnimeRepository {
	return &animeRepository{db: db}
}

// Create inserts the anime and links its categories in one transaction.
func (r *animeRepository) Create(ctx context.Context, anime *models.Anime, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createAnime(tx, anime, categoryIDs)
	})
}

func createAnime(tx *gorm.DB, anime *models.Anime, categoryIDs []int64) error {
	anime.Categories = nil
	if err := tx.Omit("Series", "Categories").Create(anime).Error; err != nil {
		return fmt.Errorf("create anime: %w", translate(err))
	}
	return replaceCategories(tx, anime.ID, categoryIDs)
}

// replaceCategories swaps the anime's category links for categoryIDs.
// Unknown category ids are skipped.
func replaceCategories(tx *gorm.DB, animeID int64, categoryIDs []int64) error {
	if err := tx.Where("anime_id = ?", animeID).Delete(&models.AnimeCategory{}).Error; err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	var existing []int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", categoryIDs).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}

	links := make([]models.AnimeCategory, 0, len(existing))
	for _, id := range existing {
		links = append(links, models.AnimeCategory{AnimeID: animeID, CategoryID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link categories: %w", err)
	}
	return nil
}

// Update saves title, cover and series. A nil categoryIDs keeps the current
// categories; an empty slice clears them.
func (r *animeRepository) Update(ctx context.Context, anime *models.Anime, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Anime{}).Where("id = ?", anime.ID).Updates(map[string]any{
			"title":       anime.Title,
			"cover_image": anime.CoverImage,
			"series_id":   anime.SeriesID,
		})
		if res.Error != nil {
			return fmt.Errorf("update anime: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if categoryIDs == nil {
			return nil
		}
		return replaceCategories(tx, anime.ID, categoryIDs)
	})
}

// Delete removes the anime; reviews, comments, votes and featured rows cascade.
func (r *animeRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Anime{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete anime: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *animeRepository) FindByID(ctx context.Context, id int64) (*models.Anime, error) {
	var a models.Anime
	if err := r.db.WithContext(ctx).
		Preload("Series").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *animeRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Anime, error) {
	var list []models.Anime
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// List returns every anime, newest first, optionally limited to one category.
func (r *animeRepository) List(ctx context.Context, categoryID *int64) ([]models.Anime, error) {
	var list []models.Anime
	q := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Order("created_at DESC, id DESC")
	if categoryID != nil {
		q = q.Where("id IN (?)", r.db.Model(&models.AnimeCategory{}).
			Select("anime_id").
			Where("category_id = ?", *categoryID))
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Siblings lists the other anime of the same series.
func (r *animeRepository) Siblings(ctx context.Context, seriesID, excludeID int64) ([]models.Anime, error) {
	var list []models.Anime
	if err := r.db.WithContext(ctx).
		Where("series_id = ? AND id <> ?", seriesID, excludeID).
		Order("id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *animeRepository) Picker(ctx context.Context) ([]AnimePick, error) {
	var picks []AnimePick
	err := r.db.WithContext(ctx).
		Table("anime a").
		Select("a.id, a.title, (SELECT COUNT(*) FROM reviews r WHERE r.anime_id = a.id) AS review_count").
		Order("a.title").
		Scan(&picks).Error
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// TopOneLiners picks, per anime, the one-liner of its best scored review.
func (r *animeRepository) TopOneLiners(ctx context.Context, animeIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(animeIDs))
	if len(animeIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		AnimeID  int64
		OneLiner string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (r.anime_id) r.anime_id, r.one_liner
		FROM reviews r
		LEFT JOIN (
			SELECT review_id,
				SUM(CASE WHEN vote_type = 'up' THEN 1 ELSE -1 END) AS score
			FROM review_votes
			GROUP BY review_id
		) s ON s.review_id = r.id
		WHERE r.anime_id IN ? AND r.one_liner <> ''
		ORDER BY r.anime_id, COALESCE(s.score, 0) DESC, r.created_at DESC, r.id DESC`,
		animeIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.AnimeID] = row.OneLiner
	}
	return out, nil
}

func (r *animeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Anime{}).Count(&count).Error
	return count, err
}
