package repository

import (
	"context"
	"fmt"

	"anilog/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	ListWithAnime(ctx context.Context) ([]models.Category, map[int64][]int64, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	if err := r.db.WithContext(ctx).Order("sort_order, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListWithAnime returns categories in display order and the anime ids of each.
func (r *categoryRepository) ListWithAnime(ctx context.Context) ([]models.Category, map[int64][]int64, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	var links []models.AnimeCategory
	if err := r.db.WithContext(ctx).Order("category_id, anime_id").Find(&links).Error; err != nil {
		return nil, nil, err
	}
	members := make(map[int64][]int64, len(list))
	for _, l := range links {
		members[l.CategoryID] = append(members[l.CategoryID], l.AnimeID)
	}
	return list, members, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.Icon == "" {
		c.Icon = models.DefaultCategoryIcon
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", translate(err))
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":       c.Name,
		"icon":       c.Icon,
		"sort_order": c.SortOrder,
	})
	if res.Error != nil {
		return fmt.Errorf("update category: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the category and unlinks it from every anime.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.AnimeCategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
