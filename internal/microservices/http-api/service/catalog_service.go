package service

import (
	"context"
	"log/slog"
	"strings"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
)

// CatalogService is the admin side of anime, series, categories and the
// featured list.
type CatalogService interface {
	CreateAnime(ctx context.Context, req dto.AnimeRequest) (*dto.AnimeCard, error)
	UpdateAnime(ctx context.Context, id int64, req dto.AnimeRequest) (*dto.AnimeCard, error)
	DeleteAnime(ctx context.Context, id int64) error

	CreateSeries(ctx context.Context, req dto.SeriesRequest) (*dto.SeriesResponse, error)
	UpdateSeries(ctx context.Context, id int64, req dto.SeriesRequest) (*dto.SeriesResponse, error)
	DeleteSeries(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id int64) error

	PutFeatured(ctx context.Context, req dto.FeaturedRequest) error
	RemoveFeatured(ctx context.Context, animeID int64) error
}

type catalogService struct {
	animeRepo    repository.AnimeRepository
	seriesRepo   repository.SeriesRepository
	categoryRepo repository.CategoryRepository
	featuredRepo repository.FeaturedRepository
	animeService AnimeService
	cache        AggregateCache
	logger       *slog.Logger
}

func NewCatalogService(
	animeRepo repository.AnimeRepository,
	seriesRepo repository.SeriesRepository,
	categoryRepo repository.CategoryRepository,
	featuredRepo repository.FeaturedRepository,
	animeService AnimeService,
	cache AggregateCache,
	logger *slog.Logger,
) CatalogService {
	return &catalogService{
		animeRepo:    animeRepo,
		seriesRepo:   seriesRepo,
		categoryRepo: categoryRepo,
		featuredRepo: featuredRepo,
		animeService: animeService,
		cache:        cache,
		logger:       logger,
	}
}

func (s *catalogService) animeCard(ctx context.Context, id int64) (*dto.AnimeCard, error) {
	anime, err := s.animeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAnimeNotFound)
	}
	card, err := s.animeService.Card(ctx, anime)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *catalogService) CreateAnime(ctx context.Context, req dto.AnimeRequest) (*dto.AnimeCard, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, validationError("title is required")
	}
	anime := req.ToModel()
	if err := s.animeRepo.Create(ctx, &anime, req.CategoryIDs); err != nil {
		return nil, badReference(err, "series")
	}
	s.logger.Info("anime created", "anime_id", anime.ID, "title", anime.Title)
	return s.animeCard(ctx, anime.ID)
}

func (s *catalogService) UpdateAnime(ctx context.Context, id int64, req dto.AnimeRequest) (*dto.AnimeCard, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, validationError("title is required")
	}
	anime := req.ToModel()
	anime.ID = id
	if err := s.animeRepo.Update(ctx, &anime, req.CategoryIDs); err != nil {
		return nil, badReference(notFound(err, ErrAnimeNotFound), "series")
	}
	return s.animeCard(ctx, id)
}

// DeleteAnime also removes its reviews, so the cached aggregate goes too.
func (s *catalogService) DeleteAnime(ctx context.Context, id int64) error {
	if err := s.animeRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrAnimeNotFound)
	}
	s.cache.Forget(ctx, id)
	s.logger.Info("anime deleted", "anime_id", id)
	return nil
}

func (s *catalogService) series(ctx context.Context, id int64) (*dto.SeriesResponse, error) {
	found, err := s.seriesRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSeriesNotFound)
	}
	resp := dto.FromModelToSeriesResponse(found)
	return &resp, nil
}

func (s *catalogService) CreateSeries(ctx context.Context, req dto.SeriesRequest) (*dto.SeriesResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	series := &models.Series{Title: title}
	if err := s.seriesRepo.Create(ctx, series, req.AnimeIDs); err != nil {
		return nil, conflict(err, ErrDuplicateName)
	}
	return s.series(ctx, series.ID)
}

func (s *catalogService) UpdateSeries(ctx context.Context, id int64, req dto.SeriesRequest) (*dto.SeriesResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if err := s.seriesRepo.Update(ctx, &models.Series{ID: id, Title: title}, req.AnimeIDs); err != nil {
		return nil, conflict(notFound(err, ErrSeriesNotFound), ErrDuplicateName)
	}
	return s.series(ctx, id)
}

func (s *catalogService) DeleteSeries(ctx context.Context, id int64) error {
	if err := s.seriesRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrSeriesNotFound)
	}
	return nil
}

func toCategoryResponse(c *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, SortOrder: c.SortOrder}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, toCategoryResponse(&list[i]))
	}
	return out, nil
}

func categoryFromRequest(req dto.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	return &models.Category{Name: name, Icon: icon, SortOrder: req.SortOrder}, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, conflict(err, ErrDuplicateName)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	category.ID = id
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, conflict(notFound(err, ErrCategoryNotFound), ErrDuplicateName)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	return nil
}

func (s *catalogService) PutFeatured(ctx context.Context, req dto.FeaturedRequest) error {
	if err := s.featuredRepo.Put(ctx, req.AnimeID, req.SortOrder); err != nil {
		return badReference(err, "anime")
	}
	return nil
}

func (s *catalogService) RemoveFeatured(ctx context.Context, animeID int64) error {
	if err := s.featuredRepo.Remove(ctx, animeID); err != nil {
		return notFound(err, ErrAnimeNotFound)
	}
	return nil
}
