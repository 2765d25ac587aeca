package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/review"
)

const FeaturedLimit = 3

// AggregateCache is the optional cache in front of per-anime aggregates.
// *cache.AnimeCache implements it, including as a nil pointer.
type AggregateCache interface {
	GetAggregate(ctx context.Context, animeID int64) (review.Aggregate, bool)
	SetAggregate(ctx context.Context, animeID int64, agg review.Aggregate)
	Refresh(ctx context.Context, animeID int64, agg review.Aggregate)
	Forget(ctx context.Context, animeID int64)
	TopRated(ctx context.Context, limit int) ([]int64, bool)
}

// AnimeSort orders the public anime list.
type AnimeSort string

const (
	AnimeByRecent AnimeSort = "recent"
	AnimeByRating AnimeSort = "rating"
)

type AnimeService interface {
	List(ctx context.Context, categoryID *int64, sort string) ([]dto.AnimeCard, error)
	Get(ctx context.Context, id int64) (*dto.AnimeDetailResponse, error)
	Picker(ctx context.Context) ([]repository.AnimePick, error)
	Featured(ctx context.Context) ([]dto.AnimeCard, error)
	Categories(ctx context.Context) ([]dto.CategoryResponse, error)
	Series(ctx context.Context) ([]dto.SeriesResponse, error)
	TopRated(ctx context.Context, limit int) ([]dto.AnimeCard, error)

	// Card and Related back the review endpoints that embed their anime.
	Card(ctx context.Context, anime *models.Anime) (dto.AnimeCard, error)
	Related(ctx context.Context, anime *models.Anime) (*dto.SeriesBrief, []dto.AnimeCard, error)
	// RefreshAggregate recomputes one anime after its reviews changed.
	RefreshAggregate(ctx context.Context, animeID int64)
}

type animeService struct {
	animeRepo    repository.AnimeRepository
	reviewRepo   repository.ReviewRepository
	categoryRepo repository.CategoryRepository
	seriesRepo   repository.SeriesRepository
	featuredRepo repository.FeaturedRepository
	cache        AggregateCache
	logger       *slog.Logger
}

func NewAnimeService(
	animeRepo repository.AnimeRepository,
	reviewRepo repository.ReviewRepository,
	categoryRepo repository.CategoryRepository,
	seriesRepo repository.SeriesRepository,
	featuredRepo repository.FeaturedRepository,
	cache AggregateCache,
	logger *slog.Logger,
) AnimeService {
	return &animeService{
		animeRepo:    animeRepo,
		reviewRepo:   reviewRepo,
		categoryRepo: categoryRepo,
		seriesRepo:   seriesRepo,
		featuredRepo: featuredRepo,
		cache:        cache,
		logger:       logger,
	}
}

// aggregates returns the aggregate of every id, from cache where possible.
func (s *animeService) aggregates(ctx context.Context, ids []int64) (map[int64]review.Aggregate, error) {
	out := make(map[int64]review.Aggregate, len(ids))
	var missing []int64
	for _, id := range ids {
		if agg, ok := s.cache.GetAggregate(ctx, id); ok {
			out[id] = agg
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	scores, err := s.reviewRepo.ScoresByAnime(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		agg := review.Aggregated(scores[id])
		out[id] = agg
		s.cache.SetAggregate(ctx, id, agg)
	}
	return out, nil
}

func (s *animeService) cards(ctx context.Context, list []models.Anime, withOneLiner bool) ([]dto.AnimeCard, error) {
	ids := make([]int64, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	aggs, err := s.aggregates(ctx, ids)
	if err != nil {
		return nil, err
	}

	var oneLiners map[int64]string
	if withOneLiner {
		if oneLiners, err = s.animeRepo.TopOneLiners(ctx, ids); err != nil {
			return nil, err
		}
	}

	cards := make([]dto.AnimeCard, 0, len(list))
	for i := range list {
		card := dto.FromModelToAnimeCard(&list[i], aggs[list[i].ID])
		card.OneLiner = oneLiners[list[i].ID]
		cards = append(cards, card)
	}
	return cards, nil
}

// sortByRating drops unreviewed anime and orders the rest best first.
func sortByRating(cards []dto.AnimeCard) []dto.AnimeCard {
	rated := slices.DeleteFunc(cards, func(c dto.AnimeCard) bool { return c.ReviewCount == 0 })
	slices.SortStableFunc(rated, func(a, b dto.AnimeCard) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ReviewCount, a.ReviewCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rated
}

func (s *animeService) List(ctx context.Context, categoryID *int64, sort string) ([]dto.AnimeCard, error) {
	by := AnimeSort(sort)
	switch by {
	case "":
		by = AnimeByRecent
	case AnimeByRecent, AnimeByRating:
	default:
		return nil, validationError("unknown sort %q", sort)
	}

	list, err := s.animeRepo.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards(ctx, list, true)
	if err != nil {
		return nil, err
	}
	if by == AnimeByRating {
		cards = sortByRating(cards)
	}
	return cards, nil
}

func (s *animeService) Get(ctx context.Context, id int64) (*dto.AnimeDetailResponse, error) {
	anime, err := s.animeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAnimeNotFound)
	}
	card, err := s.Card(ctx, anime)
	if err != nil {
		return nil, err
	}
	series, related, err := s.Related(ctx, anime)
	if err != nil {
		return nil, err
	}
	return &dto.AnimeDetailResponse{AnimeCard: card, Series: series, Related: related}, nil
}

func (s *animeService) Card(ctx context.Context, anime *models.Anime) (dto.AnimeCard, error) {
	cards, err := s.cards(ctx, []models.Anime{*anime}, false)
	if err != nil {
		return dto.AnimeCard{}, err
	}
	return cards[0], nil
}

// Related lists the other anime in the same series, each with its own
// aggregate. Aggregates never mix across series members.
func (s *animeService) Related(ctx context.Context, anime *models.Anime) (*dto.SeriesBrief, []dto.AnimeCard, error) {
	related := []dto.AnimeCard{}
	if anime.SeriesID == nil {
		return nil, related, nil
	}

	var series *dto.SeriesBrief
	if anime.Series != nil {
		series = &dto.SeriesBrief{ID: anime.Series.ID, Title: anime.Series.Title}
	}

	siblings, err := s.animeRepo.Siblings(ctx, *anime.SeriesID, anime.ID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.cards(ctx, siblings, true)
	if err != nil {
		return nil, nil, err
	}
	return series, cards, nil
}

func (s *animeService) Picker(ctx context.Context) ([]repository.AnimePick, error) {
	return s.animeRepo.Picker(ctx)
}

func (s *animeService) Featured(ctx context.Context) ([]dto.AnimeCard, error) {
	featured, err := s.featuredRepo.List(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(featured))
	for _, f := range featured {
		ids = append(ids, f.AnimeID)
	}
	return s.cardsInOrder(ctx, ids)
}

// cardsInOrder loads the anime for ids and returns their cards in ids order.
func (s *animeService) cardsInOrder(ctx context.Context, ids []int64) ([]dto.AnimeCard, error) {
	list, err := s.animeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards(ctx, list, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]dto.AnimeCard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	out := make([]dto.AnimeCard, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *animeService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, members, err := s.categoryRepo.ListWithAnime(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.animeRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards(ctx, list, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]dto.AnimeCard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		entry := dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Icon: cat.Icon, SortOrder: cat.SortOrder, Anime: []dto.AnimeCard{}}
		for _, animeID := range members[cat.ID] {
			if c, ok := byID[animeID]; ok {
				entry.Anime = append(entry.Anime, c)
			}
		}
		slices.SortStableFunc(entry.Anime, func(a, b dto.AnimeCard) int {
			if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		out = append(out, entry)
	}
	return out, nil
}

func (s *animeService) Series(ctx context.Context) ([]dto.SeriesResponse, error) {
	list, err := s.seriesRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SeriesResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.FromModelToSeriesResponse(&list[i]))
	}
	return out, nil
}

// TopRated serves the ranking from redis when it is populated, otherwise
// computes it from every review.
func (s *animeService) TopRated(ctx context.Context, limit int) ([]dto.AnimeCard, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if ids, ok := s.cache.TopRated(ctx, limit); ok {
		return s.cardsInOrder(ctx, ids)
	}

	list, err := s.animeRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards(ctx, list, true)
	if err != nil {
		return nil, err
	}
	cards = sortByRating(cards)
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func (s *animeService) RefreshAggregate(ctx context.Context, animeID int64) {
	scores, err := s.reviewRepo.ScoresByAnime(ctx, []int64{animeID})
	if err != nil {
		s.logger.Warn("aggregate refresh failed", "anime_id", animeID, "error", err)
		s.cache.Forget(ctx, animeID)
		return
	}
	s.cache.Refresh(ctx, animeID, review.Aggregated(scores[animeID]))
}
