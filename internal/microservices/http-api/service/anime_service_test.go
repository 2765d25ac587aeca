package service

import (
	"context"
	"errors"
	"testing"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type animeFixture struct {
	svc        AnimeService
	anime      *MockAnimeRepository
	reviews    *MockReviewRepository
	categories *MockCategoryRepository
	series     *MockSeriesRepository
	featured   *MockFeaturedRepository
	cache      *memoryCache
}

func newAnimeFixture() *animeFixture {
	f := &animeFixture{
		anime:      new(MockAnimeRepository),
		reviews:    new(MockReviewRepository),
		categories: new(MockCategoryRepository),
		series:     new(MockSeriesRepository),
		featured:   new(MockFeaturedRepository),
		cache:      newMemoryCache(),
	}
	f.svc = NewAnimeService(f.anime, f.reviews, f.categories, f.series, f.featured, f.cache, testLogger())
	return f
}

func threeAnime() []models.Anime {
	return []models.Anime{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}}
}

func TestAnimeList_ByRating(t *testing.T) {
	f := newAnimeFixture()
	f.anime.On("List", mock.Anything, (*int64)(nil)).Return(threeAnime(), nil)
	f.reviews.On("ScoresByAnime", mock.Anything, []int64{1, 2, 3}).Return(map[int64][]review.Scored{
		1: {{Tier: review.TierB, Rating: 6}},
		3: {{Tier: review.TierS, Rating: 9}, {Tier: review.TierA, Rating: 8}},
	}, nil)
	f.anime.On("TopOneLiners", mock.Anything, []int64{1, 2, 3}).Return(map[int64]string{3: "masterpiece"}, nil)

	cards, err := f.svc.List(context.Background(), nil, "rating")

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, int64(3), cards[0].ID)
	assert.Equal(t, 8.5, cards[0].Rating)
	assert.Equal(t, "masterpiece", cards[0].OneLiner)
	assert.Equal(t, int64(1), cards[1].ID)

	// aggregates were cached, including the empty one
	assert.Len(t, f.cache.aggs, 3)
}

func TestAnimeList_RecentKeepsUnreviewed(t *testing.T) {
	f := newAnimeFixture()
	for _, a := range threeAnime() {
		f.cache.aggs[a.ID] = review.Aggregate{}
	}
	f.anime.On("List", mock.Anything, (*int64)(nil)).Return(threeAnime(), nil)
	f.anime.On("TopOneLiners", mock.Anything, []int64{1, 2, 3}).Return(map[int64]string{}, nil)

	cards, err := f.svc.List(context.Background(), nil, "")

	require.NoError(t, err)
	assert.Len(t, cards, 3)
	assert.Equal(t, review.Tier(""), cards[1].Tier)
	f.reviews.AssertNotCalled(t, "ScoresByAnime", mock.Anything, mock.Anything)
}

func TestAnimeList_UnknownSort(t *testing.T) {
	f := newAnimeFixture()
	_, err := f.svc.List(context.Background(), nil, "name")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAnimeGet_WithSeries(t *testing.T) {
	f := newAnimeFixture()
	seriesID := int64(4)
	anime := &models.Anime{ID: 1, Title: "S1", SeriesID: &seriesID, Series: &models.Series{ID: 4, Title: "Show"}}
	f.anime.On("FindByID", mock.Anything, int64(1)).Return(anime, nil)
	f.anime.On("Siblings", mock.Anything, int64(4), int64(1)).Return([]models.Anime{{ID: 2, Title: "S2", SeriesID: &seriesID}}, nil)
	f.anime.On("TopOneLiners", mock.Anything, []int64{2}).Return(map[int64]string{}, nil)
	f.cache.aggs[1] = review.Aggregate{Tier: review.TierA, Rating: 8, ReviewCount: 1}
	f.cache.aggs[2] = review.Aggregate{Tier: review.TierC, Rating: 4, ReviewCount: 2}

	got, err := f.svc.Get(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, review.TierA, got.Tier)
	require.NotNil(t, got.Series)
	assert.Equal(t, "Show", got.Series.Title)
	require.Len(t, got.Related, 1)
	assert.Equal(t, review.TierC, got.Related[0].Tier)
	assert.Equal(t, 2, got.Related[0].ReviewCount)
}

func TestAnimeGet_NotFound(t *testing.T) {
	f := newAnimeFixture()
	f.anime.On("FindByID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAnimeNotFound)
}

func TestAnimeTopRated(t *testing.T) {
	t.Run("from cache ranking", func(t *testing.T) {
		f := newAnimeFixture()
		f.cache.top = []int64{3, 1}
		f.cache.aggs[1] = review.Aggregate{Rating: 7, ReviewCount: 1}
		f.cache.aggs[3] = review.Aggregate{Rating: 9, ReviewCount: 1}
		f.anime.On("FindByIDs", mock.Anything, []int64{3, 1}).Return([]models.Anime{{ID: 1}, {ID: 3}}, nil)
		f.anime.On("TopOneLiners", mock.Anything, []int64{1, 3}).Return(map[int64]string{}, nil)

		cards, err := f.svc.TopRated(context.Background(), 5)

		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, int64(3), cards[0].ID)
		f.anime.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("from database", func(t *testing.T) {
		f := newAnimeFixture()
		f.anime.On("List", mock.Anything, (*int64)(nil)).Return(threeAnime(), nil)
		f.reviews.On("ScoresByAnime", mock.Anything, []int64{1, 2, 3}).Return(map[int64][]review.Scored{
			1: {{Tier: review.TierB, Rating: 6}},
			2: {{Tier: review.TierS, Rating: 9}},
			3: {{Tier: review.TierA, Rating: 8}},
		}, nil)
		f.anime.On("TopOneLiners", mock.Anything, []int64{1, 2, 3}).Return(map[int64]string{}, nil)

		cards, err := f.svc.TopRated(context.Background(), 2)

		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, []int64{2, 3}, []int64{cards[0].ID, cards[1].ID})
	})
}

func TestAnimeFeatured_KeepsOrder(t *testing.T) {
	f := newAnimeFixture()
	f.featured.On("List", mock.Anything, FeaturedLimit).Return([]models.Featured{{AnimeID: 2}, {AnimeID: 1}}, nil)
	f.anime.On("FindByIDs", mock.Anything, []int64{2, 1}).Return([]models.Anime{{ID: 1}, {ID: 2}}, nil)
	f.cache.aggs[1] = review.Aggregate{}
	f.cache.aggs[2] = review.Aggregate{}
	f.anime.On("TopOneLiners", mock.Anything, []int64{1, 2}).Return(map[int64]string{}, nil)

	cards, err := f.svc.Featured(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, []int64{cards[0].ID, cards[1].ID})
}

func TestAnimeCategories_RatingOrder(t *testing.T) {
	f := newAnimeFixture()
	f.categories.On("ListWithAnime", mock.Anything).Return(
		[]models.Category{{ID: 10, Name: "인기"}, {ID: 11, Name: "빈"}},
		map[int64][]int64{10: {1, 2}},
		nil,
	)
	f.anime.On("List", mock.Anything, (*int64)(nil)).Return([]models.Anime{{ID: 1}, {ID: 2}}, nil)
	f.cache.aggs[1] = review.Aggregate{Rating: 5, ReviewCount: 1}
	f.cache.aggs[2] = review.Aggregate{Rating: 9, ReviewCount: 1}
	f.anime.On("TopOneLiners", mock.Anything, []int64{1, 2}).Return(map[int64]string{}, nil)

	cats, err := f.svc.Categories(context.Background())

	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, int64(2), cats[0].Anime[0].ID)
	assert.Empty(t, cats[1].Anime)
}

func TestAnimeRefreshAggregate(t *testing.T) {
	f := newAnimeFixture()
	f.cache.aggs[1] = review.Aggregate{ReviewCount: 1}
	f.reviews.On("ScoresByAnime", mock.Anything, []int64{1}).Return(map[int64][]review.Scored(nil), errors.New("db down")).Once()

	f.svc.RefreshAggregate(context.Background(), 1)

	assert.Equal(t, []int64{1}, f.cache.forgotten)
	_, ok := f.cache.aggs[1]
	assert.False(t, ok)
}
