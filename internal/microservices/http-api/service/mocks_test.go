package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/review"

	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) ListWithCounts(ctx context.Context) ([]repository.UserRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.UserRow), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, oldID string, next *models.RefreshToken) error {
	return m.Called(ctx, oldID, next).Error(0)
}

func (m *MockRefreshTokenRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnimeRepository mocks the AnimeRepository interface
type MockAnimeRepository struct {
	mock.Mock
}

func (m *MockAnimeRepository) Create(ctx context.Context, anime *models.Anime, categoryIDs []int64) error {
	return m.Called(ctx, anime, categoryIDs).Error(0)
}

func (m *MockAnimeRepository) Update(ctx context.Context, anime *models.Anime, categoryIDs []int64) error {
	return m.Called(ctx, anime, categoryIDs).Error(0)
}

func (m *MockAnimeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAnimeRepository) FindByID(ctx context.Context, id int64) (*models.Anime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Anime), args.Error(1)
}

func (m *MockAnimeRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Anime, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Anime), args.Error(1)
}

func (m *MockAnimeRepository) List(ctx context.Context, categoryID *int64) ([]models.Anime, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]models.Anime), args.Error(1)
}

func (m *MockAnimeRepository) Siblings(ctx context.Context, seriesID, excludeID int64) ([]models.Anime, error) {
	args := m.Called(ctx, seriesID, excludeID)
	return args.Get(0).([]models.Anime), args.Error(1)
}

func (m *MockAnimeRepository) Picker(ctx context.Context) ([]repository.AnimePick, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.AnimePick), args.Error(1)
}

func (m *MockAnimeRepository) TopOneLiners(ctx context.Context, animeIDs []int64) (map[int64]string, error) {
	args := m.Called(ctx, animeIDs)
	return args.Get(0).(map[int64]string), args.Error(1)
}

func (m *MockAnimeRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return m.Called(ctx, rv).Error(0)
}

func (m *MockReviewRepository) CreateWithAnime(ctx context.Context, anime *models.Anime, categoryIDs []int64, rv *models.Review) error {
	return m.Called(ctx, anime, categoryIDs, rv).Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) FindRow(ctx context.Context, id int64) (*repository.ReviewRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReviewRow), args.Error(1)
}

func (m *MockReviewRepository) ListRowsByAnime(ctx context.Context, animeID int64) ([]repository.ReviewRow, error) {
	args := m.Called(ctx, animeID)
	return args.Get(0).([]repository.ReviewRow), args.Error(1)
}

func (m *MockReviewRepository) ListRecentRows(ctx context.Context, limit, offset int) ([]repository.ReviewRow, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]repository.ReviewRow), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Update(ctx context.Context, rv *models.Review) error {
	return m.Called(ctx, rv).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) IncrementViewCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) ScoresByAnime(ctx context.Context, animeIDs []int64) (map[int64][]review.Scored, error) {
	args := m.Called(ctx, animeIDs)
	return args.Get(0).(map[int64][]review.Scored), args.Error(1)
}

// ApplyVote hands the current vote configured on the mock to decide, the
// way the transaction would after locking the row.
func (m *MockReviewRepository) ApplyVote(ctx context.Context, reviewID int64, userID string, decide func(*review.VoteType) *review.VoteType) (*review.VoteType, repository.VoteTally, error) {
	args := m.Called(ctx, reviewID, userID)
	if err := args.Error(2); err != nil {
		return nil, repository.VoteTally{}, err
	}
	var current *review.VoteType
	if args.Get(0) != nil {
		current = args.Get(0).(*review.VoteType)
	}
	return decide(current), args.Get(1).(repository.VoteTally), nil
}

func (m *MockReviewRepository) UserVote(ctx context.Context, reviewID int64, userID string) (*review.VoteType, error) {
	args := m.Called(ctx, reviewID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.VoteType), args.Error(1)
}

func (m *MockReviewRepository) UserVotes(ctx context.Context, reviewIDs []int64, userID string) (map[int64]review.VoteType, error) {
	args := m.Called(ctx, reviewIDs, userID)
	return args.Get(0).(map[int64]review.VoteType), args.Error(1)
}

func (m *MockReviewRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

// Create passes the AnonState configured on the mock to build and returns
// what it produced.
func (m *MockCommentRepository) Create(ctx context.Context, reviewID int64, userID string, build func(repository.AnonState) (*models.Comment, error)) (*models.Comment, error) {
	args := m.Called(ctx, reviewID, userID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return build(args.Get(0).(repository.AnonState))
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) AnonState(ctx context.Context, reviewID int64, userID string) (*repository.AnonState, error) {
	args := m.Called(ctx, reviewID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AnonState), args.Error(1)
}

func (m *MockCommentRepository) ListByReview(ctx context.Context, reviewID int64) ([]repository.CommentRow, error) {
	args := m.Called(ctx, reviewID)
	return args.Get(0).([]repository.CommentRow), args.Error(1)
}

func (m *MockCommentRepository) VotedByUser(ctx context.Context, reviewID int64, userID string) (map[int64]bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, comment *models.Comment) (int64, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) ToggleVote(ctx context.Context, commentID int64, userID string) (bool, int64, error) {
	args := m.Called(ctx, commentID, userID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListWithAnime(ctx context.Context) ([]models.Category, map[int64][]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Get(1).(map[int64][]int64), args.Error(2)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockSeriesRepository mocks the SeriesRepository interface
type MockSeriesRepository struct {
	mock.Mock
}

func (m *MockSeriesRepository) List(ctx context.Context) ([]models.Series, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Series), args.Error(1)
}

func (m *MockSeriesRepository) FindByID(ctx context.Context, id int64) (*models.Series, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesRepository) Create(ctx context.Context, s *models.Series, animeIDs []int64) error {
	return m.Called(ctx, s, animeIDs).Error(0)
}

func (m *MockSeriesRepository) Update(ctx context.Context, s *models.Series, animeIDs []int64) error {
	return m.Called(ctx, s, animeIDs).Error(0)
}

func (m *MockSeriesRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockFeaturedRepository mocks the FeaturedRepository interface
type MockFeaturedRepository struct {
	mock.Mock
}

func (m *MockFeaturedRepository) List(ctx context.Context, limit int) ([]models.Featured, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Featured), args.Error(1)
}

func (m *MockFeaturedRepository) Put(ctx context.Context, animeID int64, sortOrder int) error {
	return m.Called(ctx, animeID, sortOrder).Error(0)
}

func (m *MockFeaturedRepository) Remove(ctx context.Context, animeID int64) error {
	return m.Called(ctx, animeID).Error(0)
}

// memoryCache is an in-process AggregateCache.
type memoryCache struct {
	aggs      map[int64]review.Aggregate
	refreshed []int64
	forgotten []int64
	top       []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{aggs: map[int64]review.Aggregate{}}
}

func (c *memoryCache) GetAggregate(_ context.Context, id int64) (review.Aggregate, bool) {
	agg, ok := c.aggs[id]
	return agg, ok
}

func (c *memoryCache) SetAggregate(_ context.Context, id int64, agg review.Aggregate) {
	c.aggs[id] = agg
}

func (c *memoryCache) Refresh(_ context.Context, id int64, _ review.Aggregate) {
	delete(c.aggs, id)
	c.refreshed = append(c.refreshed, id)
}

func (c *memoryCache) Forget(_ context.Context, id int64) {
	delete(c.aggs, id)
	c.forgotten = append(c.forgotten, id)
}

func (c *memoryCache) TopRated(_ context.Context, limit int) ([]int64, bool) {
	if len(c.top) == 0 {
		return nil, false
	}
	if len(c.top) > limit {
		return c.top[:limit], true
	}
	return c.top, true
}
