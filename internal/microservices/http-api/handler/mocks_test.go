package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testGuards stand in for the JWT middlewares: X-User carries the caller id
// and X-Role its role.
func testGuards() Guards {
	identify := func(c *gin.Context) bool {
		id := c.GetHeader("X-User")
		if id == "" {
			return false
		}
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRole, c.GetHeader("X-Role"))
		return true
	}
	return Guards{
		Auth: func(c *gin.Context) {
			if !identify(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
				return
			}
			c.Next()
		},
		Optional: func(c *gin.Context) {
			identify(c)
			c.Next()
		},
		Limit: func(c *gin.Context) { c.Next() },
		Admin: middleware.RequireAdmin(nil),
	}
}

type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup, g Guards)
}

func setupRouter(h routeRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"), testGuards())
	return r
}

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, nickname string) (*models.User, error) {
	args := m.Called(username, password, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(username, password)
	user, _ := args.Get(2).(*models.User)
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) CurrentRole(ctx context.Context, userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return 15 * time.Minute
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CloseAccount(ctx context.Context, userID, password string) error {
	return m.Called(userID, password).Error(0)
}

type MockAnimeService struct {
	mock.Mock
}

func (m *MockAnimeService) List(ctx context.Context, categoryID *int64, sort string) ([]dto.AnimeCard, error) {
	args := m.Called(categoryID, sort)
	cards, _ := args.Get(0).([]dto.AnimeCard)
	return cards, args.Error(1)
}

func (m *MockAnimeService) Get(ctx context.Context, id int64) (*dto.AnimeDetailResponse, error) {
	args := m.Called(id)
	resp, _ := args.Get(0).(*dto.AnimeDetailResponse)
	return resp, args.Error(1)
}

func (m *MockAnimeService) Picker(ctx context.Context) ([]repository.AnimePick, error) {
	args := m.Called()
	picks, _ := args.Get(0).([]repository.AnimePick)
	return picks, args.Error(1)
}

func (m *MockAnimeService) Featured(ctx context.Context) ([]dto.AnimeCard, error) {
	args := m.Called()
	cards, _ := args.Get(0).([]dto.AnimeCard)
	return cards, args.Error(1)
}

func (m *MockAnimeService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	args := m.Called()
	cats, _ := args.Get(0).([]dto.CategoryResponse)
	return cats, args.Error(1)
}

func (m *MockAnimeService) Series(ctx context.Context) ([]dto.SeriesResponse, error) {
	args := m.Called()
	series, _ := args.Get(0).([]dto.SeriesResponse)
	return series, args.Error(1)
}

func (m *MockAnimeService) TopRated(ctx context.Context, limit int) ([]dto.AnimeCard, error) {
	args := m.Called(limit)
	cards, _ := args.Get(0).([]dto.AnimeCard)
	return cards, args.Error(1)
}

func (m *MockAnimeService) Card(ctx context.Context, anime *models.Anime) (dto.AnimeCard, error) {
	args := m.Called(anime)
	card, _ := args.Get(0).(dto.AnimeCard)
	return card, args.Error(1)
}

func (m *MockAnimeService) Related(ctx context.Context, anime *models.Anime) (*dto.SeriesBrief, []dto.AnimeCard, error) {
	args := m.Called(anime)
	brief, _ := args.Get(0).(*dto.SeriesBrief)
	cards, _ := args.Get(1).([]dto.AnimeCard)
	return brief, cards, args.Error(2)
}

func (m *MockAnimeService) RefreshAggregate(ctx context.Context, animeID int64) {
	m.Called(animeID)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByAnime(ctx context.Context, animeID int64, sort, viewerID string) (*dto.AnimeReviewsResponse, error) {
	args := m.Called(animeID, sort, viewerID)
	resp, _ := args.Get(0).(*dto.AnimeReviewsResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id int64, viewerID string) (*dto.ReviewDetailResponse, error) {
	args := m.Called(id, viewerID)
	resp, _ := args.Get(0).(*dto.ReviewDetailResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(userID, req)
	resp, _ := args.Get(0).(*dto.ReviewResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, id int64, userID string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(id, userID, req)
	resp, _ := args.Get(0).(*dto.ReviewResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, id int64, userID string, asAdmin bool) error {
	return m.Called(id, userID, asAdmin).Error(0)
}

func (m *MockReviewService) Vote(ctx context.Context, id int64, userID, voteType string) (*dto.VoteResponse, error) {
	args := m.Called(id, userID, voteType)
	resp, _ := args.Get(0).(*dto.VoteResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) UserVote(ctx context.Context, id int64, userID string) (*dto.UserVoteResponse, error) {
	args := m.Called(id, userID)
	resp, _ := args.Get(0).(*dto.UserVoteResponse)
	return resp, args.Error(1)
}

func (m *MockReviewService) ListRecent(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(page, pageSize)
	resp, _ := args.Get(0).(*dto.PaginatedReviewResponse)
	return resp, args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, reviewID int64, sort, order, viewerID string) (*dto.CommentListResponse, error) {
	args := m.Called(reviewID, sort, order, viewerID)
	resp, _ := args.Get(0).(*dto.CommentListResponse)
	return resp, args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, reviewID int64, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(reviewID, userID, req)
	resp, _ := args.Get(0).(*dto.CommentResponse)
	return resp, args.Error(1)
}

func (m *MockCommentService) AnonStatus(ctx context.Context, reviewID int64, userID string) (*dto.AnonStatusResponse, error) {
	args := m.Called(reviewID, userID)
	resp, _ := args.Get(0).(*dto.AnonStatusResponse)
	return resp, args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, commentID int64, userID string) error {
	return m.Called(commentID, userID).Error(0)
}

func (m *MockCommentService) ToggleVote(ctx context.Context, commentID int64, userID string) (*dto.CommentVoteResponse, error) {
	args := m.Called(commentID, userID)
	resp, _ := args.Get(0).(*dto.CommentVoteResponse)
	return resp, args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	args := m.Called()
	resp, _ := args.Get(0).(*dto.StatsResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]dto.AdminUserResponse, error) {
	args := m.Called()
	users, _ := args.Get(0).([]dto.AdminUserResponse)
	return users, args.Error(1)
}

func (m *MockAdminService) SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error {
	return m.Called(actorID, userID, isAdmin).Error(0)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	return m.Called(actorID, userID).Error(0)
}

func (m *MockAdminService) ListReviews(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(page, pageSize)
	resp, _ := args.Get(0).(*dto.PaginatedReviewResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) DeleteReview(ctx context.Context, actorID string, reviewID int64) error {
	return m.Called(actorID, reviewID).Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateAnime(ctx context.Context, req dto.AnimeRequest) (*dto.AnimeCard, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*dto.AnimeCard)
	return resp, args.Error(1)
}

func (m *MockCatalogService) UpdateAnime(ctx context.Context, id int64, req dto.AnimeRequest) (*dto.AnimeCard, error) {
	args := m.Called(id, req)
	resp, _ := args.Get(0).(*dto.AnimeCard)
	return resp, args.Error(1)
}

func (m *MockCatalogService) DeleteAnime(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockCatalogService) CreateSeries(ctx context.Context, req dto.SeriesRequest) (*dto.SeriesResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*dto.SeriesResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) UpdateSeries(ctx context.Context, id int64, req dto.SeriesRequest) (*dto.SeriesResponse, error) {
	args := m.Called(id, req)
	resp, _ := args.Get(0).(*dto.SeriesResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) DeleteSeries(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	args := m.Called()
	cats, _ := args.Get(0).([]dto.CategoryResponse)
	return cats, args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*dto.CategoryResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	args := m.Called(id, req)
	resp, _ := args.Get(0).(*dto.CategoryResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockCatalogService) PutFeatured(ctx context.Context, req dto.FeaturedRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockCatalogService) RemoveFeatured(ctx context.Context, animeID int64) error {
	return m.Called(animeID).Error(0)
}
