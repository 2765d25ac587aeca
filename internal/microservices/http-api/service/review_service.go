package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"anilog/internal/content"
	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/review"
)

type ReviewService interface {
	ListByAnime(ctx context.Context, animeID int64, sort, viewerID string) (*dto.AnimeReviewsResponse, error)
	// Get counts one view and returns the review with its anime.
	Get(ctx context.Context, id int64, viewerID string) (*dto.ReviewDetailResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, id int64, userID string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	// Delete removes a review with its comments and votes. Only the author
	// may do so unless asAdmin is set.
	Delete(ctx context.Context, id int64, userID string, asAdmin bool) error
	Vote(ctx context.Context, id int64, userID, voteType string) (*dto.VoteResponse, error)
	UserVote(ctx context.Context, id int64, userID string) (*dto.UserVoteResponse, error)
	ListRecent(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	animeRepo    repository.AnimeRepository
	animeService AnimeService
	logger       *slog.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	animeRepo repository.AnimeRepository,
	animeService AnimeService,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		animeRepo:    animeRepo,
		animeService: animeService,
		logger:       logger,
	}
}

// toReviewResponse hides who wrote an anonymous review from everyone but
// its author.
func toReviewResponse(row *repository.ReviewRow, viewerID string) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:           row.ID,
		AnimeID:      row.AnimeID,
		AnimeTitle:   row.AnimeTitle,
		Author:       review.ReviewerLabel(row.IsAnonymous, row.Nickname),
		IsAnonymous:  row.IsAnonymous,
		IsMine:       viewerID != "" && viewerID == row.UserID,
		Tier:         review.Tier(row.Tier),
		Rating:       review.RoundRating(row.Rating),
		OneLiner:     row.OneLiner,
		Content:      row.Content,
		ViewCount:    row.ViewCount,
		UpCount:      row.UpCount,
		DownCount:    row.DownCount,
		CommentCount: row.CommentCount,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if !row.IsAnonymous {
		resp.UserID = row.UserID
		if row.ProfileImage != nil {
			resp.ProfileImage = *row.ProfileImage
		}
	}
	return resp
}

func (s *reviewService) ListByAnime(ctx context.Context, animeID int64, sort, viewerID string) (*dto.AnimeReviewsResponse, error) {
	by, err := review.ParseReviewSort(sort)
	if err != nil {
		return nil, validationError("unknown sort %q", sort)
	}

	anime, err := s.animeRepo.FindByID(ctx, animeID)
	if err != nil {
		return nil, notFound(err, ErrAnimeNotFound)
	}
	card, err := s.animeService.Card(ctx, anime)
	if err != nil {
		return nil, err
	}

	rows, err := s.reviewRepo.ListRowsByAnime(ctx, animeID)
	if err != nil {
		return nil, err
	}
	review.SortReviews(rows, by, repository.ReviewRow.RankKey)

	votes := map[int64]review.VoteType{}
	if viewerID != "" && len(rows) > 0 {
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		if votes, err = s.reviewRepo.UserVotes(ctx, ids, viewerID); err != nil {
			return nil, err
		}
	}

	out := make([]dto.ReviewResponse, 0, len(rows))
	for i := range rows {
		resp := toReviewResponse(&rows[i], viewerID)
		if v, ok := votes[rows[i].ID]; ok {
			resp.MyVote = &v
		}
		out = append(out, resp)
	}
	return &dto.AnimeReviewsResponse{Anime: card, Sort: string(by), Reviews: out}, nil
}

func (s *reviewService) Get(ctx context.Context, id int64, viewerID string) (*dto.ReviewDetailResponse, error) {
	if err := s.reviewRepo.IncrementViewCount(ctx, id); err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	row, err := s.reviewRepo.FindRow(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}

	resp := dto.ReviewDetailResponse{ReviewResponse: toReviewResponse(row, viewerID), Related: []dto.AnimeCard{}}
	resp.ContentHTML = content.RenderReview(row.Content)

	if viewerID != "" {
		if resp.MyVote, err = s.reviewRepo.UserVote(ctx, id, viewerID); err != nil {
			return nil, err
		}
	}

	anime, err := s.animeRepo.FindByID(ctx, row.AnimeID)
	if err != nil {
		return nil, notFound(err, ErrAnimeNotFound)
	}
	if resp.Anime, err = s.animeService.Card(ctx, anime); err != nil {
		return nil, err
	}
	if resp.Series, resp.Related, err = s.animeService.Related(ctx, anime); err != nil {
		return nil, err
	}
	return &resp, nil
}

func parseScore(tier string, rating float64) (review.Tier, error) {
	t, err := review.ParseTier(tier)
	if err != nil {
		return "", validationError("tier must be one of SSS, SS, S, A, B, C, D, E")
	}
	if !review.ValidRating(rating) {
		return "", validationError("rating must be between 0 and 10")
	}
	return t, nil
}

func (s *reviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating == nil {
		return nil, validationError("rating is required")
	}
	tier, err := parseScore(req.Tier, *req.Rating)
	if err != nil {
		return nil, err
	}

	rv := &models.Review{
		UserID:      userID,
		IsAnonymous: req.IsAnonymous,
		Tier:        string(tier),
		Rating:      review.RoundRating(*req.Rating),
		OneLiner:    content.SanitizePlain(req.OneLiner),
		Content:     strings.TrimSpace(req.Content),
	}

	title := strings.TrimSpace(req.AnimeTitle)
	switch {
	case req.AnimeID != nil:
		if _, err := s.animeRepo.FindByID(ctx, *req.AnimeID); err != nil {
			return nil, notFound(err, ErrAnimeNotFound)
		}
		rv.AnimeID = *req.AnimeID
		err = s.reviewRepo.Create(ctx, rv)
	case title != "":
		anime := &models.Anime{Title: title, CoverImage: req.CoverImage, SeriesID: req.SeriesID}
		err = s.reviewRepo.CreateWithAnime(ctx, anime, req.CategoryIDs, rv)
	default:
		return nil, validationError("animeId or animeTitle is required")
	}
	if err != nil {
		return nil, badReference(conflict(err, ErrDuplicateReview), "referenced anime or series")
	}

	s.logger.Info("review created", "review_id", rv.ID, "anime_id", rv.AnimeID, "user_id", userID)
	s.animeService.RefreshAggregate(ctx, rv.AnimeID)
	return s.row(ctx, rv.ID, userID)
}

func (s *reviewService) row(ctx context.Context, id int64, viewerID string) (*dto.ReviewResponse, error) {
	row, err := s.reviewRepo.FindRow(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	resp := toReviewResponse(row, viewerID)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, id int64, userID string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	rv, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	if rv.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	tier, rating := rv.Tier, rv.Rating
	if req.Tier != nil {
		tier = *req.Tier
	}
	if req.Rating != nil {
		rating = *req.Rating
	}
	parsed, err := parseScore(tier, rating)
	if err != nil {
		return nil, err
	}
	rv.Tier = string(parsed)
	rv.Rating = review.RoundRating(rating)
	if req.OneLiner != nil {
		rv.OneLiner = content.SanitizePlain(*req.OneLiner)
	}
	if req.Content != nil {
		rv.Content = strings.TrimSpace(*req.Content)
	}

	if err := s.reviewRepo.Update(ctx, rv); err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	s.animeService.RefreshAggregate(ctx, rv.AnimeID)
	return s.row(ctx, id, userID)
}

func (s *reviewService) Delete(ctx context.Context, id int64, userID string, asAdmin bool) error {
	rv, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, ErrReviewNotFound)
	}
	if !asAdmin && rv.UserID != userID {
		return ErrNotReviewAuthor
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrReviewNotFound)
	}

	s.logger.Info("review deleted", "review_id", id, "by", userID, "admin", asAdmin)
	s.animeService.RefreshAggregate(ctx, rv.AnimeID)
	return nil
}

func (s *reviewService) Vote(ctx context.Context, id int64, userID, voteType string) (*dto.VoteResponse, error) {
	requested, err := review.ParseVoteType(voteType)
	if err != nil {
		return nil, validationError("voteType must be up or down")
	}
	if _, err := s.reviewRepo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}

	vote, tally, err := s.reviewRepo.ApplyVote(ctx, id, userID, func(current *review.VoteType) *review.VoteType {
		return review.NextVote(current, requested)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrReviewNotFound
		}
		return nil, notFound(err, ErrReviewNotFound)
	}
	return &dto.VoteResponse{Vote: vote, UpCount: tally.UpCount, DownCount: tally.DownCount}, nil
}

func (s *reviewService) UserVote(ctx context.Context, id int64, userID string) (*dto.UserVoteResponse, error) {
	vote, err := s.reviewRepo.UserVote(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UserVoteResponse{Vote: vote}, nil
}

func (s *reviewService) ListRecent(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	rows, total, err := s.reviewRepo.ListRecentRows(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ReviewResponse, 0, len(rows))
	for i := range rows {
		resp := toReviewResponse(&rows[i], "")
		// admins see who wrote anonymous reviews
		resp.UserID = rows[i].UserID
		data = append(data, resp)
	}
	return &dto.PaginatedReviewResponse{Data: data, Pagination: dto.NewPagination(page, pageSize, total)}, nil
}
