package service

import (
	"context"
	"log/slog"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"

	"golang.org/x/sync/errgroup"
)

type AdminService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	ListUsers(ctx context.Context) ([]dto.AdminUserResponse, error)
	// SetAdmin grants or revokes the admin role. Admins cannot demote
	// themselves, so the last admin cannot lock everyone out.
	SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error
	DeleteUser(ctx context.Context, actorID, userID string) error
	ListReviews(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	DeleteReview(ctx context.Context, actorID string, reviewID int64) error
}

type adminService struct {
	userRepo      repository.UserRepository
	animeRepo     repository.AnimeRepository
	reviewRepo    repository.ReviewRepository
	commentRepo   repository.CommentRepository
	reviewService ReviewService
	logger        *slog.Logger
}

func NewAdminService(
	userRepo repository.UserRepository,
	animeRepo repository.AnimeRepository,
	reviewRepo repository.ReviewRepository,
	commentRepo repository.CommentRepository,
	reviewService ReviewService,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		userRepo:      userRepo,
		animeRepo:     animeRepo,
		reviewRepo:    reviewRepo,
		commentRepo:   commentRepo,
		reviewService: reviewService,
		logger:        logger,
	}
}

func (s *adminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var stats dto.StatsResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.UserCount, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.AnimeCount, err = s.animeRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ReviewCount, err = s.reviewRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.CommentCount, err = s.commentRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.AdminUserResponse, error) {
	rows, err := s.userRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdminUserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.AdminUserResponse{
			UserResponse: dto.FromModelToUserResponse(&rows[i].User),
			ReviewCount:  rows[i].ReviewCount,
			CommentCount: rows[i].CommentCount,
		})
	}
	return out, nil
}

func (s *adminService) SetAdmin(ctx context.Context, actorID, userID string, isAdmin bool) error {
	if actorID == userID && !isAdmin {
		return validationError("admins cannot revoke their own role")
	}
	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	s.logger.Info("user role changed", "user_id", userID, "role", role, "by", actorID)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	s.logger.Info("user deleted", "user_id", userID, "by", actorID)
	return nil
}

func (s *adminService) ListReviews(ctx context.Context, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	return s.reviewService.ListRecent(ctx, page, pageSize)
}

func (s *adminService) DeleteReview(ctx context.Context, actorID string, reviewID int64) error {
	return s.reviewService.Delete(ctx, reviewID, actorID, true)
}
