package service

import (
	"context"
	"errors"
	"log/slog"

	"anilog/internal/content"
	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/review"

	"gorm.io/gorm"
)

type CommentService interface {
	List(ctx context.Context, reviewID int64, sort, order, viewerID string) (*dto.CommentListResponse, error)
	Create(ctx context.Context, reviewID int64, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	// AnonStatus tells a user whether their next comment on the review has
	// its anonymity fixed already.
	AnonStatus(ctx context.Context, reviewID int64, userID string) (*dto.AnonStatusResponse, error)
	Delete(ctx context.Context, commentID int64, userID string) error
	ToggleVote(ctx context.Context, commentID int64, userID string) (*dto.CommentVoteResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	userRepo    repository.UserRepository
	logger      *slog.Logger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func toCommentResponse(row *repository.CommentRow, reviewAuthorID, viewerID string, voted bool) dto.CommentResponse {
	isAuthor := row.UserID == reviewAuthorID
	resp := dto.CommentResponse{
		ID:       row.ID,
		ReviewID: row.ReviewID,
		ParentID: row.ParentID,
		Author: review.CommentLabel(review.Commenter{
			Anonymous:      row.IsAnonymous,
			Ordinal:        row.AnonNumber,
			Nickname:       row.Nickname,
			IsReviewAuthor: isAuthor,
		}),
		IsAnonymous:    row.IsAnonymous,
		AnonNumber:     row.AnonNumber,
		IsReviewAuthor: isAuthor,
		IsMine:         viewerID != "" && viewerID == row.UserID,
		Content:        row.Content,
		TierRequest:    row.TierRequest,
		VoteCount:      row.VoteCount,
		IsVoted:        voted,
		CreatedAt:      row.CreatedAt,
	}
	if !row.IsAnonymous {
		resp.UserID = row.UserID
		if row.ProfileImage != nil {
			resp.ProfileImage = *row.ProfileImage
		}
	}
	return resp
}

func (s *commentService) List(ctx context.Context, reviewID int64, sort, order, viewerID string) (*dto.CommentListResponse, error) {
	o, err := review.ParseCommentOrder(sort, order)
	if err != nil {
		return nil, validationError("sort must be popular or recent and order asc or desc")
	}
	rv, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}

	rows, err := s.commentRepo.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	voted, err := s.commentRepo.VotedByUser(ctx, reviewID, viewerID)
	if err != nil {
		return nil, err
	}

	rows = review.FlattenThread(rows, o, repository.CommentRow.ThreadKey)
	out := make([]dto.CommentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCommentResponse(&rows[i], rv.UserID, viewerID, voted[rows[i].ID]))
	}
	return &dto.CommentListResponse{Comments: out, Total: len(out)}, nil
}

func (s *commentService) Create(ctx context.Context, reviewID int64, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	text, err := content.SanitizeComment(req.Content)
	switch {
	case errors.Is(err, content.ErrEmpty):
		return nil, validationError("content is required")
	case errors.Is(err, content.ErrTooLong):
		return nil, validationError("content must be at most %d characters", content.MaxCommentLength)
	case err != nil:
		return nil, err
	}

	var tierRequest *string
	if req.TierRequest != nil && *req.TierRequest != "" {
		t, err := review.ParseTier(*req.TierRequest)
		if err != nil {
			return nil, validationError("tierRequest must be one of SSS, SS, S, A, B, C, D, E")
		}
		v := string(t)
		tierRequest = &v
	}

	var parentID *int64
	if req.ParentID != nil {
		var ref *review.ParentRef
		parent, err := s.commentRepo.FindByID(ctx, *req.ParentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if parent != nil {
			ref = &review.ParentRef{ID: parent.ID, ReviewID: parent.ReviewID, ParentID: parent.ParentID}
		}
		if parentID, err = review.ResolveParent(reviewID, req.ParentID, ref); err != nil {
			return nil, ErrParentNotFound
		}
	}

	var reviewAuthorID string
	comment, err := s.commentRepo.Create(ctx, reviewID, userID, func(state repository.AnonState) (*models.Comment, error) {
		reviewAuthorID = state.ReviewAuthorID
		decision := review.ResolveAnonymity(review.AnonymityInput{
			IsReviewAuthor:  state.ReviewAuthorID == userID,
			ReviewAnonymous: state.ReviewAnonymous,
			PriorAnonymous:  state.PriorAnonymous,
			Requested:       req.IsAnonymous,
		})
		c := &models.Comment{
			ReviewID:    reviewID,
			UserID:      userID,
			ParentID:    parentID,
			IsAnonymous: decision.Anonymous,
			Content:     text,
			TierRequest: tierRequest,
		}
		if decision.Anonymous {
			n := review.AssignOrdinal(state.ExistingOrdinal, state.MaxOrdinal)
			c.AnonNumber = &n
		}
		return c, nil
	})
	if err != nil {
		// The parent was checked above; a dangling reference here means it was
		// deleted in between.
		if parentID != nil && errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrParentNotFound
		}
		return nil, badReference(notFound(err, ErrReviewNotFound), "parent comment")
	}

	s.logger.Info("comment created", "comment_id", comment.ID, "review_id", reviewID, "anonymous", comment.IsAnonymous)

	row := repository.CommentRow{Comment: *comment}
	if !comment.IsAnonymous {
		row.Nickname, row.ProfileImage = s.authorOf(ctx, comment)
	}
	resp := toCommentResponse(&row, reviewAuthorID, userID, false)
	return &resp, nil
}

// authorOf loads the nickname and avatar shown on a named comment.
func (s *commentService) authorOf(ctx context.Context, comment *models.Comment) (*string, *string) {
	user, err := s.userRepo.FindByID(ctx, comment.UserID)
	if err != nil {
		s.logger.Warn("comment author lookup failed", "comment_id", comment.ID, "error", err)
		return nil, nil
	}
	return &user.Nickname, user.ProfileImage
}

func (s *commentService) AnonStatus(ctx context.Context, reviewID int64, userID string) (*dto.AnonStatusResponse, error) {
	state, err := s.commentRepo.AnonState(ctx, reviewID, userID)
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	isAuthor := state.ReviewAuthorID == userID
	decision := review.ResolveAnonymity(review.AnonymityInput{
		IsReviewAuthor:  isAuthor,
		ReviewAnonymous: state.ReviewAnonymous,
		PriorAnonymous:  state.PriorAnonymous,
	})
	return &dto.AnonStatusResponse{
		Forced:         decision.Forced,
		IsAnonymous:    decision.Anonymous,
		IsReviewAuthor: isAuthor,
		Reason:         string(decision.Source),
	}, nil
}

func (s *commentService) Delete(ctx context.Context, commentID int64, userID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFound(err, ErrCommentNotFound)
	}
	if comment.UserID != userID {
		return ErrNotCommentAuthor
	}
	removed, err := s.commentRepo.Delete(ctx, comment)
	if err != nil {
		return err
	}
	s.logger.Info("comment deleted", "comment_id", commentID, "rows", removed)
	return nil
}

func (s *commentService) ToggleVote(ctx context.Context, commentID int64, userID string) (*dto.CommentVoteResponse, error) {
	if _, err := s.commentRepo.FindByID(ctx, commentID); err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	voted, count, err := s.commentRepo.ToggleVote(ctx, commentID, userID)
	if err != nil {
		return nil, badReference(err, "comment")
	}
	return &dto.CommentVoteResponse{Voted: voted, VoteCount: count}, nil
}
