package repository

import (
	"context"
	"fmt"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/review"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnonState is what decides a user's anonymity on one review.
// PriorAnonymous and ExistingOrdinal are nil until the user has commented.
type AnonState struct {
	ReviewAuthorID  string
	ReviewAnonymous bool
	PriorAnonymous  *bool
	ExistingOrdinal *int
	MaxOrdinal      int
}

// CommentRow is a comment joined with its author and vote count.
type CommentRow struct {
	models.Comment
	Nickname     *string
	ProfileImage *string
	VoteCount    int64
}

func (c CommentRow) ThreadKey() review.ThreadKey {
	return review.ThreadKey{
		ID:        c.ID,
		ParentID:  c.ParentID,
		VoteCount: c.VoteCount,
		CreatedAt: c.CreatedAt,
	}
}

type CommentRepository interface {
	// Create locks the review, loads the user's anonymity state and inserts
	// the comment build returns, all in one transaction.
	Create(ctx context.Context, reviewID int64, userID string, build func(AnonState) (*models.Comment, error)) (*models.Comment, error)
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	AnonState(ctx context.Context, reviewID int64, userID string) (*AnonState, error)
	ListByReview(ctx context.Context, reviewID int64) ([]CommentRow, error)
	VotedByUser(ctx context.Context, reviewID int64, userID string) (map[int64]bool, error)
	Delete(ctx context.Context, comment *models.Comment) (int64, error)
	ToggleVote(ctx context.Context, commentID int64, userID string) (bool, int64, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, reviewID int64, userID string, build func(AnonState) (*models.Comment, error)) (*models.Comment, error) {
	var created *models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := loadAnonState(tx, reviewID, userID, true)
		if err != nil {
			return err
		}
		comment, err := build(*state)
		if err != nil {
			return err
		}
		comment.ReviewID = reviewID
		comment.UserID = userID
		if err := tx.Omit("Review", "Parent").Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		created = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// loadAnonState reads the review's author and anonymity plus the user's
// comment history on it. With lock set the review row is held FOR UPDATE,
// which serialises concurrent comment writers on the same review.
func loadAnonState(tx *gorm.DB, reviewID int64, userID string, lock bool) (*AnonState, error) {
	var rv models.Review
	q := tx.Select("id", "user_id", "is_anonymous")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&rv, reviewID).Error; err != nil {
		return nil, err
	}
	state := &AnonState{ReviewAuthorID: rv.UserID, ReviewAnonymous: rv.IsAnonymous}

	var prior []models.Comment
	if err := tx.Select("id", "is_anonymous", "anon_number").
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Order("created_at, id").
		Find(&prior).Error; err != nil {
		return nil, err
	}
	if len(prior) > 0 {
		anon := prior[0].IsAnonymous
		state.PriorAnonymous = &anon
		for _, c := range prior {
			if c.AnonNumber != nil {
				n := *c.AnonNumber
				state.ExistingOrdinal = &n
				break
			}
		}
	}

	var maxOrdinal struct{ Max int }
	if err := tx.Model(&models.Comment{}).
		Select("COALESCE(MAX(anon_number), 0) AS max").
		Where("review_id = ?", reviewID).
		Scan(&maxOrdinal).Error; err != nil {
		return nil, err
	}
	state.MaxOrdinal = maxOrdinal.Max
	return state, nil
}

func (r *commentRepository) AnonState(ctx context.Context, reviewID int64, userID string) (*AnonState, error) {
	return loadAnonState(r.db.WithContext(ctx), reviewID, userID, false)
}

func (r *commentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByReview returns every comment on the review; threading happens above.
func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64) ([]CommentRow, error) {
	var rows []CommentRow
	err := r.db.WithContext(ctx).
		Table("comments c").
		Select(`c.*, u.nickname AS nickname, u.profile_image AS profile_image,
			(SELECT COUNT(*) FROM comment_votes cv WHERE cv.comment_id = c.id) AS vote_count`).
		Joins("LEFT JOIN users u ON u.id = c.user_id").
		Where("c.review_id = ?", reviewID).
		Order("c.created_at, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *commentRepository) VotedByUser(ctx context.Context, reviewID int64, userID string) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if userID == "" {
		return out, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommentVote{}).
		Joins("JOIN comments c ON c.id = comment_votes.comment_id").
		Where("c.review_id = ? AND comment_votes.user_id = ?", reviewID, userID).
		Pluck("comment_votes.comment_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Delete removes the comment and its votes. A top-level comment takes its
// replies and their votes along. It reports how many comments were removed.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []int64{comment.ID}
		if comment.ParentID == nil {
			var replyIDs []int64
			if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			ids = append(ids, replyIDs...)
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if len(ids) > 1 {
			res := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			removed += res.RowsAffected
		}
		res := tx.Delete(&models.Comment{}, comment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		removed += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ToggleVote removes the user's vote if present, otherwise adds it. It
// returns whether the user now votes for the comment and the new count.
func (r *commentRepository) ToggleVote(ctx context.Context, commentID int64, userID string) (bool, int64, error) {
	var voted bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentVote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			vote := models.CommentVote{CommentID: commentID, UserID: userID}
			if err := tx.Omit("Comment").Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error; err != nil {
				return err
			}
			voted = true
		}
		return tx.Model(&models.CommentVote{}).Where("comment_id = ?", commentID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return voted, count, nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}
