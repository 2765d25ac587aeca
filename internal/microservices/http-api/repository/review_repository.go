package repository

import (
	"context"
	"errors"
	"fmt"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/review"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRow is a review joined with its anime, its author and its tallies.
// Nickname and ProfileImage are nil when the author no longer exists.
type ReviewRow struct {
	models.Review
	AnimeTitle   string
	Nickname     *string
	ProfileImage *string
	UpCount      int64
	DownCount    int64
	CommentCount int64
}

// RankKey exposes the fields review ordering uses.
func (r ReviewRow) RankKey() review.RankKey {
	return review.RankKey{
		ID:        r.ID,
		UpCount:   r.UpCount,
		DownCount: r.DownCount,
		ViewCount: r.ViewCount,
		CreatedAt: r.CreatedAt,
	}
}

// VoteTally is the up and down count of one review.
type VoteTally struct {
	UpCount   int64
	DownCount int64
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *models.Review) error
	CreateWithAnime(ctx context.Context, anime *models.Anime, categoryIDs []int64, rv *models.Review) error
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	FindRow(ctx context.Context, id int64) (*ReviewRow, error)
	ListRowsByAnime(ctx context.Context, animeID int64) ([]ReviewRow, error)
	ListRecentRows(ctx context.Context, limit, offset int) ([]ReviewRow, int64, error)
	Update(ctx context.Context, rv *models.Review) error
	Delete(ctx context.Context, id int64) error
	IncrementViewCount(ctx context.Context, id int64) error
	ScoresByAnime(ctx context.Context, animeIDs []int64) (map[int64][]review.Scored, error)
	ApplyVote(ctx context.Context, reviewID int64, userID string, decide func(current *review.VoteType) *review.VoteType) (*review.VoteType, VoteTally, error)
	UserVote(ctx context.Context, reviewID int64, userID string) (*review.VoteType, error)
	UserVotes(ctx context.Context, reviewIDs []int64, userID string) (map[int64]review.VoteType, error)
	Count(ctx context.Context) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A second review of the same anime by the same
// user fails with ErrDuplicateKey.
func (r *reviewRepository) Create(ctx context.Context, rv *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Anime").Create(rv).Error; err != nil {
		return fmt.Errorf("create review: %w", translate(err))
	}
	return nil
}

// CreateWithAnime adds a new anime and its first review atomically.
func (r *reviewRepository) CreateWithAnime(ctx context.Context, anime *models.Anime, categoryIDs []int64, rv *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createAnime(tx, anime, categoryIDs); err != nil {
			return err
		}
		rv.AnimeID = anime.ID
		if err := tx.Omit("Anime").Create(rv).Error; err != nil {
			return fmt.Errorf("create review: %w", translate(err))
		}
		return nil
	})
}

func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) rows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews r").
		Select(`r.*, a.title AS anime_title,
			u.nickname AS nickname, u.profile_image AS profile_image,
			(SELECT COUNT(*) FROM review_votes v WHERE v.review_id = r.id AND v.vote_type = 'up') AS up_count,
			(SELECT COUNT(*) FROM review_votes v WHERE v.review_id = r.id AND v.vote_type = 'down') AS down_count,
			(SELECT COUNT(*) FROM comments c WHERE c.review_id = r.id) AS comment_count`).
		Joins("JOIN anime a ON a.id = r.anime_id").
		Joins("LEFT JOIN users u ON u.id = r.user_id")
}

func (r *reviewRepository) FindRow(ctx context.Context, id int64) (*ReviewRow, error) {
	var rows []ReviewRow
	if err := r.rows(ctx).Where("r.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListRowsByAnime returns one anime's reviews unordered; ranking happens above.
func (r *reviewRepository) ListRowsByAnime(ctx context.Context, animeID int64) ([]ReviewRow, error) {
	var rows []ReviewRow
	if err := r.rows(ctx).Where("r.anime_id = ?", animeID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reviewRepository) ListRecentRows(ctx context.Context, limit, offset int) ([]ReviewRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ReviewRow
	if err := r.rows(ctx).
		Order("r.created_at DESC, r.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update saves the editable fields. Anonymity is fixed at creation.
func (r *reviewRepository) Update(ctx context.Context, rv *models.Review) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", rv.ID).Updates(map[string]any{
		"tier":       rv.Tier,
		"rating":     rv.Rating,
		"one_liner":  rv.OneLiner,
		"content":    rv.Content,
		"updated_at": gorm.Expr("NOW()"),
	})
	if res.Error != nil {
		return fmt.Errorf("update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a review; comments and votes go with it.
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("review_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ? AND parent_id IS NOT NULL", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewVote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Review{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementViewCount bumps the counter in SQL so concurrent views never lose updates.
func (r *reviewRepository) IncrementViewCount(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ScoresByAnime groups tier and rating of every review by anime. A nil
// animeIDs loads all anime.
func (r *reviewRepository) ScoresByAnime(ctx context.Context, animeIDs []int64) (map[int64][]review.Scored, error) {
	out := make(map[int64][]review.Scored)
	if animeIDs != nil && len(animeIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		AnimeID int64
		Tier    string
		Rating  float64
	}
	q := r.db.WithContext(ctx).Model(&models.Review{}).Select("anime_id, tier, rating")
	if animeIDs != nil {
		q = q.Where("anime_id IN ?", animeIDs)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.AnimeID] = append(out[row.AnimeID], review.Scored{Tier: review.Tier(row.Tier), Rating: row.Rating})
	}
	return out, nil
}

// ApplyVote locks the review row, then the user's current vote, lets decide
// pick the next state and stores it. Votes on one review are serialized by the
// review lock; the upsert on (review_id, user_id) keeps a single row.
func (r *reviewRepository) ApplyVote(ctx context.Context, reviewID int64, userID string, decide func(current *review.VoteType) *review.VoteType) (*review.VoteType, VoteTally, error) {
	var next *review.VoteType
	var tally VoteTally

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&models.Review{}, reviewID).Error; err != nil {
			return err
		}

		var existing models.ReviewVote
		var current *review.VoteType
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			First(&existing).Error
		switch {
		case err == nil:
			v := review.VoteType(existing.VoteType)
			current = &v
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		next = decide(current)
		if next == nil {
			if current != nil {
				if err := tx.Delete(&models.ReviewVote{}, existing.ID).Error; err != nil {
					return err
				}
			}
		} else {
			vote := models.ReviewVote{ReviewID: reviewID, UserID: userID, VoteType: string(*next)}
			if err := tx.Omit("Review").Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"vote_type"}),
			}).Create(&vote).Error; err != nil {
				return err
			}
		}

		tally, err = voteTally(tx, reviewID)
		return err
	})
	if err != nil {
		return nil, VoteTally{}, err
	}
	return next, tally, nil
}

func voteTally(tx *gorm.DB, reviewID int64) (VoteTally, error) {
	var t VoteTally
	err := tx.Model(&models.ReviewVote{}).
		Select(`COALESCE(SUM(CASE WHEN vote_type = 'up' THEN 1 ELSE 0 END), 0) AS up_count,
			COALESCE(SUM(CASE WHEN vote_type = 'down' THEN 1 ELSE 0 END), 0) AS down_count`).
		Where("review_id = ?", reviewID).
		Scan(&t).Error
	return t, err
}

func (r *reviewRepository) UserVote(ctx context.Context, reviewID int64, userID string) (*review.VoteType, error) {
	var votes []models.ReviewVote
	if err := r.db.WithContext(ctx).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Limit(1).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}
	v := review.VoteType(votes[0].VoteType)
	return &v, nil
}

func (r *reviewRepository) UserVotes(ctx context.Context, reviewIDs []int64, userID string) (map[int64]review.VoteType, error) {
	out := make(map[int64]review.VoteType)
	if len(reviewIDs) == 0 || userID == "" {
		return out, nil
	}
	var votes []models.ReviewVote
	if err := r.db.WithContext(ctx).
		Where("review_id IN ? AND user_id = ?", reviewIDs, userID).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.ReviewID] = review.VoteType(v.VoteType)
	}
	return out, nil
}

func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Count(&count).Error
	return count, err
}
