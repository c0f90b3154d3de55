package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moviereview/internal/biz"
)

type reviewRepo struct {
	data *Data
	log  *log.Helper
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(data *Data, logger log.Logger) biz.ReviewRepo {
	return &reviewRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateReview inserts the review. The (user_id, movie_id) unique index turns a
// second review into biz.ErrReviewExists, including under concurrent submits.
func (r *reviewRepo) CreateReview(ctx context.Context, review *biz.Review) error {
	dbReview := &Review{
		ID:         review.ID,
		UserID:     review.UserID,
		MovieID:    review.MovieID,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		Timestamp:  review.Timestamp,
		CreatedAt:  review.CreatedAt,
	}

	err := r.data.DB(ctx).Omit(clause.Associations).Create(dbReview).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return biz.ErrReviewExists
	default:
		return fmt.Errorf("failed to create review: %w", err)
	}

	review.CreatedAt = dbReview.CreatedAt
	return nil
}

func (r *reviewRepo) ListReviewsByMovie(ctx context.Context, movieID string) ([]*biz.ReviewWithAuthor, error) {
	var dbReviews []Review
	err := r.data.DB(ctx).
		Preload("User").
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&dbReviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews := make([]*biz.ReviewWithAuthor, 0, len(dbReviews))
	for i := range dbReviews {
		m := &dbReviews[i]
		item := &biz.ReviewWithAuthor{Review: reviewToBiz(m)}
		if m.User.ID != "" {
			item.Author = userToBiz(&m.User)
		}
		reviews = append(reviews, item)
	}
	return reviews, nil
}

// RatingStats aggregates the ledger in the database. Every submit recomputes
// after its insert has committed, so the last recompute to take the movie lock
// counts every committed review.
func (r *reviewRepo) RatingStats(ctx context.Context, movieID string) (*biz.RatingStats, error) {
	var stats ratingStats
	err := r.data.DB(ctx).
		Model(&Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("movie_id = ?", movieID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}
	return &biz.RatingStats{Count: stats.Count, Sum: stats.Sum}, nil
}

func reviewToBiz(m *Review) *biz.Review {
	return &biz.Review{
		ID:         m.ID,
		UserID:     m.UserID,
		MovieID:    m.MovieID,
		Rating:     m.Rating,
		ReviewText: m.ReviewText,
		Timestamp:  m.Timestamp,
		CreatedAt:  m.CreatedAt,
	}
}
