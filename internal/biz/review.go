package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// ReviewUseCase handles review submission. Reviews are immutable once created.
type ReviewUseCase struct {
	reviewRepo ReviewRepo
	movieRepo  MovieRepo
	userRepo   UserRepo
	aggregator *RatingAggregator
	log        *log.Helper
	now        func() time.Time
}

// NewReviewUseCase creates a new ReviewUseCase instance
func NewReviewUseCase(reviewRepo ReviewRepo, movieRepo MovieRepo, userRepo UserRepo, aggregator *RatingAggregator, logger log.Logger) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		movieRepo:  movieRepo,
		userRepo:   userRepo,
		aggregator: aggregator,
		log:        log.NewHelper(logger),
		now:        time.Now,
	}
}

// SubmitReview stores the single review userID may write for movieID and then
// recomputes the movie's average rating. A recompute failure is logged and does
// not undo the review; the returned movie then carries the stale average.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, userID, movieID string, rating float64, reviewText string) (*SubmittedReview, error) {
	stars, err := validateRating(rating)
	if err != nil {
		return nil, err
	}
	text, err := validateReviewText(reviewText)
	if err != nil {
		return nil, err
	}
	if !ValidID(userID) {
		return nil, ErrUserNotFound
	}
	if !ValidID(movieID) {
		return nil, ErrMovieNotFound
	}

	user, err := uc.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	movie, err := uc.movieRepo.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	review := &Review{
		ID:         NewID(),
		UserID:     userID,
		MovieID:    movieID,
		Rating:     stars,
		ReviewText: text,
		Timestamp:  now,
		CreatedAt:  now,
	}
	// The ledger's unique (user, movie) constraint decides concurrent duplicates.
	if err := uc.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	average, err := uc.aggregator.Recompute(ctx, movieID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("review %s stored but average rating not updated: %v", review.ID, err)
	} else {
		movie.AverageRating = average
	}

	uc.log.WithContext(ctx).Infof("review %s submitted by user %s for movie %s (rating %d)", review.ID, userID, movieID, stars)
	return &SubmittedReview{Review: review, User: user, Movie: movie}, nil
}
