package biz

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// RatingAggregator maintains Movie.AverageRating as the rounded mean of the
// movie's review ratings.
type RatingAggregator struct {
	movieRepo  MovieRepo
	reviewRepo ReviewRepo
	tx         Transaction
	locks      *keyLock
	log        *log.Helper
}

// NewRatingAggregator creates a new RatingAggregator instance
func NewRatingAggregator(movieRepo MovieRepo, reviewRepo ReviewRepo, tx Transaction, logger log.Logger) *RatingAggregator {
	return &RatingAggregator{
		movieRepo:  movieRepo,
		reviewRepo: reviewRepo,
		tx:         tx,
		locks:      newKeyLock(),
		log:        log.NewHelper(logger),
	}
}

// Recompute re-reads every rating of movieID and overwrites the movie's average.
// Calls for the same movie are serialized in-process, and the read and write run
// in one transaction holding the movie row lock so other instances serialize too.
func (a *RatingAggregator) Recompute(ctx context.Context, movieID string) (float64, error) {
	unlock := a.locks.Lock(movieID)
	defer unlock()

	var average float64
	err := a.tx.InTx(ctx, func(ctx context.Context) error {
		if err := a.movieRepo.LockMovie(ctx, movieID); err != nil {
			return err
		}
		stats, err := a.reviewRepo.RatingStats(ctx, movieID)
		if err != nil {
			return fmt.Errorf("failed to read rating stats: %w", err)
		}
		average = RoundedAverage(stats.Sum, stats.Count)
		return a.movieRepo.UpdateAverageRating(ctx, movieID, average)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to recompute average rating for movie %s: %w", movieID, err)
	}

	a.log.WithContext(ctx).Debugf("average rating for movie %s recomputed: %.1f", movieID, average)
	return average, nil
}

// RoundedAverage returns sum/count rounded half-up to one decimal place, or 0
// when count is zero. Rounding is done on integers so ties like 2.25 never drift.
func RoundedAverage(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}
