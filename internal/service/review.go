package service

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"moviereview/internal/biz"
)

type SubmitReviewRequest struct {
	MovieID    string  `json:"movieId"`
	Rating     float64 `json:"rating"`
	ReviewText string  `json:"reviewText"`
}

// ReviewAuthor is the author as shown on a freshly submitted review.
type ReviewAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReviewedMovie carries the movie's average as recomputed by the submission.
type ReviewedMovie struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ReleaseYear   int     `json:"releaseYear"`
	AverageRating float64 `json:"averageRating"`
}

type SubmittedReview struct {
	ID         string         `json:"id"`
	Rating     int            `json:"rating"`
	ReviewText string         `json:"reviewText"`
	Timestamp  time.Time      `json:"timestamp"`
	CreatedAt  time.Time      `json:"createdAt"`
	User       *ReviewAuthor  `json:"user"`
	Movie      *ReviewedMovie `json:"movie"`
}

type SubmitReviewReply struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Review  *SubmittedReview `json:"review"`
}

// ReviewService serves review submission.
type ReviewService struct {
	reviews *biz.ReviewUseCase
	log     *log.Helper
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews *biz.ReviewUseCase, logger log.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		log:     log.NewHelper(logger),
	}
}

// SubmitReview stores the caller's review of a movie.
func (s *ReviewService) SubmitReview(ctx context.Context, req *SubmitReviewRequest) (*SubmitReviewReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if req.MovieID == "" {
		return nil, biz.InvalidArgument("movieId is required")
	}

	res, err := s.reviews.SubmitReview(ctx, userID, req.MovieID, req.Rating, req.ReviewText)
	if err != nil {
		return nil, err
	}

	return &SubmitReviewReply{
		Success: true,
		Message: "Review submitted successfully",
		Review: &SubmittedReview{
			ID:         res.Review.ID,
			Rating:     res.Review.Rating,
			ReviewText: res.Review.ReviewText,
			Timestamp:  res.Review.Timestamp,
			CreatedAt:  res.Review.CreatedAt,
			User: &ReviewAuthor{
				ID:    res.User.ID,
				Name:  res.User.Name,
				Email: res.User.Email,
			},
			Movie: &ReviewedMovie{
				ID:            res.Movie.ID,
				Title:         res.Movie.Title,
				ReleaseYear:   res.Movie.ReleaseYear,
				AverageRating: res.Movie.AverageRating,
			},
		},
	}, nil
}
