package service

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"moviereview/internal/biz"
)

type AddMovieRequest struct {
	Title       string   `json:"title"`
	Genre       []string `json:"genre"`
	ReleaseYear int      `json:"releaseYear"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	Synopsis    string   `json:"synopsis"`
	PosterURL   string   `json:"posterURL"`
}

type AddMovieReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Movie   *Movie `json:"movie"`
}

// UploadPosterRequest carries the multipart "image" part decoded by the server.
type UploadPosterRequest struct {
	Image *biz.Image `json:"-"`
}

type UploadPosterReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

type ListMoviesRequest struct {
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
	Search    *string  `json:"search"`
	Genre     *string  `json:"genre"`
	Year      *int     `json:"year"`
	Director  *string  `json:"director"`
	MinRating *float64 `json:"minRating"`
	MaxRating *float64 `json:"maxRating"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
}

// MovieFilters echoes the effective filters and the resolved sort.
type MovieFilters struct {
	Search    *string  `json:"search,omitempty"`
	Genre     *string  `json:"genre,omitempty"`
	Year      *int     `json:"year,omitempty"`
	Director  *string  `json:"director,omitempty"`
	MinRating *float64 `json:"minRating,omitempty"`
	MaxRating *float64 `json:"maxRating,omitempty"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
}

type ListMoviesReply struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Movies     []*Movie        `json:"movies"`
	Pagination MoviePagination `json:"pagination"`
	Filters    MovieFilters    `json:"filters"`
}

type GetMovieRequest struct {
	ID string `json:"id"`
}

// Review is a review inside the movie detail, joined with its author.
type Review struct {
	ID         string       `json:"id"`
	Rating     int          `json:"rating"`
	ReviewText string       `json:"reviewText"`
	Timestamp  time.Time    `json:"timestamp"`
	CreatedAt  time.Time    `json:"createdAt"`
	User       *UserProfile `json:"user"`
}

type ReviewStats struct {
	TotalReviews       int         `json:"totalReviews"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

type MovieDetail struct {
	Movie
	Reviews     []*Review   `json:"reviews"`
	ReviewStats ReviewStats `json:"reviewStats"`
}

type GetMovieReply struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Movie   *MovieDetail `json:"movie"`
}

// MovieService serves catalog curation and catalog queries.
type MovieService struct {
	catalog *biz.CatalogUseCase
	log     *log.Helper
}

// NewMovieService creates a new MovieService
func NewMovieService(catalog *biz.CatalogUseCase, logger log.Logger) *MovieService {
	return &MovieService{
		catalog: catalog,
		log:     log.NewHelper(logger),
	}
}

// AddMovie implements movie creation
func (s *MovieService) AddMovie(ctx context.Context, req *AddMovieRequest) (*AddMovieReply, error) {
	movie, err := s.catalog.AddMovie(ctx, &biz.AddMovieInput{
		Title:       req.Title,
		Genre:       req.Genre,
		ReleaseYear: req.ReleaseYear,
		Director:    req.Director,
		Cast:        req.Cast,
		Synopsis:    req.Synopsis,
		PosterURL:   req.PosterURL,
	})
	if err != nil {
		return nil, err
	}
	return &AddMovieReply{
		Success: true,
		Message: "Movie added successfully",
		Movie:   movieToDTO(movie),
	}, nil
}

// UploadPoster stores a poster image and returns its URL.
func (s *MovieService) UploadPoster(ctx context.Context, req *UploadPosterRequest) (*UploadPosterReply, error) {
	url, err := s.catalog.UploadPoster(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	return &UploadPosterReply{
		Success: true,
		Message: "Poster uploaded successfully",
		URL:     url,
	}, nil
}

// ListMovies implements movie listing
func (s *MovieService) ListMovies(ctx context.Context, req *ListMoviesRequest) (*ListMoviesReply, error) {
	page, err := s.catalog.ListMovies(ctx, &biz.MovieListQuery{
		Filter: biz.MovieFilter{
			Search:    req.Search,
			Genre:     req.Genre,
			Year:      req.Year,
			Director:  req.Director,
			MinRating: req.MinRating,
			MaxRating: req.MaxRating,
		},
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}

	reply := &ListMoviesReply{
		Success:    true,
		Message:    "Movies retrieved successfully",
		Movies:     make([]*Movie, 0, len(page.Movies)),
		Pagination: moviePagination(page.Pagination),
		Filters: MovieFilters{
			Search:    page.Filter.Search,
			Genre:     page.Filter.Genre,
			Year:      page.Filter.Year,
			Director:  page.Filter.Director,
			MinRating: page.Filter.MinRating,
			MaxRating: page.Filter.MaxRating,
			SortBy:    string(page.Sort.Field),
			SortOrder: sortOrder(page.Sort.Desc),
		},
	}
	for _, m := range page.Movies {
		reply.Movies = append(reply.Movies, movieToDTO(m))
	}
	return reply, nil
}

// GetMovie returns the movie with its reviews and rating histogram.
func (s *MovieService) GetMovie(ctx context.Context, req *GetMovieRequest) (*GetMovieReply, error) {
	detail, err := s.catalog.GetMovieDetail(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	out := &MovieDetail{
		Movie:   *movieToDTO(detail.Movie),
		Reviews: make([]*Review, 0, len(detail.Reviews)),
		ReviewStats: ReviewStats{
			TotalReviews:       detail.Stats.TotalReviews,
			AverageRating:      detail.Stats.AverageRating,
			RatingDistribution: detail.Stats.Distribution,
		},
	}
	for _, r := range detail.Reviews {
		out.Reviews = append(out.Reviews, &Review{
			ID:         r.ID,
			Rating:     r.Rating,
			ReviewText: r.ReviewText,
			Timestamp:  r.Timestamp,
			CreatedAt:  r.CreatedAt,
			User:       userToDTO(r.Author),
		})
	}

	return &GetMovieReply{
		Success: true,
		Message: "Movie retrieved successfully",
		Movie:   out,
	}, nil
}
