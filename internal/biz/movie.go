package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

// AddMovieInput is the catalog curation payload.
type AddMovieInput struct {
	Title       string   `validate:"required"`
	Genre       []string `validate:"required,min=1"`
	ReleaseYear int      `validate:"required"`
	Director    string   `validate:"required"`
	Cast        []string `validate:"required,min=1"`
	Synopsis    string   `validate:"required,max=2000"`
	PosterURL   string   `validate:"omitempty,url"`
}

// CatalogUseCase handles movie curation and catalog queries.
type CatalogUseCase struct {
	movieRepo  MovieRepo
	reviewRepo ReviewRepo
	images     ImageHost
	log        *log.Helper
	now        func() time.Time
}

// NewCatalogUseCase creates a new CatalogUseCase instance
func NewCatalogUseCase(movieRepo MovieRepo, reviewRepo ReviewRepo, images ImageHost, logger log.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		movieRepo:  movieRepo,
		reviewRepo: reviewRepo,
		images:     images,
		log:        log.NewHelper(logger),
		now:        time.Now,
	}
}

// AddMovie validates and stores a new movie. The (title, releaseYear) pair is
// unique; a duplicate yields ErrMovieExists.
func (uc *CatalogUseCase) AddMovie(ctx context.Context, in *AddMovieInput) (*Movie, error) {
	normalized := AddMovieInput{
		Title:       strings.TrimSpace(in.Title),
		Genre:       trimAll(in.Genre),
		ReleaseYear: in.ReleaseYear,
		Director:    strings.TrimSpace(in.Director),
		Cast:        trimAll(in.Cast),
		Synopsis:    strings.TrimSpace(in.Synopsis),
		PosterURL:   strings.TrimSpace(in.PosterURL),
	}
	if err := validate.StructCtx(ctx, normalized); err != nil {
		return nil, validationError(err)
	}
	if err := validateReleaseYear(normalized.ReleaseYear, uc.now()); err != nil {
		return nil, err
	}

	movie := &Movie{
		ID:            NewID(),
		Title:         normalized.Title,
		Genre:         normalized.Genre,
		ReleaseYear:   normalized.ReleaseYear,
		Director:      normalized.Director,
		Cast:          normalized.Cast,
		Synopsis:      normalized.Synopsis,
		AverageRating: 0,
	}
	if normalized.PosterURL != "" {
		movie.PosterURL = &normalized.PosterURL
	}

	if err := uc.movieRepo.CreateMovie(ctx, movie); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("movie %s added: %q (%d)", movie.ID, movie.Title, movie.ReleaseYear)
	return movie, nil
}

// UploadPoster stores a poster image and returns the URL to pass as posterURL.
func (uc *CatalogUseCase) UploadPoster(ctx context.Context, image *Image) (string, error) {
	if image == nil || image.Body == nil {
		return "", InvalidArgument("image is required")
	}
	url, err := uc.images.Upload(ctx, "posters", image)
	if err != nil {
		return "", err
	}
	return url, nil
}

// ResolveMovieSort maps caller supplied sort values onto a supported sort,
// falling back to title ascending.
func ResolveMovieSort(sortBy, sortOrder string) MovieSort {
	field := MovieSortField(sortBy)
	switch field {
	case SortByTitle, SortByReleaseYear, SortByAverageRating, SortByCreatedAt:
	default:
		field = SortByTitle
	}
	return MovieSort{Field: field, Desc: strings.EqualFold(sortOrder, "desc")}
}

// ListMovies returns one filtered, sorted page of the catalog.
func (uc *CatalogUseCase) ListMovies(ctx context.Context, query *MovieListQuery) (*MoviePage, error) {
	page, limit, err := normalizePage(query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	filter := normalizeFilter(query.Filter)
	order := ResolveMovieSort(query.SortBy, query.SortOrder)

	movies, total, err := uc.movieRepo.ListMovies(ctx, filter, order, pageOffset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	return &MoviePage{
		Movies:     movies,
		Pagination: NewPagination(page, limit, total),
		Filter:     filter,
		Sort:       order,
	}, nil
}

// normalizeFilter drops blank text filters.
func normalizeFilter(f MovieFilter) MovieFilter {
	blank := func(s *string) *string {
		if s == nil {
			return nil
		}
		if v := strings.TrimSpace(*s); v != "" {
			return &v
		}
		return nil
	}
	f.Search = blank(f.Search)
	f.Genre = blank(f.Genre)
	f.Director = blank(f.Director)
	return f
}

// GetMovieDetail returns the movie, all of its reviews newest first and the
// rating histogram. A malformed id is reported as ErrMovieNotFound.
func (uc *CatalogUseCase) GetMovieDetail(ctx context.Context, movieID string) (*MovieDetail, error) {
	if !ValidID(movieID) {
		return nil, ErrMovieNotFound
	}

	var (
		movie   *Movie
		reviews []*ReviewWithAuthor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movie, err = uc.movieRepo.GetMovie(gctx, movieID)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = uc.reviewRepo.ListReviewsByMovie(gctx, movieID)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return &MovieDetail{
		Movie:   movie,
		Reviews: reviews,
		Stats:   reviewStats(movie, reviews),
	}, nil
}

func reviewStats(movie *Movie, reviews []*ReviewWithAuthor) ReviewStats {
	distribution := make(map[int]int, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		distribution[star] = 0
	}
	for _, r := range reviews {
		distribution[r.Rating]++
	}
	return ReviewStats{
		TotalReviews:  len(reviews),
		AverageRating: movie.AverageRating,
		Distribution:  distribution,
	}
}
