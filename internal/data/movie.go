package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moviereview/internal/biz"
)

const movieCacheTTL = 15 * time.Minute

// movieSortColumns maps the sortable fields onto columns.
var movieSortColumns = map[biz.MovieSortField]string{
	biz.SortByTitle:         "title",
	biz.SortByReleaseYear:   "release_year",
	biz.SortByAverageRating: "average_rating",
	biz.SortByCreatedAt:     "created_at",
}

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func movieCacheKey(id string) string {
	return fmt.Sprintf("movie:%s", id)
}

func (r *movieRepo) CreateMovie(ctx context.Context, movie *biz.Movie) error {
	dbMovie := movieToModel(movie)

	if err := r.data.DB(ctx).Create(dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrMovieExists
		}
		return fmt.Errorf("failed to create movie: %w", err)
	}

	movie.CreatedAt = dbMovie.CreatedAt
	movie.UpdatedAt = dbMovie.UpdatedAt
	return nil
}

func (r *movieRepo) GetMovie(ctx context.Context, id string) (*biz.Movie, error) {
	// Try cache first if Redis is available
	if r.data.rdb != nil {
		cached, err := r.data.rdb.Get(ctx, movieCacheKey(id)).Result()
		if err == nil {
			var movie biz.Movie
			if err := json.Unmarshal([]byte(cached), &movie); err == nil {
				r.log.Debugf("cache hit for movie: %s", id)
				return &movie, nil
			}
		}
	}

	var dbMovie Movie
	if err := r.data.DB(ctx).Where("id = ?", id).First(&dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	movie := movieToBiz(&dbMovie)

	if r.data.rdb != nil {
		if data, err := json.Marshal(movie); err == nil {
			r.data.rdb.Set(ctx, movieCacheKey(id), data, movieCacheTTL)
		}
	}

	return movie, nil
}

func (r *movieRepo) GetMovies(ctx context.Context, ids []string) (map[string]*biz.Movie, error) {
	movies := make(map[string]*biz.Movie, len(ids))
	if len(ids) == 0 {
		return movies, nil
	}

	var dbMovies []Movie
	if err := r.data.DB(ctx).Where("id IN ?", ids).Find(&dbMovies).Error; err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}
	for i := range dbMovies {
		movies[dbMovies[i].ID] = movieToBiz(&dbMovies[i])
	}
	return movies, nil
}

func (r *movieRepo) ListMovies(ctx context.Context, filter biz.MovieFilter, order biz.MovieSort, offset, limit int) ([]*biz.Movie, int64, error) {
	query := r.data.DB(ctx).Model(&Movie{}).Scopes(movieFilterScope(filter)).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if total == 0 || int64(offset) >= total {
		return []*biz.Movie{}, total, nil
	}

	var dbMovies []Movie
	err := query.Scopes(movieOrderScope(order)).Offset(offset).Limit(limit).Find(&dbMovies).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*biz.Movie, 0, len(dbMovies))
	for i := range dbMovies {
		movies = append(movies, movieToBiz(&dbMovies[i]))
	}
	return movies, total, nil
}

// LockMovie takes the row lock of the movie for the rest of the transaction.
func (r *movieRepo) LockMovie(ctx context.Context, id string) error {
	var dbMovie Movie
	err := r.data.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		Take(&dbMovie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return biz.ErrMovieNotFound
		}
		return fmt.Errorf("failed to lock movie: %w", err)
	}
	return nil
}

func (r *movieRepo) UpdateAverageRating(ctx context.Context, id string, rating float64) error {
	result := r.data.DB(ctx).Model(&Movie{}).Where("id = ?", id).Update("average_rating", rating)
	if result.Error != nil {
		return fmt.Errorf("failed to update average rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMovieNotFound
	}

	// Invalidate cache once the new value is visible to readers
	if r.data.rdb != nil {
		r.data.onCommit(ctx, func(ctx context.Context) {
			if err := r.data.rdb.Del(ctx, movieCacheKey(id)).Err(); err != nil {
				r.log.Warnf("failed to invalidate cached movie %s: %v", id, err)
			}
		})
	}
	return nil
}

func movieFilterScope(f biz.MovieFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != nil {
			db = db.Where("title ILIKE ?", containsPattern(*f.Search))
		}
		if f.Genre != nil {
			db = db.Where("? = ANY(genre)", *f.Genre)
		}
		if f.Year != nil {
			db = db.Where("release_year = ?", *f.Year)
		}
		if f.Director != nil {
			db = db.Where("director ILIKE ?", containsPattern(*f.Director))
		}
		if f.MinRating != nil {
			db = db.Where("average_rating >= ?", *f.MinRating)
		}
		if f.MaxRating != nil {
			db = db.Where("average_rating <= ?", *f.MaxRating)
		}
		return db
	}
}

// movieOrderScope sorts by the requested column with id as tiebreaker so that
// page boundaries are stable.
func movieOrderScope(order biz.MovieSort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := movieSortColumns[order.Field]
		if !ok {
			column = movieSortColumns[biz.SortByTitle]
		}
		return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}, Desc: order.Desc},
			{Column: clause.Column{Name: "id"}, Desc: order.Desc},
		}})
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func movieToModel(m *biz.Movie) *Movie {
	return &Movie{
		ID:            m.ID,
		Title:         m.Title,
		Genre:         m.Genre,
		ReleaseYear:   m.ReleaseYear,
		Director:      m.Director,
		Cast:          m.Cast,
		Synopsis:      m.Synopsis,
		PosterURL:     m.PosterURL,
		AverageRating: m.AverageRating,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func movieToBiz(m *Movie) *biz.Movie {
	return &biz.Movie{
		ID:            m.ID,
		Title:         m.Title,
		Genre:         []string(m.Genre),
		ReleaseYear:   m.ReleaseYear,
		Director:      m.Director,
		Cast:          []string(m.Cast),
		Synopsis:      m.Synopsis,
		PosterURL:     m.PosterURL,
		AverageRating: m.AverageRating,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
