package biz

import (
	"context"
	"io"
	"time"
)

// Movie domain model. AverageRating is derived from reviews and only written by
// the RatingAggregator.
type Movie struct {
	ID            string
	Title         string
	Genre         []string
	ReleaseYear   int
	Director      string
	Cast          []string
	Synopsis      string
	PosterURL     *string
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User domain model
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	ProfilePicture *string
	JoinDate       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Review domain model. At most one exists per (UserID, MovieID).
type Review struct {
	ID         string
	UserID     string
	MovieID    string
	Rating     int
	ReviewText string
	Timestamp  time.Time
	CreatedAt  time.Time
}

// ReviewWithAuthor is a review joined at read time with its author's public fields.
// Author is nil when the referenced user no longer resolves.
type ReviewWithAuthor struct {
	*Review
	Author *User
}

// SubmittedReview is the read-after-write view returned by SubmitReview.
type SubmittedReview struct {
	Review *Review
	User   *User
	Movie  *Movie
}

// WatchlistEntry domain model. At most one exists per (UserID, MovieID).
type WatchlistEntry struct {
	ID        string
	UserID    string
	MovieID   string
	DateAdded time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WatchlistItem is an entry resolved against the catalog. Movie is nil when the
// referenced movie no longer resolves.
type WatchlistItem struct {
	Entry *WatchlistEntry
	Movie *Movie
}

// RemovedMovie describes a watchlist removal.
type RemovedMovie struct {
	MovieID     string
	Title       string
	ReleaseYear int
	RemovedAt   time.Time
}

// RatingStats is the raw aggregate of a movie's review ratings.
type RatingStats struct {
	Count int64
	Sum   int64
}

// ReviewStats summarises the reviews of one movie.
type ReviewStats struct {
	TotalReviews  int
	AverageRating float64
	Distribution  map[int]int
}

// MovieDetail is the movie-detail view.
type MovieDetail struct {
	Movie   *Movie
	Reviews []*ReviewWithAuthor
	Stats   ReviewStats
}

// MovieFilter fields are optional and combined with AND.
type MovieFilter struct {
	Search    *string
	Genre     *string
	Year      *int
	Director  *string
	MinRating *float64
	MaxRating *float64
}

// MovieSortField is a sortable catalog column.
type MovieSortField string

const (
	SortByTitle         MovieSortField = "title"
	SortByReleaseYear   MovieSortField = "releaseYear"
	SortByAverageRating MovieSortField = "averageRating"
	SortByCreatedAt     MovieSortField = "createdAt"
)

type MovieSort struct {
	Field MovieSortField
	Desc  bool
}

// WatchlistSortField is a sortable watchlist column.
type WatchlistSortField string

const (
	SortByDateAdded        WatchlistSortField = "dateAdded"
	SortWatchlistCreatedAt WatchlistSortField = "createdAt"
)

type WatchlistSort struct {
	Field WatchlistSortField
	Desc  bool
}

// MovieListQuery is the input of ListMovies. SortBy and SortOrder are raw caller
// values; unrecognized fields fall back to title.
type MovieListQuery struct {
	Filter    MovieFilter
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// MoviePage is one page of ListMovies.
type MoviePage struct {
	Movies     []*Movie
	Pagination Pagination
	Filter     MovieFilter
	Sort       MovieSort
}

// WatchlistQuery is the input of ListWatchlist.
type WatchlistQuery struct {
	UserID    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// WatchlistPage is one page of ListWatchlist.
type WatchlistPage struct {
	User       *User
	Items      []*WatchlistItem
	Pagination Pagination
	Sort       WatchlistSort
}

// Image is an uploaded file handed to the image host.
type Image struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MovieRepo is the Catalog Store.
type MovieRepo interface {
	CreateMovie(ctx context.Context, movie *Movie) error
	GetMovie(ctx context.Context, id string) (*Movie, error)
	GetMovies(ctx context.Context, ids []string) (map[string]*Movie, error)
	ListMovies(ctx context.Context, filter MovieFilter, sort MovieSort, offset, limit int) ([]*Movie, int64, error)
	// LockMovie takes a row lock on the movie for the enclosing transaction.
	LockMovie(ctx context.Context, id string) error
	UpdateAverageRating(ctx context.Context, id string, rating float64) error
}

// ReviewRepo is the Review Ledger. CreateReview must reject a duplicate
// (UserID, MovieID) with ErrReviewExists.
type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) error
	ListReviewsByMovie(ctx context.Context, movieID string) ([]*ReviewWithAuthor, error)
	RatingStats(ctx context.Context, movieID string) (*RatingStats, error)
}

// WatchlistRepo is the Watchlist Index. AddEntry must reject a duplicate
// (UserID, MovieID) with ErrAlreadyInWatchlist.
type WatchlistRepo interface {
	AddEntry(ctx context.Context, entry *WatchlistEntry) error
	GetEntry(ctx context.Context, userID, movieID string) (*WatchlistEntry, error)
	DeleteEntry(ctx context.Context, userID, movieID string) error
	ListEntries(ctx context.Context, userID string, sort WatchlistSort, offset, limit int) ([]*WatchlistEntry, int64, error)
}

// UserRepo is the Identity Store. CreateUser and UpdateUser must reject a
// duplicate name or email with ErrUserExists.
type UserRepo interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}

// Transaction runs fn inside a storage transaction carried by ctx.
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ImageHost stores an uploaded image and returns its stable URL.
type ImageHost interface {
	Upload(ctx context.Context, folder string, image *Image) (string, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}
