package data

import (
	"time"

	"github.com/lib/pq"
)

// Movie represents the movies table
type Movie struct {
	ID            string         `gorm:"primaryKey;size:24"`
	Title         string         `gorm:"not null;size:255;uniqueIndex:uq_movies_title_year;index:idx_movies_title_lower,expression:LOWER(title)"`
	Genre         pq.StringArray `gorm:"not null;type:text[]"`
	ReleaseYear   int            `gorm:"not null;uniqueIndex:uq_movies_title_year;index:idx_movies_release_year"`
	Director      string         `gorm:"not null;size:255"`
	Cast          pq.StringArray `gorm:"not null;type:text[]"`
	Synopsis      string         `gorm:"not null;size:2000"`
	PosterURL     *string        `gorm:"column:poster_url;size:1024"`
	AverageRating float64        `gorm:"not null;default:0;type:decimal(2,1);index:idx_movies_average_rating;check:chk_movies_average_rating,average_rating >= 0 AND average_rating <= 5"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// User represents the users table
type User struct {
	ID             string    `gorm:"primaryKey;size:24"`
	Name           string    `gorm:"not null;size:255;uniqueIndex:uq_users_name"`
	Email          string    `gorm:"not null;size:255;uniqueIndex:uq_users_email"`
	PasswordHash   string    `gorm:"column:password_hash;not null;size:255"`
	ProfilePicture *string   `gorm:"column:profile_picture;size:1024"`
	JoinDate       time.Time `gorm:"not null;type:timestamptz"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// Review represents the reviews table. One row per (user, movie).
type Review struct {
	ID         string    `gorm:"primaryKey;size:24"`
	UserID     string    `gorm:"not null;size:24;uniqueIndex:uq_reviews_user_movie"`
	MovieID    string    `gorm:"not null;size:24;uniqueIndex:uq_reviews_user_movie;index:idx_reviews_movie_id"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	ReviewText string    `gorm:"column:review_text;not null;size:1000"`
	Timestamp  time.Time `gorm:"not null;type:timestamptz"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	// Foreign keys
	User  User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Movie Movie `gorm:"foreignKey:MovieID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName overrides the table name
func (Review) TableName() string {
	return "reviews"
}

// WatchlistEntry represents the watchlist table. One row per (user, movie).
type WatchlistEntry struct {
	ID        string    `gorm:"primaryKey;size:24"`
	UserID    string    `gorm:"not null;size:24;uniqueIndex:uq_watchlist_user_movie;index:idx_watchlist_user_date,priority:1"`
	MovieID   string    `gorm:"not null;size:24;uniqueIndex:uq_watchlist_user_movie"`
	DateAdded time.Time `gorm:"not null;type:timestamptz;index:idx_watchlist_user_date,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Foreign keys
	User  User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Movie Movie `gorm:"foreignKey:MovieID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName overrides the table name
func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// ratingStats is the scan target of the rating aggregate query
type ratingStats struct {
	Count int64
	Sum   int64
}
