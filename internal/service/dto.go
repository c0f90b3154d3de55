package service

import (
	"time"

	"moviereview/internal/biz"
)

// Movie is the public view of a catalog entry.
type Movie struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Genre         []string  `json:"genre"`
	ReleaseYear   int       `json:"releaseYear"`
	Director      string    `json:"director"`
	Cast          []string  `json:"cast"`
	Synopsis      string    `json:"synopsis"`
	PosterURL     *string   `json:"posterURL"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserProfile is the public view of a user. The password hash is never exposed.
type UserProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profilePicture"`
	JoinDate       time.Time `json:"joinDate"`
}

// MovieSummary identifies a movie inside joined responses.
type MovieSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseYear"`
}

// MoviePagination describes one page of the catalog.
type MoviePagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalMovies int64 `json:"totalMovies"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

// WatchlistPagination describes one page of a watchlist.
type WatchlistPagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

func movieToDTO(m *biz.Movie) *Movie {
	if m == nil {
		return nil
	}
	genre, cast := m.Genre, m.Cast
	if genre == nil {
		genre = []string{}
	}
	if cast == nil {
		cast = []string{}
	}
	return &Movie{
		ID:            m.ID,
		Title:         m.Title,
		Genre:         genre,
		ReleaseYear:   m.ReleaseYear,
		Director:      m.Director,
		Cast:          cast,
		Synopsis:      m.Synopsis,
		PosterURL:     m.PosterURL,
		AverageRating: m.AverageRating,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func userToDTO(u *biz.User) *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		JoinDate:       u.JoinDate,
	}
}

func moviePagination(p biz.Pagination) MoviePagination {
	return MoviePagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalMovies: p.TotalItems,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
		Limit:       p.Limit,
	}
}

func watchlistPagination(p biz.Pagination) WatchlistPagination {
	return WatchlistPagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
		Limit:       p.Limit,
	}
}

func sortOrder(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}
