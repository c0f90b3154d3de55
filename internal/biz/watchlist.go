package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// WatchlistUseCase manages the per-user watchlist.
type WatchlistUseCase struct {
	watchlistRepo WatchlistRepo
	movieRepo     MovieRepo
	userRepo      UserRepo
	log           *log.Helper
	now           func() time.Time
}

// NewWatchlistUseCase creates a new WatchlistUseCase instance
func NewWatchlistUseCase(watchlistRepo WatchlistRepo, movieRepo MovieRepo, userRepo UserRepo, logger log.Logger) *WatchlistUseCase {
	return &WatchlistUseCase{
		watchlistRepo: watchlistRepo,
		movieRepo:     movieRepo,
		userRepo:      userRepo,
		log:           log.NewHelper(logger),
		now:           time.Now,
	}
}

// AddToWatchlist records movieID on userID's watchlist.
func (uc *WatchlistUseCase) AddToWatchlist(ctx context.Context, userID, movieID string) (*WatchlistItem, error) {
	if !ValidID(userID) {
		return nil, ErrUserNotFound
	}
	if !ValidID(movieID) {
		return nil, ErrMovieNotFound
	}
	if _, err := uc.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	movie, err := uc.movieRepo.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	entry := &WatchlistEntry{
		ID:        NewID(),
		UserID:    userID,
		MovieID:   movieID,
		DateAdded: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.watchlistRepo.AddEntry(ctx, entry); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("movie %s added to watchlist of user %s", movieID, userID)
	return &WatchlistItem{Entry: entry, Movie: movie}, nil
}

// RemoveFromWatchlist deletes the entry for (userID, movieID).
func (uc *WatchlistUseCase) RemoveFromWatchlist(ctx context.Context, userID, movieID string) (*RemovedMovie, error) {
	if !ValidID(userID) || !ValidID(movieID) {
		return nil, ErrWatchlistEntryNotFound
	}
	if _, err := uc.watchlistRepo.GetEntry(ctx, userID, movieID); err != nil {
		return nil, err
	}

	removed := &RemovedMovie{MovieID: movieID}
	movie, err := uc.movieRepo.GetMovie(ctx, movieID)
	switch {
	case err == nil:
		removed.Title = movie.Title
		removed.ReleaseYear = movie.ReleaseYear
	case errors.Is(err, ErrMovieNotFound):
		uc.log.WithContext(ctx).Warnf("watchlist entry of user %s references missing movie %s", userID, movieID)
	default:
		return nil, err
	}

	if err := uc.watchlistRepo.DeleteEntry(ctx, userID, movieID); err != nil {
		return nil, err
	}
	removed.RemovedAt = uc.now().UTC()

	uc.log.WithContext(ctx).Infof("movie %s removed from watchlist of user %s", movieID, userID)
	return removed, nil
}

// ResolveWatchlistSort defaults to dateAdded, newest first.
func ResolveWatchlistSort(sortBy, sortOrder string) WatchlistSort {
	field := WatchlistSortField(sortBy)
	switch field {
	case SortByDateAdded, SortWatchlistCreatedAt:
	default:
		field = SortByDateAdded
	}
	return WatchlistSort{Field: field, Desc: !strings.EqualFold(sortOrder, "asc")}
}

// ListWatchlist returns one page of the user's watchlist with every entry
// resolved against the catalog.
func (uc *WatchlistUseCase) ListWatchlist(ctx context.Context, query *WatchlistQuery) (*WatchlistPage, error) {
	if !ValidID(query.UserID) {
		return nil, ErrUserNotFound
	}
	page, limit, err := normalizePage(query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	order := ResolveWatchlistSort(query.SortBy, query.SortOrder)
	entries, total, err := uc.watchlistRepo.ListEntries(ctx, query.UserID, order, pageOffset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MovieID)
	}
	movies, err := uc.movieRepo.GetMovies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watchlist movies: %w", err)
	}

	items := make([]*WatchlistItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, &WatchlistItem{Entry: e, Movie: movies[e.MovieID]})
	}

	return &WatchlistPage{
		User:       user,
		Items:      items,
		Pagination: NewPagination(page, limit, total),
		Sort:       order,
	}, nil
}
