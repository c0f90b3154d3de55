package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
)

// memStore is an in-memory implementation of every repository interface. It
// enforces the same uniqueness constraints the database does.
type memStore struct {
	mu        sync.Mutex
	movies    map[string]*Movie
	users     map[string]*User
	reviews   map[string]*Review
	watchlist map[string]*WatchlistEntry

	updateAverageErr error
	uploads          []string
}

func newMemStore() *memStore {
	return &memStore{
		movies:    make(map[string]*Movie),
		users:     make(map[string]*User),
		reviews:   make(map[string]*Review),
		watchlist: make(map[string]*WatchlistEntry),
	}
}

func pairKey(userID, movieID string) string { return userID + "/" + movieID }

func copyMovie(m *Movie) *Movie {
	c := *m
	c.Genre = append([]string(nil), m.Genre...)
	c.Cast = append([]string(nil), m.Cast...)
	return &c
}

func (s *memStore) CreateMovie(_ context.Context, movie *Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.Title == movie.Title && m.ReleaseYear == movie.ReleaseYear {
			return ErrMovieExists
		}
	}
	s.movies[movie.ID] = copyMovie(movie)
	return nil
}

func (s *memStore) GetMovie(_ context.Context, id string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return copyMovie(m), nil
}

func (s *memStore) GetMovies(_ context.Context, ids []string) (map[string]*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Movie, len(ids))
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			out[id] = copyMovie(m)
		}
	}
	return out, nil
}

func (s *memStore) ListMovies(_ context.Context, f MovieFilter, order MovieSort, offset, limit int) ([]*Movie, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*Movie
	for _, m := range s.movies {
		if f.Search != nil && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(*f.Search)) {
			continue
		}
		if f.Director != nil && !strings.Contains(strings.ToLower(m.Director), strings.ToLower(*f.Director)) {
			continue
		}
		if f.Genre != nil && !containsString(m.Genre, *f.Genre) {
			continue
		}
		if f.Year != nil && m.ReleaseYear != *f.Year {
			continue
		}
		if f.MinRating != nil && m.AverageRating < *f.MinRating {
			continue
		}
		if f.MaxRating != nil && m.AverageRating > *f.MaxRating {
			continue
		}
		matched = append(matched, copyMovie(m))
	}

	less := func(a, b *Movie) int {
		switch order.Field {
		case SortByReleaseYear:
			return a.ReleaseYear - b.ReleaseYear
		case SortByAverageRating:
			switch {
			case a.AverageRating < b.AverageRating:
				return -1
			case a.AverageRating > b.AverageRating:
				return 1
			}
			return 0
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return strings.Compare(a.Title, b.Title)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		c := less(matched[i], matched[j])
		if c == 0 {
			c = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*Movie{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (s *memStore) LockMovie(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[id]; !ok {
		return ErrMovieNotFound
	}
	return nil
}

func (s *memStore) UpdateAverageRating(_ context.Context, id string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateAverageErr != nil {
		return s.updateAverageErr
	}
	m, ok := s.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	m.AverageRating = rating
	return nil
}

func (s *memStore) CreateReview(_ context.Context, review *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(review.UserID, review.MovieID)
	if _, ok := s.reviews[key]; ok {
		return ErrReviewExists
	}
	c := *review
	s.reviews[key] = &c
	return nil
}

func (s *memStore) ListReviewsByMovie(_ context.Context, movieID string) ([]*ReviewWithAuthor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ReviewWithAuthor
	for _, r := range s.reviews {
		if r.MovieID != movieID {
			continue
		}
		c := *r
		var author *User
		if u, ok := s.users[r.UserID]; ok {
			uc := *u
			author = &uc
		}
		out = append(out, &ReviewWithAuthor{Review: &c, Author: author})
	}
	return out, nil
}

func (s *memStore) RatingStats(_ context.Context, movieID string) (*RatingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &RatingStats{}
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			stats.Count++
			stats.Sum += int64(r.Rating)
		}
	}
	return stats, nil
}

func (s *memStore) AddEntry(_ context.Context, entry *WatchlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(entry.UserID, entry.MovieID)
	if _, ok := s.watchlist[key]; ok {
		return ErrAlreadyInWatchlist
	}
	c := *entry
	s.watchlist[key] = &c
	return nil
}

func (s *memStore) GetEntry(_ context.Context, userID, movieID string) (*WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.watchlist[pairKey(userID, movieID)]
	if !ok {
		return nil, ErrWatchlistEntryNotFound
	}
	c := *e
	return &c, nil
}

func (s *memStore) DeleteEntry(_ context.Context, userID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(userID, movieID)
	if _, ok := s.watchlist[key]; !ok {
		return ErrWatchlistEntryNotFound
	}
	delete(s.watchlist, key)
	return nil
}

func (s *memStore) ListEntries(_ context.Context, userID string, order WatchlistSort, offset, limit int) ([]*WatchlistEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*WatchlistEntry
	for _, e := range s.watchlist {
		if e.UserID == userID {
			c := *e
			matched = append(matched, &c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := a.DateAdded.Compare(b.DateAdded)
		if order.Field == SortWatchlistCreatedAt {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return []*WatchlistEntry{}, total, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total, nil
}

func (s *memStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == user.Name || u.Email == user.Email {
			return ErrUserExists
		}
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memStore) UpdateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && (u.Name == user.Name || u.Email == user.Email) {
			return ErrUserExists
		}
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *memStore) Upload(_ context.Context, folder string, image *Image) (string, error) {
	if _, err := io.ReadAll(image.Body); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://images.test/%s/%s", folder, image.Name)
	s.mu.Lock()
	s.uploads = append(s.uploads, url)
	s.mu.Unlock()
	return url, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(subject, role string) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	return role + ":" + subject, nil
}

// fixture wires every use case to one memStore.
type fixture struct {
	store      *memStore
	aggregator *RatingAggregator
	catalog    *CatalogUseCase
	reviews    *ReviewUseCase
	watchlist  *WatchlistUseCase
	users      *UserUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	logger := log.DefaultLogger
	aggregator := NewRatingAggregator(store, store, store, logger)
	return &fixture{
		store:      store,
		aggregator: aggregator,
		catalog:    NewCatalogUseCase(store, store, store, logger),
		reviews:    NewReviewUseCase(store, store, store, aggregator, logger),
		watchlist:  NewWatchlistUseCase(store, store, store, logger),
		users:      NewUserUseCase(store, fakeTokens{}, store, testAdmin, logger),
	}
}

func (f *fixture) addMovie(t *testing.T, title string, year int) *Movie {
	t.Helper()
	m, err := f.catalog.AddMovie(context.Background(), &AddMovieInput{
		Title:       title,
		Genre:       []string{"Drama"},
		ReleaseYear: year,
		Director:    "Denis Villeneuve",
		Cast:        []string{"Amy Adams"},
		Synopsis:    "A linguist works with the military to communicate with alien lifeforms.",
	})
	if err != nil {
		t.Fatalf("add movie %q: %v", title, err)
	}
	return m
}

func (f *fixture) addUser(t *testing.T, name string) *User {
	t.Helper()
	s, err := f.users.Register(context.Background(), &RegisterInput{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register %q: %v", name, err)
	}
	return s.User
}
