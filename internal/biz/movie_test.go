package biz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMovieInput() *AddMovieInput {
	return &AddMovieInput{
		Title:       "Dune",
		Genre:       []string{"Sci-Fi", "Adventure"},
		ReleaseYear: 2021,
		Director:    "Denis Villeneuve",
		Cast:        []string{"Timothée Chalamet", "Zendaya"},
		Synopsis:    "A noble family becomes embroiled in a war for control over the galaxy's most valuable asset.",
	}
}

func TestAddMovie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validMovieInput()
	in.Title = "  Dune "
	in.Genre = []string{" Sci-Fi", "", "Adventure "}
	movie, err := f.catalog.AddMovie(ctx, in)
	require.NoError(t, err)
	assert.True(t, ValidID(movie.ID))
	assert.Equal(t, "Dune", movie.Title)
	assert.Equal(t, []string{"Sci-Fi", "Adventure"}, movie.Genre)
	assert.Equal(t, 0.0, movie.AverageRating)
	assert.Nil(t, movie.PosterURL)

	_, err = f.catalog.AddMovie(ctx, validMovieInput())
	assert.ErrorIs(t, err, ErrMovieExists)

	remake := validMovieInput()
	remake.ReleaseYear = 1984
	_, err = f.catalog.AddMovie(ctx, remake)
	assert.NoError(t, err)
}

func TestAddMovieValidation(t *testing.T) {
	f := newFixture(t)
	f.catalog.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		mutate func(in *AddMovieInput)
		field  string
	}{
		{"missing title", func(in *AddMovieInput) { in.Title = "  " }, "title"},
		{"no genre", func(in *AddMovieInput) { in.Genre = nil }, "genre"},
		{"blank genre", func(in *AddMovieInput) { in.Genre = []string{" "} }, "genre"},
		{"no cast", func(in *AddMovieInput) { in.Cast = []string{} }, "cast"},
		{"missing director", func(in *AddMovieInput) { in.Director = "" }, "director"},
		{"missing synopsis", func(in *AddMovieInput) { in.Synopsis = "" }, "synopsis"},
		{"synopsis too long", func(in *AddMovieInput) { in.Synopsis = strings.Repeat("s", MaxSynopsisLength+1) }, "synopsis"},
		{"bad poster", func(in *AddMovieInput) { in.PosterURL = "not a url" }, "posterURL"},
		{"year too early", func(in *AddMovieInput) { in.ReleaseYear = 1887 }, "releaseYear"},
		{"year too late", func(in *AddMovieInput) { in.ReleaseYear = 2032 }, "releaseYear"},
		{"missing year", func(in *AddMovieInput) { in.ReleaseYear = 0 }, "releaseYear"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validMovieInput()
			tt.mutate(in)
			_, err := f.catalog.AddMovie(context.Background(), in)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestAddMovieYearBounds(t *testing.T) {
	f := newFixture(t)
	f.catalog.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	for _, year := range []int{MinReleaseYear, 2031} {
		in := validMovieInput()
		in.ReleaseYear = year
		_, err := f.catalog.AddMovie(context.Background(), in)
		assert.NoError(t, err, "year %d", year)
	}
}

func TestListMoviesPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	titles := []string{"Alien", "Blade Runner", "Contact", "Dune", "Enemy", "Fargo", "Gravity"}
	for i, title := range titles {
		f.addMovie(t, title, 2000+i)
	}

	first, err := f.catalog.ListMovies(ctx, &MovieListQuery{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 7, HasNextPage: true, Limit: 3}, first.Pagination)
	assert.Equal(t, MovieSort{Field: SortByTitle}, first.Sort)

	var got []string
	for page := 1; page <= first.Pagination.TotalPages; page++ {
		res, err := f.catalog.ListMovies(ctx, &MovieListQuery{Page: page, Limit: 3})
		require.NoError(t, err)
		for _, m := range res.Movies {
			got = append(got, m.Title)
		}
	}
	if diff := cmp.Diff(titles, got); diff != "" {
		t.Errorf("concatenated pages mismatch (-want +got):\n%s", diff)
	}

	last, err := f.catalog.ListMovies(ctx, &MovieListQuery{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.False(t, last.Pagination.HasNextPage)
	assert.True(t, last.Pagination.HasPrevPage)

	beyond, err := f.catalog.ListMovies(ctx, &MovieListQuery{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Movies)
	assert.Equal(t, int64(7), beyond.Pagination.TotalItems)
}

func TestListMoviesRejectsBadPage(t *testing.T) {
	f := newFixture(t)
	for _, q := range []*MovieListQuery{{Page: -1}, {Limit: -5}, {Limit: MaxLimit + 1}} {
		_, err := f.catalog.ListMovies(context.Background(), q)
		assert.True(t, IsInvalidArgument(err), "query %+v: %v", q, err)
	}
}

func TestListMoviesSortAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arrival := f.addMovie(t, "Arrival", 2016)
	sicario := f.addMovie(t, "Sicario", 2015)
	f.addMovie(t, "Prisoners", 2013)
	f.store.movies[arrival.ID].AverageRating = 4.5
	f.store.movies[sicario.ID].AverageRating = 3.9

	res, err := f.catalog.ListMovies(ctx, &MovieListQuery{SortBy: "releaseYear", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Arrival", "Sicario", "Prisoners"}, movieTitles(res.Movies))

	res, err = f.catalog.ListMovies(ctx, &MovieListQuery{SortBy: "budget", SortOrder: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, MovieSort{Field: SortByTitle}, res.Sort)
	assert.Equal(t, []string{"Arrival", "Prisoners", "Sicario"}, movieTitles(res.Movies))

	minRating := 4.0
	res, err = f.catalog.ListMovies(ctx, &MovieListQuery{Filter: MovieFilter{MinRating: &minRating}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Arrival"}, movieTitles(res.Movies))

	search, blank := "ICAR", "  "
	res, err = f.catalog.ListMovies(ctx, &MovieListQuery{Filter: MovieFilter{Search: &search, Genre: &blank}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sicario"}, movieTitles(res.Movies))
	assert.Nil(t, res.Filter.Genre)
}

func movieTitles(movies []*Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestResolveMovieSort(t *testing.T) {
	tests := []struct {
		by, order string
		want      MovieSort
	}{
		{"", "", MovieSort{Field: SortByTitle}},
		{"averageRating", "DESC", MovieSort{Field: SortByAverageRating, Desc: true}},
		{"createdAt", "asc", MovieSort{Field: SortByCreatedAt}},
		{"releaseYear", "random", MovieSort{Field: SortByReleaseYear}},
		{"director", "desc", MovieSort{Field: SortByTitle, Desc: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveMovieSort(tt.by, tt.order), "sortBy=%q sortOrder=%q", tt.by, tt.order)
	}
}

func TestGetMovieDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.addMovie(t, "Arrival", 2016)

	detail, err := f.catalog.GetMovieDetail(ctx, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Reviews)
	assert.Equal(t, ReviewStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}, detail.Stats)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, rating := range []float64{5, 4, 4} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.reviews.now = func() time.Time { return at }
		_, err := f.reviews.SubmitReview(ctx, f.addUser(t, "User"+string(rune('A'+i))).ID, movie.ID, rating, "ok")
		require.NoError(t, err)
	}

	detail, err = f.catalog.GetMovieDetail(ctx, movie.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 3)
	assert.Equal(t, "UserC", detail.Reviews[0].Author.Name)
	assert.Equal(t, "UserA", detail.Reviews[2].Author.Name)
	assert.Equal(t, 4.3, detail.Movie.AverageRating)
	assert.Equal(t, ReviewStats{
		TotalReviews:  3,
		AverageRating: 4.3,
		Distribution:  map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1},
	}, detail.Stats)
}

func TestGetMovieDetailNotFound(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{NewID(), "", "abc", strings.Repeat("z", IDLength)} {
		_, err := f.catalog.GetMovieDetail(context.Background(), id)
		assert.ErrorIs(t, err, ErrMovieNotFound, "id %q", id)
	}
}

func TestUploadPoster(t *testing.T) {
	f := newFixture(t)

	url, err := f.catalog.UploadPoster(context.Background(), &Image{Name: "dune.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "https://images.test/posters/dune.png", url)

	_, err = f.catalog.UploadPoster(context.Background(), nil)
	assert.True(t, IsInvalidArgument(err))
}
