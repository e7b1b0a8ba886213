package repository

import (
	"testing"

	apperrors "boxoffice/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	repo := DefaultCatalog()

	movies := repo.List()
	require.Len(t, movies, 2)
	assert.Equal(t, "M01", movies[0].ID)
	assert.Equal(t, "Inside Out", movies[0].Title)
	assert.Equal(t, "M02", movies[1].ID)
	assert.Equal(t, "Toy Story", movies[1].Title)
	assert.Len(t, repo.Showtimes(), 6)

	for _, st := range repo.Showtimes() {
		assert.Equal(t, 100, st.TotalSeats)
		assert.Equal(t, 100, st.Available())
	}
}

func TestFindMovie(t *testing.T) {
	repo := DefaultCatalog()

	movie, err := repo.FindMovie("M02")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story", movie.Title)

	_, err = repo.FindMovie("M99")
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)

	_, err = repo.FindMovie("")
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
}

func TestFindShowtime(t *testing.T) {
	repo := DefaultCatalog()
	movie, err := repo.FindMovie("M01")
	require.NoError(t, err)

	st, err := repo.FindShowtime(movie, "1:00 PM")
	require.NoError(t, err)
	assert.Equal(t, "1:00 PM", st.Time)
	assert.Equal(t, "M01", st.MovieID)

	// labels match exactly
	_, err = repo.FindShowtime(movie, "1:00 pm")
	assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)

	// showtime of another movie
	_, err = repo.FindShowtime(movie, "3:00 PM")
	assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)
}

func TestAddMovieValidation(t *testing.T) {
	repo := NewMovieRepository()

	_, err := repo.AddMovie("", "Title")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = repo.AddMovie("M01", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = repo.AddMovie("M01", "Inside Out")
	require.NoError(t, err)

	_, err = repo.AddMovie("M01", "Inside Out 2")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Len(t, repo.List(), 1)
}

func TestAddShowtimeValidation(t *testing.T) {
	repo := NewMovieRepository()
	_, err := repo.AddMovie("M01", "Inside Out")
	require.NoError(t, err)

	tests := []struct {
		name    string
		movieID string
		label   string
		seats   int
		wantErr error
	}{
		{name: "unknown movie", movieID: "M02", label: "10:00 AM", seats: 10, wantErr: apperrors.ErrMovieNotFound},
		{name: "empty label", movieID: "M01", label: "", seats: 10, wantErr: apperrors.ErrInvalidArgument},
		{name: "zero capacity", movieID: "M01", label: "10:00 AM", seats: 0, wantErr: apperrors.ErrInvalidArgument},
		{name: "negative capacity", movieID: "M01", label: "10:00 AM", seats: -5, wantErr: apperrors.ErrInvalidArgument},
		{name: "valid", movieID: "M01", label: "10:00 AM", seats: 10},
		{name: "duplicate label", movieID: "M01", label: "10:00 AM", seats: 20, wantErr: apperrors.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddShowtime(tt.movieID, tt.label, tt.seats)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	movie, err := repo.FindMovie("M01")
	require.NoError(t, err)
	require.Len(t, movie.Showtimes, 1)
	assert.Equal(t, 10, movie.Showtimes[0].TotalSeats)
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
movies:
  - id: M10
    title: Up
    showtimes:
      - time: "9:00 AM"
        seats: 40
      - time: "9:00 PM"
  - id: M11
    title: Coco
`)

	repo, err := ParseCatalog(data)
	require.NoError(t, err)

	movies := repo.List()
	require.Len(t, movies, 2)
	require.Len(t, movies[0].Showtimes, 2)
	assert.Equal(t, 40, movies[0].Showtimes[0].TotalSeats)
	assert.Equal(t, defaultShowtimeSeats, movies[0].Showtimes[1].TotalSeats)
	assert.Empty(t, movies[1].Showtimes)
}

func TestParseCatalogRejectsBadData(t *testing.T) {
	_, err := ParseCatalog([]byte("movies: ["))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`
movies:
  - id: M10
    title: Up
  - id: M10
    title: Up again
`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = ParseCatalog([]byte(`
movies:
  - id: M10
    title: Up
    showtimes:
      - time: "9:00 AM"
        seats: -3
`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestLoadCatalogFileMissing(t *testing.T) {
	_, err := LoadCatalogFile(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
