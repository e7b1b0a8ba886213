package repository

import (
	"fmt"
	"sync"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

// MovieRepository holds the movie catalog. It is populated at startup and
// read-only afterwards.
type MovieRepository struct {
	mu     sync.RWMutex
	movies []*models.Movie
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{}
}

// AddMovie registers a new movie with no showtimes
func (r *MovieRepository) AddMovie(id, title string) (*models.Movie, error) {
	if id == "" || title == "" {
		return nil, fmt.Errorf("%w: movie id and title are required", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.movies {
		if m.ID == id {
			return nil, fmt.Errorf("%w: duplicate movie id %q", apperrors.ErrInvalidArgument, id)
		}
	}

	movie := &models.Movie{ID: id, Title: title}
	r.movies = append(r.movies, movie)
	return movie, nil
}

// AddShowtime appends a showtime to an existing movie. Labels are unique
// within a movie.
func (r *MovieRepository) AddShowtime(movieID, label string, totalSeats int) (*models.Showtime, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: showtime label is required", apperrors.ErrInvalidArgument)
	}
	if totalSeats <= 0 {
		return nil, fmt.Errorf("%w: showtime capacity must be positive, got %d", apperrors.ErrInvalidArgument, totalSeats)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	movie := r.findLocked(movieID)
	if movie == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMovieNotFound, movieID)
	}
	for _, st := range movie.Showtimes {
		if st.Time == label {
			return nil, fmt.Errorf("%w: duplicate showtime %q for movie %s", apperrors.ErrInvalidArgument, label, movieID)
		}
	}

	showtime := models.NewShowtime(movieID, label, totalSeats)
	movie.Showtimes = append(movie.Showtimes, showtime)
	return showtime, nil
}

// FindMovie looks a movie up by its identifier
func (r *MovieRepository) FindMovie(id string) (*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movie := r.findLocked(id)
	if movie == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMovieNotFound, id)
	}
	return movie, nil
}

// FindShowtime looks a showtime up by its exact start-time label
func (r *MovieRepository) FindShowtime(movie *models.Movie, label string) (*models.Showtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, st := range movie.Showtimes {
		if st.Time == label {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %q for movie %s", apperrors.ErrShowtimeNotFound, label, movie.ID)
}

// List returns movies in the order they were added
func (r *MovieRepository) List() []*models.Movie {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movies := make([]*models.Movie, len(r.movies))
	copy(movies, r.movies)
	return movies
}

// Showtimes returns every showtime in the catalog, movie by movie
func (r *MovieRepository) Showtimes() []*models.Showtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var showtimes []*models.Showtime
	for _, m := range r.movies {
		showtimes = append(showtimes, m.Showtimes...)
	}
	return showtimes
}

func (r *MovieRepository) findLocked(id string) *models.Movie {
	for _, m := range r.movies {
		if m.ID == id {
			return m
		}
	}
	return nil
}
