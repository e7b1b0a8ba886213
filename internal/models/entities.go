package models

import (
	"fmt"
	"sync"
	"time"

	apperrors "boxoffice/internal/errors"
)

// Movie represents a movie in the catalog
type Movie struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Showtimes []*Showtime `json:"-"`
}

func (m *Movie) String() string {
	return m.ID + ": " + m.Title
}

// Showtime is a scheduled screening of a movie with a fixed seat capacity.
// The available seat counter is guarded by its own mutex and always stays
// within [0, TotalSeats].
type Showtime struct {
	MovieID    string
	Time       string
	TotalSeats int

	mu        sync.Mutex
	available int
}

// NewShowtime creates a showtime with every seat available
func NewShowtime(movieID, label string, totalSeats int) *Showtime {
	return &Showtime{
		MovieID:    movieID,
		Time:       label,
		TotalSeats: totalSeats,
		available:  totalSeats,
	}
}

// Reserve takes seats out of the available pool. The counter is left
// untouched when the request cannot be satisfied in full.
func (s *Showtime) Reserve(seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: seats must be positive, got %d", apperrors.ErrInvalidArgument, seats)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seats > s.available {
		return fmt.Errorf("%w: requested %d, available %d", apperrors.ErrInsufficientSeats, seats, s.available)
	}
	s.available -= seats
	return nil
}

// Release returns seats to the available pool.
func (s *Showtime) Release(seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: seats must be positive, got %d", apperrors.ErrInvalidArgument, seats)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.available+seats > s.TotalSeats {
		return fmt.Errorf("%w: releasing %d seats would exceed capacity %d", apperrors.ErrInvalidArgument, seats, s.TotalSeats)
	}
	s.available += seats
	return nil
}

// Available returns the number of seats that can still be reserved
func (s *Showtime) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *Showtime) String() string {
	return fmt.Sprintf("%s (Seats available: %d)", s.Time, s.Available())
}

// Booking represents a confirmed reservation of seats against one showtime
type Booking struct {
	ID        string
	Movie     *Movie
	Showtime  *Showtime
	Seats     int
	CreatedAt time.Time
}

// Cancel gives the booked seats back to the showtime
func (b *Booking) Cancel() error {
	return b.Showtime.Release(b.Seats)
}

func (b *Booking) String() string {
	return fmt.Sprintf("Movie: %s, Showtime: %s, Seats booked: %d", b.Movie.Title, b.Showtime.Time, b.Seats)
}
