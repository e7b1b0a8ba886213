package repository

import (
	"fmt"
	"sync"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"

	"github.com/google/uuid"
)

// BookingRepository is the ordered ledger of active bookings. Bookings are
// listed in creation order and addressed either by their stable ID or by
// their current 1-based position.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings []*models.Booking
	byID     map[string]*models.Booking
	now      func() time.Time
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byID: make(map[string]*models.Booking),
		now:  time.Now,
	}
}

// Record appends a booking for seats that have already been reserved on the showtime
func (r *BookingRepository) Record(movie *models.Movie, showtime *models.Showtime, seats int) *models.Booking {
	booking := &models.Booking{
		ID:        uuid.New().String(),
		Movie:     movie,
		Showtime:  showtime,
		Seats:     seats,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings = append(r.bookings, booking)
	r.byID[booking.ID] = booking
	return booking
}

func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidBookingID, id)
	}
	return booking, nil
}

// Cancel releases the booking's seats and removes it from the ledger
func (r *BookingRepository) Cancel(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.bookings {
		if b.ID == id {
			return r.removeLocked(i)
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidBookingID, id)
}

// CancelAt cancels the booking currently listed at the given 1-based position
func (r *BookingRepository) CancelAt(position int) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if position < 1 || position > len(r.bookings) {
		return nil, fmt.Errorf("%w: position %d out of range [1, %d]", apperrors.ErrInvalidBookingID, position, len(r.bookings))
	}
	return r.removeLocked(position - 1)
}

// List returns a snapshot of the ledger in creation order
func (r *BookingRepository) List() []*models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*models.Booking, len(r.bookings))
	copy(bookings, r.bookings)
	return bookings
}

func (r *BookingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}

// SeatsBooked sums the seats held by active bookings for a showtime
func (r *BookingRepository) SeatsBooked(showtime *models.Showtime) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, b := range r.bookings {
		if b.Showtime == showtime {
			total += b.Seats
		}
	}
	return total
}

func (r *BookingRepository) removeLocked(i int) (*models.Booking, error) {
	booking := r.bookings[i]
	if err := booking.Cancel(); err != nil {
		return nil, fmt.Errorf("failed to release seats for booking %s: %w", booking.ID, err)
	}

	r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
	delete(r.byID, booking.ID)
	return booking, nil
}
