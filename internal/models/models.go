package models

import "time"

// MovieView - элемент списка фильмов
type MovieView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListMoviesResponse - список фильмов
type ListMoviesResponse []MovieView

// ShowtimeView - сеанс с текущей доступностью мест
type ShowtimeView struct {
	Time           string `json:"time"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
}

// MovieDetailsResponse - фильм вместе с сеансами
type MovieDetailsResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Showtimes []ShowtimeView `json:"showtimes"`
}

// BookingView - бронирование в том виде, в каком его видит клиент.
// Position is the 1-based place in the ledger at the moment of listing and
// shifts when earlier bookings are cancelled; ID never changes.
type BookingView struct {
	Position   int       `json:"position"`
	ID         string    `json:"id"`
	MovieID    string    `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	Showtime   string    `json:"showtime"`
	Seats      int       `json:"seats"`
	CreatedAt  time.Time `json:"created_at"`
	Summary    string    `json:"summary"`
}

// ListBookingsResponse - список бронирований
type ListBookingsResponse []BookingView

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	MovieID  string `json:"movie_id" binding:"required"`
	Showtime string `json:"showtime" binding:"required"`
	Seats    int    `json:"seats" binding:"required,gt=0"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	Booking BookingView `json:"booking"`
	Message string      `json:"message"`
}

// CancelBookingRequest - отмена бронирования по позиции в списке
type CancelBookingRequest struct {
	Position int `json:"position" binding:"required,gt=0"`
}

// CancelBookingResponse - модель ответа при отмене бронирования
type CancelBookingResponse struct {
	Booking BookingView `json:"booking"`
	Message string      `json:"message"`
}

// AuditViolation describes a showtime whose seat counters disagree with the ledger
type AuditViolation struct {
	MovieID        string `json:"movie_id"`
	Showtime       string `json:"showtime"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	BookedSeats    int    `json:"booked_seats"`
	Reason         string `json:"reason"`
}

// AuditReport - результат сверки мест с журналом бронирований
type AuditReport struct {
	CheckedAt      time.Time        `json:"checked_at"`
	Showtimes      int              `json:"showtimes"`
	ActiveBookings int              `json:"active_bookings"`
	Violations     []AuditViolation `json:"violations"`
}

// OK reports whether the audit found no violations
func (r AuditReport) OK() bool {
	return len(r.Violations) == 0
}
