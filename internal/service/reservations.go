package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
)

// ReservationService books and cancels tickets against the catalog. Book and
// cancel are serialized so that seat counters and the booking ledger always
// change together.
type ReservationService struct {
	mu        sync.Mutex
	movieRepo *repository.MovieRepository
	ledger    *repository.BookingRepository
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

func NewReservationService(movieRepo *repository.MovieRepository, ledger *repository.BookingRepository, publisher messaging.Publisher, m *metrics.Metrics) *ReservationService {
	// Reuse the gin binding tags so HTTP and direct callers share one rule set
	v := validator.New()
	v.SetTagName("binding")

	s := &ReservationService{
		movieRepo: movieRepo,
		ledger:    ledger,
		publisher: publisher,
		metrics:   m,
		validate:  v,
	}

	for _, st := range movieRepo.Showtimes() {
		m.ObserveSeats(st.MovieID, st.Time, st.Available())
	}
	m.ActiveBookings.Set(float64(ledger.Len()))

	return s
}

func (s *ReservationService) FindMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	return s.movieRepo.FindMovie(movieID)
}

func (s *ReservationService) FindShowtime(ctx context.Context, movieID, label string) (*models.Showtime, error) {
	movie, err := s.movieRepo.FindMovie(movieID)
	if err != nil {
		return nil, err
	}
	return s.movieRepo.FindShowtime(movie, label)
}

func (s *ReservationService) ViewMovies(ctx context.Context) (models.ListMoviesResponse, error) {
	result := models.ListMoviesResponse{}
	if err := copier.Copy(&result, s.movieRepo.List()); err != nil {
		return nil, fmt.Errorf("failed to project movies: %w", err)
	}
	return result, nil
}

func (s *ReservationService) ViewMovie(ctx context.Context, movieID string) (*models.MovieDetailsResponse, error) {
	movie, err := s.movieRepo.FindMovie(movieID)
	if err != nil {
		return nil, err
	}

	return &models.MovieDetailsResponse{
		ID:        movie.ID,
		Title:     movie.Title,
		Showtimes: showtimeViews(movie),
	}, nil
}

func (s *ReservationService) ViewShowtimes(ctx context.Context, movieID string) ([]models.ShowtimeView, error) {
	movie, err := s.movieRepo.FindMovie(movieID)
	if err != nil {
		return nil, err
	}
	return showtimeViews(movie), nil
}

func (s *ReservationService) ViewBookings(ctx context.Context) models.ListBookingsResponse {
	bookings := s.ledger.List()

	result := make(models.ListBookingsResponse, len(bookings))
	for i, b := range bookings {
		result[i] = bookingView(i+1, b)
	}
	return result
}

func (s *ReservationService) BookTickets(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	resp, err := s.bookTickets(ctx, req)
	s.metrics.BookingRequests.WithLabelValues(bookingResult(err)).Inc()
	return resp, err
}

func (s *ReservationService) bookTickets(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movie, err := s.movieRepo.FindMovie(req.MovieID)
	if err != nil {
		return nil, err
	}

	showtime, err := s.movieRepo.FindShowtime(movie, req.Showtime)
	if err != nil {
		return nil, err
	}

	if err := showtime.Reserve(req.Seats); err != nil {
		return nil, err
	}

	booking := s.ledger.Record(movie, showtime, req.Seats)
	available := showtime.Available()
	position := s.ledger.Len()

	s.metrics.SeatsBooked.Add(float64(req.Seats))
	s.metrics.ObserveSeats(movie.ID, showtime.Time, available)
	s.metrics.ActiveBookings.Set(float64(position))

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"movie_id", movie.ID,
		"showtime", showtime.Time,
		"seats", req.Seats,
		"available_seats", available)

	s.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:      booking.ID,
		MovieID:        movie.ID,
		Showtime:       showtime.Time,
		Seats:          booking.Seats,
		AvailableSeats: available,
		Timestamp:      time.Now(),
	})

	return &models.CreateBookingResponse{
		Booking: bookingView(position, booking),
		Message: fmt.Sprintf("Successfully booked %d seats for %s at %s", req.Seats, movie.Title, showtime.Time),
	}, nil
}

// CancelBooking cancels a booking by its stable ID
func (s *ReservationService) CancelBooking(ctx context.Context, bookingID string) (*models.CancelBookingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := 0
	for i, b := range s.ledger.List() {
		if b.ID == bookingID {
			position = i + 1
			break
		}
	}

	booking, err := s.ledger.Cancel(bookingID)
	return s.afterCancel(ctx, position, booking, err)
}

// CancelBookingAt cancels the booking currently listed at a 1-based position.
// Positions shift after every cancellation, so callers must list first.
func (s *ReservationService) CancelBookingAt(ctx context.Context, position int) (*models.CancelBookingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.ledger.CancelAt(position)
	return s.afterCancel(ctx, position, booking, err)
}

func (s *ReservationService) afterCancel(ctx context.Context, position int, booking *models.Booking, err error) (*models.CancelBookingResponse, error) {
	if err != nil {
		s.metrics.Cancellations.WithLabelValues("invalid_booking_id").Inc()
		return nil, err
	}

	available := booking.Showtime.Available()
	s.metrics.Cancellations.WithLabelValues("cancelled").Inc()
	s.metrics.ObserveSeats(booking.Movie.ID, booking.Showtime.Time, available)
	s.metrics.ActiveBookings.Set(float64(s.ledger.Len()))

	logger.WithContext(ctx).Info("Booking cancelled",
		"booking_id", booking.ID,
		"movie_id", booking.Movie.ID,
		"showtime", booking.Showtime.Time,
		"seats", booking.Seats,
		"available_seats", available)

	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID:      booking.ID,
		MovieID:        booking.Movie.ID,
		Showtime:       booking.Showtime.Time,
		Seats:          booking.Seats,
		AvailableSeats: available,
		Reason:         "User cancellation",
		Timestamp:      time.Now(),
	})

	view := bookingView(position, booking)
	return &models.CancelBookingResponse{
		Booking: view,
		Message: "Booking cancelled: " + view.Summary,
	}, nil
}

// Audit checks every showtime against the booking ledger: the counter must
// stay within [0, total] and available plus booked seats must equal total.
func (s *ReservationService) Audit(ctx context.Context) models.AuditReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	showtimes := s.movieRepo.Showtimes()
	report := models.AuditReport{
		CheckedAt:      time.Now(),
		Showtimes:      len(showtimes),
		ActiveBookings: s.ledger.Len(),
		Violations:     []models.AuditViolation{},
	}

	for _, st := range showtimes {
		available := st.Available()
		booked := s.ledger.SeatsBooked(st)
		s.metrics.ObserveSeats(st.MovieID, st.Time, available)

		var reason string
		switch {
		case available < 0:
			reason = "available seats below zero"
		case available > st.TotalSeats:
			reason = "available seats above capacity"
		case available+booked != st.TotalSeats:
			reason = "available and booked seats do not add up to capacity"
		default:
			continue
		}

		report.Violations = append(report.Violations, models.AuditViolation{
			MovieID:        st.MovieID,
			Showtime:       st.Time,
			TotalSeats:     st.TotalSeats,
			AvailableSeats: available,
			BookedSeats:    booked,
			Reason:         reason,
		})
	}

	s.metrics.ActiveBookings.Set(float64(report.ActiveBookings))
	if !report.OK() {
		s.metrics.AuditViolations.Add(float64(len(report.Violations)))
		logger.WithContext(ctx).Error("Seat audit found violations",
			"violations", len(report.Violations))
	}

	return report
}

func (s *ReservationService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.publisher.Publish(subject, event); err != nil {
		// Log error but don't fail the operation
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

func showtimeViews(movie *models.Movie) []models.ShowtimeView {
	views := make([]models.ShowtimeView, len(movie.Showtimes))
	for i, st := range movie.Showtimes {
		views[i] = models.ShowtimeView{
			Time:           st.Time,
			TotalSeats:     st.TotalSeats,
			AvailableSeats: st.Available(),
		}
	}
	return views
}

func bookingView(position int, b *models.Booking) models.BookingView {
	return models.BookingView{
		Position:   position,
		ID:         b.ID,
		MovieID:    b.Movie.ID,
		MovieTitle: b.Movie.Title,
		Showtime:   b.Showtime.Time,
		Seats:      b.Seats,
		CreatedAt:  b.CreatedAt,
		Summary:    b.String(),
	}
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultBooked
	case errors.Is(err, apperrors.ErrMovieNotFound):
		return metrics.ResultMovieNotFound
	case errors.Is(err, apperrors.ErrShowtimeNotFound):
		return metrics.ResultShowtimeNotFound
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		return metrics.ResultInsufficientSeats
	default:
		return metrics.ResultInvalidArgument
	}
}
