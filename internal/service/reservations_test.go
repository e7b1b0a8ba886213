package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []interface{}
	err      error
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, data)
	return p.err
}

type fixture struct {
	svc       *ReservationService
	movies    *repository.MovieRepository
	ledger    *repository.BookingRepository
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	movies := repository.DefaultCatalog()
	ledger := repository.NewBookingRepository()
	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())

	return &fixture{
		svc:       NewReservationService(movies, ledger, pub, m),
		movies:    movies,
		ledger:    ledger,
		publisher: pub,
		metrics:   m,
	}
}

func (f *fixture) available(t *testing.T, movieID, label string) int {
	t.Helper()
	st, err := f.svc.FindShowtime(context.Background(), movieID, label)
	require.NoError(t, err)
	return st.Available()
}

func book(movieID, label string, seats int) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{MovieID: movieID, Showtime: label, Seats: seats}
}

func TestBookAndCancelScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.BookTickets(ctx, book("M01", "10:00 AM", 30))
	require.NoError(t, err)
	assert.Equal(t, "Successfully booked 30 seats for Inside Out at 10:00 AM", resp.Message)
	assert.Equal(t, 1, resp.Booking.Position)
	assert.Equal(t, 70, f.available(t, "M01", "10:00 AM"))
	assert.Len(t, f.svc.ViewBookings(ctx), 1)

	_, err = f.svc.BookTickets(ctx, book("M01", "10:00 AM", 80))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientSeats)
	assert.Equal(t, 70, f.available(t, "M01", "10:00 AM"))
	assert.Len(t, f.svc.ViewBookings(ctx), 1)

	cancelled, err := f.svc.CancelBookingAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, resp.Booking.ID, cancelled.Booking.ID)
	assert.Equal(t, "Booking cancelled: Movie: Inside Out, Showtime: 10:00 AM, Seats booked: 30", cancelled.Message)
	assert.Equal(t, 100, f.available(t, "M01", "10:00 AM"))
	assert.Empty(t, f.svc.ViewBookings(ctx))
}

func TestBookTicketsLookupFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookTickets(ctx, book("M99", "10:00 AM", 1))
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)

	_, err = f.svc.BookTickets(ctx, book("M01", "11:00 AM", 1))
	assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)

	assert.Empty(t, f.svc.ViewBookings(ctx))
	assert.Empty(t, f.publisher.subjects)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.BookingRequests.WithLabelValues(metrics.ResultMovieNotFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.BookingRequests.WithLabelValues(metrics.ResultShowtimeNotFound)))
}

func TestBookTicketsInvalidArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.CreateBookingRequest
	}{
		{name: "zero seats", req: book("M01", "10:00 AM", 0)},
		{name: "negative seats", req: book("M01", "10:00 AM", -4)},
		{name: "empty movie id", req: book("", "10:00 AM", 1)},
		{name: "empty showtime", req: book("M01", "", 1)},
		{name: "nil request", req: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.BookTickets(ctx, tt.req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
			for _, other := range []error{apperrors.ErrMovieNotFound, apperrors.ErrShowtimeNotFound, apperrors.ErrInsufficientSeats} {
				assert.False(t, errors.Is(err, other))
			}
		})
	}

	assert.Equal(t, 100, f.available(t, "M01", "10:00 AM"))
	assert.Empty(t, f.svc.ViewBookings(ctx))
}

func TestCancelOutOfRangeLeavesLedgerUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookTickets(ctx, book("M02", "3:00 PM", 5))
	require.NoError(t, err)
	before := f.svc.ViewBookings(ctx)

	for _, pos := range []int{0, -1, 2} {
		_, err := f.svc.CancelBookingAt(ctx, pos)
		assert.ErrorIs(t, err, apperrors.ErrInvalidBookingID)
	}

	_, err = f.svc.CancelBooking(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrInvalidBookingID)

	assert.Equal(t, before, f.svc.ViewBookings(ctx))
	assert.Equal(t, 95, f.available(t, "M02", "3:00 PM"))
	assert.Equal(t, float64(4), testutil.ToFloat64(f.metrics.Cancellations.WithLabelValues("invalid_booking_id")))
}

func TestCancelByStableID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.BookTickets(ctx, book("M01", "1:00 PM", 2))
	require.NoError(t, err)
	second, err := f.svc.BookTickets(ctx, book("M01", "1:00 PM", 3))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Booking.Position)

	_, err = f.svc.CancelBooking(ctx, first.Booking.ID)
	require.NoError(t, err)

	list := f.svc.ViewBookings(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, second.Booking.ID, list[0].ID)
	assert.Equal(t, 1, list[0].Position)

	resp, err := f.svc.CancelBooking(ctx, second.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Booking.Position)
	assert.Equal(t, 100, f.available(t, "M01", "1:00 PM"))
}

func TestBookCancelRoundTripKeepsAuditClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	labels := map[string][]string{
		"M01": {"10:00 AM", "1:00 PM", "5:00 PM"},
		"M02": {"11:00 AM", "3:00 PM", "7:00 PM"},
	}
	ids := []string{"M01", "M02"}

	for i := 0; i < 500; i++ {
		if rng.Intn(3) == 0 && len(f.svc.ViewBookings(ctx)) > 0 {
			n := len(f.svc.ViewBookings(ctx))
			_, err := f.svc.CancelBookingAt(ctx, rng.Intn(n)+1)
			require.NoError(t, err)
		} else {
			movieID := ids[rng.Intn(len(ids))]
			label := labels[movieID][rng.Intn(3)]
			before := f.available(t, movieID, label)
			seats := rng.Intn(40) + 1

			_, err := f.svc.BookTickets(ctx, book(movieID, label, seats))
			if seats > before {
				require.ErrorIs(t, err, apperrors.ErrInsufficientSeats)
				require.Equal(t, before, f.available(t, movieID, label))
			} else {
				require.NoError(t, err)
				require.Equal(t, before-seats, f.available(t, movieID, label))
			}
		}

		report := f.svc.Audit(ctx)
		require.True(t, report.OK(), "violations: %+v", report.Violations)
	}

	for len(f.svc.ViewBookings(ctx)) > 0 {
		_, err := f.svc.CancelBookingAt(ctx, 1)
		require.NoError(t, err)
	}
	for _, st := range f.movies.Showtimes() {
		assert.Equal(t, st.TotalSeats, st.Available())
	}
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.BookTickets(ctx, book("M02", "7:00 PM", 3))
		}()
	}
	wg.Wait()

	assert.Equal(t, 33, len(f.svc.ViewBookings(ctx)))
	assert.Equal(t, 1, f.available(t, "M02", "7:00 PM"))
	assert.True(t, f.svc.Audit(ctx).OK())
}

func TestEventsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.BookTickets(ctx, book("M02", "11:00 AM", 4))
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)

	require.Equal(t, []string{models.EventBookingCreated, models.EventBookingCancelled}, f.publisher.subjects)

	created, ok := f.publisher.events[0].(models.BookingCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, resp.Booking.ID, created.BookingID)
	assert.Equal(t, 4, created.Seats)
	assert.Equal(t, 96, created.AvailableSeats)

	cancelled, ok := f.publisher.events[1].(models.BookingCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, 100, cancelled.AvailableSeats)
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()

	_, err := f.svc.BookTickets(ctx, book("M01", "5:00 PM", 1))
	require.NoError(t, err)
	assert.Len(t, f.svc.ViewBookings(ctx), 1)
}

func TestMetricsTrackBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, float64(100), testutil.ToFloat64(f.metrics.SeatsAvailable.WithLabelValues("M01", "10:00 AM")))

	_, err := f.svc.BookTickets(ctx, book("M01", "10:00 AM", 30))
	require.NoError(t, err)
	_, err = f.svc.BookTickets(ctx, book("M01", "10:00 AM", 80))
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.BookingRequests.WithLabelValues(metrics.ResultBooked)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.BookingRequests.WithLabelValues(metrics.ResultInsufficientSeats)))
	assert.Equal(t, float64(30), testutil.ToFloat64(f.metrics.SeatsBooked))
	assert.Equal(t, float64(70), testutil.ToFloat64(f.metrics.SeatsAvailable.WithLabelValues("M01", "10:00 AM")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ActiveBookings))
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	movies, err := f.svc.ViewMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ListMoviesResponse{
		{ID: "M01", Title: "Inside Out"},
		{ID: "M02", Title: "Toy Story"},
	}, movies)

	_, err = f.svc.BookTickets(ctx, book("M02", "3:00 PM", 10))
	require.NoError(t, err)

	showtimes, err := f.svc.ViewShowtimes(ctx, "M02")
	require.NoError(t, err)
	assert.Equal(t, []models.ShowtimeView{
		{Time: "11:00 AM", TotalSeats: 100, AvailableSeats: 100},
		{Time: "3:00 PM", TotalSeats: 100, AvailableSeats: 90},
		{Time: "7:00 PM", TotalSeats: 100, AvailableSeats: 100},
	}, showtimes)

	details, err := f.svc.ViewMovie(ctx, "M02")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story", details.Title)
	assert.Equal(t, showtimes, details.Showtimes)

	_, err = f.svc.ViewShowtimes(ctx, "M99")
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
	_, err = f.svc.ViewMovie(ctx, "M99")
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)

	_, err = f.svc.FindMovie(ctx, "M99")
	assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
	_, err = f.svc.FindShowtime(ctx, "M02", "10:00 AM")
	assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)
}

func TestAuditDetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// seats taken without a ledger entry
	st, err := f.svc.FindShowtime(ctx, "M01", "5:00 PM")
	require.NoError(t, err)
	require.NoError(t, st.Reserve(7))

	report := f.svc.Audit(ctx)
	assert.False(t, report.OK())
	assert.Equal(t, 6, report.Showtimes)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "M01", v.MovieID)
	assert.Equal(t, "5:00 PM", v.Showtime)
	assert.Equal(t, 93, v.AvailableSeats)
	assert.Equal(t, 0, v.BookedSeats)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.AuditViolations))
}
