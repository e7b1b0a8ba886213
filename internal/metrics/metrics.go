package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "boxoffice"

// Booking outcomes used as the "result" label
const (
	ResultBooked            = "booked"
	ResultMovieNotFound     = "movie_not_found"
	ResultShowtimeNotFound  = "showtime_not_found"
	ResultInsufficientSeats = "insufficient_seats"
	ResultInvalidArgument   = "invalid_argument"
)

type Metrics struct {
	BookingRequests *prometheus.CounterVec
	SeatsBooked     prometheus.Counter
	Cancellations   *prometheus.CounterVec
	ActiveBookings  prometheus.Gauge
	SeatsAvailable  *prometheus.GaugeVec
	AuditViolations prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requests_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"result"}),
		SeatsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_booked_total",
			Help:      "Seats reserved by successful bookings.",
		}),
		Cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by outcome.",
		}, []string{"result"}),
		ActiveBookings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_bookings",
			Help:      "Bookings currently in the ledger.",
		}),
		SeatsAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seats_available",
			Help:      "Seats still available per showtime.",
		}, []string{"movie_id", "showtime"}),
		AuditViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_violations_total",
			Help:      "Showtimes whose seat counters disagreed with the booking ledger.",
		}),
	}

	reg.MustRegister(
		m.BookingRequests,
		m.SeatsBooked,
		m.Cancellations,
		m.ActiveBookings,
		m.SeatsAvailable,
		m.AuditViolations,
	)
	return m
}

// ObserveSeats records the current availability of one showtime
func (m *Metrics) ObserveSeats(movieID, showtime string, available int) {
	m.SeatsAvailable.WithLabelValues(movieID, showtime).Set(float64(available))
}
