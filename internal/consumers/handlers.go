package consumers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"boxoffice/internal/models"

	"github.com/nats-io/stan.go"
)

// ShowtimeKey identifies a showtime in the tally
type ShowtimeKey struct {
	MovieID  string
	Showtime string
}

// Handlers keep an event-sourced tally of booked seats per showtime that can
// be compared with what the API reports.
type Handlers struct {
	mu        sync.Mutex
	booked    map[ShowtimeKey]int
	created   int
	cancelled int
}

func NewHandlers() *Handlers {
	return &Handlers{booked: make(map[ShowtimeKey]int)}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	h.ack(m, models.EventBookingCreated, h.ProcessBookingCreated(m.Data))
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	h.ack(m, models.EventBookingCancelled, h.ProcessBookingCancelled(m.Data))
}

func (h *Handlers) ProcessBookingCreated(data []byte) error {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking created event: %w", err)
	}

	h.mu.Lock()
	key := ShowtimeKey{MovieID: event.MovieID, Showtime: event.Showtime}
	h.booked[key] += event.Seats
	h.created++
	seats := h.booked[key]
	h.mu.Unlock()

	slog.Info("Processing booking created event",
		"booking_id", event.BookingID,
		"movie_id", event.MovieID,
		"showtime", event.Showtime,
		"seats", event.Seats,
		"available_seats", event.AvailableSeats,
		"booked_seats", seats)
	return nil
}

func (h *Handlers) ProcessBookingCancelled(data []byte) error {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking cancelled event: %w", err)
	}

	h.mu.Lock()
	key := ShowtimeKey{MovieID: event.MovieID, Showtime: event.Showtime}
	h.booked[key] -= event.Seats
	if h.booked[key] <= 0 {
		delete(h.booked, key)
	}
	h.cancelled++
	seats := h.booked[key]
	h.mu.Unlock()

	slog.Info("Processing booking cancelled event",
		"booking_id", event.BookingID,
		"movie_id", event.MovieID,
		"showtime", event.Showtime,
		"seats", event.Seats,
		"reason", event.Reason,
		"booked_seats", seats)
	return nil
}

// BookedSeats returns the seats the event stream says are held for a showtime
func (h *Handlers) BookedSeats(movieID, showtime string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.booked[ShowtimeKey{MovieID: movieID, Showtime: showtime}]
}

// Counts returns how many created and cancelled events were processed
func (h *Handlers) Counts() (created, cancelled int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created, h.cancelled
}

// ack acknowledges processed messages. Undecodable messages are acknowledged
// too since redelivery cannot fix them.
func (h *Handlers) ack(m *stan.Msg, subject string, err error) {
	if err != nil {
		slog.Error("Dropping malformed message", "subject", subject, "sequence", m.Sequence, "error", err)
	}
	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", subject, "sequence", m.Sequence, "error", err)
	}
}
