package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID      string    `json:"booking_id"`
	MovieID        string    `json:"movie_id"`
	Showtime       string    `json:"showtime"`
	Seats          int       `json:"seats"`
	AvailableSeats int       `json:"available_seats"`
	Timestamp      time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID      string    `json:"booking_id"`
	MovieID        string    `json:"movie_id"`
	Showtime       string    `json:"showtime"`
	Seats          int       `json:"seats"`
	AvailableSeats int       `json:"available_seats"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}
