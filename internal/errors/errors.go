package errors

import "errors"

var ErrMovieNotFound = errors.New("movie not found")
var ErrShowtimeNotFound = errors.New("showtime not found")
var ErrInsufficientSeats = errors.New("not enough seats available")
var ErrInvalidBookingID = errors.New("invalid booking ID")

// ErrInvalidArgument marks caller input that fails a precondition, such as an
// empty identifier or a non-positive seat count.
var ErrInvalidArgument = errors.New("invalid argument")
