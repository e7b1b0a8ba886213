package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"boxoffice/internal/models"
)

// SmokeValidator - проверка работающего API. It books and cancels one
// booking against the first showtime of the first movie, so a healthy
// server ends with the same seat counts it started with.
type SmokeValidator struct {
	baseURL string
	client  *http.Client
}

// NewSmokeValidator создает новый валидатор
func NewSmokeValidator(baseURL string) *SmokeValidator {
	return &SmokeValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateAll проверяет все endpoints
func (v *SmokeValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Starting API smoke validation", "base_url", v.baseURL)

	movie, showtime, err := v.pickShowtime(ctx)
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	if err := v.validateBookingRoundTrip(ctx, movie, showtime); err != nil {
		return fmt.Errorf("booking validation failed: %w", err)
	}

	if err := v.validateErrors(ctx, showtime); err != nil {
		return fmt.Errorf("error handling validation failed: %w", err)
	}

	var report models.AuditReport
	if err := v.expect(ctx, http.MethodGet, "/api/audit", nil, http.StatusOK, &report); err != nil {
		return fmt.Errorf("audit validation failed: %w", err)
	}

	slog.Info("API smoke validation passed", "movie_id", movie.ID, "showtime", showtime.Time)
	return nil
}

func (v *SmokeValidator) pickShowtime(ctx context.Context) (models.MovieView, models.ShowtimeView, error) {
	var movies models.ListMoviesResponse
	if err := v.expect(ctx, http.MethodGet, "/api/movies", nil, http.StatusOK, &movies); err != nil {
		return models.MovieView{}, models.ShowtimeView{}, err
	}
	if len(movies) == 0 {
		return models.MovieView{}, models.ShowtimeView{}, fmt.Errorf("catalog is empty")
	}

	movie := movies[0]
	var showtimes []models.ShowtimeView
	if err := v.expect(ctx, http.MethodGet, "/api/movies/"+movie.ID+"/showtimes", nil, http.StatusOK, &showtimes); err != nil {
		return models.MovieView{}, models.ShowtimeView{}, err
	}
	for _, st := range showtimes {
		if st.AvailableSeats > 0 {
			return movie, st, nil
		}
	}
	return models.MovieView{}, models.ShowtimeView{}, fmt.Errorf("movie %s has no showtime with free seats", movie.ID)
}

func (v *SmokeValidator) validateBookingRoundTrip(ctx context.Context, movie models.MovieView, showtime models.ShowtimeView) error {
	before := showtime.AvailableSeats

	var created models.CreateBookingResponse
	req := models.CreateBookingRequest{MovieID: movie.ID, Showtime: showtime.Time, Seats: 1}
	if err := v.expect(ctx, http.MethodPost, "/api/bookings", req, http.StatusCreated, &created); err != nil {
		return err
	}
	if err := v.expectAvailable(ctx, movie.ID, showtime.Time, before-1); err != nil {
		return err
	}

	// more than what is left must be refused without touching the counter
	req.Seats = before
	if err := v.expect(ctx, http.MethodPost, "/api/bookings", req, http.StatusConflict, nil); err != nil {
		return err
	}
	if err := v.expectAvailable(ctx, movie.ID, showtime.Time, before-1); err != nil {
		return err
	}

	if err := v.expect(ctx, http.MethodDelete, "/api/bookings/"+created.Booking.ID, nil, http.StatusOK, nil); err != nil {
		return err
	}
	return v.expectAvailable(ctx, movie.ID, showtime.Time, before)
}

func (v *SmokeValidator) validateErrors(ctx context.Context, showtime models.ShowtimeView) error {
	req := models.CreateBookingRequest{MovieID: "__missing__", Showtime: showtime.Time, Seats: 1}
	if err := v.expect(ctx, http.MethodPost, "/api/bookings", req, http.StatusNotFound, nil); err != nil {
		return err
	}

	var bookings models.ListBookingsResponse
	if err := v.expect(ctx, http.MethodGet, "/api/bookings", nil, http.StatusOK, &bookings); err != nil {
		return err
	}
	cancel := models.CancelBookingRequest{Position: len(bookings) + 1}
	return v.expect(ctx, http.MethodPatch, "/api/bookings/cancel", cancel, http.StatusNotFound, nil)
}

func (v *SmokeValidator) expectAvailable(ctx context.Context, movieID, label string, want int) error {
	var showtimes []models.ShowtimeView
	if err := v.expect(ctx, http.MethodGet, "/api/movies/"+movieID+"/showtimes", nil, http.StatusOK, &showtimes); err != nil {
		return err
	}
	for _, st := range showtimes {
		if st.Time == label {
			if st.AvailableSeats != want {
				return fmt.Errorf("showtime %s: expected %d available seats, got %d", label, want, st.AvailableSeats)
			}
			return nil
		}
	}
	return fmt.Errorf("showtime %s disappeared from movie %s", label, movieID)
}

// expect performs a request, checks the status code and decodes the body into out when set
func (v *SmokeValidator) expect(ctx context.Context, method, path string, body interface{}, wantStatus int, out interface{}) error {
	resp, err := v.makeRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

func (v *SmokeValidator) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}
