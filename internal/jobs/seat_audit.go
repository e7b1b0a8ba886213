package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boxoffice/internal/models"

	"github.com/go-co-op/gocron/v2"
)

// Auditor reconciles seat counters with the booking ledger
type Auditor interface {
	Audit(ctx context.Context) models.AuditReport
}

// SeatAuditJob periodically runs the seat audit and logs the outcome
type SeatAuditJob struct {
	auditor   Auditor
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewSeatAuditJob creates a new seat audit job
func NewSeatAuditJob(auditor Auditor, interval time.Duration) *SeatAuditJob {
	return &SeatAuditJob{
		auditor:  auditor,
		interval: interval,
	}
}

// Start schedules the audit; the first run happens immediately
func (j *SeatAuditJob) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() { j.RunOnce(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule seat audit: %w", err)
	}

	j.scheduler = s
	s.Start()
	slog.Info("Starting seat audit job", "check_interval", j.interval.String())
	return nil
}

// Stop gracefully stops the background job
func (j *SeatAuditJob) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	err := j.scheduler.Shutdown()
	j.scheduler = nil
	slog.Info("Seat audit job stopped")
	return err
}

// RunOnce performs a single audit
func (j *SeatAuditJob) RunOnce(ctx context.Context) models.AuditReport {
	report := j.auditor.Audit(ctx)

	if report.OK() {
		slog.Debug("Seat audit passed",
			"showtimes", report.Showtimes,
			"active_bookings", report.ActiveBookings)
		return report
	}

	for _, v := range report.Violations {
		slog.Error("Seat audit violation",
			"movie_id", v.MovieID,
			"showtime", v.Showtime,
			"total_seats", v.TotalSeats,
			"available_seats", v.AvailableSeats,
			"booked_seats", v.BookedSeats,
			"reason", v.Reason)
	}
	return report
}
