package service

import (
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/repository"
)

type Services struct {
	Reservations *ReservationService
}

func NewServices(repos *repository.Repositories, publisher messaging.Publisher, m *metrics.Metrics) *Services {
	return &Services{
		Reservations: NewReservationService(repos.Movies, repos.Bookings, publisher, m),
	}
}
