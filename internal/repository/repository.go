package repository

type Repositories struct {
	Movies   *MovieRepository
	Bookings *BookingRepository
}

func NewRepositories(movies *MovieRepository) *Repositories {
	return &Repositories{
		Movies:   movies,
		Bookings: NewBookingRepository(),
	}
}
