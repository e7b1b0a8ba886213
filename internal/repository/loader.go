package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultShowtimeSeats = 100

// CatalogFile is the on-disk layout of a catalog definition
type CatalogFile struct {
	Movies []CatalogMovie `yaml:"movies"`
}

type CatalogMovie struct {
	ID        string            `yaml:"id"`
	Title     string            `yaml:"title"`
	Showtimes []CatalogShowtime `yaml:"showtimes"`
}

type CatalogShowtime struct {
	Time  string `yaml:"time"`
	Seats int    `yaml:"seats"`
}

// DefaultCatalog returns the built-in sample catalog
func DefaultCatalog() *MovieRepository {
	file := CatalogFile{
		Movies: []CatalogMovie{
			{
				ID:    "M01",
				Title: "Inside Out",
				Showtimes: []CatalogShowtime{
					{Time: "10:00 AM", Seats: defaultShowtimeSeats},
					{Time: "1:00 PM", Seats: defaultShowtimeSeats},
					{Time: "5:00 PM", Seats: defaultShowtimeSeats},
				},
			},
			{
				ID:    "M02",
				Title: "Toy Story",
				Showtimes: []CatalogShowtime{
					{Time: "11:00 AM", Seats: defaultShowtimeSeats},
					{Time: "3:00 PM", Seats: defaultShowtimeSeats},
					{Time: "7:00 PM", Seats: defaultShowtimeSeats},
				},
			},
		},
	}

	repo, err := file.Build()
	if err != nil {
		// the built-in data is static
		panic(err)
	}
	return repo
}

// LoadCatalogFile reads a YAML catalog from disk
func LoadCatalogFile(path string) (*MovieRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from YAML. A showtime without a seat count
// gets the default capacity.
func ParseCatalog(data []byte) (*MovieRepository, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return file.Build()
}

func (f CatalogFile) Build() (*MovieRepository, error) {
	repo := NewMovieRepository()
	for _, m := range f.Movies {
		if _, err := repo.AddMovie(m.ID, m.Title); err != nil {
			return nil, err
		}
		for _, st := range m.Showtimes {
			seats := st.Seats
			if seats == 0 {
				seats = defaultShowtimeSeats
			}
			if _, err := repo.AddShowtime(m.ID, st.Time, seats); err != nil {
				return nil, err
			}
		}
	}
	return repo, nil
}
