//go:build integration

package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/fkhayef/meetup/internal/club"
	"github.com/fkhayef/meetup/internal/event"
	"github.com/fkhayef/meetup/internal/user"
)

// Seeded region ids, see the region migration
const (
	CategorySports = int64(1)
	CitySeoul      = int64(1)
	CityBusan      = int64(2)
)

// Generator builds valid request payloads with fake data
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator returns a generator. Passing the same seed yields the same data.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

func (g *Generator) User() *user.CreateUserRequest {
	city := CitySeoul
	birthday := g.faker.DateRange(
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	).Format("2006-01-02")
	return &user.CreateUserRequest{
		Name:       g.faker.FirstName(),
		Email:      g.faker.Username() + g.faker.Numerify("######") + "@example.com",
		Birthday:   &birthday,
		CityID:     &city,
		CategoryID: CategorySports,
	}
}

func (g *Generator) Club(maxPeople int) *club.CreateClubRequest {
	return &club.CreateClubRequest{
		Name:        g.faker.Company(),
		Description: g.faker.Sentence(8),
		MaxPeople:   maxPeople,
	}
}

// Event returns an event that starts in an hour and lasts two
func (g *Generator) Event(maxPeople int, clubID *int64) *event.CreateEventRequest {
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	return &event.CreateEventRequest{
		Title:       g.faker.HipsterWord() + " meetup",
		Description: g.faker.Sentence(10),
		CategoryID:  CategorySports,
		CityIDs:     []int64{CitySeoul, CityBusan},
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		MaxPeople:   maxPeople,
		ClubID:      clubID,
	}
}
