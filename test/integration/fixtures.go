// Package integration provides end-to-end tests over a seeded SQLite store.
package integration

import (
	"context"

	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

// fixtureBuilding is one seeded building with its addresses and residents.
type fixtureBuilding struct {
	Name      string
	Lat, Lon  *float64
	Addresses []models.Address
	Residents []models.Person
}

func coord(v float64) *float64 { return &v }

// ithacaFixtures is a small downtown Ithaca data set. The Morse and Okafor homes have
// no coordinates.
var ithacaFixtures = []fixtureBuilding{
	{
		Name: "123 Main Street", Lat: coord(42.44), Lon: coord(-76.50),
		Addresses: []models.Address{{HouseNumber: "123", Name: "Main", Suffix: "St", City: "Ithaca", Year: 1920, IsPrimary: true}},
		Residents: []models.Person{{Year: models.Census1920, FirstName: "Ada", LastName: "Lovelace"}},
	},
	{
		Name: "Clinton House", Lat: coord(42.4397), Lon: coord(-76.4983),
		Addresses: []models.Address{
			{HouseNumber: "116", Prefix: "N", Name: "Cayuga", Suffix: "St", City: "Ithaca", Year: 1910},
			{HouseNumber: "118", Prefix: "N", Name: "Cayuga", Suffix: "St", City: "Ithaca", Year: 1930, IsPrimary: true},
		},
		Residents: []models.Person{
			{Year: models.Census1910, FirstName: "Jeremiah", LastName: "Okafor"},
			{Year: models.Census1930, FirstName: "Ruth", LastName: "Morse"},
		},
	},
	{
		Name:      "Morse Cottage",
		Addresses: []models.Address{{HouseNumber: "9", Name: "Tioga", Suffix: "St", City: "Ithaca"}},
		Residents: []models.Person{{Year: models.Census1930, FirstName: "Samuel", LastName: "Morse"}},
	},
	{
		Name: "", Lat: coord(42.45), Lon: coord(-76.49),
		Addresses: []models.Address{{Name: "Aurora", Suffix: "St", City: "Ithaca", Year: 1940}},
	},
	{
		Name:      "Farm",
		Residents: []models.Person{{Year: models.Census1910, FirstName: "Grace", LastName: "Okafor"}},
	},
}

// seedFixtures loads fixtures into store and returns the building ids in order.
func seedFixtures(ctx context.Context, store *storage.SQLiteStorage, fixtures []fixtureBuilding) ([]int64, error) {
	ids := make([]int64, 0, len(fixtures))
	for _, f := range fixtures {
		b := &models.Building{Name: f.Name, Latitude: f.Lat, Longitude: f.Lon}
		if err := store.CreateBuilding(ctx, b); err != nil {
			return nil, err
		}
		for _, a := range f.Addresses {
			a := a
			a.BuildingID = b.ID
			if err := store.CreateAddress(ctx, &a); err != nil {
				return nil, err
			}
		}
		for _, p := range f.Residents {
			p := p
			p.BuildingID = &b.ID
			if err := store.CreatePerson(ctx, &p); err != nil {
				return nil, err
			}
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}
