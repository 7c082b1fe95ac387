// Package models defines the census records read from the store and the shapes search returns.
package models

// Building is a structure on the map. Latitude and Longitude are nil when the
// building has not been geocoded.
type Building struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Latitude  *float64   `json:"latitude" db:"latitude"`
	Longitude *float64   `json:"longitude" db:"longitude"`
	City      string     `json:"city,omitempty" db:"city"`
	State     string     `json:"state,omitempty" db:"state"`
	Addresses []*Address `json:"addresses,omitempty" db:"-"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (b *Building) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// PrimaryAddress returns the address flagged as primary, else the first address,
// else nil.
func (b *Building) PrimaryAddress() *Address {
	for _, a := range b.Addresses {
		if a.IsPrimary {
			return a
		}
	}
	if len(b.Addresses) > 0 {
		return b.Addresses[0]
	}
	return nil
}

// Address is one street address of a building. Empty strings mean the part is absent;
// a zero Year means no year was recorded.
type Address struct {
	ID             int64  `json:"id" db:"id"`
	BuildingID     int64  `json:"building_id" db:"building_id"`
	HouseNumber    string `json:"house_number,omitempty" db:"house_number"`
	Prefix         string `json:"prefix,omitempty" db:"prefix"`
	Name           string `json:"name,omitempty" db:"name"`
	Suffix         string `json:"suffix,omitempty" db:"suffix"`
	City           string `json:"city,omitempty" db:"city"`
	Year           int    `json:"year,omitempty" db:"year"`
	IsPrimary      bool   `json:"is_primary" db:"is_primary"`
	SearchableText string `json:"searchable_text,omitempty" db:"searchable_text"`
}
