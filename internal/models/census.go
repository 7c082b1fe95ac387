package models

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnknownYear is returned when a year has no census table.
var ErrUnknownYear = errors.New("unknown census year")

// CensusYear identifies one decennial census table.
type CensusYear int

const (
	Census1910 CensusYear = 1910
	Census1920 CensusYear = 1920
	Census1930 CensusYear = 1930
	Census1940 CensusYear = 1940
)

// SearchYears lists the census years searched, in ascending order.
var SearchYears = []CensusYear{Census1910, Census1920, Census1930, Census1940}

// ParseCensusYear parses s ("1920") into a CensusYear.
func ParseCensusYear(s string) (CensusYear, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrUnknownYear
	}
	y := CensusYear(n)
	if !y.Valid() {
		return 0, ErrUnknownYear
	}
	return y, nil
}

// Valid reports whether y has a census table.
func (y CensusYear) Valid() bool {
	return y.Table() != ""
}

// Table returns the census table holding records for y, or "" for an unknown year.
func (y CensusYear) Table() string {
	switch y {
	case Census1910:
		return "census_1910_records"
	case Census1920:
		return "census_1920_records"
	case Census1930:
		return "census_1930_records"
	case Census1940:
		return "census_1940_records"
	default:
		return ""
	}
}

func (y CensusYear) String() string {
	return strconv.Itoa(int(y))
}

// Person is a census entry. Each decade's records live in their own table; Year
// records which one the row was read from.
type Person struct {
	ID         int64      `json:"id" db:"id"`
	Year       CensusYear `json:"year" db:"-"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	BuildingID *int64     `json:"building_id,omitempty" db:"building_id"`
}
