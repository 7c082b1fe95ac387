package search

import (
	"fmt"
	"strings"

	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/ranking"
)

// ShapeBuilding flattens b into a display record. The record year is the primary
// address year when one is recorded, else year.
func ShapeBuilding(b *models.Building, year models.CensusYear, conf ranking.Confidence) *models.BuildingRecord {
	name := b.Name
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Building %d", b.ID)
	}
	recordYear := int(year)
	addr := b.PrimaryAddress()
	if addr != nil && addr.Year != 0 {
		recordYear = addr.Year
	}
	reasons := conf.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return &models.BuildingRecord{
		ID:                b.ID,
		Name:              name,
		Year:              recordYear,
		Address:           FormatAddress(addr),
		Latitude:          b.Latitude,
		Longitude:         b.Longitude,
		ConfidenceScore:   conf.Score,
		ConfidenceReasons: reasons,
		Type:              models.TypeBuilding,
	}
}

// ShapePerson flattens p into a display record. The sortable name is
// "last, first" trimmed, so a missing part leaves the comma in place.
func ShapePerson(p *models.Person, year models.CensusYear) *models.PersonRecord {
	recordYear := int(year)
	if p.Year.Valid() {
		recordYear = int(p.Year)
	}
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	return &models.PersonRecord{
		ID:           p.ID,
		Name:         joinNonEmpty(" ", first, last),
		SortableName: strings.TrimSpace(last + ", " + first),
		Year:         recordYear,
		Type:         models.TypePerson,
	}
}

// FormatAddress renders "house prefix street suffix, city", skipping absent parts.
// A nil address formats as "".
func FormatAddress(a *models.Address) string {
	if a == nil {
		return ""
	}
	line := joinNonEmpty(" ", a.HouseNumber, a.Prefix, a.Name, a.Suffix)
	if city := strings.TrimSpace(a.City); city != "" {
		if line == "" {
			return city
		}
		return line + ", " + city
	}
	return line
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
