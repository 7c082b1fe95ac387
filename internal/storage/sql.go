package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hyperjump/chizu/internal/models"
)

// sqlStore implements the queries shared by the SQLite and PostgreSQL stores.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

const buildingColumns = `b.id, b.name, b.latitude, b.longitude, b.city, b.state`

// SearchBuildings returns buildings matching q.Term, ordered by id, capped at q.Limit.
func (s *sqlStore) SearchBuildings(ctx context.Context, q BuildingSearch) ([]*models.Building, error) {
	if q.Term == "" {
		return nil, nil
	}
	d := s.dialect
	pattern := containsPattern(q.Term)
	var where strings.Builder
	where.WriteString("(" + d.contains("b.name") + " OR EXISTS (SELECT 1 FROM addresses a WHERE a.building_id = b.id AND (")
	where.WriteString(d.contains("a.city") + " OR " + d.contains("a.name") + " OR " + d.contains("a.searchable_text"))
	where.WriteString(")))")
	if q.RequireCoordinates {
		where.WriteString(" AND b.latitude IS NOT NULL AND b.longitude IS NOT NULL")
	}
	query := `SELECT ` + buildingColumns + ` FROM buildings b WHERE ` + where.String() + ` ORDER BY b.id`
	args := []any{pattern, pattern, pattern, pattern}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	buildings, err := s.queryBuildings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search buildings: %w", err)
	}
	if err := s.loadAddresses(ctx, buildings); err != nil {
		return nil, err
	}
	return buildings, nil
}

// GetBuildings returns the buildings with the given ids, ordered by id.
func (s *sqlStore) GetBuildings(ctx context.Context, ids []int64, requireCoordinates bool) ([]*models.Building, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pred, args := s.dialect.inInt64("b.id", ids)
	query := `SELECT ` + buildingColumns + ` FROM buildings b WHERE ` + pred
	if requireCoordinates {
		query += ` AND b.latitude IS NOT NULL AND b.longitude IS NOT NULL`
	}
	query += ` ORDER BY b.id`
	buildings, err := s.queryBuildings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get buildings: %w", err)
	}
	if err := s.loadAddresses(ctx, buildings); err != nil {
		return nil, err
	}
	return buildings, nil
}

func (s *sqlStore) queryBuildings(ctx context.Context, query string, args ...any) ([]*models.Building, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []*models.Building
	for rows.Next() {
		var (
			b           models.Building
			name        sql.NullString
			lat, lon    sql.NullFloat64
			city, state sql.NullString
		)
		if err := rows.Scan(&b.ID, &name, &lat, &lon, &city, &state); err != nil {
			return nil, err
		}
		b.Name = name.String
		b.City = city.String
		b.State = state.String
		if lat.Valid {
			v := lat.Float64
			b.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			b.Longitude = &v
		}
		buildings = append(buildings, &b)
	}
	return buildings, rows.Err()
}

// loadAddresses attaches every address to its building in address id order.
func (s *sqlStore) loadAddresses(ctx context.Context, buildings []*models.Building) error {
	if len(buildings) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Building, len(buildings))
	ids := make([]int64, 0, len(buildings))
	for _, b := range buildings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}
	pred, args := s.dialect.inInt64("building_id", ids)
	query := `SELECT id, building_id, house_number, prefix, name, suffix, city, year, is_primary, searchable_text
		FROM addresses WHERE ` + pred + ` ORDER BY building_id, id`
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                                       models.Address
			house, prefix, name, suffix, city, text sql.NullString
			year                                    sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.BuildingID, &house, &prefix, &name, &suffix, &city, &year, &a.IsPrimary, &text); err != nil {
			return fmt.Errorf("load addresses: %w", err)
		}
		a.HouseNumber = house.String
		a.Prefix = prefix.String
		a.Name = name.String
		a.Suffix = suffix.String
		a.City = city.String
		a.Year = int(year.Int64)
		a.SearchableText = text.String
		if b := byID[a.BuildingID]; b != nil {
			b.Addresses = append(b.Addresses, &a)
		}
	}
	return rows.Err()
}

// SearchPeople returns people in year's census whose first or last name contains
// term. An unknown year yields no rows.
func (s *sqlStore) SearchPeople(ctx context.Context, year models.CensusYear, term string, limit int) ([]*models.Person, error) {
	table := year.Table()
	if table == "" || term == "" {
		return nil, nil
	}
	d := s.dialect
	pattern := containsPattern(term)
	query := `SELECT id, first_name, last_name, building_id FROM ` + d.quoteIdent(table) +
		` WHERE ` + d.contains("first_name") + ` OR ` + d.contains("last_name") + ` ORDER BY id`
	args := []any{pattern, pattern}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		var (
			p           models.Person
			first, last sql.NullString
			buildingID  sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &first, &last, &buildingID); err != nil {
			return nil, fmt.Errorf("search %s: %w", table, err)
		}
		p.Year = year
		p.FirstName = first.String
		p.LastName = last.String
		if buildingID.Valid {
			v := buildingID.Int64
			p.BuildingID = &v
		}
		people = append(people, &p)
	}
	return people, rows.Err()
}

// LoadSettings returns every stored setting. Callers check TableExists first.
func (s *sqlStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if value.Valid {
			settings[key] = value.String
		}
	}
	return settings, rows.Err()
}

// FillBlankBuildingPlace sets empty building cities and states to the given values.
func (s *sqlStore) FillBlankBuildingPlace(ctx context.Context, city, state string) (int64, error) {
	var total int64
	for col, value := range map[string]string{"city": city, "state": state} {
		if value == "" {
			continue
		}
		query := `UPDATE buildings SET ` + col + ` = ? WHERE ` + col + ` = ''`
		res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), value)
		if err != nil {
			return total, fmt.Errorf("fill blank building %s: %w", col, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// NullifyBlankText sets empty strings in table's text columns to NULL.
func (s *sqlStore) NullifyBlankText(ctx context.Context, table string) (int64, error) {
	columns, ok := TextColumns[table]
	if !ok {
		return 0, fmt.Errorf("no text columns registered for table %s", table)
	}
	d := s.dialect
	var total int64
	for _, col := range columns {
		c := d.quoteIdent(col)
		query := `UPDATE ` + d.quoteIdent(table) + ` SET ` + c + ` = NULL WHERE ` + c + ` = ''`
		res, err := s.db.ExecContext(ctx, query)
		if err != nil {
			return total, fmt.Errorf("nullify %s.%s: %w", table, col, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// CountRecords returns row counts for buildings, addresses and each census table.
func (s *sqlStore) CountRecords(ctx context.Context) (*RecordCounts, error) {
	counts := &RecordCounts{People: make(map[models.CensusYear]int64, len(models.SearchYears))}
	queries := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM buildings`, &counts.Buildings},
		{`SELECT COUNT(*) FROM buildings WHERE latitude IS NOT NULL AND longitude IS NOT NULL`, &counts.Geocoded},
		{`SELECT COUNT(*) FROM addresses`, &counts.Addresses},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
	}
	for _, year := range models.SearchYears {
		var n int64
		query := `SELECT COUNT(*) FROM ` + s.dialect.quoteIdent(year.Table())
		if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", year.Table(), err)
		}
		counts.People[year] = n
	}
	return counts, nil
}

// CreateBuilding inserts b and sets its ID. Addresses are not inserted.
func (s *sqlStore) CreateBuilding(ctx context.Context, b *models.Building) error {
	query := `INSERT INTO buildings (name, latitude, longitude, city, state) VALUES (?, ?, ?, ?, ?) RETURNING id`
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query),
		nullString(b.Name), b.Latitude, b.Longitude, nullString(b.City), nullString(b.State),
	).Scan(&b.ID)
}

// CreateAddress inserts a and sets its ID.
func (s *sqlStore) CreateAddress(ctx context.Context, a *models.Address) error {
	var year any
	if a.Year != 0 {
		year = a.Year
	}
	query := `INSERT INTO addresses (building_id, house_number, prefix, name, suffix, city, year, is_primary, searchable_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query),
		a.BuildingID, nullString(a.HouseNumber), nullString(a.Prefix), nullString(a.Name), nullString(a.Suffix),
		nullString(a.City), year, a.IsPrimary, nullString(a.SearchableText),
	).Scan(&a.ID)
}

// CreatePerson inserts p into the census table for p.Year and sets its ID.
func (s *sqlStore) CreatePerson(ctx context.Context, p *models.Person) error {
	table := p.Year.Table()
	if table == "" {
		return models.ErrUnknownYear
	}
	query := `INSERT INTO ` + s.dialect.quoteIdent(table) + ` (first_name, last_name, building_id) VALUES (?, ?, ?) RETURNING id`
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query),
		nullString(p.FirstName), nullString(p.LastName), p.BuildingID,
	).Scan(&p.ID)
}

// SetSetting stores a runtime setting, replacing any previous value.
func (s *sqlStore) SetSetting(ctx context.Context, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(query), key, value)
	return err
}

// Close closes the database.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
