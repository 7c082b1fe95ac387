package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addBuilding(t *testing.T, s *storage.SQLiteStorage, b *models.Building, addrs ...*models.Address) *models.Building {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateBuilding(ctx, b); err != nil {
		t.Fatal(err)
	}
	for _, a := range addrs {
		a.BuildingID = b.ID
		if err := s.CreateAddress(ctx, a); err != nil {
			t.Fatal(err)
		}
		b.Addresses = append(b.Addresses, a)
	}
	return b
}

func addPerson(t *testing.T, s *storage.SQLiteStorage, p *models.Person) *models.Person {
	t.Helper()
	if err := s.CreatePerson(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

// fakeStore serves fixed records and counts calls.
type fakeStore struct {
	buildings []*models.Building
	people    map[models.CensusYear][]*models.Person
	err       error
	calls     int
}

func (f *fakeStore) SearchBuildings(_ context.Context, q storage.BuildingSearch) ([]*models.Building, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Building
	for _, b := range f.buildings {
		if q.RequireCoordinates && !b.HasCoordinates() {
			continue
		}
		out = append(out, b)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) GetBuildings(_ context.Context, ids []int64, requireCoordinates bool) ([]*models.Building, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.Building
	for _, b := range f.buildings {
		if want[b.ID] && (!requireCoordinates || b.HasCoordinates()) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchPeople(_ context.Context, year models.CensusYear, _ string, limit int) ([]*models.Person, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.people[year]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
