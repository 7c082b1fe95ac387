package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/ranking"
)

func ids(buildings []*models.Building) []int64 {
	out := make([]int64, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, b.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolver_BlankTermSkipsStore(t *testing.T) {
	store := &fakeStore{buildings: []*models.Building{{ID: 1}}}
	r := NewResolver(store, WithMatchPolicy(config.BuildingMatchResidence))

	for _, term := range []string{"", "   ", "\t"} {
		res, err := r.Resolve(context.Background(), term, models.Census1920, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Buildings) != 0 || len(res.People) != 0 {
			t.Errorf("term %q: got %d buildings, %d people", term, len(res.Buildings), len(res.People))
		}
	}
	if store.calls != 0 {
		t.Errorf("store called %d times for blank terms", store.calls)
	}
}

func TestResolver_UnknownYearHasNoPeople(t *testing.T) {
	store := &fakeStore{people: map[models.CensusYear][]*models.Person{1920: {{ID: 1}}}}
	r := NewResolver(store)

	people, err := r.ResolvePeople(context.Background(), "smith", models.CensusYear(1950))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(people) != 0 {
		t.Errorf("got %d people for unknown year", len(people))
	}
}

func TestResolver_ResidencePolicy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hall := addBuilding(t, store, &models.Building{Name: "Smithfield Hall", Latitude: ptr(42.44), Longitude: ptr(-76.5)})
	home := addBuilding(t, store, &models.Building{Name: "Cottage", Latitude: ptr(42.45), Longitude: ptr(-76.49)})
	unmapped := addBuilding(t, store, &models.Building{Name: "Farmhouse"})
	addPerson(t, store, &models.Person{Year: models.Census1930, FirstName: "Ann", LastName: "Smith", BuildingID: &home.ID})
	addPerson(t, store, &models.Person{Year: models.Census1930, FirstName: "Bo", LastName: "Smith", BuildingID: &unmapped.ID})
	addPerson(t, store, &models.Person{Year: models.Census1910, FirstName: "Cy", LastName: "Smith", BuildingID: &unmapped.ID})

	tests := []struct {
		name        string
		policy      string
		year        models.CensusYear
		requireGeo  bool
		wantIDs     []int64
		wantPersons int
	}{
		{"fields ignores residences", config.BuildingMatchFields, models.Census1930, false, []int64{hall.ID}, 2},
		{"residence adds homes", config.BuildingMatchResidence, models.Census1930, false, []int64{hall.ID, home.ID, unmapped.ID}, 2},
		{"residence drops homes without coordinates", config.BuildingMatchResidence, models.Census1930, true, []int64{hall.ID, home.ID}, 2},
		{"residence is per year", config.BuildingMatchResidence, models.Census1910, false, []int64{hall.ID, unmapped.ID}, 1},
		{"no people in 1940", config.BuildingMatchResidence, models.Census1940, false, []int64{hall.ID}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(store, WithMatchPolicy(tt.policy))
			res, err := r.Resolve(ctx, "smith", tt.year, tt.requireGeo)
			if err != nil {
				t.Fatal(err)
			}
			if got := ids(res.Buildings); !equalIDs(got, tt.wantIDs) {
				t.Errorf("buildings = %v, want %v", got, tt.wantIDs)
			}
			if len(res.People) != tt.wantPersons {
				t.Errorf("people = %d, want %d", len(res.People), tt.wantPersons)
			}
		})
	}
}

func TestResolver_NonASCIITermAgreesWithScorer(t *testing.T) {
	store := newTestStore(t)
	school := addBuilding(t, store, &models.Building{Name: "ÉCOLE Öffentlich"})
	addBuilding(t, store, &models.Building{Name: "Town Hall"})

	r := NewResolver(store)
	res, err := r.Resolve(context.Background(), "école", models.Census1920, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Buildings); !equalIDs(got, []int64{school.ID}) {
		t.Fatalf("buildings = %v, want [%d]", got, school.ID)
	}

	conf := ranking.NewHeuristicScorer(ranking.DefaultScoringConfig()).Score(res.Buildings[0], "école")
	if conf.Score != 80 || len(conf.Reasons) != 1 || conf.Reasons[0] != ranking.ReasonName {
		t.Errorf("confidence = %+v, want 80 with name reason", conf)
	}
}

func TestResolver_LimitAppliesAfterMerge(t *testing.T) {
	store := &fakeStore{
		buildings: []*models.Building{{ID: 5}, {ID: 1}, {ID: 3}},
		people: map[models.CensusYear][]*models.Person{
			models.Census1920: {{ID: 1, BuildingID: ptr(int64(2))}, {ID: 2, BuildingID: ptr(int64(1))}},
		},
	}
	store.buildings = append(store.buildings, &models.Building{ID: 2})
	r := NewResolver(store, WithMatchPolicy(config.BuildingMatchResidence), WithLimit(3))

	got, err := r.ResolveBuildings(context.Background(), "x", models.Census1920, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1, 2, 3}; !equalIDs(ids(got), want) {
		t.Errorf("buildings = %v, want %v", ids(got), want)
	}
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	r := NewResolver(&fakeStore{err: boom})

	if _, err := r.Resolve(context.Background(), "main", models.Census1920, false); !errors.Is(err, boom) {
		t.Errorf("Resolve error = %v, want wrapped boom", err)
	}
	if _, err := r.ResolveBuildings(context.Background(), "main", models.Census1920, true); !errors.Is(err, boom) {
		t.Errorf("ResolveBuildings error = %v, want wrapped boom", err)
	}
}

func TestMergeBuildings(t *testing.T) {
	a := []*models.Building{{ID: 3}, {ID: 1}}
	b := []*models.Building{{ID: 2}, {ID: 3}, nil}

	if got := ids(MergeBuildings(0, a, b)); !equalIDs(got, []int64{1, 2, 3}) {
		t.Errorf("MergeBuildings = %v", got)
	}
	if got := ids(MergeBuildings(2, a, b)); !equalIDs(got, []int64{1, 2}) {
		t.Errorf("MergeBuildings limit 2 = %v", got)
	}
	if got := MergeBuildings(5); got == nil || len(got) != 0 {
		t.Errorf("MergeBuildings() = %#v, want empty non-nil", got)
	}
}
