package search

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/ranking"
)

func TestEngine_BuildFeatureCollection_BlankTerm(t *testing.T) {
	store := &fakeStore{buildings: []*models.Building{{ID: 1, Latitude: ptr(1.0), Longitude: ptr(2.0)}}}
	engine := NewEngine(NewResolver(store), nil, nil)

	fc, err := engine.BuildFeatureCollection(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"type":"FeatureCollection","features":[]}`; got != want {
		t.Errorf("blank term encoded as %s, want %s", got, want)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times", store.calls)
	}
}

func TestEngine_BuildFeatureCollection_MainStreet(t *testing.T) {
	store := newTestStore(t)
	main := addBuilding(t, store, &models.Building{Name: "123 Main Street", Latitude: ptr(42.44), Longitude: ptr(-76.50)},
		&models.Address{HouseNumber: "123", Name: "Main", Suffix: "St", City: "Ithaca", Year: 1920, IsPrimary: true})
	addBuilding(t, store, &models.Building{Name: "Main Barn"})

	engine := NewEngine(NewResolver(store), nil, nil)
	fc, err := engine.BuildFeatureCollection(context.Background(), "Main")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != len(models.SearchYears) {
		t.Fatalf("got %d features, want one per year (%d)", len(fc.Features), len(models.SearchYears))
	}
	for _, f := range fc.Features {
		if f.Geometry.Coordinates != [2]float64{-76.50, 42.44} {
			t.Errorf("coordinates = %v, want [-76.50 42.44]", f.Geometry.Coordinates)
		}
		if f.Properties.ID != main.ID || !strings.Contains(f.Properties.Name, "Main") {
			t.Errorf("properties = %+v", f.Properties)
		}
		if f.Properties.ConfidenceScore != 100 || len(f.Properties.ConfidenceReasons) != 0 {
			t.Errorf("confidence = %d %v, want 100 and no reasons", f.Properties.ConfidenceScore, f.Properties.ConfidenceReasons)
		}
		if f.Properties.Address != "123 Main St, Ithaca" {
			t.Errorf("address = %q", f.Properties.Address)
		}
	}
}

func TestEngine_BuildFeatureCollection_ExcludesUnmappedResidence(t *testing.T) {
	store := newTestStore(t)
	home := addBuilding(t, store, &models.Building{Name: "Cottage"})
	mapped := addBuilding(t, store, &models.Building{Name: "House", Latitude: ptr(42.4), Longitude: ptr(-76.4)})
	addPerson(t, store, &models.Person{Year: models.Census1930, FirstName: "Ann", LastName: "Okafor", BuildingID: &home.ID})
	addPerson(t, store, &models.Person{Year: models.Census1930, FirstName: "Ed", LastName: "Okafor", BuildingID: &mapped.ID})

	engine := NewEngine(NewResolver(store, WithMatchPolicy(config.BuildingMatchResidence)), nil, nil)
	fc, err := engine.BuildFeatureCollection(context.Background(), "okafor")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}
	if fc.Features[0].Properties.ID != mapped.ID || fc.Features[0].Properties.Year != 1930 {
		t.Errorf("feature = %+v", fc.Features[0].Properties)
	}
}

func TestEngine_BuildFeatureCollection_NeverEmitsUnmapped(t *testing.T) {
	store := &fakeStore{buildings: []*models.Building{
		{ID: 1, Name: "a", Latitude: ptr(1.0)},
		{ID: 2, Name: "b", Longitude: ptr(2.0)},
		{ID: 3, Name: "c"},
		{ID: 4, Name: "d", Latitude: ptr(1.0), Longitude: ptr(2.0)},
	}}
	engine := NewEngine(NewResolver(store), nil, nil)

	fc, err := engine.BuildFeatureCollection(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fc.Features {
		if f.Properties.ID != 4 {
			t.Errorf("building %d emitted without coordinates", f.Properties.ID)
		}
	}
}

func TestEngine_BuildFeatureCollection_Idempotent(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"Main Hall", "Main Depot", "Main Mill"} {
		addBuilding(t, store, &models.Building{Name: name, Latitude: ptr(42.4), Longitude: ptr(-76.5)})
	}
	engine := NewEngine(NewResolver(store), ranking.NewScorer(config.ConfidenceHeuristic), nil)

	first, err := engine.BuildFeatureCollection(context.Background(), "main")
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.BuildFeatureCollection(context.Background(), "main")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated searches returned different collections")
	}
	for i := 1; i < 3; i++ {
		if first.Features[i].Properties.ID <= first.Features[i-1].Properties.ID {
			t.Errorf("features within a year not in id order")
		}
	}
}

func TestEngine_BuildFeatureCollection_StoreError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewEngine(NewResolver(&fakeStore{err: boom}), nil, nil)
	if _, err := engine.BuildFeatureCollection(context.Background(), "main"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}
