// Package search resolves free-text terms into census records and map features.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

// DefaultLimit caps the rows returned per entity type per year.
const DefaultLimit = 50

// RecordReader is the subset of the record store the resolver reads from.
type RecordReader interface {
	SearchBuildings(ctx context.Context, q storage.BuildingSearch) ([]*models.Building, error)
	GetBuildings(ctx context.Context, ids []int64, requireCoordinates bool) ([]*models.Building, error)
	SearchPeople(ctx context.Context, year models.CensusYear, term string, limit int) ([]*models.Person, error)
}

// Resolution holds the records matched for one term and year.
type Resolution struct {
	Buildings []*models.Building
	People    []*models.Person
}

// Resolver finds the buildings and people matching a term in one census year.
type Resolver struct {
	store  RecordReader
	policy string
	limit  int
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMatchPolicy selects config.BuildingMatchFields or config.BuildingMatchResidence.
func WithMatchPolicy(policy string) Option {
	return func(r *Resolver) { r.policy = policy }
}

// WithLimit sets the per-type row cap. Non-positive values keep the default.
func WithLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over store using the fields match policy by default.
func NewResolver(store RecordReader, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		policy: config.BuildingMatchFields,
		limit:  DefaultLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the building match policy in use.
func (r *Resolver) Policy() string {
	return r.policy
}

// Resolve returns the buildings and people matching term in year. A blank term
// returns an empty Resolution without querying the store.
func (r *Resolver) Resolve(ctx context.Context, term string, year models.CensusYear, requireCoordinates bool) (*Resolution, error) {
	res := &Resolution{Buildings: []*models.Building{}, People: []*models.Person{}}
	if strings.TrimSpace(term) == "" {
		return res, nil
	}

	people, err := r.ResolvePeople(ctx, term, year)
	if err != nil {
		return nil, err
	}
	res.People = people

	buildings, err := r.resolveBuildings(ctx, term, people, requireCoordinates)
	if err != nil {
		return nil, err
	}
	res.Buildings = buildings

	r.logger.Debug("resolved",
		zap.String("term", term),
		zap.Int("year", int(year)),
		zap.Int("buildings", len(res.Buildings)),
		zap.Int("people", len(res.People)),
	)
	return res, nil
}

// ResolveBuildings returns the buildings matching term in year, ordered by id.
func (r *Resolver) ResolveBuildings(ctx context.Context, term string, year models.CensusYear, requireCoordinates bool) ([]*models.Building, error) {
	if strings.TrimSpace(term) == "" {
		return []*models.Building{}, nil
	}
	var people []*models.Person
	if r.policy == config.BuildingMatchResidence {
		var err error
		people, err = r.ResolvePeople(ctx, term, year)
		if err != nil {
			return nil, err
		}
	}
	return r.resolveBuildings(ctx, term, people, requireCoordinates)
}

// ResolvePeople returns the people in year's census whose first or last name
// contains term. An unknown year yields an empty list.
func (r *Resolver) ResolvePeople(ctx context.Context, term string, year models.CensusYear) ([]*models.Person, error) {
	if strings.TrimSpace(term) == "" || !year.Valid() {
		return []*models.Person{}, nil
	}
	people, err := r.store.SearchPeople(ctx, year, term, r.limit)
	if err != nil {
		return nil, fmt.Errorf("resolve people %d: %w", year, err)
	}
	if people == nil {
		people = []*models.Person{}
	}
	return people, nil
}

// resolveBuildings applies the field predicate and, under the residence policy,
// adds the homes of people.
func (r *Resolver) resolveBuildings(ctx context.Context, term string, people []*models.Person, requireCoordinates bool) ([]*models.Building, error) {
	matched, err := r.store.SearchBuildings(ctx, storage.BuildingSearch{
		Term:               term,
		RequireCoordinates: requireCoordinates,
		Limit:              r.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve buildings: %w", err)
	}
	if r.policy != config.BuildingMatchResidence {
		return MergeBuildings(r.limit, matched), nil
	}

	ids := residenceIDs(people)
	if len(ids) == 0 {
		return MergeBuildings(r.limit, matched), nil
	}
	homes, err := r.store.GetBuildings(ctx, ids, requireCoordinates)
	if err != nil {
		return nil, fmt.Errorf("resolve residences: %w", err)
	}
	return MergeBuildings(r.limit, matched, homes), nil
}
