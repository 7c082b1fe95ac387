package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/metrics"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/ranking"
)

// Engine answers searches by resolving records, scoring and shaping them.
type Engine struct {
	resolver *Resolver
	scorer   ranking.Scorer
	logger   *zap.Logger
}

// NewEngine creates an engine. A nil scorer reports fixed full confidence and a nil
// logger discards output.
func NewEngine(resolver *Resolver, scorer ranking.Scorer, logger *zap.Logger) *Engine {
	if scorer == nil {
		scorer = ranking.FixedScorer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{resolver: resolver, scorer: scorer, logger: logger}
}

// SearchForYear returns the shaped buildings and people matching query.Term in
// query.Year. Buildings are not required to have coordinates.
func (e *Engine) SearchForYear(ctx context.Context, query *models.SearchQuery) (*models.YearResults, error) {
	startTime := time.Now()
	if err := ProcessQuery(query); err != nil {
		return nil, err
	}
	metrics.SearchesTotal.WithLabelValues("year").Inc()

	results := models.NewYearResults(query.Year, query.Term)
	if query.Blank() {
		metrics.EmptySearchesTotal.Inc()
		return results, nil
	}

	res, err := e.resolver.Resolve(ctx, query.Term, query.Year, false)
	if err != nil {
		metrics.SearchFailTotal.WithLabelValues("year").Inc()
		return nil, err
	}
	for _, b := range res.Buildings {
		results.Buildings = append(results.Buildings, e.shape(b, query.Term, query.Year))
	}
	for _, p := range res.People {
		results.People = append(results.People, ShapePerson(p, query.Year))
	}
	results.QueryTime = time.Since(startTime).Milliseconds()
	return results, nil
}

func (e *Engine) shape(b *models.Building, term string, year models.CensusYear) *models.BuildingRecord {
	conf := e.scorer.Score(b, term)
	metrics.ConfidenceScore.Observe(float64(conf.Score))
	return ShapeBuilding(b, year, conf)
}
