package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/metrics"
	"github.com/hyperjump/chizu/internal/models"
)

// BuildFeatureCollection returns a point feature for every geocoded building
// matching term, year by year in ascending order. A building matched in several
// years appears once per year. A blank term yields an empty collection.
func (e *Engine) BuildFeatureCollection(ctx context.Context, term string) (*models.FeatureCollection, error) {
	fc := models.NewFeatureCollection()
	metrics.SearchesTotal.WithLabelValues("map").Inc()
	if strings.TrimSpace(term) == "" {
		metrics.EmptySearchesTotal.Inc()
		metrics.FeaturesReturned.Observe(0)
		return fc, nil
	}

	for _, year := range models.SearchYears {
		start := time.Now()
		buildings, err := e.resolver.ResolveBuildings(ctx, term, year, true)
		if err != nil {
			metrics.SearchFailTotal.WithLabelValues("map").Inc()
			return nil, err
		}
		metrics.ResolveDurationMs.WithLabelValues(year.String()).Observe(float64(time.Since(start).Milliseconds()))

		for _, b := range buildings {
			if !b.HasCoordinates() {
				continue
			}
			fc.Features = append(fc.Features, models.NewPointFeature(*b.Longitude, *b.Latitude, e.shape(b, term, year)))
		}
	}

	e.logger.Debug("built feature collection",
		zap.String("term", term),
		zap.Int("features", len(fc.Features)),
	)
	metrics.FeaturesReturned.Observe(float64(len(fc.Features)))
	return fc, nil
}
