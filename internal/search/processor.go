package search

import "github.com/hyperjump/chizu/internal/models"

// ProcessQuery validates the year of a per-year query.
func ProcessQuery(query *models.SearchQuery) error {
	return query.Validate()
}
