// Package ranking assigns confidence scores to building matches.
package ranking

import "github.com/hyperjump/chizu/internal/models"

// Confidence is the relevance of one building to a search term.
type Confidence struct {
	// Score is in [0, 100].
	Score int `json:"confidence"`
	// Reasons lists one entry per rule that fired, in evaluation order.
	Reasons []string `json:"reasons"`
}

// Scorer is the interface for confidence scoring policies.
type Scorer interface {
	// Score calculates the confidence of building b for term.
	Score(b *models.Building, term string) Confidence
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}

const (
	ReasonName   = "Name matches search term"
	ReasonCity   = "City matches search term"
	ReasonStreet = "Street matches search term"
)
