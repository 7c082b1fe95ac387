package ranking

import (
	"strings"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/models"
)

// HeuristicScorer scores a building by which of its fields contain the term.
type HeuristicScorer struct {
	config *ScoringConfig
}

// NewHeuristicScorer creates a HeuristicScorer. A nil config uses the defaults.
func NewHeuristicScorer(cfg *ScoringConfig) *HeuristicScorer {
	if cfg == nil {
		cfg = DefaultScoringConfig()
	}
	cfg.ApplyDefaults()
	return &HeuristicScorer{config: cfg}
}

// Name returns the scorer name.
func (s *HeuristicScorer) Name() string {
	return "heuristic"
}

// Score starts from the base score, adds the name bonus when the building name
// contains term, then a city and a street bonus for every address that matches.
// The sum is capped at MaxScore.
func (s *HeuristicScorer) Score(b *models.Building, term string) Confidence {
	c := Confidence{Score: s.config.BaseScore, Reasons: []string{}}
	if b == nil {
		return c
	}
	needle := strings.ToLower(term)

	if b.Name != "" && strings.Contains(strings.ToLower(b.Name), needle) {
		c.Score += s.config.NameMatchScore
		c.Reasons = append(c.Reasons, ReasonName)
	}
	for _, a := range b.Addresses {
		if a.City != "" && strings.Contains(strings.ToLower(a.City), needle) {
			c.Score += s.config.CityMatchScore
			c.Reasons = append(c.Reasons, ReasonCity)
		}
		if a.Name != "" && strings.Contains(strings.ToLower(a.Name), needle) {
			c.Score += s.config.StreetMatchScore
			c.Reasons = append(c.Reasons, ReasonStreet)
		}
	}
	c.Score = min(c.Score, s.config.MaxScore)
	return c
}

// FixedScorer reports full confidence for every building.
type FixedScorer struct{}

// Name returns the scorer name.
func (FixedScorer) Name() string {
	return "fixed"
}

// Score always returns 100 with no reasons.
func (FixedScorer) Score(*models.Building, string) Confidence {
	return Confidence{Score: 100, Reasons: []string{}}
}

// NewScorer returns the scorer for a config.Confidence* policy. Unknown policies
// get the fixed scorer.
func NewScorer(policy string) Scorer {
	if policy == config.ConfidenceHeuristic {
		return NewHeuristicScorer(nil)
	}
	return FixedScorer{}
}
