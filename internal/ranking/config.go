package ranking

// ScoringConfig holds the weights of the heuristic scorer.
type ScoringConfig struct {
	BaseScore        int // default: 50
	NameMatchScore   int // default: 30
	CityMatchScore   int // default: 15
	StreetMatchScore int // default: 15
	MaxScore         int // default: 100
}

// DefaultScoringConfig returns the default heuristic weights.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		BaseScore:        50,
		NameMatchScore:   30,
		CityMatchScore:   15,
		StreetMatchScore: 15,
		MaxScore:         100,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *ScoringConfig) ApplyDefaults() {
	defaults := DefaultScoringConfig()

	if c.BaseScore == 0 {
		c.BaseScore = defaults.BaseScore
	}
	if c.NameMatchScore == 0 {
		c.NameMatchScore = defaults.NameMatchScore
	}
	if c.CityMatchScore == 0 {
		c.CityMatchScore = defaults.CityMatchScore
	}
	if c.StreetMatchScore == 0 {
		c.StreetMatchScore = defaults.StreetMatchScore
	}
	if c.MaxScore == 0 {
		c.MaxScore = defaults.MaxScore
	}
}
