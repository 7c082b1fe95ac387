package models

const (
	TypeBuilding = "building"
	TypePerson   = "person"
)

// BuildingRecord is a building flattened for display.
type BuildingRecord struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Year              int      `json:"year"`
	Address           string   `json:"address"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	ConfidenceScore   int      `json:"confidence_score"`
	ConfidenceReasons []string `json:"confidence_reasons"`
	Type              string   `json:"type"`
}

// PersonRecord is a census entry flattened for display.
type PersonRecord struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SortableName string `json:"sortable_name"`
	Year         int    `json:"year"`
	Type         string `json:"type"`
}

// YearResults holds everything matched for one census year. The media lists are
// always empty; they are kept so clients can rely on the keys being present.
type YearResults struct {
	Year       int               `json:"year"`
	Query      string            `json:"query"`
	Buildings  []*BuildingRecord `json:"buildings"`
	People     []*PersonRecord   `json:"people"`
	Documents  []any             `json:"documents"`
	Narratives []any             `json:"narratives"`
	Photos     []any             `json:"photos"`
	Videos     []any             `json:"videos"`
	Audios     []any             `json:"audios"`
	QueryTime  int64             `json:"query_time_ms"`
}

// NewYearResults returns results for year with every list empty but non-nil.
func NewYearResults(year CensusYear, query string) *YearResults {
	return &YearResults{
		Year:       int(year),
		Query:      query,
		Buildings:  []*BuildingRecord{},
		People:     []*PersonRecord{},
		Documents:  []any{},
		Narratives: []any{},
		Photos:     []any{},
		Videos:     []any{},
		Audios:     []any{},
	}
}
