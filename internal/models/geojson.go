package models

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// FeatureCollection is a GeoJSON feature collection of building points.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection whose features encode as [].
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: TypeFeatureCollection, Features: []*Feature{}}
}

// Feature is a GeoJSON point feature carrying a building record.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   *Point          `json:"geometry"`
	Properties *BuildingRecord `json:"properties"`
}

// Point is a GeoJSON point. Coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPointFeature builds a feature at (lon, lat).
func NewPointFeature(lon, lat float64, props *BuildingRecord) *Feature {
	return &Feature{
		Type:       TypeFeature,
		Geometry:   &Point{Type: TypePoint, Coordinates: [2]float64{lon, lat}},
		Properties: props,
	}
}
