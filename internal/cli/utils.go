// Package cli provides output formatting for the chizu command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is the same JSON the HTTP API returns.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a format. Unknown values are an error.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(s); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteFeatureCollection writes map search results to w in the given format.
func WriteFeatureCollection(w io.Writer, term string, fc *models.FeatureCollection, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, fc)
	case OutputCompact:
		for _, f := range fc.Features {
			p := f.Properties
			fmt.Fprintf(w, "%d\t%d\t%.5f,%.5f\t%s\n", p.Year, p.ID, f.Geometry.Coordinates[1], f.Geometry.Coordinates[0], p.Name)
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d map features for %q\n\n", len(fc.Features), term)
		for _, f := range fc.Features {
			writeBuilding(w, f.Properties)
		}
		return nil
	}
}

// WriteYearResults writes one year's buildings and people to w in the given format.
func WriteYearResults(w io.Writer, res *models.YearResults, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, res)
	case OutputCompact:
		for _, b := range res.Buildings {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", b.Type, b.ID, b.Name, b.Address)
		}
		for _, p := range res.People {
			fmt.Fprintf(w, "%s\t%d\t%s\n", p.Type, p.ID, p.SortableName)
		}
		return nil
	default:
		fmt.Fprintf(w, "\n%d: %d buildings, %d people for %q in %dms\n\n",
			res.Year, len(res.Buildings), len(res.People), res.Query, res.QueryTime)
		if len(res.Buildings) > 0 {
			fmt.Fprintln(w, "--- Buildings ---")
			for _, b := range res.Buildings {
				writeBuilding(w, b)
			}
		}
		if len(res.People) > 0 {
			fmt.Fprintln(w, "--- People ---")
			for _, p := range res.People {
				fmt.Fprintf(w, "  %s #%d\n", utils.PadRight(utils.Truncate(p.SortableName, 40), 44), p.ID)
			}
			fmt.Fprintln(w)
		}
		return nil
	}
}

func writeBuilding(w io.Writer, b *models.BuildingRecord) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%d] %s (#%d) | Confidence: %d\n", b.Year, utils.Truncate(b.Name, 60), b.ID, b.ConfidenceScore)
	if b.Address != "" {
		fmt.Fprintf(w, "Address: %s\n", b.Address)
	}
	if b.Latitude != nil && b.Longitude != nil {
		fmt.Fprintf(w, "Location: %.5f, %.5f\n", *b.Latitude, *b.Longitude)
	}
	for _, reason := range b.ConfidenceReasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
