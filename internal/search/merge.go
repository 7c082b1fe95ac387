package search

import (
	"sort"

	"github.com/hyperjump/chizu/internal/models"
)

// MergeBuildings unions the given lists, keeping the first occurrence of each id.
// The result is sorted by id and truncated to limit when limit > 0.
func MergeBuildings(limit int, lists ...[]*models.Building) []*models.Building {
	seen := make(map[int64]bool)
	merged := make([]*models.Building, 0)
	for _, list := range lists {
		for _, b := range list {
			if b == nil || seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			merged = append(merged, b)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ID < merged[j].ID
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// residenceIDs returns the distinct building ids people live in, in first-seen order.
func residenceIDs(people []*models.Person) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range people {
		if p.BuildingID == nil || seen[*p.BuildingID] {
			continue
		}
		seen[*p.BuildingID] = true
		ids = append(ids, *p.BuildingID)
	}
	return ids
}
