package domain

import (
	"maps"
	"slices"
)

// PullRecord is one reward event as reported by the record service.
//
// Two records describe the same pull iff all fields are equal.
type PullRecord struct {
	CardPoolType string `json:"cardPoolType"`
	ResourceID   int    `json:"resourceId"`
	QualityLevel int    `json:"qualityLevel"`
	ResourceType string `json:"resourceType"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
	// Server local time, YYYY-MM-DD HH:MM:SS
	Time string `json:"time"`
}

const TopRarity = 5

// CategoryHistory holds the pulls of one category, oldest first
type CategoryHistory []PullRecord

// PlayerHistory holds every stored pull of a single player
type PlayerHistory map[Category]CategoryHistory

// Categories returns the category ids present in the history in ascending order
func (h PlayerHistory) Categories() []Category {
	return slices.Sorted(maps.Keys(h))
}

func (h PlayerHistory) TotalPulls() int {
	total := 0
	for _, pulls := range h {
		total += len(pulls)
	}
	return total
}

func (h PlayerHistory) Clone() PlayerHistory {
	cloned := make(PlayerHistory, len(h))
	for category, pulls := range h {
		cloned[category] = slices.Clone(pulls)
	}
	return cloned
}
