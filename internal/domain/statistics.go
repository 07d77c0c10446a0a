package domain

// TopRarityHit is a top rarity pull together with the number of pulls it took
type TopRarityHit struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	ResourceID   int    `json:"resourceId"`
	ResourceType string `json:"resourceType"`
}

type CategoryStatistics struct {
	CardPoolType Category `json:"cardPoolType"`
	Total        int      `json:"total"`
	FiveCount    int      `json:"fiveCount"`
	FourCount    int      `json:"fourCount"`
	ThreeCount   int      `json:"threeCount"`
	// Pulls since the most recent top rarity hit
	PullCount int            `json:"pullCount"`
	Detail    []TopRarityHit `json:"detail"`
}

// PityStatistics is derived from a PlayerHistory and never authoritative
type PityStatistics map[Category]CategoryStatistics
