package app

import (
	"github.com/Amund211/gacharecord/internal/domain"
)

func computeCategoryStatistics(category domain.Category, pulls domain.CategoryHistory) domain.CategoryStatistics {
	stats := domain.CategoryStatistics{
		CardPoolType: category,
		Detail:       []domain.TopRarityHit{},
	}

	// Pulls since the last top rarity, and the pulls spent on earlier ones
	counter := 0
	resetSum := 0
	for _, pull := range pulls {
		counter++
		stats.Total++

		switch pull.QualityLevel {
		case domain.TopRarity:
			stats.FiveCount++
			stats.Detail = append(stats.Detail, domain.TopRarityHit{
				Name:         pull.Name,
				Count:        counter,
				ResourceID:   pull.ResourceID,
				ResourceType: pull.ResourceType,
			})
			resetSum += counter
			counter = 0
		case 4:
			stats.FourCount++
		case 3:
			stats.ThreeCount++
		}
	}

	stats.PullCount = stats.Total - resetSum

	return stats
}

// ComputeStatistics derives the pity statistics of every category with at least one pull
func ComputeStatistics(history domain.PlayerHistory) domain.PityStatistics {
	statistics := domain.PityStatistics{}
	for _, category := range history.Categories() {
		pulls := history[category]
		if len(pulls) == 0 {
			continue
		}
		statistics[category] = computeCategoryStatistics(category, pulls)
	}
	return statistics
}
