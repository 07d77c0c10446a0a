package app

import (
	"slices"

	"github.com/Amund211/gacharecord/internal/domain"
)

// MergeCategory adds the pulls in fresh that are newer than everything in existing.
//
// fresh must be newest first, as returned by the record service. It is consumed until the
// first pull that is already stored, so only the unseen prefix is added. The result is existing
// followed by the unseen pulls, oldest first.
//
// NOTE: A stored pull that is missing from a fresh page (or a new pull that is structurally
// equal to a stored one) stops the walk early and can leave a gap. There is no dedup pass.
func MergeCategory(existing domain.CategoryHistory, fresh []domain.PullRecord) domain.CategoryHistory {
	unseen := []domain.PullRecord{}
	for _, pull := range fresh {
		if slices.Contains(existing, pull) {
			break
		}
		unseen = append(unseen, pull)
	}

	merged := make(domain.CategoryHistory, 0, len(existing)+len(unseen))
	merged = append(merged, existing...)
	for i := len(unseen) - 1; i >= 0; i-- {
		merged = append(merged, unseen[i])
	}
	return merged
}

// MergePlayerHistory merges fresh pulls per category into a copy of existing.
// Categories without fresh pulls are kept as they are.
func MergePlayerHistory(existing domain.PlayerHistory, fresh map[domain.Category][]domain.PullRecord) domain.PlayerHistory {
	merged := existing.Clone()
	for category, pulls := range fresh {
		mergedCategory := MergeCategory(merged[category], pulls)
		if len(mergedCategory) == 0 {
			if _, ok := merged[category]; !ok {
				// Don't add empty categories
				continue
			}
		}
		merged[category] = mergedCategory
	}
	return merged
}
