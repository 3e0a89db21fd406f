package smartdelegate

import (
	"fmt"
	"sort"
)

// ModelChoice is the outcome of selecting a model for a given complexity
// assessment (spec §4.6 "select_model").
type ModelChoice struct {
	ModelID         string
	ModelName       string
	Tier            string
	Reasons         []string
	AvailableModels []string
}

// SelectModel picks the best available model for complexity, walking
// tiers outward from the target tier by rank-distance. excludeModel (the
// model already in use by the main loop, if any) is never chosen.
// preferredTier overrides complexity.Tier when non-empty.
func SelectModel(complexity ComplexityAssessment, available []ModelInfo, excludeModel, preferredTier string) ModelChoice {
	availableIDs := make(map[string]bool, len(available))
	ids := make([]string, 0, len(available))
	for _, m := range available {
		availableIDs[m.ID] = true
		ids = append(ids, m.ID)
	}

	targetTier := preferredTier
	if targetTier == "" {
		targetTier = complexity.Tier
	}

	tierOrder := append([]string{}, TierOrder...)
	targetRank := TierRank[targetTier]
	sort.SliceStable(tierOrder, func(i, j int) bool {
		return abs(TierRank[tierOrder[i]]-targetRank) < abs(TierRank[tierOrder[j]]-targetRank)
	})

	reasons := append([]string{}, complexity.Reasons...)
	var chosenID, chosenTier string

	for _, tier := range tierOrder {
		for _, modelID := range ModelTiers[tier] {
			if availableIDs[modelID] && modelID != excludeModel {
				chosenID = modelID
				chosenTier = tier
				if tier != targetTier {
					reasons = append(reasons, fmt.Sprintf("Preferred tier '%s' not available; using '%s' tier", targetTier, tier))
				}
				break
			}
		}
		if chosenID != "" {
			break
		}
	}

	if chosenID == "" {
		for _, m := range available {
			if m.ID != excludeModel && m.ID != "auto" {
				chosenID = m.ID
				if t, ok := tierOf(m.ID); ok {
					chosenTier = t
				} else {
					chosenTier = "mid"
				}
				reasons = append(reasons, fmt.Sprintf("Fallback: selected '%s' as no tier-matched model was available", chosenID))
				break
			}
		}
	}

	if chosenID == "" {
		chosenID = "auto"
		chosenTier = "mid"
		reasons = append(reasons, "No specific model available; using 'auto'")
	}

	name := modelName(chosenID, available)
	reasons = append(reasons, fmt.Sprintf("Selected: %s (%s)", name, chosenID))

	return ModelChoice{
		ModelID:         chosenID,
		ModelName:       name,
		Tier:            chosenTier,
		Reasons:         reasons,
		AvailableModels: ids,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
