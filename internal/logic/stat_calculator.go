package logic

import "github.com/propline/stats-api/internal/models"

var knownCategories = []models.StatCategory{
	models.StatPoints, models.StatRebounds, models.StatAssists,
	models.StatSteals, models.StatBlocks, models.StatTurnovers,
	models.StatFGM, models.StatFG3M, models.StatFTM,
	models.StatPRA, models.StatPR, models.StatPA, models.StatRA,
}

// StatValue maps a game record to the scalar for category.
// Unknown categories yield 0 so aggregation never has to branch on them;
// callers that need strictness check IsKnownCategory first.
func StatValue(r models.GameStatRecord, category models.StatCategory) float64 {
	var v int
	switch category {
	case models.StatPoints:
		v = r.Points
	case models.StatRebounds:
		v = r.Rebounds
	case models.StatAssists:
		v = r.Assists
	case models.StatSteals:
		v = r.Steals
	case models.StatBlocks:
		v = r.Blocks
	case models.StatTurnovers:
		v = r.Turnovers
	case models.StatFGM:
		v = r.FGM
	case models.StatFG3M:
		v = r.FG3M
	case models.StatFTM:
		v = r.FTM
	case models.StatPRA:
		v = r.Points + r.Rebounds + r.Assists
	case models.StatPR:
		v = r.Points + r.Rebounds
	case models.StatPA:
		v = r.Points + r.Assists
	case models.StatRA:
		v = r.Rebounds + r.Assists
	default:
		return 0
	}
	if v < 0 {
		return 0
	}
	return float64(v)
}

// IsKnownCategory reports whether StatValue has a mapping for category.
func IsKnownCategory(category models.StatCategory) bool {
	for _, c := range knownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Categories returns the supported stat categories.
func Categories() []models.StatCategory {
	out := make([]models.StatCategory, len(knownCategories))
	copy(out, knownCategories)
	return out
}
