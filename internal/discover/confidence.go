package discover

import "hireassist-engine/internal/normalize"

// Confidence levels stored on a company.
const (
	ConfidenceHigh = "high"
	ConfidenceMed  = "med"
	ConfidenceLow  = "low"
	// ConfidenceAuto marks companies added without a location sample.
	ConfidenceAuto = "auto"
)

const (
	minLocalJobs  = 2
	minLocalRatio = 0.10
	maxBoardJobs  = 500
)

// Confidence grades how much of a board is in the target country.
func Confidence(locations []string, loc *normalize.Locations) string {
	total := len(locations)
	local := 0
	for _, raw := range locations {
		if _, country := loc.Split(raw); country == loc.Country {
			local++
		}
	}
	return gradeConfidence(local, total)
}

func gradeConfidence(local, total int) string {
	if total == 0 || local == 0 {
		return ConfidenceLow
	}
	ratio := float64(local) / float64(total)
	if total > maxBoardJobs && ratio < minLocalRatio {
		return ConfidenceLow
	}
	if local >= 5 || (ratio >= 0.25 && local >= 2) {
		return ConfidenceHigh
	}
	if local >= minLocalJobs || (ratio >= minLocalRatio && local >= 1) {
		return ConfidenceMed
	}
	return ConfidenceLow
}
