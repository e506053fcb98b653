package domain

import (
	m "overdub.dev/pkg/overdub/internal/model"
)

// MutationScore returns killed over (killed + survived) across all
// reports, in [0.0, 1.0]. Skipped and errored mutants are excluded from
// the denominator. An empty denominator scores 1.0: nothing survived.
func MutationScore(reports []m.RunReport) float64 {
	killed := 0
	total := 0

	for _, report := range reports {
		for _, result := range report.Results {
			switch result.Status {
			case m.Killed:
				killed++
				total++
			case m.Survived:
				total++
			case m.Skipped, m.Error:
				// Excluded from the score denominator.
			}
		}
	}

	if total == 0 {
		return 1.0
	}

	return float64(killed) / float64(total)
}
