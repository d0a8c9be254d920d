package service

import (
	"errors"
	"sort"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/config"
)

// candidateFeatures returns the driver names present on every row, sorted,
// so stepwise fits compare models over an identical sample.
func candidateFeatures(rows []aggregatedomain.DailyRow) []string {
	if len(rows) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, row := range rows {
		for name := range row.Drivers {
			counts[name]++
		}
	}
	var names []string
	for name, count := range counts {
		if count == len(rows) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// stepwiseSelect runs forward feature selection: each round adds the
// candidate that most improves adjusted R-squared, stopping when the best
// addition improves by less than the configured minimum or the feature cap
// is reached. Adjusted R-squared penalizes added terms, so piling on weak
// drivers does not pay.
func stepwiseSelect(rows []aggregatedomain.DailyRow, candidates []string, cfg config.EngineConfig) (*fit, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no candidate features with full coverage")
	}

	var best *fit
	selected := make([]string, 0, cfg.MaxAutoFeatures)
	remaining := append([]string(nil), candidates...)

	for len(selected) < cfg.MaxAutoFeatures && len(remaining) > 0 {
		var stepBest *fit
		stepIdx := -1

		for i, candidate := range remaining {
			trial := make([]string, len(selected), len(selected)+1)
			copy(trial, selected)
			trial = append(trial, candidate)

			f, err := fitOLS(rows, trial)
			if err != nil {
				continue
			}
			if stepBest == nil || f.AdjRSquared > stepBest.AdjRSquared {
				stepBest = f
				stepIdx = i
			}
		}

		if stepBest == nil {
			break
		}
		if best != nil && stepBest.AdjRSquared-best.AdjRSquared < cfg.StepwiseMinImprovement {
			break
		}

		best = stepBest
		selected = stepBest.Features
		remaining = append(remaining[:stepIdx], remaining[stepIdx+1:]...)
	}

	if best == nil {
		return nil, errors.New("no usable regression could be fit from available drivers")
	}
	return best, nil
}
