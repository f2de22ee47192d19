package core

import "fmt"

// Integrity issue kinds. Each distinct kind found subtracts scorePenalty
// from the integrity score.
const (
	scorePenalty = 10
	maxScore     = 100
)

// IntegrityReport summarizes data quality issues found in the loaded
// tables. Score is 100 minus 10 per distinct issue kind, floored at 0.
type IntegrityReport struct {
	Issues []string
	Score  int
}

// CountMissingCaseKeys returns the number of cases with an empty key.
// Pure function over the case table.
func CountMissingCaseKeys(cases []*Case) int {
	missing := 0
	for _, c := range cases {
		if c.CaseKey == "" {
			missing++
		}
	}
	return missing
}

// CountDuplicateCaseKeys returns the number of cases whose key repeats an
// earlier one. Empty keys are counted by CountMissingCaseKeys, not here.
func CountDuplicateCaseKeys(cases []*Case) int {
	seen := make(map[string]bool, len(cases))
	duplicates := 0
	for _, c := range cases {
		if c.CaseKey == "" {
			continue
		}
		if seen[c.CaseKey] {
			duplicates++
		}
		seen[c.CaseKey] = true
	}
	return duplicates
}

// CheckIntegrity validates the loaded data and reports issues. Duplicate
// and missing case keys are data-quality defects, flagged here rather
// than rejected at load time.
func CheckIntegrity(cases []*Case, personnelTotal, vehicleTotal int) IntegrityReport {
	var issues []string

	if len(cases) == 0 {
		issues = append(issues, "no case data loaded")
	}
	if personnelTotal == 0 {
		issues = append(issues, "no personnel data loaded")
	}
	if vehicleTotal == 0 {
		issues = append(issues, "no vehicle data loaded")
	}

	if missing := CountMissingCaseKeys(cases); missing > 0 {
		issues = append(issues, fmt.Sprintf("%d cases missing entry keys", missing))
	}
	if duplicates := CountDuplicateCaseKeys(cases); duplicates > 0 {
		issues = append(issues, fmt.Sprintf("%d duplicate case entry keys found", duplicates))
	}

	score := maxScore - scorePenalty*len(issues)
	if score < 0 {
		score = 0
	}

	return IntegrityReport{Issues: issues, Score: score}
}
