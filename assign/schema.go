package assign

import (
	"github.com/civita/caseflow/ai"
)

// Defaults applied when the oracle's answer is missing a field or cannot
// be parsed at all. A degraded decision is still a decision; the case is
// assigned rather than bounced.
const (
	defaultDurationHours = 24
	defaultConfidence    = 0.5
	defaultRationale     = "AI-generated assignment"
)

// decision is the JSON shape the oracle is asked to produce.
type decision struct {
	AssignedPersonnel []string `json:"assigned_personnel"`
	AssignedVehicles  []string `json:"assigned_vehicles"`
	EstimatedHours    *float64 `json:"estimated_duration_hours"`
	ConfidenceScore   *float64 `json:"confidence_score"`
	Reasoning         string   `json:"reasoning"`
}

// decodeDecision parses the oracle's answer, substituting defaults for
// anything missing or malformed and clamping confidence to [0, 1].
// It never fails: an unparseable answer yields the all-defaults decision.
func decodeDecision(raw string) decision {
	var d decision
	if err := ai.DecodeObject(raw, &d); err != nil {
		d = decision{}
	}

	if d.EstimatedHours == nil || *d.EstimatedHours <= 0 {
		hours := float64(defaultDurationHours)
		d.EstimatedHours = &hours
	}
	if d.ConfidenceScore == nil {
		confidence := defaultConfidence
		d.ConfidenceScore = &confidence
	}
	if *d.ConfidenceScore < 0 {
		*d.ConfidenceScore = 0
	}
	if *d.ConfidenceScore > 1 {
		*d.ConfidenceScore = 1
	}
	if d.Reasoning == "" {
		d.Reasoning = defaultRationale
	}
	if d.AssignedPersonnel == nil {
		d.AssignedPersonnel = []string{}
	}
	if d.AssignedVehicles == nil {
		d.AssignedVehicles = []string{}
	}
	return d
}
