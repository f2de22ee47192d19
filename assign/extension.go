package assign

import "time"

// Schedule is a planning view over a zone's upcoming assignments.
type Schedule struct {
	Zone                 string         `json:"zone"`
	PeriodDays           int            `json:"period_days"`
	Assignments          []string       `json:"assignments"`
	WorkloadDistribution map[string]int `json:"workload_distribution"`
	GeneratedAt          time.Time      `json:"generated_at"`
}

// BuildSchedule returns the schedule skeleton for a zone. Assignment
// history is not persisted yet, so the assignment list is empty.
// TODO: populate from assignment history once decisions are stored.
func (e *Engine) BuildSchedule(zone string, days int) *Schedule {
	if zone == "" {
		zone = "all"
	}
	if days <= 0 {
		days = 7
	}
	return &Schedule{
		Zone:                 zone,
		PeriodDays:           days,
		Assignments:          []string{},
		WorkloadDistribution: map[string]int{},
		GeneratedAt:          e.now(),
	}
}

// Optimization summarizes a rebalancing pass over existing assignments.
type Optimization struct {
	OriginalAssignments  int       `json:"original_assignments"`
	OptimizedAssignments int       `json:"optimized_assignments"`
	EfficiencyGain       float64   `json:"efficiency_gain"`
	Suggestions          []string  `json:"suggestions"`
	OptimizedAt          time.Time `json:"optimized_at"`
}

// Optimize reviews a batch of assignments and returns rebalancing
// suggestions. The current pass is advisory only and leaves the
// assignments unchanged.
func (e *Engine) Optimize(assignments []*Outcome) *Optimization {
	total := 0
	for _, o := range assignments {
		total += o.TotalAssigned
	}
	return &Optimization{
		OriginalAssignments:  total,
		OptimizedAssignments: total,
		EfficiencyGain:       0,
		Suggestions: []string{
			"Consider batching similar request types",
			"Optimize travel routes between assignments",
			"Balance workload across personnel",
		},
		OptimizedAt: e.now(),
	}
}
