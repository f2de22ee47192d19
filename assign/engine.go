// Copyright 2026 Civita Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assign

import (
	"context"
	"log/slog"
	"time"

	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
)

// Outcome is the result of one assignment batch.
//
// Every requested key lands in exactly one bucket: Assignments (an
// oracle decision was produced), Unassigned (the case exists in the
// active set but could not be assigned), or NotFound (the key is absent
// from the active set). TotalAssigned + len(Unassigned) always equals
// the number of requested cases that exist in the active set.
type Outcome struct {
	Assignments   []*core.Assignment
	TotalAssigned int
	Unassigned    []string
	NotFound      []string
}

// Engine matches active cases to zone resources via the decision oracle.
type Engine struct {
	store  storage.RecordStore
	oracle ai.Oracle
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithClock overrides the time source for assignment timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now != nil {
			e.now = now
		}
		return nil
	}
}

// NewEngine creates an assignment engine.
func NewEngine(store storage.RecordStore, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		store:  store,
		oracle: provider.Oracle(),
		logger: slog.Default().With("component", "assign"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Assign matches the requested cases to resources. Only active cases are
// considered; zoneFilter, when non-empty, further restricts the selection
// within the same predicate. Cases are processed sequentially and
// independently: one case's oracle failure sends that case to Unassigned
// without affecting the others.
func (e *Engine) Assign(ctx context.Context, caseKeys []string, zoneFilter string) (*Outcome, error) {
	filter := storage.CaseFilter{"status": {core.StatusActive}}
	if zoneFilter != "" {
		filter["zone"] = []string{zoneFilter}
	}
	active, err := e.store.Cases(ctx, filter)
	if err != nil {
		return nil, err
	}

	activeByKey := make(map[string]*core.Case, len(active))
	for _, c := range active {
		activeByKey[c.CaseKey] = c
	}

	outcome := &Outcome{
		Assignments: []*core.Assignment{},
		Unassigned:  []string{},
		NotFound:    []string{},
	}
	for _, key := range caseKeys {
		c, ok := activeByKey[key]
		if !ok {
			outcome.NotFound = append(outcome.NotFound, key)
			continue
		}

		assignment, err := e.assignOne(ctx, c)
		if err != nil {
			e.logger.Error("assignment failed", "case_key", key, "error", err)
			outcome.Unassigned = append(outcome.Unassigned, key)
			continue
		}
		if assignment == nil {
			outcome.Unassigned = append(outcome.Unassigned, key)
			continue
		}
		outcome.Assignments = append(outcome.Assignments, assignment)
	}

	outcome.TotalAssigned = len(outcome.Assignments)
	return outcome, nil
}

// assignOne produces a decision for a single case. Returns (nil, nil)
// when the case's zone has no available personnel; the oracle is not
// consulted in that situation.
func (e *Engine) assignOne(ctx context.Context, c *core.Case) (*core.Assignment, error) {
	zone := c.Commune
	if zone == "" {
		zone = "Unknown"
	}

	personnel, err := e.store.PersonnelByZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	personnel = availablePersonnel(personnel)
	if len(personnel) == 0 {
		e.logger.Warn("no personnel available in zone", "zone", zone, "case_key", c.CaseKey)
		return nil, nil
	}

	vehicles, err := e.store.VehiclesByZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	vehicles = availableVehicles(vehicles)

	prompt := buildPrompt(c, zone, personnel, vehicles)
	raw, err := e.oracle.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	d := decodeDecision(raw)

	return &core.Assignment{
		CaseKey:        c.CaseKey,
		Personnel:      d.AssignedPersonnel,
		Vehicles:       d.AssignedVehicles,
		EstimatedHours: *d.EstimatedHours,
		Confidence:     *d.ConfidenceScore,
		Rationale:      d.Reasoning,
		Zone:           zone,
		AssignedAt:     e.now(),
	}, nil
}

func availablePersonnel(personnel []*core.Personnel) []*core.Personnel {
	out := personnel[:0:0]
	for _, p := range personnel {
		if p.Status == core.StatusAvailable {
			out = append(out, p)
		}
	}
	return out
}

func availableVehicles(vehicles []*core.Vehicle) []*core.Vehicle {
	out := vehicles[:0:0]
	for _, v := range vehicles {
		if v.Status == core.StatusAvailable {
			out = append(out, v)
		}
	}
	return out
}
