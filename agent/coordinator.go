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


package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/search"
)

// TaskParams carries the structured arguments a task may need. Which
// fields matter depends on the classified intent.
type TaskParams struct {
	CaseKeys   []string          `json:"case_keys,omitempty"`
	ZoneFilter string            `json:"zone_filter,omitempty"`
	Query      string            `json:"query,omitempty"`
	QueryType  string            `json:"query_type,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	Action     string            `json:"action,omitempty"`
}

// TaskRequest is one task handed to the coordinator.
type TaskRequest struct {
	Description string     `json:"description"`
	Params      TaskParams `json:"params"`
}

// Section is one sub-handler's contribution to a response. A failed
// handler fills Error and leaves Data nil; it never aborts its siblings.
type Section struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Response aggregates the sections produced for one task, keyed by
// sub-intent ("assignment", "query", "data"). It is always well-formed,
// even when every section failed.
type Response struct {
	TaskID        string              `json:"task_id"`
	Analysis      Classification      `json:"analysis"`
	Sections      map[string]*Section `json:"sections"`
	ExecutionTime time.Duration       `json:"execution_time"`
}

// Coordinator classifies tasks with a single oracle call and dispatches
// them to the typed capabilities it was built with.
type Coordinator struct {
	oracle    ai.Oracle
	retriever Retriever
	assigner  Assigner
	admin     DataAdmin
	logger    *slog.Logger
	now       func() time.Time
}

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrAssignerRequired is returned when an assigner is not provided.
	ErrAssignerRequired = errors.New("assigner required")

	// ErrDataAdminRequired is returned when a data admin is not provided.
	ErrDataAdminRequired = errors.New("data admin required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for task IDs and timing.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// NewCoordinator creates a coordinator over the given capabilities.
func NewCoordinator(provider ai.AIProvider, retriever Retriever, assigner Assigner, admin DataAdmin, opts ...Option) (*Coordinator, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if assigner == nil {
		return nil, ErrAssignerRequired
	}
	if admin == nil {
		return nil, ErrDataAdminRequired
	}

	c := &Coordinator{
		oracle:    provider.Oracle(),
		retriever: retriever,
		assigner:  assigner,
		admin:     admin,
		logger:    slog.Default().With("component", "agent"),
		now:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Process classifies and dispatches one task. The response is always
// well-formed: sub-handler failures become scoped error sections, and a
// failed classification degrades to the query intent.
func (c *Coordinator) Process(ctx context.Context, req TaskRequest) *Response {
	start := c.now()

	analysis := classify(ctx, c.oracle, req.Description)
	c.logger.Debug("classified task",
		"intent", analysis.PrimaryIntent,
		"agents", analysis.RequiredAgents,
		"confidence", analysis.Confidence)

	sections := make(map[string]*Section)
	if analysis.PrimaryIntent == IntentAssignment || containsAgent(analysis.RequiredAgents, "assignment_agent") {
		sections["assignment"] = c.handleAssignment(ctx, req.Params)
	}
	if analysis.PrimaryIntent == IntentQuery || containsAgent(analysis.RequiredAgents, "query_agent") {
		sections["query"] = c.handleQuery(ctx, req.Params)
	}
	if analysis.PrimaryIntent == IntentDataManagement || containsAgent(analysis.RequiredAgents, "data_agent") {
		sections["data"] = c.handleData(ctx, req.Params)
	}
	if len(sections) == 0 {
		// Safe fallback: no agent classified means query handling.
		sections["query"] = c.handleQuery(ctx, req.Params)
	}

	return &Response{
		TaskID:        fmt.Sprintf("task_%d", start.Unix()),
		Analysis:      analysis,
		Sections:      sections,
		ExecutionTime: c.now().Sub(start),
	}
}

func (c *Coordinator) handleAssignment(ctx context.Context, params TaskParams) *Section {
	if len(params.CaseKeys) == 0 {
		return &Section{Error: "no case keys provided for assignment"}
	}
	outcome, err := c.assigner.Assign(ctx, params.CaseKeys, params.ZoneFilter)
	if err != nil {
		c.logger.Error("assignment handler failed", "error", err)
		return &Section{Error: err.Error()}
	}
	return &Section{Data: outcome}
}

func (c *Coordinator) handleQuery(ctx context.Context, params TaskParams) *Section {
	if params.Query == "" {
		return &Section{Error: "no query text provided"}
	}
	mode := search.Mode(params.QueryType)
	if mode == "" {
		mode = search.ModeSemantic
	}
	result, err := c.retriever.Retrieve(ctx, search.Request{
		Mode:    mode,
		Query:   params.Query,
		Filters: params.Filters,
		Limit:   params.Limit,
	})
	if err != nil {
		c.logger.Error("query handler failed", "error", err)
		return &Section{Error: err.Error()}
	}
	return &Section{Data: result}
}

func (c *Coordinator) handleData(ctx context.Context, params TaskParams) *Section {
	var (
		data any
		err  error
	)
	switch params.Action {
	case "reload":
		data, err = c.admin.Reload(ctx)
	case "rebuild_index":
		data, err = c.admin.RebuildIndex(ctx)
	case "validate":
		data, err = c.admin.ValidateIntegrity(ctx)
	default:
		data, err = c.admin.Statistics(ctx)
	}
	if err != nil {
		c.logger.Error("data handler failed", "action", params.Action, "error", err)
		return &Section{Error: err.Error()}
	}
	return &Section{Data: data}
}

func containsAgent(agents []string, name string) bool {
	for _, a := range agents {
		if a == name {
			return true
		}
	}
	return false
}
