package agent

import (
	"context"

	"github.com/civita/caseflow/ai"
)

// Recognized intents.
const (
	IntentAssignment     = "assignment"
	IntentQuery          = "query"
	IntentDataManagement = "data_management"
)

const classificationPromptTemplate = `Analyze this user request for a citizen service request management system and determine:
1. The primary intent (assignment, query, data_management)
2. Specific actions needed
3. Which specialized agents should handle it
4. Any additional context or parameters needed

Request: `

const classificationPromptSchema = `

Return JSON with:
{
    "primary_intent": "assignment|query|data_management",
    "actions": ["list", "of", "actions"],
    "required_agents": ["agent", "names"],
    "parameters": {"key": "value"},
    "confidence": 0.0-1.0
}`

// Classification is the oracle's reading of a task description.
type Classification struct {
	PrimaryIntent  string            `json:"primary_intent"`
	Actions        []string          `json:"actions"`
	RequiredAgents []string          `json:"required_agents"`
	Parameters     map[string]string `json:"parameters"`
	Confidence     float64           `json:"confidence"`
}

// classify asks the oracle for an intent. Any oracle or parse failure
// degrades to the query intent; classification never hard-fails.
func classify(ctx context.Context, oracle ai.Oracle, description string) Classification {
	fallback := Classification{PrimaryIntent: IntentQuery, Confidence: 0}

	raw, err := oracle.Complete(ctx, classificationPromptTemplate+description+classificationPromptSchema)
	if err != nil {
		return fallback
	}

	var c Classification
	if err := ai.DecodeObject(raw, &c); err != nil {
		return fallback
	}
	switch c.PrimaryIntent {
	case IntentAssignment, IntentQuery, IntentDataManagement:
	default:
		c.PrimaryIntent = IntentQuery
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
	return c
}
