package mock

import "context"

// MockOracle is a test double for ai.Oracle.
// It allows custom behavior injection via function fields.
type MockOracle struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns Response (an empty object by default).
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Response is returned by the default Complete behavior.
	Response string

	callCount int
	prompts   []string
}

// NewMockOracle creates a mock oracle that returns an empty JSON object.
// Callers relying on the default exercise the schema-default fallback paths.
// Note: Returns concrete type to allow test assertions via GetMockOracle().
func NewMockOracle() *MockOracle {
	return &MockOracle{Response: "{}"}
}

// Complete records the prompt and returns the configured response.
func (m *MockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}

	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockOracle) CallCount() int {
	return m.callCount
}

// Prompts returns every prompt passed to Complete, in call order.
func (m *MockOracle) Prompts() []string {
	return m.prompts
}

// Reset clears recorded calls and custom functions.
func (m *MockOracle) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
	m.Response = "{}"
}
