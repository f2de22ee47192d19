// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Oracle,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom oracle behavior injection
//	oracle := mock.NewMockOracle()
//	oracle.Response = `{"assigned_personnel": ["EMP-001"]}`
//
//	// Check call counts
//	count := oracle.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockOracle: Returns an empty JSON object, exercising default fallbacks
//   - MockProvider: Aggregates mock embedder and oracle
package mock
