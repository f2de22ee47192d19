// Package ai defines the capability interfaces for the system's two
// intelligent collaborators: the embedding provider and the
// language-model oracle.
//
// Both are consumed as opaque services with explicit contracts. The
// Embedder turns text into fixed-length vectors for similarity search;
// the Oracle turns a structured prompt into raw model text that callers
// decode defensively with DecodeObject, falling back to documented
// defaults on malformed output.
//
// Production implementations backed by OpenAI-compatible APIs live in
// the openai subpackage; deterministic test doubles live in mock.
package ai
