// Package openai provides ai.Embedder and ai.Oracle implementations
// backed by OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM).
package openai
