// Package llm is a dictionary source backed by a chat model behind an
// OpenAI-compatible API, such as a local Ollama server.
//
// The model is prompted for a JSON document of entries. Malformed
// responses are repaired when the damage is small and requested again
// otherwise.
package llm
