package models

// OllamaEmbedRequest is the request body for the Ollama-compatible
// embeddings endpoint.
type OllamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbedResponse carries the embedding vector returned by the
// embeddings endpoint.
type OllamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}
