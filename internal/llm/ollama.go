package llm

// defaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama
const defaultOllamaURL = "http://localhost:11434/v1"

// NewOllamaProvider creates a provider for a local Ollama server through its
// OpenAI-compatible API. No API key is needed; a model must be configured.
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.Model == "" {
		return nil, errOllamaModel
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaURL
	}
	token := config.APIKey
	if token == "" {
		token = "ollama"
	}
	return newCompatibleProvider("ollama", config, token), nil
}
