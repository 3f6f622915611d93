package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/util"
	"github.com/ppiankov/xingming/internal/validate"
)

const systemPrompt = "You explain finished Chinese name analyses. You never add chart details that were not given to you."

// OpenAIProvider implements the Provider interface for OpenAI-compatible
// chat completion APIs
type OpenAIProvider struct {
	name    string
	client  *openai.Client
	config  Config
	palaces *validate.PalaceClassifier
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newCompatibleProvider("openai", config, config.APIKey), nil
}

func newCompatibleProvider(name string, config Config, token string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(token)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy)
	clientConfig.HTTPClient = &http.Client{Transport: transport}

	return &OpenAIProvider{
		name:    name,
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		palaces: validate.NewPalaceClassifier(nil),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the lightest authenticated call
	if _, err := p.client.ListModels(ctx); err != nil {
		logger.Log.WithError(err).WithField("provider", p.name).Warn("LLM availability check failed")
		return false
	}
	return true
}

// Summarize generates commentary using the Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.ChartPalaces)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 800
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited := p.palaces.Mentions(summary)

	if p.config.Strict {
		if bad := disallowed(cited, p.canonical(req.ChartPalaces)); len(bad) > 0 {
			return nil, fmt.Errorf("PALACE LEAK: commentary names palaces not in the chart: %s", strings.Join(bad, ", "))
		}
	}

	return &SummarizeResponse{
		Summary:      summary,
		CitedPalaces: cited,
		Model:        model,
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}

// canonical maps chart palace labels onto the names Mentions reports
func (p *OpenAIProvider) canonical(palaces []string) []string {
	out := make([]string, 0, len(palaces))
	for _, name := range palaces {
		if c, ok := p.palaces.Canonical(name); ok {
			name = c
		}
		out = append(out, name)
	}
	return out
}
