package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/xingming/internal/cache"
	"github.com/ppiankov/xingming/internal/model"
)

// Summarizer wraps a provider and turns its output into report commentary.
// Failures degrade into warnings instead of failing the analysis.
type Summarizer struct {
	provider Provider
	config   Config
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewSummarizer creates a summarizer for the configured provider. An empty
// provider yields a disabled summarizer.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider creates a summarizer around an existing provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// WithCache memoizes generated commentary for ttl
func (s *Summarizer) WithCache(c cache.Cache, ttl time.Duration) *Summarizer {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the provider name, empty when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateCommentary produces commentary for a finished report. It returns
// nil, nil when the summarizer is disabled.
func (s *Summarizer) GenerateCommentary(ctx context.Context, report model.Report) (*model.Commentary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	palaces := AllowedPalaces(report)
	prompt := BuildPrompt(report, palaces)
	key := cache.Key(cache.KindCommentary, s.provider.Name(), s.config.Model, strconv.FormatBool(s.config.Strict), prompt)

	var cached model.Commentary
	if cache.GetJSON(s.cache, key, &cached) {
		cached.FromCache = true
		return &cached, nil
	}

	commentary := &model.Commentary{
		Enabled:  true,
		Provider: s.provider.Name(),
		Model:    s.config.Model,
		Strict:   s.config.Strict,
	}

	if !s.provider.IsAvailable(ctx) {
		commentary.Enabled = false
		commentary.Warnings = append(commentary.Warnings,
			fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return commentary, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		ChartPalaces: palaces,
		Prompt:       prompt,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		commentary.Warnings = append(commentary.Warnings,
			fmt.Sprintf("Commentary generation failed: %v", err))
		return commentary, nil
	}

	commentary.Text = resp.Summary
	if resp.Model != "" {
		commentary.Model = resp.Model
	}
	if resp.TokensUsed > 0 {
		commentary.Warnings = append(commentary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	}
	if s.config.Strict {
		commentary.Warnings = append(commentary.Warnings,
			fmt.Sprintf("Verified %d palace citations against the chart", len(resp.CitedPalaces)))
	}

	_ = cache.SetJSON(s.cache, key, commentary, s.cacheTTL)
	return commentary, nil
}

// RenderText renders commentary as a plain text block with a disclaimer.
// Disabled or nil commentary renders as an empty string.
func RenderText(c *model.Commentary) string {
	if c == nil || !c.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("【AI 解說】(GENERATED CONTENT)\n")
	fmt.Fprintf(&b, "Provider: %s", c.Provider)
	if c.Model != "" {
		fmt.Fprintf(&b, " | Model: %s", c.Model)
	}
	fmt.Fprintf(&b, " | Strict: %t\n\n", c.Strict)

	if c.Text == "" {
		b.WriteString("No commentary generated.\n")
	} else {
		b.WriteString(c.Text)
		b.WriteString("\n")
	}

	if len(c.Warnings) > 0 {
		b.WriteString("\nNotes:\n")
		for _, w := range c.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	b.WriteString("\nThe diagnosis and stroke recommendations were determined independently of this commentary.\n")
	return b.String()
}
