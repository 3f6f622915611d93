// Package llm generates optional commentary on a finished report. The
// commentary never feeds back into the diagnosis or the name analysis.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/xingming/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates commentary on the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for commentary generation
type SummarizeRequest struct {
	Report model.Report

	// ChartPalaces is the allowlist of palaces the commentary may name.
	// In strict mode any other palace rejects the response.
	ChartPalaces []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the generated commentary
type SummarizeResponse struct {
	Summary string

	// CitedPalaces are the palaces the commentary names, chart order
	CitedPalaces []string

	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Strict rejects commentary that names palaces outside the chart
	Strict bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		Strict:    true,
		MaxTokens: 800,
	}
}

// AllowedPalaces lists the palaces commentary on report may name: every
// palace found in the chart plus the selected palace
func AllowedPalaces(report model.Report) []string {
	var palaces []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			palaces = append(palaces, p)
		}
	}
	if report.Diagnosis != nil {
		for _, rec := range report.Diagnosis.Palaces {
			add(rec.Name)
		}
	}
	add(report.Selection.Palace)
	return palaces
}

// BuildPrompt constructs the default commentary prompt
func BuildPrompt(report model.Report, palaces []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are commenting on a Chinese name analysis (姓名吉凶檢測). The analysis is already final; you explain it, you do not change it.

RULES:
1. You may ONLY mention these palaces (宮位):
%s

2. Do not invent chart details, stars or palaces that are not listed below.
3. Do not contradict the recommended element or the stroke combinations.
4. Answer in Traditional Chinese, 3-5 sentences, plain text.

Analysis:
- 命主: %s
- 災宮: %s (%s)
- 喜用神: %s (%s)
`, joinPalaces(palaces), report.Subject,
		report.Selection.Palace, report.Selection.PalaceOrigin,
		report.Selection.Element, report.Selection.ElementOrigin)

	if d := report.Diagnosis; d != nil {
		fmt.Fprintf(&b, "- 煞氣分數: %d (%s)\n", d.Score, strings.Join(d.Details, ", "))
		fmt.Fprintf(&b, "- 宮位地支: %s (屬%s)\n", d.Branch, d.BranchElement)
	}

	if n := report.Name; n != nil {
		fmt.Fprintf(&b, "- 人格: %d (屬%s, 符合喜用神: %t)\n", n.Grids.Personality, n.PersonalityElement, n.MatchesElement)
		fmt.Fprintf(&b, "- 三才: %s (%s)\n", n.Sancai.Pattern, n.Sancai.Label)
	}

	for i, rec := range report.Recommendations {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- 方案 %d: 總格 %d 畫 (%s), 三才 %s (%s)\n", rec.Rank, rec.Total, rec.TotalLuck.Label, rec.Sancai.Pattern, rec.Sancai.Label)
	}

	b.WriteString("\nSummarize what the analysis suggests and why, without adding new claims.")
	return b.String()
}

func joinPalaces(palaces []string) string {
	if len(palaces) == 0 {
		return "(No palaces available)"
	}
	var b strings.Builder
	for _, p := range palaces {
		fmt.Fprintf(&b, "\n- %s", p)
	}
	return b.String()
}

// disallowed returns the cited palaces missing from allowed
func disallowed(cited, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		ok[p] = true
	}
	var out []string
	for _, p := range cited {
		if !ok[p] {
			out = append(out, p)
		}
	}
	return out
}
