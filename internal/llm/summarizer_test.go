package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/xingming/internal/cache"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	calls     int
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func sampleReport() model.Report {
	return model.Report{
		Subject: "王小明",
		Diagnosis: &model.Diagnosis{
			Palace:        "疾厄宮",
			Score:         3,
			Details:       []string{"化忌(+2)", "擎羊(+1)"},
			Branch:        "辰",
			BranchElement: wuxing.Earth,
			Element:       wuxing.Wood,
			Palaces: []model.PalaceRecord{
				{Name: "命宮"},
				{Name: "疾厄宮"},
			},
		},
		Selection: model.Selection{
			Palace:        "疾厄宮",
			PalaceOrigin:  model.OriginChart,
			Element:       wuxing.Wood,
			ElementOrigin: model.OriginChart,
		},
		Name: &model.NameAnalysis{
			Grids:              model.Grids{Personality: 7},
			PersonalityElement: wuxing.Metal,
			Sancai:             model.Sancai{Pattern: "土金木", Label: "吉凶參半"},
		},
		Recommendations: []model.Recommendation{
			{Rank: 1, Total: 7, TotalLuck: model.Luck{Label: "吉"}, Sancai: model.Sancai{Pattern: "土土火", Label: "大吉"}},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	require.NoError(t, err)

	assert.Nil(t, summarizer.provider)
	assert.False(t, summarizer.IsEnabled())
	assert.Equal(t, "", summarizer.ProviderName())
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	_, err := NewSummarizer(Config{Provider: "bard"})
	assert.Error(t, err)
}

func TestSummarizer_GenerateCommentary_Disabled(t *testing.T) {
	summarizer := &Summarizer{}

	commentary, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	assert.NoError(t, err)
	assert.Nil(t, commentary)

	var nilSummarizer *Summarizer
	assert.False(t, nilSummarizer.IsEnabled())
}

func TestSummarizer_GenerateCommentary_ProviderUnavailable(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{name: "test-provider"}, Config{Strict: true})

	commentary, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	require.NoError(t, err)
	require.NotNil(t, commentary)

	assert.False(t, commentary.Enabled)
	require.NotEmpty(t, commentary.Warnings)
	assert.Contains(t, commentary.Warnings[0], "not available")
}

func TestSummarizer_GenerateCommentary_Success(t *testing.T) {
	provider := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:      "疾厄宮煞氣最重，宜以木補運。",
			CitedPalaces: []string{"疾厄宮"},
			Model:        "test-model",
			TokensUsed:   150,
		},
	}
	summarizer := NewSummarizerWithProvider(provider, Config{Model: "test-model", Strict: true})

	commentary, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	require.NoError(t, err)
	require.NotNil(t, commentary)

	assert.True(t, commentary.Enabled)
	assert.Equal(t, "test-provider", commentary.Provider)
	assert.Equal(t, "test-model", commentary.Model)
	assert.True(t, commentary.Strict)
	assert.Equal(t, "疾厄宮煞氣最重，宜以木補運。", commentary.Text)

	joined := strings.Join(commentary.Warnings, "\n")
	assert.Contains(t, joined, "Tokens used: 150")
	assert.Contains(t, joined, "Verified 1 palace citations")

	// The provider sees the chart palaces as its allowlist
	assert.Equal(t, []string{"命宮", "疾厄宮"}, provider.lastReq.ChartPalaces)
}

func TestSummarizer_GenerateCommentary_ProviderError(t *testing.T) {
	provider := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &mockError{msg: "API rate limit exceeded"},
	}
	summarizer := NewSummarizerWithProvider(provider, Config{Model: "test-model", Strict: true})

	commentary, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	require.NoError(t, err, "commentary failures degrade into warnings")
	require.NotNil(t, commentary)

	assert.True(t, commentary.Enabled)
	assert.Empty(t, commentary.Text)
	require.NotEmpty(t, commentary.Warnings)
	assert.Contains(t, commentary.Warnings[0], "failed")
	assert.Contains(t, commentary.Warnings[0], "rate limit")
}

func TestSummarizer_GenerateCommentary_Cached(t *testing.T) {
	provider := &MockProvider{
		name:      "test-provider",
		available: true,
		response:  &SummarizeResponse{Summary: "宜補木。"},
	}
	summarizer := NewSummarizerWithProvider(provider, Config{Model: "m"}).
		WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	first, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := summarizer.GenerateCommentary(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, provider.calls)
}

func TestRenderText(t *testing.T) {
	assert.Empty(t, RenderText(nil))
	assert.Empty(t, RenderText(&model.Commentary{Enabled: false}))

	text := RenderText(&model.Commentary{
		Enabled:  true,
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Strict:   true,
		Text:     "疾厄宮煞氣最重。",
		Warnings: []string{"Tokens used: 150"},
	})
	for _, want := range []string{"GENERATED CONTENT", "openai", "gpt-4o-mini", "Strict: true", "疾厄宮煞氣最重。", "Notes:", "Tokens used: 150", "determined independently"} {
		assert.Contains(t, text, want)
	}

	empty := RenderText(&model.Commentary{Enabled: true, Provider: "ollama"})
	assert.Contains(t, empty, "No commentary generated")
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	report := sampleReport()
	prompt := BuildPrompt(report, AllowedPalaces(report))

	for _, want := range []string{
		"RULES",
		"You may ONLY mention these palaces",
		"- 命宮",
		"- 疾厄宮",
		"命主: 王小明",
		"災宮: 疾厄宮 (chart)",
		"喜用神: 木 (chart)",
		"煞氣分數: 3 (化忌(+2), 擎羊(+1))",
		"宮位地支: 辰 (屬土)",
		"人格: 7 (屬金, 符合喜用神: false)",
		"三才: 土金木 (吉凶參半)",
		"方案 1: 總格 7 畫 (吉), 三才 土土火 (大吉)",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestBuildPrompt_NoPalaces(t *testing.T) {
	prompt := BuildPrompt(model.Report{Subject: "Test"}, nil)
	assert.Contains(t, prompt, "No palaces available")
}

func TestAllowedPalaces(t *testing.T) {
	report := sampleReport()
	report.Selection.Palace = "官祿宮"
	assert.Equal(t, []string{"命宮", "疾厄宮", "官祿宮"}, AllowedPalaces(report))

	assert.Nil(t, AllowedPalaces(model.Report{}))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Empty(t, config.Provider)
	assert.True(t, config.Strict, "strict palace checking is on by default")
	assert.Positive(t, config.Timeout)
	assert.Positive(t, config.MaxTokens)
}

func TestSummarizer_ProviderName(t *testing.T) {
	disabled := &Summarizer{}
	assert.Equal(t, "", disabled.ProviderName())

	enabled := &Summarizer{provider: &MockProvider{name: "test-provider"}}
	assert.True(t, enabled.IsEnabled())
	assert.Equal(t, "test-provider", enabled.ProviderName())
}

func TestDisallowed(t *testing.T) {
	assert.Equal(t, []string{"夫妻宮"}, disallowed([]string{"命宮", "夫妻宮"}, []string{"命宮"}))
	assert.Empty(t, disallowed(nil, []string{"命宮"}))
}

// Mock error type for testing
type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
