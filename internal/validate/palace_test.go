package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPalaceClassifier_Canonical(t *testing.T) {
	c := NewPalaceClassifier(nil)

	tests := []struct {
		name     string
		expected string
		ok       bool
		desc     string
	}{
		{"疾厄宮", "疾厄宮", true, "canonical"},
		{" 命宮 ", "命宮", true, "whitespace"},
		{"官禄宫", "官祿宮", true, "simplified glyphs"},
		{"财帛宫", "財帛宮", true, "simplified wealth palace"},
		{"僕役宮", "交友宮", true, "builtin alias"},
		{"仆役宫", "交友宮", true, "simplified alias"},
		{"疾厄", "疾厄宮", true, "missing suffix"},
		{"天宮", "", false, "unknown"},
		{"", "", false, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := c.Canonical(tt.name)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("Expected (%q, %v) for %q, got (%q, %v)", tt.expected, tt.ok, tt.name, got, ok)
			}
		})
	}
}

func TestPalaceClassifier_ConfiguredAliases(t *testing.T) {
	c := NewPalaceClassifier(map[string]string{
		"健康宮": "疾厄宮",
		"運氣宮": "不存在宮",
	})

	got, ok := c.Canonical("健康宮")
	assert.True(t, ok)
	assert.Equal(t, "疾厄宮", got)

	assert.False(t, c.IsCanonical("運氣宮"), "alias to a non-canonical palace should be ignored")
}

func TestPalaceClassifier_Mentions(t *testing.T) {
	c := NewPalaceClassifier(nil)

	text := "疾厄宮煞氣重，宜注意健康；僕役宮亦受影響，官禄宫平穩。"
	assert.Equal(t, []string{"疾厄宮", "交友宮", "官祿宮"}, c.Mentions(text))
	assert.Empty(t, c.Mentions("沒有提到任何宮位"))
}

func TestPalaces_Twelve(t *testing.T) {
	ps := Palaces()
	assert.Len(t, ps, 12)

	seen := make(map[string]bool)
	for _, p := range ps {
		assert.False(t, seen[p], "duplicate palace %s", p)
		seen[p] = true
	}
}
