package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/xingming/internal/wuxing"
)

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		name   string
		branch string
	}{
		{"├疾厄宮[丙辰]", true, "疾厄宮", "辰"},
		{"│ ├官祿宮[壬戌] 主星：太陽", true, "官祿宮", "戌"},
		{"├ 命宮[甲子]", true, "命宮", "子"},
		{"├命宮[子]", false, "", ""},
		{"命宮[甲子]", false, "", ""},
		{"├宮[甲子]", false, "", ""},
		{"├疾厄宮[丙辰]├命宮[甲子]", true, "疾厄宮", "辰"},
		{"", false, "", ""},
	}

	for _, tt := range tests {
		h, ok := MatchHeader(tt.line)
		assert.Equal(t, tt.ok, ok, "line %q", tt.line)
		if tt.ok {
			assert.Equal(t, tt.name, h.Name, "line %q", tt.line)
			assert.Equal(t, tt.branch, h.Branch, "line %q", tt.line)
		}
	}
}

func TestStep_Transitions(t *testing.T) {
	s := State{}

	s, ev := Step(s, "some preamble")
	assert.Equal(t, EventNone, ev.Kind)
	assert.Equal(t, "", s.Open)

	s, ev = Step(s, "├夫妻宮[丁卯]")
	assert.Equal(t, EventHeader, ev.Kind)
	assert.Equal(t, "夫妻宮", ev.Palace)
	assert.Equal(t, "卯", ev.Branch)
	assert.Equal(t, "夫妻宮", s.Open)

	s, ev = Step(s, "│ 擎羊")
	assert.Equal(t, EventLine, ev.Kind)
	assert.Equal(t, "夫妻宮", ev.Palace)
	assert.Equal(t, "│ 擎羊", ev.Line)
	assert.Equal(t, "夫妻宮", s.Open)
}

func TestSegment_OrderAndLines(t *testing.T) {
	text := "header text ignored\n" +
		"├命宮[甲子]\n" +
		"  紫微 化忌\n" +
		"├兄弟宮[乙丑]\n" +
		"  天機\r\n" +
		"  火星\n"

	c := Segment(text)
	require.Len(t, c.Blocks, 2)

	got := []Block{*c.Blocks[0], *c.Blocks[1]}
	want := []Block{
		{Name: "命宮", Branch: "子", Element: wuxing.Water, Order: 0, Lines: []string{"  紫微 化忌"}},
		{Name: "兄弟宮", Branch: "丑", Element: wuxing.Earth, Order: 1, Lines: []string{"  天機", "  火星", ""}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_ReopenKeepsFirstBranch(t *testing.T) {
	text := "├命宮[甲子]\nA\n├財帛宮[戊辰]\nB\n├命宮[丙午]\nC"

	c := Segment(text)
	require.Len(t, c.Blocks, 2)

	b, ok := c.Palace("命宮")
	require.True(t, ok)
	assert.Equal(t, "子", b.Branch)
	assert.Equal(t, wuxing.Water, b.Element)
	assert.Equal(t, []string{"A", "C"}, b.Lines)
}

func TestSegment_LifePalaceOpensBlock(t *testing.T) {
	c := Segment("├命宮[甲子]\n化忌 化忌 生年忌 [忌]\n擎羊")
	require.Len(t, c.Blocks, 1)
	assert.Equal(t, "命宮", c.Blocks[0].Name)
	assert.Equal(t, "子", c.Blocks[0].Branch)
	assert.Equal(t, wuxing.Water, c.Blocks[0].Element)
	assert.Equal(t, []string{"化忌 化忌 生年忌 [忌]", "擎羊"}, c.Blocks[0].Lines)
}

func TestSegment_LifePalaceAfterSibling(t *testing.T) {
	c := Segment("├兄弟宮[乙丑]\n├命宮[甲子]\n化忌\n擎羊\n")
	require.Len(t, c.Blocks, 2)

	sibling, ok := c.Palace("兄弟宮")
	require.True(t, ok)
	assert.Empty(t, sibling.Lines)

	life, ok := c.Palace("命宮")
	require.True(t, ok)
	assert.Equal(t, 1, life.Order)
	assert.Equal(t, []string{"化忌", "擎羊", ""}, life.Lines)
}

func TestSegment_UnknownBranchDefaults(t *testing.T) {
	c := Segment("├遷移宮[XY]\n")
	require.Len(t, c.Blocks, 1)
	assert.Equal(t, "Y", c.Blocks[0].Branch)
	assert.Equal(t, wuxing.Earth, c.Blocks[0].Element)
	assert.True(t, c.Blocks[0].Defaulted)
}

func TestSegment_NoHeaders(t *testing.T) {
	c := Segment("nothing to see here\n化忌 擎羊\n")
	assert.True(t, c.Empty())
}
