package model

import "github.com/ppiankov/xingming/internal/wuxing"

// Grids holds the five grids (三才五格) of a name
type Grids struct {
	Heaven      int    `json:"heaven"`      // 天格
	Personality int    `json:"personality"` // 人格
	Earth       int    `json:"earth"`       // 地格
	Outer       int    `json:"outer"`       // 外格
	Total       int    `json:"total"`       // 總格
	Strokes     [3]int `json:"strokes"`     // surname, given 1, given 2 (0 for single given names)
}

// Luck is an entry of the 81-number table
type Luck struct {
	Number int    `json:"number"`
	Label  string `json:"label"` // e.g. "吉", "半吉", "凶"
	Desc   string `json:"desc,omitempty"`
}

// IsAuspicious reports whether the label is purely lucky (吉 without 凶)
func (l Luck) IsAuspicious() bool {
	return containsRune(l.Label, '吉') && !containsRune(l.Label, '凶')
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

// Sancai is a three-talent pattern evaluation
type Sancai struct {
	Pattern string `json:"pattern"` // e.g. "木火土"
	Label   string `json:"label"`
	Desc    string `json:"desc,omitempty"`
}

// GridLuck pairs a grid value with its 81-number luck
type GridLuck struct {
	Name  string `json:"name"` // 天格, 人格, ...
	Value int    `json:"value"`
	Luck  Luck   `json:"luck"`
}

// NameAnalysis evaluates an existing name
type NameAnalysis struct {
	Surname            string         `json:"surname"`
	GivenName          string         `json:"given_name"`
	Grids              Grids          `json:"grids"`
	GridLuck           []GridLuck     `json:"grid_luck"`
	PersonalityElement wuxing.Element `json:"personality_element"`
	MatchesElement     bool           `json:"matches_element"` // 人格 element equals the element to strengthen
	Sancai             Sancai         `json:"sancai"`
	UnknownCharacters  []string       `json:"unknown_characters,omitempty"`
}

// Recommendation is a stroke combination suggested for a new given name
type Recommendation struct {
	Rank           int            `json:"rank"`
	SurnameStrokes int            `json:"surname_strokes"`
	Given1Strokes  int            `json:"given1_strokes"`
	Given2Strokes  int            `json:"given2_strokes"`
	Given1Element  wuxing.Element `json:"given1_element"` // Suggested element for the first given character
	Total          int            `json:"total"`
	TotalLuck      Luck           `json:"total_luck"`
	Grids          Grids          `json:"grids"`
	Sancai         Sancai         `json:"sancai"`
}

// LuckyStroke is a stroke count suited for an alias or pen name
type LuckyStroke struct {
	Strokes int            `json:"strokes"`
	Element wuxing.Element `json:"element"`
	Luck    Luck           `json:"luck"`
}
