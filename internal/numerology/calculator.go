// Package numerology computes the five grids (三才五格) of a Chinese name and
// evaluates them against the reference tables: 81-number luck, three-talent
// patterns and recommended stroke combinations.
package numerology

import (
	"errors"
	"fmt"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/tables"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// ErrUnsupportedName is returned for names the five-grid rules do not cover:
// an empty surname or given name, or a given name longer than two characters
var ErrUnsupportedName = errors.New("unsupported name: need a surname and a one or two character given name")

// ErrUnknownCharacter is returned when a character needed for a lookup is
// missing from the stroke table
var ErrUnknownCharacter = errors.New("character not in stroke table")

// Labels used when a table has no row for a value
const (
	UnknownLuck     = "未知"
	NoSancaiPattern = "無此格局資料"
)

const (
	DefaultRecommend = 5
	LuckyStrokeMax   = 50
	LuckyStrokeLimit = 81 // upper bound on max, the size of the luck table
)

// Grid names in display order
const (
	GridHeaven      = "天格"
	GridPersonality = "人格"
	GridEarth       = "地格"
	GridOuter       = "外格"
	GridTotal       = "總格"
)

// Lookup is the read-only reference data the calculator consumes.
// *tables.Tables implements it.
type Lookup interface {
	Kanji(char string) (tables.KanjiEntry, bool)
	Luck(n int) (tables.LuckEntry, bool)
	Sancai(pattern string) (tables.SancaiEntry, bool)
	Combinations(surnameStrokes int) []tables.StrokePair
}

// Calculator evaluates names against a Lookup. It keeps no mutable state.
type Calculator struct {
	lookup Lookup
}

// NewCalculator creates a calculator backed by lookup
func NewCalculator(lookup Lookup) *Calculator {
	return &Calculator{lookup: lookup}
}

// Strokes returns the stroke count and element of a single character.
// Unknown characters report (0, wuxing.Unknown, false).
func (c *Calculator) Strokes(char string) (int, wuxing.Element, bool) {
	k, ok := c.lookup.Kanji(char)
	if !ok {
		return 0, wuxing.Unknown, false
	}
	return k.Strokes, k.Element, true
}

// FiveGrids computes the grids of surname+given. Only the first character of
// the surname is counted. Characters missing from the stroke table count as
// zero strokes.
func (c *Calculator) FiveGrids(surname, given string) (model.Grids, error) {
	s := []rune(surname)
	g := []rune(given)
	if len(s) == 0 || len(g) == 0 || len(g) > 2 {
		return model.Grids{}, ErrUnsupportedName
	}

	s1, _, _ := c.Strokes(string(s[0]))
	n1, _, _ := c.Strokes(string(g[0]))

	if len(g) == 1 {
		return model.Grids{
			Heaven:      s1 + 1,
			Personality: s1 + n1,
			Earth:       n1 + 1,
			Outer:       2,
			Total:       s1 + n1,
			Strokes:     [3]int{s1, n1, 0},
		}, nil
	}

	n2, _, _ := c.Strokes(string(g[1]))
	return model.Grids{
		Heaven:      s1 + 1,
		Personality: s1 + n1,
		Earth:       n1 + n2,
		Outer:       n2 + 1,
		Total:       s1 + n1 + n2,
		Strokes:     [3]int{s1, n1, n2},
	}, nil
}

// WrapLuckNumber folds n into the 1-81 range of the luck table: numbers above
// 81 are taken modulo 80 and a zero result maps to 81
func WrapLuckNumber(n int) int {
	if n > 81 {
		n %= 80
	}
	if n == 0 {
		n = 81
	}
	return n
}

// Luck81 looks up the 81-number luck of n
func (c *Calculator) Luck81(n int) model.Luck {
	l, ok := c.lookup.Luck(WrapLuckNumber(n))
	if !ok {
		return model.Luck{Number: n, Label: UnknownLuck}
	}
	return model.Luck{Number: n, Label: l.Luck, Desc: l.Desc}
}

// SancaiPattern builds the three-element pattern of the heaven, personality
// and earth grids
func SancaiPattern(heaven, personality, earth int) string {
	return string(wuxing.FromNumber(heaven)) + string(wuxing.FromNumber(personality)) + string(wuxing.FromNumber(earth))
}

// Sancai evaluates the three-talent pattern of the given grid values
func (c *Calculator) Sancai(heaven, personality, earth int) model.Sancai {
	pattern := SancaiPattern(heaven, personality, earth)
	s, ok := c.lookup.Sancai(pattern)
	if !ok {
		return model.Sancai{Pattern: pattern, Label: UnknownLuck, Desc: NoSancaiPattern}
	}
	return model.Sancai{Pattern: pattern, Label: s.Luck, Desc: s.Desc}
}

// LuckyStrokes lists the stroke counts in 1..max that belong to e and are
// purely auspicious. A max of zero or less uses LuckyStrokeMax; a max above
// LuckyStrokeLimit is capped.
func (c *Calculator) LuckyStrokes(e wuxing.Element, max int) []model.LuckyStroke {
	if max <= 0 {
		max = LuckyStrokeMax
	}
	if max > LuckyStrokeLimit {
		max = LuckyStrokeLimit
	}
	var out []model.LuckyStroke
	for n := 1; n <= max; n++ {
		if !wuxing.HasDigit(e, n) {
			continue
		}
		l := c.Luck81(n)
		if !l.IsAuspicious() {
			continue
		}
		out = append(out, model.LuckyStroke{Strokes: n, Element: e, Luck: l})
	}
	return out
}

// Recommend suggests given-name stroke combinations for surname, taken in
// table order. The first given character is suggested to carry e. A limit
// of zero or less uses DefaultRecommend.
func (c *Calculator) Recommend(surname string, e wuxing.Element, limit int) ([]model.Recommendation, error) {
	s := []rune(surname)
	if len(s) == 0 {
		return nil, ErrUnsupportedName
	}
	if limit <= 0 {
		limit = DefaultRecommend
	}

	strokes, _, ok := c.Strokes(string(s[0]))
	if !ok {
		return nil, fmt.Errorf("surname %q: %w", string(s[0]), ErrUnknownCharacter)
	}

	pairs := c.lookup.Combinations(strokes)
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	recs := make([]model.Recommendation, 0, len(pairs))
	for i, p := range pairs {
		grids := model.Grids{
			Heaven:      strokes + 1,
			Personality: strokes + p.Given1,
			Earth:       p.Given1 + p.Given2,
			Outer:       p.Given2 + 1,
			Total:       strokes + p.Given1 + p.Given2,
			Strokes:     [3]int{strokes, p.Given1, p.Given2},
		}
		recs = append(recs, model.Recommendation{
			Rank:           i + 1,
			SurnameStrokes: strokes,
			Given1Strokes:  p.Given1,
			Given2Strokes:  p.Given2,
			Given1Element:  e,
			Total:          grids.Total,
			TotalLuck:      c.Luck81(grids.Total),
			Grids:          grids,
			Sancai:         c.Sancai(grids.Heaven, grids.Personality, grids.Earth),
		})
	}
	return recs, nil
}

// Analyze evaluates an existing name against the element to strengthen
func (c *Calculator) Analyze(surname, given string, e wuxing.Element) (*model.NameAnalysis, error) {
	grids, err := c.FiveGrids(surname, given)
	if err != nil {
		return nil, err
	}

	a := &model.NameAnalysis{
		Surname:   surname,
		GivenName: given,
		Grids:     grids,
		GridLuck: []model.GridLuck{
			{Name: GridHeaven, Value: grids.Heaven, Luck: c.Luck81(grids.Heaven)},
			{Name: GridPersonality, Value: grids.Personality, Luck: c.Luck81(grids.Personality)},
			{Name: GridEarth, Value: grids.Earth, Luck: c.Luck81(grids.Earth)},
			{Name: GridOuter, Value: grids.Outer, Luck: c.Luck81(grids.Outer)},
			{Name: GridTotal, Value: grids.Total, Luck: c.Luck81(grids.Total)},
		},
		PersonalityElement: wuxing.FromNumber(grids.Personality),
		Sancai:             c.Sancai(grids.Heaven, grids.Personality, grids.Earth),
	}
	a.MatchesElement = a.PersonalityElement == e

	counted := append([]rune{[]rune(surname)[0]}, []rune(given)...)
	for _, r := range counted {
		if _, _, ok := c.Strokes(string(r)); !ok {
			a.UnknownCharacters = append(a.UnknownCharacters, string(r))
		}
	}
	return a, nil
}
