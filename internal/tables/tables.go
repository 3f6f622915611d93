// Package tables holds the read-only reference data of the name analysis:
// character strokes and elements, the 81-number luck table, three-talent
// patterns and recommended stroke combinations. Tables are loaded once and
// never mutated afterwards, so a *Tables can be shared between goroutines.
package tables

import (
	"fmt"
	"sort"

	"github.com/ppiankov/xingming/internal/wuxing"
)

// KanjiEntry is a character with its stroke count and element
type KanjiEntry struct {
	Character string         `yaml:"character"`
	Strokes   int            `yaml:"strokes"`
	Element   wuxing.Element `yaml:"element"`
}

// LuckEntry is a row of the 81-number table
type LuckEntry struct {
	Score int    `yaml:"score"`
	Luck  string `yaml:"luck"`
	Desc  string `yaml:"desc"`
}

// SancaiEntry is a three-talent pattern row
type SancaiEntry struct {
	Pattern string `yaml:"pattern"`
	Luck    string `yaml:"luck"`
	Desc    string `yaml:"desc"`
}

// ComboEntry is a recommended given-name stroke pair for a surname stroke count
type ComboEntry struct {
	SurnameStrokes int `yaml:"surname_strokes"`
	N1Strokes      int `yaml:"n1_strokes"`
	N2Strokes      int `yaml:"n2_strokes"`
}

// StrokePair is a (first, second) given-name stroke combination
type StrokePair struct {
	Given1 int
	Given2 int
}

// Stats summarizes a loaded dataset
type Stats struct {
	Source       string `json:"source" yaml:"source"`
	Kanji        int    `json:"kanji" yaml:"kanji"`
	Luck         int    `json:"luck" yaml:"luck"`
	Sancai       int    `json:"sancai" yaml:"sancai"`
	Combinations int    `json:"combinations" yaml:"combinations"`
}

// Tables is an immutable reference dataset
type Tables struct {
	source string
	kanji  map[string]KanjiEntry
	luck   map[int]LuckEntry
	sancai map[string]SancaiEntry
	combos map[int][]StrokePair
	nCombo int
}

// New builds a dataset from rows, validating each of them
func New(source string, kanji []KanjiEntry, luck []LuckEntry, sancai []SancaiEntry, combos []ComboEntry) (*Tables, error) {
	t := &Tables{
		source: source,
		kanji:  make(map[string]KanjiEntry, len(kanji)),
		luck:   make(map[int]LuckEntry, len(luck)),
		sancai: make(map[string]SancaiEntry, len(sancai)),
		combos: make(map[int][]StrokePair),
	}

	for _, k := range kanji {
		if len([]rune(k.Character)) != 1 {
			return nil, fmt.Errorf("kanji %q: expected a single character", k.Character)
		}
		if k.Strokes <= 0 {
			return nil, fmt.Errorf("kanji %s: invalid stroke count %d", k.Character, k.Strokes)
		}
		if !k.Element.Valid() {
			return nil, fmt.Errorf("kanji %s: invalid element %q", k.Character, k.Element)
		}
		if _, dup := t.kanji[k.Character]; dup {
			continue
		}
		t.kanji[k.Character] = k
	}

	for _, l := range luck {
		if l.Score < 1 || l.Score > 81 {
			return nil, fmt.Errorf("luck: score %d out of range 1-81", l.Score)
		}
		t.luck[l.Score] = l
	}

	for _, s := range sancai {
		if err := validatePattern(s.Pattern); err != nil {
			return nil, err
		}
		t.sancai[s.Pattern] = s
	}

	for _, c := range combos {
		if c.SurnameStrokes <= 0 || c.N1Strokes <= 0 || c.N2Strokes <= 0 {
			return nil, fmt.Errorf("combination %+v: stroke counts must be positive", c)
		}
		t.combos[c.SurnameStrokes] = append(t.combos[c.SurnameStrokes], StrokePair{Given1: c.N1Strokes, Given2: c.N2Strokes})
		t.nCombo++
	}

	return t, nil
}

func validatePattern(p string) error {
	runes := []rune(p)
	if len(runes) != 3 {
		return fmt.Errorf("sancai pattern %q: expected three elements", p)
	}
	for _, r := range runes {
		if !wuxing.Element(string(r)).Valid() {
			return fmt.Errorf("sancai pattern %q: invalid element %q", p, string(r))
		}
	}
	return nil
}

// Source describes where the dataset was loaded from
func (t *Tables) Source() string {
	return t.source
}

// Kanji looks up a single character
func (t *Tables) Kanji(char string) (KanjiEntry, bool) {
	k, ok := t.kanji[char]
	return k, ok
}

// Luck looks up a number in the 81-number table (no wrapping)
func (t *Tables) Luck(n int) (LuckEntry, bool) {
	l, ok := t.luck[n]
	return l, ok
}

// Sancai looks up a three-element pattern such as "木火土"
func (t *Tables) Sancai(pattern string) (SancaiEntry, bool) {
	s, ok := t.sancai[pattern]
	return s, ok
}

// Combinations returns the stroke pairs recommended for a surname stroke
// count, in table order
func (t *Tables) Combinations(surnameStrokes int) []StrokePair {
	pairs := t.combos[surnameStrokes]
	if len(pairs) == 0 {
		return nil
	}
	return append([]StrokePair(nil), pairs...)
}

// Stats returns row counts
func (t *Tables) Stats() Stats {
	return Stats{
		Source:       t.source,
		Kanji:        len(t.kanji),
		Luck:         len(t.luck),
		Sancai:       len(t.sancai),
		Combinations: t.nCombo,
	}
}

// Rows returns every row in a stable order, for export
func (t *Tables) Rows() ([]KanjiEntry, []LuckEntry, []SancaiEntry, []ComboEntry) {
	kanji := make([]KanjiEntry, 0, len(t.kanji))
	for _, k := range t.kanji {
		kanji = append(kanji, k)
	}
	sort.Slice(kanji, func(i, j int) bool {
		if kanji[i].Strokes != kanji[j].Strokes {
			return kanji[i].Strokes < kanji[j].Strokes
		}
		return kanji[i].Character < kanji[j].Character
	})

	luck := make([]LuckEntry, 0, len(t.luck))
	for _, l := range t.luck {
		luck = append(luck, l)
	}
	sort.Slice(luck, func(i, j int) bool { return luck[i].Score < luck[j].Score })

	sancai := make([]SancaiEntry, 0, len(t.sancai))
	for _, s := range t.sancai {
		sancai = append(sancai, s)
	}
	sort.Slice(sancai, func(i, j int) bool { return sancai[i].Pattern < sancai[j].Pattern })

	surnames := make([]int, 0, len(t.combos))
	for s := range t.combos {
		surnames = append(surnames, s)
	}
	sort.Ints(surnames)
	combos := make([]ComboEntry, 0, t.nCombo)
	for _, s := range surnames {
		for _, p := range t.combos[s] {
			combos = append(combos, ComboEntry{SurnameStrokes: s, N1Strokes: p.Given1, N2Strokes: p.Given2})
		}
	}

	return kanji, luck, sancai, combos
}
