package wuxing

import (
	"fmt"
	"strings"
)

// Strength describes the state of the afflicted element
type Strength string

const (
	// StrengthStrong means the element is in excess and must be suppressed
	StrengthStrong Strength = "strong"
	// StrengthWeak means the element is depleted and must be supported
	StrengthWeak Strength = "weak"
)

// ParseStrength accepts "strong"/"強"/"强" and "weak"/"弱". Empty input
// yields the default, StrengthStrong.
func ParseStrength(s string) (Strength, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strong", "強", "强":
		return StrengthStrong, nil
	case "weak", "弱":
		return StrengthWeak, nil
	}
	return "", fmt.Errorf("unknown strength %q (expected strong or weak)", s)
}

// overcomes maps an element to the element that overcomes it (剋)
var overcomes = map[Element]Element{
	Wood:  Metal,
	Fire:  Water,
	Earth: Wood,
	Metal: Fire,
	Water: Earth,
}

// generates maps an element to the element that generates it (生)
var generates = map[Element]Element{
	Wood:  Water,
	Fire:  Wood,
	Earth: Fire,
	Metal: Earth,
	Water: Metal,
}

// OvercomeBy returns the element that overcomes e
func OvercomeBy(e Element) (Element, bool) {
	r, ok := overcomes[e]
	return r, ok
}

// GeneratedBy returns the element that generates e
func GeneratedBy(e Element) (Element, bool) {
	r, ok := generates[e]
	return r, ok
}

// Suppress returns the element to strengthen for an afflicted element.
// A strong element is countered by the element that overcomes it, a weak
// one is fed by the element that generates it. Unknown input falls back to
// 火 (strong) or 木 (weak) with ok=false.
func Suppress(e Element, s Strength) (remedy Element, ok bool) {
	if s == StrengthWeak {
		if r, ok := generates[e]; ok {
			return r, true
		}
		return Wood, false
	}
	if r, ok := overcomes[e]; ok {
		return r, true
	}
	return Fire, false
}
