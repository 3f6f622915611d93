// Package wuxing holds the five-element (五行) rules shared by the chart
// diagnosis and the name numerology: number and branch classification and
// the suppression/support relations used to pick the element to strengthen.
package wuxing

import (
	"fmt"
	"strings"
)

// Element is one of the five classical elements
type Element string

const (
	Wood  Element = "木"
	Fire  Element = "火"
	Earth Element = "土"
	Metal Element = "金"
	Water Element = "水"
)

// Unknown is reported for characters missing from the stroke table
const Unknown Element = "?"

// All returns the five elements in generating order
func All() []Element {
	return []Element{Wood, Fire, Earth, Metal, Water}
}

// Valid reports whether e is one of the five canonical elements
func (e Element) Valid() bool {
	switch e {
	case Wood, Fire, Earth, Metal, Water:
		return true
	}
	return false
}

func (e Element) String() string {
	return string(e)
}

var englishNames = map[string]Element{
	"wood":  Wood,
	"fire":  Fire,
	"earth": Earth,
	"metal": Metal,
	"water": Water,
}

// Parse accepts either the Chinese glyph or the English name of an element
func Parse(s string) (Element, error) {
	s = strings.TrimSpace(s)
	if e := Element(s); e.Valid() {
		return e, nil
	}
	if e, ok := englishNames[strings.ToLower(s)]; ok {
		return e, nil
	}
	return "", fmt.Errorf("unknown element %q (expected one of 木 火 土 金 水)", s)
}

// FromNumber classifies a number by its last decimal digit:
// 1,2 木; 3,4 火; 5,6 土; 7,8 金; 9,0 水.
func FromNumber(n int) Element {
	switch digit(n) {
	case 1, 2:
		return Wood
	case 3, 4:
		return Fire
	case 5, 6:
		return Earth
	case 7, 8:
		return Metal
	default:
		return Water
	}
}

func digit(n int) int {
	r := n % 10
	if r < 0 {
		r += 10
	}
	return r
}

// Digits returns the last digits of the numbers that belong to e.
// It returns nil for an unknown element.
func Digits(e Element) []int {
	switch e {
	case Wood:
		return []int{1, 2}
	case Fire:
		return []int{3, 4}
	case Earth:
		return []int{5, 6}
	case Metal:
		return []int{7, 8}
	case Water:
		return []int{9, 0}
	}
	return nil
}

// HasDigit reports whether n's last digit belongs to e
func HasDigit(e Element, n int) bool {
	d := digit(n)
	for _, want := range Digits(e) {
		if d == want {
			return true
		}
	}
	return false
}

var branchElements = map[string]Element{
	"子": Water, "丑": Earth, "寅": Wood, "卯": Wood,
	"辰": Earth, "巳": Fire, "午": Fire, "未": Earth,
	"申": Metal, "酉": Metal, "戌": Earth, "亥": Water,
}

// Branches returns the twelve earthly branches in cycle order
func Branches() []string {
	return []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
}

// FromBranch resolves the element of an earthly branch. Unrecognized
// branches fall back to 土 with ok=false.
func FromBranch(branch string) (e Element, ok bool) {
	if e, ok := branchElements[strings.TrimSpace(branch)]; ok {
		return e, true
	}
	return Earth, false
}
