// Package chart segments the text export of a palace chart into palace
// blocks. Segmentation is a fold over lines: the state is the currently
// open palace and every line produces one Event.
package chart

import (
	"regexp"
	"strings"

	"github.com/ppiankov/xingming/internal/wuxing"
)

// headerPattern matches a palace header such as "├疾厄宮[丙辰]": a tree
// connector, a name of up to four characters ending in 宮, then a bracketed pair whose
// second character is the earthly branch.
var headerPattern = regexp.MustCompile(`├(.{1,3}宮)\[.(.)\]`)

// Header is a recognized palace header line
type Header struct {
	Name   string
	Branch string
}

// MatchHeader returns the first palace header found in line
func MatchHeader(line string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}
	return Header{
		Name:   strings.TrimSpace(m[1]),
		Branch: strings.TrimSpace(m[2]),
	}, true
}

// EventKind classifies the outcome of one fold step
type EventKind int

const (
	EventNone   EventKind = iota // line discarded: no palace open yet
	EventHeader                  // line opened (or reopened) a palace
	EventLine                    // line belongs to the open palace
)

// Event is emitted for every line fed to Step
type Event struct {
	Kind   EventKind
	Palace string // palace the event belongs to (empty for EventNone)
	Branch string // branch from the header (EventHeader only)
	Line   string // the body line (EventLine only)
}

// State is the fold state: the palace currently open, if any
type State struct {
	Open string
}

// Step advances the fold by one line
func Step(s State, line string) (State, Event) {
	if h, ok := MatchHeader(line); ok {
		return State{Open: h.Name}, Event{Kind: EventHeader, Palace: h.Name, Branch: h.Branch}
	}
	if s.Open == "" {
		return s, Event{Kind: EventNone}
	}
	return s, Event{Kind: EventLine, Palace: s.Open, Line: line}
}

// Lines splits raw chart text on newlines, dropping a trailing carriage
// return from each line
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Scan folds every line of text through Step and hands each event to visit
func Scan(text string, visit func(Event)) {
	var s State
	for _, line := range Lines(text) {
		var ev Event
		s, ev = Step(s, line)
		visit(ev)
	}
}

// Block is one palace with the lines attributed to it
type Block struct {
	Name      string
	Branch    string // first-seen branch
	Element   wuxing.Element
	Defaulted bool // branch unrecognized, Element is the 土 fallback
	Order     int  // first-seen position
	Lines     []string
}

// Chart is a segmented chart export
type Chart struct {
	Blocks []*Block
	index  map[string]*Block
}

// Segment partitions text into palace blocks in first-seen order. A palace
// whose header appears again keeps its first branch and keeps collecting
// lines.
func Segment(text string) *Chart {
	c := &Chart{index: make(map[string]*Block)}
	Scan(text, c.apply)
	return c
}

func (c *Chart) apply(ev Event) {
	switch ev.Kind {
	case EventHeader:
		if _, ok := c.index[ev.Palace]; ok {
			return
		}
		elem, ok := wuxing.FromBranch(ev.Branch)
		b := &Block{
			Name:      ev.Palace,
			Branch:    ev.Branch,
			Element:   elem,
			Defaulted: !ok,
			Order:     len(c.Blocks),
		}
		c.Blocks = append(c.Blocks, b)
		c.index[ev.Palace] = b
	case EventLine:
		b := c.index[ev.Palace]
		b.Lines = append(b.Lines, ev.Line)
	}
}

// Palace returns the block for name
func (c *Chart) Palace(name string) (*Block, bool) {
	b, ok := c.index[name]
	return b, ok
}

// Empty reports whether no palace header was recognized
func (c *Chart) Empty() bool {
	return len(c.Blocks) == 0
}
