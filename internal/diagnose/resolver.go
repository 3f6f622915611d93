// Package diagnose picks the most afflicted palace of a chart and derives
// the element to strengthen (喜用神) from it.
package diagnose

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/xingming/internal/chart"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/score"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// ErrUnrecognizedFormat is returned when no palace header was found. Its
// message is suitable for showing to the user as-is.
var ErrUnrecognizedFormat = errors.New("無法辨識文字內容，請確認是否為相容的排盤格式。")

// Resolver turns scored palaces into a diagnosis
type Resolver struct {
	strength wuxing.Strength
}

// NewResolver creates a resolver that treats the afflicted element as strong
func NewResolver() *Resolver {
	return &Resolver{strength: wuxing.StrengthStrong}
}

// Resolve selects the highest-scoring palace, earliest first on ties, and
// applies the suppression rule to its branch element
func (r *Resolver) Resolve(records []model.PalaceRecord) (*model.Diagnosis, error) {
	if len(records) == 0 {
		return nil, ErrUnrecognizedFormat
	}

	ranked := make([]model.PalaceRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	top := ranked[0]

	remedy, ok := wuxing.Suppress(top.Element, r.strength)

	d := &model.Diagnosis{
		Palace:           top.Name,
		Score:            top.Score,
		Details:          append([]string{}, top.Details...),
		Branch:           top.Branch,
		BranchElement:    top.Element,
		BranchDefaulted:  top.Defaulted,
		Element:          remedy,
		ElementDefaulted: !ok,
		Palaces:          records,
	}
	d.Report = Narrative(d)
	return d, nil
}

// Narrative renders the four-line diagnosis text. The lead-in of the last
// line is a fixed phrase and does not follow the computed element.
func Narrative(d *model.Diagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "偵測到煞氣最重：【%s】 (%d分)\n", d.Palace, d.Score)
	fmt.Fprintf(&b, "煞星明細：%s\n", strings.Join(d.Details, ", "))
	fmt.Fprintf(&b, "宮位地支：%s (屬%s)\n", d.Branch, d.BranchElement)
	fmt.Fprintf(&b, "診斷建議：土旺需木剋，建議喜用神為【%s】", d.Element)
	return b.String()
}

// Parser runs segmentation, scoring and resolution over chart text. It
// holds no per-call state and is safe for concurrent use.
type Parser struct {
	scorer   *score.Scorer
	resolver *Resolver
}

// NewParser creates a parser with the default vocabulary
func NewParser() *Parser {
	return &Parser{
		scorer:   score.NewScorer(),
		resolver: NewResolver(),
	}
}

// Parse diagnoses raw chart text
func (p *Parser) Parse(text string) (*model.Diagnosis, error) {
	c := chart.Segment(text)
	return p.resolver.Resolve(p.scorer.Score(c))
}

var defaultParser = NewParser()

// Parse diagnoses raw chart text with the default parser
func Parse(text string) (*model.Diagnosis, error) {
	return defaultParser.Parse(text)
}
