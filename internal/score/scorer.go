package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/xingming/internal/chart"
	"github.com/ppiankov/xingming/internal/model"
)

// Marker is one entry of the affliction vocabulary
type Marker struct {
	Text   string
	Tier   model.MarkerTier
	Weight int
	// Label is written to the detail trail; empty means the marker text
	Label string
}

// Detail formats the trail entry for a hit on m
func (m Marker) Detail() string {
	label := m.Label
	if label == "" {
		label = m.Text
	}
	return fmt.Sprintf("%s(+%d)", label, m.Weight)
}

// DefaultMarkers returns the two-tier vocabulary: the transformed-affliction
// family (weight 2, always reported as 化忌) and the six malefic stars
// (weight 1).
func DefaultMarkers() []Marker {
	markers := []Marker{
		{Text: "生年忌", Tier: model.TierTransformed, Weight: 2, Label: "化忌"},
		{Text: "化忌", Tier: model.TierTransformed, Weight: 2, Label: "化忌"},
		{Text: "[忌]", Tier: model.TierTransformed, Weight: 2, Label: "化忌"},
	}
	for _, star := range []string{"火星", "鈴星", "擎羊", "陀羅", "地空", "地劫", "天空"} {
		markers = append(markers, Marker{Text: star, Tier: model.TierMalefic, Weight: 1})
	}
	return markers
}

// Scorer counts affliction markers in palace blocks
type Scorer struct {
	markers []Marker
}

// NewScorer creates a scorer with the default vocabulary
func NewScorer() *Scorer {
	return &Scorer{markers: DefaultMarkers()}
}

// NewScorerWithMarkers creates a scorer with a custom vocabulary
func NewScorerWithMarkers(markers []Marker) *Scorer {
	return &Scorer{markers: append([]Marker(nil), markers...)}
}

// ScoreLine returns one hit per marker contained in line, in vocabulary
// order. Each marker is checked once per line.
func (s *Scorer) ScoreLine(line string) []model.Hit {
	var hits []model.Hit
	for _, m := range s.markers {
		if strings.Contains(line, m.Text) {
			hits = append(hits, model.Hit{
				Marker: m.Text,
				Tier:   m.Tier,
				Weight: m.Weight,
				Detail: m.Detail(),
			})
		}
	}
	return hits
}

// Score scores every block of c and returns the palace records in
// first-seen order
func (s *Scorer) Score(c *chart.Chart) []model.PalaceRecord {
	records := make([]model.PalaceRecord, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		rec := model.PalaceRecord{
			Name:      b.Name,
			Branch:    b.Branch,
			Element:   b.Element,
			Defaulted: b.Defaulted,
			Order:     b.Order,
		}
		for _, line := range b.Lines {
			for _, hit := range s.ScoreLine(line) {
				rec.Score += hit.Weight
				rec.Details = append(rec.Details, hit.Detail)
			}
		}
		records = append(records, rec)
	}
	return records
}
