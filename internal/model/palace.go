package model

import "github.com/ppiankov/xingming/internal/wuxing"

// Hit is a single affliction marker found on a palace line
type Hit struct {
	Marker string     `json:"marker"` // Vocabulary entry that matched (e.g., "擎羊")
	Tier   MarkerTier `json:"tier"`   // Vocabulary tier of the marker
	Weight int        `json:"weight"` // Score contribution
	Detail string     `json:"detail"` // Human-readable trail entry (e.g., "擎羊(+1)")
}

// MarkerTier classifies an affliction marker
type MarkerTier string

const (
	TierTransformed MarkerTier = "transformed_affliction" // 化忌 family, weight 2
	TierMalefic     MarkerTier = "malefic_star"           // six malefic stars, weight 1
)

// PalaceRecord is one palace recognized in a chart export
type PalaceRecord struct {
	Name      string         `json:"name"`              // Palace label, e.g. "疾厄宮"
	Branch    string         `json:"branch"`            // Earthly branch from the first header
	Element   wuxing.Element `json:"element"`           // Element of Branch
	Defaulted bool           `json:"defaulted"`         // Branch unrecognized, Element fell back to 土
	Score     int            `json:"score"`             // Accumulated affliction score
	Details   []string       `json:"details,omitempty"` // One entry per marker hit, in scan order
	Order     int            `json:"order"`             // First-seen position in the chart (0-based)
}

// Diagnosis is the outcome of parsing a chart export
type Diagnosis struct {
	Palace           string         `json:"palace"`            // Palace with the heaviest affliction
	Score            int            `json:"score"`             // Its score
	Details          []string       `json:"details"`           // Its marker trail
	Branch           string         `json:"branch"`            // Its branch
	BranchElement    wuxing.Element `json:"branch_element"`    // Element of the branch
	BranchDefaulted  bool           `json:"branch_defaulted"`  // Branch unrecognized (element is the 土 fallback)
	Element          wuxing.Element `json:"element"`           // Recommended element to strengthen (喜用神)
	ElementDefaulted bool           `json:"element_defaulted"` // Suppression lookup fell back
	Report           string         `json:"report"`            // Fixed-template narrative
	Palaces          []PalaceRecord `json:"palaces"`           // Every palace, first-seen order
}
