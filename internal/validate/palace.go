package validate

import (
	"strings"
)

// Palaces returns the twelve canonical palaces in chart order
func Palaces() []string {
	return []string{
		"命宮", "兄弟宮", "夫妻宮", "子女宮", "財帛宮", "疾厄宮",
		"遷移宮", "交友宮", "官祿宮", "田宅宮", "福德宮", "父母宮",
	}
}

// builtinAliases covers the alternative names charting tools print
var builtinAliases = map[string]string{
	"僕役宮": "交友宮",
	"奴僕宮": "交友宮",
	"事業宮": "官祿宮",
	"相貌宮": "父母宮",
	"男女宮": "子女宮",
}

// simplified maps simplified glyphs used in palace names to traditional ones
var simplified = strings.NewReplacer(
	"宫", "宮",
	"财", "財",
	"迁", "遷",
	"禄", "祿",
	"仆", "僕",
)

// PalaceClassifier resolves palace names to one of the twelve canonical
// palaces
type PalaceClassifier struct {
	canonical map[string]bool
	aliases   map[string]string
}

// NewPalaceClassifier creates a classifier. Configured aliases take
// precedence over the built-in ones; aliases pointing at a non-canonical
// palace are ignored.
func NewPalaceClassifier(aliases map[string]string) *PalaceClassifier {
	c := &PalaceClassifier{
		canonical: make(map[string]bool),
		aliases:   make(map[string]string),
	}

	for _, p := range Palaces() {
		c.canonical[p] = true
	}

	for alias, target := range builtinAliases {
		c.aliases[alias] = target
	}
	for alias, target := range aliases {
		target = normalize(target)
		if !c.canonical[target] {
			continue
		}
		c.aliases[normalize(alias)] = target
	}

	return c
}

func normalize(name string) string {
	return simplified.Replace(strings.TrimSpace(name))
}

// Canonical returns the canonical palace for name
func (c *PalaceClassifier) Canonical(name string) (string, bool) {
	n := normalize(name)
	if c.canonical[n] {
		return n, true
	}
	if target, ok := c.aliases[n]; ok {
		return target, true
	}
	// Bare names without the trailing 宮, e.g. "疾厄"
	if !strings.HasSuffix(n, "宮") && c.canonical[n+"宮"] {
		return n + "宮", true
	}
	return "", false
}

// IsCanonical reports whether name resolves to a canonical palace
func (c *PalaceClassifier) IsCanonical(name string) bool {
	_, ok := c.Canonical(name)
	return ok
}

// Mentions returns the canonical palaces named anywhere in text, in chart
// order
func (c *PalaceClassifier) Mentions(text string) []string {
	text = normalize(text)

	var found []string
	for _, p := range Palaces() {
		if strings.Contains(text, p) {
			found = append(found, p)
			continue
		}
		for alias, target := range c.aliases {
			if target == p && strings.HasSuffix(alias, "宮") && strings.Contains(text, alias) {
				found = append(found, p)
				break
			}
		}
	}
	return found
}
