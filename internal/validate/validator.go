// Package validate gates user input before it reaches the diagnosis and the
// name analysis: chart text length, names, palaces and elements.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// MinChartLength is the default minimum chart text length, in characters
const MinChartLength = 50

// Manual selection defaults used when neither the user nor a chart decides
const (
	DefaultPalace  = "疾厄宮"
	DefaultElement = wuxing.Water
)

var (
	// ErrChartTooShort is returned for chart text below the minimum length
	ErrChartTooShort = errors.New("文字內容太短。")
	// ErrInvalidName is returned for names the analysis cannot use
	ErrInvalidName = errors.New("invalid name")
	// ErrUnknownPalace is returned for palace names outside the twelve palaces
	ErrUnknownPalace = errors.New("unknown palace")
)

// Validator checks user input against the configured limits
type Validator struct {
	minChartLength int
	defaultPalace  string
	defaultElement wuxing.Element
	palaces        *PalaceClassifier
}

// NewValidator creates a validator from the diagnosis config. Zero values
// fall back to the package defaults.
func NewValidator(cfg model.DiagnosisConfig) *Validator {
	v := &Validator{
		minChartLength: cfg.MinChartLength,
		defaultPalace:  DefaultPalace,
		defaultElement: DefaultElement,
		palaces:        NewPalaceClassifier(cfg.PalaceAliases),
	}
	if v.minChartLength <= 0 {
		v.minChartLength = MinChartLength
	}
	if p, ok := v.palaces.Canonical(cfg.DefaultPalace); ok {
		v.defaultPalace = p
	}
	if e, err := wuxing.Parse(cfg.DefaultElement); err == nil {
		v.defaultElement = e
	}
	return v
}

// Chart rejects text that is too short to be a chart export. Length is
// counted in characters, not bytes.
func (v *Validator) Chart(text string) error {
	if n := utf8.RuneCountInString(text); n < v.minChartLength {
		return fmt.Errorf("%w (%d < %d)", ErrChartTooShort, n, v.minChartLength)
	}
	return nil
}

// Name trims and checks a surname and given name. The given name must have
// one or two characters and neither part may contain spaces, digits or
// punctuation.
func (v *Validator) Name(surname, given string) (string, string, error) {
	surname = strings.TrimSpace(surname)
	given = strings.TrimSpace(given)

	if surname == "" {
		return "", "", fmt.Errorf("%w: surname is required", ErrInvalidName)
	}
	if given == "" {
		return "", "", fmt.Errorf("%w: given name is required", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(given); n > 2 {
		return "", "", fmt.Errorf("%w: given name has %d characters, expected 1 or 2", ErrInvalidName, n)
	}
	if n := utf8.RuneCountInString(surname); n > 2 {
		return "", "", fmt.Errorf("%w: surname has %d characters, expected 1 or 2", ErrInvalidName, n)
	}
	for _, r := range surname + given {
		if !unicode.IsLetter(r) {
			return "", "", fmt.Errorf("%w: unexpected character %q", ErrInvalidName, r)
		}
	}
	return surname, given, nil
}

// Palace resolves a palace name to its canonical form
func (v *Validator) Palace(name string) (string, error) {
	p, ok := v.palaces.Canonical(name)
	if !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownPalace, name, strings.Join(Palaces(), " "))
	}
	return p, nil
}

// Element parses a user-declared element
func (v *Validator) Element(s string) (wuxing.Element, error) {
	return wuxing.Parse(s)
}

// Overrides are the manual choices of the user. Empty fields are unset.
type Overrides struct {
	Palace   string
	Element  string
	Strength string
}

// Select decides the palace and element the analysis is built on: manual
// overrides first, then the chart diagnosis, then the defaults. diagnosis
// may be nil.
func (v *Validator) Select(o Overrides, diagnosis *model.Diagnosis) (model.Selection, error) {
	strength, err := wuxing.ParseStrength(o.Strength)
	if err != nil {
		return model.Selection{}, err
	}

	sel := model.Selection{
		Palace:        v.defaultPalace,
		PalaceOrigin:  model.OriginDefault,
		Element:       v.defaultElement,
		ElementOrigin: model.OriginDefault,
		Strength:      strength,
	}

	if diagnosis != nil {
		sel.Palace = diagnosis.Palace
		sel.PalaceOrigin = model.OriginChart
		sel.Element = diagnosis.Element
		sel.ElementOrigin = model.OriginChart
		// A weak reading of the same palace changes the element to strengthen
		if strength == wuxing.StrengthWeak {
			sel.Element, _ = wuxing.Suppress(diagnosis.BranchElement, strength)
		}
	}

	if o.Palace != "" {
		p, err := v.Palace(o.Palace)
		if err != nil {
			return model.Selection{}, err
		}
		sel.Palace = p
		sel.PalaceOrigin = model.OriginManual
	}
	if o.Element != "" {
		e, err := v.Element(o.Element)
		if err != nil {
			return model.Selection{}, err
		}
		sel.Element = e
		sel.ElementOrigin = model.OriginManual
	}

	return sel, nil
}
