package model

import (
	"time"

	"github.com/ppiankov/xingming/internal/wuxing"
)

// Report represents a complete name analysis
type Report struct {
	Subject     string    `json:"subject"`          // Full name being analyzed
	Gender      string    `json:"gender,omitempty"` // 男 / 女, informational only
	GeneratedAt time.Time `json:"generated_at"`

	Source    *ChartSource `json:"source,omitempty"`    // Where the chart text came from, if any
	Diagnosis *Diagnosis   `json:"diagnosis,omitempty"` // Chart diagnosis, nil when no chart was given or it failed
	// DiagnosisError is the reason the chart could not be diagnosed
	DiagnosisError string `json:"diagnosis_error,omitempty"`

	Selection Selection `json:"selection"` // Palace and element the analysis is built on

	Name            *NameAnalysis    `json:"name,omitempty"` // Current name, nil if unsupported
	Recommendations []Recommendation `json:"recommendations"`
	LuckyStrokes    []LuckyStroke    `json:"lucky_strokes"`

	Principles Principles  `json:"principles"`
	Commentary *Commentary `json:"commentary,omitempty"` // Optional LLM commentary (never affects the analysis)
}

// ChartSource describes the origin of a chart export
type ChartSource struct {
	Kind     SourceKind `json:"kind"`
	Location string     `json:"location,omitempty"` // file path or URL
	Adapter  string     `json:"adapter,omitempty"`  // text adapter that produced the lines
	Fetch    *FetchMeta `json:"fetch,omitempty"`
}

// SourceKind classifies a chart source
type SourceKind string

const (
	SourceText  SourceKind = "text"
	SourceFile  SourceKind = "file"
	SourceStdin SourceKind = "stdin"
	SourceURL   SourceKind = "url"
)

// FetchMeta contains HTTP metadata from fetching a chart export
type FetchMeta struct {
	StatusCode   int    `json:"status_code"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	FinalURL     string `json:"final_url,omitempty"`
	Cached       bool   `json:"cached"`
}

// Selection is the palace/element pair the name analysis uses
type Selection struct {
	Palace        string          `json:"palace"` // 災宮
	PalaceOrigin  SelectionOrigin `json:"palace_origin"`
	Element       wuxing.Element  `json:"element"` // 喜用神
	ElementOrigin SelectionOrigin `json:"element_origin"`
	Strength      wuxing.Strength `json:"strength"`
}

// SelectionOrigin records which input decided a Selection value
type SelectionOrigin string

const (
	OriginDefault SelectionOrigin = "default" // built-in defaults
	OriginChart   SelectionOrigin = "chart"   // adopted from the chart diagnosis
	OriginManual  SelectionOrigin = "manual"  // user override
)

// Principles documents how the report was produced
type Principles struct {
	Deterministic bool `json:"deterministic"` // Same input, same analysis
	Transparent   bool `json:"transparent"`   // Every score is traceable to markers/tables
	Advisory      bool `json:"advisory"`      // Suggestions only; manual overrides always win
}

// DefaultPrinciples returns the standard principles
func DefaultPrinciples() Principles {
	return Principles{
		Deterministic: true,
		Transparent:   true,
		Advisory:      true,
	}
}

// Commentary contains optional LLM-generated commentary
type Commentary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict"` // Whether cited palaces were checked against the chart
	Text      string   `json:"text,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	FromCache bool     `json:"from_cache,omitempty"`
}
