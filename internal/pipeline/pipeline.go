// Package pipeline wires chart sources, the diagnosis and the name analysis
// into complete reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/xingming/internal/cache"
	"github.com/ppiankov/xingming/internal/diagnose"
	"github.com/ppiankov/xingming/internal/extract/adapters"
	"github.com/ppiankov/xingming/internal/llm"
	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/numerology"
	"github.com/ppiankov/xingming/internal/tables"
	"github.com/ppiankov/xingming/internal/validate"
	"github.com/ppiankov/xingming/internal/worker"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// ErrInvalidRequest wraps every rejection of user input by Analyze
var ErrInvalidRequest = errors.New("invalid request")

// Pipeline orchestrates reading charts, diagnosing them and analyzing names
type Pipeline struct {
	tables     *tables.Tables
	calc       *numerology.Calculator
	validator  *validate.Validator
	parser     *diagnose.Parser
	adapters   *adapters.Registry
	fetcher    *Fetcher
	summarizer *llm.Summarizer // nil if disabled
	config     *model.Config
	stdin      io.Reader
	now        func() time.Time
}

// NewPipeline loads the configured tables and creates a pipeline
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	t, err := tables.Load(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}

	p := NewPipelineWithTables(cfg, t)

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Log.WithError(err).Warn("failed to initialize LLM provider, commentary disabled")
		} else {
			p.summarizer = s.WithCache(cache.New(cfg.Cache), cfg.Cache.DiskTTL)
		}
	}

	return p, nil
}

// NewPipelineWithTables creates a pipeline over already loaded tables,
// without commentary
func NewPipelineWithTables(cfg *model.Config, t *tables.Tables) *Pipeline {
	c := cache.New(cfg.Cache)
	fetcher := NewFetcherFromConfig(cfg.HTTP).
		WithLimiter(worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)).
		WithCache(c, cfg.Cache.DiskTTL)

	return &Pipeline{
		tables:    t,
		calc:      numerology.NewCalculator(t),
		validator: validate.NewValidator(cfg.Diagnosis),
		parser:    diagnose.NewParser(),
		adapters:  adapters.NewRegistry(),
		fetcher:   fetcher,
		config:    cfg,
		stdin:     os.Stdin,
		now:       time.Now,
	}
}

// WithSummarizer enables commentary through s
func (p *Pipeline) WithSummarizer(s *llm.Summarizer) *Pipeline {
	p.summarizer = s
	return p
}

// WithStdin replaces the reader used for the "-" source
func (p *Pipeline) WithStdin(r io.Reader) *Pipeline {
	p.stdin = r
	return p
}

// Tables returns the reference tables in use
func (p *Pipeline) Tables() *tables.Tables {
	return p.tables
}

// Calculator returns the numerology calculator
func (p *Pipeline) Calculator() *numerology.Calculator {
	return p.calc
}

// IsURL reports whether source is fetched over HTTP
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ReadChart loads chart text from a file path, a URL or "-" for stdin
func (p *Pipeline) ReadChart(ctx context.Context, source string) (string, *model.ChartSource, error) {
	var (
		content     []byte
		contentType string
		src         = &model.ChartSource{Location: source}
	)

	switch {
	case source == "-":
		src.Kind = model.SourceStdin
		src.Location = ""
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		content = data

	case IsURL(source):
		src.Kind = model.SourceURL
		result, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return "", nil, fmt.Errorf("fetch: %w", err)
		}
		content = []byte(result.Content)
		contentType = result.Meta.ContentType
		meta := result.Meta
		src.Fetch = &meta

	default:
		src.Kind = model.SourceFile
		data, err := os.ReadFile(source)
		if err != nil {
			return "", nil, fmt.Errorf("read chart: %w", err)
		}
		content = data
	}

	adapter := p.adapters.FindAdapter(src.Location, contentType)
	text, err := adapter.Extract(content)
	if err != nil {
		return "", nil, fmt.Errorf("extract (%s): %w", adapter.Name(), err)
	}
	src.Adapter = adapter.Name()

	return text, src, nil
}

// DiagnoseText gates chart text on its length and diagnoses it
func (p *Pipeline) DiagnoseText(text string) (*model.Diagnosis, error) {
	if err := p.validator.Chart(text); err != nil {
		return nil, err
	}
	return p.parser.Parse(text)
}

// Diagnose reads and diagnoses a chart source
func (p *Pipeline) Diagnose(ctx context.Context, source string) (*model.Diagnosis, *model.ChartSource, error) {
	text, src, err := p.ReadChart(ctx, source)
	if err != nil {
		return nil, nil, err
	}

	d, err := p.DiagnoseText(text)
	if err != nil {
		return nil, src, err
	}

	logger.Log.WithFields(logrus.Fields{
		"source":  source,
		"palace":  d.Palace,
		"score":   d.Score,
		"element": d.Element,
	}).Debug("chart diagnosed")

	return d, src, nil
}

// DiagnoseSource diagnoses one chart source into a report without a name
// analysis. Read failures are errors; a chart that cannot be diagnosed
// yields a report carrying the reason.
func (p *Pipeline) DiagnoseSource(ctx context.Context, source string) (*model.Report, error) {
	d, src, err := p.Diagnose(ctx, source)
	if src == nil {
		return nil, err
	}

	report := &model.Report{
		Subject:         source,
		GeneratedAt:     p.now().UTC(),
		Source:          src,
		Diagnosis:       d,
		Recommendations: []model.Recommendation{},
		LuckyStrokes:    []model.LuckyStroke{},
		Principles:      model.DefaultPrinciples(),
	}
	if err != nil {
		report.DiagnosisError = err.Error()
	}

	sel, selErr := p.validator.Select(validate.Overrides{}, d)
	if selErr != nil {
		return nil, selErr
	}
	report.Selection = sel

	return report, nil
}

// AnalyzeRequest describes a full name analysis
type AnalyzeRequest struct {
	Surname   string
	GivenName string
	Gender    string

	// ChartText is pasted chart text; ChartSource a path, URL or "-".
	// At most one is used, ChartText first.
	ChartText   string
	ChartSource string

	// Manual overrides, empty when unset
	Palace   string
	Element  string
	Strength string

	// Recommendations caps the stroke combinations (0 = configured default)
	Recommendations int

	// Commentary requests LLM commentary when a provider is configured
	Commentary bool
}

// Analyze runs the complete analysis: optional chart diagnosis, selection
// of palace and element, current name evaluation, stroke recommendations
// and lucky strokes
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*model.Report, error) {
	surname, given, err := p.validator.Name(req.Surname, req.GivenName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	report := &model.Report{
		Subject:     surname + given,
		Gender:      req.Gender,
		GeneratedAt: p.now().UTC(),
		Principles:  model.DefaultPrinciples(),
	}

	// The chart only informs the selection; a chart that cannot be
	// diagnosed leaves the defaults in place
	var diagnosis *model.Diagnosis
	switch {
	case req.ChartText != "":
		report.Source = &model.ChartSource{Kind: model.SourceText}
		diagnosis, err = p.DiagnoseText(req.ChartText)
	case req.ChartSource != "":
		diagnosis, report.Source, err = p.Diagnose(ctx, req.ChartSource)
		if report.Source == nil {
			return nil, err
		}
	}
	if err != nil {
		report.DiagnosisError = err.Error()
		logger.Log.WithError(err).Info("chart not diagnosed, using defaults")
	}
	report.Diagnosis = diagnosis

	sel, err := p.validator.Select(validate.Overrides{
		Palace:   req.Palace,
		Element:  req.Element,
		Strength: req.Strength,
	}, diagnosis)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	report.Selection = sel

	analysis, err := p.calc.Analyze(surname, given, sel.Element)
	if err != nil {
		return nil, fmt.Errorf("analyze name: %w", err)
	}
	report.Name = analysis

	report.Recommendations, err = p.Recommend(surname, sel.Element, req.Recommendations)
	if err != nil {
		return nil, err
	}
	report.LuckyStrokes = p.LuckyStrokes(sel.Element)

	if req.Commentary && p.summarizer.IsEnabled() {
		commentary, err := p.summarizer.GenerateCommentary(ctx, *report)
		if err != nil {
			logger.Log.WithError(err).Warn("commentary generation failed")
		} else {
			report.Commentary = commentary
		}
	}

	return report, nil
}

// Recommend returns stroke combinations for the surname. A surname missing
// from the stroke table has no combinations.
func (p *Pipeline) Recommend(surname string, e wuxing.Element, limit int) ([]model.Recommendation, error) {
	if limit <= 0 {
		limit = p.config.Diagnosis.Recommendations
	}
	recs, err := p.calc.Recommend(surname, e, limit)
	if errors.Is(err, numerology.ErrUnknownCharacter) {
		logger.Log.WithError(err).Info("no stroke combinations for surname")
		return []model.Recommendation{}, nil
	}
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}

// LuckyStrokes returns the lucky stroke counts of an element up to the
// configured maximum
func (p *Pipeline) LuckyStrokes(e wuxing.Element) []model.LuckyStroke {
	strokes := p.calc.LuckyStrokes(e, p.config.Diagnosis.LuckyStrokesMax)
	if strokes == nil {
		strokes = []model.LuckyStroke{}
	}
	return strokes
}

// Remedy derives the element to strengthen for an afflicted element
func Remedy(afflicted wuxing.Element, strength wuxing.Strength) (wuxing.Element, bool) {
	return wuxing.Suppress(afflicted, strength)
}
