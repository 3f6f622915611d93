package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// Diagnoser diagnoses one chart source: a file path, a URL or "-" for stdin
type Diagnoser interface {
	DiagnoseSource(ctx context.Context, source string) (*model.Report, error)
}

// ChartJob diagnoses a single chart source
type ChartJob struct {
	Source    string
	Diagnoser Diagnoser
}

// Execute executes the diagnosis job
func (j *ChartJob) Execute(ctx context.Context) Result {
	report, err := j.Diagnoser.DiagnoseSource(ctx, j.Source)
	if err != nil {
		return &ChartResult{Source: j.Source, Error: err}
	}
	return &ChartResult{Source: j.Source, Report: report}
}

// ChartResult represents the result of a diagnosis job
type ChartResult struct {
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the diagnosis result
func (r *ChartResult) GetError() error {
	return r.Error
}

// BatchProcessor diagnoses many chart sources concurrently
type BatchProcessor struct {
	diagnoser   Diagnoser
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(diagnoser Diagnoser, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		diagnoser:   diagnoser,
		concurrency: concurrency,
	}
}

// ProcessSources diagnoses sources concurrently. Results keep the order of
// sources.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*ChartResult {
	if len(sources) == 0 {
		return []*ChartResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, src := range sources {
		pool.Submit(&ChartJob{Source: src, Diagnoser: b.diagnoser})
	}

	results := pool.Wait()

	chartResults := make([]*ChartResult, len(results))
	for i, result := range results {
		chartResults[i] = result.(*ChartResult)
	}

	return chartResults
}

// ProcessFile reads sources from a list file and diagnoses them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ChartResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads chart sources from a file (one per line).
// Blank lines and # comments are skipped and duplicates dropped.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// chartExtensions are the file types picked up from directories
var chartExtensions = map[string]bool{
	".txt": true, ".html": true, ".htm": true,
}

// ExpandSources turns command line arguments into chart sources. URLs and
// "-" pass through, directories expand to the chart files they contain and
// glob patterns to their matches. Duplicates are dropped.
func ExpandSources(args []string) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}

	for _, arg := range args {
		if arg == "-" || strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			add(arg)
			continue
		}

		if info, err := os.Stat(arg); err == nil {
			if !info.IsDir() {
				add(arg)
				continue
			}
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("read dir %s: %w", arg, err)
			}
			for _, e := range entries {
				if e.IsDir() || !chartExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
					continue
				}
				add(filepath.Join(arg, e.Name()))
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no chart source matches %s", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return sources, nil
}

// BatchSummary aggregates the outcome of a batch
type BatchSummary struct {
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Palaces   map[string]int         `json:"palaces"`  // most afflicted palace counts
	Elements  map[wuxing.Element]int `json:"elements"` // recommended element counts
}

// Summarize tallies batch results. A report without a diagnosis counts as
// failed.
func Summarize(results []*ChartResult) BatchSummary {
	s := BatchSummary{
		Total:    len(results),
		Palaces:  make(map[string]int),
		Elements: make(map[wuxing.Element]int),
	}
	for _, r := range results {
		if r.Error != nil || r.Report == nil || r.Report.Diagnosis == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Palaces[r.Report.Diagnosis.Palace]++
		s.Elements[r.Report.Diagnosis.Element]++
	}
	return s
}
