package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/pipeline"
	"github.com/ppiankov/xingming/internal/worker"
)

var (
	batchFrom    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [sources...]",
	Short: "Diagnose many charts in parallel",
	Long: `Batch diagnoses many chart exports concurrently:
- Sources are files, directories (their .txt and .html files), glob
  patterns or http(s) URLs
- --from reads more sources from a file (one per line, # comments)
- Results keep the order of the sources
- URL sources are rate limited per host and honor robots.txt

Example:
  xingming batch charts/
  xingming batch 'charts/*.txt' --workers 8
  xingming batch --from sources.txt --json reports.json`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	f := batchCmd.Flags()
	f.IntP("workers", "w", 4, "number of concurrent workers")
	f.StringVar(&batchFrom, "from", "", "file listing chart sources, one per line")
	f.StringVar(&outJSON, "json", "", "write all reports as a JSON array to this path (- for stdout)")
	f.DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	_ = viper.BindPFlag("concurrency.workers", f.Lookup("workers"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && batchFrom == "" {
		return fmt.Errorf("no chart sources given (pass paths, globs, URLs or --from)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	sources, err := worker.ExpandSources(args)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Diagnosing with %d workers...\n", cfg.Concurrency.Workers)

	results := processor.ProcessSources(ctx, sources)
	if batchFrom != "" {
		listed, err := processor.ProcessFile(ctx, batchFrom)
		if err != nil {
			return fmt.Errorf("process file: %w", err)
		}
		results = append(results, listed...)
	}

	r := pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.Verbose)
	if outJSON != "-" {
		r.RenderBatch(results)
	}
	if outJSON != "" {
		if err := r.RenderJSON(batchReports(results), outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	return nil
}

// batchReports collects the reports, turning read failures into reports
// that only carry the error
func batchReports(results []*worker.ChartResult) []*model.Report {
	reports := make([]*model.Report, 0, len(results))
	for _, res := range results {
		if res.Report != nil {
			reports = append(reports, res.Report)
			continue
		}
		reports = append(reports, &model.Report{
			Subject:         res.Source,
			DiagnosisError:  res.Error.Error(),
			Recommendations: []model.Recommendation{},
			LuckyStrokes:    []model.LuckyStroke{},
		})
	}
	return reports
}
