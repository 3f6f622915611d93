package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/pipeline"
)

var (
	outJSON string
	timeout time.Duration
)

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <chart>",
	Short: "Find the afflicted palace of a chart and the element to strengthen",
	Long: `Diagnose reads a chart export and:
- Splits it into palace blocks by their ├XX宮[干支] headers
- Scores each palace by its malefic markers (化忌 +2, 擎羊 陀羅 火星 鈴星 地空 地劫 天空 +1)
- Picks the heaviest palace (first one wins ties)
- Derives the element to strengthen from the palace's earthly branch

The chart is a file path, an http(s) URL or "-" for stdin.

Example:
  xingming diagnose chart.txt
  xingming diagnose https://example.com/chart/123 --format json
  pbpaste | xingming diagnose -`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().StringVar(&outJSON, "json", "", "also write the JSON report to this path")
	diagnoseCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.DiagnoseSource(ctx, args[0])
	if err != nil {
		return fmt.Errorf("diagnose failed: %w", err)
	}

	if err := render(cmd, cfg, report); err != nil {
		return err
	}
	if report.Diagnosis == nil {
		return fmt.Errorf("diagnose failed: %s", report.DiagnosisError)
	}
	return nil
}

// render writes report in the configured format and, with --json, to a file
func render(cmd *cobra.Command, cfg *model.Config, report *model.Report) error {
	r := pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.Verbose)
	if err := r.Render(report, cfg.Output.Format); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outJSON != "" {
		if err := r.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
		}
	}
	return nil
}
