package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xingming/internal/pipeline"
)

var analyzeOpts struct {
	chart           string
	palace          string
	element         string
	strength        string
	gender          string
	recommendations int
	commentary      bool
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <surname> <given-name>",
	Short: "Evaluate a name against a chart and recommend stroke combinations",
	Long: `Analyze evaluates a name with the five grids (天格 人格 地格 外格 總格),
the 81 luck numbers and the three talents (三才), then lists stroke
combinations and lucky stroke counts for the element to strengthen.

The element comes from, in order: --element, the chart given with --chart,
or the default (疾厄宮, 水).

Example:
  xingming analyze 王 小明
  xingming analyze 王 小明 --chart chart.txt
  xingming analyze 陳 大文 --palace 官祿 --element 火 --format yaml
  xingming analyze 王 小明 --chart chart.txt --strength weak --commentary --llm-provider ollama --llm-model qwen2.5`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.chart, "chart", "", "chart export: file path, http(s) URL or - for stdin")
	f.StringVar(&analyzeOpts.palace, "palace", "", "override the afflicted palace (e.g. 疾厄宮 or 疾厄)")
	f.StringVar(&analyzeOpts.element, "element", "", "override the element to strengthen (木 火 土 金 水 or English)")
	f.StringVar(&analyzeOpts.strength, "strength", "", "state of the afflicted element: strong (default) or weak")
	f.StringVar(&analyzeOpts.gender, "gender", "", "gender of the subject (informational)")
	f.IntVar(&analyzeOpts.recommendations, "recommendations", 0, "number of stroke combinations (default from config)")
	f.BoolVar(&analyzeOpts.commentary, "commentary", false, "add LLM commentary (needs --llm-provider)")
	f.StringVar(&outJSON, "json", "", "also write the JSON report to this path")
	f.DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	report, err := p.Analyze(ctx, pipeline.AnalyzeRequest{
		Surname:         args[0],
		GivenName:       args[1],
		Gender:          analyzeOpts.gender,
		ChartSource:     analyzeOpts.chart,
		Palace:          analyzeOpts.palace,
		Element:         analyzeOpts.element,
		Strength:        analyzeOpts.strength,
		Recommendations: analyzeOpts.recommendations,
		Commentary:      analyzeOpts.commentary,
	})
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	return render(cmd, cfg, report)
}
