package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xingming/internal/numerology"
	"github.com/ppiankov/xingming/internal/pipeline"
	"github.com/ppiankov/xingming/internal/tables"
	"github.com/ppiankov/xingming/internal/wuxing"
)

var (
	remedyStrength string
	luckyMax       int
)

// remedyCmd represents the remedy command
var remedyCmd = &cobra.Command{
	Use:   "remedy <element>",
	Short: "Show the element that counters or feeds an afflicted element",
	Long: `Remedy applies the five-element rules to an afflicted element:
a strong element is countered by the element that overcomes it (剋),
a weak one is fed by the element that generates it (生).

Example:
  xingming remedy 土
  xingming remedy earth --strength weak`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := wuxing.Parse(args[0])
		if err != nil {
			return err
		}
		strength, err := wuxing.ParseStrength(remedyStrength)
		if err != nil {
			return err
		}

		remedy, _ := pipeline.Remedy(e, strength)
		verb := "剋"
		if strength == wuxing.StrengthWeak {
			verb = "生"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) → 補%s (%s%s%s)\n", e, strength, remedy, remedy, verb, e)
		return nil
	},
}

// luckyCmd represents the lucky command
var luckyCmd = &cobra.Command{
	Use:   "lucky <element>",
	Short: "List lucky stroke counts whose last digit belongs to an element",
	Long: `Lucky lists the stroke counts that are auspicious in the 81 luck numbers
and whose last digit maps to the element (1,2 木; 3,4 火; 5,6 土; 7,8 金; 9,0 水).

Example:
  xingming lucky 水
  xingming lucky wood --max 30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := wuxing.Parse(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := tables.Load(cfg.Data)
		if err != nil {
			return err
		}

		limit := cfg.Diagnosis.LuckyStrokesMax
		if luckyMax > 0 {
			limit = luckyMax
		}
		if limit > numerology.LuckyStrokeLimit {
			return fmt.Errorf("--max %d exceeds %d", limit, numerology.LuckyStrokeLimit)
		}

		out := cmd.OutOrStdout()
		strokes := numerology.NewCalculator(t).LuckyStrokes(e, limit)
		if len(strokes) == 0 {
			fmt.Fprintln(out, "查無對應筆畫。")
		}
		for _, ls := range strokes {
			fmt.Fprintf(out, "%d 畫 (%s)：%s\n", ls.Strokes, ls.Luck.Label, ls.Luck.Desc)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remedyCmd)
	rootCmd.AddCommand(luckyCmd)

	remedyCmd.Flags().StringVar(&remedyStrength, "strength", "", "strong (default) or weak")
	luckyCmd.Flags().IntVar(&luckyMax, "max", 0, "largest stroke count (default from config)")
}
