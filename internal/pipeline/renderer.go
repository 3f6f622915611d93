package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/xingming/internal/llm"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/worker"
)

const (
	banner    = "══════════════════════════════════════════"
	separator = "------------------------------"
)

// Renderer writes reports as JSON, YAML or a terminal summary
type Renderer struct {
	out     io.Writer
	verbose bool
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, verbose bool) *Renderer {
	return &Renderer{out: out, verbose: verbose}
}

// RenderJSON writes v as indented JSON to path, or to the output when path
// is "-"
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderYAML writes v as YAML to the output
func (r *Renderer) RenderYAML(v any) error {
	data, err := MarshalYAML(v)
	if err != nil {
		return err
	}
	_, err = r.out.Write(data)
	return err
}

// MarshalYAML renders v as block-style YAML with the same keys and key
// order as its JSON encoding
func MarshalYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert to YAML: %w", err)
	}
	clearStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("marshal YAML: %w", err)
	}
	return out, nil
}

// clearStyle drops the flow and quoting styles inherited from JSON
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// Render writes report in the given format: "json", "yaml" or "summary"
func (r *Renderer) Render(report *model.Report, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return r.RenderJSON(report, "-")
	case "yaml", "yml":
		return r.RenderYAML(report)
	case "", "summary", "text":
		r.RenderSummary(report)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s (supported: summary, yaml, json)", format)
	}
}

// RenderSummary prints the human-readable report
func (r *Renderer) RenderSummary(report *model.Report) {
	w := r.out

	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "【姓名吉凶檢測報告】")
	if report.Gender != "" {
		fmt.Fprintf(w, "命主：%s (%s)\n", report.Subject, report.Gender)
	} else {
		fmt.Fprintf(w, "命主：%s\n", report.Subject)
	}
	fmt.Fprintf(w, "產生時間：%s\n", report.GeneratedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintln(w, banner)

	r.renderDiagnosis(report)

	if n := report.Name; n != nil {
		fmt.Fprintln(w, separator)
		r.renderName(n, report)
	}

	if report.Name != nil || len(report.Recommendations) > 0 {
		fmt.Fprintln(w, separator)
		fmt.Fprintln(w, "[正式命名架構推薦]")
		if len(report.Recommendations) == 0 {
			fmt.Fprintln(w, "查無適合組合。")
		}
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "方案 %d：總格 %d 畫 (%s)\n", rec.Rank, rec.Total, rec.TotalLuck.Label)
			fmt.Fprintf(w, "  - 結構：姓 %d + 名一 %d(建議屬%s) + 名二 %d\n", rec.SurnameStrokes, rec.Given1Strokes, rec.Given1Element, rec.Given2Strokes)
			fmt.Fprintf(w, "  - 總格運勢：%s\n", rec.TotalLuck.Desc)
			fmt.Fprintf(w, "  - 三才配置：%s (%s) %s\n", rec.Sancai.Pattern, rec.Sancai.Label, rec.Sancai.Desc)
		}

		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "[旺運別名建議 (補%s)]\n", report.Selection.Element)
		if len(report.LuckyStrokes) == 0 {
			fmt.Fprintln(w, "查無對應筆畫。")
		}
		for _, ls := range report.LuckyStrokes {
			fmt.Fprintf(w, "%d 畫 (%s)：%s\n", ls.Strokes, ls.Luck.Label, ls.Luck.Desc)
		}
	}

	if text := llm.RenderText(report.Commentary); text != "" {
		fmt.Fprintln(w, separator)
		fmt.Fprint(w, text)
	} else if c := report.Commentary; c != nil {
		for _, warning := range c.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", warning)
		}
	}

	fmt.Fprintln(w, banner)
}

func (r *Renderer) renderDiagnosis(report *model.Report) {
	w := r.out
	sel := report.Selection

	fmt.Fprintln(w, "[先天診斷]")
	if src := report.Source; src != nil && r.verbose {
		fmt.Fprintf(w, "命盤來源：%s %s (%s)\n", src.Kind, src.Location, src.Adapter)
	}
	fmt.Fprintf(w, "災宮 (煞星集中)：%s%s\n", sel.Palace, originNote(sel.PalaceOrigin))
	fmt.Fprintf(w, "喜用神 (需補強五行)：%s%s\n", sel.Element, originNote(sel.ElementOrigin))

	if d := report.Diagnosis; d != nil {
		fmt.Fprintf(w, "診斷依據：\n%s\n", d.Report)
		if d.BranchDefaulted {
			fmt.Fprintf(w, "⚠ 地支「%s」無法辨識，宮位五行以土計算\n", d.Branch)
		}
		if d.ElementDefaulted {
			fmt.Fprintln(w, "⚠ 喜用神為預設值，未經剋制規則推得")
		}
		if r.verbose {
			for _, p := range d.Palaces {
				fmt.Fprintf(w, "  %s[%s] %d分 %s\n", p.Name, p.Branch, p.Score, strings.Join(p.Details, ", "))
			}
		}
	}
	if report.DiagnosisError != "" {
		fmt.Fprintf(w, "✗ 命盤解析失敗：%s\n", report.DiagnosisError)
	}
}

func (r *Renderer) renderName(n *model.NameAnalysis, report *model.Report) {
	w := r.out

	fmt.Fprintf(w, "[現有名字分析：%s%s]\n", n.Surname, n.GivenName)
	cells := make([]string, len(n.GridLuck))
	for i, g := range n.GridLuck {
		cells[i] = fmt.Sprintf("%s %d (%s)", g.Name, g.Value, g.Luck.Label)
	}
	if len(cells) == 5 {
		fmt.Fprintln(w, strings.Join(cells[:3], " | "))
		fmt.Fprintln(w, strings.Join(cells[3:], " | "))
	} else {
		fmt.Fprintln(w, strings.Join(cells, " | "))
	}

	if n.MatchesElement {
		fmt.Fprintf(w, "結果：人格五行 (%s) 符合喜用神！(吉)\n", n.PersonalityElement)
	} else {
		fmt.Fprintf(w, "結果：人格五行 (%s) 未補強喜用神 (%s)。\n", n.PersonalityElement, report.Selection.Element)
	}
	fmt.Fprintf(w, "三才配置：%s (%s) - %s\n", n.Sancai.Pattern, n.Sancai.Label, n.Sancai.Desc)

	if len(n.UnknownCharacters) > 0 {
		fmt.Fprintf(w, "⚠ 筆畫資料缺字：%s (以 0 畫計算)\n", strings.Join(n.UnknownCharacters, " "))
	}
}

func originNote(o model.SelectionOrigin) string {
	switch o {
	case model.OriginManual:
		return " (手動設定)"
	case model.OriginDefault:
		return " (預設)"
	}
	return ""
}

// RenderBatch prints one line per batch result followed by the totals
func (r *Renderer) RenderBatch(results []*worker.ChartResult) worker.BatchSummary {
	w := r.out
	for _, res := range results {
		switch {
		case res.Error != nil:
			fmt.Fprintf(w, "✗ %s: %v\n", res.Source, res.Error)
		case res.Report.Diagnosis == nil:
			fmt.Fprintf(w, "✗ %s: %s\n", res.Source, res.Report.DiagnosisError)
		default:
			d := res.Report.Diagnosis
			fmt.Fprintf(w, "✓ %s: %s (%d分) → %s\n", res.Source, d.Palace, d.Score, d.Element)
		}
	}

	s := worker.Summarize(results)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Total: %d | Succeeded: %d | Failed: %d\n", s.Total, s.Succeeded, s.Failed)
	return s
}
