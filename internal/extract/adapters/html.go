package adapters

import (
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/xingming/internal/extract"
)

// chartGlyph is the tree connector that starts every palace header
const chartGlyph = "├"

// HTMLAdapter extracts chart text from saved web pages. Charting sites put
// the export in a <pre>, a <textarea> or an element marked with the
// "chart-export" class or a data-chart attribute; when one of those holds
// the chart only its text is used, otherwise the visible text of the
// whole page.
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle matches HTML content types and .html/.htm locations
func (a *HTMLAdapter) CanHandle(location string, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	if ct != "" {
		return false
	}

	loc := strings.ToLower(location)
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	switch path.Ext(loc) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Extract returns the chart text of an HTML page
func (a *HTMLAdapter) Extract(content []byte) (string, error) {
	doc, err := a.ParseHTML(string(content))
	if err != nil {
		return "", err
	}

	blocks := a.FindAll(doc, a.isChartBlock)

	var charts []string
	used := make(map[*html.Node]bool)
	for _, b := range blocks {
		if insideAny(b, used) || !strings.Contains(a.ExtractText(b), chartGlyph) {
			continue
		}
		used[b] = true
		charts = append(charts, strings.Join(extract.NodeLines(b), "\n"))
	}
	if len(charts) > 0 {
		return strings.Join(charts, "\n"), nil
	}

	return strings.Join(extract.NodeLines(doc), "\n"), nil
}

func (a *HTMLAdapter) isChartBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "pre", "textarea":
		return true
	}
	return a.HasClass(n, "chart-export") || a.GetAttribute(n, "data-chart") != ""
}

// insideAny reports whether an ancestor of n is in set
func insideAny(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}
