// Package extract turns chart exports (plain text or saved HTML pages) into
// the line-oriented text the chart segmenter reads.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements start and end a line of text
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "textarea": true, "th": true, "tr": true,
	"ul": true,
}

// skippedElements never contribute text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"head": true, "template": true,
}

// HTMLLines parses an HTML document and returns its visible text as lines
func HTMLLines(htmlContent string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}
	return NodeLines(doc), nil
}

// NodeLines returns the visible text below n as lines. Block elements and
// <br> end a line. Inside <pre> and <textarea> the original newlines are
// kept; elsewhere newlines inside text are treated as spaces. Blank lines
// are dropped.
func NodeLines(n *html.Node) []string {
	w := &lineWriter{}
	w.walk(n)
	w.flush()
	return w.lines
}

type lineWriter struct {
	lines []string
	cur   strings.Builder
	pre   int
}

func (w *lineWriter) flush() {
	line := strings.TrimRight(w.cur.String(), " \t")
	w.cur.Reset()
	if strings.TrimSpace(line) != "" {
		w.lines = append(w.lines, line)
	}
}

func (w *lineWriter) walk(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if n.Data == "br" {
			w.flush()
			return
		}
	case html.TextNode:
		w.text(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	preformatted := n.Type == html.ElementNode && (n.Data == "pre" || n.Data == "textarea")
	if block {
		w.flush()
	}
	if preformatted {
		w.pre++
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if preformatted {
		w.pre--
	}
	if block {
		w.flush()
	}
}

func (w *lineWriter) text(data string) {
	data = Normalize(data)
	if w.pre == 0 {
		data = strings.ReplaceAll(data, "\n", " ")
		if w.cur.Len() == 0 {
			data = strings.TrimLeft(data, " \t")
		}
		w.cur.WriteString(data)
		return
	}

	parts := strings.Split(data, "\n")
	for i, part := range parts {
		if i > 0 {
			w.flush()
		}
		w.cur.WriteString(part)
	}
}

// Normalize strips a byte order mark, unifies line endings to \n and turns
// non-breaking spaces into plain spaces
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\u00a0", " ")
}
