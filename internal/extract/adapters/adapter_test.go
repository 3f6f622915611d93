package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FindAdapter(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		location    string
		contentType string
		expected    string
	}{
		{"chart.html", "", "html"},
		{"https://example.com/chart.HTM?id=3", "", "html"},
		{"https://example.com/export", "text/html; charset=utf-8", "html"},
		{"chart.html", "text/plain", "plain"},
		{"chart.txt", "", "plain"},
		{"-", "", "plain"},
	}

	for _, tt := range tests {
		got := r.FindAdapter(tt.location, tt.contentType).Name()
		if got != tt.expected {
			t.Errorf("Expected %s adapter for (%q, %q), got %s", tt.expected, tt.location, tt.contentType, got)
		}
	}

	assert.Equal(t, []string{"html", "plain"}, r.Names())
}

func TestPlainAdapter_Extract(t *testing.T) {
	a := NewPlainAdapter()

	text, err := a.Extract([]byte("\ufeff├命宮[甲子]\r\n化忌\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "├命宮[甲子]\n化忌\n", text)

	_, err = a.Extract([]byte{0xff, 0xfe, 0x00})
	assert.Error(t, err)
}

func TestHTMLAdapter_PrefersChartBlock(t *testing.T) {
	page := `<html><body>
		<nav>首頁 | 排盤 | 化忌說明</nav>
		<pre>├命宮[甲子]
  化忌
├兄弟宮[乙丑]
  擎羊</pre>
		<pre>console.log("not a chart")</pre>
		<footer>地空地劫解說</footer>
	</body></html>`

	text, err := NewHTMLAdapter().Extract([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "├命宮[甲子]\n  化忌\n├兄弟宮[乙丑]\n  擎羊", text)
}

func TestHTMLAdapter_TextareaExport(t *testing.T) {
	page := `<form><textarea name="chart">├疾厄宮[丙辰]
│ 化忌 擎羊</textarea></form>`

	text, err := NewHTMLAdapter().Extract([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "├疾厄宮[丙辰]\n│ 化忌 擎羊", text)
}

func TestHTMLAdapter_FallsBackToVisibleText(t *testing.T) {
	page := `<div>├命宮[甲子]</div><div>化忌</div>`

	text, err := NewHTMLAdapter().Extract([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "├命宮[甲子]\n化忌", text)
}

func TestHTMLAdapter_MarkedChartContainer(t *testing.T) {
	page := `<html><body>
		<p>說明：├ 代表宮位</p>
		<div class="panel chart-export"><span>├命宮[甲子]</span><br><span>化忌</span><pre>├兄弟宮[乙丑]</pre></div>
		<section data-chart="2">├疾厄宮[丙辰]</section>
	</body></html>`

	text, err := NewHTMLAdapter().Extract([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "├命宮[甲子]\n化忌\n├兄弟宮[乙丑]\n├疾厄宮[丙辰]", text)
}
