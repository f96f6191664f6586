package dashboard

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	chartWidth   = 420
	chartHeight  = 160
	chartPadding = 8
)

// BarChart renders the weekly totals as a small inline SVG. An all-zero
// week still produces the axis and labels.
func BarChart(days []DayTotal) template.HTML {
	if len(days) == 0 {
		return ""
	}

	var max int64 = 1
	for _, d := range days {
		if d.Total > max {
			max = d.Total
		}
	}

	barSpace := float64(chartWidth-2*chartPadding) / float64(len(days))
	barWidth := barSpace * 0.7
	plotHeight := float64(chartHeight - 2*chartPadding - 14)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img">`,
		chartWidth, chartHeight)
	for i, d := range days {
		h := plotHeight * float64(d.Total) / float64(max)
		x := float64(chartPadding) + float64(i)*barSpace + (barSpace-barWidth)/2
		y := float64(chartPadding) + plotHeight - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#16a34a"/>`,
			x, y, barWidth, h)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle">%s</text>`,
			x+barWidth/2, chartHeight-chartPadding, template.HTMLEscapeString(d.Label))
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
