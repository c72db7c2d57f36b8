package svg

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/egandro/go-affinity/pkg/cpuinfo"
)

const (
	cellWidth       = 72
	cellHeight      = 48
	paddingTop      = 100
	basePaddingLeft = 90
	paddingBottom   = 60
	defaultColumns  = 8
)

// New prepares a report. columns is the maximum number of cells per row; zero picks a default.
func New(results []cpuinfo.CoreResult, title string, columns int) *Report {
	if columns <= 0 {
		columns = defaultColumns
	}
	sorted := make([]cpuinfo.CoreResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Socket != sorted[j].Socket {
			return sorted[i].Socket < sorted[j].Socket
		}
		return sorted[i].CPU < sorted[j].CPU
	})

	r := &Report{
		results: sorted,
		stats:   cpuinfo.Summarize(sorted),
		title:   title,
		columns: columns,
	}
	r.dims = r.calculateDimensions()
	return r
}

// layout assigns every result a grid position. A new socket always starts a new row.
func (r *Report) layout() (rows, cols []int) {
	rows = make([]int, len(r.results))
	cols = make([]int, len(r.results))
	row, col := 0, 0
	for i, res := range r.results {
		if i > 0 && (col == r.columns || res.Socket != r.results[i-1].Socket) {
			row++
			col = 0
		}
		rows[i], cols[i] = row, col
		col++
	}
	return rows, cols
}

func (r *Report) calculateDimensions() reportDimensions {
	var dims reportDimensions

	rows, _ := r.layout()
	if len(rows) > 0 {
		dims.rows = rows[len(rows)-1] + 1
	}

	usedCols := r.columns
	if len(r.results) < usedCols {
		usedCols = len(r.results)
	}

	// Title is ~12px per char at 20px bold, stats ~8px per char at 14px.
	reqTextW := len(r.title) * 12
	if statsW := len(r.statisticsText()) * 8; statsW > reqTextW {
		reqTextW = statsW
	}
	reqTextW += 40

	dims.paddingLeft = basePaddingLeft
	reqGridW := dims.paddingLeft + usedCols*cellWidth + 20

	dims.width = reqGridW
	if reqTextW > dims.width {
		dims.width = reqTextW
		dims.paddingLeft += (dims.width - reqGridW) / 2
	}
	dims.height = paddingTop + dims.rows*cellHeight + paddingBottom
	return dims
}

func (r *Report) specsText() string {
	return fmt.Sprintf("%d of %d CPUs pinned | %d %s", r.stats.PinnedCount, r.stats.CPUCount,
		r.stats.SocketCount, plural(r.stats.SocketCount, "Socket", "Sockets"))
}

func (r *Report) statisticsText() string {
	if r.stats.PinnedCount == 0 {
		return "No CPU could be pinned"
	}
	return fmt.Sprintf("Fastest: CPU %d (%s) | Slowest: CPU %d (%s) | Mean: %s | Spread: %.2fx",
		r.stats.Fastest.CPU, formatNS(r.stats.Fastest.LoopNS),
		r.stats.Slowest.CPU, formatNS(r.stats.Slowest.LoopNS),
		formatNS(r.stats.MeanLoopNS), r.stats.Spread)
}

// Generate renders the report.
func (r *Report) Generate() (string, error) {
	if len(r.results) == 0 {
		return "", fmt.Errorf("no probe results available")
	}

	data := svgData{
		Width:   r.dims.width,
		Height:  r.dims.height,
		CenterX: r.dims.width / 2,
		Title:   escape(r.title),
		Specs:   r.specsText(),
		Stats:   r.statisticsText(),
		LegendY: paddingTop + r.dims.rows*cellHeight + 20,
	}

	for i, c := range palette {
		data.LegendStops = append(data.LegendStops, legendStop{
			Offset: fmt.Sprintf("%d%%", i*100/(len(palette)-1)),
			Color:  c.String(),
		})
	}

	rows, cols := r.layout()
	span := r.stats.Slowest.LoopNS - r.stats.Fastest.LoopNS

	for i, res := range r.results {
		x := r.dims.paddingLeft + cols[i]*cellWidth
		y := paddingTop + rows[i]*cellHeight

		if i == 0 || res.Socket != r.results[i-1].Socket {
			data.SocketLabels = append(data.SocketLabels, svgLabel{
				X:    r.dims.paddingLeft - 10,
				Y:    y + cellHeight/2,
				Text: fmt.Sprintf("Socket %d", res.Socket),
			})
		}

		cell := svgCell{
			X:         x,
			Y:         y,
			Width:     cellWidth,
			Height:    cellHeight,
			Fill:      unpinnedFill,
			TextColor: unpinnedText,
			Label:     fmt.Sprintf("CPU %d", res.CPU),
			Value:     "n/a",
			TextX:     x + cellWidth/2,
			LabelY:    y + cellHeight/2 - 4,
			ValueY:    y + cellHeight/2 + 12,
			Tooltip:   escape(fmt.Sprintf("CPU %d (socket %d, core %d): %s", res.CPU, res.Socket, res.Core, res.Error)),
		}

		if res.Pinned {
			ratio := 0.0
			if span > 0 {
				ratio = (res.LoopNS - r.stats.Fastest.LoopNS) / span
			}
			c, tc := cellColor(ratio)
			cell.Fill = c.String()
			cell.TextColor = tc
			cell.Value = formatNS(res.LoopNS)
			cell.Tooltip = fmt.Sprintf("CPU %d (socket %d, core %d): %s ± %s",
				res.CPU, res.Socket, res.Core, formatNS(res.LoopNS), formatNS(res.StdDev))
		}

		data.Cells = append(data.Cells, cell)
	}

	tmpl, err := template.New("svg").Parse(svgTemplateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse SVG template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute SVG template: %w", err)
	}
	return buf.String(), nil
}

// formatNS picks a unit so that at most four digits are shown.
func formatNS(ns float64) string {
	switch {
	case ns >= 1e9:
		return fmt.Sprintf("%.2f s", ns/1e9)
	case ns >= 1e6:
		return fmt.Sprintf("%.2f ms", ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.1f µs", ns/1e3)
	default:
		return fmt.Sprintf("%.0f ns", ns)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return escaper.Replace(s)
}

//go:embed templates/report.svg.tmpl
var svgTemplateStr string
