package svg

import "github.com/egandro/go-affinity/pkg/cpuinfo"

// Report renders probe results as a grid of CPU cells.
type Report struct {
	results []cpuinfo.CoreResult
	stats   cpuinfo.ProbeStats
	title   string
	columns int

	dims reportDimensions
}

type svgLabel struct {
	X, Y int
	Text string
}

type svgCell struct {
	X, Y, Width, Height int
	Fill, TextColor     string
	Label, Value        string
	TextX, LabelY       int
	ValueY              int
	Tooltip             string
}

type svgData struct {
	Width, Height, CenterX int
	Title, Specs, Stats    string
	SocketLabels           []svgLabel
	Cells                  []svgCell
	LegendY                int
	LegendStops            []legendStop
}

type legendStop struct {
	Offset string
	Color  string
}

type reportDimensions struct {
	width       int
	height      int
	paddingLeft int
	rows        int
}
