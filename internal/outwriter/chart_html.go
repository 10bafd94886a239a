package outwriter

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/sedwarp/schema"
)

// WriteDistanceHTML renders an interactive distance-versus-time chart to an HTML file.
func WriteDistanceHTML(path, title string, entries []schema.DistanceEntry, bestTimes []float64) error {
	if len(entries) == 0 {
		return errNoCandidates
	}
	return writeFile(path, func(w io.Writer) error {
		return renderDistanceHTML(w, title, entries, bestTimes)
	})
}

func renderDistanceHTML(w io.Writer, title string, entries []schema.DistanceEntry, bestTimes []float64) error {
	curve := make([]opts.LineData, len(entries))
	for i, e := range entries {
		curve[i] = opts.LineData{Value: []any{e.Time, e.Distance}}
	}

	minima := minimaXYs(entries, bestTimes)
	marks := make([]opts.ScatterData, len(minima))
	for i, pt := range minima {
		marks[i] = opts.ScatterData{Value: []any{pt.X, pt.Y}, SymbolSize: 14}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "960px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "DTW distance per reference cutoff"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Cutoff time (ka)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "DTW distance", NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.AddSeries("distance", curve, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))

	scatter := charts.NewScatter()
	scatter.AddSeries("minimum", marks, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d62728"}))
	line.Overlap(scatter)

	return line.Render(w)
}
