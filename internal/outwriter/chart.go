package outwriter

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"

	"github.com/huangsam/sedwarp/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	curveColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	minimaColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// errNoCandidates is returned when a chart has nothing to draw.
var errNoCandidates = errors.New("no candidate distances to plot")

// distanceXYs converts ascending candidate entries into plot points.
func distanceXYs(entries []schema.DistanceEntry) plotter.XYs {
	pts := make(plotter.XYs, len(entries))
	for i, e := range entries {
		pts[i] = plotter.XY{X: e.Time, Y: e.Distance}
	}
	return pts
}

// minimaXYs returns the points of entries whose time is one of bestTimes.
func minimaXYs(entries []schema.DistanceEntry, bestTimes []float64) plotter.XYs {
	best := make(map[float64]struct{}, len(bestTimes))
	for _, t := range bestTimes {
		best[t] = struct{}{}
	}
	var pts plotter.XYs
	for _, e := range entries {
		if _, ok := best[e.Time]; ok {
			pts = append(pts, plotter.XY{X: e.Time, Y: e.Distance})
		}
	}
	return pts
}

// WriteDistanceChart renders distance versus candidate time with the minima
// marked. The image format follows the file extension (png or svg).
func WriteDistanceChart(path, title string, entries []schema.DistanceEntry, bestTimes []float64) error {
	if len(entries) == 0 {
		return errNoCandidates
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Cutoff time (ka)"
	p.Y.Label.Text = "DTW distance"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(distanceXYs(entries))
	if err != nil {
		return err
	}
	line.Color = curveColor
	line.Width = vg.Points(1.5)
	points.Color = curveColor
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(2)
	p.Add(line, points)

	if minima := minimaXYs(entries, bestTimes); len(minima) > 0 {
		marker, err := plotter.NewScatter(minima)
		if err != nil {
			return err
		}
		marker.Color = minimaColor
		marker.Shape = draw.CrossGlyph{}
		marker.Radius = vg.Points(6)
		p.Add(marker)
		p.Legend.Add("minimum", marker)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
