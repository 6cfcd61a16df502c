package viz

import (
	"errors"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PlotPopulation draws the population curve with the half threshold as a
// second series.
func PlotPopulation(rec *Recorder, threshold int, width, height int, caption string) string {
	values := rec.Values()
	if len(values) == 0 {
		return ""
	}
	line := make([]float64, len(values))
	for i := range line {
		line[i] = float64(threshold)
	}

	return asciigraph.PlotMany([][]float64{values, line},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// WritePNG renders the population curve, the half threshold and the
// analytic half-life marker as a PNG chart.
func WritePNG(w io.Writer, rec *Recorder, threshold int, expected float64, unit string) error {
	if rec.Len() < 2 {
		return errors.New("viz: need at least two samples to chart")
	}

	last := rec.Times[len(rec.Times)-1]
	top := float64(rec.Counts[0])

	graph := chart.Chart{
		Title: "Undecayed nuclei",
		XAxis: chart.XAxis{
			Name: fmt.Sprintf("time [%s]", unit),
		},
		YAxis: chart.YAxis{
			Name:  "undecayed",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "population",
				XValues: rec.Times,
				YValues: rec.Values(),
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
			chart.ContinuousSeries{
				Name:    "half threshold",
				XValues: []float64{0, last},
				YValues: []float64{float64(threshold), float64(threshold)},
				Style: chart.Style{
					StrokeColor:     chart.ColorRed,
					StrokeDashArray: []float64{5, 5},
				},
			},
			chart.ContinuousSeries{
				Name:    "ln2/λ",
				XValues: []float64{expected, expected},
				YValues: []float64{0, top},
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
