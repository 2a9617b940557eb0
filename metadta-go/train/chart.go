package train

import (
	"os"

	chart "github.com/wcharczuk/go-chart"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// CurvesFile is the training-curve artifact name inside the run directory.
const CurvesFile = "curves.png"

// RenderCurves writes a loss/MAE-versus-epoch chart for a finished run.
func RenderCurves(path string, history []Point) error {
	if len(history) == 0 {
		return errors.Errorf("no epochs to chart")
	}

	epochs := make([]float64, len(history))
	series := map[string][]float64{
		"train loss": make([]float64, len(history)),
		"val loss":   make([]float64, len(history)),
		"train mae":  make([]float64, len(history)),
		"val mae":    make([]float64, len(history)),
	}
	for i, p := range history {
		epochs[i] = float64(p.Epoch)
		series["train loss"][i] = p.Train.Loss
		series["val loss"][i] = p.Valid.Loss
		series["train mae"][i] = p.Train.MAE
		series["val mae"][i] = p.Valid.MAE
	}

	var chartSeries []chart.Series
	for i, name := range []string{"train loss", "val loss", "train mae", "val mae"} {
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			Name:    name,
			XValues: epochs,
			YValues: series[name],
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetAlternateColor(i),
			},
		})
	}

	graph := chart.Chart{
		Title:      "Training Curves",
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Epoch",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Loss / MAE",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating chart %s", path)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		return errors.Wrapf(err, "rendering chart %s", path)
	}
	return errors.WrapfOrNil(f.Close(), "closing chart %s", path)
}
