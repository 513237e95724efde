package trackers

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Smooth returns the moving average of data over the last window
// points. A window below 2 returns a copy of data.
func Smooth(data []float64, window int) []float64 {
	smoothed := make([]float64, len(data))
	if window < 2 {
		copy(smoothed, data)
		return smoothed
	}

	var sum float64
	for i, v := range data {
		sum += v
		n := i + 1
		if i >= window {
			sum -= data[i-window]
			n = window
		}
		smoothed[i] = sum / float64(n)
	}
	return smoothed
}

// Series is one named line of a plot
type Series struct {
	Name string
	Data []float64
}

// Plot draws each series, smoothed over window episodes, against the
// episode number and saves the figure as an image at filename. The
// image format is taken from the file extension.
func Plot(filename, title, ylabel string, window int, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = ylabel

	for i, s := range series {
		smoothed := Smooth(s.Data, window)
		points := make(plotter.XYs, len(smoothed))
		for j, v := range smoothed {
			points[j] = plotter.XY{X: float64(j + 1), Y: v}
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrapf(err, "plot: could not plot %q", s.Name)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return errors.Wrap(err, "plot")
	}
	return nil
}
