package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/camera.bridge/internal/recording"
)

// WritePathPlot renders the recorded camera path (X/Z ground plane) to a
// PNG at path. gonum/plot writes the file itself, so this bypasses the
// FileSystem abstraction.
func WritePathPlot(path string, frames []recording.Frame) error {
	if len(frames) == 0 {
		return fmt.Errorf("no recording data to plot")
	}

	p := plot.New()
	p.Title.Text = "Camera path"
	p.X.Label.Text = "tx"
	p.Y.Label.Text = "tz"

	pts := make(plotter.XYs, len(frames))
	for i, f := range frames {
		pts[i].X = f.Tx
		pts[i].Y = f.Tz
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build path line: %w", err)
	}
	p.Add(line)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save path plot: %w", err)
	}
	return nil
}
