// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plotcmd implements a command to plot
// the convergence diagnostics of a sampling run.
package plotcmd

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/phycon/exabayes/infofile"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `plot [-o|--output <out-prefix>]
	<info-file>...`,
	Short: "plot the convergence diagnostics of sampling runs",
	Long: `
Command plot reads one or more information files written by the ExaBayes
sampler, and draws the average (ASDSF) and maximum (MSDSF) standard deviation
of split frequencies against the sampled generation, as a PNG file with a
logarithmic vertical scale. As a rule of thumb, an analysis with an ASDSF
under 1% can be considered as converged.

The arguments of the command are the names of the information files. One plot
file will be created for each argument, named after the run with the ".png"
extension. Use the flag -o, or --output, to add a prefix to the resulting
files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting information file")
	}

	for _, a := range args {
		if err := plotFile(a); err != nil {
			return err
		}
	}
	return nil
}

func plotFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	rn := strings.TrimPrefix(filepath.Base(name), "ExaBayes_info.")
	run, err := infofile.Read(f, rn)
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}

	var avg, max plotter.XYs
	for _, r := range run.Records {
		// zero values can not be drawn
		// on a logarithmic scale
		if r.ASDSF <= 0 || r.MSDSF <= 0 {
			continue
		}
		avg = append(avg, plotter.XY{X: float64(r.Gen), Y: r.ASDSF})
		max = append(max, plotter.XY{X: float64(r.Gen), Y: r.MSDSF})
	}
	if len(avg) == 0 {
		return fmt.Errorf("on file %q: no split frequency deviations reported", name)
	}

	p := plot.New()
	p.Title.Text = run.Name
	p.X.Label.Text = "generation"
	p.Y.Label.Text = "split frequency deviation (%)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	al, err := plotter.NewLine(avg)
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	al.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	ml, err := plotter.NewLine(max)
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	ml.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}

	p.Add(al, ml, plotter.NewGrid())
	p.Legend.Add("ASDSF", al)
	p.Legend.Add("MSDSF", ml)
	p.Legend.Top = true

	out := outPrefix + run.Name + ".png"
	if err := p.Save(10*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("while saving plot %q: %v", out, err)
	}
	return nil
}
