/*
Copyright © 2019 the PFR authors.
This file is part of PFR.

PFR is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PFR is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PFR.  If not, see <http://www.gnu.org/licenses/>.
*/

package pfr

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotProfile writes a PNG line plot of the named variables of p against
// axial position. If no variables are named, the species are plotted.
func PlotProfile(w io.Writer, p *Profile, vars ...string) error {
	if len(vars) == 0 {
		vars = p.Names[:p.NSpecies]
	}
	plt := plot.New()
	plt.Title.Text = strings.Join(vars, ", ")
	plt.X.Label.Text = "x (m)"
	if len(vars) == 1 {
		if u, ok := variableUnits[vars[0]]; ok {
			plt.Y.Label.Text = fmt.Sprintf("%s (%s)", vars[0], u)
		}
	}
	lines := make([]interface{}, 0, 2*len(vars))
	for _, v := range vars {
		col, err := p.Column(v)
		if err != nil {
			return err
		}
		xy := make(plotter.XYs, len(col))
		for i, c := range col {
			xy[i].X = p.X[i]
			xy[i].Y = c
		}
		lines = append(lines, v, xy)
	}
	if err := plotutil.AddLines(plt, lines...); err != nil {
		return fmt.Errorf("pfr: plotting profile: %w", err)
	}
	wt, err := plt.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("pfr: plotting profile: %w", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return fmt.Errorf("pfr: plotting profile: %w", err)
	}
	return nil
}

// Plot returns a function that writes a plot of the named variables to w.
func Plot(w io.Writer, vars ...string) SimulationManipulator {
	return func(s *Simulation) error {
		return PlotProfile(w, s.Profile, vars...)
	}
}
