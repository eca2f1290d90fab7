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

package pfrutil

import (
	"fmt"
	"os"

	"github.com/spatialmodel/pfr"
	"github.com/spatialmodel/pfr/gas"
)

// FilterMechanism writes to outFile a copy of the mechanism in inFile that
// only holds the given species and the reactions among them.
func FilterMechanism(inFile, outFile string, species []string) error {
	if len(species) == 0 {
		return fmt.Errorf("pfrutil: you need to specify the Species to keep in the filtered mechanism")
	}
	m, err := gas.LoadMechanism(inFile)
	if err != nil {
		return err
	}
	f, err := m.Filter(species)
	if err != nil {
		return err
	}
	w, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("pfrutil: creating filtered mechanism: %w", err)
	}
	if err := f.Write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Dimensionless returns the dimensionless numbers at the inlet of the
// reactor specified by c. For the heat wall model the Grashof number uses
// the difference between the inlet wall and gas temperatures; otherwise
// it is zero.
func Dimensionless(c *Config) (pfr.Numbers, error) {
	r, err := NewReactor(c, nil)
	if err != nil {
		return pfr.Numbers{}, err
	}
	tube := r.Tube()
	var deltaT float64
	if w, ok := r.(*pfr.HeatWall); ok {
		deltaT = w.WallTemperature(0) - tube.InletTemperature()
	}
	return tube.Dimensionless(tube.InletVelocity(), deltaT, pfr.Properties{Viscosity: c.Viscosity})
}
