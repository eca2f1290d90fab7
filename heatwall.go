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
	"math"
)

// HeatWall is a plug-flow reactor that exchanges heat with a wall at a
// prescribed temperature profile.
type HeatWall struct {
	*ConstArea

	htc  float64
	wall WallTemperature

	// AdiabaticStart, if true, omits the wall heat flux from the initial
	// derivatives so the initial temperature slope is the adiabatic one.
	AdiabaticStart bool
}

// NewHeatWall creates a reactor with wall heat-transfer coefficient htc
// [W/m²/K] and wall temperature profile wall.
func NewHeatWall(cfg Config, htc float64, wall WallTemperature) (*HeatWall, error) {
	if !(htc >= 0) || math.IsInf(htc, 0) {
		return nil, fmt.Errorf("%w: heat transfer coefficient must be >= 0; have %g", ErrConstruction, htc)
	}
	if wall == nil {
		return nil, fmt.Errorf("%w: no wall temperature", ErrConstruction)
	}
	c, err := newConstArea(cfg, 4)
	if err != nil {
		return nil, err
	}
	return &HeatWall{ConstArea: c, htc: htc, wall: wall}, nil
}

// HeatTransferCoefficient returns the wall heat-transfer coefficient
// [W/m²/K].
func (r *HeatWall) HeatTransferCoefficient() float64 { return r.htc }

// WallTemperature returns the wall temperature [K] at position x.
func (r *HeatWall) WallTemperature(x float64) float64 { return r.wall(x) }

// WallHeatFlux returns the heat added through the wall per unit volume
// [W/m³] at position x and gas temperature t.
func (r *HeatWall) WallHeatFlux(x, t float64) float64 {
	return r.htc * 4 / r.diameter * (r.wall(x) - t)
}

// InitialConditions sets y to the inlet state and yp to the consistent
// derivatives.
func (r *HeatWall) InitialConditions(x0 float64, y, yp []float64) error {
	if err := r.initialState(y); err != nil {
		return err
	}
	var qw float64
	if !r.AdiabaticStart {
		qw = r.WallHeatFlux(x0, r.t0)
	}
	return r.initialDerivatives(yp, qw)
}

// Residual evaluates the reactor equations.
func (r *HeatWall) Residual(x float64, y, yp, res []float64) error {
	t := y[r.ns+offTemperature]
	return r.residual(x, y, yp, res, t, r.WallHeatFlux(x, t))
}
