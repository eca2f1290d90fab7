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

	"github.com/spatialmodel/pfr/gas"
	"gonum.org/v1/gonum/mat"
)

// initialState writes the inlet state to y and sets the gas to it.
func (c *ConstArea) initialState(y []float64) error {
	copy(y, c.y0)
	y[c.ns+offVelocity] = c.u0
	y[c.ns+offDensity] = c.rho0
	y[c.ns+offPressure] = c.p0
	if c.energy() {
		y[c.ns+offTemperature] = c.t0
	}
	return c.setState(y, c.t0)
}

// initialDerivatives solves the linearized equations at the inlet for the
// derivatives consistent with the inlet state. qw is the wall heat flux
// [W/m³] included in the energy equation. The gas must be at the inlet
// state.
func (c *ConstArea) initialDerivatives(yp []float64, qw float64) error {
	n, ns := c.neq, c.ns
	i0, i1, i2, i3 := ns+offVelocity, ns+offDensity, ns+offPressure, ns+offTemperature

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	ru := c.rho0 * c.u0
	wbar := c.gas.MeanMolecularWeight()
	c.gas.NetProductionRates(c.wdot)

	// Species.
	for k := 0; k < ns; k++ {
		a.Set(k, k, ru)
		b.SetVec(k, c.wdot[k]*c.mw[k])
		a.Set(i2, k, c.p0*wbar*wbar/c.mw[k])
	}

	// Continuity.
	a.Set(i0, i0, c.rho0)
	a.Set(i0, i1, c.u0)

	// Momentum.
	loss, err := c.ViscousLoss(c.u0)
	if err != nil {
		return err
	}
	a.Set(i1, i0, ru)
	a.Set(i1, i2, 1)
	b.SetVec(i1, -loss)

	// Equation of state.
	a.Set(i2, i1, gas.GasConstant*c.t0)
	a.Set(i2, i2, -wbar)

	if c.energy() {
		a.Set(i2, i3, c.rho0*gas.GasConstant)
		a.Set(i3, i3, ru*c.gas.CpMass())
		b.SetVec(i3, -c.heatRelease()+qw)
	}

	var lu mat.LU
	lu.Factorize(a)
	var x mat.VecDense
	// A mat.Condition error means the condition number is above
	// mat.ConditionTolerance.
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return fmt.Errorf("%w: %w", ErrSingularInitialSystem, err)
	}
	for i := range yp {
		yp[i] = x.AtVec(i)
		if math.IsNaN(yp[i]) || math.IsInf(yp[i], 0) {
			return fmt.Errorf("%w: derivative of %s is %g", ErrSingularInitialSystem, c.VariableNames()[i], yp[i])
		}
	}
	return nil
}
