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

// Isothermal is a plug-flow reactor held at its inlet temperature.
type Isothermal struct {
	*ConstArea
}

// NewIsothermal creates an isothermal reactor.
func NewIsothermal(cfg Config) (*Isothermal, error) {
	c, err := newConstArea(cfg, 3)
	if err != nil {
		return nil, err
	}
	return &Isothermal{ConstArea: c}, nil
}

// InitialConditions sets y to the inlet state and yp to the consistent
// derivatives.
func (r *Isothermal) InitialConditions(x0 float64, y, yp []float64) error {
	if err := r.initialState(y); err != nil {
		return err
	}
	return r.initialDerivatives(yp, 0)
}

// Residual evaluates the reactor equations.
func (r *Isothermal) Residual(x float64, y, yp, res []float64) error {
	return r.residual(x, y, yp, res, r.t0, 0)
}
