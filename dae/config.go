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

package dae

import "fmt"

// Config holds integrator settings.
type Config struct {
	// RelTol and AbsTol are the relative and absolute local error
	// tolerances.
	RelTol, AbsTol float64

	// MaxSteps is the maximum number of steps per call to Advance.
	MaxSteps int

	// InitialStep is the first step size to attempt. It is reduced if
	// the initial derivatives are large.
	InitialStep float64

	// MaxStep is the largest allowed step. Zero means no limit.
	MaxStep float64

	// MaxOrder is the highest BDF order to use, between 1 and 5.
	MaxOrder int

	// StopPosition is a position the integrator must not step past.
	// Zero means no limit.
	StopPosition float64
}

// DefaultConfig returns the default integrator settings.
func DefaultConfig() Config {
	return Config{
		RelTol:      1.e-9,
		AbsTol:      1.e-15,
		MaxSteps:    10000,
		InitialStep: 1.e-5,
		MaxOrder:    5,
	}
}

func (c Config) validate() error {
	switch {
	case !(c.RelTol >= 0) || !(c.AbsTol >= 0) || c.RelTol+c.AbsTol == 0:
		return fmt.Errorf("tolerances must be >= 0 and not both zero; have rtol=%g, atol=%g", c.RelTol, c.AbsTol)
	case c.MaxSteps <= 0:
		return fmt.Errorf("MaxSteps must be > 0; have %d", c.MaxSteps)
	case !(c.InitialStep > 0):
		return fmt.Errorf("InitialStep must be > 0; have %g", c.InitialStep)
	case c.MaxStep < 0:
		return fmt.Errorf("MaxStep must be >= 0; have %g", c.MaxStep)
	case c.MaxOrder < 1 || c.MaxOrder > 5:
		return fmt.Errorf("MaxOrder must be between 1 and 5; have %d", c.MaxOrder)
	case c.StopPosition < 0:
		return fmt.Errorf("StopPosition must be >= 0; have %g", c.StopPosition)
	}
	return nil
}

// Statistics holds integrator counters.
type Statistics struct {
	Steps               int     // accepted steps
	ResidualEvals       int     // residual evaluations, including for Jacobians
	JacobianEvals       int     // iteration matrix evaluations
	ErrorTestFailures   int     // steps rejected by the local error test
	ConvergenceFailures int     // steps rejected by the corrector
	LastOrder           int     // order of the last accepted step
	LastStep            float64 // size of the last accepted step
	NextStep            float64 // step size to be tried next
}
