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
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pfr/dae"
)

// SimulationManipulator is a function that operates on a simulation.
type SimulationManipulator func(s *Simulation) error

// Simulation marches a reactor along the tube, stopping at each of
// Positions to record the state and run StepFuncs.
type Simulation struct {
	Reactor Reactor
	Solver  dae.Config

	// Positions are the axial positions [m] at which the state is
	// reported, in increasing order. The inlet is always reported.
	Positions []float64

	// InitFuncs run once after the driver is created, StepFuncs after
	// every reported position and CleanupFuncs once at the end.
	InitFuncs, StepFuncs, CleanupFuncs []SimulationManipulator

	// Driver and Profile are set by Init.
	Driver  *dae.Driver
	Profile *Profile

	// Log receives diagnostics. If nil, the logrus standard logger is used.
	Log logrus.FieldLogger

	start time.Time
}

// Init creates the integrator, records the inlet state and runs
// InitFuncs.
func (s *Simulation) Init() error {
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	s.start = time.Now()
	if len(s.Positions) == 0 {
		return fmt.Errorf("pfr: no output positions")
	}
	last := 0.
	for _, x := range s.Positions {
		if !(x > last) {
			return fmt.Errorf("pfr: output positions must be positive and increasing; have %v", s.Positions)
		}
		last = x
	}
	var err error
	if s.Driver, err = dae.New(s.Reactor, s.Solver); err != nil {
		return err
	}
	s.Profile = NewProfile(s.Reactor)
	s.Profile.Append(s.Driver.Position(), s.Driver.Solution())
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run advances the integrator through Positions. It checks ctx before
// each position.
func (s *Simulation) Run(ctx context.Context) error {
	for _, x := range s.Positions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Driver.Advance(x); err != nil {
			return err
		}
		s.Profile.Append(x, s.Driver.Solution())
		for _, f := range s.StepFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup runs CleanupFuncs.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// UniformPositions returns positions spaced dx apart up to and including
// length.
func UniformPositions(length, dx float64) []float64 {
	if !(length > 0) || !(dx > 0) {
		return nil
	}
	n := int(math.Ceil(length/dx - 1.e-9))
	x := make([]float64, n)
	for i := 0; i < n-1; i++ {
		x[i] = float64(i+1) * dx
	}
	x[n-1] = length
	return x
}

// Integrate runs r through positions with solver settings cfg and returns
// the resulting profile.
func Integrate(r Reactor, cfg dae.Config, positions []float64) (*Profile, error) {
	s := &Simulation{
		Reactor:   r,
		Solver:    cfg,
		Positions: positions,
		Log:       r.Tube().log,
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	if err := s.Run(context.Background()); err != nil {
		return s.Profile, err
	}
	return s.Profile, nil
}

// LogProgress returns a function that logs the simulation progress at
// debug level.
func LogProgress() SimulationManipulator {
	return func(s *Simulation) error {
		y := s.Driver.Solution()
		c := s.Reactor.Tube()
		st := s.Driver.Stats()
		s.Log.WithFields(logrus.Fields{
			"x":        s.Driver.Position(),
			"T":        s.Reactor.Temperature(y),
			"p":        y[c.ns+offPressure],
			"u":        y[c.ns+offVelocity],
			"steps":    st.Steps,
			"order":    st.LastOrder,
			"walltime": time.Since(s.start),
		}).Debug("pfr: position reached")
		return nil
	}
}

// CheckInvariants returns a function that checks that the density
// matches the equation of state and that the mass flow rate matches the
// inlet, both to within relative tolerance tol.
func CheckInvariants(tol float64) SimulationManipulator {
	return func(s *Simulation) error {
		c := s.Reactor.Tube()
		y := s.Driver.Solution()
		x := s.Driver.Position()
		rho := y[c.ns+offDensity]
		rhoGas, err := c.GasDensity(y)
		if err != nil {
			return fmt.Errorf("pfr: x=%g: %w", x, err)
		}
		if d := math.Abs(rho-rhoGas) / rho; !(d < tol) {
			return fmt.Errorf("pfr: x=%g: density %g differs from equation of state %g by %g", x, rho, rhoGas, d)
		}
		m0 := c.MassFlowRate()
		m := rho * y[c.ns+offVelocity] * c.area
		if d := math.Abs(m-m0) / m0; !(d < tol) {
			return fmt.Errorf("pfr: x=%g: mass flow rate %g differs from inlet %g by %g", x, m, m0, d)
		}
		return nil
	}
}

// ReportDerivatives returns a function that logs the current derivatives
// with the given label.
func ReportDerivatives(label string) SimulationManipulator {
	return func(s *Simulation) error {
		yp := s.Driver.Derivative()
		fields := make(logrus.Fields, len(yp)+1)
		for i, n := range s.Reactor.VariableNames() {
			fields["d"+n+"/dx"] = yp[i]
		}
		fields["x"] = s.Driver.Position()
		s.Log.WithFields(fields).Info("pfr: " + label + " derivatives")
		return nil
	}
}

// LogStatistics returns a function that logs the integrator statistics.
func LogStatistics() SimulationManipulator {
	return func(s *Simulation) error {
		st := s.Driver.Stats()
		s.Log.WithFields(logrus.Fields{
			"steps":               st.Steps,
			"residualEvals":       st.ResidualEvals,
			"jacobianEvals":       st.JacobianEvals,
			"errorTestFailures":   st.ErrorTestFailures,
			"convergenceFailures": st.ConvergenceFailures,
			"lastOrder":           st.LastOrder,
			"lastStep":            st.LastStep,
			"walltime":            time.Since(s.start),
		}).Info("pfr: integration statistics")
		return nil
	}
}

// WriteProfile returns a function that writes the profile to w as CSV. If
// moleFractions is true species are reported as mole fractions.
func WriteProfile(w io.Writer, moleFractions bool) SimulationManipulator {
	return func(s *Simulation) error {
		p := s.Profile
		if moleFractions {
			p = p.MoleFractions()
		}
		return p.WriteCSV(w)
	}
}

// SaveProfile returns a function that saves the profile to w in gob
// format.
func SaveProfile(w io.Writer) SimulationManipulator {
	return func(s *Simulation) error {
		return s.Profile.Save(w)
	}
}
