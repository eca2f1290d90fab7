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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pfr"
	"github.com/spatialmodel/pfr/dae"
)

// initialStepReduction is the factor by which the initial step is reduced
// on each retry.
const initialStepReduction = 10

// newLogger returns a logger that writes to w and, if logFile is not
// empty, to logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Out = w
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("pfrutil: problem creating log file: %w", err)
	}
	log.Out = io.MultiWriter(w, f)
	return log, f.Close, nil
}

// retryable reports whether an integration that failed with err may
// succeed with a smaller initial step.
func retryable(err error) bool {
	var e *dae.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case dae.ErrorTestFailure, dae.ConvergenceFailure, dae.LinearSolveFailure, dae.ResidualFailure:
		return true
	default:
		return false
	}
}

// Simulate integrates the reactor specified by c along the tube and
// returns the resulting profile. If the integration fails with a numerical
// error, it is repeated up to c.Retries times with the initial step
// reduced by a factor of 10 each time. initFuncs are run after the
// simulation is initialized, for example to check output variables.
func Simulate(ctx context.Context, c *Config, log logrus.FieldLogger, initFuncs ...pfr.SimulationManipulator) (*pfr.Profile, error) {
	solver := c.Solver
	if solver.StopPosition == 0 {
		solver.StopPosition = c.Length
	}
	var profile *pfr.Profile
	var simErr error
	attempt := 0
	op := func() error {
		attempt++
		r, err := NewReactor(c, log)
		if err != nil {
			simErr = err
			return nil // Construction errors are not retried.
		}
		s := &pfr.Simulation{
			Reactor:      r,
			Solver:       solver,
			Positions:    pfr.UniformPositions(c.Length, c.OutputStep),
			InitFuncs:    append([]pfr.SimulationManipulator{pfr.ReportDerivatives("initial")}, initFuncs...),
			StepFuncs:    []pfr.SimulationManipulator{pfr.LogProgress()},
			CleanupFuncs: []pfr.SimulationManipulator{pfr.ReportDerivatives("final"), pfr.LogStatistics()},
			Log:          log,
		}
		if c.CheckTolerance > 0 {
			s.StepFuncs = append(s.StepFuncs, pfr.CheckInvariants(c.CheckTolerance))
		}
		if err := s.Init(); err != nil {
			simErr = err
			if retryable(err) {
				return err
			}
			return nil
		}
		if err := s.Run(ctx); err != nil {
			profile, simErr = s.Profile, err
			if retryable(err) {
				return err
			}
			return nil
		}
		profile, simErr = s.Profile, s.Cleanup()
		return nil
	}
	notify := func(err error, d time.Duration) {
		solver.InitialStep /= initialStepReduction
		log.WithFields(logrus.Fields{
			"attempt":     attempt,
			"initialStep": solver.InitialStep,
		}).Warnf("pfrutil: %v: retrying", err)
	}
	b := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(c.Retries))
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return profile, err
	}
	return profile, simErr
}

// writeOutputs writes the output and plot files specified by c.
func writeOutputs(c *Config, p *pfr.Profile) error {
	s := &pfr.Simulation{Profile: p}
	if c.OutputFile != "" {
		o, err := pfr.NewOutputter(c.OutputFile, c.OutputVariables, nil)
		if err != nil {
			return err
		}
		o.MoleFractions = c.MoleFractions
		if err := o.Output()(s); err != nil {
			return err
		}
	}
	if c.PlotFile != "" {
		f, err := os.Create(c.PlotFile)
		if err != nil {
			return fmt.Errorf("pfrutil: creating plot file: %w", err)
		}
		if err := pfr.Plot(f, c.PlotVariables...)(s); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}

// outputChecker returns a function that checks that the output variables
// of c can be calculated.
func outputChecker(c *Config) (pfr.SimulationManipulator, error) {
	if c.OutputFile == "" {
		return func(*pfr.Simulation) error { return nil }, nil
	}
	o, err := pfr.NewOutputter(c.OutputFile, c.OutputVariables, nil)
	if err != nil {
		return nil, err
	}
	return o.CheckOutputVars(), nil
}

// Run runs the simulation specified by c, logging to w and c.LogFile, and
// writes the results to c.OutputFile and c.PlotFile.
func Run(ctx context.Context, w io.Writer, c *Config) error {
	startTime := time.Now()
	log, closeLog, err := newLogger(w, c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	check, err := outputChecker(c)
	if err != nil {
		return err
	}
	p, err := Simulate(ctx, c, log, check)
	if err != nil {
		if p != nil && p.Len() > 1 {
			// Keep what was calculated before the failure.
			if werr := writeOutputs(c, p); werr != nil {
				log.WithError(werr).Error("pfrutil: writing partial results")
			}
		}
		return err
	}
	if err := writeOutputs(c, p); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"outputFile": c.OutputFile,
		"positions":  p.Len(),
		"walltime":   time.Since(startTime),
	}).Info("pfrutil: simulation complete")
	return nil
}

// ExitCode returns the process exit code for err: 0 if err is nil, -99 if
// the integrator panicked and -1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *dae.Error
	if errors.As(err, &e) && e.Code == dae.Panicked {
		return -99
	}
	return -1
}
