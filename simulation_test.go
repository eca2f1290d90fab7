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
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/pfr/dae"
)

func TestUniformPositions(t *testing.T) {
	for _, c := range []struct {
		length, dx float64
		want       []float64
	}{
		{1, 0.25, []float64{0.25, 0.5, 0.75, 1}},
		{1, 0.3, []float64{0.3, 0.6, 0.8999999999999999, 1}},
		{0.5, 1, []float64{0.5}},
		{0, 1, nil},
		{1, -1, nil},
	} {
		if have := UniformPositions(c.length, c.dx); !reflect.DeepEqual(have, c.want) {
			t.Errorf("length %g, dx %g: have %v, want %v", c.length, c.dx, have, c.want)
		}
	}
	x := UniformPositions(0.4, 0.01)
	if len(x) != 40 || x[39] != 0.4 {
		t.Errorf("have %d positions ending at %g", len(x), x[len(x)-1])
	}
}

func TestSimulationPositions(t *testing.T) {
	r, err := NewIsothermal(testConfig("N2:1", 1173, 5000))
	if err != nil {
		t.Fatal(err)
	}
	for _, pos := range [][]float64{nil, {0, 0.1}, {0.2, 0.1}, {0.1, 0.1}} {
		s := &Simulation{Reactor: r, Solver: dae.DefaultConfig(), Positions: pos}
		if err := s.Init(); err == nil {
			t.Errorf("positions %v should cause an error", pos)
		}
	}
	s := &Simulation{Reactor: r, Solver: dae.Config{}, Positions: []float64{0.1}}
	if err := s.Init(); dae.Code(err) != dae.IllegalInput {
		t.Errorf("invalid solver settings: have error %v", err)
	}
}

func TestSimulationManipulators(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r, err := NewAdiabatic(testConfig(reactingMix, 1173, 5000))
	if err != nil {
		t.Fatal(err)
	}
	var csvOut, gobOut, png bytes.Buffer
	var steps int
	s := &Simulation{
		Reactor:   r,
		Solver:    dae.DefaultConfig(),
		Positions: UniformPositions(0.2, 0.05),
		InitFuncs: []SimulationManipulator{ReportDerivatives("inlet")},
		StepFuncs: []SimulationManipulator{
			LogProgress(),
			CheckInvariants(1.e-6),
			func(s *Simulation) error {
				steps++
				return nil
			},
		},
		CleanupFuncs: []SimulationManipulator{
			LogStatistics(),
			WriteProfile(&csvOut, true),
			SaveProfile(&gobOut),
			Plot(&png, "T"),
		},
		Log: logger,
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if steps != 4 || s.Profile.Len() != 5 {
		t.Errorf("have %d steps and %d positions", steps, s.Profile.Len())
	}
	var progress, stats, derivs int
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "pfr: position reached":
			progress++
		case "pfr: integration statistics":
			stats++
			if e.Data["steps"].(int) <= 0 {
				t.Errorf("statistics: %v", e.Data)
			}
		case "pfr: inlet derivatives":
			derivs++
			if v, ok := e.Data["dT/dx"].(float64); !ok || !(v > 0) {
				t.Errorf("inlet temperature derivative: %v", e.Data["dT/dx"])
			}
		}
	}
	if progress != 4 || stats != 1 || derivs != 1 {
		t.Errorf("log messages: %d progress, %d statistics, %d derivatives", progress, stats, derivs)
	}
	if !strings.HasPrefix(csvOut.String(), "N2,H2,") {
		t.Errorf("CSV output starts with %q", csvOut.String()[:10])
	}
	p, err := LoadProfile(&gobOut)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p, s.Profile) {
		t.Error("saved profile differs")
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Error("plot is not a PNG image")
	}
}

func TestCheckInvariantsViolation(t *testing.T) {
	r, err := NewIsothermal(testConfig("N2:1", 1173, 5000))
	if err != nil {
		t.Fatal(err)
	}
	s := &Simulation{
		Reactor:   r,
		Solver:    dae.DefaultConfig(),
		Positions: []float64{0.1},
		StepFuncs: []SimulationManipulator{
			func(s *Simulation) error {
				s.Driver.Solution()[r.NSpecies()+offVelocity] *= 1.01
				return nil
			},
			CheckInvariants(1.e-6),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "mass flow rate") {
		t.Errorf("have error %v, want mass flow rate violation", err)
	}
}

func TestSimulationCanceled(t *testing.T) {
	r, err := NewIsothermal(testConfig("N2:1", 1173, 5000))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Simulation{
		Reactor:   r,
		Solver:    dae.DefaultConfig(),
		Positions: UniformPositions(0.4, 0.1),
		StepFuncs: []SimulationManipulator{
			func(s *Simulation) error {
				cancel()
				return nil
			},
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("have error %v, want %v", err, context.Canceled)
	}
	if s.Profile.Len() != 2 {
		t.Errorf("have %d positions after cancellation, want 2", s.Profile.Len())
	}
}

func TestIntegratePartialProfile(t *testing.T) {
	r, err := NewAdiabatic(testConfig(reactingMix, 1173, 5000))
	if err != nil {
		t.Fatal(err)
	}
	cfg := dae.DefaultConfig()
	cfg.MaxSteps = 5
	p, err := Integrate(r, cfg, UniformPositions(0.4, 0.1))
	if dae.Code(err) != dae.TooMuchWork {
		t.Fatalf("have error %v, want code %v", err, dae.TooMuchWork)
	}
	if p == nil || p.Len() < 1 || p.X[0] != 0 {
		t.Fatalf("partial profile: %+v", p)
	}
	for _, x := range p.X {
		if math.IsNaN(x) {
			t.Errorf("invalid position in partial profile: %v", p.X)
		}
	}
}
