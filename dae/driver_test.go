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

import (
	"errors"
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// decay is y0′ = −y0 with the algebraic constraint y1 = y0².
type decay struct {
	fail  func(x float64) error
	panic bool
}

func (decay) NEquations() int { return 2 }

func (decay) InitialConditions(x0 float64, y, yp []float64) error {
	y[0], y[1] = 1, 1
	yp[0], yp[1] = -1, -2
	return nil
}

func (d decay) Residual(x float64, y, yp, r []float64) error {
	if d.panic && x > 0.5 {
		panic("residual panic")
	}
	if d.fail != nil {
		if err := d.fail(x); err != nil {
			return err
		}
	}
	r[0] = yp[0] + y[0]
	r[1] = y[1] - y[0]*y[0]
	return nil
}

func TestDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelTol = 1.e-8
	cfg.AbsTol = 1.e-12
	d, err := New(decay{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		x := 0.2 * float64(i)
		if err := d.Advance(x); err != nil {
			t.Fatal(err)
		}
		if d.Position() != x {
			t.Errorf("position: have %g, want %g", d.Position(), x)
		}
		y := d.Solution()
		if want := math.Exp(-x); different(y[0], want, 1.e-5) {
			t.Errorf("x=%g: y0: have %g, want %g", x, y[0], want)
		}
		if want := math.Exp(-2 * x); different(y[1], want, 1.e-5) {
			t.Errorf("x=%g: y1: have %g, want %g", x, y[1], want)
		}
		if want := -math.Exp(-x); different(d.Derivative()[0], want, 1.e-4) {
			t.Errorf("x=%g: y0': have %g, want %g", x, d.Derivative()[0], want)
		}
	}
	s := d.Stats()
	if s.Steps == 0 || s.ResidualEvals == 0 || s.JacobianEvals == 0 {
		t.Errorf("statistics not recorded: %+v", s)
	}
	if s.LastOrder < 2 {
		t.Errorf("order never increased: %+v", s)
	}
}

// stiff is y′ = −1000·(y − cos x), which has the smooth solution
// y ≈ cos x after a short transient.
type stiff struct{}

func (stiff) NEquations() int { return 1 }

func (stiff) InitialConditions(x0 float64, y, yp []float64) error {
	y[0] = 1
	yp[0] = 0
	return nil
}

func (stiff) Residual(x float64, y, yp, r []float64) error {
	r[0] = yp[0] + 1000*(y[0]-math.Cos(x))
	return nil
}

func TestStiff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelTol = 1.e-6
	cfg.AbsTol = 1.e-10
	cfg.MaxSteps = 500
	d, err := New(stiff{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(10); err != nil {
		t.Fatal(err)
	}
	// Particular solution including the lag from the finite rate.
	want := (1000*1000*math.Cos(10) + 1000*math.Sin(10)) / (1000*1000 + 1)
	if different(d.Solution()[0], want, 1.e-4) {
		t.Errorf("have %g, want %g", d.Solution()[0], want)
	}
}

func TestIllegalAdvance(t *testing.T) {
	d, err := New(decay{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(0.1); err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{0.1, 0.05} {
		err := d.Advance(x)
		if !errors.Is(err, ErrIllegalAdvance) {
			t.Errorf("x=%g: have error %v, want %v", x, err, ErrIllegalAdvance)
		}
		if Code(err) != IllegalInput {
			t.Errorf("have code %v, want %v", Code(err), IllegalInput)
		}
	}
}

func TestStopPosition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StopPosition = 1
	d, err := New(decay{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(1.5); Code(err) != IllegalInput {
		t.Errorf("have error %v, want code %v", err, IllegalInput)
	}
	if err := d.Advance(1); err != nil {
		t.Error(err)
	}
}

func TestTooMuchWork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 3
	d, err := New(decay{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	err = d.Advance(10)
	if Code(err) != TooMuchWork {
		t.Errorf("have error %v, want code %v", err, TooMuchWork)
	}
	if x := d.Position(); !(x > 0 && x < 10) {
		t.Errorf("position after failure: %g", x)
	}
}

func TestResidualFailure(t *testing.T) {
	errBad := errors.New("bad state")
	d, err := New(decay{fail: func(x float64) error {
		if x > 0.5 {
			return errBad
		}
		return nil
	}}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = d.Advance(1)
	if Code(err) != ResidualFailure {
		t.Errorf("have error %v, want code %v", err, ResidualFailure)
	}
	if !errors.Is(err, errBad) {
		t.Errorf("error %v does not wrap %v", err, errBad)
	}
	if x := d.Position(); x > 0.5 {
		t.Errorf("position %g is past the failure", x)
	}
}

func TestPanic(t *testing.T) {
	d, err := New(decay{panic: true}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Advance(1); Code(err) != Panicked {
		t.Errorf("have error %v, want code %v", err, Panicked)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.RelTol, c.AbsTol = 0, 0 },
		func(c *Config) { c.MaxSteps = 0 },
		func(c *Config) { c.InitialStep = 0 },
		func(c *Config) { c.MaxOrder = 6 },
		func(c *Config) { c.MaxStep = -1 },
	}
	for i, f := range bad {
		cfg := DefaultConfig()
		f(&cfg)
		if _, err := New(decay{}, cfg); Code(err) != IllegalInput {
			t.Errorf("case %d: have error %v, want code %v", i, err, IllegalInput)
		}
	}
}

func TestDerivativeWeights(t *testing.T) {
	// Constant step BDF2: y′ ≈ (3y_{n+1} − 4y_n + y_{n−1})/(2h).
	h := 0.1
	a := derivativeWeights([]float64{2 * h, h, 0})
	want := []float64{3 / (2 * h), -4 / (2 * h), 1 / (2 * h)}
	for i := range want {
		if different(a[i], want[i], 1.e-12) {
			t.Errorf("α%d: have %g, want %g", i, a[i], want[i])
		}
	}
	for k := 1; k <= 5; k++ {
		psi := make([]float64, k+1)
		for j := range psi {
			psi[j] = float64(j+1) * h
		}
		if c := errorConstant(k, h, psi); different(c, 1/float64(k+1), 1.e-12) {
			t.Errorf("order %d: have %g, want %g", k, c, 1/float64(k+1))
		}
	}
}
