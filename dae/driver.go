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

// Package dae integrates implicit differential-algebraic equation systems
// F(x, y, y′) = 0 of index one using variable-order, variable-step
// backward differentiation formulas with a Newton corrector.
package dae

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// System is a DAE system in implicit form.
type System interface {
	// NEquations returns the number of unknowns.
	NEquations() int

	// InitialConditions writes consistent initial values of y and y′ at
	// position x0.
	InitialConditions(x0 float64, y, yp []float64) error

	// Residual writes F(x, y, y′) to r. A returned error causes the
	// current step attempt to be rejected and retried with a smaller
	// step.
	Residual(x float64, y, yp, r []float64) error
}

const (
	uround  = 2.220446049250313e-16
	maxIter = 4

	// Maximum number of consecutive failures of one kind before a step
	// is abandoned.
	maxFailures = 10
)

var sqrtUround = math.Sqrt(uround)

// Driver integrates a System forward in its independent variable.
type Driver struct {
	sys System
	cfg Config
	n   int

	x, last float64
	y, yp   []float64
	w       []float64

	h      float64 // step size to try next
	k      int     // order to try next
	nconst int     // steps taken at the current order

	// Solution history, most recent first, starting with the current
	// point.
	hx []float64
	hy [][]float64

	stats Statistics

	// Work space.
	ynew, ypnew, pred, beta, r, r0, del, tmp []float64
	jac                                      *mat.Dense
	lu                                       mat.LU
}

// New creates a Driver for sys, evaluating its initial conditions at
// position zero.
func New(sys System, cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, &Error{Code: IllegalInput, Err: err}
	}
	n := sys.NEquations()
	if n <= 0 {
		return nil, &Error{Code: IllegalInput, Err: fmt.Errorf("system has %d equations", n)}
	}
	d := &Driver{
		sys:   sys,
		cfg:   cfg,
		n:     n,
		y:     make([]float64, n),
		yp:    make([]float64, n),
		w:     make([]float64, n),
		ynew:  make([]float64, n),
		ypnew: make([]float64, n),
		pred:  make([]float64, n),
		beta:  make([]float64, n),
		r:     make([]float64, n),
		r0:    make([]float64, n),
		del:   make([]float64, n),
		tmp:   make([]float64, n),
		jac:   mat.NewDense(n, n, nil),
		k:     1,
	}
	if err := sys.InitialConditions(0, d.y, d.yp); err != nil {
		return nil, fmt.Errorf("dae: initial conditions: %w", err)
	}
	for i := range d.y {
		if math.IsNaN(d.y[i]) || math.IsInf(d.y[i], 0) || math.IsNaN(d.yp[i]) || math.IsInf(d.yp[i], 0) {
			return nil, &Error{Code: IllegalInput, Err: fmt.Errorf("initial condition %d is not finite (y=%g, y'=%g)", i, d.y[i], d.yp[i])}
		}
	}
	d.hx = []float64{0}
	d.hy = [][]float64{append([]float64(nil), d.y...)}
	d.setWeights()

	d.h = cfg.InitialStep
	if ypnorm := weightedNorm(d.yp, d.w); ypnorm > 0.5/d.h {
		d.h = 0.5 / ypnorm
	}
	if cfg.MaxStep > 0 {
		d.h = math.Min(d.h, cfg.MaxStep)
	}
	d.stats.NextStep = d.h
	return d, nil
}

// Solution returns the solution at the current position. The returned
// slice is overwritten by the next call to Advance.
func (d *Driver) Solution() []float64 { return d.y }

// Derivative returns the derivative of the solution at the current
// position. The returned slice is overwritten by the next call to Advance.
func (d *Driver) Derivative() []float64 { return d.yp }

// Position returns the current position.
func (d *Driver) Position() float64 { return d.x }

// Stats returns the integrator counters.
func (d *Driver) Stats() Statistics { return d.stats }

func (d *Driver) setWeights() {
	for i, v := range d.y {
		d.w[i] = 1 / (d.cfg.RelTol*math.Abs(v) + d.cfg.AbsTol)
	}
}

// Advance integrates the system to position xout, which must be greater
// than the position reached by the previous call. Steps are shortened so
// that the solution is computed at xout exactly rather than interpolated.
func (d *Driver) Advance(xout float64) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &Error{Code: Panicked, X: d.x, Err: fmt.Errorf("%v", p)}
		}
	}()
	if !(xout > d.last) {
		return &Error{Code: IllegalInput, X: d.x, Err: fmt.Errorf("%w: have %g after %g", ErrIllegalAdvance, xout, d.last)}
	}
	if d.cfg.StopPosition > 0 && xout > d.cfg.StopPosition {
		return &Error{Code: IllegalInput, X: d.x, Err: fmt.Errorf("position %g is beyond stop position %g", xout, d.cfg.StopPosition)}
	}
	for steps := 0; d.x < xout; steps++ {
		if steps >= d.cfg.MaxSteps {
			return &Error{Code: TooMuchWork, X: d.x, Err: fmt.Errorf("%d steps taken before reaching %g", steps, xout)}
		}
		if err := d.step(xout); err != nil {
			return err
		}
	}
	d.last = xout
	return nil
}

// attempt holds the outcome of a single step attempt.
type attempt struct {
	converged bool
	status    Status // failure kind when not converged
	cause     error

	err            float64 // local error estimate for order k
	ekm1, ek, ekp1 float64 // scaled derivative norms at orders k-1, k, k+1
}

// step takes one successful step toward xout, retrying with smaller step
// sizes as needed.
func (d *Driver) step(xout float64) error {
	var nef, ncf int
	var last attempt
	for {
		h := d.h
		if d.cfg.MaxStep > 0 {
			h = math.Min(h, d.cfg.MaxStep)
		}
		clamped := false
		if d.x+h >= xout || xout-(d.x+h) < 0.1*h {
			h = xout - d.x
			clamped = true
		}
		xnew := d.x + h
		if clamped {
			xnew = xout
		}
		hmin := 4 * uround * math.Max(math.Abs(d.x), math.Abs(xnew))
		if h <= hmin {
			if ncf > 0 {
				return &Error{Code: last.status, X: d.x, Err: fmt.Errorf("step size %g below minimum %g: %w", h, hmin, last.cause)}
			}
			return &Error{Code: ErrorTestFailure, X: d.x, Err: fmt.Errorf("step size %g below minimum %g", h, hmin)}
		}
		a := d.try(xnew, h)
		if !a.converged {
			last = a
			ncf++
			d.stats.ConvergenceFailures++
			if ncf >= maxFailures {
				return &Error{Code: a.status, X: d.x, Err: a.cause}
			}
			d.h = h * 0.25
			continue
		}
		if a.err > 1 {
			nef++
			d.stats.ErrorTestFailures++
			if nef >= maxFailures {
				return &Error{Code: ErrorTestFailure, X: d.x, Err: fmt.Errorf("local error estimate %g", a.err)}
			}
			knew := d.k
			if d.k > 1 && a.ekm1 <= a.ek {
				knew = d.k - 1
			}
			switch nef {
			case 1:
				est := a.err
				if knew != d.k {
					est = a.ekm1 / float64(knew+1)
				}
				r := 0.9 * math.Pow(2*est+1.e-4, -1/float64(knew+1))
				d.h = h * math.Max(0.25, math.Min(0.9, r))
			case 2:
				d.h = h * 0.25
			default:
				knew = 1
				d.h = h * 0.25
			}
			if knew != d.k {
				d.k = knew
				d.nconst = 0
			}
			continue
		}
		d.accept(xnew, h, clamped, a)
		return nil
	}
}

// try attempts a step of size h to xnew at the current order.
func (d *Driver) try(xnew, h float64) attempt {
	k := d.k
	nodes := make([]float64, k+1)
	nodes[0] = xnew
	copy(nodes[1:], d.hx[:k])
	alpha := derivativeWeights(nodes)
	c0 := alpha[0]

	for i := range d.beta {
		d.beta[i] = 0
	}
	for j := 1; j <= k; j++ {
		floats.AddScaled(d.beta, alpha[j], d.hy[j-1])
	}

	// Predictor.
	if len(d.hx) >= k+1 {
		extrapolate(d.pred, xnew, d.hx[:k+1], d.hy[:k+1])
	} else {
		floats.AddScaledTo(d.pred, d.y, h, d.yp)
	}

	copy(d.ynew, d.pred)
	d.corrector(c0)

	res := d.newton(xnew, h, c0)
	if !res.converged {
		return res
	}

	floats.SubTo(d.del, d.ynew, d.pred)
	res.ek = weightedNorm(d.del, d.w)
	psi := make([]float64, 0, k+1)
	for j := 0; j < len(d.hx) && j < k+1; j++ {
		psi = append(psi, xnew-d.hx[j])
	}
	res.err = errorConstant(k, h, psi) * res.ek

	if k > 1 {
		extrapolate(d.tmp, xnew, d.hx[:k], d.hy[:k])
	} else {
		copy(d.tmp, d.hy[0])
	}
	floats.SubTo(d.tmp, d.ynew, d.tmp)
	res.ekm1 = weightedNorm(d.tmp, d.w)

	res.ekp1 = math.NaN()
	if len(d.hx) >= k+2 {
		extrapolate(d.tmp, xnew, d.hx[:k+2], d.hy[:k+2])
		floats.SubTo(d.tmp, d.ynew, d.tmp)
		res.ekp1 = weightedNorm(d.tmp, d.w)
	}
	return res
}

// corrector sets ypnew from ynew using the BDF derivative approximation.
func (d *Driver) corrector(c0 float64) {
	for i := range d.ypnew {
		d.ypnew[i] = c0*d.ynew[i] + d.beta[i]
	}
}

func (d *Driver) residual(x float64, y, yp, r []float64) error {
	d.stats.ResidualEvals++
	if err := d.sys.Residual(x, y, yp, r); err != nil {
		return err
	}
	for i, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("residual %d is %g", i, v)
		}
	}
	return nil
}

// newton solves the corrector equation F(x, y, c0·y + β) = 0 for ynew,
// starting from the predicted value.
func (d *Driver) newton(x, h, c0 float64) attempt {
	fail := func(s Status, err error) attempt {
		return attempt{status: s, cause: err}
	}
	if err := d.residual(x, d.ynew, d.ypnew, d.r0); err != nil {
		return fail(ResidualFailure, err)
	}
	if err := d.jacobian(x, h, c0); err != nil {
		return fail(ResidualFailure, err)
	}
	d.lu.Factorize(d.jac)

	s := 100.0
	var oldnrm float64
	del := mat.NewVecDense(d.n, d.del)
	for m := 0; m < maxIter; m++ {
		floats.Scale(-1, d.r0)
		err := d.lu.SolveVecTo(del, false, mat.NewVecDense(d.n, d.r0))
		var cond mat.Condition
		if err != nil && !errors.As(err, &cond) {
			return fail(LinearSolveFailure, err)
		}
		for _, v := range d.del {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fail(LinearSolveFailure, fmt.Errorf("singular iteration matrix: %v", err))
			}
		}
		floats.Add(d.ynew, d.del)
		floats.AddScaled(d.ypnew, c0, d.del)

		dn := weightedNorm(d.del, d.w)
		if m == 0 {
			oldnrm = dn
			if dn <= 100*uround*weightedNorm(d.ynew, d.w) {
				return attempt{converged: true}
			}
		} else {
			rate := math.Pow(dn/oldnrm, 1/float64(m))
			if rate > 0.9 {
				return fail(ConvergenceFailure, fmt.Errorf("corrector diverging (rate %g)", rate))
			}
			s = rate / (1 - rate)
		}
		if s*dn <= 0.33 {
			return attempt{converged: true}
		}
		if m == maxIter-1 {
			break
		}
		if err := d.residual(x, d.ynew, d.ypnew, d.r0); err != nil {
			return fail(ResidualFailure, err)
		}
	}
	return fail(ConvergenceFailure, fmt.Errorf("corrector did not converge in %d iterations", maxIter))
}

// jacobian approximates the iteration matrix ∂F/∂y + c0·∂F/∂y′ by
// finite differences about (ynew, ypnew), whose residual is in r0.
func (d *Driver) jacobian(x, h, c0 float64) error {
	d.stats.JacobianEvals++
	for j := 0; j < d.n; j++ {
		yj, ypj := d.ynew[j], d.ypnew[j]
		del := sqrtUround * math.Max(math.Max(math.Abs(yj), math.Abs(h*ypj)), 1/d.w[j])
		if h*ypj < 0 {
			del = -del
		}
		del = (yj + del) - yj
		d.ynew[j] += del
		d.ypnew[j] += c0 * del
		err := d.residual(x, d.ynew, d.ypnew, d.r)
		d.ynew[j], d.ypnew[j] = yj, ypj
		if err != nil {
			return err
		}
		for i := 0; i < d.n; i++ {
			d.jac.Set(i, j, (d.r[i]-d.r0[i])/del)
		}
	}
	return nil
}

// accept records a successful step and chooses the order and step size
// for the next one.
func (d *Driver) accept(xnew, h float64, clamped bool, a attempt) {
	k := d.k
	d.x = xnew
	copy(d.y, d.ynew)
	copy(d.yp, d.ypnew)

	keep := d.cfg.MaxOrder + 2
	if len(d.hx) < keep {
		d.hx = append(d.hx, 0)
		d.hy = append(d.hy, make([]float64, d.n))
	}
	last := d.hy[len(d.hy)-1]
	copy(d.hx[1:], d.hx[:len(d.hx)-1])
	copy(d.hy[1:], d.hy[:len(d.hy)-1])
	d.hx[0] = xnew
	copy(last, d.y)
	d.hy[0] = last

	d.setWeights()
	d.stats.Steps++
	d.stats.LastOrder = k
	d.stats.LastStep = h
	d.nconst++

	knew := k
	switch {
	case k == 2 && a.ekm1 <= 0.5*a.ek:
		knew = 1
	case k > 2 && a.ekm1 <= a.ek:
		knew = k - 1
	case k < d.cfg.MaxOrder && d.nconst >= k+1 && !math.IsNaN(a.ekp1):
		switch {
		case k == 1 && a.ekp1 < 0.5*a.ek:
			knew = 2
		case k > 1 && a.ekm1 <= math.Min(a.ek, a.ekp1):
			knew = k - 1
		case k > 1 && a.ekp1 < a.ek:
			knew = k + 1
		}
	}
	est := a.err
	switch knew {
	case k - 1:
		est = a.ekm1 / float64(knew+1)
	case k + 1:
		est = a.ekp1 / float64(knew+1)
	}
	if knew != k {
		d.k = knew
		d.nconst = 0
	}

	r := math.Pow(2*est+1.e-4, -1/float64(knew+1))
	hnew := h
	switch {
	case r >= 2:
		hnew = 2 * h
	case r <= 1:
		hnew = h * math.Max(0.5, math.Min(0.9, r))
	}
	if clamped {
		// A step shortened to land on an output position does not limit
		// the next one.
		if r > 1 {
			hnew = math.Max(hnew, d.h)
		} else {
			hnew = math.Min(hnew, d.h)
		}
	}
	d.h = hnew
	d.stats.NextStep = hnew
}
