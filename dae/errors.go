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
	"fmt"
)

// Status is an integrator return code.
type Status int

// Status codes. Negative values indicate failure.
const (
	Success            Status = 0
	TooMuchWork        Status = -1
	ErrorTestFailure   Status = -3
	ConvergenceFailure Status = -4
	LinearSolveFailure Status = -6
	ResidualFailure    Status = -8
	IllegalInput       Status = -22
	Panicked           Status = -99
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case TooMuchWork:
		return "too much work"
	case ErrorTestFailure:
		return "repeated error test failures"
	case ConvergenceFailure:
		return "repeated corrector convergence failures"
	case LinearSolveFailure:
		return "linear solve failure"
	case ResidualFailure:
		return "repeated residual evaluation failures"
	case IllegalInput:
		return "illegal input"
	case Panicked:
		return "panic during integration"
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// ErrIllegalAdvance is returned when Advance is called with a position
// that is not beyond the last one reached.
var ErrIllegalAdvance = errors.New("advance position must increase")

// Error is returned when the integrator fails. The solution at the last
// successful step remains available from the Driver.
type Error struct {
	Code Status

	// X is the position reached when the failure occurred.
	X float64

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dae: %v at x=%g: %v", e.Code, e.X, e.Err)
	}
	return fmt.Sprintf("dae: %v at x=%g", e.Code, e.X)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the status code of err, Success if err is nil, or
// Panicked if err did not come from a Driver.
func Code(err error) Status {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Panicked
}
