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

// Package gas implements a multicomponent ideal gas with NASA polynomial
// thermodynamics, mass-action kinetics and mixture-averaged transport
// properties. It is the thermochemical state oracle used by the reactor
// models.
package gas

import "errors"

var (
	// ErrUnknownPhase is returned when a phase is not defined in a mechanism.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrUnknownSpecies is returned when a species is not part of a phase.
	ErrUnknownSpecies = errors.New("unknown species")

	// ErrTransportUnavailable is returned by transport property methods
	// when the phase was not defined with a transport model or when any of
	// its species lack Lennard-Jones parameters.
	ErrTransportUnavailable = errors.New("transport properties unavailable")

	// ErrInvalidState is returned when a non-physical thermodynamic state
	// is requested.
	ErrInvalidState = errors.New("invalid thermodynamic state")

	// ErrComposition is returned when a composition cannot be interpreted.
	ErrComposition = errors.New("invalid composition")
)
