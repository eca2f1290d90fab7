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

import "errors"

var (
	// ErrConstruction is returned when a reactor cannot be created from
	// the given configuration: the mechanism cannot be loaded, the phase
	// or a species is unknown, or a parameter is not physical.
	ErrConstruction = errors.New("pfr: invalid reactor configuration")

	// ErrSingularInitialSystem is returned when the linear system for the
	// initial derivatives cannot be solved.
	ErrSingularInitialSystem = errors.New("pfr: singular initial derivative system")
)
