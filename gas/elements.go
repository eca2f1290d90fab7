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

package gas

import (
	"fmt"
	"sort"
)

// atomicWeights are standard atomic weights [kg/kmol].
var atomicWeights = map[string]float64{
	"H":  1.008,
	"He": 4.002602,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"S":  32.06,
	"Cl": 35.45,
	"Ar": 39.95,
}

// molecularWeight returns the molecular weight [kg/kmol] of a species
// with the given elemental composition.
func molecularWeight(composition map[string]float64) (float64, error) {
	if len(composition) == 0 {
		return 0, fmt.Errorf("empty elemental composition")
	}
	// Sum in a fixed order so the result does not depend on map iteration.
	els := make([]string, 0, len(composition))
	for el := range composition {
		els = append(els, el)
	}
	sort.Strings(els)
	var mw float64
	for _, el := range els {
		w, ok := atomicWeights[el]
		if !ok {
			return 0, fmt.Errorf("unknown element %s", el)
		}
		n := composition[el]
		if n < 0 {
			return 0, fmt.Errorf("negative number of %s atoms", el)
		}
		mw += w * n
	}
	return mw, nil
}
